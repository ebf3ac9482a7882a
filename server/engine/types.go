package engine

import "errors"

// Stage is the lifecycle stage of a round.
type Stage string

const (
	StageBetting    Stage = "betting"
	StageDealing    Stage = "dealing"
	StagePlayerTurn Stage = "player_turn"
	StageDealerTurn Stage = "dealer_turn"
	StageSettled    Stage = "settled"
)

// Action is a player decision at the table.
type Action string

const (
	Hit    Action = "hit"
	Stand  Action = "stand"
	Double Action = "double"
	Split  Action = "split"
)

// Outcome classifies a settled hand.
type Outcome string

const (
	OutcomeWin       Outcome = "win"
	OutcomeLoss      Outcome = "loss"
	OutcomePush      Outcome = "push"
	OutcomeBlackjack Outcome = "blackjack"
)

var (
	// ErrInvalidAction means the action is not in the active hand's legal set.
	// The round is left exactly as it was.
	ErrInvalidAction = errors.New("invalid action")

	// ErrInvalidBet means the bet was rejected before any state mutation.
	ErrInvalidBet = errors.New("invalid bet")

	// ErrShoeExhausted means the reshuffle policy was not honored by the
	// caller. Treated as an invariant violation, not a recoverable error.
	ErrShoeExhausted = errors.New("shoe exhausted")
)

// Card is a single playing card. Rank 2-10 are pip cards, 11-13 are J/Q/K,
// 14 is the ace. Suit is one of 'c','d','h','s' and is cosmetic only.
type Card struct {
	Rank int
	Suit byte
}

// Observer receives every card at the moment it becomes visible to the
// counting player. The dealer hole card is delivered only when revealed.
type Observer interface {
	Observe(Card)
}
