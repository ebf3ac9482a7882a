package engine

// MaxHands caps the number of concurrent player hands from splits.
const MaxHands = 4

// Round drives one bet through deal, player decisions, dealer resolution and
// settlement. It owns its hands for the round's lifetime and assumes
// exclusive, non-reentrant access; the owning session serializes callers.
type Round struct {
	stage  Stage
	hands  []*Hand
	dealer *Hand
	active int

	shoe *Shoe
	obs  Observer

	holeRevealed bool
	outcomes     []Outcome
	payouts      []int
}

// NewRound validates the bet, deals the opening two cards to player and
// dealer, runs the blackjack checks and leaves the round either in
// StagePlayerTurn or already settled. Bankroll-level bet validation is the
// caller's job; the round only rejects non-positive bets.
func NewRound(shoe *Shoe, bet int, obs Observer) (*Round, error) {
	if bet <= 0 {
		return nil, ErrInvalidBet
	}
	r := &Round{
		stage:  StageBetting,
		shoe:   shoe,
		obs:    obs,
		dealer: NewHand(0),
	}
	r.hands = []*Hand{NewHand(bet)}
	r.stage = StageDealing

	// Opening deal: player, dealer up, player, dealer hole. The hole card is
	// not observed until it is revealed.
	if err := r.dealTo(r.hands[0], true); err != nil {
		return nil, err
	}
	if err := r.dealTo(r.dealer, true); err != nil {
		return nil, err
	}
	if err := r.dealTo(r.hands[0], true); err != nil {
		return nil, err
	}
	if err := r.dealTo(r.dealer, false); err != nil {
		return nil, err
	}

	if r.hands[0].Value() == 21 {
		r.hands[0].natural = true
	}

	up := r.dealer.Cards[0]
	dealerNatural := false
	if up.IsAce() || up.IsTenValue() {
		// Peek: the hole card stays face-down (and uncounted) unless it
		// completes a blackjack.
		if r.dealer.Value() == 21 {
			dealerNatural = true
			r.revealHole()
		}
	}

	switch {
	case dealerNatural:
		r.settle()
	case r.hands[0].natural:
		// Dealer cannot have blackjack anymore; pay 3:2 immediately.
		r.hands[0].stood = true
		r.revealHole()
		r.settle()
	default:
		r.stage = StagePlayerTurn
	}
	return r, nil
}

func (r *Round) dealTo(h *Hand, visible bool) error {
	c, err := r.shoe.Deal()
	if err != nil {
		return err
	}
	h.AddCard(c)
	if visible {
		r.observe(c)
	}
	return nil
}

func (r *Round) observe(c Card) {
	if r.obs != nil {
		r.obs.Observe(c)
	}
}

func (r *Round) revealHole() {
	if r.holeRevealed || len(r.dealer.Cards) < 2 {
		return
	}
	r.holeRevealed = true
	r.observe(r.dealer.Cards[1])
}

// Stage returns the current round stage.
func (r *Round) Stage() Stage { return r.stage }

// Hands returns the player hands in table order.
func (r *Round) Hands() []*Hand { return r.hands }

// Dealer returns the dealer hand. Callers must consult HoleRevealed before
// exposing the second card.
func (r *Round) Dealer() *Hand { return r.dealer }

// HoleRevealed reports whether the dealer hole card is face up.
func (r *Round) HoleRevealed() bool { return r.holeRevealed }

// ActiveHand returns the index of the hand awaiting a decision, or -1.
func (r *Round) ActiveHand() int {
	if r.stage != StagePlayerTurn {
		return -1
	}
	return r.active
}

// DealerUpValue returns the dealer upcard value for strategy lookups,
// 2-10 with ace as 11.
func (r *Round) DealerUpValue() int { return r.dealer.Cards[0].Value() }

// AvailableActions lists the legal actions for the active hand. Empty
// outside the player turn.
func (r *Round) AvailableActions() []Action {
	if r.stage != StagePlayerTurn {
		return nil
	}
	h := r.hands[r.active]
	out := []Action{Hit, Stand}
	if h.CanDouble() {
		out = append(out, Double)
	}
	if h.CanSplit() && len(r.hands) < MaxHands {
		out = append(out, Split)
	}
	return out
}

func (r *Round) actionAllowed(a Action) bool {
	for _, la := range r.AvailableActions() {
		if la == a {
			return true
		}
	}
	return false
}

// Apply executes one decision for the given hand. Rejections are pure: an
// ErrInvalidAction leaves the round exactly as it was.
func (r *Round) Apply(handIndex int, a Action) error {
	if r.stage != StagePlayerTurn || handIndex != r.active {
		return ErrInvalidAction
	}
	if !r.actionAllowed(a) {
		return ErrInvalidAction
	}
	h := r.hands[r.active]

	switch a {
	case Hit:
		if err := r.dealTo(h, true); err != nil {
			return err
		}
		h.acted = true
	case Stand:
		h.stood = true
	case Double:
		h.Bet *= 2
		h.doubled = true
		if err := r.dealTo(h, true); err != nil {
			return err
		}
		h.stood = true
	case Split:
		if err := r.split(h); err != nil {
			return err
		}
	}
	r.advance()
	return nil
}

// split moves the second card into a new hand inserted after the current one
// and deals one fresh card to each. Split aces receive exactly one card and
// stand automatically. Neither hand can be a blackjack.
func (r *Round) split(h *Hand) error {
	aces := h.Cards[0].IsAce()
	next := NewHand(h.Bet)
	next.AddCard(h.Cards[1])
	next.fromSplit = true
	next.splitAces = aces
	h.Cards = h.Cards[:1]
	h.fromSplit = true
	h.splitAces = aces
	h.natural = false

	if err := r.dealTo(h, true); err != nil {
		return err
	}
	if err := r.dealTo(next, true); err != nil {
		return err
	}
	if aces {
		h.stood = true
		next.stood = true
	}

	rest := append([]*Hand{next}, r.hands[r.active+1:]...)
	r.hands = append(r.hands[:r.active+1], rest...)
	return nil
}

// advance moves play to the next open hand, or to the dealer once every
// player hand is stood, busted or doubled-and-resolved.
func (r *Round) advance() {
	for r.active < len(r.hands) && r.hands[r.active].Resolved() {
		r.active++
	}
	if r.active >= len(r.hands) {
		r.dealerTurn()
	}
}

func (r *Round) allBusted() bool {
	for _, h := range r.hands {
		if !h.IsBust() {
			return false
		}
	}
	return true
}

// dealerTurn reveals the hole card (counted now, not earlier) and draws to
// 17, standing on all 17s. If every player hand busted the dealer exposes the
// hole card but draws nothing.
func (r *Round) dealerTurn() {
	r.stage = StageDealerTurn
	r.revealHole()
	if !r.allBusted() {
		for r.dealer.Value() < 17 {
			if err := r.dealTo(r.dealer, true); err != nil {
				// Shoe exhaustion mid-round means the reshuffle policy was
				// violated upstream; settle with what we have.
				break
			}
		}
	}
	r.settle()
}

// settle computes the outcome and payout per hand. Blackjack pays 3:2, a win
// pays 1:1, a push returns the bet, a loss costs the bet.
func (r *Round) settle() {
	r.stage = StageSettled
	r.outcomes = make([]Outcome, len(r.hands))
	r.payouts = make([]int, len(r.hands))

	// End-of-round cleanup: if the hole card never came up (e.g. early
	// blackjack settlement paths leave it face-down), it is exposed when the
	// dealer clears the table.
	r.revealHole()

	dealerNatural := len(r.dealer.Cards) == 2 && r.dealer.Value() == 21
	dealerBust := r.dealer.IsBust()
	dealerTotal := r.dealer.Value()

	for i, h := range r.hands {
		switch {
		case h.IsBust():
			r.outcomes[i] = OutcomeLoss
			r.payouts[i] = -h.Bet
		case dealerNatural:
			if h.IsBlackjack() {
				r.outcomes[i] = OutcomePush
			} else {
				r.outcomes[i] = OutcomeLoss
				r.payouts[i] = -h.Bet
			}
		case h.IsBlackjack():
			r.outcomes[i] = OutcomeBlackjack
			r.payouts[i] = h.Bet * 3 / 2
		case dealerBust:
			r.outcomes[i] = OutcomeWin
			r.payouts[i] = h.Bet
		case h.Value() > dealerTotal:
			r.outcomes[i] = OutcomeWin
			r.payouts[i] = h.Bet
		case h.Value() < dealerTotal:
			r.outcomes[i] = OutcomeLoss
			r.payouts[i] = -h.Bet
		default:
			r.outcomes[i] = OutcomePush
		}
	}
}

// Outcomes returns per-hand results once settled.
func (r *Round) Outcomes() []Outcome { return r.outcomes }

// Payouts returns per-hand net chip deltas once settled.
func (r *Round) Payouts() []int { return r.payouts }

// NetPayout sums the per-hand payouts.
func (r *Round) NetPayout() int {
	total := 0
	for _, p := range r.payouts {
		total += p
	}
	return total
}

// TotalBet sums the live bets across all hands.
func (r *Round) TotalBet() int {
	total := 0
	for _, h := range r.hands {
		total += h.Bet
	}
	return total
}
