package engine

import "strings"

// Hand is one player or dealer hand. Card order matters only for display.
type Hand struct {
	Cards []Card
	Bet   int

	natural   bool // two-card 21 on the original deal, set by the round
	fromSplit bool
	splitAces bool
	acted     bool // a hit has been taken (blocks double and split)
	stood     bool
	doubled   bool
}

// NewHand starts an empty hand carrying the given bet.
func NewHand(bet int) *Hand {
	return &Hand{Cards: make([]Card, 0, 8), Bet: bet}
}

// AddCard appends a card and is always valid while the hand is open.
// Value and flags are recomputed on demand; the resolution is O(len) and
// order-independent.
func (h *Hand) AddCard(c Card) {
	h.Cards = append(h.Cards, c)
}

// handValue sums the cards counting every ace as 11, then demotes aces to 1
// one at a time while the total exceeds 21. soft is true iff an ace is still
// counted as 11 in the final resolution.
func handValue(cards []Card) (total int, soft bool) {
	aces := 0
	for _, c := range cards {
		total += c.Value()
		if c.IsAce() {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total, aces > 0
}

// Value returns the best total <= 21 where possible.
func (h *Hand) Value() int {
	v, _ := handValue(h.Cards)
	return v
}

// IsSoft reports whether an ace is currently counted as 11.
func (h *Hand) IsSoft() bool {
	_, soft := handValue(h.Cards)
	return soft
}

// IsBust reports whether the hand total exceeds 21.
func (h *Hand) IsBust() bool { return h.Value() > 21 }

// IsBlackjack reports a two-card 21 from the original deal. A two-card 21
// assembled after a split is not a blackjack and pays even money.
func (h *Hand) IsBlackjack() bool { return h.natural }

// CanSplit reports split eligibility: exactly two cards of equal blackjack
// value and no action taken yet. The round additionally caps the hand count.
func (h *Hand) CanSplit() bool {
	return len(h.Cards) == 2 && !h.acted && !h.stood &&
		h.Cards[0].Value() == h.Cards[1].Value()
}

// CanDouble reports double eligibility: exactly two cards and no prior hit.
// Doubling after a split is allowed; auto-stood split aces are closed.
func (h *Hand) CanDouble() bool {
	return len(h.Cards) == 2 && !h.acted && !h.stood && !h.doubled
}

// FromSplit reports whether this hand was created by a split.
func (h *Hand) FromSplit() bool { return h.fromSplit }

// Doubled reports whether the bet was doubled on this hand.
func (h *Hand) Doubled() bool { return h.doubled }

// Resolved reports whether the hand takes no further decisions.
func (h *Hand) Resolved() bool { return h.stood || h.IsBust() }

func (h *Hand) String() string {
	out := make([]string, len(h.Cards))
	for i, c := range h.Cards {
		out[i] = c.String()
	}
	return strings.Join(out, " ")
}
