// Package counting tracks a Hi-Lo card count across one shoe lifetime.
package counting

import "blackjack-trainer/server/engine"

// minDecksRemaining floors the true-count divisor so a nearly empty shoe
// cannot blow the ratio up.
const minDecksRemaining = 0.5

// Weight returns the Hi-Lo weight of a card: +1 for 2-6, 0 for 7-9, -1 for
// tens, faces and aces. The weights of one full deck sum to zero.
func Weight(c engine.Card) int {
	switch v := c.Value(); {
	case v >= 2 && v <= 6:
		return 1
	case v >= 7 && v <= 9:
		return 0
	default:
		return -1
	}
}

// Counter is the count state for one shoe lifetime. It is mutated exactly
// once per card that becomes visible to the counting player and reset only
// on reshuffle. Not safe for concurrent use; the session serializes access.
type Counter struct {
	running   int
	cardsSeen int
	numDecks  int
}

// NewCounter returns a zeroed counter for a shoe of numDecks decks.
func NewCounter(numDecks int) *Counter {
	if numDecks < 1 {
		numDecks = 1
	}
	return &Counter{numDecks: numDecks}
}

// Observe folds one newly visible card into the running count.
func (c *Counter) Observe(card engine.Card) {
	c.running += Weight(card)
	c.cardsSeen++
}

// Running returns the running count.
func (c *Counter) Running() int { return c.running }

// CardsSeen returns how many cards have been observed since the last reset.
func (c *Counter) CardsSeen() int { return c.cardsSeen }

// DecksRemaining estimates undealt decks, clamped to 0.5.
func (c *Counter) DecksRemaining() float64 {
	rem := float64(c.numDecks) - float64(c.cardsSeen)/52.0
	if rem < minDecksRemaining {
		return minDecksRemaining
	}
	return rem
}

// TrueCount normalizes the running count by estimated decks remaining.
func (c *Counter) TrueCount() float64 {
	return float64(c.running) / c.DecksRemaining()
}

// Reset zeroes the count. Called only when the shoe reshuffles.
func (c *Counter) Reset() {
	c.running = 0
	c.cardsSeen = 0
}
