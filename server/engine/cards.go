package engine

import (
	"fmt"
	"math/rand"
	"time"
)

// Value returns the blackjack value of the card: pip cards count face value,
// J/Q/K count 10, the ace counts 11 here and is demoted to 1 by the hand.
func (c Card) Value() int {
	switch {
	case c.Rank == 14:
		return 11
	case c.Rank >= 11:
		return 10
	default:
		return c.Rank
	}
}

// IsAce reports whether the card is an ace.
func (c Card) IsAce() bool { return c.Rank == 14 }

// IsTenValue reports whether the card counts 10 (ten or face card).
func (c Card) IsTenValue() bool { return c.Rank >= 10 && c.Rank <= 13 }

func (c Card) String() string {
	ranks := "  23456789TJQKA"
	return fmt.Sprintf("%c%c", ranks[c.Rank], c.Suit)
}

// DefaultPenetration is the dealt fraction at which the cut card fires.
const DefaultPenetration = 0.75

// Shoe is a shuffled multi-deck dealing shoe. It owns its cards exclusively;
// Deal transfers one card out and is the only mutator of shoe contents.
type Shoe struct {
	cards       []Card
	numDecks    int
	dealt       int
	penetration float64
	rng         *rand.Rand

	// remaining per blackjack value: index 0 = ace, 1..9 = values 2..10.
	remainingByValue [10]int
}

// NewShoe builds and shuffles a shoe of numDecks standard decks. A zero seed
// draws one from the clock.
func NewShoe(numDecks int, seed int64) *Shoe {
	if numDecks < 1 {
		numDecks = 1
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := &Shoe{
		numDecks:    numDecks,
		penetration: DefaultPenetration,
		rng:         rand.New(rand.NewSource(seed)),
	}
	s.build()
	return s
}

// SetPenetration overrides the cut point (fraction dealt, exclusive bounds).
func (s *Shoe) SetPenetration(p float64) {
	if p > 0 && p < 1 {
		s.penetration = p
	}
}

func (s *Shoe) build() {
	s.cards = s.cards[:0]
	for d := 0; d < s.numDecks; d++ {
		for i := 0; i < 4; i++ {
			for rnk := 2; rnk <= 14; rnk++ {
				s.cards = append(s.cards, Card{Rank: rnk, Suit: "cdhs"[i]})
			}
		}
	}
	for i := len(s.cards) - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	}
	s.dealt = 0
	for _, c := range s.cards {
		s.remainingByValue[valueIndex(c)]++
	}
}

func valueIndex(c Card) int {
	if c.IsAce() {
		return 0
	}
	return c.Value() - 1
}

// Deal removes and returns the next card. An empty shoe is a programming
// error in the caller's reshuffle policy and yields ErrShoeExhausted.
func (s *Shoe) Deal() (Card, error) {
	if len(s.cards) == 0 {
		return Card{}, ErrShoeExhausted
	}
	c := s.cards[0]
	s.cards = s.cards[1:]
	s.dealt++
	s.remainingByValue[valueIndex(c)]--
	return c, nil
}

// NeedsReshuffle reports whether the cut card has been passed. Callers must
// check this between rounds only, never mid-round.
func (s *Shoe) NeedsReshuffle() bool {
	total := 52 * s.numDecks
	return float64(s.dealt)/float64(total) >= s.penetration
}

// Reshuffle rebuilds the full shoe and reshuffles. The owning session must
// reset its counter alongside.
func (s *Shoe) Reshuffle() {
	s.remainingByValue = [10]int{}
	s.build()
}

// Remaining returns the number of undealt cards.
func (s *Shoe) Remaining() int { return len(s.cards) }

// CardsDealt returns the cards dealt since the last (re)shuffle.
func (s *Shoe) CardsDealt() int { return s.dealt }

// NumDecks returns the shoe size in decks.
func (s *Shoe) NumDecks() int { return s.numDecks }

// RemainingByValue returns undealt card counts by blackjack value:
// index 0 = ace, index 1..9 = values 2..10. Face cards fold into index 9.
func (s *Shoe) RemainingByValue() [10]int { return s.remainingByValue }
