package engine

import "testing"

func mk(ranks ...int) []Card {
	out := make([]Card, len(ranks))
	for i, r := range ranks {
		out[i] = Card{Rank: r, Suit: 's'}
	}
	return out
}

func TestHandValue(t *testing.T) {
	cases := []struct {
		name  string
		ranks []int
		total int
		soft  bool
	}{
		{"hard 13", []int{10, 3}, 13, false},
		{"soft 17", []int{14, 6}, 17, true},
		{"ace ten", []int{14, 10}, 21, true},
		{"two aces", []int{14, 14}, 12, true},
		{"ace demoted", []int{14, 6, 9}, 16, false},
		{"both aces demoted", []int{14, 14, 10, 9}, 21, false},
		{"face cards", []int{11, 13}, 20, false},
		{"bust", []int{10, 9, 5}, 24, false},
		{"four aces", []int{14, 14, 14, 14}, 14, true},
		{"five card 21", []int{2, 3, 4, 5, 7}, 21, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHand(10)
			for _, c := range mk(tc.ranks...) {
				h.AddCard(c)
			}
			if got := h.Value(); got != tc.total {
				t.Fatalf("Value() = %d, want %d", got, tc.total)
			}
			if got := h.IsSoft(); got != tc.soft {
				t.Fatalf("IsSoft() = %v, want %v", got, tc.soft)
			}
		})
	}
}

func TestHandBust(t *testing.T) {
	h := NewHand(10)
	for _, c := range mk(10, 6) {
		h.AddCard(c)
	}
	if h.IsBust() {
		t.Fatal("16 should not be bust")
	}
	h.AddCard(Card{Rank: 10, Suit: 'h'})
	if !h.IsBust() {
		t.Fatal("26 should be bust")
	}
	if !h.Resolved() {
		t.Fatal("bust hand should be resolved")
	}
}

func TestCanSplit(t *testing.T) {
	cases := []struct {
		name  string
		ranks []int
		want  bool
	}{
		{"eights", []int{8, 8}, true},
		{"king queen", []int{13, 12}, true}, // equal blackjack value
		{"ten jack", []int{10, 11}, true},
		{"aces", []int{14, 14}, true},
		{"mixed", []int{8, 9}, false},
		{"three cards", []int{8, 8, 8}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHand(10)
			for _, c := range mk(tc.ranks...) {
				h.AddCard(c)
			}
			if got := h.CanSplit(); got != tc.want {
				t.Fatalf("CanSplit() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSplitBlockedAfterHit(t *testing.T) {
	h := NewHand(10)
	h.AddCard(Card{Rank: 8, Suit: 's'})
	h.AddCard(Card{Rank: 8, Suit: 'h'})
	h.acted = true
	if h.CanSplit() {
		t.Fatal("split should be blocked after a hit")
	}
	if h.CanDouble() {
		t.Fatal("double should be blocked after a hit")
	}
}

func TestCanDouble(t *testing.T) {
	h := NewHand(10)
	h.AddCard(Card{Rank: 5, Suit: 's'})
	h.AddCard(Card{Rank: 6, Suit: 'h'})
	if !h.CanDouble() {
		t.Fatal("fresh two-card hand should allow double")
	}
	h.AddCard(Card{Rank: 2, Suit: 'd'})
	if h.CanDouble() {
		t.Fatal("three-card hand should not allow double")
	}
}

func TestCardString(t *testing.T) {
	cases := []struct {
		card Card
		want string
	}{
		{Card{Rank: 14, Suit: 's'}, "As"},
		{Card{Rank: 10, Suit: 'h'}, "Th"},
		{Card{Rank: 13, Suit: 'c'}, "Kc"},
		{Card{Rank: 2, Suit: 'd'}, "2d"},
	}
	for _, tc := range cases {
		if got := tc.card.String(); got != tc.want {
			t.Errorf("%v.String() = %q, want %q", tc.card, got, tc.want)
		}
	}
}
