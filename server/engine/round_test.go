package engine

import (
	"errors"
	"testing"
)

// stackedShoe deals the given ranks in order. Deal order in a round is
// player, dealer up, player, dealer hole, then draws.
func stackedShoe(ranks ...int) *Shoe {
	s := &Shoe{numDecks: 1, penetration: DefaultPenetration}
	for _, r := range ranks {
		c := Card{Rank: r, Suit: 's'}
		s.cards = append(s.cards, c)
		s.remainingByValue[valueIndex(c)]++
	}
	return s
}

type recorder struct{ cards []Card }

func (r *recorder) Observe(c Card) { r.cards = append(r.cards, c) }

func TestRoundRejectsBadBet(t *testing.T) {
	if _, err := NewRound(stackedShoe(10, 10, 10, 10), 0, nil); !errors.Is(err, ErrInvalidBet) {
		t.Fatalf("bet 0: err = %v, want ErrInvalidBet", err)
	}
	if _, err := NewRound(stackedShoe(10, 10, 10, 10), -5, nil); !errors.Is(err, ErrInvalidBet) {
		t.Fatalf("bet -5: err = %v, want ErrInvalidBet", err)
	}
}

func TestRoundShoeExhaustedOnDeal(t *testing.T) {
	if _, err := NewRound(stackedShoe(10, 10), 10, nil); !errors.Is(err, ErrShoeExhausted) {
		t.Fatalf("err = %v, want ErrShoeExhausted", err)
	}
}

func TestPlayerBlackjackPaysThreeToTwo(t *testing.T) {
	// Player As Th, dealer shows 5 with a 9 in the hole.
	r, err := NewRound(stackedShoe(14, 5, 10, 9), 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.Stage() != StageSettled {
		t.Fatalf("stage = %v, want settled", r.Stage())
	}
	if !r.Hands()[0].IsBlackjack() {
		t.Fatal("hand should be a blackjack")
	}
	if got := r.Outcomes()[0]; got != OutcomeBlackjack {
		t.Fatalf("outcome = %v, want blackjack", got)
	}
	if got := r.NetPayout(); got != 15 {
		t.Fatalf("NetPayout() = %d, want 15", got)
	}
	if !r.HoleRevealed() {
		t.Fatal("hole card must be exposed when the round settles")
	}
}

func TestDealerBlackjackPushesPlayerBlackjack(t *testing.T) {
	// Both sides deal a natural; dealer shows the ace.
	r, err := NewRound(stackedShoe(14, 14, 10, 10), 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.Stage() != StageSettled {
		t.Fatalf("stage = %v, want settled", r.Stage())
	}
	if got := r.Outcomes()[0]; got != OutcomePush {
		t.Fatalf("outcome = %v, want push", got)
	}
	if got := r.NetPayout(); got != 0 {
		t.Fatalf("NetPayout() = %d, want 0", got)
	}
}

func TestDealerBlackjackBeatsOrdinaryTwentyOne(t *testing.T) {
	// Dealer Ts + As hole; player 9+8 = 17 loses without playing.
	r, err := NewRound(stackedShoe(9, 10, 8, 14), 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.Stage() != StageSettled {
		t.Fatalf("stage = %v, want settled", r.Stage())
	}
	if got := r.Outcomes()[0]; got != OutcomeLoss {
		t.Fatalf("outcome = %v, want loss", got)
	}
	if got := r.NetPayout(); got != -10 {
		t.Fatalf("NetPayout() = %d, want -10", got)
	}
}

func TestPeekKeepsHoleHiddenWithoutNatural(t *testing.T) {
	// Dealer shows a ten with a 9 in the hole: peeked, no natural, keep playing.
	obs := &recorder{}
	r, err := NewRound(stackedShoe(9, 10, 8, 9), 10, obs)
	if err != nil {
		t.Fatal(err)
	}
	if r.Stage() != StagePlayerTurn {
		t.Fatalf("stage = %v, want player_turn", r.Stage())
	}
	if r.HoleRevealed() {
		t.Fatal("hole must stay hidden after a failed peek")
	}
	if len(obs.cards) != 3 {
		t.Fatalf("observer saw %d cards, want 3 (hole not counted)", len(obs.cards))
	}
}

func TestHitToBustSkipsDealerDraw(t *testing.T) {
	// Player Ts 6s hits into a ten; dealer flips the hole but draws nothing.
	r, err := NewRound(stackedShoe(10, 9, 6, 8, 10), 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Apply(0, Hit); err != nil {
		t.Fatal(err)
	}
	if r.Stage() != StageSettled {
		t.Fatalf("stage = %v, want settled", r.Stage())
	}
	if !r.Hands()[0].IsBust() {
		t.Fatal("hand should be bust")
	}
	if got := len(r.Dealer().Cards); got != 2 {
		t.Fatalf("dealer drew to %d cards, want 2 when every hand busted", got)
	}
	if !r.HoleRevealed() {
		t.Fatal("hole must still be exposed at settlement")
	}
	if got := r.NetPayout(); got != -10 {
		t.Fatalf("NetPayout() = %d, want -10", got)
	}
}

func TestDealerDrawsToSeventeen(t *testing.T) {
	// Player stands 20; dealer 6+T=16 draws a 2 for 18.
	r, err := NewRound(stackedShoe(10, 6, 10, 10, 2), 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Apply(0, Stand); err != nil {
		t.Fatal(err)
	}
	if got := r.Dealer().Value(); got != 18 {
		t.Fatalf("dealer total = %d, want 18", got)
	}
	if got := r.Outcomes()[0]; got != OutcomeWin {
		t.Fatalf("outcome = %v, want win", got)
	}
	if got := r.NetPayout(); got != 10 {
		t.Fatalf("NetPayout() = %d, want 10", got)
	}
}

func TestDealerStandsOnSoftSeventeen(t *testing.T) {
	// Dealer As + 6s is soft 17: no draw.
	r, err := NewRound(stackedShoe(9, 14, 9, 6), 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Apply(0, Stand); err != nil {
		t.Fatal(err)
	}
	if got := len(r.Dealer().Cards); got != 2 {
		t.Fatalf("dealer drew on soft 17 (cards = %d)", got)
	}
	if got := r.Outcomes()[0]; got != OutcomeWin {
		t.Fatalf("outcome = %v, want win (18 vs 17)", got)
	}
}

func TestDoubleDoublesBetAndStands(t *testing.T) {
	// Player 5+6=11 doubles into a ten for 21; dealer 6+T draws a 2 for 18.
	r, err := NewRound(stackedShoe(5, 6, 6, 10, 10, 2), 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Apply(0, Double); err != nil {
		t.Fatal(err)
	}
	if r.Stage() != StageSettled {
		t.Fatalf("stage = %v, want settled (double forces stand)", r.Stage())
	}
	h := r.Hands()[0]
	if h.Bet != 20 || !h.Doubled() {
		t.Fatalf("bet = %d doubled = %v after double", h.Bet, h.Doubled())
	}
	if got := r.NetPayout(); got != 20 {
		t.Fatalf("NetPayout() = %d, want 20", got)
	}
}

func TestSplitPlaysBothHands(t *testing.T) {
	// 8s 8s vs a 7; hand one doubles 8+3=11 into 21, hand two stands 18.
	r, err := NewRound(stackedShoe(8, 7, 8, 10, 3, 10, 10), 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Apply(0, Split); err != nil {
		t.Fatal(err)
	}
	if got := len(r.Hands()); got != 2 {
		t.Fatalf("hands = %d after split, want 2", got)
	}
	for _, h := range r.Hands() {
		if !h.FromSplit() {
			t.Fatal("both hands must be marked as split hands")
		}
	}
	if err := r.Apply(0, Double); err != nil {
		t.Fatal(err)
	}
	if got := r.ActiveHand(); got != 1 {
		t.Fatalf("active hand = %d, want 1", got)
	}
	if err := r.Apply(1, Stand); err != nil {
		t.Fatal(err)
	}
	if r.Stage() != StageSettled {
		t.Fatalf("stage = %v, want settled", r.Stage())
	}
	// Dealer 7+T stands on 17; 21 and 18 both win.
	if got := r.Payouts()[0]; got != 20 {
		t.Fatalf("doubled split hand payout = %d, want 20", got)
	}
	if got := r.Payouts()[1]; got != 10 {
		t.Fatalf("second hand payout = %d, want 10", got)
	}
	if got := r.TotalBet(); got != 30 {
		t.Fatalf("TotalBet() = %d, want 30", got)
	}
}

func TestSplitAcesGetOneCardEach(t *testing.T) {
	// As As vs a 9; the ten lands on hand one for 21 that pays even money.
	r, err := NewRound(stackedShoe(14, 9, 14, 10, 10, 5), 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Apply(0, Split); err != nil {
		t.Fatal(err)
	}
	if r.Stage() != StageSettled {
		t.Fatalf("stage = %v, want settled (split aces auto-stand)", r.Stage())
	}
	h0 := r.Hands()[0]
	if h0.Value() != 21 || h0.IsBlackjack() {
		t.Fatalf("split ace 21: value=%d blackjack=%v, want 21/false", h0.Value(), h0.IsBlackjack())
	}
	// Dealer 9+T = 19: the 21 wins even money, the 16 loses.
	if got := r.Payouts()[0]; got != 10 {
		t.Fatalf("split ace 21 payout = %d, want even money 10", got)
	}
	if got := r.Payouts()[1]; got != -10 {
		t.Fatalf("second split hand payout = %d, want -10", got)
	}
}

func TestResplitCapsAtFourHands(t *testing.T) {
	// Resplit eights twice, then an eight pair on hand three with the table
	// full: split must vanish from the legal set.
	r, err := NewRound(stackedShoe(8, 7, 8, 10, 8, 8, 10, 10, 8, 10, 5), 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Apply(0, Split); err != nil {
		t.Fatal(err)
	}
	if err := r.Apply(0, Split); err != nil {
		t.Fatal(err)
	}
	if err := r.Apply(0, Stand); err != nil {
		t.Fatal(err)
	}
	if err := r.Apply(1, Stand); err != nil {
		t.Fatal(err)
	}
	if err := r.Apply(2, Split); err != nil {
		t.Fatal(err)
	}
	if got := len(r.Hands()); got != MaxHands {
		t.Fatalf("hands = %d, want %d", got, MaxHands)
	}
	h := r.Hands()[r.ActiveHand()]
	if h.CanSplit() {
		for _, a := range r.AvailableActions() {
			if a == Split {
				t.Fatal("split offered beyond the hand cap")
			}
		}
	}
}

func TestInvalidActionLeavesRoundUntouched(t *testing.T) {
	r, err := NewRound(stackedShoe(10, 9, 6, 8, 2), 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	before := len(r.Hands()[0].Cards)
	if err := r.Apply(0, Split); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("split of T6: err = %v, want ErrInvalidAction", err)
	}
	if err := r.Apply(1, Hit); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("wrong hand index: err = %v, want ErrInvalidAction", err)
	}
	if err := r.Apply(0, Action("surrender")); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("unknown action: err = %v, want ErrInvalidAction", err)
	}
	if r.Stage() != StagePlayerTurn || len(r.Hands()[0].Cards) != before {
		t.Fatal("rejected action mutated the round")
	}
}

func TestDoubleUnavailableAfterHit(t *testing.T) {
	// Player 2+3 hits a 4 (hard 9); double must disappear.
	r, err := NewRound(stackedShoe(2, 9, 3, 8, 4, 10, 10), 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Apply(0, Hit); err != nil {
		t.Fatal(err)
	}
	if err := r.Apply(0, Double); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("double after hit: err = %v, want ErrInvalidAction", err)
	}
}

func TestObserverSeesHoleExactlyOnceAtReveal(t *testing.T) {
	obs := &recorder{}
	// Player stands; dealer 9+8 = 17. Hole enters the count at dealer turn.
	r, err := NewRound(stackedShoe(10, 9, 9, 8), 10, obs)
	if err != nil {
		t.Fatal(err)
	}
	if len(obs.cards) != 3 {
		t.Fatalf("observer saw %d cards during the deal, want 3", len(obs.cards))
	}
	if err := r.Apply(0, Stand); err != nil {
		t.Fatal(err)
	}
	if len(obs.cards) != 4 {
		t.Fatalf("observer saw %d cards after settlement, want 4", len(obs.cards))
	}
	if obs.cards[3].Rank != 8 {
		t.Fatalf("last observed card = %v, want the 8 hole card", obs.cards[3])
	}
}

func TestSnapshotHidesHoleUntilRevealed(t *testing.T) {
	r, err := NewRound(stackedShoe(10, 9, 6, 8, 2), 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	snap := r.Snapshot()
	if len(snap.Dealer) != 1 {
		t.Fatalf("snapshot exposes %d dealer cards pre-reveal, want 1", len(snap.Dealer))
	}
	if snap.DealerValue != 9 {
		t.Fatalf("snapshot dealer value = %d, want upcard 9", snap.DealerValue)
	}
	if err := r.Apply(0, Stand); err != nil {
		t.Fatal(err)
	}
	snap = r.Snapshot()
	if len(snap.Dealer) != 2 || !snap.HoleRevealed {
		t.Fatalf("settled snapshot: dealer=%v revealed=%v", snap.Dealer, snap.HoleRevealed)
	}
	if snap.NetPayout != r.NetPayout() {
		t.Fatalf("snapshot net = %d, round net = %d", snap.NetPayout, r.NetPayout())
	}
}
