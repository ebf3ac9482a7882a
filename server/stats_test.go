package main

import (
	"math"
	"testing"

	"blackjack-trainer/server/engine"
)

func TestStatsAddDecision(t *testing.T) {
	var s SessionStats
	s.AddDecision(engine.Hit, true, 0)
	s.AddDecision(engine.Stand, true, 0)
	s.AddDecision(engine.Double, false, 0.12)
	s.AddDecision(engine.Split, true, 0)
	if s.Decisions != 4 || s.Matched != 3 {
		t.Fatalf("decisions=%d matched=%d, want 4/3", s.Decisions, s.Matched)
	}
	if got := s.Adherence(); math.Abs(got-0.75) > 1e-12 {
		t.Fatalf("Adherence() = %v, want 0.75", got)
	}
	if got := s.AvgEVGap(); math.Abs(got-0.03) > 1e-12 {
		t.Fatalf("AvgEVGap() = %v, want 0.03", got)
	}
	if s.Tally.Total() != 4 || s.Tally.Double != 1 {
		t.Fatalf("tally = %+v", s.Tally)
	}
}

func TestStatsAddRound(t *testing.T) {
	var s SessionStats
	s.AddRound([]engine.Outcome{engine.OutcomeBlackjack}, 0, 15, 10)
	s.AddRound([]engine.Outcome{engine.OutcomeWin, engine.OutcomeLoss}, 1, 0, 10)
	s.AddRound([]engine.Outcome{engine.OutcomePush}, 0, 0, 10)
	if s.Rounds != 3 || s.Hands != 4 {
		t.Fatalf("rounds=%d hands=%d, want 3/4", s.Rounds, s.Hands)
	}
	// A blackjack counts as a win as well.
	if s.Wins != 2 || s.Losses != 1 || s.Pushes != 1 || s.Blackjacks != 1 {
		t.Fatalf("W/L/P/BJ = %d/%d/%d/%d", s.Wins, s.Losses, s.Pushes, s.Blackjacks)
	}
	if s.Busts != 1 || s.NetChips != 15 {
		t.Fatalf("busts=%d net=%d", s.Busts, s.NetChips)
	}
	nets := s.RoundNets()
	if len(nets) != 3 || math.Abs(nets[0]-1.5) > 1e-12 {
		t.Fatalf("RoundNets() = %v", nets)
	}
}

func TestStatsZeroDivisors(t *testing.T) {
	var s SessionStats
	if s.Adherence() != 0 || s.AvgEVGap() != 0 {
		t.Fatal("empty stats must report zero rates")
	}
}

func TestWilsonCI95(t *testing.T) {
	lo, hi := WilsonCI95(80, 100)
	if !(lo > 0.70 && lo < 0.80 && hi > 0.80 && hi < 0.90) {
		t.Fatalf("WilsonCI95(80,100) = [%v, %v]", lo, hi)
	}
	lo, hi = WilsonCI95(0, 0)
	if lo != 0 || hi != 1 {
		t.Fatalf("empty interval = [%v, %v], want [0, 1]", lo, hi)
	}
	lo, hi = WilsonCI95(10, 10)
	if lo < 0.6 || hi > 1.0 {
		t.Fatalf("perfect-score interval = [%v, %v]", lo, hi)
	}
}

func TestBootstrapCI95(t *testing.T) {
	lo, hi := BootstrapCI95([]float64{0.5, 0.5, 0.5, 0.5}, 500)
	if lo != 0.5 || hi != 0.5 {
		t.Fatalf("constant sample CI = [%v, %v], want degenerate [0.5, 0.5]", lo, hi)
	}
	lo, hi = BootstrapCI95(nil, 500)
	if lo != 0 || hi != 0 {
		t.Fatalf("empty sample CI = [%v, %v], want [0, 0]", lo, hi)
	}
	vals := []float64{-1, 1, -1, 1, 0, 2, -2, 0.5, -0.5, 1}
	lo, hi = BootstrapCI95(vals, 2000)
	if lo > hi {
		t.Fatalf("CI inverted: [%v, %v]", lo, hi)
	}
	if lo < -2 || hi > 2 {
		t.Fatalf("CI outside sample range: [%v, %v]", lo, hi)
	}
}
