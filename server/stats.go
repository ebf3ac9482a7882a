package main

import (
	"math"
	"math/rand"
	"sort"

	"blackjack-trainer/server/engine"
)

// ActionTally counts how often each action was actually taken.
type ActionTally struct {
	Hit    int `json:"hit"`
	Stand  int `json:"stand"`
	Double int `json:"double"`
	Split  int `json:"split"`
}

func (t *ActionTally) add(a engine.Action) {
	switch a {
	case engine.Hit:
		t.Hit++
	case engine.Stand:
		t.Stand++
	case engine.Double:
		t.Double++
	case engine.Split:
		t.Split++
	}
}

func (t *ActionTally) Total() int { return t.Hit + t.Stand + t.Double + t.Split }

// SessionStats accumulates per-session play quality and outcomes. It is
// guarded by the owning session's lock.
type SessionStats struct {
	Rounds int `json:"rounds"`
	Hands  int `json:"hands"`

	Wins       int `json:"wins"`
	Losses     int `json:"losses"`
	Pushes     int `json:"pushes"`
	Blackjacks int `json:"blackjacks"`
	Busts      int `json:"busts"`

	Decisions int `json:"decisions"`
	Matched   int `json:"matched"`

	NetChips int         `json:"net_chips"`
	EVGapSum float64     `json:"ev_gap_sum"`
	Tally    ActionTally `json:"action_mix"`

	roundNets []float64 // per-round nets in bet units, for bootstrap CIs
}

// AddDecision records one decision's adherence and EV give-up.
func (s *SessionStats) AddDecision(taken engine.Action, matched bool, evGap float64) {
	s.Decisions++
	if matched {
		s.Matched++
	}
	s.EVGapSum += evGap
	s.Tally.add(taken)
}

// AddRound folds a settled round into the outcome tallies.
func (s *SessionStats) AddRound(outcomes []engine.Outcome, busts int, net, bet int) {
	s.Rounds++
	s.Hands += len(outcomes)
	s.Busts += busts
	s.NetChips += net
	for _, o := range outcomes {
		switch o {
		case engine.OutcomeWin:
			s.Wins++
		case engine.OutcomeLoss:
			s.Losses++
		case engine.OutcomePush:
			s.Pushes++
		case engine.OutcomeBlackjack:
			s.Blackjacks++
			s.Wins++
		}
	}
	if bet > 0 {
		s.roundNets = append(s.roundNets, float64(net)/float64(bet))
	}
}

// Adherence is the fraction of decisions matching the book.
func (s *SessionStats) Adherence() float64 {
	if s.Decisions == 0 {
		return 0
	}
	return float64(s.Matched) / float64(s.Decisions)
}

// AvgEVGap is the mean EV given up per judged decision, in bet units.
func (s *SessionStats) AvgEVGap() float64 {
	if s.Decisions == 0 {
		return 0
	}
	return s.EVGapSum / float64(s.Decisions)
}

// RoundNets exposes the per-round net history (bet units).
func (s *SessionStats) RoundNets() []float64 { return s.roundNets }

// --------- CI helpers ---------

// WilsonCI95 is the Wilson score interval for the adherence rate.
func WilsonCI95(matched, total int) (low, hi float64) {
	if total <= 0 {
		return 0, 1
	}
	z := 1.96
	n := float64(total)
	p := float64(matched) / n
	den := 1 + (z*z)/n
	center := p + (z*z)/(2*n)
	half := z * math.Sqrt((p*(1-p))/n+(z*z)/(4*n*n))
	return (center - half) / den, (center + half) / den
}

// BootstrapCI95 for the mean of values (e.g., per-round net in bet units).
func BootstrapCI95(vals []float64, B int) (low, hi float64) {
	n := len(vals)
	if n == 0 || B <= 1 {
		return 0, 0
	}
	res := make([]float64, B)
	for b := 0; b < B; b++ {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += vals[rand.Intn(n)]
		}
		res[b] = sum / float64(n)
	}
	sort.Float64s(res)
	l := int(0.025 * float64(B-1))
	h := int(0.975 * float64(B-1))
	return res[l], res[h]
}
