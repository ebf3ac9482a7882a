package main

import (
	"context"
	"log"

	"blackjack-trainer/server/engine"
)

// runDrill plays rounds autonomously with perfect book adherence, flat
// betting one unit. Useful for sanity-checking the tables and the judge:
// the EV gap should hover near zero and the net drift should sit around
// the house edge.
func runDrill(ctx context.Context, rounds, numDecks int, seed int64, useDeviations bool) error {
	mgr := NewSessionManager(nil, nil, "")
	s, err := mgr.Create(ctx, SessionConfig{
		Player:        "drill",
		NumDecks:      numDecks,
		Seed:          seed,
		UseDeviations: useDeviations,
	})
	if err != nil {
		return err
	}

	const unit = 10
	for i := 0; i < rounds; i++ {
		st, err := s.StartRound(ctx, unit)
		if err != nil {
			return err
		}
		for st.Round != nil && st.Round.Stage == engine.StagePlayerTurn {
			rec, ok := s.Recommendation()
			if !ok {
				break
			}
			res, err := s.Apply(ctx, st.Round.ActiveHand, rec, false)
			if err != nil {
				return err
			}
			st = res.State
		}
	}

	stats, elo, g := s.Stats()
	lo, hi := WilsonCI95(stats.Matched, stats.Decisions)
	bLo, bHi := BootstrapCI95(stats.RoundNets(), 2000)
	log.Printf("drill: %d rounds, %d hands, W/L/P/BJ %d/%d/%d/%d, busts %d",
		stats.Rounds, stats.Hands, stats.Wins, stats.Losses, stats.Pushes, stats.Blackjacks, stats.Busts)
	log.Printf("drill: adherence %.4f [%.4f, %.4f] over %d decisions, avg EV gap %.5f",
		stats.Adherence(), lo, hi, stats.Decisions, stats.AvgEVGap())
	log.Printf("drill: net %+d chips (%.4f units/round, CI95 [%.4f, %.4f])",
		stats.NetChips, mean(stats.RoundNets()), bLo, bHi)
	log.Printf("drill: elo %.1f, glicko2 %.1f (rd %.1f, sigma %.4f)",
		elo.Rating, g.Rating, g.RD, g.Volatility)
	return nil
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
