package main

import "math"

// bookRating anchors the reference opponent: a player who matches the book
// on every decision hovers around it.
const bookRating = 1500.0

// SkillElo rates the player against the basic-strategy book. Each settled
// round is one "game" whose score is the adherence share of its decisions.
type SkillElo struct {
	Rating float64
	K      float64
	Rounds int
}

func NewSkillElo(start, k float64) SkillElo { return SkillElo{Rating: start, K: k} }

func (e SkillElo) expect() float64 {
	return 1.0 / (1.0 + math.Pow(10, (bookRating-e.Rating)/400.0))
}

// UpdateFromRound applies one round: matched-of-total decisions, tempered by
// how much EV the misses actually gave up. Returns the applied delta.
func (e *SkillElo) UpdateFromRound(matched, decisions int, evGap float64) float64 {
	if decisions <= 0 {
		return 0
	}
	score := float64(matched) / float64(decisions)

	kEff := e.K * volumeScale(decisions) * gapScale(evGap) * decay(e.Rounds)
	d := kEff * (score - e.expect())
	e.Rating += d
	e.Rounds++
	return d
}

// ---- helpers ----

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// volumeScale weights rounds with more decisions (splits, long draws) a bit
// heavier; a plain two-decision round is the baseline.
func volumeScale(decisions int) float64 {
	if decisions <= 0 {
		return 1.0
	}
	return clamp(float64(decisions)/2.0, 0.5, 3.0)
}

// gapScale tempers the update by the EV actually given up this round, so a
// harmless off-book stand moves the rating less than doubling into a stiff.
func gapScale(evGap float64) float64 {
	if evGap <= 0 {
		return 1.0
	}
	return 1.0 + 0.35*math.Tanh(evGap/0.25) // <= ~1.35
}

func decay(rounds int) float64 {
	return 1.0 / (1.0 + 0.01*float64(rounds)) // slow anneal over rounds
}
