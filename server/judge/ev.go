// Package judge scores player decisions by composition-aware expected value.
// Minimal scope: Stand, Hit and Double at a single decision point; split
// decisions are judged against the basic-strategy book instead.
package judge

import (
	"math/rand"

	"blackjack-trainer/server/engine"
)

const (
	// Branches rarer than this are resolved with a random playout instead of
	// full enumeration.
	dealerCutoff = 1e-6
	// Below this path probability the player is assumed to stand rather than
	// recursing further.
	hitCutoff = 1e-4
)

// hand is the compact total used inside the recursion: score with aces
// counted as 11 where possible, plus the number of aces still counted as 11.
type hand struct {
	score int
	aces  int
}

// draw adds the card at value index vi (0 = ace, 1..9 = values 2..10) and
// demotes aces while the total busts.
func (h *hand) draw(vi int) {
	if vi == 0 {
		h.score += 11
		h.aces++
	} else {
		h.score += vi + 1
	}
	for h.score > 21 && h.aces > 0 {
		h.score -= 10
		h.aces--
	}
}

// Evaluation holds per-action EVs in bet units for one decision point.
type Evaluation struct {
	EV     map[engine.Action]float64
	Best   engine.Action
	BestEV float64
}

// Gap returns how much EV the taken action gives up against the best one.
// Unknown actions (Split) gap to zero.
func (ev Evaluation) Gap(taken engine.Action) float64 {
	v, ok := ev.EV[taken]
	if !ok {
		return 0
	}
	return ev.BestEV - v
}

// Evaluator computes decision EVs over a shoe composition. Not safe for
// concurrent use; sessions own one each.
type Evaluator struct {
	rng *rand.Rand
}

// New returns an evaluator. A zero seed is replaced by a fixed one so drill
// runs stay reproducible unless told otherwise.
func New(seed int64) *Evaluator {
	if seed == 0 {
		seed = 1
	}
	return &Evaluator{rng: rand.New(rand.NewSource(seed))}
}

// Evaluate computes the EV of each currently legal non-split action for the
// hand against the dealer upcard, given the undealt composition (index 0 =
// ace, 1..9 = values 2..10, as reported by the shoe). The dealer is assumed
// to have already peeked: hole cards completing a natural are excluded.
func (e *Evaluator) Evaluate(comp [10]int, h *engine.Hand, dealerUp int) Evaluation {
	p := hand{score: h.Value()}
	if h.IsSoft() {
		p.aces = 1
	}
	out := Evaluation{EV: make(map[engine.Action]float64, 3)}
	out.EV[engine.Stand] = e.standEV(&comp, p.score, dealerUp)
	out.EV[engine.Hit] = e.hitEV(&comp, p, dealerUp, 1.0)
	if h.CanDouble() {
		out.EV[engine.Double] = e.doubleEV(&comp, p, dealerUp)
	}
	for i, act := range []engine.Action{engine.Stand, engine.Hit, engine.Double} {
		v, ok := out.EV[act]
		if !ok {
			continue
		}
		if i == 0 || v > out.BestEV {
			out.Best, out.BestEV = act, v
		}
	}
	return out
}

func compTotal(comp *[10]int) int {
	n := 0
	for _, c := range comp {
		n += c
	}
	return n
}

// payoff in bet units for a stood player total against a finished dealer.
func payoff(player, dealer int) float64 {
	switch {
	case dealer > 21 || player > dealer:
		return 1
	case player < dealer:
		return -1
	default:
		return 0
	}
}

func (e *Evaluator) standEV(comp *[10]int, playerScore, dealerUp int) float64 {
	var d hand
	if dealerUp == 11 {
		d.draw(0)
	} else {
		d.draw(dealerUp - 1)
	}
	return e.dealerEV(comp, playerScore, d, true, 1.0)
}

// dealerEV resolves the dealer recursively. On the hole-card draw (first),
// cards completing a dealer natural are excluded and the distribution is
// renormalized over the rest. The dealer stands on all 17s.
func (e *Evaluator) dealerEV(comp *[10]int, playerScore int, d hand, first bool, odds float64) float64 {
	if d.score >= 17 {
		return payoff(playerScore, d.score)
	}
	if odds < dealerCutoff {
		return e.playout(comp, playerScore, d)
	}

	excluded := -1
	if first {
		if d.score == 11 && d.aces == 1 { // ace up: a ten hole is a natural
			excluded = 9
		} else if d.score == 10 { // ten up: an ace hole is a natural
			excluded = 0
		}
	}
	total := compTotal(comp)
	if excluded >= 0 {
		total -= comp[excluded]
	}
	if total <= 0 {
		return payoff(playerScore, d.score)
	}

	sum := 0.0
	for i := 0; i < 10; i++ {
		if comp[i] == 0 || i == excluded {
			continue
		}
		p := float64(comp[i]) / float64(total)
		d2 := d
		d2.draw(i)
		comp[i]--
		sum += p * e.dealerEV(comp, playerScore, d2, false, odds*p)
		comp[i]++
	}
	return sum
}

// playout finishes the dealer with one weighted random completion. Only
// reached on vanishingly rare branches, so a single sample is enough.
func (e *Evaluator) playout(comp *[10]int, playerScore int, d hand) float64 {
	local := *comp
	for d.score < 17 {
		n := compTotal(&local)
		if n == 0 {
			break
		}
		pos := e.rng.Intn(n)
		sum := 0
		for i := 0; i < 10; i++ {
			sum += local[i]
			if sum > pos {
				local[i]--
				d.draw(i)
				break
			}
		}
	}
	return payoff(playerScore, d.score)
}

// hitEV draws one card and then continues optimally between standing and
// hitting again. Doubling is not available after a hit.
func (e *Evaluator) hitEV(comp *[10]int, p hand, dealerUp int, odds float64) float64 {
	total := compTotal(comp)
	if total == 0 {
		return e.standEV(comp, p.score, dealerUp)
	}
	sum := 0.0
	for i := 0; i < 10; i++ {
		if comp[i] == 0 {
			continue
		}
		prob := float64(comp[i]) / float64(total)
		p2 := p
		p2.draw(i)
		comp[i]--
		var ev float64
		switch {
		case p2.score > 21:
			ev = -1
		case p2.score == 21:
			ev = e.standEV(comp, p2.score, dealerUp)
		default:
			ev = e.standEV(comp, p2.score, dealerUp)
			if odds*prob >= hitCutoff {
				if again := e.hitEV(comp, p2, dealerUp, odds*prob); again > ev {
					ev = again
				}
			}
		}
		comp[i]++
		sum += prob * ev
	}
	return sum
}

// doubleEV draws exactly one card at doubled stakes and stands.
func (e *Evaluator) doubleEV(comp *[10]int, p hand, dealerUp int) float64 {
	total := compTotal(comp)
	if total == 0 {
		return 2 * e.standEV(comp, p.score, dealerUp)
	}
	sum := 0.0
	for i := 0; i < 10; i++ {
		if comp[i] == 0 {
			continue
		}
		prob := float64(comp[i]) / float64(total)
		p2 := p
		p2.draw(i)
		comp[i]--
		if p2.score > 21 {
			sum += prob * -2
		} else {
			sum += prob * 2 * e.standEV(comp, p2.score, dealerUp)
		}
		comp[i]++
	}
	return sum
}
