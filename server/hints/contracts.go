// Package hints builds the decision-point observation handed to the
// natural-language coach and turns it into a short hint, either via the llm
// client or a local template when no model is configured.
package hints

import (
	"context"
	"fmt"
	"strings"

	"blackjack-trainer/server/counting"
	"blackjack-trainer/server/engine"
	"blackjack-trainer/server/llm"
)

const maxHintLen = 200

const coachSystem = `You are a blackjack coach watching a training session.
Given one decision point, explain in at most two sentences why the
recommended basic-strategy action is correct. Mention the count only when it
is relevant. Never recommend a different action than the one given.`

// Observation is the JSON we send the coach model: exactly what the counting
// player can see, plus the book recommendation.
type Observation struct {
	PlayerCards []string        `json:"player_cards"`
	PlayerTotal int             `json:"player_total"`
	Soft        bool            `json:"soft"`
	DealerUp    string          `json:"dealer_upcard"`
	DealerUpVal int             `json:"dealer_upcard_value"`
	Legal       []engine.Action `json:"legal_actions"`
	Recommended engine.Action   `json:"recommended"`
	RunningCnt  int             `json:"running_count"`
	TrueCount   float64         `json:"true_count"`
	HandIndex   int             `json:"hand_index"`
	HandCount   int             `json:"hand_count"`
}

// BuildObservation converts the active decision point into the coach's view.
func BuildObservation(r *engine.Round, c *counting.Counter, recommended engine.Action) Observation {
	idx := r.ActiveHand()
	if idx < 0 {
		idx = 0
	}
	h := r.Hands()[idx]
	cards := make([]string, len(h.Cards))
	for i, card := range h.Cards {
		cards[i] = card.String()
	}
	return Observation{
		PlayerCards: cards,
		PlayerTotal: h.Value(),
		Soft:        h.IsSoft(),
		DealerUp:    r.Dealer().Cards[0].String(),
		DealerUpVal: r.DealerUpValue(),
		Legal:       r.AvailableActions(),
		Recommended: recommended,
		RunningCnt:  c.Running(),
		TrueCount:   c.TrueCount(),
		HandIndex:   idx,
		HandCount:   len(r.Hands()),
	}
}

func userPrompt(o Observation) string {
	kind := "hard"
	if o.Soft {
		kind = "soft"
	}
	return fmt.Sprintf(
		"Player holds %s (%s %d) against dealer %s. Legal actions: %s. "+
			"Running count %+d, true count %+.1f. The book says %s. Explain why.",
		strings.Join(o.PlayerCards, " "), kind, o.PlayerTotal, o.DealerUp,
		joinActions(o.Legal), o.RunningCnt, o.TrueCount, o.Recommended)
}

func joinActions(as []engine.Action) string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = string(a)
	}
	return strings.Join(out, "/")
}

// Generate asks the configured model for a hint; with no key configured it
// falls back to the template line. The returned hint is clamped so the UI
// never gets a wall of text.
func Generate(ctx context.Context, model string, o Observation) string {
	if llm.Enabled() {
		if text, err := llm.ChatText(ctx, model, coachSystem, userPrompt(o)); err == nil && text != "" {
			return clamp(text)
		}
	}
	return Fallback(o)
}

// Fallback is the template hint used when no language model is available.
func Fallback(o Observation) string {
	kind := "hard"
	if o.Soft {
		kind = "soft"
	}
	return clamp(fmt.Sprintf("Basic strategy: %s %d vs dealer %d plays %s.",
		kind, o.PlayerTotal, o.DealerUpVal, o.Recommended))
}

func clamp(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxHintLen {
		s = s[:maxHintLen]
	}
	return s
}
