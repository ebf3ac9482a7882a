package strategy

import "blackjack-trainer/server/engine"

// A deviation overrides the book on a hard total when the true count crosses
// its index. aboveOrEqual deviations fire at trueCount >= index; the others
// fire at trueCount < index (falling back to the book's stand).
type deviation struct {
	total        int
	up           int // dealer upcard value, 11 = ace
	index        float64
	aboveOrEqual bool
	act          engine.Action
}

// Stand-on-soft-17 shoe indices. Insurance is not modeled, so the classic
// "insurance at +3" entry is absent.
var deviations = []deviation{
	{total: 16, up: 10, index: 0, aboveOrEqual: true, act: engine.Stand},
	{total: 15, up: 10, index: 4, aboveOrEqual: true, act: engine.Stand},
	{total: 13, up: 2, index: -1, aboveOrEqual: false, act: engine.Hit},
	{total: 12, up: 2, index: 3, aboveOrEqual: true, act: engine.Stand},
	{total: 12, up: 3, index: 2, aboveOrEqual: true, act: engine.Stand},
	{total: 12, up: 4, index: 0, aboveOrEqual: false, act: engine.Hit},
	{total: 11, up: 11, index: 1, aboveOrEqual: true, act: engine.Double},
	{total: 10, up: 10, index: 4, aboveOrEqual: true, act: engine.Double},
	{total: 10, up: 11, index: 4, aboveOrEqual: true, act: engine.Double},
	{total: 9, up: 2, index: 1, aboveOrEqual: true, act: engine.Double},
	{total: 9, up: 7, index: 3, aboveOrEqual: true, act: engine.Double},
}

// RecommendWithCount layers count deviations over the basic-strategy book.
// Deviations apply to hard, non-pair decisions only; a Double that is no
// longer allowed degrades to the book action. With no matching deviation the
// result is exactly Recommend's.
func RecommendWithCount(h *engine.Hand, dealerUp int, trueCount float64) engine.Action {
	return RecommendWithCountAvailable(h, dealerUp, trueCount, true)
}

// RecommendWithCountAvailable mirrors RecommendAvailable for the deviation
// layer.
func RecommendWithCountAvailable(h *engine.Hand, dealerUp int, trueCount float64, allowSplit bool) engine.Action {
	book := RecommendAvailable(h, dealerUp, allowSplit)
	if h.IsSoft() || book == engine.Split {
		return book
	}
	total := h.Value()
	for _, d := range deviations {
		if d.total != total || d.up != dealerUp {
			continue
		}
		fire := trueCount >= d.index
		if !d.aboveOrEqual {
			fire = trueCount < d.index
		}
		if !fire {
			continue
		}
		if d.act == engine.Double && !h.CanDouble() {
			return book
		}
		return d.act
	}
	return book
}
