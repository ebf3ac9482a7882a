// Package strategy is the pure basic-strategy lookup: (hand shape, dealer
// upcard) to recommended action. It never touches the shoe or the round; the
// optional count-deviation layer lives in deviations.go.
package strategy

import "blackjack-trainer/server/engine"

// upIndex maps a dealer upcard value (2-10, 11 for ace) to a table column.
func upIndex(up int) int {
	if up < 2 {
		up = 2
	}
	if up > 11 {
		up = 11
	}
	return up - 2
}

// Recommend returns the basic-strategy action for the hand against the
// dealer upcard. Precedence: pair split, then double (degrading to the
// cell's fallback when doubling is not currently allowed), then the
// hard/soft total lookup.
func Recommend(h *engine.Hand, dealerUp int) engine.Action {
	return RecommendAvailable(h, dealerUp, true)
}

// RecommendAvailable is Recommend with the round-level split cap made
// explicit: with allowSplit false the pair row is skipped and the hand is
// played on its total, which is what the book prescribes once a table
// refuses further splits.
func RecommendAvailable(h *engine.Hand, dealerUp int, allowSplit bool) engine.Action {
	col := upIndex(dealerUp)

	if allowSplit && h.CanSplit() {
		pairVal := h.Cards[0].Value()
		if pairTable[pairVal-2][col] {
			return engine.Split
		}
	}

	return resolve(totalCell(h, col), h)
}

func totalCell(h *engine.Hand, col int) cell {
	total := h.Value()
	if h.IsSoft() {
		switch {
		case total >= 21:
			return cS
		case total >= 13:
			return softTable[total-13][col]
		default:
			// Soft 12 (paired aces with splitting unavailable) always hits.
			return cH
		}
	}
	switch {
	case total < 5:
		return cH
	case total > 20:
		return cS
	default:
		return hardTable[total-5][col]
	}
}

// resolve degrades double cells when the hand can no longer double.
func resolve(c cell, h *engine.Hand) engine.Action {
	switch c {
	case cS:
		return engine.Stand
	case cDH:
		if h.CanDouble() {
			return engine.Double
		}
		return engine.Hit
	case cDS:
		if h.CanDouble() {
			return engine.Double
		}
		return engine.Stand
	default:
		return engine.Hit
	}
}
