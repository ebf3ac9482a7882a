package engine

// HandView is the wire-friendly projection of one hand.
type HandView struct {
	Cards     []string `json:"cards"`
	Value     int      `json:"value"`
	Soft      bool     `json:"soft"`
	Bet       int      `json:"bet"`
	Bust      bool     `json:"bust"`
	Blackjack bool     `json:"blackjack"`
	FromSplit bool     `json:"from_split"`
	Doubled   bool     `json:"doubled"`
	Outcome   Outcome  `json:"outcome,omitempty"`
	Payout    int      `json:"payout"`
}

// Snapshot is the externally visible round state: everything the driver (and
// a counting player) is entitled to see. The dealer hole card is included
// only once revealed.
type Snapshot struct {
	Stage        Stage      `json:"stage"`
	Hands        []HandView `json:"hands"`
	ActiveHand   int        `json:"active_hand"`
	Dealer       []string   `json:"dealer"`
	DealerValue  int        `json:"dealer_value"`
	HoleRevealed bool       `json:"hole_revealed"`
	Available    []Action   `json:"available_actions,omitempty"`
	NetPayout    int        `json:"net_payout"`
}

// Snapshot projects the round for the transport layer.
func (r *Round) Snapshot() Snapshot {
	snap := Snapshot{
		Stage:        r.stage,
		ActiveHand:   r.ActiveHand(),
		HoleRevealed: r.holeRevealed,
		Available:    r.AvailableActions(),
	}
	for i, h := range r.hands {
		hv := HandView{
			Cards:     cardStrings(h.Cards),
			Value:     h.Value(),
			Soft:      h.IsSoft(),
			Bet:       h.Bet,
			Bust:      h.IsBust(),
			Blackjack: h.IsBlackjack(),
			FromSplit: h.FromSplit(),
			Doubled:   h.Doubled(),
		}
		if r.stage == StageSettled {
			hv.Outcome = r.outcomes[i]
			hv.Payout = r.payouts[i]
			snap.NetPayout += r.payouts[i]
		}
		snap.Hands = append(snap.Hands, hv)
	}
	if r.holeRevealed {
		snap.Dealer = cardStrings(r.dealer.Cards)
		snap.DealerValue = r.dealer.Value()
	} else {
		up := r.dealer.Cards[0]
		snap.Dealer = []string{up.String()}
		snap.DealerValue = up.Value()
	}
	return snap
}

func cardStrings(cs []Card) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.String()
	}
	return out
}
