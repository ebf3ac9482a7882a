package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"sync"

	"blackjack-trainer/server/bankroll"
	"blackjack-trainer/server/counting"
	"blackjack-trainer/server/engine"
	"blackjack-trainer/server/hints"
	"blackjack-trainer/server/judge"
	"blackjack-trainer/server/store"
	"blackjack-trainer/server/strategy"
)

// decisionRecord buffers one accepted decision until the round row exists in
// the store.
type decisionRecord struct {
	handIndex   int
	playerTotal int
	soft, pair  bool
	dealerUp    int
	recommended engine.Action
	taken       engine.Action
	matched     bool
	trueCount   float64
	evTaken     *float64
	evBest      *float64
	evGap       *float64
}

// SessionConfig is what a client may choose when opening a table.
type SessionConfig struct {
	Player        string  `json:"player"`
	NumDecks      int     `json:"num_decks"`
	Penetration   float64 `json:"penetration"`
	Seed          int64   `json:"seed"`
	UseDeviations bool    `json:"use_deviations"`
	HintModel     string  `json:"hint_model"`
}

// Session is one table: a shoe, its count, and at most one round in flight.
// The engine assumes exclusive access during a transition, so every entry
// point takes the session lock.
type Session struct {
	mu sync.Mutex

	token   string
	storeID int64

	cfg     SessionConfig
	shoe    *engine.Shoe
	counter *counting.Counter
	eval    *judge.Evaluator

	round   *engine.Round
	roundNo int
	bet     int // the round's initial bet
	pending []decisionRecord

	stats  SessionStats
	elo    SkillElo
	glicko *Glicko2

	db   *store.DB
	bank *bankroll.Store
}

// SessionManager owns all live sessions and serializes creation/lookup.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	db        *store.DB
	bank      *bankroll.Store
	hintModel string
}

func NewSessionManager(db *store.DB, bank *bankroll.Store, hintModel string) *SessionManager {
	return &SessionManager{
		sessions:  make(map[string]*Session),
		db:        db,
		bank:      bank,
		hintModel: hintModel,
	}
}

func newToken() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing is effectively fatal elsewhere too; a
		// predictable token only weakens lookup, not play.
		return "session"
	}
	return hex.EncodeToString(b)
}

// Create opens a new table with a fresh shoe and zeroed count.
func (m *SessionManager) Create(ctx context.Context, cfg SessionConfig) (*Session, error) {
	if cfg.Player == "" {
		cfg.Player = "anonymous"
	}
	if cfg.NumDecks <= 0 {
		cfg.NumDecks = atoiDef(os.Getenv("NUM_DECKS"), 6)
	}
	if cfg.Penetration <= 0 || cfg.Penetration >= 1 {
		p := floatDef(os.Getenv("PENETRATION"), engine.DefaultPenetration)
		if p <= 0 || p >= 1 {
			p = engine.DefaultPenetration
		}
		cfg.Penetration = p
	}
	if cfg.HintModel == "" {
		cfg.HintModel = m.hintModel
	}

	shoe := engine.NewShoe(cfg.NumDecks, cfg.Seed)
	shoe.SetPenetration(cfg.Penetration)

	s := &Session{
		token:   newToken(),
		cfg:     cfg,
		shoe:    shoe,
		counter: counting.NewCounter(cfg.NumDecks),
		eval:    judge.New(cfg.Seed),
		elo:     NewSkillElo(1500, 24),
		glicko:  NewGlicko2(),
		db:      m.db,
		bank:    m.bank,
	}
	if m.db != nil {
		id, err := m.db.CreateSession(ctx, cfg.Player, cfg.NumDecks, cfg.Penetration, cfg.Seed)
		if err != nil {
			log.Printf("CreateSession persist failed (continuing without store): %v", err)
		} else {
			s.storeID = id
			if _, _, _, _, _, _, _, err := m.db.GetOrInitRatings(ctx, id); err != nil {
				log.Printf("GetOrInitRatings failed: %v", err)
			}
		}
	}

	m.mu.Lock()
	m.sessions[s.token] = s
	m.mu.Unlock()
	return s, nil
}

// Get finds a live session by token.
func (m *SessionManager) Get(token string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[token]
	return s, ok
}

// Close ends a session: the store row is stamped and the token forgotten.
func (m *SessionManager) Close(ctx context.Context, token string) {
	m.mu.Lock()
	s, ok := m.sessions[token]
	delete(m.sessions, token)
	m.mu.Unlock()
	if ok && s.db != nil && s.storeID != 0 {
		if err := s.db.EndSession(ctx, s.storeID); err != nil {
			log.Printf("EndSession failed: %v", err)
		}
	}
}

// SessionState is the full snapshot handed to the transport layer: round
// view plus the shoe/count context that outlives rounds.
type SessionState struct {
	Session        string           `json:"session"`
	RoundNo        int              `json:"round_no"`
	Round          *engine.Snapshot `json:"round,omitempty"`
	RunningCount   int              `json:"running_count"`
	TrueCount      float64          `json:"true_count"`
	DecksRemaining float64          `json:"decks_remaining"`
	CardsDealt     int              `json:"cards_dealt"`
	NeedsReshuffle bool             `json:"needs_reshuffle"`
	Balance        *int             `json:"balance,omitempty"`
}

func (s *Session) stateLocked(ctx context.Context) SessionState {
	st := SessionState{
		Session:        s.token,
		RoundNo:        s.roundNo,
		RunningCount:   s.counter.Running(),
		TrueCount:      s.counter.TrueCount(),
		DecksRemaining: s.counter.DecksRemaining(),
		CardsDealt:     s.shoe.CardsDealt(),
		NeedsReshuffle: s.shoe.NeedsReshuffle(),
	}
	if s.round != nil {
		snap := s.round.Snapshot()
		st.Round = &snap
	}
	if s.bank != nil {
		if bal, err := s.bank.Balance(ctx, s.cfg.Player); err == nil {
			st.Balance = &bal
		}
	}
	return st
}

// State returns the current snapshot.
func (s *Session) State(ctx context.Context) SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked(ctx)
}

// Stats returns a copy of the session stats plus the skill ratings.
func (s *Session) Stats() (SessionStats, SkillElo, Glicko2) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats, s.elo, *s.glicko
}

// StoreID exposes the persisted session id (0 when the store is disabled).
func (s *Session) StoreID() int64 { return s.storeID }

// StartRound validates the bet, reshuffles at the cut card (resetting the
// count with it) and deals a new round. The previous round's hands are
// discarded here, never mid-round.
func (s *Session) StartRound(ctx context.Context, bet int) (SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.round != nil && s.round.Stage() != engine.StageSettled {
		return SessionState{}, fmt.Errorf("%w: round still in progress", engine.ErrInvalidAction)
	}
	if bet <= 0 {
		return SessionState{}, fmt.Errorf("%w: bet must be positive", engine.ErrInvalidBet)
	}
	if s.bank != nil {
		if err := s.bank.ValidateBet(ctx, s.cfg.Player, bet); err != nil {
			return SessionState{}, fmt.Errorf("%w: %v", engine.ErrInvalidBet, err)
		}
	}

	if s.shoe.NeedsReshuffle() {
		s.shoe.Reshuffle()
		s.counter.Reset()
		log.Printf("session %s: cut card reached, reshuffled %d decks, count reset", s.token, s.shoe.NumDecks())
	}

	r, err := engine.NewRound(s.shoe, bet, s.counter)
	if err != nil {
		return SessionState{}, err
	}
	s.round = r
	s.roundNo++
	s.bet = bet
	s.pending = nil

	if r.Stage() == engine.StageSettled {
		s.finishRound(ctx)
	}
	return s.stateLocked(ctx), nil
}

// ApplyResult reports one accepted decision back to the caller, including
// what the book would have done.
type ApplyResult struct {
	Recommended engine.Action `json:"recommended"`
	Taken       engine.Action `json:"taken"`
	Matched     bool          `json:"matched"`
	EVTaken     *float64      `json:"ev_taken,omitempty"`
	EVBest      *float64      `json:"ev_best,omitempty"`
	EVGap       *float64      `json:"ev_gap,omitempty"`
	Hint        string        `json:"hint,omitempty"`
	State       SessionState  `json:"state"`
}

// Recommendation computes the book action for the active hand without
// mutating anything.
func (s *Session) Recommendation() (engine.Action, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.round == nil || s.round.Stage() != engine.StagePlayerTurn {
		return "", false
	}
	return s.recommendLocked(), true
}

func (s *Session) recommendLocked() engine.Action {
	h := s.round.Hands()[s.round.ActiveHand()]
	up := s.round.DealerUpValue()
	allowSplit := len(s.round.Hands()) < engine.MaxHands
	if s.cfg.UseDeviations {
		return strategy.RecommendWithCountAvailable(h, up, s.counter.TrueCount(), allowSplit)
	}
	return strategy.RecommendAvailable(h, up, allowSplit)
}

// Apply runs one player decision through the round. Rejected actions leave
// everything untouched; accepted ones are scored against the book and the
// EV judge, then fed to stats/ratings/store when the round settles.
func (s *Session) Apply(ctx context.Context, handIndex int, act engine.Action, wantHint bool) (ApplyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.round == nil || s.round.Stage() != engine.StagePlayerTurn {
		return ApplyResult{}, fmt.Errorf("%w: no decision pending", engine.ErrInvalidAction)
	}
	if handIndex != s.round.ActiveHand() {
		return ApplyResult{}, fmt.Errorf("%w: hand %d is not active", engine.ErrInvalidAction, handIndex)
	}

	h := s.round.Hands()[handIndex]
	up := s.round.DealerUpValue()
	rec := s.recommendLocked()

	// Judge the decision point before the round mutates it.
	eval := s.eval.Evaluate(s.shoe.RemainingByValue(), h, up)
	var obs hints.Observation
	if wantHint {
		obs = hints.BuildObservation(s.round, s.counter, rec)
	}
	record := decisionRecord{
		handIndex:   handIndex,
		playerTotal: h.Value(),
		soft:        h.IsSoft(),
		pair:        h.CanSplit(),
		dealerUp:    up,
		recommended: rec,
		taken:       act,
		trueCount:   s.counter.TrueCount(),
	}

	if err := s.round.Apply(handIndex, act); err != nil {
		return ApplyResult{}, err
	}

	record.matched = rec == act
	if v, ok := eval.EV[act]; ok {
		record.evTaken = &v
		best, gap := eval.BestEV, eval.Gap(act)
		record.evBest = &best
		record.evGap = &gap
	}
	s.pending = append(s.pending, record)

	gap := 0.0
	if record.evGap != nil {
		gap = *record.evGap
	}
	s.stats.AddDecision(act, record.matched, gap)

	res := ApplyResult{
		Recommended: rec,
		Taken:       act,
		Matched:     record.matched,
		EVTaken:     record.evTaken,
		EVBest:      record.evBest,
		EVGap:       record.evGap,
	}
	if wantHint {
		res.Hint = hints.Generate(ctx, s.cfg.HintModel, obs)
	}
	if s.round.Stage() == engine.StageSettled {
		s.finishRound(ctx)
	}
	res.State = s.stateLocked(ctx)
	return res, nil
}

// finishRound folds a settled round into stats, ratings, bankroll and store.
// Persistence failures are logged and play continues; the engine state is
// already final.
func (s *Session) finishRound(ctx context.Context) {
	r := s.round
	outs := r.Outcomes()
	busts := 0
	for _, h := range r.Hands() {
		if h.IsBust() {
			busts++
		}
	}
	net := r.NetPayout()
	s.stats.AddRound(outs, busts, net, s.bet)

	matched, gapSum := 0, 0.0
	for _, d := range s.pending {
		if d.matched {
			matched++
		}
		if d.evGap != nil {
			gapSum += *d.evGap
		}
	}
	if n := len(s.pending); n > 0 {
		s.elo.UpdateFromRound(matched, n, gapSum)
		s.glicko.UpdateVsBook(float64(matched)/float64(n), 0.5)
	}

	if s.bank != nil {
		if _, err := s.bank.Apply(ctx, s.cfg.Player, net); err != nil {
			log.Printf("bankroll apply failed: %v", err)
		}
	}

	if s.db != nil && s.storeID != 0 {
		s.persistRound(ctx)
	}
}

func (s *Session) persistRound(ctx context.Context) {
	r := s.round
	hands := make([]string, 0, len(r.Hands()))
	for _, h := range r.Hands() {
		hands = append(hands, h.String())
	}
	dealer := make([]string, 0, len(r.Dealer().Cards))
	for _, c := range r.Dealer().Cards {
		dealer = append(dealer, c.String())
	}
	outs := make([]string, 0, len(r.Outcomes()))
	for _, o := range r.Outcomes() {
		outs = append(outs, string(o))
	}

	roundID, err := s.db.InsertRound(ctx, s.storeID, s.roundNo, s.bet,
		hands, dealer, outs, r.NetPayout(), s.counter.Running(),
		s.counter.TrueCount(), s.shoe.CardsDealt())
	if err != nil {
		log.Printf("InsertRound failed: %v", err)
		return
	}
	matched := 0
	for _, d := range s.pending {
		if d.matched {
			matched++
		}
		if err := s.db.InsertDecision(ctx, roundID, d.handIndex, d.playerTotal,
			d.soft, d.pair, d.dealerUp, string(d.recommended), string(d.taken),
			d.matched, d.trueCount, d.evTaken, d.evBest, d.evGap); err != nil {
			log.Printf("InsertDecision failed: %v", err)
		}
	}
	if err := s.db.UpdateRatings(ctx, s.storeID, s.elo.Rating,
		s.glicko.Rating, s.glicko.RD, s.glicko.Volatility,
		1, len(s.pending), matched); err != nil {
		log.Printf("UpdateRatings failed: %v", err)
	}
}
