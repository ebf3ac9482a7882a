package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"blackjack-trainer/server/engine"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Printf("writeJSON: %v", err)
	}
}

func writeErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrInvalidAction), errors.Is(err, engine.ErrInvalidBet):
		code = http.StatusBadRequest
	case errors.Is(err, errSessionNotFound):
		code = http.StatusNotFound
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

var errSessionNotFound = errors.New("session not found")

func newRouter(mgr *SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/sessions", func(w http.ResponseWriter, req *http.Request) {
		var cfg SessionConfig
		if req.Body != nil {
			// An empty body means defaults.
			_ = json.NewDecoder(req.Body).Decode(&cfg)
		}
		s, err := mgr.Create(req.Context(), cfg)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, s.State(req.Context()))
	})

	r.Route("/api/sessions/{id}", func(r chi.Router) {
		lookup := func(w http.ResponseWriter, req *http.Request) (*Session, bool) {
			s, ok := mgr.Get(chi.URLParam(req, "id"))
			if !ok {
				writeErr(w, errSessionNotFound)
			}
			return s, ok
		}

		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			s, ok := lookup(w, req)
			if !ok {
				return
			}
			writeJSON(w, http.StatusOK, s.State(req.Context()))
		})

		r.Delete("/", func(w http.ResponseWriter, req *http.Request) {
			if _, ok := lookup(w, req); !ok {
				return
			}
			mgr.Close(req.Context(), chi.URLParam(req, "id"))
			writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
		})

		r.Post("/rounds", func(w http.ResponseWriter, req *http.Request) {
			s, ok := lookup(w, req)
			if !ok {
				return
			}
			var body struct {
				Bet int `json:"bet"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeErr(w, errors.Join(engine.ErrInvalidBet, err))
				return
			}
			st, err := s.StartRound(req.Context(), body.Bet)
			if err != nil {
				writeErr(w, err)
				return
			}
			writeJSON(w, http.StatusOK, st)
		})

		r.Post("/actions", func(w http.ResponseWriter, req *http.Request) {
			s, ok := lookup(w, req)
			if !ok {
				return
			}
			var body struct {
				Hand   int    `json:"hand"`
				Action string `json:"action"`
				Hint   bool   `json:"hint"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeErr(w, errors.Join(engine.ErrInvalidAction, err))
				return
			}
			res, err := s.Apply(req.Context(), body.Hand, engine.Action(body.Action), body.Hint)
			if err != nil {
				writeErr(w, err)
				return
			}
			writeJSON(w, http.StatusOK, res)
		})

		r.Get("/recommendation", func(w http.ResponseWriter, req *http.Request) {
			s, ok := lookup(w, req)
			if !ok {
				return
			}
			rec, ok := s.Recommendation()
			if !ok {
				writeErr(w, errors.Join(engine.ErrInvalidAction, errors.New("no decision pending")))
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"recommended": string(rec)})
		})

		r.Get("/stats", func(w http.ResponseWriter, req *http.Request) {
			s, ok := lookup(w, req)
			if !ok {
				return
			}
			writeJSON(w, http.StatusOK, statsPayload(s))
		})

		r.Get("/history", func(w http.ResponseWriter, req *http.Request) {
			s, ok := lookup(w, req)
			if !ok {
				return
			}
			if mgr.db == nil || s.StoreID() == 0 {
				writeJSON(w, http.StatusServiceUnavailable,
					map[string]string{"error": "history requires a database"})
				return
			}
			limit := 20
			if v := req.URL.Query().Get("limit"); v != "" {
				if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
					limit = n
				}
			}
			rows, err := mgr.db.RecentRounds(req.Context(), s.StoreID(), limit)
			if err != nil {
				writeErr(w, err)
				return
			}
			writeJSON(w, http.StatusOK, rows)
		})
	})

	return r
}

func statsPayload(s *Session) map[string]any {
	st, elo, g := s.Stats()
	lo, hi := WilsonCI95(st.Matched, st.Decisions)
	bLo, bHi := BootstrapCI95(st.RoundNets(), 2000)
	return map[string]any{
		"rounds":      st.Rounds,
		"hands":       st.Hands,
		"wins":        st.Wins,
		"losses":      st.Losses,
		"pushes":      st.Pushes,
		"blackjacks":  st.Blackjacks,
		"busts":       st.Busts,
		"decisions":   st.Decisions,
		"matched":     st.Matched,
		"adherence":   st.Adherence(),
		"adherence_ci95": map[string]float64{
			"lo": lo,
			"hi": hi,
		},
		"net_chips":  st.NetChips,
		"avg_ev_gap": st.AvgEVGap(),
		"net_units_ci95": map[string]float64{
			"lo": bLo,
			"hi": bHi,
		},
		"actions": st.Tally,
		"elo":     elo.Rating,
		"glicko2": map[string]float64{
			"rating":     g.Rating,
			"rd":         g.RD,
			"volatility": g.Volatility,
		},
	}
}
