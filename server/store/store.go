package store

import (
	"context"
	"embed"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema embed.FS

type DB struct{ *pgxpool.Pool }

func Open(dsn string) (*DB, error) {
	p, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	return &DB{p}, nil
}

func (db *DB) Close(ctx context.Context)      { db.Pool.Close() }
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

func Migrate(ctx context.Context, db *DB) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(sqlBytes))
	return err
}

/* -----------------------------
   Write helpers
------------------------------*/

// CreateSession records a new shoe session and returns its id.
func (db *DB) CreateSession(ctx context.Context, player string, numDecks int, penetration float64, seed int64) (int64, error) {
	var id int64
	err := db.QueryRow(ctx, `
        INSERT INTO sessions(player, num_decks, penetration, seed)
        VALUES ($1,$2,$3,$4)
        RETURNING id
    `, player, numDecks, penetration, seed).Scan(&id)
	return id, err
}

func (db *DB) EndSession(ctx context.Context, sessionID int64) error {
	_, err := db.Exec(ctx, `UPDATE sessions SET ended_at = now() WHERE id = $1`, sessionID)
	return err
}

// InsertRound persists one settled round and returns its id. playerHands and
// dealerHand are display strings; outcomes line up with playerHands.
func (db *DB) InsertRound(
	ctx context.Context,
	sessionID int64,
	roundNo, bet int,
	playerHands, dealerHand, outcomes []string,
	netPayout, runningCount int,
	trueCount float64,
	cardsDealt int,
) (int64, error) {
	var id int64
	err := db.QueryRow(ctx, `
        INSERT INTO rounds(
            session_id, round_no, bet,
            player_hands, dealer_hand, outcomes,
            net_payout, running_count, true_count, cards_dealt
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id
    `, sessionID, roundNo, bet, playerHands, dealerHand, outcomes,
		netPayout, runningCount, trueCount, cardsDealt).Scan(&id)
	return id, err
}

// InsertDecision records one decision point: the shape the player faced, the
// book's recommendation, what was actually taken, and the judge's EVs when
// available.
func (db *DB) InsertDecision(
	ctx context.Context,
	roundID int64,
	handIndex, playerTotal int,
	soft, pair bool,
	dealerUp int,
	recommended, taken string,
	matched bool,
	trueCount float64,
	evTaken, evBest, evGap *float64,
) error {
	var et, eb, eg any
	if evTaken != nil {
		et = *evTaken
	}
	if evBest != nil {
		eb = *evBest
	}
	if evGap != nil {
		eg = *evGap
	}
	_, err := db.Exec(ctx, `
        INSERT INTO decisions(
            round_id, hand_index, player_total, soft, pair, dealer_up,
            recommended, taken, matched, true_count,
            ev_taken, ev_best, ev_gap
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
    `, roundID, handIndex, playerTotal, soft, pair, dealerUp,
		recommended, taken, matched, trueCount, et, eb, eg)
	return err
}

// GetOrInitRatings ensures a session_ratings row exists and fetches it.
func (db *DB) GetOrInitRatings(ctx context.Context, sessionID int64) (elo, gR, gRD, gSigma float64, rounds, decisions, matched int, err error) {
	if _, e := db.Exec(ctx, `INSERT INTO session_ratings(session_id) VALUES ($1) ON CONFLICT (session_id) DO NOTHING`, sessionID); e != nil {
		return 0, 0, 0, 0, 0, 0, 0, e
	}
	err = db.QueryRow(ctx, `
        SELECT elo, g_rating, g_rd, g_sigma, rounds, decisions, matched
          FROM session_ratings WHERE session_id = $1
    `, sessionID).Scan(&elo, &gR, &gRD, &gSigma, &rounds, &decisions, &matched)
	return
}

// UpdateRatings persists ratings and increments the counters.
func (db *DB) UpdateRatings(ctx context.Context, sessionID int64, elo, gR, gRD, gSigma float64, roundsInc, decisionsInc, matchedInc int) error {
	_, err := db.Exec(ctx, `
        UPDATE session_ratings
           SET elo = $2,
               g_rating = $3,
               g_rd = $4,
               g_sigma = $5,
               rounds = rounds + $6,
               decisions = decisions + $7,
               matched = matched + $8,
               updated_at = now()
         WHERE session_id = $1
    `, sessionID, elo, gR, gRD, gSigma, roundsInc, decisionsInc, matchedInc)
	return err
}

type Adherence struct {
	Good  int
	Total int
}

func (a Adherence) Ratio() float64 {
	if a.Total <= 0 {
		return 0
	}
	return float64(a.Good) / float64(a.Total)
}

// SessionAdherence aggregates decision adherence for one session.
func (db *DB) SessionAdherence(ctx context.Context, sessionID int64) (Adherence, error) {
	var a Adherence
	err := db.QueryRow(ctx, `
        SELECT COALESCE(SUM(CASE WHEN d.matched THEN 1 ELSE 0 END),0)::int,
               COUNT(*)::int
          FROM decisions d
          JOIN rounds r ON r.id = d.round_id
         WHERE r.session_id = $1
    `, sessionID).Scan(&a.Good, &a.Total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Adherence{}, nil
		}
		return Adherence{}, err
	}
	return a, nil
}

// RoundRow is one persisted round for the history API.
type RoundRow struct {
	ID           int64    `json:"id"`
	RoundNo      int      `json:"round_no"`
	Bet          int      `json:"bet"`
	PlayerHands  []string `json:"player_hands"`
	DealerHand   []string `json:"dealer_hand"`
	Outcomes     []string `json:"outcomes"`
	NetPayout    int      `json:"net_payout"`
	RunningCount int      `json:"running_count"`
	TrueCount    float64  `json:"true_count"`
}

// RecentRounds returns the latest rounds for a session, newest first.
func (db *DB) RecentRounds(ctx context.Context, sessionID int64, limit int) ([]RoundRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(ctx, `
        SELECT id, round_no, bet, player_hands, dealer_hand, outcomes,
               net_payout, running_count, true_count
          FROM rounds
         WHERE session_id = $1
         ORDER BY round_no DESC
         LIMIT $2
    `, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RoundRow
	for rows.Next() {
		var r RoundRow
		if err := rows.Scan(&r.ID, &r.RoundNo, &r.Bet, &r.PlayerHands, &r.DealerHand,
			&r.Outcomes, &r.NetPayout, &r.RunningCount, &r.TrueCount); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
