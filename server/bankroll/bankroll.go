// Package bankroll keeps player balances in Redis and validates bets against
// them. It is the external bet-validation collaborator of the engine; the
// round itself never sees a balance.
package bankroll

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrInsufficientFunds rejects a bet larger than the player's balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

type Store struct {
	rdb   *redis.Client
	start int64 // balance granted to unseen players
}

// Open connects using a REDIS_URL-style connection string.
func Open(url string, startBalance int) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	if startBalance <= 0 {
		startBalance = 1000
	}
	return &Store{rdb: redis.NewClient(opts), start: int64(startBalance)}, nil
}

func (s *Store) Close() error { return s.rdb.Close() }

func key(player string) string { return "bankroll:" + player }

// Balance returns the player's balance, seeding new players with the
// starting stake.
func (s *Store) Balance(ctx context.Context, player string) (int, error) {
	bal, err := s.rdb.Get(ctx, key(player)).Int64()
	if err == redis.Nil {
		if err := s.rdb.Set(ctx, key(player), s.start, 0).Err(); err != nil {
			return 0, err
		}
		return int(s.start), nil
	}
	if err != nil {
		return 0, err
	}
	return int(bal), nil
}

// ValidateBet accepts a bet iff it is positive and covered by the balance.
func (s *Store) ValidateBet(ctx context.Context, player string, bet int) error {
	if bet <= 0 {
		return fmt.Errorf("bet must be positive, got %d", bet)
	}
	bal, err := s.Balance(ctx, player)
	if err != nil {
		return err
	}
	if bet > bal {
		return fmt.Errorf("%w: bet %d exceeds balance %d", ErrInsufficientFunds, bet, bal)
	}
	return nil
}

// Apply adjusts the balance by delta (round payout, or the extra stake of a
// double/split) and returns the new balance.
func (s *Store) Apply(ctx context.Context, player string, delta int) (int, error) {
	if _, err := s.Balance(ctx, player); err != nil { // seed if unseen
		return 0, err
	}
	bal, err := s.rdb.IncrBy(ctx, key(player), int64(delta)).Result()
	if err != nil {
		return 0, err
	}
	return int(bal), nil
}
