package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// IdempotencyTTL bounds how long a completed request key is remembered.
	IdempotencyTTL = 24 * time.Hour

	// pendingTTL releases a claim whose request died before completing.
	pendingTTL = time.Minute

	idempotencyKeyPrefix = "idem"
	pendingMarker        = "pending"
)

// ErrRequestInFlight is returned by Claim while another request holds the key.
var ErrRequestInFlight = errors.New("request with this idempotency key is in progress")

// IdempotencyStore records client Idempotency-Key headers so a retried request
// returns the original result instead of repeating its side effects.
// Key format: "idem:{scope}:{key}"
type IdempotencyStore struct {
	client *RedisClient
}

// NewIdempotencyStore creates an IdempotencyStore backed by the given RedisClient.
func NewIdempotencyStore(r *RedisClient) *IdempotencyStore {
	return &IdempotencyStore{client: r}
}

// Claim reserves key within scope. It returns ("", nil) when the caller now
// owns the key and must call Complete or Release. It returns the stored
// result when the key already completed, or ErrRequestInFlight while another
// request holds it.
func (s *IdempotencyStore) Claim(ctx context.Context, scope, key string) (string, error) {
	k := s.key(scope, key)
	ok, err := s.client.Client().SetNX(ctx, k, pendingMarker, pendingTTL).Result()
	if err != nil {
		return "", fmt.Errorf("idempotency claim: %w", err)
	}
	if ok {
		return "", nil
	}

	val, err := s.client.Client().Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// Expired between SETNX and GET; try once more.
		return s.Claim(ctx, scope, key)
	}
	if err != nil {
		return "", fmt.Errorf("idempotency lookup: %w", err)
	}
	if val == pendingMarker {
		return "", ErrRequestInFlight
	}
	return val, nil
}

// Complete stores result for key.
func (s *IdempotencyStore) Complete(ctx context.Context, scope, key, result string) error {
	if err := s.client.Client().Set(ctx, s.key(scope, key), result, IdempotencyTTL).Err(); err != nil {
		return fmt.Errorf("idempotency complete: %w", err)
	}
	return nil
}

// Release drops a claim after a failed request so the client may retry.
func (s *IdempotencyStore) Release(ctx context.Context, scope, key string) error {
	if err := s.client.Client().Del(ctx, s.key(scope, key)).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) key(scope, key string) string {
	return fmt.Sprintf("%s:%s:%s", idempotencyKeyPrefix, scope, key)
}
