// Package idempotency records the outcome of keyed requests in Redis so a
// retried POST replays the first response instead of writing twice.
package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// State is the result of claiming a key.
type State int

const (
	// Claimed means this caller owns the key and must Complete or Release it.
	Claimed State = iota
	// InFlight means another request holds the key and has not finished.
	InFlight
	// Completed means a stored response is available for replay.
	Completed
	// Mismatch means the key was used before with a different request body.
	Mismatch
)

// Response is a stored HTTP answer.
type Response struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
}

type record struct {
	Fingerprint string    `json:"fp"`
	Done        bool      `json:"done"`
	Response    *Response `json:"response,omitempty"`
}

// Store keeps one record per key with a fixed TTL.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore returns a Store. A zero ttl means 24h.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) Key(scope, key string) string {
	return fmt.Sprintf("idem:%s:%s", scope, key)
}

// Begin claims key for a request whose body hashes to fingerprint. For
// Completed the stored response is returned.
func (s *Store) Begin(ctx context.Context, key, fingerprint string) (State, *Response, error) {
	pending, err := json.Marshal(record{Fingerprint: fingerprint})
	if err != nil {
		return 0, nil, err
	}

	ok, err := s.rdb.SetNX(ctx, key, pending, s.ttl).Result()
	if err != nil {
		return 0, nil, fmt.Errorf("idempotency: claim: %w", err)
	}
	if ok {
		return Claimed, nil, nil
	}

	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		// expired or released between the two calls
		return s.Begin(ctx, key, fingerprint)
	}
	if err != nil {
		return 0, nil, fmt.Errorf("idempotency: read: %w", err)
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return 0, nil, fmt.Errorf("idempotency: decode record: %w", err)
	}
	switch {
	case rec.Fingerprint != fingerprint:
		return Mismatch, nil, nil
	case !rec.Done:
		return InFlight, nil, nil
	default:
		return Completed, rec.Response, nil
	}
}

// Complete stores resp under key for the rest of the TTL window.
func (s *Store) Complete(ctx context.Context, key, fingerprint string, resp Response) error {
	raw, err := json.Marshal(record{Fingerprint: fingerprint, Done: true, Response: &resp})
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency: store response: %w", err)
	}
	return nil
}

// Release drops the claim so the client may retry.
func (s *Store) Release(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("idempotency: release: %w", err)
	}
	return nil
}
