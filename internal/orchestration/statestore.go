package orchestration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	redispkg "github.com/openmarket-labs/vendorflow-backend/pkg/redis"
)

type keyedCache interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	CoordinationKey(orderID string) string
}

// StateStore persists coordination contexts as JSON blobs with a fixed TTL.
// Writes are full-context overwrites keyed by order identifier; expired
// entries read back as absent.
type StateStore struct {
	cache keyedCache
	ttl   time.Duration
}

// NewStateStore builds a state store over the shared cache client.
func NewStateStore(cache keyedCache, ttl time.Duration) (*StateStore, error) {
	if cache == nil {
		return nil, errors.New("cache client is required")
	}
	if ttl <= 0 {
		return nil, errors.New("context ttl must be positive")
	}
	return &StateStore{cache: cache, ttl: ttl}, nil
}

// Save overwrites the persisted context for its order.
func (s *StateStore) Save(ctx context.Context, c *Context) error {
	if c == nil {
		return errors.New("context is required")
	}
	body, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling coordination context: %w", err)
	}
	key := s.cache.CoordinationKey(c.OrderID.String())
	if err := s.cache.Set(ctx, key, string(body), s.ttl); err != nil {
		return fmt.Errorf("persisting coordination context: %w", err)
	}
	return nil
}

// Get loads the persisted context for an order. A never-orchestrated or
// expired order returns (nil, nil).
func (s *StateStore) Get(ctx context.Context, orderID uuid.UUID) (*Context, error) {
	key := s.cache.CoordinationKey(orderID.String())
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redispkg.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading coordination context: %w", err)
	}
	var c Context
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, fmt.Errorf("decoding coordination context: %w", err)
	}
	return &c, nil
}
