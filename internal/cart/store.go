package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	pkgerrors "github.com/jtrevino/storefront-backend/pkg/errors"
)

const defaultSessionTTL = 168 * time.Hour

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(sessionID string) string
}

// Store persists session carts as JSON blobs in Redis, one key per visitor.
type Store struct {
	kv  kvStore
	ttl time.Duration
}

// NewStore builds a cart store. A non-positive TTL falls back to one week.
func NewStore(kv kvStore, ttl time.Duration) (*Store, error) {
	if kv == nil {
		return nil, fmt.Errorf("kv store is required")
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Store{kv: kv, ttl: ttl}, nil
}

// Load returns the visitor's cart; a missing key yields an empty cart.
func (s *Store) Load(ctx context.Context, sessionID string) (Cart, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	raw, err := s.kv.Get(ctx, s.kv.CartKey(sessionID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return New(), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	var c Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode cart")
	}
	if c == nil {
		c = New()
	}
	return c, nil
}

// Save writes the cart back, refreshing the session TTL.
func (s *Store) Save(ctx context.Context, sessionID string, c Cart) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := s.kv.Set(ctx, s.kv.CartKey(sessionID), string(payload), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return nil
}

// Clear drops the visitor's cart key.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	if err := s.kv.Del(ctx, s.kv.CartKey(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}
