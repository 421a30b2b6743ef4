package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists draft sessions as JSON with a TTL.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a RedisStore. A non-positive ttl means DefaultTTL.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, prefix: "outreach:draft:", ttl: ttl}
}

func (s *RedisStore) key(contactID string) string {
	return s.prefix + contactID
}

// Get returns the contact's live draft, or ErrNotFound when none is stored
// or it has expired.
func (s *RedisStore) Get(ctx context.Context, contactID string) (*Session, error) {
	if contactID == "" {
		return nil, ErrNotFound
	}

	data, err := s.client.Get(ctx, s.key(contactID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal draft: %w", err)
	}
	return &sess, nil
}

// Save writes the session and restarts its TTL.
func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	if err := validate(sess); err != nil {
		return err
	}
	if sess.UpdatedAt.IsZero() {
		sess.UpdatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	return s.client.Set(ctx, s.key(sess.Draft.ContactID), data, s.ttl).Err()
}

// Delete drops the contact's live draft. Deleting a missing draft is not an
// error.
func (s *RedisStore) Delete(ctx context.Context, contactID string) error {
	if contactID == "" {
		return nil
	}
	return s.client.Del(ctx, s.key(contactID)).Err()
}
