package drafts

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisStore_NoRoundTripForEmptyID(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer func() { _ = client.Close() }()

	store := NewRedisStore(client, 0)
	assert.Equal(t, 72*time.Hour, store.ttl)

	_, err := store.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, store.Delete(context.Background(), ""))
	assert.Error(t, store.Save(context.Background(), &Session{}))
}
