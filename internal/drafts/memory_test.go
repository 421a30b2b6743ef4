package drafts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/outreach-agent/internal/types"
)

func TestMemoryStore_Lifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "recC")
	assert.ErrorIs(t, err, ErrNotFound)

	first := &Session{Draft: types.Draft{ContactID: "recC", Message: "v1", Pipeline: types.PipelineHunter}}
	require.NoError(t, store.Save(ctx, first))
	assert.False(t, first.UpdatedAt.IsZero())

	second := &Session{Draft: types.Draft{ContactID: "recC", Message: "v2", Revision: 1}}
	require.NoError(t, store.Save(ctx, second))
	assert.Equal(t, 1, store.Len(), "one live draft per contact")

	got, err := store.Get(ctx, "recC")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Draft.Message)

	got.Draft.Message = "mutated"
	again, err := store.Get(ctx, "recC")
	require.NoError(t, err)
	assert.Equal(t, "v2", again.Draft.Message)

	require.NoError(t, store.Delete(ctx, "recC"))
	_, err = store.Get(ctx, "recC")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_RejectsInvalid(t *testing.T) {
	store := NewMemoryStore()
	assert.Error(t, store.Save(context.Background(), nil))
	assert.Error(t, store.Save(context.Background(), &Session{}))
}
