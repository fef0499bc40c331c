package game

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewSessionStore(client, zerolog.Nop(), time.Hour), mr
}

func TestSessionStoreSaveAndGet(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	session := &Session{
		ID:             uuid.New(),
		Status:         StatusActive,
		Category:       "general",
		Typed:          "__A__",
		Index:          2,
		TotalQuestions: 10,
	}

	require.NoError(t, store.Save(ctx, session))
	assert.True(t, mr.Exists("session:state:"+session.ID.String()))

	got, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, "__A__", got.Typed)
	assert.Equal(t, 2, got.Index)
	assert.Equal(t, 10, got.TotalQuestions)
}

func TestSessionStoreGetMissingReturnsNil(t *testing.T) {
	store, _ := newTestStore(t)

	got, err := store.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStoreDelete(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	session := &Session{ID: uuid.New(), Status: StatusActive}
	require.NoError(t, store.Save(ctx, session))
	require.NoError(t, store.Delete(ctx, session.ID))
	assert.False(t, mr.Exists("session:state:"+session.ID.String()))
}

func TestSessionStoreLockIsExclusive(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	id := uuid.New()

	unlock, err := store.Lock(ctx, id)
	require.NoError(t, err)

	_, err = store.Lock(ctx, id)
	assert.Error(t, err)

	require.NoError(t, unlock())

	unlock2, err := store.Lock(ctx, id)
	require.NoError(t, err)
	require.NoError(t, unlock2())
}
