package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/eco-agent/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	sess := &domain.Session{ID: "s1", UserID: "u1", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, store.CreateSession(ctx, sess))
	assert.ErrorIs(t, store.CreateSession(ctx, sess), domain.ErrSessionExists)

	got, err := store.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("u1"), got.UserID)

	_, err = store.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	err = store.UpdateSession(ctx, &domain.Session{ID: "missing"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	sess.Title = "manhã difícil"
	require.NoError(t, store.UpdateSession(ctx, sess))
	got, _ = store.GetSession(ctx, "s1")
	assert.Equal(t, "manhã difícil", got.Title)
}

func TestListSessionsByUser(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.CreateSession(ctx, &domain.Session{
			ID:        domain.SessionID(fmt.Sprintf("s%d", i)),
			UserID:    "u1",
			UpdatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, store.CreateSession(ctx, &domain.Session{ID: "other", UserID: "u2"}))

	all, err := store.ListSessionsByUser(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, domain.SessionID("s2"), all[0].ID)
	assert.Equal(t, domain.SessionID("s0"), all[2].ID)

	limited, err := store.ListSessionsByUser(ctx, "u1", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestMessageStoreLimit(t *testing.T) {
	ctx := context.Background()
	store := NewMessageStore()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.AppendMessage(ctx, &domain.Message{
			ID:        domain.MessageID(fmt.Sprintf("m%d", i)),
			SessionID: "s1",
			Text:      fmt.Sprintf("msg %d", i),
		}))
	}

	all, err := store.GetMessagesBySession(ctx, "s1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	last, err := store.GetMessagesBySession(ctx, "s1", 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, "msg 3", last[0].Text)
	assert.Equal(t, "msg 4", last[1].Text)

	empty, err := store.GetMessagesBySession(ctx, "none", 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
