package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chatterbox/chatterbox-go/server/store"
)

func TestConversationLifecycle(t *testing.T) {
	conversations := store.NewConversations()

	created := conversations.Create("user-1", "First chat")
	require.NotEmpty(t, created.ID)
	require.Equal(t, "First chat", created.Title)

	now := time.Now().UTC()
	require.NoError(t, conversations.Append(created.ID,
		store.Message{Role: "user", Content: "hello", Timestamp: now},
		store.Message{Role: "assistant", Content: "hi", Timestamp: now},
	))

	loaded, err := conversations.Get(created.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Messages, 2)

	require.NoError(t, conversations.Delete(created.ID))
	_, err = conversations.Get(created.ID)
	require.ErrorIs(t, err, store.ConversationNotFoundErr)
	require.ErrorIs(t, conversations.Delete(created.ID), store.ConversationNotFoundErr)
}

func TestListByUserOrdersByRecency(t *testing.T) {
	conversations := store.NewConversations()

	first := conversations.Create("user-1", "first")
	second := conversations.Create("user-1", "second")
	conversations.Create("user-2", "other user")

	// Touch the first conversation so it becomes the most recent.
	require.NoError(t, conversations.Append(first.ID,
		store.Message{Role: "user", Content: "bump", Timestamp: time.Now().UTC()}))

	listed := conversations.ListByUser("user-1", 0)
	require.Len(t, listed, 2)
	require.Equal(t, first.ID, listed[0].ID)
	require.Equal(t, second.ID, listed[1].ID)

	limited := conversations.ListByUser("user-1", 1)
	require.Len(t, limited, 1)
	require.Equal(t, first.ID, limited[0].ID)
}

func TestSnapshotsAreIsolated(t *testing.T) {
	conversations := store.NewConversations()
	created := conversations.Create("user-1", "chat")

	loaded, err := conversations.Get(created.ID)
	require.NoError(t, err)
	loaded.Title = "mutated"
	loaded.Messages = append(loaded.Messages, store.Message{Role: "user", Content: "x"})

	reloaded, err := conversations.Get(created.ID)
	require.NoError(t, err)
	require.Equal(t, "chat", reloaded.Title)
	require.Empty(t, reloaded.Messages)
}
