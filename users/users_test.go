package users_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chatterbox/chatterbox-go/users"
)

func TestMergeOverlaysOnlyReturnedFields(t *testing.T) {
	current := &users.User{ID: "u-1", Username: "alice", Email: "old@example.com", IsActive: true}
	updates := map[string]json.RawMessage{
		"email": json.RawMessage(`"new@example.com"`),
	}

	merged, err := users.Merge(current, updates)
	require.NoError(t, err)
	require.Equal(t, "new@example.com", merged.Email)
	require.Equal(t, "alice", merged.Username)
	require.Equal(t, "u-1", merged.ID)
	require.True(t, merged.IsActive)

	// The input record is not mutated.
	require.Equal(t, "old@example.com", current.Email)
}

func TestMergeWithNoUpdatesCopies(t *testing.T) {
	current := &users.User{Username: "alice"}

	merged, err := users.Merge(current, nil)
	require.NoError(t, err)
	require.NotSame(t, current, merged)
	require.Equal(t, *current, *merged)
}

func TestMergeOntoNilUser(t *testing.T) {
	merged, err := users.Merge(nil, map[string]json.RawMessage{
		"username": json.RawMessage(`"bob"`),
	})
	require.NoError(t, err)
	require.Equal(t, "bob", merged.Username)
}

func TestMergeRejectsMalformedField(t *testing.T) {
	_, err := users.Merge(&users.User{Username: "alice"}, map[string]json.RawMessage{
		"is_active": json.RawMessage(`"not-a-bool"`),
	})
	require.Error(t, err)
}
