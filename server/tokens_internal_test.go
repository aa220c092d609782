package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 30*time.Minute)

	token, expiresIn, err := tm.Issue("alice")
	require.NoError(t, err)
	require.Equal(t, 1800, expiresIn)

	subject, err := tm.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "alice", subject)
}

func TestVerifyRejectsForgedTokens(t *testing.T) {
	tm := NewTokenManager("secret", 30*time.Minute)
	other := NewTokenManager("other-secret", 30*time.Minute)

	token, _, err := other.Issue("alice")
	require.NoError(t, err)

	_, err = tm.Verify(token)
	require.ErrorIs(t, err, InvalidTokenErr)

	_, err = tm.Verify("not.a.token")
	require.ErrorIs(t, err, InvalidTokenErr)
}

func TestVerifyRejectsExpiredTokens(t *testing.T) {
	tm := NewTokenManager("secret", 30*time.Minute)

	issuedAt := time.Now().Add(-time.Hour)
	tm.nowTime = func() time.Time { return issuedAt }
	token, _, err := tm.Issue("alice")
	require.NoError(t, err)

	tm.nowTime = time.Now
	_, err = tm.Verify(token)
	require.ErrorIs(t, err, InvalidTokenErr)
}
