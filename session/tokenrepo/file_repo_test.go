package tokenrepo_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/chatterbox/chatterbox-go/session/tokenrepo"
)

func testRepo(t *testing.T) (*tokenrepo.FileRepo, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".chatterbox", "token.json")
	return tokenrepo.New(path), path
}

func TestLoadMissingFileMeansNoToken(t *testing.T) {
	repo, _ := testRepo(t)

	token, err := repo.Load()
	require.NoError(t, err)
	require.Nil(t, token)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	repo, path := testRepo(t)

	expiry := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	require.NoError(t, repo.Save(&oauth2.Token{AccessToken: "tok-abc", TokenType: "bearer", Expiry: expiry}))

	token, err := repo.Load()
	require.NoError(t, err)
	require.NotNil(t, token)
	require.Equal(t, "tok-abc", token.AccessToken)
	require.True(t, expiry.Equal(token.Expiry))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestSaveRefusesEmptyToken(t *testing.T) {
	repo, _ := testRepo(t)

	require.Error(t, repo.Save(nil))
	require.Error(t, repo.Save(&oauth2.Token{AccessToken: "   "}))
}

func TestLoadCorruptFileMeansNoToken(t *testing.T) {
	repo, path := testRepo(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	token, err := repo.Load()
	require.NoError(t, err)
	require.Nil(t, token)
}

func TestClearIsIdempotent(t *testing.T) {
	repo, path := testRepo(t)
	require.NoError(t, repo.Save(&oauth2.Token{AccessToken: "tok-abc"}))

	require.NoError(t, repo.Clear())
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	require.NoError(t, repo.Clear())
}
