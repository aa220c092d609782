// Package tokenrepo persists the session token as a small JSON file,
// owner-readable only. It is the only client state that survives restarts.
package tokenrepo

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/chatterbox/chatterbox-go/session"
)

var _ session.TokenRepo = (*FileRepo)(nil)

type FileRepo struct {
	path string
	mu   sync.Mutex
}

func New(path string) *FileRepo {
	return &FileRepo{path: path}
}

func (r *FileRepo) Load() (*oauth2.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[FileRepo.Load] read token file")
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		// A corrupt token file is equivalent to no token.
		return nil, nil
	}
	if strings.TrimSpace(token.AccessToken) == "" {
		return nil, nil
	}
	return &token, nil
}

func (r *FileRepo) Save(token *oauth2.Token) error {
	if token == nil || strings.TrimSpace(token.AccessToken) == "" {
		return errors.New("[FileRepo.Save] refusing to store an empty token")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return errors.Wrap(err, "[FileRepo.Save] create token directory")
	}
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[FileRepo.Save] marshal token")
	}
	if err := os.WriteFile(r.path, data, 0o600); err != nil {
		return errors.Wrap(err, "[FileRepo.Save] write token file")
	}
	return nil
}

func (r *FileRepo) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := os.Remove(r.path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileRepo.Clear] remove token file")
	}
	return nil
}
