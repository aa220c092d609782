package repofakes

import (
	"sync"

	"golang.org/x/oauth2"

	"github.com/chatterbox/chatterbox-go/session"
)

var _ session.TokenRepo = (*FakeTokenRepo)(nil)

// FakeTokenRepo is an in-memory token repo for tests.
type FakeTokenRepo struct {
	mu    sync.Mutex
	token *oauth2.Token

	LoadErr  error
	SaveErr  error
	ClearErr error
}

func NewFakeTokenRepo() *FakeTokenRepo {
	return &FakeTokenRepo{}
}

func (r *FakeTokenRepo) Load() (*oauth2.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.LoadErr != nil {
		return nil, r.LoadErr
	}
	if r.token == nil {
		return nil, nil
	}
	copied := *r.token
	return &copied, nil
}

func (r *FakeTokenRepo) Save(token *oauth2.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.SaveErr != nil {
		return r.SaveErr
	}
	copied := *token
	r.token = &copied
	return nil
}

func (r *FakeTokenRepo) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ClearErr != nil {
		return r.ClearErr
	}
	r.token = nil
	return nil
}

// Stored returns the currently held token without the repo contract.
func (r *FakeTokenRepo) Stored() *oauth2.Token {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.token
}

// Seed places a token in the repo directly.
func (r *FakeTokenRepo) Seed(token *oauth2.Token) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.token = token
}
