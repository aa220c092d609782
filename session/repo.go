package session

import "golang.org/x/oauth2"

// TokenRepo persists the session token across process restarts. Only the
// token is ever written; user and authentication state are reconstructed at
// startup by Store.Initialize.
type TokenRepo interface {
	// Load returns the stored token, or (nil, nil) when none is stored.
	Load() (*oauth2.Token, error)

	// Save replaces the stored token.
	Save(token *oauth2.Token) error

	// Clear removes the stored token. Clearing an empty repo is not an error.
	Clear() error
}

// tokenSource adapts a TokenRepo to the api client's per-request token
// lookup, so the current token is read from persisted storage on every call.
type tokenSource struct {
	repo TokenRepo
}

func (ts tokenSource) Token() (*oauth2.Token, error) {
	return ts.repo.Load()
}
