package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/chatterbox/chatterbox-go/api"
	"github.com/chatterbox/chatterbox-go/users"
)

// Store holds the current session and exposes the authentication
// operations. It is constructed once per application instance and injected
// where needed; there is no ambient global.
//
// Concurrent operations are not coordinated beyond the mutex guarding state
// reads and writes: two logins in flight race, and the last response to
// resolve overwrites session state. That mirrors the interactive
// single-user environment this targets and is a documented non-atomicity,
// not an oversight to fix silently.
type Store struct {
	api     *api.Client
	profile *users.Client
	tokens  TokenRepo

	mu      sync.RWMutex
	current Session

	log     zerolog.Logger
	nowTime func() time.Time
}

type StoreOption func(*Store)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

func WithStoreLogger(l zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.log = l
	}
}

// NewStore wires the store, the token repo, and the api client together:
// the client reads the persisted token from the repo on every request, and
// its 401 interceptor funnels into the store's forced logout.
func NewStore(apiClient *api.Client, tokens TokenRepo, options ...StoreOption) (*Store, error) {
	if apiClient == nil {
		return nil, errors.Wrap(NilAPIClientErr, "[NewStore]")
	}
	if tokens == nil {
		return nil, errors.Wrap(NilTokenRepoErr, "[NewStore]")
	}

	s := &Store{
		api:     apiClient,
		profile: users.New(apiClient),
		tokens:  tokens,
		log:     zerolog.Nop(),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}

	apiClient.SetTokenSource(tokenSource{repo: tokens})
	apiClient.SetUnauthorizedHandler(s.forcedLogout)
	return s, nil
}

// Current returns a snapshot of the session state.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.IsAuthenticated
}

// Login authenticates with the backend, persists the returned token, and
// best-effort fetches the profile. If the profile fetch fails the session
// still becomes authenticated with a minimal user record carrying only the
// submitted username. Failed logins record the server's detail message and
// are not retried.
func (s *Store) Login(ctx context.Context, username, password string) error {
	s.beginOperation()

	var resp loginResponse
	creds := Credentials{Username: username, Password: password}
	if err := s.api.PostJSON(ctx, "session.Login", "/auth/login", creds, &resp); err != nil {
		s.failOperation(err)
		return errors.Wrap(err, "[Store.Login]")
	}
	if strings.TrimSpace(resp.AccessToken) == "" {
		s.failOperation(MissingAccessTokenErr)
		return errors.Wrap(MissingAccessTokenErr, "[Store.Login]")
	}

	token := &oauth2.Token{AccessToken: resp.AccessToken, TokenType: resp.TokenType}
	if resp.ExpiresIn > 0 {
		token.Expiry = s.nowTime().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	if err := s.tokens.Save(token); err != nil {
		s.failOperation(err)
		return errors.Wrap(err, "[Store.Login] persist token")
	}

	user, err := s.profile.Profile(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("profile fetch after login failed, using minimal user record")
		user = &users.User{Username: username}
	}

	s.mu.Lock()
	s.current = Session{User: user, Token: resp.AccessToken, IsAuthenticated: true}
	s.mu.Unlock()
	return nil
}

// Register creates a new account. It does not log the new user in and does
// not alter the current session beyond clearing the loading and error flags.
func (s *Store) Register(ctx context.Context, reg Registration) error {
	s.beginOperation()
	if err := s.api.PostJSON(ctx, "session.Register", "/auth/register", reg, nil); err != nil {
		s.failOperation(err)
		return errors.Wrap(err, "[Store.Register]")
	}
	s.endOperation()
	return nil
}

// Logout unconditionally resets the session to its initial empty state and
// clears the persisted token. It is idempotent.
func (s *Store) Logout() error {
	s.mu.Lock()
	s.current = Session{}
	s.mu.Unlock()
	if err := s.tokens.Clear(); err != nil {
		return errors.Wrap(err, "[Store.Logout] clear token")
	}
	return nil
}

// forcedLogout is the 401 interceptor target. It runs once per failing
// request, independent of the per-call error the caller still receives.
func (s *Store) forcedLogout() {
	if err := s.Logout(); err != nil {
		s.log.Warn().Err(err).Msg("forced logout could not clear persisted token")
	}
}

// UpdateProfile sends a partial update and shallow-merges the returned
// fields into the current user record; fields absent from the response are
// preserved. Failures are recorded in session state and returned.
func (s *Store) UpdateProfile(ctx context.Context, fields map[string]any) error {
	s.beginOperation()
	updates, err := s.profile.UpdateProfile(ctx, fields)
	if err != nil {
		s.failOperation(err)
		return errors.Wrap(err, "[Store.UpdateProfile]")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	merged, err := users.Merge(s.current.User, updates)
	if err != nil {
		s.current.IsLoading = false
		s.current.Err = err.Error()
		return errors.Wrap(err, "[Store.UpdateProfile] merge")
	}
	s.current.User = merged
	s.current.IsLoading = false
	s.current.Err = ""
	return nil
}

// ChangePassword submits the password change. Success is silent beyond
// clearing the error flag; failures are recorded in session state and
// returned.
func (s *Store) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	s.beginOperation()
	if err := s.profile.ChangePassword(ctx, currentPassword, newPassword); err != nil {
		s.failOperation(err)
		return errors.Wrap(err, "[Store.ChangePassword]")
	}
	s.endOperation()
	return nil
}

// Initialize rehydrates the session from the persisted token. It runs once
// at startup, before anything else uses the store. A stored token is never
// trusted by itself: it must validate against the profile endpoint, and any
// validation failure purges it exactly as an explicit Logout would. This is
// the only path that silently demotes a persisted token back to
// unauthenticated. A repo read error is different: the token was never
// inspected, so it is surfaced to the caller and left in place.
func (s *Store) Initialize(ctx context.Context) error {
	token, err := s.tokens.Load()
	if err != nil {
		return errors.Wrap(err, "[Store.Initialize] load token")
	}
	if token == nil || strings.TrimSpace(token.AccessToken) == "" {
		return nil
	}

	if tokenExpired(token, s.nowTime()) {
		s.log.Debug().Msg("stored token is expired, purging")
		return s.Logout()
	}

	user, err := s.profile.Profile(ctx)
	if err != nil {
		s.log.Debug().Err(err).Msg("stored token rejected, purging")
		return s.Logout()
	}

	s.mu.Lock()
	s.current = Session{User: user, Token: token.AccessToken, IsAuthenticated: true}
	s.mu.Unlock()
	return nil
}

func (s *Store) beginOperation() {
	s.mu.Lock()
	s.current.IsLoading = true
	s.current.Err = ""
	s.mu.Unlock()
}

func (s *Store) endOperation() {
	s.mu.Lock()
	s.current.IsLoading = false
	s.current.Err = ""
	s.mu.Unlock()
}

func (s *Store) failOperation(err error) {
	s.mu.Lock()
	s.current.IsLoading = false
	s.current.Err = errorMessage(err)
	s.mu.Unlock()
}

// errorMessage prefers the server-provided detail over the wrapped chain.
func errorMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// tokenExpired reports whether the stored token is already past its expiry.
// When the repo carries no expiry, the access token's exp claim is peeked at
// without signature verification; opaque tokens are left for the server to
// judge.
func tokenExpired(token *oauth2.Token, now time.Time) bool {
	if !token.Expiry.IsZero() {
		return token.Expiry.Before(now)
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token.AccessToken, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Time.Before(now)
}
