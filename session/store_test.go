package session_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/chatterbox/chatterbox-go/api"
	"github.com/chatterbox/chatterbox-go/session"
	"github.com/chatterbox/chatterbox-go/session/repofakes"
)

const (
	testUsername = "alice"
	testPassword = "password123"
	testToken    = "token-abc"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// testFixture wires a store against a scriptable fake backend.
type testFixture struct {
	mux    *http.ServeMux
	server *httptest.Server
	repo   *repofakes.FakeTokenRepo
	store  *session.Store
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		mux:  http.NewServeMux(),
		repo: repofakes.NewFakeTokenRepo(),
	}
	f.server = httptest.NewServer(f.mux)
	t.Cleanup(f.server.Close)

	apiClient, err := api.New(f.server.URL)
	require.NoError(t, err)

	f.store, err = session.NewStore(apiClient, f.repo,
		session.WithNowTime(func() time.Time { return testNow }))
	require.NoError(t, err)
	return f
}

func (f *testFixture) stubLogin(expiresIn int) {
	f.mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "` + testToken + `", "token_type": "bearer", "expires_in": ` + strconv.Itoa(expiresIn) + `}`))
	})
}

func (f *testFixture) stubProfile() {
	f.mux.HandleFunc("GET /users/profile", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "u-1", "username": "alice", "email": "alice@example.com", "is_active": true}`))
	})
}

func TestNewStoreRequiresDependencies(t *testing.T) {
	apiClient, err := api.New("http://localhost:8000")
	require.NoError(t, err)

	_, err = session.NewStore(nil, repofakes.NewFakeTokenRepo())
	require.ErrorIs(t, err, session.NilAPIClientErr)

	_, err = session.NewStore(apiClient, nil)
	require.ErrorIs(t, err, session.NilTokenRepoErr)
}

func TestLoginSuccessPersistsTokenAndLoadsProfile(t *testing.T) {
	f := setupTestFixture(t)
	f.stubLogin(1800)
	f.stubProfile()

	require.NoError(t, f.store.Login(context.Background(), testUsername, testPassword))

	current := f.store.Current()
	require.True(t, current.IsAuthenticated)
	require.False(t, current.IsLoading)
	require.Empty(t, current.Err)
	require.Equal(t, testToken, current.Token)
	require.Equal(t, "alice@example.com", current.User.Email)

	stored := f.repo.Stored()
	require.NotNil(t, stored)
	require.Equal(t, testToken, stored.AccessToken)
	require.Equal(t, testNow.Add(1800*time.Second), stored.Expiry)
}

func TestLoginFallsBackToMinimalUserWhenProfileFails(t *testing.T) {
	f := setupTestFixture(t)
	f.stubLogin(1800)
	f.mux.HandleFunc("GET /users/profile", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	require.NoError(t, f.store.Login(context.Background(), testUsername, testPassword))

	current := f.store.Current()
	require.True(t, current.IsAuthenticated)
	require.Equal(t, testUsername, current.User.Username)
	require.Empty(t, current.User.Email)
}

func TestLoginRejectedRecordsServerDetail(t *testing.T) {
	f := setupTestFixture(t)
	f.mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Incorrect username or password"}`))
	})

	err := f.store.Login(context.Background(), testUsername, "wrong")
	require.ErrorIs(t, err, api.AuthenticationErr)

	current := f.store.Current()
	require.False(t, current.IsAuthenticated)
	require.False(t, current.IsLoading)
	require.Equal(t, "Incorrect username or password", current.Err)
	require.Nil(t, f.repo.Stored())
}

func TestLoginWithoutAccessTokenFails(t *testing.T) {
	f := setupTestFixture(t)
	f.mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token_type": "bearer"}`))
	})

	err := f.store.Login(context.Background(), testUsername, testPassword)
	require.ErrorIs(t, err, session.MissingAccessTokenErr)
	require.False(t, f.store.IsAuthenticated())
	require.Nil(t, f.repo.Stored())
}

func TestRegisterDoesNotLogIn(t *testing.T) {
	f := setupTestFixture(t)
	f.mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": "User registered successfully"}`))
	})

	reg := session.Registration{Username: testUsername, Email: "alice@example.com", Password: testPassword}
	require.NoError(t, f.store.Register(context.Background(), reg))

	current := f.store.Current()
	require.False(t, current.IsAuthenticated)
	require.Empty(t, current.Err)
	require.Nil(t, f.repo.Stored())
}

func TestRegisterDuplicateRecordsDetail(t *testing.T) {
	f := setupTestFixture(t)
	f.mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail": "Username already registered"}`))
	})

	reg := session.Registration{Username: testUsername, Email: "alice@example.com", Password: testPassword}
	err := f.store.Register(context.Background(), reg)
	require.ErrorIs(t, err, api.ValidationErr)
	require.Equal(t, "Username already registered", f.store.Current().Err)
}

func TestLogoutResetsSessionAndClearsToken(t *testing.T) {
	f := setupTestFixture(t)
	f.stubLogin(1800)
	f.stubProfile()
	require.NoError(t, f.store.Login(context.Background(), testUsername, testPassword))

	require.NoError(t, f.store.Logout())
	require.Equal(t, session.Session{}, f.store.Current())
	require.Nil(t, f.repo.Stored())

	// Logging out while logged out is a no-op, not an error.
	require.NoError(t, f.store.Logout())
}

func TestUnauthorizedResponseForcesLogout(t *testing.T) {
	f := setupTestFixture(t)
	f.stubLogin(1800)
	f.stubProfile()
	require.NoError(t, f.store.Login(context.Background(), testUsername, testPassword))

	f.mux.HandleFunc("PUT /users/password", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Could not validate credentials"}`))
	})

	err := f.store.ChangePassword(context.Background(), testPassword, "new-password")
	require.ErrorIs(t, err, api.AuthenticationErr)

	current := f.store.Current()
	require.False(t, current.IsAuthenticated)
	require.Nil(t, current.User)
	require.Nil(t, f.repo.Stored(), "401 must purge the persisted token")
}

func TestUpdateProfileMergesReturnedFields(t *testing.T) {
	f := setupTestFixture(t)
	f.stubLogin(1800)
	f.stubProfile()
	require.NoError(t, f.store.Login(context.Background(), testUsername, testPassword))

	f.mux.HandleFunc("PUT /users/profile", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"email": "new@example.com"}`))
	})

	require.NoError(t, f.store.UpdateProfile(context.Background(), map[string]any{"email": "new@example.com"}))

	current := f.store.Current()
	require.True(t, current.IsAuthenticated)
	require.Equal(t, "new@example.com", current.User.Email)
	require.Equal(t, testUsername, current.User.Username, "fields absent from the response are preserved")
}

func TestChangePasswordFailureIsRecordedAndReturned(t *testing.T) {
	f := setupTestFixture(t)
	f.stubLogin(1800)
	f.stubProfile()
	require.NoError(t, f.store.Login(context.Background(), testUsername, testPassword))

	f.mux.HandleFunc("PUT /users/password", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail": "Current password is incorrect"}`))
	})

	err := f.store.ChangePassword(context.Background(), "wrong", "new-password")
	require.ErrorIs(t, err, api.ValidationErr)

	current := f.store.Current()
	require.Equal(t, "Current password is incorrect", current.Err)
	require.True(t, current.IsAuthenticated, "a rejected password change does not end the session")
}

func TestInitializeWithoutStoredTokenIsNoOp(t *testing.T) {
	f := setupTestFixture(t)

	require.NoError(t, f.store.Initialize(context.Background()))
	require.Equal(t, session.Session{}, f.store.Current())
}

func TestInitializeRehydratesValidToken(t *testing.T) {
	f := setupTestFixture(t)
	f.stubProfile()
	f.repo.Seed(&oauth2.Token{AccessToken: testToken, Expiry: testNow.Add(time.Hour)})

	require.NoError(t, f.store.Initialize(context.Background()))

	current := f.store.Current()
	require.True(t, current.IsAuthenticated)
	require.Equal(t, testToken, current.Token)
	require.Equal(t, testUsername, current.User.Username)
}

func TestInitializePurgesExpiredToken(t *testing.T) {
	f := setupTestFixture(t)
	f.repo.Seed(&oauth2.Token{AccessToken: testToken, Expiry: testNow.Add(-time.Minute)})

	require.NoError(t, f.store.Initialize(context.Background()))
	require.False(t, f.store.IsAuthenticated())
	require.Nil(t, f.repo.Stored())
}

func TestInitializePurgesTokenWithExpiredClaim(t *testing.T) {
	f := setupTestFixture(t)

	// No repo-level expiry: the exp claim inside the JWT decides.
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": testUsername,
		"exp": testNow.Add(-time.Minute).Unix(),
	})
	signed, err := expired.SignedString([]byte("any-secret"))
	require.NoError(t, err)
	f.repo.Seed(&oauth2.Token{AccessToken: signed})

	require.NoError(t, f.store.Initialize(context.Background()))
	require.False(t, f.store.IsAuthenticated())
	require.Nil(t, f.repo.Stored())
}

func TestInitializePurgesRejectedToken(t *testing.T) {
	f := setupTestFixture(t)
	f.mux.HandleFunc("GET /users/profile", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Could not validate credentials"}`))
	})
	f.repo.Seed(&oauth2.Token{AccessToken: testToken, Expiry: testNow.Add(time.Hour)})

	require.NoError(t, f.store.Initialize(context.Background()))
	require.False(t, f.store.IsAuthenticated())
	require.Nil(t, f.repo.Stored())
}

func TestInitializeSurfacesRepoFailure(t *testing.T) {
	f := setupTestFixture(t)
	f.repo.LoadErr = errors.New("token file unreadable")

	require.Error(t, f.store.Initialize(context.Background()))
}
