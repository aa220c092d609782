package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/chatterbox/chatterbox-go/api"
)

type staticTokenSource struct {
	token *oauth2.Token
	err   error
}

func (s staticTokenSource) Token() (*oauth2.Token, error) {
	return s.token, s.err
}

func TestNewValidatesBaseURL(t *testing.T) {
	_, err := api.New("")
	require.Error(t, err)

	client, err := api.New("localhost:8000")
	require.NoError(t, err)
	require.NotNil(t, client)
}

func TestRequestWithoutTokenHasNoAuthorizationHeader(t *testing.T) {
	var gotAuth string
	var hasAuth bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, hasAuth = r.Header["Authorization"]
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, err := api.New(server.URL)
	require.NoError(t, err)

	require.NoError(t, client.GetJSON(context.Background(), "test.Get", "/health", nil, nil))
	require.False(t, hasAuth, "no token source should mean no Authorization header, got %q", gotAuth)

	// An empty access token is also suppressed, not sent as "Bearer ".
	client.SetTokenSource(staticTokenSource{token: &oauth2.Token{AccessToken: "  "}})
	require.NoError(t, client.GetJSON(context.Background(), "test.Get", "/health", nil, nil))
	require.False(t, hasAuth)
}

func TestRequestInjectsBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, err := api.New(server.URL,
		api.WithTokenSource(staticTokenSource{token: &oauth2.Token{AccessToken: "tok-123"}}))
	require.NoError(t, err)

	require.NoError(t, client.GetJSON(context.Background(), "test.Get", "/users/profile", nil, nil))
	require.Equal(t, "Bearer tok-123", gotAuth)
}

func TestTokenIsReadPerRequest(t *testing.T) {
	var gotAuth []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	source := &staticTokenSource{token: &oauth2.Token{AccessToken: "first"}}
	client, err := api.New(server.URL, api.WithTokenSource(source))
	require.NoError(t, err)

	require.NoError(t, client.GetJSON(context.Background(), "test.Get", "/x", nil, nil))
	source.token = &oauth2.Token{AccessToken: "second"}
	require.NoError(t, client.GetJSON(context.Background(), "test.Get", "/x", nil, nil))

	require.Equal(t, []string{"Bearer first", "Bearer second"}, gotAuth)
}

func TestUnauthorizedFiresHandlerOnceAndClassifies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Could not validate credentials"}`))
	}))
	defer server.Close()

	client, err := api.New(server.URL)
	require.NoError(t, err)

	fired := 0
	client.SetUnauthorizedHandler(func() { fired++ })

	err = client.GetJSON(context.Background(), "test.Get", "/users/profile", nil, nil)
	require.Error(t, err)
	require.ErrorIs(t, err, api.AuthenticationErr)
	require.Equal(t, 1, fired)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "Could not validate credentials", apiErr.Message)
}

func TestClientErrorCarriesServerDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail": "Username already registered"}`))
	}))
	defer server.Close()

	client, err := api.New(server.URL)
	require.NoError(t, err)

	err = client.PostJSON(context.Background(), "session.Register", "/auth/register", map[string]string{}, nil)
	require.ErrorIs(t, err, api.ValidationErr)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "Username already registered", apiErr.Message)
}

func TestServerErrorWithoutDetailGetsGenericMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer server.Close()

	client, err := api.New(server.URL)
	require.NoError(t, err)

	err = client.GetJSON(context.Background(), "test.Get", "/health", nil, nil)
	require.ErrorIs(t, err, api.ServerErr)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusInternalServerError, apiErr.Status)
	require.NotEmpty(t, apiErr.Message)
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client, err := api.New(server.URL)
	require.NoError(t, err)

	err = client.GetJSON(context.Background(), "test.Get", "/health", nil, nil)
	require.ErrorIs(t, err, api.NetworkErr)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Zero(t, apiErr.Status)
}

func TestMalformedSuccessBodyIsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client, err := api.New(server.URL)
	require.NoError(t, err)

	var out map[string]any
	err = client.GetJSON(context.Background(), "test.Get", "/health", nil, &out)
	require.ErrorIs(t, err, api.ServerErr)
}

func TestDefaultHeadersAppliedToEveryRequest(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Client")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, err := api.New(server.URL, api.WithDefaultHeader("X-Client", "chatctl"))
	require.NoError(t, err)

	require.NoError(t, client.GetJSON(context.Background(), "test.Get", "/health", nil, nil))
	require.Equal(t, "chatctl", got)
}

func TestGetRawReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("plain text export"))
	}))
	defer server.Close()

	client, err := api.New(server.URL)
	require.NoError(t, err)

	data, err := client.GetRaw(context.Background(), "chat.Export", "/export/conversation/abc", nil)
	require.NoError(t, err)
	require.Equal(t, "plain text export", string(data))
}

func TestPathSegmentsAreEscapedExactlyOnce(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, err := api.New(server.URL)
	require.NoError(t, err)

	// IDs can carry spaces (they embed uploaded filenames); the decoded
	// path the server routes on must match the raw ID.
	err = client.Delete(context.Background(), "test.Delete", "/files/alice_my notes.txt_123", nil)
	require.NoError(t, err)
	require.Equal(t, "/files/alice_my notes.txt_123", gotPath)
}

func TestBaseURLPathIsPreserved(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, err := api.New(server.URL + "/api/v1/")
	require.NoError(t, err)

	require.NoError(t, client.GetJSON(context.Background(), "test.Get", "/health", nil, nil))
	require.Equal(t, "/api/v1/health", gotPath)
}
