package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// TokenSource supplies the persisted bearer token for outgoing requests.
// Returning a nil token (or one with an empty access token) means the
// request goes out without an Authorization header, never with an empty one.
type TokenSource interface {
	Token() (*oauth2.Token, error)
}

// Client wraps an *http.Client with the backend's base URL, a request
// deadline, default headers, bearer-token injection, and 401 interception.
//
// The token is re-read from the TokenSource on every call; the client never
// caches credentials in default headers, so login and logout need no
// ordering relative to other requests.
type Client struct {
	baseURL        *url.URL
	httpClient     *http.Client
	defaultHeaders http.Header
	tokens         TokenSource
	onUnauthorized func()
	log            zerolog.Logger
}

type Option func(*Client)

// WithTimeout sets the transport-level request deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithDefaultHeader adds a header applied to every request.
func WithDefaultHeader(key, value string) Option {
	return func(c *Client) {
		c.defaultHeaders.Set(key, value)
	}
}

// WithHTTPClient replaces the underlying http.Client (primarily for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTokenSource sets where the bearer token is read from before each request.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

func New(baseURL string, options ...Option) (*Client, error) {
	raw := strings.TrimSpace(baseURL)
	if raw == "" {
		return nil, errors.New("[api.New] base URL is required")
	}
	// url.Parse treats scheme-less hosts as paths; prefix http:// for convenience.
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Wrap(err, "[api.New] invalid base URL")
	}
	if parsed.Host == "" {
		return nil, errors.New("[api.New] base URL has no host")
	}

	c := &Client{
		baseURL:        parsed,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		defaultHeaders: http.Header{},
		log:            zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// SetTokenSource replaces the token source after construction. The session
// store uses this to bind its token repository to the client.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// SetUnauthorizedHandler wires the forced-logout side effect run when any
// response comes back 401: clearing the persisted token, resetting the
// session, and sending the user back to the login entry point. It fires
// exactly once per failing request and the request is not retried.
//
// The handler must be set before authenticated requests are issued: a 401
// with no handler has nowhere to send the user.
func (c *Client) SetUnauthorizedHandler(fn func()) {
	c.onUnauthorized = fn
}

// url joins p onto the base URL's path. p is taken unescaped; serialization
// escapes it exactly once, so callers must not pre-escape path segments.
func (c *Client) url(p string, query url.Values) string {
	u := *c.baseURL
	u.Path = path.Join(strings.TrimSuffix(u.Path, "/"), p)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) newRequest(ctx context.Context, method, p string, query url.Values, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(p, query), body)
	if err != nil {
		return nil, err
	}
	for key, values := range c.defaultHeaders {
		for _, v := range values {
			req.Header.Set(key, v)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		tok, err := c.tokens.Token()
		if err == nil && tok != nil && strings.TrimSpace(tok.AccessToken) != "" {
			req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
		}
	}
	return req, nil
}

func (c *Client) do(op string, req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Str("op", op).Err(err).Msg("transport failure")
		return nil, newNetworkError(op, err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		data := readBodyLimited(resp.Body, maxErrorBodyBytes)
		_ = resp.Body.Close()
		c.log.Debug().Str("op", op).Msg("unauthorized response, forcing logout")
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return nil, newStatusError(op, resp.StatusCode, detailFromBody(data))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data := readBodyLimited(resp.Body, maxErrorBodyBytes)
		_ = resp.Body.Close()
		return nil, newStatusError(op, resp.StatusCode, detailFromBody(data))
	}
	return resp, nil
}

func (c *Client) decode(op string, resp *http.Response, out any) error {
	defer func() { _ = resp.Body.Close() }()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return newDecodeError(op, err)
	}
	return nil
}

// GetJSON issues a GET request and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, op, p string, query url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, p, query, nil, "")
	if err != nil {
		return newNetworkError(op, err)
	}
	resp, err := c.do(op, req)
	if err != nil {
		return err
	}
	return c.decode(op, resp, out)
}

// GetRaw issues a GET request and returns the raw response body, used for
// binary downloads such as conversation exports.
func (c *Client) GetRaw(ctx context.Context, op, p string, query url.Values) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, p, query, nil, "")
	if err != nil {
		return nil, newNetworkError(op, err)
	}
	resp, err := c.do(op, req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newNetworkError(op, err)
	}
	return data, nil
}

func (c *Client) sendJSON(ctx context.Context, op, method, p string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return newNetworkError(op, err)
	}
	req, err := c.newRequest(ctx, method, p, nil, bytes.NewReader(encoded), "application/json")
	if err != nil {
		return newNetworkError(op, err)
	}
	resp, err := c.do(op, req)
	if err != nil {
		return err
	}
	return c.decode(op, resp, out)
}

func (c *Client) PostJSON(ctx context.Context, op, p string, body, out any) error {
	return c.sendJSON(ctx, op, http.MethodPost, p, body, out)
}

func (c *Client) PutJSON(ctx context.Context, op, p string, body, out any) error {
	return c.sendJSON(ctx, op, http.MethodPut, p, body, out)
}

// PutForm issues a PUT with a URL-encoded form body.
func (c *Client) PutForm(ctx context.Context, op, p string, form url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodPut, p, nil, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return newNetworkError(op, err)
	}
	resp, err := c.do(op, req)
	if err != nil {
		return err
	}
	return c.decode(op, resp, out)
}

func (c *Client) Delete(ctx context.Context, op, p string, out any) error {
	req, err := c.newRequest(ctx, http.MethodDelete, p, nil, nil, "")
	if err != nil {
		return newNetworkError(op, err)
	}
	resp, err := c.do(op, req)
	if err != nil {
		return err
	}
	return c.decode(op, resp, out)
}

// FileField describes the file part of a multipart upload.
type FileField struct {
	Field    string
	Filename string
	Content  io.Reader
}

// PostMultipart issues a POST with a multipart form body built from fields
// and an optional file part.
func (c *Client) PostMultipart(ctx context.Context, op, p string, fields map[string]string, file *FileField, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return newNetworkError(op, err)
		}
	}
	if file != nil {
		part, err := writer.CreateFormFile(file.Field, file.Filename)
		if err != nil {
			return newNetworkError(op, err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return newNetworkError(op, err)
		}
	}
	if err := writer.Close(); err != nil {
		return newNetworkError(op, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, p, nil, &buf, writer.FormDataContentType())
	if err != nil {
		return newNetworkError(op, err)
	}
	resp, err := c.do(op, req)
	if err != nil {
		return err
	}
	return c.decode(op, resp, out)
}
