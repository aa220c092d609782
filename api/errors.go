package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Failure taxonomy. Every error returned by the client unwraps to exactly
// one of these, so callers can classify with errors.Is.
var (
	NetworkErr        = errors.New("network failure")
	AuthenticationErr = errors.New("authentication failure")
	ValidationErr     = errors.New("validation failure")
	ServerErr         = errors.New("server failure")
)

// Error is the classified failure of a single request. Message holds the
// server-provided detail when the body carried one, otherwise a generic
// message for the operation.
type Error struct {
	Op      string // operation that issued the request, e.g. "chat.SendMessage"
	Status  int    // HTTP status, 0 when the transport never completed
	Message string
	kind    error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("[%s] %s", e.Op, e.Message)
	}
	return fmt.Sprintf("[%s] %d: %s", e.Op, e.Status, e.Message)
}

func (e *Error) Unwrap() error { return e.kind }

func classify(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return AuthenticationErr
	case status >= 400 && status < 500:
		return ValidationErr
	default:
		return ServerErr
	}
}

func newStatusError(op string, status int, message string) *Error {
	if message == "" {
		message = fmt.Sprintf("%s failed (%d)", op, status)
	}
	return &Error{Op: op, Status: status, Message: message, kind: classify(status)}
}

func newNetworkError(op string, err error) *Error {
	return &Error{Op: op, Message: err.Error(), kind: NetworkErr}
}

func newDecodeError(op string, err error) *Error {
	return &Error{Op: op, Message: "malformed response: " + err.Error(), kind: ServerErr}
}

const maxErrorBodyBytes int64 = 64 << 10

func readBodyLimited(r io.Reader, maxBytes int64) []byte {
	if r == nil || maxBytes <= 0 {
		return nil
	}
	data, _ := io.ReadAll(io.LimitReader(r, maxBytes))
	return data
}

// detailEnvelope is the backend's error body: {"detail": "..."}.
type detailEnvelope struct {
	Detail json.RawMessage `json:"detail"`
}

func detailFromBody(data []byte) string {
	if len(bytes.TrimSpace(data)) == 0 {
		return ""
	}
	var payload detailEnvelope
	if err := json.Unmarshal(data, &payload); err == nil && len(payload.Detail) > 0 {
		var msg string
		if err := json.Unmarshal(payload.Detail, &msg); err == nil {
			return strings.TrimSpace(msg)
		}
		// Detail can be structured (validation errors); keep it verbatim.
		return strings.TrimSpace(string(payload.Detail))
	}
	return ""
}
