package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/chatterbox/chatterbox-go/server/store"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyUser stores the authenticated *store.User
const ContextKeyUser ContextKey = "user"

// RequireAuth validates the bearer token and loads the account it names.
// Missing, malformed, expired, or forged tokens all produce the same 401
// detail the original backend sends.
func (s *Server) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		username, err := s.tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		user, err := s.users.GetByUsername(username)
		if err != nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeDetail(w, http.StatusUnauthorized, "User not found")
			return
		}
		if !user.IsActive {
			writeDetail(w, http.StatusBadRequest, "Inactive user account")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), ContextKeyUser, user)))
	}
}

// currentUser returns the user placed in the context by RequireAuth.
func currentUser(r *http.Request) *store.User {
	user, _ := r.Context().Value(ContextKeyUser).(*store.User)
	return user
}
