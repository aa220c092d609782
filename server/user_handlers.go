package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/chatterbox/chatterbox-go/server/store"
)

func profilePayload(user *store.User, memoryStats map[string]any) map[string]any {
	var lastLogin any
	if user.LastLogin != nil {
		lastLogin = user.LastLogin.Format(time.RFC3339)
	}
	return map[string]any{
		"id":           user.ID,
		"username":     user.Username,
		"email":        user.Email,
		"created_at":   user.CreatedAt.Format(time.RFC3339),
		"last_login":   lastLogin,
		"is_active":    user.IsActive,
		"memory_stats": memoryStats,
	}
}

func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		stats := map[string]any{
			"conversations": len(s.convs.ListByUser(user.ID, 0)),
			"documents":     len(s.docs.ListByUser(user.ID)),
		}
		writeJSON(w, http.StatusOK, profilePayload(user, stats))
	}
}

// UpdateProfileHandler applies a partial update and echoes back only the
// fields that changed, which the client shallow-merges into its user record.
func (s *Server) UpdateProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)

		var fields map[string]any
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		updated := map[string]any{}
		if email, ok := fields["email"].(string); ok {
			applied, err := s.users.SetEmail(user.Username, email)
			if err != nil {
				writeDetail(w, http.StatusInternalServerError, "Failed to update profile")
				return
			}
			updated["email"] = applied.Email
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) ChangePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)

		if err := r.ParseForm(); err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid form body")
			return
		}
		current := r.PostFormValue("current_password")
		next := r.PostFormValue("new_password")
		if current == "" || next == "" {
			writeDetail(w, http.StatusBadRequest, "current_password and new_password are required")
			return
		}

		if err := s.users.ChangePassword(user.Username, current, next); err != nil {
			if errors.Is(err, store.WrongPasswordErr) {
				writeDetail(w, http.StatusBadRequest, err.Error())
				return
			}
			s.log.Error().Err(err).Msg("password change failed")
			writeDetail(w, http.StatusInternalServerError, "Failed to change password")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
	}
}
