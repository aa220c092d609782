package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/chatterbox/chatterbox-go/server/store"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if strings.TrimSpace(req.Username) == "" || req.Password == "" {
			writeDetail(w, http.StatusBadRequest, "Username and password are required")
			return
		}

		user, err := s.users.Create(req.Username, req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, store.DuplicateUsernameErr), errors.Is(err, store.DuplicateEmailErr):
				writeDetail(w, http.StatusBadRequest, err.Error())
			default:
				s.log.Error().Err(err).Msg("register failed")
				writeDetail(w, http.StatusInternalServerError, "Internal server error during registration")
			}
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"message":  "User registered successfully",
			"user_id":  user.ID,
			"username": user.Username,
			"email":    user.Email,
		})
	}
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		user, err := s.users.Authenticate(req.Username, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, store.InactiveUserErr):
				writeDetail(w, http.StatusBadRequest, err.Error())
			default:
				writeDetail(w, http.StatusUnauthorized, store.BadCredentialsErr.Error())
			}
			return
		}

		token, expiresIn, err := s.tokens.Issue(user.Username)
		if err != nil {
			s.log.Error().Err(err).Msg("token issue failed")
			writeDetail(w, http.StatusInternalServerError, "Internal server error during login")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": token,
			"token_type":   "bearer",
			"expires_in":   expiresIn,
		})
	}
}
