package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/chatterbox/chatterbox-go/server/store"
)

func (s *Server) SendMessageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid multipart body")
			return
		}
		message := r.PostFormValue("message")
		if strings.TrimSpace(message) == "" {
			writeDetail(w, http.StatusBadRequest, "message is required")
			return
		}
		conversationID := r.PostFormValue("conversation_id")

		reply, replyType := s.composeReply(message)

		// Plugin responses are not recorded in history, matching the
		// production engine's short-circuit before the model runs.
		if replyType != "plugin_response" {
			if conversationID == "" {
				conversationID = s.convs.Create(user.ID, conversationTitle(message)).ID
			} else {
				conv, err := s.convs.Get(conversationID)
				if err != nil {
					writeDetail(w, http.StatusNotFound, store.ConversationNotFoundErr.Error())
					return
				}
				if conv.UserID != user.ID {
					writeDetail(w, http.StatusForbidden, store.AccessDeniedErr.Error())
					return
				}
			}
			now := time.Now().UTC()
			if err := s.convs.Append(conversationID,
				store.Message{Role: "user", Content: message, Timestamp: now},
				store.Message{Role: "assistant", Content: reply, Timestamp: now},
			); err != nil {
				writeDetail(w, http.StatusInternalServerError, "Failed to save conversation")
				return
			}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"response":        reply,
			"conversation_id": conversationID,
			"timestamp":       time.Now().UTC().Format(time.RFC3339),
			"type":            replyType,
		})
	}
}

func (s *Server) ListConversationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)

		limit := 20
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				limit = parsed
			}
		}

		conversations := s.convs.ListByUser(user.ID, limit)
		serialized := make([]map[string]any, 0, len(conversations))
		for _, conv := range conversations {
			serialized = append(serialized, map[string]any{
				"id":            conv.ID,
				"title":         conv.Title,
				"created_at":    conv.CreatedAt.Format(time.RFC3339),
				"updated_at":    conv.UpdatedAt.Format(time.RFC3339),
				"message_count": len(conv.Messages),
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"conversations": serialized})
	}
}

// ownedConversation loads the conversation and enforces ownership, writing
// the appropriate error response when it cannot.
func (s *Server) ownedConversation(w http.ResponseWriter, r *http.Request) (*store.Conversation, bool) {
	user := currentUser(r)
	conv, err := s.convs.Get(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ConversationNotFoundErr) {
			writeDetail(w, http.StatusNotFound, err.Error())
		} else {
			writeDetail(w, http.StatusInternalServerError, "Failed to load conversation")
		}
		return nil, false
	}
	if conv.UserID != user.ID {
		writeDetail(w, http.StatusForbidden, store.AccessDeniedErr.Error())
		return nil, false
	}
	return conv, true
}

func (s *Server) GetConversationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conv, ok := s.ownedConversation(w, r)
		if !ok {
			return
		}

		messages := make([]map[string]any, 0, len(conv.Messages))
		for _, msg := range conv.Messages {
			messages = append(messages, map[string]any{
				"id":        msg.ID,
				"role":      msg.Role,
				"content":   msg.Content,
				"timestamp": msg.Timestamp.Format(time.RFC3339),
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"id":         conv.ID,
			"title":      conv.Title,
			"created_at": conv.CreatedAt.Format(time.RFC3339),
			"updated_at": conv.UpdatedAt.Format(time.RFC3339),
			"messages":   messages,
		})
	}
}

func (s *Server) DeleteConversationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conv, ok := s.ownedConversation(w, r)
		if !ok {
			return
		}
		if err := s.convs.Delete(conv.ID); err != nil {
			writeDetail(w, http.StatusInternalServerError, "Failed to delete conversation")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Conversation deleted successfully"})
	}
}

func (s *Server) ExportConversationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conv, ok := s.ownedConversation(w, r)
		if !ok {
			return
		}

		format := strings.ToLower(r.URL.Query().Get("format"))
		if format == "" {
			format = "txt"
		}

		var rendered []byte
		var mediaType string
		switch format {
		case "txt":
			rendered = exportToText(conv)
			mediaType = "text/plain"
		case "json":
			var err error
			rendered, err = exportToJSON(conv)
			if err != nil {
				writeDetail(w, http.StatusInternalServerError, "Failed to export conversation")
				return
			}
			mediaType = "application/json"
		default:
			writeDetail(w, http.StatusBadRequest, fmt.Sprintf("Unsupported export format: %s", format))
			return
		}

		filename := fmt.Sprintf("conversation_%s.%s", conv.ID, format)
		w.Header().Set("Content-Type", mediaType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		_, _ = w.Write(rendered)
	}
}

func exportToText(conv *store.Conversation) []byte {
	lines := []string{
		fmt.Sprintf("Conversation: %s", conv.Title),
		fmt.Sprintf("Created: %s", conv.CreatedAt.Format(time.RFC3339)),
		fmt.Sprintf("Updated: %s", conv.UpdatedAt.Format(time.RFC3339)),
		strings.Repeat("=", 50),
		"",
	}
	for _, msg := range conv.Messages {
		role := "Assistant"
		if msg.Role == "user" {
			role = "User"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", role, msg.Content), "")
	}
	return []byte(strings.Join(lines, "\n"))
}

func exportToJSON(conv *store.Conversation) ([]byte, error) {
	messages := make([]map[string]any, 0, len(conv.Messages))
	for _, msg := range conv.Messages {
		messages = append(messages, map[string]any{
			"role":      msg.Role,
			"content":   msg.Content,
			"timestamp": msg.Timestamp.Format(time.RFC3339),
		})
	}
	return json.MarshalIndent(map[string]any{
		"title":      conv.Title,
		"created_at": conv.CreatedAt.Format(time.RFC3339),
		"updated_at": conv.UpdatedAt.Format(time.RFC3339),
		"messages":   messages,
	}, "", "  ")
}
