// Package chat is the resource client for conversations: sending messages,
// listing and fetching history, deletion, and export.
package chat

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/chatterbox/chatterbox-go/api"
)

type Client struct {
	api *api.Client
}

func New(apiClient *api.Client) *Client {
	return &Client{api: apiClient}
}

// SendResponse is the backend's reply to one message. Type distinguishes
// normal AI replies ("ai_response") from plugin-command output
// ("plugin_response") and server-side errors ("error").
type SendResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
	Timestamp      string `json:"timestamp"`
	Type           string `json:"type"`
}

type ConversationSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
	MessageCount int    `json:"message_count"`
}

type Message struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt string    `json:"updated_at"`
	Messages  []Message `json:"messages"`
}

// SendMessage posts a message as a multipart form, the backend's contract
// for /chat/send. An empty conversationID starts a new conversation.
func (c *Client) SendMessage(ctx context.Context, message, conversationID string) (*SendResponse, error) {
	fields := map[string]string{"message": message}
	if strings.TrimSpace(conversationID) != "" {
		fields["conversation_id"] = conversationID
	}
	var out SendResponse
	if err := c.api.PostMultipart(ctx, "chat.SendMessage", "/chat/send", fields, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListConversations returns the caller's most recent conversations, newest
// first. limit <= 0 leaves the backend default in place.
func (c *Client) ListConversations(ctx context.Context, limit int) ([]ConversationSummary, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var out struct {
		Conversations []ConversationSummary `json:"conversations"`
	}
	if err := c.api.GetJSON(ctx, "chat.ListConversations", "/chat/conversations", query, &out); err != nil {
		return nil, err
	}
	return out.Conversations, nil
}

func (c *Client) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	var out Conversation
	p := fmt.Sprintf("/chat/conversations/%s", id)
	if err := c.api.GetJSON(ctx, "chat.GetConversation", p, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	p := fmt.Sprintf("/chat/conversations/%s", id)
	return c.api.Delete(ctx, "chat.DeleteConversation", p, nil)
}

// Export downloads a conversation rendered in the given format ("txt" or
// "json") and returns the raw file contents.
func (c *Client) Export(ctx context.Context, id, format string) ([]byte, error) {
	query := url.Values{}
	if strings.TrimSpace(format) != "" {
		query.Set("format", format)
	}
	p := fmt.Sprintf("/export/conversation/%s", id)
	return c.api.GetRaw(ctx, "chat.Export", p, query)
}
