package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ConversationNotFoundErr = errors.New("Conversation not found")
	AccessDeniedErr         = errors.New("Access denied")
)

type Message struct {
	ID        string
	Role      string
	Content   string
	Timestamp time.Time
}

type Conversation struct {
	ID        string
	UserID    string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
	Messages  []Message
}

type Conversations struct {
	mu      sync.RWMutex
	byID    map[string]*Conversation
	nowTime func() time.Time
}

func NewConversations() *Conversations {
	return &Conversations{
		byID:    make(map[string]*Conversation),
		nowTime: time.Now,
	}
}

func (c *Conversations) Create(userID, title string) *Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.nowTime().UTC()
	conv := &Conversation{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.byID[conv.ID] = conv
	return snapshot(conv)
}

// Get returns the conversation regardless of owner; callers enforce access.
func (c *Conversations) Get(id string) (*Conversation, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	conv, ok := c.byID[id]
	if !ok {
		return nil, ConversationNotFoundErr
	}
	return snapshot(conv), nil
}

func (c *Conversations) Append(id string, messages ...Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	conv, ok := c.byID[id]
	if !ok {
		return ConversationNotFoundErr
	}
	for i := range messages {
		if messages[i].ID == "" {
			messages[i].ID = uuid.New().String()
		}
	}
	conv.Messages = append(conv.Messages, messages...)
	conv.UpdatedAt = c.nowTime().UTC()
	return nil
}

// ListByUser returns the user's conversations, most recently updated first.
func (c *Conversations) ListByUser(userID string, limit int) []*Conversation {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []*Conversation
	for _, conv := range c.byID {
		if conv.UserID == userID {
			out = append(out, snapshot(conv))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (c *Conversations) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byID[id]; !ok {
		return ConversationNotFoundErr
	}
	delete(c.byID, id)
	return nil
}

func snapshot(conv *Conversation) *Conversation {
	copied := *conv
	copied.Messages = append([]Message(nil), conv.Messages...)
	return &copied
}
