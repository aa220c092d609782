package store

import (
	"errors"
	"sort"
	"sync"
	"time"
)

var DocumentNotFoundErr = errors.New("Document not found")

type Document struct {
	ID         string
	UserID     string
	Filename   string
	FileType   string
	Content    string
	Size       int
	UploadedAt time.Time
}

type Documents struct {
	mu   sync.RWMutex
	byID map[string]*Document
}

func NewDocuments() *Documents {
	return &Documents{byID: make(map[string]*Document)}
}

func (d *Documents) Add(doc *Document) {
	d.mu.Lock()
	defer d.mu.Unlock()
	copied := *doc
	d.byID[doc.ID] = &copied
}

func (d *Documents) ListByUser(userID string) []*Document {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []*Document
	for _, doc := range d.byID {
		if doc.UserID == userID {
			copied := *doc
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out
}

// Delete removes the document only when it belongs to userID; absence and
// foreign ownership are indistinguishable to the caller.
func (d *Documents) Delete(id, userID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	doc, ok := d.byID[id]
	if !ok || doc.UserID != userID {
		return DocumentNotFoundErr
	}
	delete(d.byID, id)
	return nil
}
