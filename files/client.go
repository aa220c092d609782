// Package files is the resource client for the knowledge base: uploads,
// listing, and deletion.
package files

import (
	"context"
	"fmt"
	"io"

	"github.com/chatterbox/chatterbox-go/api"
)

type Client struct {
	api *api.Client
}

func New(apiClient *api.Client) *Client {
	return &Client{api: apiClient}
}

type UploadResult struct {
	Message       string `json:"message"`
	DocumentID    string `json:"document_id"`
	Filename      string `json:"filename"`
	ContentLength int    `json:"content_length"`
}

type Document struct {
	ID             string         `json:"id"`
	ContentPreview string         `json:"content_preview"`
	Metadata       map[string]any `json:"metadata"`
}

// Upload sends a file as the multipart "file" part. The backend accepts
// .txt, .md, .pdf, and .docx and rejects everything else.
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader) (*UploadResult, error) {
	var out UploadResult
	file := &api.FileField{Field: "file", Filename: filename, Content: content}
	if err := c.api.PostMultipart(ctx, "files.Upload", "/files/upload", nil, file, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// KnowledgeBase lists the caller's uploaded documents.
func (c *Client) KnowledgeBase(ctx context.Context) ([]Document, error) {
	var out struct {
		Documents []Document `json:"documents"`
	}
	if err := c.api.GetJSON(ctx, "files.KnowledgeBase", "/files/knowledge-base", nil, &out); err != nil {
		return nil, err
	}
	return out.Documents, nil
}

func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	p := fmt.Sprintf("/files/%s", id)
	return c.api.Delete(ctx, "files.DeleteDocument", p, nil)
}
