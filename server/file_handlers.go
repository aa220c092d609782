package server

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/chatterbox/chatterbox-go/server/store"
)

// allowedExtensions mirrors the production backend's upload allowlist.
// PDF and DOCX are accepted but stored as-is: text extraction belongs to
// the real backend.
var allowedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".pdf":  true,
	".docx": true,
}

const maxUploadBytes = 16 << 20

func (s *Server) UploadFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)

		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid multipart body")
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "file part is required")
			return
		}
		defer func() { _ = file.Close() }()

		ext := strings.ToLower(filepath.Ext(header.Filename))
		if !allowedExtensions[ext] {
			allowed := make([]string, 0, len(allowedExtensions))
			for e := range allowedExtensions {
				allowed = append(allowed, e)
			}
			sort.Strings(allowed)
			writeDetail(w, http.StatusBadRequest,
				fmt.Sprintf("File type %s not supported. Allowed: %s", ext, strings.Join(allowed, ", ")))
			return
		}

		content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "Failed to read file")
			return
		}

		now := time.Now().UTC()
		doc := &store.Document{
			ID:         fmt.Sprintf("%s_%s_%d", user.Username, header.Filename, now.UnixMilli()),
			UserID:     user.ID,
			Filename:   header.Filename,
			FileType:   ext,
			Content:    string(content),
			Size:       len(content),
			UploadedAt: now,
		}
		s.docs.Add(doc)

		writeJSON(w, http.StatusOK, map[string]any{
			"message":        "File uploaded successfully",
			"document_id":    doc.ID,
			"filename":       doc.Filename,
			"content_length": len(doc.Content),
		})
	}
}

func (s *Server) KnowledgeBaseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)

		documents := make([]map[string]any, 0)
		for _, doc := range s.docs.ListByUser(user.ID) {
			documents = append(documents, map[string]any{
				"id":              doc.ID,
				"content_preview": contentPreview(doc.Content),
				"metadata": map[string]any{
					"filename":    doc.Filename,
					"file_type":   doc.FileType,
					"file_size":   doc.Size,
					"uploaded_at": doc.UploadedAt.Format(time.RFC3339),
				},
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"documents": documents})
	}
}

func (s *Server) DeleteDocumentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)

		if err := s.docs.Delete(r.PathValue("id"), user.ID); err != nil {
			writeDetail(w, http.StatusNotFound, store.DocumentNotFoundErr.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Document deleted successfully"})
	}
}

func contentPreview(content string) string {
	runes := []rune(content)
	if len(runes) > 200 {
		return string(runes[:200]) + "..."
	}
	return content
}
