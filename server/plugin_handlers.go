package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"
)

func (s *Server) ListPluginsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plugins := make([]map[string]any, 0)
		for _, p := range s.plugins.List() {
			plugins = append(plugins, map[string]any{
				"name":           p.Name,
				"description":    p.Description,
				"version":        p.Version,
				"capabilities":   p.Capabilities,
				"help_text":      p.HelpText,
				"usage_examples": p.UsageExamples,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"plugins": plugins})
	}
}

func (s *Server) ExecutePluginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params map[string]any
		// An empty body means no parameters.
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil && !errors.Is(err, io.EOF) {
			writeDetail(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if params == nil {
			params = map[string]any{}
		}

		result := s.plugins.ExecutePlugin(r.PathValue("name"), params)
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"services": map[string]any{
				"database": "in-memory",
				"memory":   "active",
				"plugins":  s.plugins.HealthAll(),
			},
		})
	}
}
