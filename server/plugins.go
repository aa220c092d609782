package server

import (
	"fmt"
	"strings"
	"sync"
)

// PluginResult is the uniform execution envelope every plugin returns.
type PluginResult struct {
	Success  bool           `json:"success"`
	Data     map[string]any `json:"data,omitempty"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Plugin is one registered capability. The dev server ships deterministic
// stub plugins; proxying real weather/news/wikipedia APIs is the production
// backend's job.
type Plugin struct {
	Name          string
	Description   string
	Version       string
	Capabilities  []string
	HelpText      string
	UsageExamples []string
	Execute       func(params map[string]any) PluginResult
}

type PluginRegistry struct {
	mu      sync.RWMutex
	order   []string
	plugins map[string]*Plugin
}

func NewPluginRegistry() *PluginRegistry {
	return &PluginRegistry{plugins: make(map[string]*Plugin)}
}

func (r *PluginRegistry) Register(p *Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plugins[p.Name]; !ok {
		r.order = append(r.order, p.Name)
	}
	r.plugins[p.Name] = p
}

func (r *PluginRegistry) List() []*Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Plugin, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.plugins[name])
	}
	return out
}

func (r *PluginRegistry) ExecutePlugin(name string, params map[string]any) PluginResult {
	r.mu.RLock()
	plugin, ok := r.plugins[name]
	r.mu.RUnlock()
	if !ok {
		return PluginResult{Success: false, Error: fmt.Sprintf("Plugin '%s' not found", name)}
	}
	return plugin.Execute(params)
}

// HealthAll reports availability per plugin. Stubs are always healthy.
func (r *PluginRegistry) HealthAll() map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]bool, len(r.plugins))
	for name := range r.plugins {
		out[name] = true
	}
	return out
}

func stringParam(params map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := params[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// DefaultPlugins returns the stub weather, news, and wikipedia plugins with
// canned data mirroring the shapes the production plugins produce.
func DefaultPlugins() *PluginRegistry {
	registry := NewPluginRegistry()

	registry.Register(&Plugin{
		Name:          "weather",
		Description:   "Current weather conditions for a location",
		Version:       "1.0.0",
		Capabilities:  []string{"current_weather"},
		HelpText:      "Plugin: weather v1.0.0\nCurrent weather conditions for a location",
		UsageExamples: []string{"/weather London", "/weather New York"},
		Execute: func(params map[string]any) PluginResult {
			location := stringParam(params, "location", "query")
			if location == "" {
				return PluginResult{Success: false, Error: "location parameter is required"}
			}
			return PluginResult{
				Success: true,
				Data: map[string]any{
					"location":            location,
					"temperature":         map[string]any{"current": "18°C", "feels_like": "16°C"},
					"humidity":            "62%",
					"wind":                map[string]any{"speed": "11 km/h"},
					"weather_description": "partly cloudy",
				},
				Metadata: map[string]any{"source": "stub"},
			}
		},
	})

	registry.Register(&Plugin{
		Name:          "news",
		Description:   "Latest news headlines for a topic",
		Version:       "1.0.0",
		Capabilities:  []string{"headlines", "topic_search"},
		HelpText:      "Plugin: news v1.0.0\nLatest news headlines for a topic",
		UsageExamples: []string{"/news technology", "/news climate"},
		Execute: func(params map[string]any) PluginResult {
			topic := stringParam(params, "topic", "query")
			if topic == "" {
				topic = "top stories"
			}
			return PluginResult{
				Success: true,
				Data: map[string]any{
					"articles": []map[string]any{
						{
							"title":       fmt.Sprintf("Developments in %s", topic),
							"description": fmt.Sprintf("A stubbed summary of recent %s coverage.", topic),
							"source":      "Dev Server Wire",
						},
					},
				},
				Metadata: map[string]any{"source": "stub"},
			}
		},
	})

	registry.Register(&Plugin{
		Name:          "wikipedia",
		Description:   "Article summaries from Wikipedia",
		Version:       "1.0.0",
		Capabilities:  []string{"search", "summary"},
		HelpText:      "Plugin: wikipedia v1.0.0\nArticle summaries from Wikipedia",
		UsageExamples: []string{"/wiki Go (programming language)"},
		Execute: func(params map[string]any) PluginResult {
			query := stringParam(params, "query", "title")
			if query == "" {
				return PluginResult{Success: false, Error: "query parameter is required"}
			}
			return PluginResult{
				Success: true,
				Data: map[string]any{
					"title":   query,
					"extract": fmt.Sprintf("Stub summary for %q. The production plugin proxies the Wikipedia API.", query),
					"url":     "https://en.wikipedia.org/wiki/" + strings.ReplaceAll(query, " ", "_"),
				},
				Metadata: map[string]any{"source": "stub"},
			}
		},
	})

	return registry
}
