package server

import (
	"fmt"
	"strings"
)

// commandPlugins maps chat slash-commands to plugin parameters, mirroring
// the command routing the production chat engine performs before falling
// through to the language model.
var commandPlugins = map[string]struct {
	plugin string
	param  string
}{
	"/weather": {plugin: "weather", param: "location"},
	"/news":    {plugin: "news", param: "topic"},
	"/wiki":    {plugin: "wikipedia", param: "query"},
}

// composeReply produces the assistant's answer for one message and reports
// whether it came from a plugin command or the (stubbed) model.
func (s *Server) composeReply(message string) (reply, replyType string) {
	trimmed := strings.TrimSpace(message)
	for prefix, route := range commandPlugins {
		if trimmed != prefix && !strings.HasPrefix(trimmed, prefix+" ") {
			continue
		}
		arg := strings.TrimSpace(strings.TrimPrefix(trimmed, prefix))
		result := s.plugins.ExecutePlugin(route.plugin, map[string]any{route.param: arg})
		if !result.Success {
			return fmt.Sprintf("Plugin error: %s", result.Error), "plugin_response"
		}
		return formatPluginData(route.plugin, result.Data), "plugin_response"
	}

	// Deterministic stand-in for the model; the production backend
	// delegates this to OpenAI.
	return fmt.Sprintf("You said: %q. The dev server answers deterministically; connect the production backend for real AI responses.", trimmed), "ai_response"
}

func formatPluginData(plugin string, data map[string]any) string {
	switch plugin {
	case "weather":
		temp, _ := data["temperature"].(map[string]any)
		wind, _ := data["wind"].(map[string]any)
		lines := []string{
			fmt.Sprintf("Weather in %v:", data["location"]),
			fmt.Sprintf("- Current: %v", valueOr(temp, "current")),
			fmt.Sprintf("- Feels like: %v", valueOr(temp, "feels_like")),
			fmt.Sprintf("- Humidity: %v", data["humidity"]),
			fmt.Sprintf("- Wind: %v", valueOr(wind, "speed")),
			fmt.Sprintf("- Description: %v", data["weather_description"]),
		}
		return strings.Join(lines, "\n")
	case "news":
		articles, _ := data["articles"].([]map[string]any)
		if len(articles) == 0 {
			return "No news articles found."
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Found %d news articles:\n", len(articles))
		for i, article := range articles {
			fmt.Fprintf(&b, "%d. %v\n   %v\n   Source: %v\n", i+1, article["title"], article["description"], article["source"])
		}
		return strings.TrimRight(b.String(), "\n")
	case "wikipedia":
		return fmt.Sprintf("%v\n\n%v\n\nRead more: %v", data["title"], data["extract"], data["url"])
	default:
		return fmt.Sprintf("%v", data)
	}
}

func valueOr(m map[string]any, key string) any {
	if m == nil {
		return "N/A"
	}
	v, ok := m[key]
	if !ok {
		return "N/A"
	}
	return v
}

// conversationTitle derives a title from the opening message the way the
// production engine does: the first words, truncated.
func conversationTitle(message string) string {
	trimmed := strings.TrimSpace(message)
	runes := []rune(trimmed)
	if len(runes) > 50 {
		return string(runes[:50]) + "..."
	}
	if trimmed == "" {
		return "New conversation"
	}
	return trimmed
}
