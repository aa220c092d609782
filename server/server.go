// Package server is an in-memory development server implementing the
// chatbot REST API. It gives the client SDK and CLI something real to talk
// to without OpenAI, a vector store, or a document database: chat replies
// are canned, plugins are stubs, and all state lives for one process.
package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/chatterbox/chatterbox-go/internal/config"
	"github.com/chatterbox/chatterbox-go/server/store"
)

type Server struct {
	env    string
	mux    *http.ServeMux
	routes []string
	config config.Config

	users   *store.Users
	convs   *store.Conversations
	docs    *store.Documents
	plugins *PluginRegistry
	tokens  *TokenManager

	log zerolog.Logger
}

type Option func(*Server)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// WithPlugins replaces the default stub plugin set.
func WithPlugins(registry *PluginRegistry) Option {
	return func(s *Server) {
		s.plugins = registry
	}
}

func New(cfg config.Config, options ...Option) *Server {
	s := &Server{
		mux:     http.NewServeMux(),
		config:  cfg,
		users:   store.NewUsers(),
		convs:   store.NewConversations(),
		docs:    store.NewDocuments(),
		plugins: DefaultPlugins(),
		tokens:  NewTokenManager(cfg.GetJWTSecret(), cfg.GetTokenLifetime()),
		log:     zerolog.Nop(),
	}
	s.env = cfg.GetEnv()
	for _, opt := range options {
		opt(s)
	}

	s.initRoutes()
	s.logRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			s.logRoute(parts[0], parts[1])
		} else {
			s.logRoute("", parts[0])
		}
	}
}

func (s *Server) logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	s.log.Info().Msgf("[%-19s] %s", displayMethod, path)
}
