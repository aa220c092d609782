package server

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

// APIMiddleware is the chain applied to unauthenticated API routes.
func (s *Server) APIMiddleware() []func(http.HandlerFunc) http.HandlerFunc {
	chain := []func(http.HandlerFunc) http.HandlerFunc{
		s.RecoveryMiddleware,
		s.LoggingMiddleware,
		s.CORSMiddleware,
	}
	if s.config.GetEnableRateLimiting() {
		chain = append(chain, s.RateLimitMiddleware())
	}
	return chain
}

// AuthedAPIMiddleware appends bearer-token validation to the API chain.
func (s *Server) AuthedAPIMiddleware() []func(http.HandlerFunc) http.HandlerFunc {
	return append(s.APIMiddleware(), s.RequireAuth)
}

func (s *Server) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(recorder, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) RecoveryMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panicked")
				writeDetail(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next(w, r)
	}
}

func (s *Server) CORSMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.config.GetAllowedOrigins().IsAllowedOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", s.config.GetAllowedMethods())
			w.Header().Set("Access-Control-Allow-Headers", s.config.GetAllowedHeaders())
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

// RateLimitMiddleware keeps one token bucket per remote address.
func (s *Server) RateLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	perSecond, burst := s.config.GetRateLimit()
	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	limiterFor := func(addr string) *rate.Limiter {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr
		}
		mu.Lock()
		defer mu.Unlock()
		limiter, ok := limiters[host]
		if !ok {
			limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
			limiters[host] = limiter
		}
		return limiter
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !limiterFor(r.RemoteAddr).Allow() {
				writeDetail(w, http.StatusTooManyRequests, "Too many requests")
				return
			}
			next(w, r)
		}
	}
}
