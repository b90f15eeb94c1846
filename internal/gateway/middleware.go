package gateway

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kodokalabs/tetsuo.26/internal/security"
)

// statusRecorder captures the status code written by the wrapped handler,
// so withMetrics can label the request after the fact.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// withMetrics records request count and latency for the admin API, keyed
// by the matched route pattern rather than the raw path so path-parameter
// routes don't explode the label cardinality.
func (s *Server) withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Metrics == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sr, r)
		pattern := r.Pattern
		if pattern == "" {
			pattern = r.URL.Path
		}
		s.cfg.Metrics.RecordHTTPRequest(r.Method, pattern, strconv.Itoa(sr.status), time.Since(start).Seconds())
	})
}

// withSecurityHeaders sets the fixed response headers every admin API
// response carries, regardless of auth outcome.
func (s *Server) withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// withCORS enforces same-origin: it only ever echoes back an Origin header
// that matches the request's own Host, and always answers preflight.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && sameOrigin(origin, r.Host) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sameOrigin(origin, host string) bool {
	origin = strings.TrimPrefix(origin, "https://")
	origin = strings.TrimPrefix(origin, "http://")
	return origin == host
}

// withBodyLimit caps the request body at the configured maxRequestBodyBytes.
func (s *Server) withBodyLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxRequestBody)
		next.ServeHTTP(w, r)
	})
}

// withRateLimit enforces rateLimitPerMinute per bearer token (or remote
// address for unauthenticated callers), per invariant 9.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit := s.cfg.Settings.Get().Limits.RateLimitPerMinute
		key := bearerToken(r)
		if key == "" {
			key = r.RemoteAddr
		}
		if !s.limiter.Allow(key, limit) {
			http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withAuth enforces the bearer token contract: Authorization: Bearer <token>
// or a ?token= query parameter (which WebSocket upgrades rely on, and which
// is accepted on every route), or else a valid dashboard session cookie.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if security.ConstantTimeEqual(s.cfg.Token, bearerToken(r)) {
			next.ServeHTTP(w, r)
			return
		}
		if _, ok := s.sessionUserID(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return after
	}
	return r.URL.Query().Get("token")
}

// chain composes middleware outer-to-inner: chain(h, a, b) runs a then b
// then h.
func chain(h http.Handler, mw ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}
