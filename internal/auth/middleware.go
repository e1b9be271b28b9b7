package auth

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Skipper lets requests bypass authentication.
type Skipper func(r *http.Request) bool

// PublicPaths skips health and metrics endpoints.
func PublicPaths(r *http.Request) bool {
	return r.URL.Path == "/healthz" || r.URL.Path == "/metrics"
}

// Middleware enforces bearer-token authentication.
type Middleware struct {
	Config  Config
	Skipper Skipper
}

// NewMiddleware constructs middleware skipping PublicPaths.
func NewMiddleware(cfg Config) Middleware {
	return Middleware{Config: cfg, Skipper: PublicPaths}
}

// Wrap applies authentication around next.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Skipper != nil && m.Skipper(r) {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.parseRequest(r)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("WWW-Authenticate", `Bearer realm="posture"`)
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"type": "unauthorized", "detail": err.Error()})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

func (m Middleware) parseRequest(r *http.Request) (*Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, ErrMissingToken
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return nil, ErrInvalidToken
	}
	return Parse(token, m.Config)
}
