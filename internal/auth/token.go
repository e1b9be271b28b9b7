// Package auth validates bearer tokens issued to clinicians and patients.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Scopes used by the posture service.
const (
	ScopeSessionsRead  = "sessions:read"
	ScopeSessionsWrite = "sessions:write"
)

// Config holds signer verification parameters.
type Config struct {
	Secret string
	Issuer string
}

// Claims is the normalized token payload. Sessions are owned by TenantID and Subject.
type Claims struct {
	Subject   string
	TenantID  string
	Scopes    map[string]struct{}
	ExpiresAt time.Time
}

var (
	// ErrMissingToken is returned when the Authorization header is absent.
	ErrMissingToken = errors.New("missing bearer token")
	// ErrInvalidToken wraps parsing and validation errors.
	ErrInvalidToken = errors.New("invalid bearer token")
)

// Parse validates an HS256 token and returns its claims.
func Parse(token string, cfg Config) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	},
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	subject, _ := mc["sub"].(string)
	tenantID, _ := mc["tenant_id"].(string)
	if subject == "" || tenantID == "" {
		return nil, fmt.Errorf("%w: sub and tenant_id are required", ErrInvalidToken)
	}

	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: exp is required", ErrInvalidToken)
	}

	return &Claims{
		Subject:   subject,
		TenantID:  tenantID,
		Scopes:    scopeSet(mc["scopes"]),
		ExpiresAt: exp.Time,
	}, nil
}

// Sign issues an HS256 token for the claims. Used by local tooling and tests.
func Sign(claims Claims, cfg Config) (string, error) {
	scopes := make([]string, 0, len(claims.Scopes))
	for scope := range claims.Scopes {
		scopes = append(scopes, scope)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":       cfg.Issuer,
		"sub":       claims.Subject,
		"tenant_id": claims.TenantID,
		"scopes":    scopes,
		"exp":       jwt.NewNumericDate(claims.ExpiresAt),
	})
	return token.SignedString([]byte(cfg.Secret))
}

func scopeSet(value interface{}) map[string]struct{} {
	out := make(map[string]struct{})
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			out[s] = struct{}{}
		}
	}
	switch v := value.(type) {
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	case []string:
		for _, s := range v {
			add(s)
		}
	case string:
		for _, s := range strings.Fields(v) {
			add(s)
		}
	}
	return out
}

// HasScope reports whether the claim set includes the scope.
func (c *Claims) HasScope(scope string) bool {
	if c == nil {
		return false
	}
	_, ok := c.Scopes[scope]
	return ok
}

// Owns reports whether the caller is the tenant and subject a session belongs to.
func (c *Claims) Owns(tenantID, userID string) bool {
	return c != nil && c.TenantID == tenantID && c.Subject == userID
}
