package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testConfig = Config{Secret: "test-secret", Issuer: "i5e.identity"}

func signed(t *testing.T, c Claims, cfg Config) string {
	t.Helper()
	token, err := Sign(c, cfg)
	require.NoError(t, err)
	return token
}

func patientClaims() Claims {
	return Claims{
		Subject:   "patient-1",
		TenantID:  "clinic-a",
		Scopes:    map[string]struct{}{ScopeSessionsRead: {}},
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func TestParseRoundTrip(t *testing.T) {
	claims, err := Parse(signed(t, patientClaims(), testConfig), testConfig)
	require.NoError(t, err)
	require.Equal(t, "patient-1", claims.Subject)
	require.Equal(t, "clinic-a", claims.TenantID)
	require.True(t, claims.HasScope(ScopeSessionsRead))
	require.False(t, claims.HasScope(ScopeSessionsWrite))
}

func TestParseRejects(t *testing.T) {
	expired := patientClaims()
	expired.ExpiresAt = time.Now().Add(-time.Minute)

	noTenant := patientClaims()
	noTenant.TenantID = ""

	cases := map[string]string{
		"wrong secret": signed(t, patientClaims(), Config{Secret: "other", Issuer: testConfig.Issuer}),
		"wrong issuer": signed(t, patientClaims(), Config{Secret: testConfig.Secret, Issuer: "elsewhere"}),
		"expired":      signed(t, expired, testConfig),
		"no tenant":    signed(t, noTenant, testConfig),
		"garbage":      "not-a-jwt",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(token, testConfig)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	_, err := Parse("  ", testConfig)
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestScopeSetAcceptsSpaceSeparatedString(t *testing.T) {
	scopes := scopeSet("sessions:read  sessions:write")
	require.Len(t, scopes, 2)
}

func TestOwns(t *testing.T) {
	c := patientClaims()
	require.True(t, c.Owns("clinic-a", "patient-1"))
	require.False(t, c.Owns("clinic-a", "patient-2"))
	require.False(t, c.Owns("clinic-b", "patient-1"))

	c.Scopes[ScopeSessionsWrite] = struct{}{}
	require.False(t, c.Owns("clinic-a", "patient-2"))

	var none *Claims
	require.False(t, none.Owns("clinic-a", "patient-1"))
}

func TestMiddleware(t *testing.T) {
	var seen *Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := NewMiddleware(testConfig).Wrap(next)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Nil(t, seen)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/exercises", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Contains(t, rr.Body.String(), "missing bearer token")

	req := httptest.NewRequest(http.MethodGet, "/v1/exercises", nil)
	req.Header.Set("Authorization", "Basic abc")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/exercises", nil)
	req.Header.Set("Authorization", "Bearer "+signed(t, patientClaims(), testConfig))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.NotNil(t, seen)
	require.Equal(t, "patient-1", seen.Subject)
}
