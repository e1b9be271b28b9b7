package httptransport

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func TestNewServerAppliesTimeouts(t *testing.T) {
	srv := NewServer(ServerConfig{Address: ":0", ReadTimeout: time.Second, WriteTimeout: 2 * time.Second, IdleTimeout: 3 * time.Second}, http.NotFoundHandler())
	require.Equal(t, ":0", srv.Addr)
	require.Equal(t, time.Second, srv.ReadTimeout)
	require.Equal(t, 2*time.Second, srv.WriteTimeout)
	require.Equal(t, 3*time.Second, srv.IdleTimeout)
}

func TestCORSShortCircuitsPreflight(t *testing.T) {
	called := false
	h := CORS("http://localhost:5173")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/v1/sessions", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.False(t, called)
	require.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRequestLoggerRecordsStatus(t *testing.T) {
	logger, hook := test.NewNullLogger()
	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Len(t, hook.Entries, 1)
	require.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	require.Equal(t, http.StatusTeapot, hook.LastEntry().Data["status"])
	require.Equal(t, "/healthz", hook.LastEntry().Data["path"])
}
