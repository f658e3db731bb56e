package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T) *observer.ObservedLogs {
	core, logs := observer.New(zap.InfoLevel)
	old := Log
	Log = zap.New(core)
	t.Cleanup(func() { Log = old })
	return logs
}

func TestInitialize(t *testing.T) {
	old := Log
	defer func() { Log = old }()

	require.NoError(t, Initialize("debug"))
	assert.NotNil(t, Log)
	assert.Error(t, Initialize("loud"))
}

func TestLoggerMiddleware(t *testing.T) {
	logs := observe(t)

	var seenID string
	h := LoggerMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short"))
		w.Write([]byte(" and stout"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/?country=Jordan", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.NotEmpty(t, seenID)
	assert.Equal(t, seenID, w.Header().Get(RequestIDHeader))

	entries := logs.FilterMessage("Request handled").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(http.StatusTeapot), fields["status_code"])
	assert.Equal(t, int64(len("short and stout")), fields["content_length"])
	assert.Equal(t, "country=Jordan", fields["query"])
	assert.Equal(t, seenID, fields["request_id"])
}

func TestLoggerMiddleware_KeepsIncomingRequestID(t *testing.T) {
	observe(t)

	h := LoggerMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc-123", RequestID(r.Context()))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	logs := observe(t)

	h := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
}
