package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
}

func request(handler http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_BurstThenReject(t *testing.T) {
	// Arrange
	handler := RateLimit(okHandler(), 1, 2)

	// Act & Assert
	assert.Equal(t, http.StatusOK, request(handler, "10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, request(handler, "10.0.0.1:1001").Code)

	rec := request(handler, "10.0.0.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestRateLimit_PerClient(t *testing.T) {
	// Arrange
	handler := RateLimit(okHandler(), 1, 1)

	// Act
	first := request(handler, "10.0.0.1:1000")
	other := request(handler, "10.0.0.2:1000")
	again := request(handler, "10.0.0.1:2000")

	// Assert
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, other.Code, "another IP has its own bucket")
	assert.Equal(t, http.StatusTooManyRequests, again.Code)
}

func TestClientLimiter_SweepsIdleClients(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newClientLimiter(1, 1)
	l.now = func() time.Time { return now }

	require.True(t, l.allow("a"))
	require.Len(t, l.clients, 1)

	now = now.Add(2 * clientIdleTTL)
	require.True(t, l.allow("b"))
	assert.Len(t, l.clients, 1)
	_, ok := l.clients["a"]
	assert.False(t, ok)
}

func TestLogging_RecordsStatusAndFlushes(t *testing.T) {
	// Arrange
	var flushed bool
	handler := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("body"))
		f, ok := w.(http.Flusher)
		require.True(t, ok, "wrapped writer must support streaming")
		f.Flush()
		flushed = true
	}))

	// Act
	rec := request(handler, "10.0.0.1:1000")

	// Assert
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "body", rec.Body.String())
	assert.True(t, flushed)
	assert.True(t, rec.Flushed)
}
