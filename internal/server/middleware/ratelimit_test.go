package middleware

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/iudanet/rentkeeper/internal/metrics"
	"github.com/iudanet/rentkeeper/internal/server/handlers"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("success"))
	})
}

func TestRateLimiter_Allow(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// Пополнение практически нулевое, работает только burst
	limiter := NewRateLimiter(0.001, 3, time.Minute, logger)
	defer limiter.Stop()

	for i := range 3 {
		assert.True(t, limiter.Allow("a"), fmt.Sprintf("request %d should pass", i+1))
	}
	assert.False(t, limiter.Allow("a"))
	assert.True(t, limiter.Allow("b"), "keys are tracked separately")
}

func TestRateLimiter_Refill(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	limiter := NewRateLimiter(20, 1, time.Minute, logger)
	defer limiter.Stop()

	assert.True(t, limiter.Allow("a"))
	assert.False(t, limiter.Allow("a"))

	assert.Eventually(t, func() bool { return limiter.Allow("a") }, time.Second, 10*time.Millisecond)
}

func TestRateLimiter_CleanupIdle(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	limiter := NewRateLimiter(10, 10, time.Hour, logger)
	defer limiter.Stop()

	limiter.Allow("192.168.1.1")
	limiter.Allow("192.168.1.2")

	limiter.mu.Lock()
	limiter.visitors["192.168.1.1"].lastSeen = time.Now().Add(-2 * time.Hour)
	limiter.mu.Unlock()

	limiter.cleanupIdle(time.Now())

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.Len(t, limiter.visitors, 1)
	assert.Contains(t, limiter.visitors, "192.168.1.2")
}

func TestRateLimitMiddleware(t *testing.T) {
	var logBuf strings.Builder
	logger := slog.New(slog.NewTextHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	m := metrics.NewServerMetrics(prometheus.NewRegistry())

	limiter := NewRateLimiter(0.001, 2, time.Minute, logger)
	defer limiter.Stop()
	handler := RateLimitMiddleware(limiter, logger, m)(okHandler())

	send := func(remoteAddr, userID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/rest/v1/tenants", nil)
		req.RemoteAddr = remoteAddr
		if userID != "" {
			req = req.WithContext(handlers.WithUserID(req.Context(), userID))
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send("192.168.1.1:1", "").Code)
	assert.Equal(t, http.StatusOK, send("192.168.1.1:1", "").Code)

	w := send("192.168.1.1:1", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate limit exceeded")

	// Аутентифицированный пользователь лимитируется отдельно от IP
	assert.Equal(t, http.StatusOK, send("192.168.1.1:1", "user-1").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.1:1", "user-1").Code)
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.2:1", "user-1").Code)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.RateLimited))

	logOutput := logBuf.String()
	assert.Contains(t, logOutput, "Rate limit exceeded")
	assert.Contains(t, logOutput, "ip:192.168.1.1:1")
	assert.Contains(t, logOutput, "user:user-1")
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xRealIP    string
		expectedIP string
	}{
		{
			name:       "X-Forwarded-For with single IP",
			remoteAddr: "10.0.0.1:12345",
			xff:        "192.168.1.1",
			expectedIP: "192.168.1.1",
		},
		{
			name:       "X-Forwarded-For with multiple IPs",
			remoteAddr: "10.0.0.1:12345",
			xff:        "192.168.1.1, 10.0.0.2, 10.0.0.3",
			expectedIP: "192.168.1.1", // Первый IP
		},
		{
			name:       "X-Real-IP when X-Forwarded-For is empty",
			remoteAddr: "10.0.0.1:12345",
			xRealIP:    "192.168.2.1",
			expectedIP: "192.168.2.1",
		},
		{
			name:       "RemoteAddr when headers are empty",
			remoteAddr: "192.168.3.1:54321",
			expectedIP: "192.168.3.1:54321",
		},
		{
			name:       "X-Forwarded-For takes precedence over X-Real-IP",
			remoteAddr: "10.0.0.1:12345",
			xff:        "192.168.1.1",
			xRealIP:    "192.168.2.1",
			expectedIP: "192.168.1.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xRealIP != "" {
				req.Header.Set("X-Real-IP", tt.xRealIP)
			}

			assert.Equal(t, tt.expectedIP, getClientIP(req))
		})
	}
}
