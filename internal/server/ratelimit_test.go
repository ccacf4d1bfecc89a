package server

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newJar() (http.CookieJar, error) {
	return cookiejar.New(nil)
}

func TestRateLimiter_InMemoryWindow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	rl := NewRateLimiter(2, nil)
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	ok, remaining := rl.Allow(ctx, "1.2.3.4")
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)

	ok, _ = rl.Allow(ctx, "1.2.3.4")
	assert.True(t, ok)
	ok, _ = rl.Allow(ctx, "1.2.3.4")
	assert.False(t, ok)

	// Other clients have their own quota
	ok, _ = rl.Allow(ctx, "5.6.7.8")
	assert.True(t, ok)

	// Next minute resets the counters
	now = now.Add(time.Minute)
	ok, _ = rl.Allow(ctx, "1.2.3.4")
	assert.True(t, ok)
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(0, nil)
	for range 100 {
		ok, _ := rl.Allow(context.Background(), "1.2.3.4")
		assert.True(t, ok)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded for", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, "127.0.0.1:1234", "10.0.0.1"},
		{"real ip", map[string]string{"X-Real-IP": " 10.0.0.3 "}, "127.0.0.1:1234", "10.0.0.3"},
		{"remote addr", nil, "192.168.1.5:5555", "192.168.1.5"},
		{"remote without port", nil, "192.168.1.6", "192.168.1.6"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, GetClientIP(req))
		})
	}
}
