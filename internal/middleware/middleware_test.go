package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/kodbank/internal/config"
)

func okHandler(c echo.Context) error { return c.String(http.StatusOK, "ok") }

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestTokenBucket_LocalFallback(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            5 * time.Hour,
		KeyStrategy:    "ip_route",
		Prefix:         "test:rl",
	}
	e := echo.New()
	e.POST("/api/auth/login", okHandler, NewTokenBucket(cfg, nil))
	e.POST("/api/chat", okHandler, NewTokenBucket(cfg, nil))

	send := func(path, ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = ip + ":1234"
		return serve(e, req)
	}

	assert.Equal(t, http.StatusOK, send("/api/auth/login", "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, send("/api/auth/login", "10.0.0.1").Code)

	rec := send("/api/auth/login", "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"Too many requests","retry_after":3600}`, rec.Body.String())

	assert.Equal(t, http.StatusOK, send("/api/auth/login", "10.0.0.2").Code, "other clients have their own bucket")
	assert.Equal(t, http.StatusOK, send("/api/chat", "10.0.0.1").Code, "other routes have their own bucket")
}

func TestTokenBucket_Disabled(t *testing.T) {
	e := echo.New()
	e.GET("/x", okHandler, NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil))
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(e, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
	}
}

func TestLocalLimiter_RefillsAndForgets(t *testing.T) {
	l := newLocalLimiter(config.RateLimitConfig{Capacity: 1, RefillTokens: 1, RefillInterval: time.Second, TTL: 10 * time.Second})
	now := time.Now()

	assert.True(t, l.take("k", now).allowed)
	d := l.take("k", now)
	assert.False(t, d.allowed)
	assert.InDelta(t, time.Second, d.retry, float64(10*time.Millisecond))
	assert.True(t, l.take("k", now.Add(time.Second)).allowed)

	l.take("other", now.Add(time.Second))
	l.take("k", now.Add(time.Minute))
	assert.Len(t, l.buckets, 1, "idle buckets are swept")
}

func TestCacheKeyFrom_ScopedToUser(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "p", KeyStrategy: "user_route"}
	e := echo.New()

	keyFor := func(user string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/user/balance", nil), httptest.NewRecorder())
		c.SetPath("/api/user/balance")
		if user != "" {
			c.Set(CtxUserID, user)
		}
		return cacheKeyFrom(cfg, c)
	}

	alice := keyFor("alice")
	assert.Equal(t, alice, keyFor("alice"))
	assert.NotEqual(t, alice, keyFor("bob"))
	assert.NotEqual(t, alice, keyFor(""))
	assert.Regexp(t, `^p:[0-9a-f]{40}$`, alice)
}

func TestCachePayload_RoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"balance":100000.00}`))
	require.NoError(t, err)

	status, gotHdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, hdr, gotHdr)
	assert.Equal(t, `{"balance":100000.00}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
	_, _, _, ok = decodePayload([]byte{0, 0, 0, 200, 0, 0, 0, 99})
	assert.False(t, ok)
}

func TestRedisCache_DisabledPassesThrough(t *testing.T) {
	e := echo.New()
	e.GET("/x", okHandler, NewRedisCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}, nil))
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestCORS_Preflight(t *testing.T) {
	e := echo.New()
	e.Use(CORS([]string{"http://localhost:3000"}))
	e.POST("/api/auth/login", okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := serve(e, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = serve(e, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	e.Use(RequestID(), AccessLog())
	e.GET("/x", okHandler)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 36)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(echo.HeaderXRequestID, "abc")
	assert.Equal(t, "abc", serve(e, req).Header().Get(echo.HeaderXRequestID))
}
