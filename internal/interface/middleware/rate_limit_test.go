package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func rateLimitRouter(t *testing.T, rdb *redis.Client, max int, window time.Duration, keyFn KeyFunc, allow AllowFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(rdb, max, window, keyFn, allow))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.OPTIONS("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func hit(r *gin.Engine, method, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/ping", nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitEnforcesMax(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := rateLimitRouter(t, rdb, 3, time.Minute, KeyByIP(), nil)

	for i := 1; i <= 3; i++ {
		w := hit(r, http.MethodGet, "203.0.113.7:1234")
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, w.Code)
		}
		if got := w.Header().Get("X-RateLimit-Limit"); got != "3" {
			t.Errorf("request %d: X-RateLimit-Limit = %q", i, got)
		}
	}

	w := hit(r, http.MethodGet, "203.0.113.7:1234")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("over limit: status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("429 response missing Retry-After")
	}
}

func TestRateLimitKeysAreIndependent(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := rateLimitRouter(t, rdb, 1, time.Minute, KeyByIP(), nil)

	if w := hit(r, http.MethodGet, "203.0.113.7:1234"); w.Code != http.StatusOK {
		t.Fatalf("first ip: status = %d", w.Code)
	}
	if w := hit(r, http.MethodGet, "203.0.113.7:1234"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("first ip second hit: status = %d, want 429", w.Code)
	}
	// A different client is unaffected.
	if w := hit(r, http.MethodGet, "198.51.100.9:1234"); w.Code != http.StatusOK {
		t.Fatalf("second ip: status = %d, want 200", w.Code)
	}
}

func TestRateLimitWindowResets(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := rateLimitRouter(t, rdb, 1, time.Minute, KeyByIP(), nil)

	if w := hit(r, http.MethodGet, "203.0.113.7:1234"); w.Code != http.StatusOK {
		t.Fatalf("first hit: status = %d", w.Code)
	}
	if w := hit(r, http.MethodGet, "203.0.113.7:1234"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("second hit: status = %d, want 429", w.Code)
	}

	mr.FastForward(time.Minute + time.Second)
	if w := hit(r, http.MethodGet, "203.0.113.7:1234"); w.Code != http.StatusOK {
		t.Fatalf("after window: status = %d, want 200", w.Code)
	}
}

func TestRateLimitSkipsPreflightAndAllowed(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	r := rateLimitRouter(t, rdb, 1, time.Minute, KeyByIP(), nil)
	for i := 0; i < 5; i++ {
		if w := hit(r, http.MethodOptions, "203.0.113.7:1234"); w.Code != http.StatusNoContent {
			t.Fatalf("preflight %d: status = %d", i, w.Code)
		}
	}

	allowAll := func(*gin.Context) bool { return true }
	r = rateLimitRouter(t, rdb, 1, time.Minute, KeyByIP(), allowAll)
	for i := 0; i < 5; i++ {
		if w := hit(r, http.MethodGet, "203.0.113.7:1234"); w.Code != http.StatusOK {
			t.Fatalf("allowed request %d: status = %d", i, w.Code)
		}
	}
}

func TestRateLimitDisabledWithoutRedis(t *testing.T) {
	r := rateLimitRouter(t, nil, 1, time.Minute, KeyByIP(), nil)
	for i := 0; i < 5; i++ {
		if w := hit(r, http.MethodGet, ""); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200 (limiter disabled)", i, w.Code)
		}
	}
}

func TestKeyByUserIDFallsBackToIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	keyFn := KeyByUserID()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/ping", nil)
	c.Request.RemoteAddr = "203.0.113.7:1234"
	if got := keyFn(c); got != "rl:user:anon:ip:203.0.113.7" {
		t.Errorf("anonymous key = %q", got)
	}

	c.Set(CtxUserIDKey, "user-1")
	if got := keyFn(c); got != "rl:user:user-1" {
		t.Errorf("authenticated key = %q", got)
	}
}
