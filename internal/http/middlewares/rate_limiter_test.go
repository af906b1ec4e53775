package middlewares_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quizhub/accounts/internal/http/middlewares"
)

func limitedRouter(rl *middlewares.RateLimiter) *gin.Engine {
	r := gin.New()

	r.POST("/auth/login", rl.Middleware(middlewares.KeyByIP), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return r
}

func hitLogin(r *gin.Engine) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:55555"

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	rl := middlewares.NewRateLimiter(middlewares.NewMemoryCounter(), 3, time.Minute)
	r := limitedRouter(rl)

	for i := 0; i < 3; i++ {
		if w := hitLogin(r); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, w.Code)
		}
	}

	w := hitLogin(r)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}

	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("expected a Retry-After header")
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	rl := middlewares.NewRateLimiter(middlewares.NewMemoryCounter(), 1, time.Minute)
	r := limitedRouter(rl)

	if w := hitLogin(r); w.Code != http.StatusOK {
		t.Fatalf("first hit: status = %d, want 200", w.Code)
	}

	if w := hitLogin(r); w.Code != http.StatusTooManyRequests {
		t.Fatalf("second hit from same ip: status = %d, want 429", w.Code)
	}

	// a different client is not affected
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "10.0.0.2:55555"

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("other ip: status = %d, want 200", w.Code)
	}
}

type failingCounter struct{}

func (failingCounter) Hit(context.Context, string, time.Duration) (int, time.Duration, error) {
	return 0, 0, errors.New("counter backend down")
}

func TestRateLimiterFailsOpen(t *testing.T) {
	rl := middlewares.NewRateLimiter(failingCounter{}, 1, time.Minute)
	r := limitedRouter(rl)

	for i := 0; i < 5; i++ {
		if w := hitLogin(r); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200 when the counter is down", i+1, w.Code)
		}
	}
}

func TestMemoryCounterWindowReset(t *testing.T) {
	c := middlewares.NewMemoryCounter()

	window := 20 * time.Millisecond

	if n, _, _ := c.Hit(context.Background(), "k", window); n != 1 {
		t.Fatalf("first hit count = %d, want 1", n)
	}

	if n, _, _ := c.Hit(context.Background(), "k", window); n != 2 {
		t.Fatalf("second hit count = %d, want 2", n)
	}

	time.Sleep(window + 10*time.Millisecond)

	if n, _, _ := c.Hit(context.Background(), "k", window); n != 1 {
		t.Fatalf("count after window reset = %d, want 1", n)
	}
}
