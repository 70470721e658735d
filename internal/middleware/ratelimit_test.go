package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

// fixedClock returns a limiter clock the test can advance.
func fixedClock(rl *RateLimiter, start time.Time) func(time.Duration) {
	now := start
	rl.now = func() time.Time { return now }
	return func(d time.Duration) { now = now.Add(d) }
}

func TestRateLimiterBurstThenDeny(t *testing.T) {
	rl := NewRateLimiter(3, false)
	defer rl.Stop()
	fixedClock(rl, time.Now())

	for i := 0; i < 3; i++ {
		if ok, _ := rl.reserve("test-ip"); !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	ok, wait := rl.reserve("test-ip")
	if ok {
		t.Fatal("4th request should be rate-limited")
	}
	// 3 per minute refills one token every 20s.
	if wait <= 0 || wait > 20*time.Second {
		t.Errorf("wait: got %v, want (0, 20s]", wait)
	}

	if ok, _ := rl.reserve("other-ip"); !ok {
		t.Error("different IP should be allowed")
	}
}

func TestRateLimiterRefill(t *testing.T) {
	rl := NewRateLimiter(60, false)
	defer rl.Stop()
	advance := fixedClock(rl, time.Now())

	for i := 0; i < 60; i++ {
		rl.reserve("ip")
	}
	if ok, _ := rl.reserve("ip"); ok {
		t.Fatal("bucket should be empty")
	}

	advance(time.Second)
	if ok, _ := rl.reserve("ip"); !ok {
		t.Error("one token should refill after a second")
	}
	if ok, _ := rl.reserve("ip"); ok {
		t.Error("only one token should have refilled")
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, false)
	defer rl.Stop()

	for i := 0; i < 1000; i++ {
		if ok, _ := rl.reserve("ip"); !ok {
			t.Fatalf("request %d denied with limiting disabled", i+1)
		}
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(2, false)
	defer rl.Stop()
	fixedClock(rl, time.Now())

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/posts/latest", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	for i := 0; i < 2; i++ {
		if rr := do(); rr.Code != http.StatusOK {
			t.Fatalf("request %d: got status %d, want 200", i+1, rr.Code)
		}
	}

	rr := do()
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("got status %d, want 429", rr.Code)
	}
	secs, err := strconv.Atoi(rr.Header().Get("Retry-After"))
	if err != nil || secs < 1 || secs > 30 {
		t.Errorf("Retry-After: got %q, want 1..30 seconds", rr.Header().Get("Retry-After"))
	}
}

func TestRateLimiterSweep(t *testing.T) {
	rl := NewRateLimiter(10, false)
	defer rl.Stop()
	advance := fixedClock(rl, time.Now())

	rl.reserve("ip-old")
	advance(idleAfter + time.Second)
	rl.reserve("ip-fresh")

	rl.sweep()

	rl.mu.Lock()
	_, oldExists := rl.clients["ip-old"]
	_, freshExists := rl.clients["ip-fresh"]
	rl.mu.Unlock()

	if oldExists {
		t.Error("idle client should have been swept")
	}
	if !freshExists {
		t.Error("recent client should be kept")
	}
}

func TestRateLimiterStopTwice(t *testing.T) {
	rl := NewRateLimiter(1, false)
	rl.Stop()
	rl.Stop()
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		trust      bool
		xff        string
		xri        string
		remoteAddr string
		want       string
	}{
		{"untrusted ignores x-forwarded-for", false, "10.0.0.1", "", "192.168.1.1:1234", "192.168.1.1"},
		{"untrusted ignores x-real-ip", false, "", "10.0.0.2", "192.168.1.1:1234", "192.168.1.1"},
		{"trusted x-real-ip", true, "10.0.0.1", "10.0.0.2", "192.168.1.1:1234", "10.0.0.2"},
		{"trusted x-forwarded-for single", true, "10.0.0.1", "", "192.168.1.1:1234", "10.0.0.1"},
		{"trusted x-forwarded-for uses proxy entry", true, "6.6.6.6, 10.0.0.1", "", "192.168.1.1:1234", "10.0.0.1"},
		{"trusted without headers", true, "", "", "192.168.1.1:1234", "192.168.1.1"},
		{"remote addr no port", false, "", "", "192.168.1.1", "192.168.1.1"},
		{"ipv6 remote addr", false, "", "", "[2001:db8::1]:443", "2001:db8::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := clientIP(req, tt.trust); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimiterIgnoresSpoofedForwardedFor(t *testing.T) {
	rl := NewRateLimiter(1, false)
	defer rl.Stop()
	fixedClock(rl, time.Now())

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 3)
	for i := range codes {
		req := httptest.NewRequest(http.MethodGet, "/api/", nil)
		req.RemoteAddr = "198.51.100.7:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes[i] = rr.Code
	}

	want := []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d: got %d, want %d", i+1, codes[i], want[i])
		}
	}
}
