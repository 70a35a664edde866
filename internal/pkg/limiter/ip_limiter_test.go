package limiter

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/time/rate"

	"chatrelay/internal/pkg/errs"
)

func TestClientIP(t *testing.T) {
	cases := map[string]string{
		"192.0.2.1:5000": "192.0.2.1",
		"[::1]:5000":     "::1",
		"192.0.2.1":      "192.0.2.1",
		"":               "unknown_ip",
	}
	for input, want := range cases {
		if got := ClientIP(input); got != want {
			t.Errorf("ClientIP(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestGetLimiter_SameIPSameLimiter(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(1), 1)

	a := l.GetLimiter("192.0.2.1")
	b := l.GetLimiter("192.0.2.1")
	if a != b {
		t.Error("Expected the same limiter instance for the same IP")
	}

	c := l.GetLimiter("192.0.2.2")
	if a == c {
		t.Error("Expected distinct limiter instances per IP")
	}
}

func TestAllow_BurstThenDeny(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(0.001), 2)

	if !l.Allow("192.0.2.1:5000") {
		t.Fatal("Expected first request to pass")
	}
	if !l.Allow("192.0.2.1:5000") {
		t.Fatal("Expected second request to pass within burst")
	}
	if l.Allow("192.0.2.1:5000") {
		t.Error("Expected third request to be denied")
	}

	// A different IP has an independent bucket.
	if !l.Allow("192.0.2.2:5000") {
		t.Error("Expected an unrelated IP to pass")
	}
}

func TestMiddleware_RespondsWithRateLimitEnvelope(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(0.001), 1)

	handler := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	makeRequest := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:5000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	if rec := makeRequest(); rec.Code != http.StatusOK {
		t.Fatalf("First request status = %d, want 200", rec.Code)
	}

	rec := makeRequest()
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("Second request status = %d, want 429", rec.Code)
	}

	var body struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode envelope: %v", err)
	}
	if body.Code != errs.ErrRateLimitExceeded {
		t.Errorf("Envelope code = %d, want %d", body.Code, errs.ErrRateLimitExceeded)
	}
}
