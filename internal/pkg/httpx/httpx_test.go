package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

type statusErr struct {
	code int
}

func (e *statusErr) Error() string       { return fmt.Sprintf("status %d", e.code) }
func (e *statusErr) HTTPStatusCode() int { return e.code }

func TestIsRetryableHTTPStatus(t *testing.T) {
	retryable := []int{408, 429, 500, 502, 503, 599}
	for _, code := range retryable {
		if !IsRetryableHTTPStatus(code) {
			t.Fatalf("status %d: want retryable", code)
		}
	}
	permanent := []int{200, 400, 401, 403, 404, 422}
	for _, code := range permanent {
		if IsRetryableHTTPStatus(code) {
			t.Fatalf("status %d: want permanent", code)
		}
	}
}

func TestIsRetryableErrorStatusCoder(t *testing.T) {
	if !IsRetryableError(&statusErr{code: 503}) {
		t.Fatalf("503 error: want retryable")
	}
	if IsRetryableError(&statusErr{code: 401}) {
		t.Fatalf("401 error: want permanent")
	}
	wrapped := fmt.Errorf("route fetch: %w", &statusErr{code: 429})
	if !IsRetryableError(wrapped) {
		t.Fatalf("wrapped 429: want retryable")
	}
	if IsRetryableError(errors.New("bad payload")) {
		t.Fatalf("plain error: want permanent")
	}
	if IsRetryableError(nil) {
		t.Fatalf("nil error: want permanent")
	}
}

func TestRetryAfterDuration(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}

	if got := RetryAfterDuration(nil, 2*time.Second, 10*time.Second); got != 2*time.Second {
		t.Fatalf("nil response: want fallback, got %s", got)
	}

	resp.Header.Set("Retry-After", "3")
	if got := RetryAfterDuration(resp, time.Second, 10*time.Second); got != 3*time.Second {
		t.Fatalf("delay seconds: want 3s, got %s", got)
	}

	resp.Header.Set("Retry-After", time.Now().Add(4*time.Second).UTC().Format(http.TimeFormat))
	got := RetryAfterDuration(resp, time.Second, 10*time.Second)
	if got <= time.Second || got > 4*time.Second {
		t.Fatalf("http date: want between 1s and 4s, got %s", got)
	}

	resp.Header.Set("Retry-After", "120")
	if got := RetryAfterDuration(resp, time.Second, 10*time.Second); got != 10*time.Second {
		t.Fatalf("cap: want 10s, got %s", got)
	}
}

func TestJitterSleep(t *testing.T) {
	if got := JitterSleep(0); got != 0 {
		t.Fatalf("zero base: want 0, got %s", got)
	}
	base := 2 * time.Second
	for i := 0; i < 50; i++ {
		got := JitterSleep(base)
		if got < 1600*time.Millisecond || got > 2400*time.Millisecond {
			t.Fatalf("jitter out of range: %s", got)
		}
	}
}
