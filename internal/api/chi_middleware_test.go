// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/roomie/internal/models"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestDefaultChiMiddlewareConfig(t *testing.T) {
	cfg := DefaultChiMiddlewareConfig()
	if len(cfg.CORSAllowedOrigins) != 0 {
		t.Errorf("CORS origins should default to empty, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.RateLimitRequests != 100 || cfg.RateLimitWindow != time.Minute {
		t.Errorf("rate limit = %d/%s", cfg.RateLimitRequests, cfg.RateLimitWindow)
	}
}

func TestRateLimit_Exceeded(t *testing.T) {
	m := NewChiMiddlewareFromSecurity([]string{"*"}, 2, time.Minute, false)
	h := m.RateLimit()(okHandler())

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		req.RemoteAddr = "10.0.0.1:1234"
		last = httptest.NewRecorder()
		h.ServeHTTP(last, req)
		if i < 2 && last.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, last.Code)
		}
	}

	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", last.Code)
	}
	var resp models.APIResponse
	if err := json.Unmarshal(last.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != models.ErrCodeRateLimited {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestRateLimit_PerIP(t *testing.T) {
	m := NewChiMiddlewareFromSecurity([]string{"*"}, 1, time.Minute, false)
	h := m.RateLimit()(okHandler())

	for _, addr := range []string{"10.0.0.1:1", "10.0.0.2:1"} {
		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", addr, rec.Code)
		}
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	m := NewChiMiddlewareFromSecurity([]string{"*"}, 1, time.Minute, true)
	limiters := map[string]func(http.Handler) http.Handler{
		"default": m.RateLimit(),
		"write":   m.RateLimitWrite(),
		"health":  m.RateLimitHealth(),
	}
	for name, limiter := range limiters {
		h := limiter(okHandler())
		for i := 0; i < 5; i++ {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
			if rec.Code != http.StatusOK {
				t.Fatalf("%s: request %d status = %d with limiting disabled", name, i+1, rec.Code)
			}
		}
	}
}

func TestAPISecurityHeaders_HSTSBehindProxy(t *testing.T) {
	h := APISecurityHeaders()(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Header().Get("Strict-Transport-Security") == "" {
		t.Error("HSTS should be set behind a TLS-terminating proxy")
	}
}
