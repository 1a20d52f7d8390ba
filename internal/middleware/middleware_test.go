package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"glow/pkg/logger"
)

func init() {
	logger.SetOutput(io.Discard)
}

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestLimiterBlocksAfterBurst(t *testing.T) {
	l := NewLimiter(1, time.Minute, 2)
	h := l.Handler(http.HandlerFunc(ok))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		r := httptest.NewRequest(http.MethodPost, "/api/invitations/x/rsvp", nil)
		r.RemoteAddr = "1.1.1.1:1"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		codes = append(codes, w.Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}

	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.RemoteAddr = "2.2.2.2:1"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != 200 {
		t.Fatalf("other ip limited: %d", w.Code)
	}
}

func TestLimiterSweep(t *testing.T) {
	l := NewLimiter(5, time.Second, 5)
	l.Allow("a")
	if n := l.sweep(time.Now().Add(VisitorTTL + time.Second)); n != 1 {
		t.Fatalf("sweep removed %d", n)
	}
}

func TestRecoverConvertsPanic(t *testing.T) {
	h := Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError || !strings.Contains(w.Body.String(), "server/internal_error") {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
}

func TestCorsEchoesAllowedOrigin(t *testing.T) {
	h := Cors([]string{"https://*.glow.vn"})(http.HandlerFunc(ok))

	r := httptest.NewRequest(http.MethodOptions, "/api/me", nil)
	r.Header.Set("Origin", "https://app.glow.vn")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") != "https://app.glow.vn" {
		t.Fatalf("preflight = %d %v", w.Code, w.Header())
	}

	r = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	r.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("foreign origin echoed")
	}
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	mux := http.NewServeMux()
	var seen string
	mux.HandleFunc("GET /api/invitations/{id}", ok)
	h := Metrics(Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r)
		seen = r.Pattern
	})))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/invitations/abc", nil))
	if seen != "GET /api/invitations/{id}" {
		t.Fatalf("pattern = %q", seen)
	}
}
