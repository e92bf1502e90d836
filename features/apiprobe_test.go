package features

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"qabot/core/logger"
)

func init() {
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	logger.L = discard
	logger.Flow = discard
	logger.SVCProbe = discard
	logger.SVCFiles = discard
	logger.SVCStats = discard
}

func TestParseProbeInputDefaults(t *testing.T) {
	req, err := ParseProbeInput("api.example.com/users")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Method != http.MethodGet {
		t.Fatalf("method should default to GET, got %s", req.Method)
	}
	if req.URL != "https://api.example.com/users" {
		t.Fatalf("scheme should default to https, got %s", req.URL)
	}
}

func TestParseProbeInputMethod(t *testing.T) {
	req, err := ParseProbeInput("post https://example.com/x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Method != http.MethodPost {
		t.Fatalf("method token should be honored, got %s", req.Method)
	}

	if _, err := ParseProbeInput("FETCH example.com"); err == nil {
		t.Fatalf("unknown method must be rejected")
	}
	if _, err := ParseProbeInput("GET example.com extra"); err == nil {
		t.Fatalf("extra tokens must be rejected")
	}
	if _, err := ParseProbeInput("https://"); err == nil {
		t.Fatalf("host-less URL must be rejected")
	}
}

func TestStatusBadge(t *testing.T) {
	cases := map[int]string{200: "✅", 204: "✅", 301: "⚠️", 404: "❌", 500: "❌"}
	for code, want := range cases {
		if got := statusBadge(code); got != want {
			t.Fatalf("status %d: got %s, want %s", code, got, want)
		}
	}
}

func TestFormatBodyJSON(t *testing.T) {
	out, ok := formatBody([]byte(`{"a":1}`), "application/json")
	if !ok || !strings.Contains(out, "\"a\": 1") {
		t.Fatalf("json body should be pretty-printed, got %q", out)
	}
}

func TestFormatBodyHTMLStripped(t *testing.T) {
	out, ok := formatBody([]byte("<html><body><h1>Hi</h1></body></html>"), "text/html")
	if !ok || strings.Contains(out, "<h1>") {
		t.Fatalf("html tags should be stripped, got %q", out)
	}
	if !strings.Contains(out, "Hi") {
		t.Fatalf("text content should survive, got %q", out)
	}
}

func TestFormatBodyTruncates(t *testing.T) {
	out, ok := formatBody([]byte(strings.Repeat("x", 5000)), "text/plain")
	if !ok || len(out) > textBodyLimit+10 {
		t.Fatalf("plain body should be truncated, got %d bytes", len(out))
	}
}

func TestFormatBodyTruncatesOnRuneBoundary(t *testing.T) {
	// 3-byte runes so the 1000-byte limit lands mid-rune.
	out, ok := formatBody([]byte(strings.Repeat("€", 2000)), "text/plain")
	if !ok {
		t.Fatal("expected a body")
	}
	if !utf8.ValidString(out) {
		t.Fatal("truncated body is not valid UTF-8")
	}

	if got := truncate("héllo", 2); got != "h" || !utf8.ValidString(got) {
		t.Fatalf("truncate split a rune: %q", got)
	}
	if got := truncate("héllo", 3); got != "hé" {
		t.Fatalf("truncate(3) = %q", got)
	}
}

func TestProbeAgainstTestServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", "unit")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"up"}`))
	}))
	defer srv.Close()

	out := Probe(probeRequest{Method: http.MethodGet, URL: srv.URL}, 5*time.Second, 1<<20)
	if !strings.Contains(out, "✅") {
		t.Fatalf("expected success badge in %q", out)
	}
	if !strings.Contains(out, "Server: unit") {
		t.Fatalf("allowlisted header should be shown in %q", out)
	}
	if !strings.Contains(out, "&quot;status&quot;") {
		t.Fatalf("json body should be escaped and shown in %q", out)
	}
}

func TestProbeConnectionRefused(t *testing.T) {
	out := Probe(probeRequest{Method: http.MethodGet, URL: "http://127.0.0.1:1"}, 2*time.Second, 1<<20)
	if !strings.HasPrefix(out, "❌") {
		t.Fatalf("refused connection should produce an error message, got %q", out)
	}
}
