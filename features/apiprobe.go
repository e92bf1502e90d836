package features

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"qabot/core/logger"
	"qabot/core/telegram/format"
	tghelpers "qabot/core/telegram/helpers"
	"qabot/core/telegram/netutil"
	"qabot/flow"

	tele "gopkg.in/telebot.v4"
)

var probeMethods = map[string]bool{
	http.MethodGet: true, http.MethodPost: true, http.MethodPut: true,
	http.MethodDelete: true, http.MethodPatch: true, http.MethodHead: true,
	http.MethodOptions: true,
}

// shownHeaders is the allowlist of response headers included in the report.
var shownHeaders = []string{"Server", "Date", "Content-Length", "Cache-Control", "X-RateLimit-Limit"}

const (
	jsonBodyLimit = 2000
	textBodyLimit = 1000
)

type probeRequest struct {
	Method string
	URL    string
}

// ParseProbeInput reads "[METHOD] URL". The method defaults to GET and a
// missing scheme defaults to https.
func ParseProbeInput(input string) (probeRequest, error) {
	fields := strings.Fields(strings.TrimSpace(input))
	req := probeRequest{Method: http.MethodGet}
	switch len(fields) {
	case 0:
		return req, &flow.ValidationError{Code: flow.CodeEmptyInput, Message: "Send a URL to inspect."}
	case 1:
		req.URL = fields[0]
	case 2:
		method := strings.ToUpper(fields[0])
		if !probeMethods[method] {
			return req, &flow.ValidationError{
				Code:    flow.CodeInvalidChoice,
				Message: "Unknown method " + fields[0] + ". Use GET, POST, PUT, DELETE, PATCH, HEAD or OPTIONS.",
			}
		}
		req.Method = method
		req.URL = fields[1]
	default:
		return req, &flow.ValidationError{
			Code:    flow.CodeInvalidChoice,
			Message: "Send at most two tokens: an optional method and a URL.",
		}
	}

	normalized, err := flow.NormalizeURL(req.URL)
	if err != nil {
		return req, err
	}
	req.URL = normalized
	return req, nil
}

func probeRule() flow.Rule {
	return func(input string) (any, error) {
		req, err := ParseProbeInput(input)
		if err != nil {
			return nil, err
		}
		return req, nil
	}
}

func statusBadge(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "✅"
	case code >= 300 && code < 400:
		return "⚠️"
	default:
		return "❌"
	}
}

func probeErrorMessage(err error) string {
	kind := netutil.Classify(err)
	switch kind {
	case "timeout":
		return "⏳ The request timed out. The host may be slow or unreachable."
	case "dns":
		return "❌ Could not resolve the host name. Check the domain for typos."
	case "dial":
		return "❌ Could not connect to the host. It may be down or firewalled."
	case "tls":
		return "❌ TLS handshake failed. The certificate may be invalid."
	default:
		return "❌ Request failed: " + escape(err.Error())
	}
}

func formatBody(body []byte, contentType string) (string, bool) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "", false
	}

	isJSON := strings.Contains(contentType, "json") || json.Valid([]byte(trimmed))
	if isJSON {
		if pretty, errMsg := CheckJSON(trimmed); errMsg == "" {
			if len(pretty) > jsonBodyLimit {
				pretty = truncate(pretty, jsonBodyLimit) + "\n…"
			}
			return pretty, true
		}
	}

	if strings.Contains(contentType, "html") {
		trimmed = strings.TrimSpace(format.StripHTML(trimmed))
		if trimmed == "" {
			return "", false
		}
	}
	if len(trimmed) > textBodyLimit {
		trimmed = truncate(trimmed, textBodyLimit) + "\n…"
	}
	return trimmed, true
}

// Probe performs the request and renders the report.
func Probe(req probeRequest, timeout time.Duration, bodyLimit int64) string {
	client := &http.Client{Timeout: timeout}
	httpReq, err := http.NewRequest(req.Method, req.URL, nil)
	if err != nil {
		return "❌ Could not build the request: " + escape(err.Error())
	}

	start := time.Now()
	resp, err := client.Do(httpReq)
	took := time.Since(start)
	if err != nil {
		logger.SVCProbe.Warn("probe.failed",
			slog.String("method", req.Method),
			slog.String("kind", netutil.Classify(err)),
		)
		return probeErrorMessage(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, bodyLimit))

	var b strings.Builder
	fmt.Fprintf(&b, "🌐 <b>%s %s</b>\n\n", req.Method, escape(req.URL))
	fmt.Fprintf(&b, "%s <b>%s</b> in %d ms\n", statusBadge(resp.StatusCode), escape(resp.Status), took.Milliseconds())

	var headerLines []string
	for _, h := range shownHeaders {
		if v := resp.Header.Get(h); v != "" {
			headerLines = append(headerLines, h+": "+v)
		}
	}
	if len(headerLines) > 0 {
		b.WriteString("\n<b>Headers:</b>\n" + codeBlock(strings.Join(headerLines, "\n")) + "\n")
	}

	if formatted, ok := formatBody(body, resp.Header.Get("Content-Type")); ok {
		b.WriteString("\n<b>Body:</b>\n" + codeBlock(formatted))
	}

	logger.SVCProbe.Info("probe.done",
		slog.String("method", req.Method),
		slog.Int("status", resp.StatusCode),
		slog.Int64("took_ms", took.Milliseconds()),
	)
	return strings.TrimRight(b.String(), "\n")
}

func probeDefinition(cfg Config) *flow.Definition {
	return &flow.Definition{
		Name: "api",
		Steps: []flow.Step{
			{
				Field: "request",
				Prompt: "🌐 Send a URL to inspect, optionally prefixed with a method:\n" +
					"<code>GET api.example.com/users</code>",
				Rule: probeRule(),
			},
		},
		Render: func(c tele.Context, rec *flow.Record) error {
			req, _ := rec.Fields["request"].(probeRequest)
			return tghelpers.SendHTMLChunks(c, Probe(req, cfg.ProbeTimeout, cfg.ProbeBodyLimit))
		},
	}
}
