package features

import (
	"strings"
	"testing"

	"qabot/flow"
)

func recordWith(fields map[string]any) *flow.Record {
	return &flow.Record{Fields: fields}
}

func TestRenderBugReportFull(t *testing.T) {
	rec := recordWith(map[string]any{
		"title":       "Login <fails>",
		"description": "after update",
		"steps":       []string{"open app", "press login"},
		"actual":      "error 500",
		"expected":    "logged in",
		"environment": "iOS 17",
		"severity":    "Critical",
		"logs":        "panic: nil",
		"curl":        "curl -X POST https://x",
		"docs_link":   "https://wiki.example.com/login",
	})
	out := renderBugReport(rec)

	if strings.Contains(out, "<fails>") {
		t.Fatalf("title must be escaped: %q", out)
	}
	if !strings.Contains(out, "&lt;fails&gt;") {
		t.Fatalf("escaped title missing: %q", out)
	}
	for _, want := range []string{"1. open app", "2. press login", "Severity", "<pre>panic: nil</pre>"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderBugReportOmitsSkipped(t *testing.T) {
	rec := recordWith(map[string]any{
		"title":  "t",
		"steps":  []string{"s"},
		"actual": "a",
	})
	out := renderBugReport(rec)
	for _, absent := range []string{"Description", "Expected", "Environment", "Severity", "Logs", "cURL", "Documentation"} {
		if strings.Contains(out, absent) {
			t.Fatalf("skipped section %q must be omitted:\n%s", absent, out)
		}
	}
}

func TestRenderTestCasePlaceholders(t *testing.T) {
	rec := recordWith(map[string]any{
		"title":    "Check search",
		"steps":    []string{"open search", "type query"},
		"priority": "High",
	})
	out := renderTestCase(rec)
	if !strings.Contains(out, "<b>Actual result:</b> _") || !strings.Contains(out, "<b>Status:</b> _") {
		t.Fatalf("placeholder lines missing:\n%s", out)
	}
	if !strings.Contains(out, "Priority") {
		t.Fatalf("priority missing:\n%s", out)
	}
}

func TestRenderChecklistNumbersItems(t *testing.T) {
	rec := recordWith(map[string]any{
		"title": "Release",
		"items": []string{"run tests", "tag build"},
	})
	out := renderChecklist(rec)
	if !strings.Contains(out, "[ ] 1. run tests") || !strings.Contains(out, "[ ] 2. tag build") {
		t.Fatalf("unexpected checklist:\n%s", out)
	}
}
