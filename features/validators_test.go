package features

import (
	"strings"
	"testing"
)

func TestCheckJSONRoundTrip(t *testing.T) {
	pretty, errMsg := CheckJSON(`{"b":1,"a":[1,2]}`)
	if errMsg != "" {
		t.Fatalf("unexpected error: %s", errMsg)
	}
	// Indentation preserves the input key order.
	if !strings.Contains(pretty, "\"b\": 1") || strings.Index(pretty, "\"b\"") > strings.Index(pretty, "\"a\"") {
		t.Fatalf("unexpected pretty output:\n%s", pretty)
	}
}

func TestCheckJSONReportsPosition(t *testing.T) {
	_, errMsg := CheckJSON("{\n  \"a\": 1,\n  \"b\": oops\n}")
	if errMsg == "" {
		t.Fatalf("expected an error")
	}
	if !strings.Contains(errMsg, "line 3") {
		t.Fatalf("error should name line 3, got %q", errMsg)
	}
	if !strings.Contains(errMsg, `"b": oops`) {
		t.Fatalf("error should include the offending line, got %q", errMsg)
	}
}

func TestCheckXML(t *testing.T) {
	pretty, errMsg := CheckXML("<root><item>a</item></root>")
	if errMsg != "" {
		t.Fatalf("unexpected error: %s", errMsg)
	}
	if !strings.Contains(pretty, "<item>") {
		t.Fatalf("unexpected output: %q", pretty)
	}

	_, errMsg = CheckXML("<root><item>a</root>")
	if errMsg == "" || !strings.Contains(errMsg, "line") {
		t.Fatalf("mismatched tags should fail with a line number, got %q", errMsg)
	}

	if _, errMsg = CheckXML("plain text"); errMsg == "" {
		t.Fatalf("text without elements should fail")
	}
}

func TestCheckYAML(t *testing.T) {
	pretty, errMsg := CheckYAML("a: 1\nb:\n  - x\n  - y")
	if errMsg != "" {
		t.Fatalf("unexpected error: %s", errMsg)
	}
	if !strings.Contains(pretty, "a: 1") {
		t.Fatalf("unexpected output: %q", pretty)
	}

	_, errMsg = CheckYAML("a: 1\n  bad indent: [")
	if errMsg == "" {
		t.Fatalf("broken yaml should fail")
	}
}

func TestRenderValidationMarksOutcome(t *testing.T) {
	header, code := renderValidation("JSON", `{"ok":true}`)
	if !strings.HasPrefix(header, "✅") {
		t.Fatalf("valid input should render a success marker: %q", header)
	}
	if !strings.Contains(code, `"ok": true`) {
		t.Fatalf("unexpected payload: %q", code)
	}
	header, code = renderValidation("JSON", "{")
	if !strings.HasPrefix(header, "❌") {
		t.Fatalf("invalid input should render a failure marker: %q", header)
	}
	if code == "" {
		t.Fatal("failure should carry error detail")
	}
}

func TestReportMessagesCloseEveryPreTag(t *testing.T) {
	items := make([]string, 900)
	for i := range items {
		items[i] = `"item"`
	}
	_, code := renderJSONResult("[" + strings.Join(items, ",") + "]")

	msgs := reportMessages("✅ <b>Valid JSON</b>", code)
	if len(msgs) < 2 {
		t.Fatalf("expected a chunked report, got %d message(s)", len(msgs))
	}
	var payload strings.Builder
	for i, msg := range msgs {
		if strings.Count(msg, "<pre>") != 1 || strings.Count(msg, "</pre>") != 1 {
			t.Fatalf("message %d does not close its pre tag: %q", i, msg[:60])
		}
		body := msg[strings.Index(msg, "<pre>")+len("<pre>") : strings.Index(msg, "</pre>")]
		payload.WriteString(body)
		payload.WriteString("\n")
	}
	if !strings.Contains(payload.String(), "&quot;item&quot;") {
		t.Fatal("chunked payload lost its content")
	}
}
