package features

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"qabot/flow"

	tele "gopkg.in/telebot.v4"
)

// offsetPosition maps a byte offset to a 1-based line and column.
func offsetPosition(src string, offset int64) (line, col int) {
	line, col = 1, 1
	for i := int64(0); i < offset && i < int64(len(src)); i++ {
		if src[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}

// excerptLine returns the given 1-based source line, trimmed for display.
func excerptLine(src string, line int) string {
	lines := strings.Split(src, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	excerpt := strings.TrimSpace(lines[line-1])
	if len(excerpt) > 120 {
		excerpt = truncate(excerpt, 120) + "…"
	}
	return excerpt
}

// CheckJSON validates and pretty-prints a JSON document. On failure it
// reports the error position.
func CheckJSON(src string) (pretty string, errMsg string) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(src), "", "  "); err != nil {
		var syn *json.SyntaxError
		var typ *json.UnmarshalTypeError
		switch {
		case errors.As(err, &syn):
			line, col := offsetPosition(src, syn.Offset)
			errMsg = fmt.Sprintf("line %d, column %d: %s", line, col, syn.Error())
			if ex := excerptLine(src, line); ex != "" {
				errMsg += "\n" + ex
			}
		case errors.As(err, &typ):
			line, col := offsetPosition(src, typ.Offset)
			errMsg = fmt.Sprintf("line %d, column %d: %s", line, col, typ.Error())
		default:
			errMsg = err.Error()
		}
		return "", errMsg
	}
	return buf.String(), ""
}

func jsonSummary(src string) string {
	var v any
	if err := json.Unmarshal([]byte(src), &v); err != nil {
		return ""
	}
	switch t := v.(type) {
	case map[string]any:
		return fmt.Sprintf("object with %d keys", len(t))
	case []any:
		return fmt.Sprintf("array with %d elements", len(t))
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	}
	return ""
}

// renderJSONResult returns the verdict header and the code payload that
// accompanies it (pretty-printed document or error detail).
func renderJSONResult(src string) (string, string) {
	pretty, errMsg := CheckJSON(src)
	if errMsg != "" {
		return "❌ <b>Invalid JSON</b>", errMsg
	}
	header := "✅ <b>Valid JSON</b>"
	if summary := jsonSummary(src); summary != "" {
		header += " (" + summary + ")"
	}
	return header, pretty
}

func jsonDefinition() *flow.Definition {
	return &flow.Definition{
		Name: "json",
		Steps: []flow.Step{
			{Field: "payload", Prompt: "✅ Send the JSON to validate.", Rule: flow.NonEmpty()},
		},
		Render: func(c tele.Context, rec *flow.Record) error {
			header, code := renderJSONResult(rec.String("payload"))
			return sendReport(c, header, code)
		},
	}
}
