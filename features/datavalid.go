package features

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"qabot/flow"

	tele "gopkg.in/telebot.v4"
)

// CheckXML validates an XML document and returns a re-indented rendering.
func CheckXML(src string) (pretty string, errMsg string) {
	decoder := xml.NewDecoder(strings.NewReader(src))
	var buf bytes.Buffer
	encoder := xml.NewEncoder(&buf)
	encoder.Indent("", "  ")

	sawElement := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			var syn *xml.SyntaxError
			if errors.As(err, &syn) {
				msg := fmt.Sprintf("line %d: %s", syn.Line, syn.Msg)
				if ex := excerptLine(src, syn.Line); ex != "" {
					msg += "\n" + ex
				}
				return "", msg
			}
			return "", err.Error()
		}
		if _, ok := tok.(xml.StartElement); ok {
			sawElement = true
		}
		if err := encoder.EncodeToken(tok); err != nil {
			return "", err.Error()
		}
	}
	if !sawElement {
		return "", "no elements found"
	}
	if err := encoder.Flush(); err != nil {
		return "", err.Error()
	}
	return strings.TrimSpace(buf.String()), ""
}

func xmlSummary(src string) string {
	decoder := xml.NewDecoder(strings.NewReader(src))
	var root string
	elements := 0
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		if start, ok := tok.(xml.StartElement); ok {
			if root == "" {
				root = start.Name.Local
			}
			elements++
		}
	}
	if root == "" {
		return ""
	}
	return fmt.Sprintf("root <%s>, %d elements", root, elements)
}

// CheckYAML validates a YAML document and returns a normalized rendering.
func CheckYAML(src string) (pretty string, errMsg string) {
	var v any
	if err := yaml.Unmarshal([]byte(src), &v); err != nil {
		var typErr *yaml.TypeError
		if errors.As(err, &typErr) {
			return "", strings.Join(typErr.Errors, "\n")
		}
		return "", strings.TrimPrefix(err.Error(), "yaml: ")
	}
	out, err := yaml.Marshal(v)
	if err != nil {
		return "", err.Error()
	}
	return strings.TrimRight(string(out), "\n"), ""
}

func yamlSummary(src string) string {
	var v any
	if err := yaml.Unmarshal([]byte(src), &v); err != nil {
		return ""
	}
	switch t := v.(type) {
	case map[string]any:
		return fmt.Sprintf("mapping with %d keys", len(t))
	case []any:
		return fmt.Sprintf("sequence with %d items", len(t))
	case nil:
		return "empty document"
	default:
		return "scalar"
	}
}

// renderValidation returns the verdict header and the code payload that
// accompanies it (formatted document or error detail).
func renderValidation(formatName, src string) (string, string) {
	var pretty, errMsg, summary string
	switch formatName {
	case "JSON":
		pretty, errMsg = CheckJSON(src)
		summary = jsonSummary(src)
	case "XML":
		pretty, errMsg = CheckXML(src)
		summary = xmlSummary(src)
	case "YAML":
		pretty, errMsg = CheckYAML(src)
		summary = yamlSummary(src)
	}
	if errMsg != "" {
		return fmt.Sprintf("❌ <b>Invalid %s</b>", formatName), errMsg
	}
	header := fmt.Sprintf("✅ <b>Valid %s</b>", formatName)
	if summary != "" {
		header += " (" + summary + ")"
	}
	return header, pretty
}

func dataValidatorDefinition() *flow.Definition {
	payloadStep := func(formatName string) []flow.Step {
		return []flow.Step{
			{
				Field:     "payload",
				Prompt:    fmt.Sprintf("Send the %s to validate.", formatName),
				Rule:      flow.NonEmpty(),
				AllowBack: true,
			},
		}
	}
	return &flow.Definition{
		Name: "validate",
		Steps: []flow.Step{
			{
				Field:    "format",
				Prompt:   "📑 Which format do you want to validate?",
				Rule:     flow.Choice("JSON", "XML", "YAML"),
				Branch:   map[string]string{"JSON": "json", "XML": "xml", "YAML": "yaml"},
				Keyboard: [][]string{{"JSON", "XML", "YAML"}},
			},
		},
		Branches: map[string][]flow.Step{
			"json": payloadStep("JSON"),
			"xml":  payloadStep("XML"),
			"yaml": payloadStep("YAML"),
		},
		Render: func(c tele.Context, rec *flow.Record) error {
			header, code := renderValidation(rec.String("format"), rec.String("payload"))
			return sendReport(c, header, code)
		},
	}
}
