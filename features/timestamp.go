package features

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tghelpers "qabot/core/telegram/helpers"
	"qabot/flow"

	tele "gopkg.in/telebot.v4"
)

// millisThreshold separates second and millisecond timestamps: values above
// it are treated as milliseconds.
const millisThreshold = 1e10

type timeValue struct {
	// seconds and millis are set for numeric input.
	numeric bool
	seconds int64
	millis  int64
	// parsed is set for date input.
	parsed time.Time
}

// ParseTimeInput reads either a Unix timestamp (seconds or milliseconds,
// comma decimals accepted) or a date in one of the supported layouts.
func ParseTimeInput(input string) (timeValue, bool) {
	s := strings.TrimSpace(input)
	numeric := strings.ReplaceAll(s, ",", ".")
	if f, err := strconv.ParseFloat(numeric, 64); err == nil {
		ms := int64(f * 1000)
		if f > millisThreshold {
			ms = int64(f)
		}
		return timeValue{numeric: true, seconds: ms / 1000, millis: ms}, true
	}
	if t, ok := tghelpers.ParseFlexibleDate(s); ok {
		return timeValue{parsed: t}, true
	}
	return timeValue{}, false
}

func timestampRule() flow.Rule {
	return func(input string) (any, error) {
		v, ok := ParseTimeInput(input)
		if !ok {
			return nil, &flow.ValidationError{
				Code:    flow.CodeNotANumber,
				Message: "Send a Unix timestamp or a date like 2006-01-02 15:04.",
			}
		}
		return v, nil
	}
}

func renderTimeValue(v timeValue) string {
	var b strings.Builder
	b.WriteString("⏱ <b>Timestamp</b>\n\n")
	if v.numeric {
		t := time.Unix(v.seconds, (v.millis%1000)*int64(time.Millisecond))
		fmt.Fprintf(&b, "<b>UTC:</b> %s\n", t.UTC().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(&b, "<b>Local:</b> %s\n", t.Local().Format("2006-01-02 15:04:05 MST"))
		fmt.Fprintf(&b, "<b>Seconds:</b> <code>%d</code>\n", v.seconds)
		fmt.Fprintf(&b, "<b>Milliseconds:</b> <code>%d</code>", v.millis)
		return b.String()
	}
	fmt.Fprintf(&b, "<b>Date:</b> %s\n", v.parsed.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "<b>Seconds:</b> <code>%d</code>\n", v.parsed.Unix())
	fmt.Fprintf(&b, "<b>Milliseconds:</b> <code>%d</code>", v.parsed.UnixMilli())
	return b.String()
}

func timestampDefinition() *flow.Definition {
	return &flow.Definition{
		Name: "timestamp",
		Steps: []flow.Step{
			{
				Field: "value",
				Prompt: "⏱ Send a Unix timestamp (seconds or milliseconds) " +
					"or a date like <code>2006-01-02 15:04</code>.",
				Rule: timestampRule(),
			},
		},
		Render: func(c tele.Context, rec *flow.Record) error {
			v, _ := rec.Fields["value"].(timeValue)
			return tghelpers.SendHTML(c, renderTimeValue(v))
		},
	}
}
