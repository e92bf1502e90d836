package features

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"qabot/core/telegram/format"
	tghelpers "qabot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

func escape(s string) string { return format.EscapeHTML(s) }

// truncate shortens s to at most limit bytes, backing up so a multibyte
// rune is never cut in half.
func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

// line renders "<b>Label:</b> value" with the value escaped.
func line(label, value string) string {
	return fmt.Sprintf("<b>%s:</b> %s", label, format.EscapeHTML(value))
}

// section renders a label followed by a numbered list.
func section(label string, items []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s:</b>\n", label)
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, format.EscapeHTML(item))
	}
	return strings.TrimRight(b.String(), "\n")
}

// codeBlock wraps escaped content in a pre tag.
func codeBlock(content string) string {
	return "<pre>" + format.EscapeHTML(content) + "</pre>"
}

// reportMessages lays out a header plus a code payload as outbound messages.
// The payload is chunked before tagging so every message closes its own
// <pre> and never ships an unterminated tag.
func reportMessages(header, code string) []string {
	if code == "" {
		return []string{header}
	}
	const wrap = "<pre></pre>"
	limit := format.MessageLimit - len(wrap) - len(header) - 1
	chunks := format.ChunkLines(escape(code), limit)
	msgs := make([]string, len(chunks))
	for i, chunk := range chunks {
		msgs[i] = "<pre>" + strings.TrimRight(chunk, "\n") + "</pre>"
	}
	msgs[0] = header + "\n" + msgs[0]
	return msgs
}

// sendReport delivers the report messages in order.
func sendReport(c tele.Context, header, code string) error {
	for _, msg := range reportMessages(header, code) {
		if err := tghelpers.SendHTML(c, msg); err != nil {
			return err
		}
	}
	return nil
}

func sendDocument(c tele.Context, name string, data []byte) error {
	doc := &tele.Document{
		File:     tele.FromReader(bytes.NewReader(data)),
		FileName: name,
	}
	return c.Send(doc)
}

func sendPhoto(c tele.Context, data []byte) error {
	photo := &tele.Photo{File: tele.FromReader(bytes.NewReader(data))}
	return c.Send(photo)
}
