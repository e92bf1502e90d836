package format

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MessageLimit is the soft outbound message size used when chunking.
	MessageLimit = 4000
	// MessageLimitHard is the Telegram hard cap for a single message.
	MessageLimitHard = 4096
)

var (
	htmlEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)
	htmlUnescaper = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&amp;", "&",
	)
	tagRe = regexp.MustCompile(`<[^>]*>`)
)

// EscapeHTML escapes the five characters that break Telegram HTML parse mode.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// StripHTML removes markup tags and unescapes entities, producing the
// plain-text fallback used when a formatted send is rejected.
func StripHTML(s string) string {
	return htmlUnescaper.Replace(tagRe.ReplaceAllString(s, ""))
}

// ChunkLines splits text into pieces of at most limit bytes, breaking only
// on line boundaries. A single line longer than the limit is hard-split.
// Concatenating the returned chunks reproduces the input exactly.
func ChunkLines(text string, limit int) []string {
	if limit <= 0 {
		limit = MessageLimit
	}
	if len(text) <= limit {
		return []string{text}
	}

	var (
		chunks []string
		cur    strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
	}

	rest := text
	for len(rest) > 0 {
		line := rest
		if idx := strings.IndexByte(rest, '\n'); idx >= 0 {
			line = rest[:idx+1]
			rest = rest[idx+1:]
		} else {
			rest = ""
		}

		if len(line) > limit {
			flush()
			for len(line) > limit {
				cut := limit
				for cut > 0 && !utf8.RuneStart(line[cut]) {
					cut--
				}
				if cut == 0 {
					cut = limit
				}
				chunks = append(chunks, line[:cut])
				line = line[cut:]
			}
			if line != "" {
				cur.WriteString(line)
			}
			continue
		}

		if cur.Len()+len(line) > limit {
			flush()
		}
		cur.WriteString(line)
	}
	flush()
	return chunks
}
