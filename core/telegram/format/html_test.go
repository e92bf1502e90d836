package format

import (
	"strings"
	"testing"
)

func TestEscapeHTML(t *testing.T) {
	got := EscapeHTML(`<b>&"quoted"&'x'</b>`)
	want := "&lt;b&gt;&amp;&quot;quoted&quot;&amp;&#39;x&#39;&lt;/b&gt;"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestStripHTML(t *testing.T) {
	got := StripHTML("<b>Title</b>: &lt;tag&gt; &amp; more")
	want := "Title: <tag> & more"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestChunkLinesReassembles(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 500; i++ {
		b.WriteString("line with some content to push past the limit\n")
	}
	text := b.String()

	chunks := ChunkLines(text, MessageLimit)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks for %d bytes", len(text))
	}
	for i, chunk := range chunks {
		if len(chunk) > MessageLimit {
			t.Fatalf("chunk %d exceeds limit: %d bytes", i, len(chunk))
		}
		if i < len(chunks)-1 && !strings.HasSuffix(chunk, "\n") {
			t.Fatalf("chunk %d does not end on a line boundary", i)
		}
	}
	if strings.Join(chunks, "") != text {
		t.Fatalf("concatenated chunks differ from input")
	}
}

func TestChunkLinesShortInput(t *testing.T) {
	chunks := ChunkLines("short", MessageLimit)
	if len(chunks) != 1 || chunks[0] != "short" {
		t.Fatalf("short input should be a single chunk, got %v", chunks)
	}
}

func TestChunkLinesOverlongLine(t *testing.T) {
	text := strings.Repeat("x", 9000)
	chunks := ChunkLines(text, MessageLimit)
	if strings.Join(chunks, "") != text {
		t.Fatalf("hard-split chunks must reassemble")
	}
	for i, chunk := range chunks {
		if len(chunk) > MessageLimit {
			t.Fatalf("chunk %d exceeds limit", i)
		}
	}
}
