package features

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"image/color"
	"strings"
	"testing"
)

func TestParseHexColor(t *testing.T) {
	c, ok := ParseHexColor("#ff0000")
	if !ok || c != (color.RGBA{R: 255, A: 255}) {
		t.Fatalf("unexpected color: %+v, ok=%v", c, ok)
	}
	c, ok = ParseHexColor("#abc")
	if !ok || c != (color.RGBA{R: 0xaa, G: 0xbb, B: 0xcc, A: 255}) {
		t.Fatalf("3-digit form should expand: %+v, ok=%v", c, ok)
	}
	for _, bad := range []string{"ff0000", "#ff00", "#gggggg"} {
		if _, ok := ParseHexColor(bad); ok {
			t.Fatalf("%q should be rejected", bad)
		}
	}
}

func TestParseImageParams(t *testing.T) {
	p, err := ParseImageParams("300", 5000)
	if err != nil || p.Width != 300 || p.Height != 300 {
		t.Fatalf("single size should be square: %+v, %v", p, err)
	}
	p, err = ParseImageParams("300 200 #ff0000", 5000)
	if err != nil || p.Width != 300 || p.Height != 200 || p.Color.R != 255 {
		t.Fatalf("full form failed: %+v, %v", p, err)
	}
	if _, err := ParseImageParams("6000", 5000); err == nil {
		t.Fatalf("oversized image must be rejected")
	}
	if _, err := ParseImageParams("300 #zzz", 5000); err == nil {
		t.Fatalf("broken color must be rejected")
	}
	if _, err := ParseImageParams("a b", 5000); err == nil {
		t.Fatalf("non-numeric sizes must be rejected")
	}
}

func TestBuildImageFormats(t *testing.T) {
	p := imageParams{Width: 8, Height: 8, Color: color.RGBA{R: 10, G: 20, B: 30, A: 255}}
	magics := map[string][]byte{
		"png": {0x89, 'P', 'N', 'G'},
		"jpg": {0xFF, 0xD8},
		"gif": []byte("GIF8"),
		"bmp": []byte("BM"),
		"ico": {0x00, 0x00, 0x01, 0x00},
	}
	for ext, magic := range magics {
		data, err := buildImage(ext, p)
		if err != nil {
			t.Fatalf("%s: %v", ext, err)
		}
		if !bytes.HasPrefix(data, magic) {
			t.Fatalf("%s: wrong magic bytes: % x", ext, data[:8])
		}
	}
}

func TestBuildTextFileHTMLWrap(t *testing.T) {
	out := string(buildTextFile("html", "<p>hello</p>"))
	if !strings.Contains(out, "<!DOCTYPE html>") || !strings.Contains(out, "<p>hello</p>") {
		t.Fatalf("fragment should be wrapped in a page: %q", out)
	}
	full := "<html><body>x</body></html>"
	if got := string(buildTextFile("html", full)); got != full {
		t.Fatalf("complete documents must pass through, got %q", got)
	}
}

func TestBuildTextFileJSON(t *testing.T) {
	out := buildTextFile("json", `{"a":1}`)
	if !json.Valid(out) || !strings.Contains(string(out), "\"a\": 1") {
		t.Fatalf("valid json should be pretty-printed: %q", out)
	}
	out = buildTextFile("json", "just text")
	var wrapped map[string]string
	if err := json.Unmarshal(out, &wrapped); err != nil || wrapped["content"] != "just text" {
		t.Fatalf("plain text should be wrapped: %q", out)
	}
}

func TestBuildArchiveReadable(t *testing.T) {
	data, err := buildArchive("archived text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("result is not a zip: %v", err)
	}
	if len(zr.File) != 1 || zr.File[0].Name != "content.txt" {
		t.Fatalf("unexpected archive layout: %v", zr.File)
	}
}

func TestBuildDOCXStructure(t *testing.T) {
	data, err := buildDOCX("line one\nline two")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("docx is not a zip: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{"[Content_Types].xml", "_rels/.rels", "word/document.xml"} {
		if !names[want] {
			t.Fatalf("missing part %s", want)
		}
	}
}

func TestBuildVideoStubHeaders(t *testing.T) {
	mp4 := buildVideoStub("mp4")
	if !bytes.Contains(mp4[:12], []byte("ftyp")) {
		t.Fatalf("mp4 stub missing ftyp box: % x", mp4)
	}
	avi := buildVideoStub("avi")
	if !bytes.HasPrefix(avi, []byte("RIFF")) || !bytes.Contains(avi, []byte("AVI ")) {
		t.Fatalf("avi stub missing RIFF header: % x", avi)
	}
}

func TestBuildPDFAndXLSX(t *testing.T) {
	pdf, err := buildPDF("hello pdf")
	if err != nil {
		t.Fatalf("pdf: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("pdf magic missing: % x", pdf[:8])
	}

	xlsx, err := buildXLSX("row one\nrow two")
	if err != nil {
		t.Fatalf("xlsx: %v", err)
	}
	if _, err := zip.NewReader(bytes.NewReader(xlsx), int64(len(xlsx))); err != nil {
		t.Fatalf("xlsx is not a zip: %v", err)
	}
}
