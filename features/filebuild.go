package features

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"
	"golang.org/x/image/bmp"

	"qabot/core/telegram/format"
)

func buildImage(ext string, p imageParams) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(p.Color), image.Point{}, draw.Src)

	var buf bytes.Buffer
	switch ext {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	case "jpg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
			return nil, err
		}
	case "gif":
		if err := gif.Encode(&buf, img, nil); err != nil {
			return nil, err
		}
	case "bmp":
		if err := bmp.Encode(&buf, img); err != nil {
			return nil, err
		}
	case "ico":
		return buildICO(img)
	default:
		return nil, fmt.Errorf("unsupported image format %q", ext)
	}
	return buf.Bytes(), nil
}

// buildICO wraps a PNG rendering in a single-entry ICO container.
func buildICO(img image.Image) ([]byte, error) {
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	dim := func(n int) byte {
		if n >= 256 {
			return 0
		}
		return byte(n)
	}

	var buf bytes.Buffer
	// ICONDIR header: reserved, type (1 = icon), count.
	binary.Write(&buf, binary.LittleEndian, uint16(0))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	// ICONDIRENTRY.
	buf.WriteByte(dim(bounds.Dx()))
	buf.WriteByte(dim(bounds.Dy()))
	buf.WriteByte(0) // palette size
	buf.WriteByte(0) // reserved
	binary.Write(&buf, binary.LittleEndian, uint16(1))  // planes
	binary.Write(&buf, binary.LittleEndian, uint16(32)) // bits per pixel
	binary.Write(&buf, binary.LittleEndian, uint32(pngBuf.Len()))
	binary.Write(&buf, binary.LittleEndian, uint32(22)) // data offset
	buf.Write(pngBuf.Bytes())
	return buf.Bytes(), nil
}

func buildSVG(text string) []byte {
	svg := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="400" height="120">
  <rect width="100%%" height="100%%" fill="#f5f5f5"/>
  <text x="20" y="65" font-family="sans-serif" font-size="20">%s</text>
</svg>
`, format.EscapeHTML(text))
	return []byte(svg)
}

func buildTextFile(ext, content string) []byte {
	switch ext {
	case "html":
		if strings.Contains(strings.ToLower(content), "<html") {
			return []byte(content)
		}
		page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Sample</title></head>
<body>
%s
</body>
</html>
`, content)
		return []byte(page)
	case "json":
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(content), "", "  "); err == nil {
			return buf.Bytes()
		}
		wrapped, _ := json.MarshalIndent(map[string]string{"content": content}, "", "  ")
		return wrapped
	default:
		return []byte(content)
	}
}

func buildPDF(content string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 12)
	pdf.MultiCell(0, 6, content, "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}
	return buf.Bytes(), nil
}

const xlsxRowCap = 1000

func buildXLSX(content string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	lines := strings.Split(content, "\n")
	if len(lines) > xlsxRowCap {
		lines = lines[:xlsxRowCap]
	}
	for i, l := range lines {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetCellValue("Sheet1", cell, l); err != nil {
			return nil, fmt.Errorf("xlsx: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

const docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const docxRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

// buildDOCX assembles a minimal OOXML package with one paragraph per line.
func buildDOCX(content string) ([]byte, error) {
	var body strings.Builder
	for _, l := range strings.Split(content, "\n") {
		fmt.Fprintf(&body, "<w:p><w:r><w:t xml:space=\"preserve\">%s</w:t></w:r></w:p>", format.EscapeHTML(l))
	}
	document := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>%s</w:body>
</w:document>`, body.String())

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := []struct{ name, data string }{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", docxRels},
		{"word/document.xml", document},
	}
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("docx: %w", err)
		}
		if _, err := w.Write([]byte(part.data)); err != nil {
			return nil, fmt.Errorf("docx: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("docx: %w", err)
	}
	return buf.Bytes(), nil
}

// buildArchive produces a zip holding the content as a text file. The same
// payload backs the .rar response, which is a plain archive for upload tests.
func buildArchive(content string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("content.txt")
	if err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}
	if _, err := w.Write([]byte(content)); err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}
	return buf.Bytes(), nil
}

// buildVideoStub emits the minimal container header so the file is
// recognized by type sniffers without holding any media.
func buildVideoStub(ext string) []byte {
	if ext == "avi" {
		var buf bytes.Buffer
		buf.WriteString("RIFF")
		binary.Write(&buf, binary.LittleEndian, uint32(4))
		buf.WriteString("AVI ")
		return buf.Bytes()
	}
	// MP4 ftyp box followed by an empty mdat box.
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(28))
	buf.WriteString("ftypisom")
	binary.Write(&buf, binary.BigEndian, uint32(0x200))
	buf.WriteString("isomiso2mp41")
	binary.Write(&buf, binary.BigEndian, uint32(8))
	buf.WriteString("mdat")
	return buf.Bytes()
}
