package features

import (
	"fmt"
	"image/color"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"qabot/core/logger"
	tghelpers "qabot/core/telegram/helpers"
	"qabot/flow"

	tele "gopkg.in/telebot.v4"
)

var hexColorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// imageParams is the parsed "width [height] [#RRGGBB]" request.
type imageParams struct {
	Width, Height int
	Color         color.RGBA
}

// ParseHexColor reads #RGB or #RRGGBB.
func ParseHexColor(s string) (color.RGBA, bool) {
	if !hexColorRe.MatchString(s) {
		return color.RGBA{}, false
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}

// ParseImageParams reads "size", "width height" with an optional trailing
// hex color. Sides are capped at maxSide.
func ParseImageParams(input string, maxSide int) (imageParams, error) {
	p := imageParams{Color: color.RGBA{R: 200, G: 200, B: 200, A: 255}}
	fields := strings.Fields(strings.TrimSpace(input))

	if len(fields) > 0 {
		if c, ok := ParseHexColor(fields[len(fields)-1]); ok {
			p.Color = c
			fields = fields[:len(fields)-1]
		} else if strings.HasPrefix(fields[len(fields)-1], "#") {
			return p, &flow.ValidationError{
				Code:    flow.CodeInvalidChoice,
				Message: "The color must look like #RRGGBB or #RGB.",
			}
		}
	}

	if len(fields) == 0 || len(fields) > 2 {
		return p, &flow.ValidationError{
			Code:    flow.CodeInvalidChoice,
			Message: "Send the size as \"300\", \"300 200\" or \"300 200 #ff0000\".",
		}
	}

	dims := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return p, &flow.ValidationError{Code: flow.CodeNotANumber, Message: "Sizes must be whole numbers."}
		}
		if n <= 0 || n > maxSide {
			return p, &flow.ValidationError{
				Code:    flow.CodeOutOfRange,
				Message: fmt.Sprintf("Sides must be between 1 and %d pixels.", maxSide),
			}
		}
		dims[i] = n
	}
	p.Width = dims[0]
	p.Height = dims[0]
	if len(dims) == 2 {
		p.Height = dims[1]
	}
	return p, nil
}

func imageParamsRule(maxSide int) flow.Rule {
	return func(input string) (any, error) {
		p, err := ParseImageParams(input, maxSide)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

func fileGenDefinition(cfg Config) *flow.Definition {
	contentStep := func(prompt string) []flow.Step {
		return []flow.Step{
			{Field: "content", Prompt: prompt, Rule: flow.NonEmpty(), AllowBack: true},
		}
	}
	return &flow.Definition{
		Name: "filegen",
		Steps: []flow.Step{
			{
				Field:  "format",
				Prompt: "📎 Pick the file format.",
				Rule: flow.Choice(
					"JPG", "PNG", "GIF", "ICO", "BMP", "SVG",
					"TXT", "CSS", "HTML", "JS", "JSON",
					"PDF", "DOCX", "XLSX", "ZIP", "RAR", "MP4", "AVI",
				),
				Branch: map[string]string{
					"JPG": "image", "PNG": "image", "GIF": "image", "ICO": "image", "BMP": "image",
					"SVG": "svg",
					"TXT": "text", "CSS": "text", "HTML": "text", "JS": "text", "JSON": "text",
					"PDF": "office", "DOCX": "office", "XLSX": "office",
					"ZIP": "archive", "RAR": "archive",
					"MP4": "video", "AVI": "video",
				},
				Keyboard: [][]string{
					{"JPG", "PNG", "GIF", "ICO", "BMP"},
					{"SVG", "TXT", "CSS", "HTML", "JS"},
					{"JSON", "PDF", "DOCX", "XLSX"},
					{"ZIP", "RAR", "MP4", "AVI"},
				},
			},
		},
		Branches: map[string][]flow.Step{
			"image": {
				{
					Field: "image_params",
					Prompt: "Send the image size: <code>300</code>, <code>300 200</code> " +
						"or <code>300 200 #ff0000</code>.",
					Rule:      imageParamsRule(cfg.ImageMaxSide),
					AllowBack: true,
				},
			},
			"svg":     contentStep("Send the text to put inside the SVG."),
			"text":    contentStep("Send the file content."),
			"office":  contentStep("Send the document content."),
			"archive": contentStep("Send the text to place inside the archive."),
			"video":   {},
		},
		Render: func(c tele.Context, rec *flow.Record) error {
			return renderFile(c, rec)
		},
	}
}

func renderFile(c tele.Context, rec *flow.Record) error {
	formatName := rec.String("format")
	content := rec.String("content")
	ext := strings.ToLower(formatName)

	var (
		data    []byte
		err     error
		asPhoto bool
	)
	switch rec.Branch {
	case "image":
		p, _ := rec.Fields["image_params"].(imageParams)
		data, err = buildImage(ext, p)
		asPhoto = ext != "ico" && ext != "bmp"
	case "svg":
		data = buildSVG(content)
	case "text":
		data = buildTextFile(ext, content)
	case "office":
		switch ext {
		case "pdf":
			data, err = buildPDF(content)
		case "docx":
			data, err = buildDOCX(content)
		case "xlsx":
			data, err = buildXLSX(content)
		}
	case "archive":
		data, err = buildArchive(content)
	case "video":
		data = buildVideoStub(ext)
	}
	if err != nil {
		logger.SVCFiles.Warn("filegen.failed",
			slog.String("format", formatName),
			slog.String("err", err.Error()),
		)
		return tghelpers.SendHTML(c, "❌ Could not generate the file: "+escape(err.Error()))
	}

	logger.SVCFiles.Info("filegen.done",
		slog.String("format", formatName),
		slog.Int("bytes", len(data)),
	)
	name := "sample." + ext
	if asPhoto {
		return sendPhoto(c, data)
	}
	return sendDocument(c, name, data)
}
