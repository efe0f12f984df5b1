// Package render converts generated plain text into office document bytes.
// Rendering never fails: when an encoder errors the raw UTF-8 text is returned instead.
package render

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Format is an output document format.
type Format string

const (
	FormatDOCX Format = "docx"
	FormatPDF  Format = "pdf"
	FormatText Format = "txt"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatDOCX, FormatPDF, FormatText:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported render format %q", s)
	}
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Renderer encodes text into a document format.
type Renderer interface {
	Render(text string, format Format) []byte
}

// Document is the default Renderer.
type Document struct {
	logger *slog.Logger
}

// New creates a Document renderer.
func New(logger *slog.Logger) *Document {
	return &Document{logger: logger.With("system", "render")}
}

// Render encodes text as format. Encoder failures are logged and the raw text bytes
// are returned.
func (d *Document) Render(text string, format Format) []byte {
	var (
		data []byte
		err  error
	)

	switch format {
	case FormatDOCX:
		data, err = DOCX(text)
	case FormatPDF:
		data, err = PDF(text)
		if err == nil {
			err = verifyPDF(data)
		}
	case FormatText:
		return []byte(text)
	default:
		err = fmt.Errorf("unsupported render format %q", format)
	}

	if err != nil {
		d.logger.Warn("render failed, using plain text", "format", format, "error", err)
		return []byte(text)
	}
	return data
}

func verifyPDF(data []byte) error {
	pages, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return fmt.Errorf("verify pdf: %w", err)
	}
	if pages < 1 {
		return fmt.Errorf("verify pdf: no pages")
	}
	return nil
}

// paragraphs splits text into trimmed paragraphs, keeping single line breaks inside
// a paragraph as separate lines.
func paragraphs(text string) [][]string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var out [][]string
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.Trim(block, "\n")
		if strings.TrimSpace(block) == "" {
			continue
		}
		out = append(out, strings.Split(block, "\n"))
	}
	return out
}

// heading reports whether line is a markdown-style heading and returns its text.
func heading(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "#") {
		return line, false
	}
	return strings.TrimSpace(strings.TrimLeft(trimmed, "#")), true
}
