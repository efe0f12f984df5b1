package render

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const (
	pdfFontSize   = 11
	pdfLineHeight = 5.5
	pdfMargin     = 20
)

// PDF lays text out on A4 pages with the core Helvetica font. Characters outside
// cp1252 are replaced by the font translator.
func PDF(text string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, lines := range paragraphs(text) {
		for _, line := range lines {
			content, bold := heading(line)
			style := ""
			if bold {
				style = "B"
			}
			pdf.SetFont("Helvetica", style, pdfFontSize)
			pdf.MultiCell(0, pdfLineHeight, tr(content), "", "L", false)
		}
		pdf.Ln(pdfLineHeight / 2)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("layout pdf: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
