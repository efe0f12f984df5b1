package store

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/cloudwego/eino-ext/components/document/parser/docx"
	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	"github.com/cloudwego/eino/components/document/parser"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// documentParser selects a parser by file extension. Unregistered extensions fall back
// to the plain text parser.
var documentParser = sync.OnceValues(func() (parser.Parser, error) {
	ctx := context.Background()

	pdfParser, err := pdf.NewPDFParser(ctx, &pdf.Config{})
	if err != nil {
		return nil, fmt.Errorf("pdf parser: %w", err)
	}

	docxParser, err := docx.NewDocxParser(ctx, &docx.Config{
		IncludeHeaders: true,
		IncludeTables:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("docx parser: %w", err)
	}

	return parser.NewExtParser(ctx, &parser.ExtParserConfig{
		Parsers: map[string]parser.Parser{
			".pdf":  pdfParser,
			".docx": docxParser,
		},
		FallbackParser: parser.TextParser{},
	})
})

// ExtractText converts file bytes into plain text based on the file extension.
// PDF, DOCX, and UTF-8 text are supported. Legacy DOC files, binary content, and PDFs
// without a text layer return ErrUnsupportedFormat; for scanned PDFs the error reports
// the page count so operators can tell a scan from a corrupt upload.
func ExtractText(ctx context.Context, name string, data []byte) (string, error) {
	ext := strings.ToLower(path.Ext(name))

	switch ext {
	case ".doc":
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	case ".pdf", ".docx":
	default:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: %s is not utf-8 text", ErrUnsupportedFormat, name)
		}
	}

	p, err := documentParser()
	if err != nil {
		return "", err
	}

	docs, err := p.Parse(ctx, bytes.NewReader(data), parser.WithURI("contract"+ext))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrUnsupportedFormat, name, err)
	}

	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		if content := strings.TrimSpace(doc.Content); content != "" {
			parts = append(parts, content)
		}
	}
	text := strings.Join(parts, "\n\n")

	if text == "" && ext == ".pdf" {
		count, err := api.PageCount(bytes.NewReader(data), nil)
		if err != nil {
			return "", fmt.Errorf("%w: %s: invalid pdf: %w", ErrUnsupportedFormat, name, err)
		}
		return "", fmt.Errorf("%w: %s (pdf, %d pages, no text layer)", ErrUnsupportedFormat, name, count)
	}
	return text, nil
}
