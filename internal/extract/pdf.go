package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/docquery/cli/internal/domain"
)

// PDFExtractor extracts text from PDF bytes using go-fitz (MuPDF). Table
// and chart detection is not performed here; the structural flags stay
// false unless a richer extractor is registered in their place.
type PDFExtractor struct{}

// NewPDFExtractor creates a PDF extractor.
func NewPDFExtractor() PDFExtractor {
	return PDFExtractor{}
}

// Extract pulls text page by page and joins pages with blank lines, the
// boundary the chunker splits paragraphs on.
func (PDFExtractor) Extract(_ context.Context, data []byte, _ string) (string, domain.StructuralMetadata, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", domain.StructuralMetadata{}, fmt.Errorf("open PDF: %w", err)
	}
	defer doc.Close()

	var pages []string
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			return "", domain.StructuralMetadata{}, fmt.Errorf("extract page %d: %w", i+1, err)
		}
		if strings.TrimSpace(text) != "" {
			pages = append(pages, strings.TrimSpace(text))
		}
	}

	text := strings.Join(pages, "\n\n")
	return text, domain.StructuralMetadata{
		PageCount: doc.NumPage(),
		WordCount: len(strings.Fields(text)),
	}, nil
}
