package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/docquery/cli/internal/domain"
)

// Registry dispatches text extraction by MIME type. Unrecognized types
// fail with ErrUnsupportedType; extractor failures are wrapped with
// ErrExtraction and propagated unchanged otherwise.
type Registry struct {
	extractors map[string]domain.TextExtractor
}

// NewRegistry creates a registry with the built-in extractors: PDF via
// go-fitz and plain text for pre-extracted content. Image MIME types have
// no built-in extractor; an OCR implementation can be registered by the
// caller.
func NewRegistry() *Registry {
	r := &Registry{extractors: make(map[string]domain.TextExtractor)}
	r.Register("application/pdf", NewPDFExtractor())
	r.Register("text/plain", PlainTextExtractor{})
	return r
}

// Register installs an extractor for a MIME type, replacing any existing
// one.
func (r *Registry) Register(mimeType string, extractor domain.TextExtractor) {
	r.extractors[mimeType] = extractor
}

// Extract runs the extractor registered for mimeType.
func (r *Registry) Extract(ctx context.Context, data []byte, mimeType string) (string, domain.StructuralMetadata, error) {
	extractor, ok := r.extractors[mimeType]
	if !ok {
		return "", domain.StructuralMetadata{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, mimeType)
	}
	text, meta, err := extractor.Extract(ctx, data, mimeType)
	if err != nil {
		return "", meta, fmt.Errorf("%s: %w: %w", mimeType, domain.ErrExtraction, err)
	}
	return text, meta, nil
}

// MIMEForPath maps a file extension to the MIME type used for dispatch.
func MIMEForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".txt", ".md":
		return "text/plain"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".tif", ".tiff":
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}

// PlainTextExtractor passes text content through unchanged.
type PlainTextExtractor struct{}

// Extract returns the bytes as text with a word count.
func (PlainTextExtractor) Extract(_ context.Context, data []byte, _ string) (string, domain.StructuralMetadata, error) {
	text := string(data)
	return text, domain.StructuralMetadata{
		PageCount: 1,
		WordCount: len(strings.Fields(text)),
	}, nil
}
