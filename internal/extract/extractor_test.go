package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docquery/cli/internal/domain"
)

func TestRegistryUnsupportedType(t *testing.T) {
	r := NewRegistry()
	_, _, err := r.Extract(context.Background(), []byte("data"), "application/vnd.unknown")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestRegistryNoBuiltInImageExtractor(t *testing.T) {
	r := NewRegistry()
	_, _, err := r.Extract(context.Background(), []byte{0x89, 0x50}, "image/png")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType, "OCR must be registered explicitly")
}

func TestPlainTextExtractor(t *testing.T) {
	r := NewRegistry()
	text, meta, err := r.Extract(context.Background(), []byte("three plain words"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "three plain words", text)
	assert.Equal(t, 3, meta.WordCount)
	assert.Equal(t, 1, meta.PageCount)
}

func TestPDFExtractorRejectsGarbage(t *testing.T) {
	r := NewRegistry()
	_, _, err := r.Extract(context.Background(), []byte("not a pdf at all"), "application/pdf")
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestRegisterReplacesExtractor(t *testing.T) {
	r := NewRegistry()
	r.Register("image/png", PlainTextExtractor{})
	text, _, err := r.Extract(context.Background(), []byte("ocr output"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "ocr output", text)
}

func TestMIMEForPath(t *testing.T) {
	tests := map[string]string{
		"report.PDF":   "application/pdf",
		"notes.txt":    "text/plain",
		"scan.jpeg":    "image/jpeg",
		"scan.png":     "image/png",
		"archive.dat":  "application/octet-stream",
		"doc/notes.md": "text/plain",
	}
	for path, want := range tests {
		assert.Equal(t, want, MIMEForPath(path), path)
	}
}
