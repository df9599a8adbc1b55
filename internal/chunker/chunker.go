package chunker

import (
	"strings"

	"github.com/docquery/cli/internal/domain"
)

// Chunker splits extracted document text into retrievable units. Splitting
// is type-aware: PDF text is treated as paragraphs, image-derived text as
// sentence windows. Chunk is a pure function of its inputs.
type Chunker struct {
	maxChunkSize   int
	sentenceWindow int
}

// New creates a chunker. maxChunkSize is the target chunk length in
// characters, sentenceWindow the number of sentences grouped per
// image-text chunk.
func New(maxChunkSize, sentenceWindow int) *Chunker {
	if maxChunkSize <= 0 {
		maxChunkSize = 500
	}
	if sentenceWindow <= 0 {
		sentenceWindow = 3
	}
	return &Chunker{
		maxChunkSize:   maxChunkSize,
		sentenceWindow: sentenceWindow,
	}
}

// Chunk splits text into ordered chunks. Ids are assigned sequentially
// starting at 1. Empty input yields an empty sequence, not an error. The
// visuals slice is attached to every visual-context chunk produced by the
// same call.
func (c *Chunker) Chunk(text string, kind domain.SourceKind, visuals []domain.VisualElement) []domain.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if kind == domain.SourceImage {
		return c.chunkImageText(text, visuals)
	}
	return c.chunkParagraphs(text)
}

// chunkParagraphs splits on blank lines, further splitting any paragraph
// over the size target at sentence boundaries. Words are never split.
func (c *Chunker) chunkParagraphs(text string) []domain.Chunk {
	var chunks []domain.Chunk
	id := 1
	for _, paragraph := range strings.Split(text, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		if len(paragraph) <= c.maxChunkSize {
			chunks = append(chunks, domain.Chunk{
				ID:      id,
				Kind:    domain.ChunkParagraph,
				Content: paragraph,
			})
			id++
			continue
		}
		for _, piece := range c.splitLongParagraph(paragraph) {
			chunks = append(chunks, domain.Chunk{
				ID:      id,
				Kind:    domain.ChunkParagraph,
				Content: piece,
			})
			id++
		}
	}
	return chunks
}

// splitLongParagraph accumulates sentences into a buffer and flushes a
// piece whenever appending the next sentence would exceed the size target.
// A single sentence longer than the target is emitted verbatim rather than
// dropped or split mid-word.
func (c *Chunker) splitLongParagraph(paragraph string) []string {
	sentences := splitSentences(paragraph)
	var pieces []string
	var buf strings.Builder
	for _, sentence := range sentences {
		if buf.Len() == 0 {
			buf.WriteString(sentence)
			continue
		}
		if buf.Len()+1+len(sentence) > c.maxChunkSize {
			pieces = append(pieces, buf.String())
			buf.Reset()
			buf.WriteString(sentence)
			continue
		}
		buf.WriteString(" ")
		buf.WriteString(sentence)
	}
	if buf.Len() > 0 {
		pieces = append(pieces, buf.String())
	}
	return pieces
}

// chunkImageText groups sentences into fixed-size windows. Visual-element
// metadata is shared context for the whole extraction call, so it is
// attached to every chunk rather than attributed per sentence.
func (c *Chunker) chunkImageText(text string, visuals []domain.VisualElement) []domain.Chunk {
	sentences := splitSentences(text)
	var chunks []domain.Chunk
	id := 1
	for start := 0; start < len(sentences); start += c.sentenceWindow {
		end := start + c.sentenceWindow
		if end > len(sentences) {
			end = len(sentences)
		}
		chunks = append(chunks, domain.Chunk{
			ID:      id,
			Kind:    domain.ChunkVisualContext,
			Content: strings.Join(sentences[start:end], " "),
			Visuals: visuals,
		})
		id++
	}
	return chunks
}

// splitSentences splits on ". " boundaries, keeping the terminating period
// with each sentence so that rejoined chunks reproduce the input content.
func splitSentences(text string) []string {
	parts := strings.Split(strings.TrimSpace(text), ". ")
	var sentences []string
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if i < len(parts)-1 && !strings.HasSuffix(part, ".") {
			part += "."
		}
		sentences = append(sentences, part)
	}
	return sentences
}
