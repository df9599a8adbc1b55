package documents

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docquery/cli/internal/domain"
	"github.com/docquery/cli/internal/extract"
	"github.com/docquery/cli/internal/rag"
)

// Processor handles file-level ingestion: read a file, extract its text
// and hand it to the orchestrator for chunking and indexing.
type Processor struct {
	registry *extract.Registry
	orch     *rag.Orchestrator
	log      *zap.SugaredLogger
}

// NewProcessor creates a document processor.
func NewProcessor(registry *extract.Registry, orch *rag.Orchestrator, log *zap.SugaredLogger) *Processor {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Processor{
		registry: registry,
		orch:     orch,
		log:      log,
	}
}

// ProcessFile ingests one file and returns the generated document id and
// the ingestion result. A partially indexed document is reported with both
// the partial result and the aggregated per-chunk errors.
func (p *Processor) ProcessFile(ctx context.Context, path string) (string, rag.IngestResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", rag.IngestResult{}, fmt.Errorf("%s: %w", path, domain.ErrNotFound)
		}
		return "", rag.IngestResult{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	mimeType := extract.MIMEForPath(path)
	text, meta, err := p.registry.Extract(ctx, data, mimeType)
	if err != nil {
		return "", rag.IngestResult{}, err
	}

	kind := domain.SourcePDF
	if strings.HasPrefix(mimeType, "image/") {
		kind = domain.SourceImage
	}

	documentID := uuid.New().String()
	result, err := p.orch.Ingest(ctx, documentID, text, kind, meta)
	if err != nil {
		p.log.Warnw("document partially ingested",
			"path", path,
			"document_id", documentID,
			"chunks_stored", result.ChunksStored,
			"chunks_failed", result.ChunksFailed,
		)
		return documentID, result, err
	}
	return documentID, result, nil
}
