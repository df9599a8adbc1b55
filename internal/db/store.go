package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/docquery/cli/internal/domain"
)

// Store is a pgvector-backed VectorIndex for deployments that need the
// index to survive restarts. Result ordering matches the in-memory index:
// cosine similarity descending, ties broken by insertion order via the
// monotonic inserted_seq column.
type Store struct {
	pool      *pgxpool.Pool
	dimension int
}

// NewStore connects to Postgres and prepares the chunk table. The
// pgvector extension must be installed on the server.
func NewStore(ctx context.Context, connString string, dimension int) (*Store, error) {
	if dimension <= 0 {
		dimension = 384
	}
	pool, err := newPool(connString)
	if err != nil {
		return nil, err
	}
	store := &Store{pool: pool, dimension: dimension}
	if err := store.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			document_id  text NOT NULL,
			chunk_id     int  NOT NULL,
			kind         text NOT NULL,
			content      text NOT NULL,
			visuals      jsonb,
			embedding    vector(%d) NOT NULL,
			inserted_seq bigint GENERATED ALWAYS AS IDENTITY,
			PRIMARY KEY (document_id, chunk_id)
		)`, s.dimension),
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to prepare schema: %w", err)
		}
	}
	return nil
}

// Upsert inserts or replaces the record at (documentID, chunk.ID).
func (s *Store) Upsert(ctx context.Context, documentID string, chunk domain.Chunk, embedding []float32) error {
	if len(embedding) != s.dimension {
		return fmt.Errorf("%w: got %d, index requires %d", domain.ErrDimensionMismatch, len(embedding), s.dimension)
	}
	visuals, err := json.Marshal(chunk.Visuals)
	if err != nil {
		return fmt.Errorf("failed to encode visuals: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO chunks (document_id, chunk_id, kind, content, visuals, embedding)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (document_id, chunk_id)
		 DO UPDATE SET kind = $3, content = $4, visuals = $5, embedding = $6`,
		documentID, chunk.ID, string(chunk.Kind), chunk.Content, visuals, pgvector.NewVector(embedding),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert chunk %d of %s: %w", chunk.ID, documentID, err)
	}
	return nil
}

// Search returns the top limit records by cosine similarity.
func (s *Store) Search(ctx context.Context, embedding []float32, documentIDs []string, limit int) ([]domain.RetrievalResult, error) {
	if len(embedding) != s.dimension {
		return nil, fmt.Errorf("%w: query has %d, index requires %d", domain.ErrDimensionMismatch, len(embedding), s.dimension)
	}
	if limit <= 0 {
		limit = 5
	}

	// pgvector's cosine distance is NaN when either vector has zero
	// magnitude. Postgres treats NaN as equal to NaN, so NULLIF folds
	// those rows to similarity 0, matching the in-memory index.
	sql := `SELECT document_id, chunk_id, kind, content, visuals, embedding,
	               COALESCE(NULLIF(1 - (embedding <=> $1), 'NaN'::float8), 0) AS similarity
	        FROM chunks`
	args := []any{pgvector.NewVector(embedding)}
	if len(documentIDs) > 0 {
		sql += ` WHERE document_id = ANY($2)`
		args = append(args, documentIDs)
	}
	sql += fmt.Sprintf(` ORDER BY similarity DESC, inserted_seq ASC LIMIT %d`, limit)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	defer rows.Close()

	var results []domain.RetrievalResult
	for rows.Next() {
		var (
			result      domain.RetrievalResult
			kind        string
			visualsJSON []byte
			vec         pgvector.Vector
		)
		if err := rows.Scan(&result.DocumentID, &result.ChunkID, &kind, &result.Content, &visualsJSON, &vec, &result.Similarity); err != nil {
			return nil, fmt.Errorf("failed to scan chunk row: %w", err)
		}
		result.Kind = domain.ChunkKind(kind)
		result.Embedding = vec.Slice()
		if len(visualsJSON) > 0 {
			if err := json.Unmarshal(visualsJSON, &result.Visuals); err != nil {
				return nil, fmt.Errorf("failed to decode visuals: %w", err)
			}
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chunk rows: %w", err)
	}
	return results, nil
}

// Count returns the number of stored records in the filter scope.
func (s *Store) Count(ctx context.Context, documentIDs []string) (int, error) {
	var (
		count int
		err   error
	)
	if len(documentIDs) > 0 {
		err = s.pool.QueryRow(ctx, `SELECT count(*) FROM chunks WHERE document_id = ANY($1)`, documentIDs).Scan(&count)
	} else {
		err = s.pool.QueryRow(ctx, `SELECT count(*) FROM chunks`).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
