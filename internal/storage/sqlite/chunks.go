package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sandevgo/docqa/internal/core"
	"github.com/sandevgo/docqa/pkg/log"
)

type ChunksRepo struct {
	db *sql.DB
}

func NewChunksRepo(db *sql.DB) *ChunksRepo {
	return &ChunksRepo{db: db}
}

// SaveChunks stores the chunk texts and their embeddings in one transaction.
// The vector rows are tied to the chunk ids via rowid.
func (r *ChunksRepo) SaveChunks(ctx context.Context, documentID string, chunks []core.Chunk) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, chunk := range chunks {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO chunks (document_id, chunk_index, content, start_char, end_char) VALUES (?, ?, ?, ?, ?)`,
			documentID, chunk.Index, chunk.Content, chunk.StartChar, chunk.EndChar,
		)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", chunk.Index, err)
		}

		if len(chunk.Embedding) == 0 {
			continue
		}

		id, err := res.LastInsertId()
		if err != nil {
			return err
		}

		vecBlob, err := serializeVector(chunk.Embedding)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO chunks_vec (rowid, embedding) VALUES (?, ?)`, id, vecBlob)
		if err != nil {
			return fmt.Errorf("failed to insert chunk vector: %w", err)
		}
	}

	return tx.Commit()
}

// Search runs a KNN query over chunks_vec (cosine distance, lower is better)
// scoped to completed documents of one organization. Over-fetches the KNN
// candidates because the organization filter applies after vector matching.
func (r *ChunksRepo) Search(ctx context.Context, organizationID string, vector []float32, limit int, minSimilarity float64) ([]core.SearchResult, error) {
	vecBlob, err := serializeVector(vector)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT
			c.id, c.document_id, d.title, c.chunk_index, c.content, v.distance
		FROM chunks_vec v
		JOIN chunks c ON c.id = v.rowid
		JOIN documents d ON d.id = c.document_id
		WHERE v.embedding MATCH ? AND k = ?
			AND d.organization_id = ?
			AND d.status = 'completed'
		ORDER BY v.distance
	`
	rows, err := r.db.QueryContext(ctx, query, vecBlob, limit*4, organizationID)
	if err != nil {
		return nil, fmt.Errorf("chunk search failed: %w", err)
	}
	defer rows.Close()

	var results []core.SearchResult
	for rows.Next() {
		var res core.SearchResult
		var distance float64
		if err := rows.Scan(&res.ChunkID, &res.DocumentID, &res.DocumentTitle, &res.ChunkIndex, &res.Content, &distance); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		res.Similarity = 1.0 - distance
		if res.Similarity < minSimilarity {
			continue
		}
		results = append(results, res)
		if len(results) >= limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Debug().Int("count", len(results)).Msg("vector search completed")
	return results, nil
}

func (r *ChunksRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM chunks_vec WHERE rowid IN (SELECT id FROM chunks WHERE document_id = ?)`, documentID)
	if err != nil {
		return fmt.Errorf("failed to delete chunk vectors: %w", err)
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, documentID)
	if err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}

	return tx.Commit()
}
