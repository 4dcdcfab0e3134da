package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sandevgo/docqa/internal/core"
)

type DocumentsRepo struct {
	db *sql.DB
}

func NewDocumentsRepo(db *sql.DB) *DocumentsRepo {
	return &DocumentsRepo{db: db}
}

func (r *DocumentsRepo) Create(ctx context.Context, doc core.Document) error {
	metaJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `INSERT INTO documents (id, organization_id, title, file_path, file_hash, status, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		doc.ID, doc.OrganizationID, doc.Title, doc.FilePath, doc.FileHash, string(core.StatusPending), string(metaJSON))
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

func (r *DocumentsRepo) Get(ctx context.Context, id string) (*core.Document, error) {
	query := `SELECT id, organization_id, title, file_path, file_hash, status, error_message,
		page_count, chunk_count, metadata, attempts, created_at, processed_at
		FROM documents WHERE id = ?`

	doc, err := scanDocument(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}
	return doc, nil
}

func (r *DocumentsRepo) FindByHash(ctx context.Context, organizationID, fileHash string) (*core.Document, error) {
	query := `SELECT id, organization_id, title, file_path, file_hash, status, error_message,
		page_count, chunk_count, metadata, attempts, created_at, processed_at
		FROM documents WHERE organization_id = ? AND file_hash = ?`

	doc, err := scanDocument(r.db.QueryRowContext(ctx, query, organizationID, fileHash))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document by hash: %w", err)
	}
	return doc, nil
}

func (r *DocumentsRepo) ListByOrganization(ctx context.Context, organizationID string) ([]core.Document, error) {
	query := `SELECT id, organization_id, title, file_path, file_hash, status, error_message,
		page_count, chunk_count, metadata, attempts, created_at, processed_at
		FROM documents WHERE organization_id = ? ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []core.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func (r *DocumentsRepo) GetPending(ctx context.Context, limit int) ([]core.Document, error) {
	query := `SELECT id, organization_id, title, file_path, file_hash, status, error_message,
		page_count, chunk_count, metadata, attempts, created_at, processed_at
		FROM documents
		WHERE status = ? AND (next_retry_at IS NULL OR next_retry_at <= CURRENT_TIMESTAMP)
		ORDER BY created_at ASC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, string(core.StatusPending), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending documents: %w", err)
	}
	defer rows.Close()

	var docs []core.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func (r *DocumentsRepo) SetStatus(ctx context.Context, id string, status core.DocumentStatus, errorMessage string) error {
	query := `UPDATE documents SET status = ?, error_message = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, string(status), errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}
	return nil
}

// ScheduleRetry puts a failed document back in the pending queue with an
// incremented attempt counter; GetPending skips it until retryAt.
func (r *DocumentsRepo) ScheduleRetry(ctx context.Context, id string, errorMessage string, retryAt time.Time) error {
	query := `UPDATE documents SET status = ?, error_message = ?, attempts = attempts + 1, next_retry_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, string(core.StatusPending), errorMessage, retryAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to schedule document retry: %w", err)
	}
	return nil
}

// RequeueInterrupted resets documents stranded in processing by a crash so
// the poll loop picks them up again. Returns the number of rows reset.
func (r *DocumentsRepo) RequeueInterrupted(ctx context.Context) (int, error) {
	query := `UPDATE documents SET status = ?, next_retry_at = NULL WHERE status = ?`
	res, err := r.db.ExecContext(ctx, query, string(core.StatusPending), string(core.StatusProcessing))
	if err != nil {
		return 0, fmt.Errorf("failed to requeue interrupted documents: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count requeued documents: %w", err)
	}
	return int(n), nil
}

func (r *DocumentsRepo) MarkCompleted(ctx context.Context, id string, pageCount, chunkCount int, processedAt time.Time) error {
	query := `UPDATE documents SET status = ?, error_message = '', next_retry_at = NULL, page_count = ?, chunk_count = ?, processed_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, string(core.StatusCompleted), pageCount, chunkCount, processedAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark document completed: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*core.Document, error) {
	var doc core.Document
	var status, metaJSON string
	var errMsg sql.NullString
	var processedAt sql.NullTime

	err := row.Scan(&doc.ID, &doc.OrganizationID, &doc.Title, &doc.FilePath, &doc.FileHash,
		&status, &errMsg, &doc.PageCount, &doc.ChunkCount, &metaJSON, &doc.Attempts, &doc.CreatedAt, &processedAt)
	if err != nil {
		return nil, err
	}

	doc.Status = core.DocumentStatus(status)
	doc.ErrorMessage = errMsg.String
	if processedAt.Valid {
		t := processedAt.Time
		doc.ProcessedAt = &t
	}
	if metaJSON != "" && metaJSON != "{}" {
		if err := json.Unmarshal([]byte(metaJSON), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	return &doc, nil
}
