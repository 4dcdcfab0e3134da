package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// SearchLogRepo records query analytics. Callers treat failures as
// best-effort and must not surface them to the user.
type SearchLogRepo struct {
	db *sql.DB
}

func NewSearchLogRepo(db *sql.DB) *SearchLogRepo {
	return &SearchLogRepo{db: db}
}

func (r *SearchLogRepo) Record(ctx context.Context, organizationID, sessionID, query string, resultsCount int) error {
	q := `INSERT INTO searches (organization_id, session_id, query_text, results_count) VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, organizationID, sessionID, query, resultsCount); err != nil {
		return fmt.Errorf("failed to record search: %w", err)
	}
	return nil
}
