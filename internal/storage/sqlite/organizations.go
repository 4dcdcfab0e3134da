package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sandevgo/docqa/internal/core"
)

type OrganizationsRepo struct {
	db *sql.DB
}

func NewOrganizationsRepo(db *sql.DB) *OrganizationsRepo {
	return &OrganizationsRepo{db: db}
}

// GetByAPIKey resolves the tenant for a request. Returns nil when the key is
// unknown (not an error).
func (r *OrganizationsRepo) GetByAPIKey(ctx context.Context, apiKey string) (*core.Organization, error) {
	query := `SELECT id, name, api_key, created_at FROM organizations WHERE api_key = ?`

	var org core.Organization
	err := r.db.QueryRowContext(ctx, query, apiKey).Scan(&org.ID, &org.Name, &org.APIKey, &org.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query organization: %w", err)
	}
	return &org, nil
}

func (r *OrganizationsRepo) Create(ctx context.Context, org core.Organization) error {
	query := `INSERT INTO organizations (id, name, api_key) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, org.ID, org.Name, org.APIKey); err != nil {
		return fmt.Errorf("failed to insert organization: %w", err)
	}
	return nil
}
