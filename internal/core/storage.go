package core

import (
	"context"
	"time"
)

type OrganizationsRepository interface {
	GetByAPIKey(ctx context.Context, apiKey string) (*Organization, error)
	Create(ctx context.Context, org Organization) error
}

type DocumentsRepository interface {
	Create(ctx context.Context, doc Document) error
	Get(ctx context.Context, id string) (*Document, error)
	FindByHash(ctx context.Context, organizationID, fileHash string) (*Document, error)
	ListByOrganization(ctx context.Context, organizationID string) ([]Document, error)
	GetPending(ctx context.Context, limit int) ([]Document, error)
	SetStatus(ctx context.Context, id string, status DocumentStatus, errorMessage string) error
	ScheduleRetry(ctx context.Context, id string, errorMessage string, retryAt time.Time) error
	RequeueInterrupted(ctx context.Context) (int, error)
	MarkCompleted(ctx context.Context, id string, pageCount, chunkCount int, processedAt time.Time) error
}

type ChunksRepository interface {
	SaveChunks(ctx context.Context, documentID string, chunks []Chunk) error
	Search(ctx context.Context, organizationID string, vector []float32, limit int, minSimilarity float64) ([]SearchResult, error)
	DeleteByDocument(ctx context.Context, documentID string) error
}

// SearchLogRepository records query analytics. Writes are best-effort;
// callers must not fail a user request on logging errors.
type SearchLogRepository interface {
	Record(ctx context.Context, organizationID, sessionID, query string, resultsCount int) error
}
