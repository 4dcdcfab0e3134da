package core

import "time"

const (
	ServiceName    = "docqa"
	ServiceVersion = "1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversation turn. Immutable once created.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type DocumentStatus string

const (
	StatusPending    DocumentStatus = "pending"
	StatusProcessing DocumentStatus = "processing"
	StatusCompleted  DocumentStatus = "completed"
	StatusFailed     DocumentStatus = "failed"
)

type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	APIKey    string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type Document struct {
	ID             string         `json:"id"`
	OrganizationID string         `json:"organization_id"`
	Title          string         `json:"title"`
	FilePath       string         `json:"-"`
	FileHash       string         `json:"file_hash,omitempty"`
	Status         DocumentStatus `json:"status"`
	ErrorMessage   string         `json:"error_message,omitempty"`
	PageCount      int            `json:"page_count"`
	ChunkCount     int            `json:"chunk_count"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	Attempts       int            `json:"-"`
	CreatedAt      time.Time      `json:"created_at"`
	ProcessedAt    *time.Time     `json:"processed_at,omitempty"`
}

// Chunk is one embeddable slice of a document's text.
type Chunk struct {
	ID         int64     `json:"id"`
	DocumentID string    `json:"document_id"`
	Index      int       `json:"chunk_index"`
	Content    string    `json:"content"`
	StartChar  int       `json:"start_char"`
	EndChar    int       `json:"end_char"`
	Embedding  []float32 `json:"-"`
}

// SearchResult is a chunk ranked by cosine similarity against a query.
type SearchResult struct {
	ChunkID       int64   `json:"chunk_id"`
	DocumentID    string  `json:"document_id"`
	DocumentTitle string  `json:"document_title"`
	ChunkIndex    int     `json:"chunk_index"`
	Content       string  `json:"content"`
	Similarity    float64 `json:"similarity"`
}
