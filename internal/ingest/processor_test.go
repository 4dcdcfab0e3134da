package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sandevgo/docqa/internal/core"
	"github.com/sandevgo/docqa/internal/providers/rag"
)

type mockDocumentsRepo struct {
	pending      []core.Document
	statuses     map[string]core.DocumentStatus
	errors       map[string]string
	retries      map[string]int
	retryAts     map[string]time.Time
	interrupted  int
	requeueCalls int
	completed    map[string]struct {
		pageCount  int
		chunkCount int
	}
}

func newMockDocumentsRepo(pending ...core.Document) *mockDocumentsRepo {
	return &mockDocumentsRepo{
		pending:  pending,
		statuses: make(map[string]core.DocumentStatus),
		errors:   make(map[string]string),
		retries:  make(map[string]int),
		retryAts: make(map[string]time.Time),
		completed: make(map[string]struct {
			pageCount  int
			chunkCount int
		}),
	}
}

func (m *mockDocumentsRepo) Create(ctx context.Context, doc core.Document) error { return nil }
func (m *mockDocumentsRepo) Get(ctx context.Context, id string) (*core.Document, error) {
	return nil, nil
}
func (m *mockDocumentsRepo) FindByHash(ctx context.Context, orgID, hash string) (*core.Document, error) {
	return nil, nil
}
func (m *mockDocumentsRepo) ListByOrganization(ctx context.Context, orgID string) ([]core.Document, error) {
	return nil, nil
}

func (m *mockDocumentsRepo) GetPending(ctx context.Context, limit int) ([]core.Document, error) {
	docs := m.pending
	m.pending = nil
	return docs, nil
}

func (m *mockDocumentsRepo) SetStatus(ctx context.Context, id string, status core.DocumentStatus, errorMessage string) error {
	m.statuses[id] = status
	m.errors[id] = errorMessage
	return nil
}

func (m *mockDocumentsRepo) ScheduleRetry(ctx context.Context, id string, errorMessage string, retryAt time.Time) error {
	m.retries[id]++
	m.retryAts[id] = retryAt
	m.errors[id] = errorMessage
	m.statuses[id] = core.StatusPending

	// Make the document eligible for the next poll, mirroring the SQL
	// attempts = attempts + 1 update.
	m.pending = append(m.pending, core.Document{ID: id, FilePath: "/tmp/" + id + ".pdf", Attempts: m.retries[id]})
	return nil
}

func (m *mockDocumentsRepo) RequeueInterrupted(ctx context.Context) (int, error) {
	m.requeueCalls++
	n := m.interrupted
	m.interrupted = 0
	return n, nil
}

func (m *mockDocumentsRepo) MarkCompleted(ctx context.Context, id string, pageCount, chunkCount int, processedAt time.Time) error {
	m.statuses[id] = core.StatusCompleted
	m.completed[id] = struct {
		pageCount  int
		chunkCount int
	}{pageCount, chunkCount}
	return nil
}

type mockChunksRepo struct {
	saved   map[string][]core.Chunk
	deleted []string
	saveErr error
}

func newMockChunksRepo() *mockChunksRepo {
	return &mockChunksRepo{saved: make(map[string][]core.Chunk)}
}

func (m *mockChunksRepo) SaveChunks(ctx context.Context, documentID string, chunks []core.Chunk) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved[documentID] = chunks
	return nil
}

func (m *mockChunksRepo) Search(ctx context.Context, orgID string, vector []float32, limit int, minSimilarity float64) ([]core.SearchResult, error) {
	return nil, nil
}

func (m *mockChunksRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	m.deleted = append(m.deleted, documentID)
	return nil
}

type mockEmbedder struct {
	dims     int
	embedErr error
	calls    [][]string
}

func (m *mockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls = append(m.calls, texts)
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = make([]float32, m.dims)
		vectors[i][0] = float32(i + 1)
	}
	return vectors, nil
}

func (m *mockEmbedder) Dims() int { return m.dims }

func newTestProcessor(docs *mockDocumentsRepo, chunks *mockChunksRepo, embedder *mockEmbedder, text string) *Processor {
	p := NewProcessor(docs, chunks, embedder, rag.ChunkerConfig{MaxTokens: 50, OverlapTokens: 10})
	p.extract = func(path string) (string, int, error) {
		return text, 2, nil
	}
	return p
}

func TestProcessorCompletesDocument(t *testing.T) {
	doc := core.Document{ID: "doc-1", OrganizationID: "org-1", Title: "report.pdf", FilePath: "/tmp/report.pdf"}
	docs := newMockDocumentsRepo(doc)
	chunks := newMockChunksRepo()
	embedder := &mockEmbedder{dims: 4}

	text := strings.Repeat("The quarterly revenue grew by ten percent. ", 40)
	p := newTestProcessor(docs, chunks, embedder, text)

	if err := p.processBatch(context.Background()); err != nil {
		t.Fatalf("processBatch() error: %v", err)
	}

	if docs.statuses["doc-1"] != core.StatusCompleted {
		t.Errorf("status = %q, want %q", docs.statuses["doc-1"], core.StatusCompleted)
	}

	saved := chunks.saved["doc-1"]
	if len(saved) < 2 {
		t.Fatalf("expected multiple chunks saved, got %d", len(saved))
	}

	done := docs.completed["doc-1"]
	if done.pageCount != 2 {
		t.Errorf("page count = %d, want 2", done.pageCount)
	}
	if done.chunkCount != len(saved) {
		t.Errorf("chunk count = %d, want %d", done.chunkCount, len(saved))
	}

	for i, c := range saved {
		if c.DocumentID != "doc-1" {
			t.Errorf("chunk %d document id = %q", i, c.DocumentID)
		}
		if c.Index != i {
			t.Errorf("chunk %d index = %d", i, c.Index)
		}
		if len(c.Embedding) != 4 {
			t.Errorf("chunk %d embedding dims = %d, want 4", i, len(c.Embedding))
		}
		if c.EndChar <= c.StartChar {
			t.Errorf("chunk %d span [%d, %d) is empty", i, c.StartChar, c.EndChar)
		}
	}
}

func TestProcessorSchedulesRetryOnExtractionError(t *testing.T) {
	doc := core.Document{ID: "doc-2", FilePath: "/tmp/broken.pdf"}
	docs := newMockDocumentsRepo(doc)
	chunks := newMockChunksRepo()
	embedder := &mockEmbedder{dims: 4}

	p := NewProcessor(docs, chunks, embedder, rag.DefaultChunkerConfig())
	p.extract = func(path string) (string, int, error) {
		return "", 0, errors.New("corrupt xref table")
	}

	if err := p.processBatch(context.Background()); err != nil {
		t.Fatalf("processBatch() error: %v", err)
	}

	// The first failure goes back in the queue, not to failed.
	if docs.statuses["doc-2"] != core.StatusPending {
		t.Errorf("status = %q, want %q", docs.statuses["doc-2"], core.StatusPending)
	}
	if docs.retries["doc-2"] != 1 {
		t.Errorf("retries = %d, want 1", docs.retries["doc-2"])
	}
	if docs.errors["doc-2"] == "" {
		t.Error("expected error message to be recorded")
	}
	if len(chunks.saved) != 0 {
		t.Errorf("expected no chunks saved, got %d", len(chunks.saved))
	}
}

func TestProcessorRecoversFromTransientFailure(t *testing.T) {
	doc := core.Document{ID: "doc-3", FilePath: "/tmp/doc-3.pdf"}
	docs := newMockDocumentsRepo(doc)
	chunks := newMockChunksRepo()
	embedder := &mockEmbedder{dims: 4}

	// First extraction attempt fails, subsequent ones succeed.
	attempts := 0
	p := NewProcessor(docs, chunks, embedder, rag.ChunkerConfig{MaxTokens: 50, OverlapTokens: 10})
	p.extract = func(path string) (string, int, error) {
		attempts++
		if attempts == 1 {
			return "", 0, errors.New("io timeout")
		}
		return "Recovered content after the fault cleared.", 1, nil
	}

	if err := p.processBatch(context.Background()); err != nil {
		t.Fatalf("processBatch() error: %v", err)
	}
	if docs.statuses["doc-3"] != core.StatusPending {
		t.Fatalf("status after first failure = %q, want %q", docs.statuses["doc-3"], core.StatusPending)
	}

	if err := p.processBatch(context.Background()); err != nil {
		t.Fatalf("processBatch() error: %v", err)
	}

	if docs.statuses["doc-3"] != core.StatusCompleted {
		t.Errorf("status = %q, want %q", docs.statuses["doc-3"], core.StatusCompleted)
	}
	if len(chunks.saved["doc-3"]) == 0 {
		t.Error("expected chunks saved after recovery")
	}
}

func TestProcessorFailsAfterMaxAttempts(t *testing.T) {
	doc := core.Document{ID: "doc-8", FilePath: "/tmp/doc-8.pdf"}
	docs := newMockDocumentsRepo(doc)
	chunks := newMockChunksRepo()
	embedder := &mockEmbedder{dims: 4, embedErr: errors.New("provider unavailable")}

	p := newTestProcessor(docs, chunks, embedder, "Some perfectly fine text to embed.")

	for i := 0; i < ProcessorMaxAttempts; i++ {
		if err := p.processBatch(context.Background()); err != nil {
			t.Fatalf("processBatch() %d error: %v", i, err)
		}
	}

	if docs.statuses["doc-8"] != core.StatusFailed {
		t.Errorf("status = %q, want %q", docs.statuses["doc-8"], core.StatusFailed)
	}
	if docs.retries["doc-8"] != ProcessorMaxAttempts-1 {
		t.Errorf("retries = %d, want %d", docs.retries["doc-8"], ProcessorMaxAttempts-1)
	}
	if docs.errors["doc-8"] == "" {
		t.Error("expected error message to be recorded")
	}
}

func TestProcessorRetryBackoffGrows(t *testing.T) {
	doc := core.Document{ID: "doc-9", FilePath: "/tmp/doc-9.pdf"}
	docs := newMockDocumentsRepo(doc)
	embedder := &mockEmbedder{dims: 4, embedErr: errors.New("provider unavailable")}

	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	p := newTestProcessor(docs, newMockChunksRepo(), embedder, "Text that embeds nowhere.")
	p.maxAttempts = 4
	p.now = func() time.Time { return base }

	var delays []time.Duration
	for i := 0; i < 3; i++ {
		if err := p.processBatch(context.Background()); err != nil {
			t.Fatalf("processBatch() error: %v", err)
		}
		delays = append(delays, docs.retryAts["doc-9"].Sub(base))
	}

	want := []time.Duration{ProcessorRetryDelay, 2 * ProcessorRetryDelay, 4 * ProcessorRetryDelay}
	for i, d := range delays {
		if d != want[i] {
			t.Errorf("retry %d delay = %v, want %v", i+1, d, want[i])
		}
	}
}

func TestProcessorRequeuesInterruptedOnStart(t *testing.T) {
	docs := newMockDocumentsRepo()
	docs.interrupted = 2

	p := NewProcessor(docs, newMockChunksRepo(), &mockEmbedder{dims: 4}, rag.DefaultChunkerConfig())

	if err := p.recoverInterrupted(context.Background()); err != nil {
		t.Fatalf("recoverInterrupted() error: %v", err)
	}
	if docs.requeueCalls != 1 {
		t.Errorf("requeue calls = %d, want 1", docs.requeueCalls)
	}
}

func TestProcessorMarksFailedOnEmptyText(t *testing.T) {
	doc := core.Document{ID: "doc-4", FilePath: "/tmp/scan.pdf"}
	docs := newMockDocumentsRepo(doc)
	chunks := newMockChunksRepo()
	embedder := &mockEmbedder{dims: 4}

	p := newTestProcessor(docs, chunks, embedder, "   ")

	if err := p.processBatch(context.Background()); err != nil {
		t.Fatalf("processBatch() error: %v", err)
	}

	if docs.statuses["doc-4"] != core.StatusFailed {
		t.Errorf("status = %q, want %q", docs.statuses["doc-4"], core.StatusFailed)
	}
	if len(embedder.calls) != 0 {
		t.Errorf("expected no embedding calls, got %d", len(embedder.calls))
	}
}

func TestProcessorClearsStaleChunksBeforeSaving(t *testing.T) {
	doc := core.Document{ID: "doc-5", FilePath: "/tmp/doc.pdf"}
	docs := newMockDocumentsRepo(doc)
	chunks := newMockChunksRepo()
	embedder := &mockEmbedder{dims: 4}

	p := newTestProcessor(docs, chunks, embedder, "Reprocessed content after an earlier failure.")

	if err := p.processBatch(context.Background()); err != nil {
		t.Fatalf("processBatch() error: %v", err)
	}

	if len(chunks.deleted) != 1 || chunks.deleted[0] != "doc-5" {
		t.Errorf("expected old chunks for doc-5 to be deleted, got %v", chunks.deleted)
	}
}

func TestProcessorNotifyDoesNotBlock(t *testing.T) {
	p := NewProcessor(newMockDocumentsRepo(), newMockChunksRepo(), &mockEmbedder{dims: 4}, rag.DefaultChunkerConfig())

	// Repeated notifications without a running loop must not block.
	for i := 0; i < 10; i++ {
		p.Notify()
	}
}
