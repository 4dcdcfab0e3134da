package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/docqa/internal/core"
	"github.com/sandevgo/docqa/internal/providers/rag"
	"github.com/sandevgo/docqa/pkg/log"
)

const (
	ProcessorBatchSize    = 5
	ProcessorPollInterval = 3 * time.Second

	// A document gets this many processing attempts before it is marked
	// failed for good. Retries back off from ProcessorRetryDelay, doubling
	// per attempt.
	ProcessorMaxAttempts = 3
	ProcessorRetryDelay  = time.Minute
)

// Processor drains pending documents from storage and turns each one into
// embedded chunks. It runs as a background service; uploads can nudge it via
// Notify to skip the poll delay.
type Processor struct {
	documents core.DocumentsRepository
	chunks    core.ChunksRepository
	embedder  core.Embedder
	chunkCfg  rag.ChunkerConfig

	interval    time.Duration
	batchSize   int
	maxAttempts int
	retryDelay  time.Duration
	notify      chan struct{}

	extract func(path string) (string, int, error)
	now     func() time.Time
}

func NewProcessor(documents core.DocumentsRepository, chunks core.ChunksRepository, embedder core.Embedder, chunkCfg rag.ChunkerConfig) *Processor {
	return &Processor{
		documents: documents,
		chunks:    chunks,
		embedder:  embedder,
		chunkCfg:  chunkCfg,
		interval:    ProcessorPollInterval,
		batchSize:   ProcessorBatchSize,
		maxAttempts: ProcessorMaxAttempts,
		retryDelay:  ProcessorRetryDelay,
		notify:      make(chan struct{}, 1),
		extract:     ExtractPDF,
		now:         time.Now,
	}
}

// Notify wakes the processor without waiting for the next poll tick.
// Non-blocking; a pending wakeup is enough.
func (p *Processor) Notify() {
	select {
	case p.notify <- struct{}{}:
	default:
	}
}

func (p *Processor) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx).With().Str("component", "ingest_processor").Logger()
	logger.Info().Msg("starting document processor")

	if err := p.recoverInterrupted(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to requeue interrupted documents")
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down document processor")
			return nil
		case <-ticker.C:
		case <-p.notify:
		}

		if err := p.processBatch(ctx); err != nil {
			logger.Error().Err(err).Msg("document batch failed")
		}
	}
}

func (p *Processor) Shutdown(ctx context.Context) error {
	return nil
}

// recoverInterrupted returns documents stranded mid-processing by a crash to
// the pending queue. Runs once before the poll loop starts; safe because
// there is a single worker.
func (p *Processor) recoverInterrupted(ctx context.Context) error {
	n, err := p.documents.RequeueInterrupted(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		log.FromCtx(ctx).Info().Int("count", n).Msg("requeued interrupted documents")
	}
	return nil
}

func (p *Processor) processBatch(ctx context.Context) error {
	logger := log.FromCtx(ctx)

	docs, err := p.documents.GetPending(ctx, p.batchSize)
	if err != nil {
		return err
	}

	for _, doc := range docs {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := p.processDocument(ctx, doc); err != nil {
			p.handleFailure(ctx, doc, err)
			continue
		}

		logger.Info().
			Str("document_id", doc.ID).
			Str("title", doc.Title).
			Msg("document processed")
	}

	return nil
}

// handleFailure schedules another attempt with backoff, or marks the document
// failed once attempts are exhausted. Documents with no extractable text fail
// immediately since retrying cannot help.
func (p *Processor) handleFailure(ctx context.Context, doc core.Document, cause error) {
	logger := log.FromCtx(ctx)
	attempt := doc.Attempts + 1

	if attempt >= p.maxAttempts || errors.Is(cause, ErrNoExtractableText) {
		logger.Warn().
			Err(cause).
			Str("document_id", doc.ID).
			Str("title", doc.Title).
			Int("attempts", attempt).
			Msg("document failed permanently")

		if err := p.documents.SetStatus(ctx, doc.ID, core.StatusFailed, cause.Error()); err != nil {
			logger.Error().Err(err).Str("document_id", doc.ID).Msg("failed to mark document failed")
		}
		return
	}

	retryAt := p.now().Add(p.retryDelay * (1 << doc.Attempts))
	logger.Warn().
		Err(cause).
		Str("document_id", doc.ID).
		Str("title", doc.Title).
		Int("attempt", attempt).
		Time("retry_at", retryAt).
		Msg("document processing failed, retry scheduled")

	if err := p.documents.ScheduleRetry(ctx, doc.ID, cause.Error(), retryAt); err != nil {
		logger.Error().Err(err).Str("document_id", doc.ID).Msg("failed to schedule document retry")
	}
}

func (p *Processor) processDocument(ctx context.Context, doc core.Document) error {
	if err := p.documents.SetStatus(ctx, doc.ID, core.StatusProcessing, ""); err != nil {
		return fmt.Errorf("failed to mark processing: %w", err)
	}

	text, pageCount, err := p.extract(doc.FilePath)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	pieces := rag.ChunkText(text, p.chunkCfg)
	if len(pieces) == 0 {
		return ErrNoExtractableText
	}

	texts := make([]string, len(pieces))
	for i, piece := range pieces {
		texts[i] = piece.Text
	}

	vectors, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}

	chunks := assembleChunks(doc.ID, text, pieces, vectors)

	// Reprocessing after a failure must not leave stale chunks behind.
	if err := p.chunks.DeleteByDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("failed to clear old chunks: %w", err)
	}
	if err := p.chunks.SaveChunks(ctx, doc.ID, chunks); err != nil {
		return fmt.Errorf("failed to save chunks: %w", err)
	}

	if err := p.documents.MarkCompleted(ctx, doc.ID, pageCount, len(chunks), p.now()); err != nil {
		return fmt.Errorf("failed to mark completed: %w", err)
	}

	return nil
}

// assembleChunks pairs chunk texts with their vectors and locates each chunk's
// character span in the source text. Overlapping chunks search from the start
// of the previous match so shared prefixes resolve correctly.
func assembleChunks(documentID, source string, pieces []rag.Chunk, vectors [][]float32) []core.Chunk {
	chunks := make([]core.Chunk, 0, len(pieces))
	searchFrom := 0

	for i, piece := range pieces {
		start := strings.Index(source[searchFrom:], piece.Text)
		if start >= 0 {
			start += searchFrom
		} else {
			// Chunk text was normalized away from the source; fall back to
			// the running position.
			start = searchFrom
		}
		end := start + len(piece.Text)
		if end > len(source) {
			end = len(source)
		}
		searchFrom = start

		c := core.Chunk{
			DocumentID: documentID,
			Index:      piece.Index,
			Content:    piece.Text,
			StartChar:  start,
			EndChar:    end,
		}
		if i < len(vectors) {
			c.Embedding = vectors[i]
		}
		chunks = append(chunks, c)
	}

	return chunks
}
