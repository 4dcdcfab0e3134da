package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sandevgo/docqa/internal/config"
	"github.com/sandevgo/docqa/internal/core"
	"github.com/sandevgo/docqa/internal/session"
	"github.com/sandevgo/docqa/pkg/log"
)

// Answer is the result of one question/answer turn.
type Answer struct {
	SessionID      string
	Answer         string
	Sources        []core.SearchResult
	HistoryEnabled bool
}

// Service orchestrates a RAG turn: retrieve relevant chunks, assemble the
// prompt with session history, ask the model, and record the exchange.
type Service struct {
	cfg      *config.ChatConfig
	embedder core.Embedder
	chunks   core.ChunksRepository
	searches core.SearchLogRepository
	ai       core.AIProvider
	sessions *session.Store
}

func NewService(
	cfg *config.ChatConfig,
	embedder core.Embedder,
	chunks core.ChunksRepository,
	searches core.SearchLogRepository,
	ai core.AIProvider,
	sessions *session.Store,
) *Service {
	return &Service{
		cfg:      cfg,
		embedder: embedder,
		chunks:   chunks,
		searches: searches,
		ai:       ai,
		sessions: sessions,
	}
}

// Ask answers a question against the organization's documents. An empty
// sessionID starts a new conversation.
func (s *Service) Ask(ctx context.Context, organizationID, sessionID, question string) (*Answer, error) {
	logger := log.FromCtx(ctx)

	cleaned, err := SanitizeQuestion(question, s.cfg.MaxQuestionChars)
	if err != nil {
		return nil, err
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	results, err := s.retrieve(ctx, organizationID, sessionID, cleaned)
	if err != nil {
		return nil, err
	}

	messages := []core.Message{buildSystemPrompt(results, s.cfg.MaxContextChars)}

	if s.cfg.HistoryEnabled {
		messages = append(messages, s.sessions.History(sessionID)...)
	}

	userMsg := core.Message{Role: core.RoleUser, Content: cleaned, Timestamp: time.Now()}
	messages = append(messages, userMsg)

	response, err := s.ai.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("llm chat failed: %w", err)
	}

	answer := SanitizeAnswer(response.Content, s.cfg.MaxAnswerChars)

	if s.cfg.HistoryEnabled {
		if err := s.sessions.Append(sessionID, core.RoleUser, cleaned); err != nil {
			logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to record user message")
		}
		if err := s.sessions.Append(sessionID, core.RoleAssistant, answer); err != nil {
			logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to record assistant message")
		}
	}

	logger.Info().
		Str("session_id", sessionID).
		Int("sources", len(results)).
		Msg("answered question")

	return &Answer{
		SessionID:      sessionID,
		Answer:         answer,
		Sources:        results,
		HistoryEnabled: s.cfg.HistoryEnabled,
	}, nil
}

// Search runs semantic retrieval without invoking the model. topK and
// minSimilarity fall back to configured defaults when zero.
func (s *Service) Search(ctx context.Context, organizationID, query string, topK int, minSimilarity float64) ([]core.SearchResult, error) {
	cleaned, err := SanitizeQuestion(query, s.cfg.MaxQuestionChars)
	if err != nil {
		return nil, err
	}

	if topK <= 0 {
		topK = s.cfg.TopK
	}
	if minSimilarity <= 0 {
		minSimilarity = s.cfg.MinSimilarity
	}

	vector, err := s.embedQuery(ctx, cleaned)
	if err != nil {
		return nil, err
	}

	results, err := s.chunks.Search(ctx, organizationID, vector, topK, minSimilarity)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	s.recordSearch(ctx, organizationID, "", cleaned, len(results))
	return results, nil
}

func (s *Service) retrieve(ctx context.Context, organizationID, sessionID, question string) ([]core.SearchResult, error) {
	vector, err := s.embedQuery(ctx, question)
	if err != nil {
		return nil, err
	}

	results, err := s.chunks.Search(ctx, organizationID, vector, s.cfg.TopK, s.cfg.MinSimilarity)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	s.recordSearch(ctx, organizationID, sessionID, question, len(results))
	return results, nil
}

func (s *Service) embedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedder returned no vector")
	}
	return vectors[0], nil
}

// recordSearch is analytics only and must never fail the request.
func (s *Service) recordSearch(ctx context.Context, organizationID, sessionID, query string, resultsCount int) {
	if s.searches == nil {
		return
	}
	if err := s.searches.Record(ctx, organizationID, sessionID, query, resultsCount); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to record search")
	}
}
