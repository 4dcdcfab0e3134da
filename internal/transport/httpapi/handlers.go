package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sandevgo/docqa/internal/core"
	"github.com/sandevgo/docqa/internal/ingest"
	"github.com/sandevgo/docqa/internal/service/chat"
	"github.com/sandevgo/docqa/pkg/log"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"status": "error", "error": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": core.ServiceName,
		"version": core.ServiceVersion,
	})
}

type documentResponse struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	PageCount    int        `json:"page_count"`
	ChunkCount   int        `json:"chunk_count"`
	CreatedAt    time.Time  `json:"created_at"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
}

func toDocumentResponse(doc core.Document) documentResponse {
	return documentResponse{
		ID:           doc.ID,
		Title:        doc.Title,
		Status:       string(doc.Status),
		ErrorMessage: doc.ErrorMessage,
		PageCount:    doc.PageCount,
		ChunkCount:   doc.ChunkCount,
		CreatedAt:    doc.CreatedAt,
		ProcessedAt:  doc.ProcessedAt,
	}
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	org := orgFromContext(r.Context())
	logger := log.FromCtx(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		writeError(w, http.StatusBadRequest, "only PDF files are supported")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		title = filepath.Base(header.Filename)
	}

	docID := uuid.NewString()
	destPath := filepath.Join(s.docsDir, docID+".pdf")

	fileHash, err := s.saveUpload(file, destPath)
	if err != nil {
		logger.Error().Err(err).Msg("failed to store upload")
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	existing, err := s.documents.FindByHash(r.Context(), org.ID, fileHash)
	if err != nil {
		logger.Error().Err(err).Msg("duplicate check failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing != nil {
		_ = os.Remove(destPath)
		writeJSON(w, http.StatusConflict, map[string]any{
			"status":   "error",
			"error":    "document already uploaded",
			"document": toDocumentResponse(*existing),
		})
		return
	}

	doc := core.Document{
		ID:             docID,
		OrganizationID: org.ID,
		Title:          title,
		FilePath:       destPath,
		FileHash:       fileHash,
		Status:         core.StatusPending,
		CreatedAt:      time.Now(),
	}
	if err := s.documents.Create(r.Context(), doc); err != nil {
		_ = os.Remove(destPath)
		logger.Error().Err(err).Msg("failed to create document")
		writeError(w, http.StatusInternalServerError, "failed to create document")
		return
	}

	s.processor.Notify()

	logger.Info().
		Str("document_id", docID).
		Str("title", title).
		Msg("document uploaded")

	writeJSON(w, http.StatusCreated, map[string]any{
		"status":   "success",
		"document": toDocumentResponse(doc),
	})
}

// saveUpload writes the upload to destPath, hashing it on the way through.
func (s *Server) saveUpload(src io.Reader, destPath string) (string, error) {
	dest, err := os.Create(destPath)
	if err != nil {
		return "", err
	}
	defer dest.Close()

	hash, err := ingest.HashReader(io.TeeReader(src, dest))
	if err != nil {
		_ = os.Remove(destPath)
		return "", err
	}
	return hash, nil
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	org := orgFromContext(r.Context())

	docs, err := s.documents.ListByOrganization(r.Context(), org.ID)
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Msg("failed to list documents")
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}

	out := make([]documentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toDocumentResponse(doc))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "success",
		"documents": out,
	})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	org := orgFromContext(r.Context())

	doc, err := s.documents.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Msg("failed to get document")
		writeError(w, http.StatusInternalServerError, "failed to get document")
		return
	}
	if doc == nil || doc.OrganizationID != org.ID {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"document": toDocumentResponse(*doc),
	})
}

type chatRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
}

type sourceResponse struct {
	DocumentID    string  `json:"document_id"`
	DocumentTitle string  `json:"document_title"`
	ChunkIndex    int     `json:"chunk_index"`
	Content       string  `json:"content"`
	Similarity    float64 `json:"similarity"`
}

func toSourceResponses(results []core.SearchResult) []sourceResponse {
	out := make([]sourceResponse, 0, len(results))
	for _, r := range results {
		out = append(out, sourceResponse{
			DocumentID:    r.DocumentID,
			DocumentTitle: r.DocumentTitle,
			ChunkIndex:    r.ChunkIndex,
			Content:       r.Content,
			Similarity:    r.Similarity,
		})
	}
	return out
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	org := orgFromContext(r.Context())

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	answer, err := s.chat.Ask(r.Context(), org.ID, req.SessionID, req.Question)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrEmptyQuestion):
			writeError(w, http.StatusBadRequest, "question is required")
		case errors.Is(err, chat.ErrQuestionTooLong):
			writeError(w, http.StatusBadRequest, "question is too long")
		default:
			log.FromCtx(r.Context()).Error().Err(err).Msg("chat failed")
			writeError(w, http.StatusInternalServerError, "failed to answer question")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "success",
		"session_id":      answer.SessionID,
		"answer":          answer.Answer,
		"sources":         toSourceResponses(answer.Sources),
		"history_enabled": answer.HistoryEnabled,
	})
}

type searchRequest struct {
	Query         string  `json:"query"`
	TopK          int     `json:"top_k"`
	MinSimilarity float64 `json:"min_similarity"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	org := orgFromContext(r.Context())

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	results, err := s.chat.Search(r.Context(), org.ID, req.Query, req.TopK, req.MinSimilarity)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrEmptyQuestion):
			writeError(w, http.StatusBadRequest, "query is required")
		case errors.Is(err, chat.ErrQuestionTooLong):
			writeError(w, http.StatusBadRequest, "query is too long")
		default:
			log.FromCtx(r.Context()).Error().Err(err).Msg("search failed")
			writeError(w, http.StatusInternalServerError, "search failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"results": toSourceResponses(results),
		"count":   len(results),
	})
}

func (s *Server) handleChatStats(w http.ResponseWriter, r *http.Request) {
	stats := s.sessions.Stats()

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"stats": map[string]any{
			"active_sessions":          stats.ActiveSessions,
			"total_messages":           stats.TotalMessages,
			"max_sessions":             stats.MaxSessions,
			"max_messages_per_session": stats.MaxMessagesPerSession,
			"session_ttl_seconds":      stats.SessionTTLSeconds,
			"history_enabled":          s.chatCfg.HistoryEnabled,
		},
	})
}
