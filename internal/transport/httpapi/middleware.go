package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/sandevgo/docqa/internal/core"
	"github.com/sandevgo/docqa/pkg/log"
)

type contextKey string

const orgContextKey contextKey = "organization"

// requireOrg authenticates the request by API key and stashes the resolved
// organization in the request context.
func (s *Server) requireOrg(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			writeError(w, http.StatusUnauthorized, "missing X-API-Key header")
			return
		}

		org, err := s.orgs.GetByAPIKey(r.Context(), apiKey)
		if err != nil {
			log.FromCtx(r.Context()).Error().Err(err).Msg("api key lookup failed")
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if org == nil {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		ctx := context.WithValue(r.Context(), orgContextKey, org)
		next(w, r.WithContext(ctx))
	}
}

func orgFromContext(ctx context.Context) *core.Organization {
	org, _ := ctx.Value(orgContextKey).(*core.Organization)
	return org
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log.FromCtx(r.Context()).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}
