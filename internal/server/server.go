// Package server exposes résumé parsing and email drafting over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-mailer/internal/db"
	"github.com/jonathan/resume-mailer/internal/fetch"
	"github.com/jonathan/resume-mailer/internal/generation"
	"github.com/jonathan/resume-mailer/internal/ingestion"
	"github.com/jonathan/resume-mailer/internal/logger"
	"github.com/jonathan/resume-mailer/internal/server/ratelimit"
	"github.com/jonathan/resume-mailer/internal/types"
)

// DefaultMaxUploadBytes bounds a multipart upload request.
const DefaultMaxUploadBytes = 10 << 20

// Store persists parsed documents and drafts. Both db stores implement it.
type Store interface {
	SaveParsedDocument(ctx context.Context, doc *db.ParsedDocument) (uuid.UUID, error)
	GetParsedDocuments(ctx context.Context, ids []uuid.UUID) ([]db.ParsedDocument, error)
	SaveDraft(ctx context.Context, rec *db.DraftRecord) (uuid.UUID, error)
	GetDraft(ctx context.Context, id uuid.UUID) (*db.DraftRecord, error)
	ListDrafts(ctx context.Context, limit int) ([]db.DraftSummary, error)
	DeleteDraft(ctx context.Context, id uuid.UUID) error
}

// Config holds server configuration
type Config struct {
	Addr string
	// Store is optional. Without it drafts are returned but not saved, and the
	// document and draft lookup routes answer 503.
	Store Store
	// Extractor defaults to ingestion.NewService.
	Extractor *ingestion.Service
	// Backend is the primary generation backend. Nil drafts from the template only.
	Backend        generation.Backend
	Job            fetch.JobOptions
	RateLimit      *ratelimit.Config
	MaxUploadBytes int64
	DefaultTone    types.Tone
	DefaultLength  types.Length

	// AllowPrivateJobURLs lets job_url reach loopback, private and link-local
	// hosts. Off by default, and browser rendering only runs when it is on.
	AllowPrivateJobURLs bool
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	store       Store
	extractor   *ingestion.Service
	backend     generation.Backend
	job         fetch.JobOptions
	rateLimiter *ratelimit.Limiter
	maxUpload   int64
	tone        types.Tone
	length      types.Length

	allowPrivateURLs bool
}

// New creates a server. It does not listen until Run is called.
func New(ctx context.Context, cfg Config) (*Server, error) {
	extractor := cfg.Extractor
	if extractor == nil {
		var err error
		if extractor, err = ingestion.NewService(ctx); err != nil {
			return nil, fmt.Errorf("failed to create extractor: %w", err)
		}
	}

	s := &Server{
		store:       cfg.Store,
		extractor:   extractor,
		backend:     cfg.Backend,
		job:         cfg.Job,
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
		maxUpload:   cfg.MaxUploadBytes,
		tone:        cfg.DefaultTone,
		length:      cfg.DefaultLength,

		allowPrivateURLs: cfg.AllowPrivateJobURLs,
	}
	if !s.allowPrivateURLs {
		httpOpts := fetch.DefaultOptions()
		if s.job.HTTP != nil {
			copied := *s.job.HTTP
			httpOpts = &copied
		}
		httpOpts.PublicOnly = true
		s.job.HTTP = httpOpts
	}
	if s.maxUpload <= 0 {
		s.maxUpload = DefaultMaxUploadBytes
	}
	if s.tone == "" {
		s.tone = types.ToneProfessional
	}
	if s.length == "" {
		s.length = types.LengthNormal
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /v1/documents", s.handleUploadDocuments)
	mux.HandleFunc("GET /v1/documents/{id}", s.handleGetDocument)
	mux.HandleFunc("POST /v1/emails", s.handleGenerateEmail)
	mux.HandleFunc("POST /v1/emails/stream", s.handleGenerateEmailStream)
	mux.HandleFunc("GET /v1/drafts", s.handleListDrafts)
	mux.HandleFunc("GET /v1/drafts/{id}", s.handleGetDraft)
	mux.HandleFunc("DELETE /v1/drafts/{id}", s.handleDeleteDraft)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.withLogging(s.withCORS(s.withRateLimit(mux))),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      180 * time.Second, // covers the model call
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	defer s.rateLimiter.Stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", s.httpServer.Addr).Msg("server starting")
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// withLogging attaches a request-scoped logger and writes an access log line.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)
		ctx := logger.WithContext(r.Context(), map[string]any{"request_id": requestID})
		next.ServeHTTP(rec, r.WithContext(ctx))

		logger.Ctx(ctx).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// withRateLimit rejects clients over their limit with 429.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientID is the remote IP. Forwarded headers are not trusted.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit <= 0 {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
}

func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	retryAfter := int(info.RetryAfter.Round(time.Second).Seconds())
	if info.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(max(retryAfter, 1)))
	}

	logger.Warn().
		Str("client", clientID(r)).
		Str("path", r.URL.Path).
		Int("limit", info.Limit).
		Msg("rate limit exceeded")

	s.jsonResponse(w, http.StatusTooManyRequests, map[string]any{
		"error":       "rate limit exceeded",
		"status":      http.StatusTooManyRequests,
		"limit":       info.Limit,
		"retry_after": retryAfter,
	})
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, errorBody{Error: message, Status: status})
}

// fail writes err with the status HTTPStatus picks for it. Internal errors are
// logged and not echoed.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		s.errorResponse(w, status, "internal server error")
		return
	}
	s.errorResponse(w, status, err.Error())
}
