// Package server exposes the document collections over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"semsearch/internal/domain"
	"semsearch/internal/logger"
)

const maxBodyBytes = 10 << 20

// Index is the per-collection surface the HTTP handlers need.
type Index interface {
	Upsert(ctx context.Context, doc domain.Document) ([]domain.Chunk, error)
	Delete(ctx context.Context, doc domain.Document) error
	Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error)
}

// Config configures the server
type Config struct {
	Host string
	Port int
}

// Server is the HTTP API server
type Server struct {
	config  Config
	indexes map[string]Index
	mux     *http.ServeMux
}

// New registers, for every collection name in indexes:
//
//	POST   /{collection}         index a document
//	DELETE /{collection}         remove a document by filename
//	POST   /{collection}/search  similarity search
func New(cfg Config, indexes map[string]Index) *Server {
	s := &Server{config: cfg, indexes: indexes, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /{$}", s.handleRoot)
	for name, idx := range indexes {
		s.mux.HandleFunc("POST /"+name, s.handleUpsert(idx))
		s.mux.HandleFunc("DELETE /"+name, s.handleDelete(idx))
		s.mux.HandleFunc("POST /"+name+"/search", s.handleSearch(idx))
	}
	return s
}

// Handler returns the routed handler with request logging.
func (s *Server) Handler() http.Handler {
	return logRequests(s.mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port)),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening on http://%s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "Semantic Search API")
}

func (s *Server) handleUpsert(idx Index) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var doc domain.Document
		if err := decodeJSON(r, &doc); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if _, err := idx.Upsert(r.Context(), doc); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, doc)
	}
}

func (s *Server) handleDelete(idx Index) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var doc domain.Document
		if err := decodeJSON(r, &doc); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := idx.Delete(r.Context(), doc); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleSearch accepts either a bare JSON string or a SearchQuery object.
func (s *Server) handleSearch(idx Index) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		var query domain.SearchQuery
		if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '"' {
			err = json.Unmarshal(trimmed, &query.Text)
		} else {
			err = json.Unmarshal(body, &query)
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid search body: %w", err))
			return
		}
		results, err := idx.Search(r.Context(), query)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		if results == nil {
			results = []domain.SearchResult{}
		}
		writeJSON(w, http.StatusOK, results)
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyFilename),
		errors.Is(err, domain.ErrEmptyContent),
		errors.Is(err, domain.ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrCollectionNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("%v", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("%s %s -> %d (%s)", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond))
	})
}
