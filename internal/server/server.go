// Package server exposes the thin analysis HTTP API: parse endpoints backed
// directly by the extractor registry and a fire-and-forget trigger for full
// project analysis.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jward/codegraph/internal/parser"
)

// AnalyzeFunc runs a full project analysis. The server invokes it on a
// detached goroutine with no cancellation or join; outcomes surface only in
// logs and the progress channel.
type AnalyzeFunc func(ctx context.Context) error

// Server wires the analyzer endpoints onto an http.ServeMux.
type Server struct {
	registry    *parser.Registry
	apiKey      string
	projectRoot string
	analyze     AnalyzeFunc
	log         *slog.Logger
}

// New builds a server. An empty apiKey disables authentication. A nil
// analyze function makes the trigger endpoint a logged no-op.
func New(reg *parser.Registry, apiKey, projectRoot string, analyze AnalyzeFunc, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Server{
		registry:    reg,
		apiKey:      apiKey,
		projectRoot: projectRoot,
		analyze:     analyze,
		log:         log,
	}
}

// Handler returns the routed and authenticated handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/analyzer/languages", s.handleLanguages)
	mux.HandleFunc("POST /api/analyzer/parse", s.handleParse)
	mux.HandleFunc("POST /api/analyzer/parse-batch", s.handleParseBatch)
	mux.HandleFunc("POST /api/analyzer/analyze", s.handleAnalyze)
	return s.withAuth(mux)
}

func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" && r.Header.Get("X-API-Key") != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid or missing API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"languages": s.registry.Languages()})
}

type parseRequest struct {
	Language string `json:"language"`
	Content  string `json:"content"`
	Path     string `json:"path,omitempty"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Language == "" || req.Content == "" {
		writeError(w, http.StatusBadRequest, "language and content are required")
		return
	}
	ext, ok := s.registry.Get(strings.ToLower(req.Language))
	if !ok {
		writeError(w, http.StatusBadRequest, "unsupported language: "+req.Language)
		return
	}
	writeJSON(w, http.StatusOK, ext.Parse([]byte(req.Content), req.Path))
}

type batchRequest struct {
	Files []parseRequest `json:"files"`
}

type batchError struct {
	Error string `json:"error"`
	Path  string `json:"path,omitempty"`
}

func (s *Server) handleParseBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Files) == 0 {
		writeError(w, http.StatusBadRequest, "files must be a non-empty array")
		return
	}

	// One bad entry never fails the batch.
	results := make([]any, 0, len(req.Files))
	for _, f := range req.Files {
		ext, ok := s.registry.Get(strings.ToLower(f.Language))
		if !ok || f.Content == "" {
			results = append(results, batchError{
				Error: "skip: unsupported language or missing content",
				Path:  f.Path,
			})
			continue
		}
		results = append(results, ext.Parse([]byte(f.Content), f.Path))
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// handleAnalyze kicks off a full analysis in the background and acknowledges
// immediately. Failures never surface as a synchronous error response.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.analyze != nil {
		go func() {
			if err := s.analyze(context.Background()); err != nil {
				s.log.Error("background analysis failed", "error", err)
			}
		}()
	} else {
		s.log.Warn("analysis trigger received but no analyzer configured")
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status": "started",
		"path":   s.projectRoot,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
