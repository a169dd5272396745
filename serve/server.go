package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	terminai "github.com/terminai/terminai-api"
	"github.com/terminai/terminai-api/redact"
)

// CommandGenerator turns a validated request into a command.
type CommandGenerator interface {
	GenerateCommand(ctx context.Context, req *terminai.CommandRequest) (*terminai.CommandResponse, error)
}

// Server exposes the command generator and health check over HTTP.
type Server struct {
	engine       CommandGenerator
	apiKey       string
	timeout      time.Duration
	maxBodyBytes int64
	log          *zap.Logger

	handler http.Handler
	http    *http.Server
}

// NewServer creates a server from cfg. The returned server is not listening
// until ListenAndServe is called.
func NewServer(cfg *terminai.Config, engine CommandGenerator, log *zap.Logger) *Server {
	s := &Server{
		engine:       engine,
		apiKey:       cfg.Auth.APIKey,
		timeout:      cfg.Generation.Timeout,
		maxBodyBytes: cfg.Server.MaxBodyBytes,
		log:          log,
	}

	r := mux.NewRouter()
	// mux skips Use middleware for unmatched routes.
	r.NotFoundHandler = s.logRequests(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	}))
	r.MethodNotAllowedHandler = s.logRequests(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	}))
	r.Use(s.logRequests)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.NewRoute().Subrouter()
	api.Use(s.requireAPIKey)
	api.HandleFunc("/generate-command", s.handleGenerateCommand).Methods(http.MethodPost)

	s.handler = allowAllOrigins(r)
	s.http = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the root handler, CORS included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves until Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.log.Info("listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, terminai.Healthy())
}

func (s *Server) handleGenerateCommand(w http.ResponseWriter, r *http.Request) {
	if _, ok := apiKeyFromContext(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "API key is missing")
		return
	}
	if s.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	}

	var req terminai.CommandRequest
	if err := decodeRequest(r.Body, &req); err != nil {
		s.log.Error("invalid request body", zap.Error(err))
		writeError(w, http.StatusInternalServerError, generationFailed(err))
		return
	}

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.log.Info("generating command", zap.String("query", redact.Command(req.Query)))

	resp, err := s.engine.GenerateCommand(ctx, &req)
	if err != nil {
		s.log.Error("error generating command",
			zap.String("query", redact.Command(req.Query)),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, generationFailed(err))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// ErrTrailingData is returned for a body with content after the JSON object.
var ErrTrailingData = errors.New("unexpected data after JSON object")

// decodeRequest reads exactly one JSON value from body.
func decodeRequest(body io.Reader, req *terminai.CommandRequest) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(req); err != nil {
		return err
	}
	if dec.More() {
		return ErrTrailingData
	}
	return nil
}

func generationFailed(err error) string {
	return fmt.Sprintf("Error generating command: %v", err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, terminai.ErrorResponse{Detail: detail})
}
