package main

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/terminai/terminai-api/redact"
)

// APIKeyHeader carries the shared secret on authenticated routes.
const APIKeyHeader = "X-API-Key"

type ctxKey int

const (
	apiKeyCtxKey ctxKey = iota
	requestIDCtxKey
)

// apiKeyFromContext returns the credential accepted by requireAPIKey.
func apiKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(apiKeyCtxKey).(string)
	return key, ok
}

// requestIDFromContext returns the ID assigned by logRequests.
func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDCtxKey).(string)
	return id
}

// requireAPIKey rejects requests whose x-api-key header is absent or does
// not match the configured secret. It runs before the body is read.
func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		values := r.Header.Values(APIKeyHeader)
		if len(values) == 0 {
			s.log.Warn("API key missing", zap.String("request_id", requestIDFromContext(r.Context())))
			writeError(w, http.StatusUnauthorized, "API key is missing")
			return
		}

		key := values[0]
		if subtle.ConstantTimeCompare([]byte(key), []byte(s.apiKey)) != 1 {
			s.log.Warn("invalid API key",
				zap.String("key_prefix", redact.Secret(key)),
				zap.String("request_id", requestIDFromContext(r.Context())),
			)
			writeError(w, http.StatusUnauthorized, "Invalid API key")
			return
		}

		ctx := context.WithValue(r.Context(), apiKeyCtxKey, key)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// logRequests tags each request with an ID and writes one access log line.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestIDCtxKey, id)))

		s.log.Info("request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

var corsMethods = []string{
	http.MethodDelete, http.MethodGet, http.MethodHead, http.MethodOptions,
	http.MethodPatch, http.MethodPost, http.MethodPut,
}

// allowAllOrigins permits every origin, method and header, with
// credentials. Suitable for development only.
func allowAllOrigins(next http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowOriginFunc:      func(string) bool { return true },
		AllowCredentials:     true,
		AllowedMethods:       corsMethods,
		AllowedHeaders:       []string{"*"},
		MaxAge:               600,
		OptionsSuccessStatus: http.StatusOK,
	}).Handler(next)
}
