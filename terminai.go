// Package terminai defines the request/response types and configuration for
// the TerminAI API. Messages are JSON-encoded over HTTP.
package terminai

import (
	"encoding/json"
	"errors"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "TerminAI API"

// Recognized context keys. Other keys are accepted but never reach the model.
const (
	ContextOS         = "os"
	ContextShell      = "shell"
	ContextCurrentDir = "current_dir"
)

// ErrMissingQuery is returned when a request body carries no query field.
var ErrMissingQuery = errors.New("field required: query")

// CommandRequest is sent from the CLI to POST /generate-command.
type CommandRequest struct {
	// Query is the natural-language description of the wanted command.
	Query string `json:"query"`
	// Context holds environment hints such as os, shell and current_dir.
	Context map[string]any `json:"context,omitempty"`
}

// UnmarshalJSON decodes a request and rejects bodies without a query.
// An empty query string is accepted.
func (r *CommandRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Query   *string        `json:"query"`
		Context map[string]any `json:"context"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Query == nil {
		return ErrMissingQuery
	}
	r.Query = *raw.Query
	r.Context = raw.Context
	return nil
}

// CommandResponse is returned from POST /generate-command.
type CommandResponse struct {
	// Command is the model output with surrounding whitespace stripped.
	Command string `json:"command"`
	// Explanation is reserved; nothing populates it yet.
	Explanation string `json:"explanation,omitempty"`
}

// HealthResponse is returned from GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Healthy is the fixed liveness payload.
func Healthy() HealthResponse {
	return HealthResponse{Status: "healthy", Service: ServiceName}
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
