// Package generate turns command requests into shell commands through an
// upstream completion model.
package generate

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	terminai "github.com/terminai/terminai-api"
	"github.com/terminai/terminai-api/redact"
)

// Engine builds prompts, calls the generator and maps its output.
type Engine struct {
	generator TextGenerator
	prompts   *PromptStore
	log       *zap.Logger
}

// NewEngine creates an engine around gen. The prompt store and logger are
// owned by the caller.
func NewEngine(gen TextGenerator, prompts *PromptStore, log *zap.Logger) *Engine {
	return &Engine{
		generator: gen,
		prompts:   prompts,
		log:       log,
	}
}

// GenerateCommand produces a command for req. Every failure is returned as
// an error whose text includes the underlying cause.
func (e *Engine) GenerateCommand(ctx context.Context, req *terminai.CommandRequest) (*terminai.CommandResponse, error) {
	systemPrompt := e.prompts.System()
	userMessage := BuildUserMessage(req)

	e.log.Debug("prompt", zap.String("system", systemPrompt), zap.String("user", userMessage))

	output, err := e.generator.Generate(ctx, systemPrompt, userMessage)
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}

	command := strings.TrimSpace(output)
	e.log.Debug("generated command", zap.String("command", redact.Command(command)))

	return &terminai.CommandResponse{Command: command}, nil
}
