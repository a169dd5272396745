package generate

import (
	"context"
	"errors"
	"math"
	"net/http"

	"github.com/sashabaranov/go-openai"

	terminai "github.com/terminai/terminai-api"
)

// ErrNoChoices is returned when the upstream answers without any completion.
var ErrNoChoices = errors.New("no choices in response")

// TextGenerator turns a system prompt and a user message into model output.
type TextGenerator interface {
	Generate(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// Generator performs text generation via an OpenAI-compatible chat
// completions API (Groq by default).
type Generator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewGenerator creates a generator from config.
func NewGenerator(cfg terminai.GenerationConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Generator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: wireTemperature(cfg.Temperature),
	}
}

// wireTemperature keeps a configured 0 on the wire. go-openai omits a zero
// temperature, which would hand the choice to the upstream default.
func wireTemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

// Generate sends one system+user exchange and returns the first choice's
// text unmodified. It is not retried.
func (g *Generator) Generate(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	return resp.Choices[0].Message.Content, nil
}
