// Package ai wraps the generative text and embedding services.
package ai

import (
	"cmp"
	"context"
	"fmt"

	"github.com/myrjola/coldcase/internal/config"
	"github.com/myrjola/coldcase/internal/errors"
)

// ErrServiceUnavailable is returned when a generative or embedding call fails or returns nothing usable.
var ErrServiceUnavailable = errors.NewSentinel("ai service unavailable")

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged entry of a generation request.
type Message struct {
	Role    Role
	Content string
}

// Options are the sampling parameters of a generation request.
type Options struct {
	Temperature float32
	// JSON forces structured output.
	JSON bool
}

// Client is a generative text service that can also embed text.
type Client interface {
	Generate(ctx context.Context, messages []Message, opts Options) (string, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}

const (
	defaultOpenAIChatModel      = "llama3.2"
	defaultOpenAIEmbeddingModel = "nomic-embed-text"
	defaultGeminiChatModel      = "gemini-2.0-flash"
	defaultGeminiEmbeddingModel = "text-embedding-004"
)

// New creates the client for the configured backend.
func New(ctx context.Context, cfg config.Config) (Client, error) {
	switch cfg.Backend {
	case config.BackendGemini:
		client, err := NewGeminiClient(ctx, cfg.GoogleAPIKey,
			cmp.Or(cfg.ChatModel, defaultGeminiChatModel),
			cmp.Or(cfg.EmbeddingModel, defaultGeminiEmbeddingModel))
		if err != nil {
			return nil, errors.Wrap(err, "new gemini client")
		}
		return client, nil
	case config.BackendOpenAI:
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.BaseURL,
			cmp.Or(cfg.ChatModel, defaultOpenAIChatModel),
			cmp.Or(cfg.EmbeddingModel, defaultOpenAIEmbeddingModel)), nil
	default:
		return nil, errors.Wrap(config.ErrInvalidConfig, "unknown backend "+cfg.Backend)
	}
}

// unavailable marks err as a service failure while keeping the cause in the chain.
func unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
}
