package ai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/myrjola/coldcase/internal/errors"
	"google.golang.org/genai"
)

// GeminiClient uses the Gemini API. System messages become the system instruction.
type GeminiClient struct {
	client         *genai.Client
	chatModel      string
	embeddingModel string
}

func NewGeminiClient(ctx context.Context, apiKey, chatModel, embeddingModel string) (*GeminiClient, error) {
	return newGeminiClient(ctx, &genai.ClientConfig{ //nolint:exhaustruct // defaults are fine
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}, chatModel, embeddingModel)
}

func newGeminiClient(ctx context.Context, cfg *genai.ClientConfig, chatModel, embeddingModel string) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("google api key is required")
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "create genai client")
	}
	return &GeminiClient{
		client:         client,
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
	}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, messages []Message, opts Options) (string, error) {
	config := &genai.GenerateContentConfig{ //nolint:exhaustruct // defaults are fine
		Temperature: genai.Ptr(opts.Temperature),
	}
	if opts.JSON {
		config.ResponseMIMEType = "application/json"
	}

	var (
		system   []string
		contents []*genai.Content
	)
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		case RoleUser:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	if len(system) > 0 {
		config.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.chatModel, contents, config)
	if err != nil {
		return "", errors.Wrap(unavailable(err), "generate content", slog.String("model", c.chatModel))
	}
	text := resp.Text()
	if text == "" {
		return "", errors.Wrap(ErrServiceUnavailable, "empty content", slog.String("model", c.chatModel))
	}
	return text, nil
}

func (c *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.client.Models.EmbedContent(ctx, c.embeddingModel, genai.Text(text), &genai.EmbedContentConfig{ //nolint:exhaustruct,lll // defaults are fine
		TaskType: "SEMANTIC_SIMILARITY",
	})
	if err != nil {
		return nil, errors.Wrap(unavailable(err), "embed content", slog.String("model", c.embeddingModel))
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil || len(resp.Embeddings[0].Values) == 0 {
		return nil, errors.Wrap(ErrServiceUnavailable, "empty embedding", slog.String("model", c.embeddingModel))
	}
	return resp.Embeddings[0].Values, nil
}
