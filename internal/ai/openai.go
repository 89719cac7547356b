package ai

import (
	"context"
	"log/slog"

	"github.com/myrjola/coldcase/internal/errors"
	"github.com/sashabaranov/go-openai"
)

// OpenAIClient talks to any OpenAI-compatible API, including the one served by Ollama.
type OpenAIClient struct {
	client         *openai.Client
	chatModel      string
	embeddingModel string
}

const MaxTokens = 1024

func NewOpenAIClient(apiKey, baseURL, chatModel, embeddingModel string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		client:         openai.NewClientWithConfig(cfg),
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, messages []Message, opts Options) (string, error) {
	request := openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
		Model:       c.chatModel,
		MaxTokens:   MaxTokens,
		Messages:    toOpenAIMessages(messages),
		Temperature: opts.Temperature,
	}
	if opts.JSON {
		request.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	completion, err := c.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", errors.Wrap(unavailable(err), "create chat completion", slog.String("model", c.chatModel))
	}
	if len(completion.Choices) == 0 {
		return "", errors.Wrap(ErrServiceUnavailable, "completion without choices", slog.String("model", c.chatModel))
	}
	return completion.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	response, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{ //nolint:exhaustruct // defaults are fine
		Input: []string{text},
		Model: openai.EmbeddingModel(c.embeddingModel),
	})
	if err != nil {
		return nil, errors.Wrap(unavailable(err), "create embeddings", slog.String("model", c.embeddingModel))
	}
	if len(response.Data) == 0 || len(response.Data[0].Embedding) == 0 {
		return nil, errors.Wrap(ErrServiceUnavailable, "empty embedding", slog.String("model", c.embeddingModel))
	}
	return response.Data[0].Embedding, nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	converted := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case RoleSystem:
			role = openai.ChatMessageRoleSystem
		case RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		case RoleUser:
		}
		converted = append(converted, openai.ChatCompletionMessage{ //nolint:exhaustruct // text only
			Role:    role,
			Content: m.Content,
		})
	}
	return converted
}
