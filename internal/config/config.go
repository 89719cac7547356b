// Package config loads runtime settings from the environment.
package config

import (
	"github.com/myrjola/coldcase/internal/envstruct"
	"github.com/myrjola/coldcase/internal/errors"
)

const (
	BackendOpenAI = "openai"
	BackendGemini = "gemini"
)

// Config holds runtime settings. The OpenAI backend defaults to a local Ollama server through its
// OpenAI-compatible endpoint. Empty model names select the backend's default models.
type Config struct {
	Backend        string `env:"COLDCASE_AI_BACKEND" envDefault:"openai"`
	OpenAIAPIKey   string `env:"OPENAI_API_KEY" envDefault:"ollama"`
	BaseURL        string `env:"COLDCASE_AI_BASE_URL" envDefault:"http://localhost:11434/v1"`
	GoogleAPIKey   string `env:"GOOGLE_API_KEY" envDefault:""`
	ChatModel      string `env:"COLDCASE_CHAT_MODEL" envDefault:""`
	EmbeddingModel string `env:"COLDCASE_EMBEDDING_MODEL" envDefault:""`

	// CreativeTemperature is used for dialogue, scenarios and events. LogicalTemperature for judgments and reports.
	CreativeTemperature float64 `env:"COLDCASE_CREATIVE_TEMPERATURE" envDefault:"0.7"`
	LogicalTemperature  float64 `env:"COLDCASE_LOGICAL_TEMPERATURE" envDefault:"0.1"`

	SavesDir    string `env:"COLDCASE_SAVES_DIR" envDefault:"saves"`
	DatabaseURL string `env:"COLDCASE_DATABASE_URL" envDefault:"./coldcase.sqlite"`
	LogLevel    string `env:"COLDCASE_LOG_LEVEL" envDefault:"info"`

	RefusalMarkers []string `env:"COLDCASE_REFUSAL_MARKERS" envDefault:"i'm sorry,i am sorry,i apologize,as an ai,language model,i can't help with that,i cannot help with that,mi dispiace,non posso,modello linguistico"` //nolint:lll // default list
}

var ErrInvalidConfig = errors.NewSentinel("invalid configuration")

// Load reads the configuration with lookupEnv, usually [os.LookupEnv].
func Load(lookupEnv func(string) (string, bool)) (Config, error) {
	var cfg Config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return Config{}, errors.Wrap(err, "populate config")
	}
	switch cfg.Backend {
	case BackendOpenAI:
	case BackendGemini:
		if cfg.GoogleAPIKey == "" {
			return Config{}, errors.Wrap(ErrInvalidConfig, "GOOGLE_API_KEY is required for the gemini backend")
		}
	default:
		return Config{}, errors.Wrap(ErrInvalidConfig, "unknown backend "+cfg.Backend)
	}
	return cfg, nil
}
