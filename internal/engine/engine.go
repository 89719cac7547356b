// Package engine runs interrogations: it grounds generated dialogue in per-suspect memory, verifies it against the
// fact store and injects a one-shot dynamic event into the session.
package engine

import (
	"context"
	"log/slog"

	"github.com/myrjola/coldcase/internal/ai"
	"github.com/myrjola/coldcase/internal/errors"
	"github.com/myrjola/coldcase/internal/guard"
	"github.com/myrjola/coldcase/internal/memory"
)

const (
	// RecallK is the number of memories recalled to ground a reply.
	RecallK = 2
	// EventThreshold is the number of played turns after which the dynamic event may fire.
	EventThreshold = 4
)

// ErrUnknownSuspect is returned for suspect ids absent from the session's scenario.
var ErrUnknownSuspect = errors.NewSentinel("unknown suspect")

// Generator is a generative text service.
type Generator interface {
	Generate(ctx context.Context, messages []ai.Message, opts ai.Options) (string, error)
}

// Temperatures are the sampling temperatures of the two kinds of requests.
type Temperatures struct {
	// Creative is used for dialogue, corrections, events and narration.
	Creative float32
	// Logical is used for contradiction judgments and police reports.
	Logical float32
}

// Engine holds the collaborators shared by all sessions. Session state lives in Session.
type Engine struct {
	generator    Generator
	embedder     memory.Embedder
	scanner      *guard.MarkerScanner
	temperatures Temperatures
	logger       *slog.Logger
}

func New(
	generator Generator,
	embedder memory.Embedder,
	scanner *guard.MarkerScanner,
	temperatures Temperatures,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		generator:    generator,
		embedder:     embedder,
		scanner:      scanner,
		temperatures: temperatures,
		logger:       logger.With(slog.String("source", "engine")),
	}
}

// generate calls the generative service and marks any failure as ai.ErrServiceUnavailable.
func (e *Engine) generate(ctx context.Context, messages []ai.Message, temperature float32) (string, error) {
	text, err := e.generator.Generate(ctx, messages, ai.Options{Temperature: temperature, JSON: false})
	if err != nil {
		if !errors.Is(err, ai.ErrServiceUnavailable) {
			err = errors.Join(ai.ErrServiceUnavailable, err)
		}
		return "", err
	}
	return text, nil
}
