package scenario

import (
	"context"
	"log/slog"

	"github.com/myrjola/coldcase/internal/ai"
	"github.com/myrjola/coldcase/internal/errors"
	"github.com/myrjola/coldcase/internal/models"
)

// MaxAttempts bounds the number of generation requests per new case.
const MaxAttempts = 3

// ErrGenerationFailed is returned when no attempt produced a valid scenario.
var ErrGenerationFailed = errors.NewSentinel("scenario generation failed")

// TextGenerator is the part of ai.Client the generator needs.
type TextGenerator interface {
	Generate(ctx context.Context, messages []ai.Message, opts ai.Options) (string, error)
}

// Generator asks the language model for a new case.
type Generator struct {
	client      TextGenerator
	temperature float32
	logger      *slog.Logger
}

func NewGenerator(client TextGenerator, temperature float32, logger *slog.Logger) *Generator {
	return &Generator{
		client:      client,
		temperature: temperature,
		logger:      logger.With(slog.String("source", "scenario")),
	}
}

const generationPrompt = `You are a game designer of procedural murder mysteries.
Generate a JSON document that follows EXACTLY this structure:
{
  "victim": "First and last name",
  "crime_location": "Noir description of the place",
  "weapon": "Object",
  "motive": "Reason",
  "atmosphere": "Weather and lights",
  "forensic_report": ["Time of death (be specific)", "Time the body was found (be specific)", "Crime scene findings"],
  "suspects": [
    {"id": 0, "name": "...", "role": "...", "guilty": true, "personality": "...", "alibi": "False...", "secret": "...", "initial_clue": "..."},
    {"id": 1, "name": "...", "role": "...", "guilty": false, "personality": "...", "alibi": "True...", "secret": "...", "initial_clue": "..."},
    {"id": 2, "name": "...", "role": "...", "guilty": false, "personality": "...", "alibi": "True...", "secret": "...", "initial_clue": "..."}
  ]
}
Answer ONLY with the JSON. Close every brace and bracket and use double quotes.
The initial_clue must give the detective a valid reason to suspect that person.
Suspect names must ALL be different from each other and different from the victim.
Use varied English first and last names. Shuffle which suspect is guilty.`

// Generate requests a scenario up to MaxAttempts times. Both invalid output and service failures consume an
// attempt. A cancelled context stops the loop immediately.
func (g *Generator) Generate(ctx context.Context) (*models.Scenario, error) {
	var (
		lastErr  error
		messages = []ai.Message{{Role: ai.RoleUser, Content: generationPrompt}}
		opts     = ai.Options{Temperature: g.temperature, JSON: true}
	)
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "generate scenario")
		}
		raw, err := g.client.Generate(ctx, messages, opts)
		if err != nil {
			lastErr = err
			g.logger.LogAttrs(ctx, slog.LevelWarn, "scenario request failed",
				slog.Int("attempt", attempt), errors.SlogError(err))
			continue
		}
		scenario, err := Validate([]byte(raw))
		if err != nil {
			lastErr = err
			g.logger.LogAttrs(ctx, slog.LevelWarn, "scenario rejected",
				slog.Int("attempt", attempt), LogAttr(err))
			continue
		}
		g.logger.LogAttrs(ctx, slog.LevelInfo, "scenario generated",
			slog.Int("attempt", attempt), slog.String("victim", scenario.Victim))
		return scenario, nil
	}
	return nil, errors.Join(ErrGenerationFailed, lastErr)
}
