package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/myrjola/coldcase/internal/ai"
	"github.com/myrjola/coldcase/internal/errors"
	"github.com/myrjola/coldcase/internal/factstore"
	"github.com/myrjola/coldcase/internal/logging"
	"github.com/myrjola/coldcase/internal/models"
)

// NoStatementsReport is the report of an empty interrogation.
const NoStatementsReport = "No statements collected (empty interrogation)."

const reportPrompt = `You are a police analyst.
Compare the suspect's statements with the established facts.

SUSPECT: %s
ESTABLISHED FACTS (TRUTH): %s

INTERROGATION TRANSCRIPT:
%s

TASK:
Write a short verification report of three or four lines in Markdown.
For every key point made by the suspect, write whether it is CONFIRMED by the facts or CONTRADICTED.
If the suspect said something that cannot be checked, write UNVERIFIABLE.
Use a cold, bureaucratic tone.`

// PoliceReport checks an interrogation transcript against the facts about the suspect.
func (e *Engine) PoliceReport(
	ctx context.Context,
	s *Session,
	suspectID int,
	exchanges []models.Exchange,
) (string, error) {
	suspect, ok := s.Scenario.Suspect(suspectID)
	if !ok {
		return "", errors.Wrap(ErrUnknownSuspect, "police report", slog.Int("suspect_id", suspectID))
	}
	if len(exchanges) == 0 {
		return NoStatementsReport, nil
	}
	ctx = logging.WithAttrs(ctx, slog.String("case_id", s.CaseID), slog.Int("suspect_id", suspectID))

	known := s.Facts.FactsAbout(suspect.Name)
	for _, event := range s.Facts.Entities(factstore.KindDynamicEvent) {
		known = append(known, "breaking news: "+event)
	}
	facts := "No specific facts known."
	if len(known) > 0 {
		facts = strings.Join(known, " | ")
	}
	var transcript strings.Builder
	for _, x := range exchanges {
		fmt.Fprintf(&transcript, "Q: %s A: %s\n", x.Question, x.Answer)
	}

	prompt := fmt.Sprintf(reportPrompt, suspect.Name, facts, transcript.String())
	report, err := e.generate(ctx, []ai.Message{{Role: ai.RoleUser, Content: prompt}}, e.temperatures.Logical)
	if err != nil {
		return "", errors.Wrap(err, "generate police report")
	}
	e.logger.LogAttrs(ctx, slog.LevelInfo, "police report written", slog.Int("exchanges", len(exchanges)))
	return strings.TrimSpace(report), nil
}

const introSystemPrompt = "You are an award-winning crime writer, famous for atmospheric descriptions and suspense."

const introPrompt = `Write the opening of a story based on these case details:
Victim: %s
Crime scene: %s
Weapon: %s
Atmosphere: %s
Forensic report:
%s

Requirements:
- Start by describing the sensory setting (weather, lights, sounds).
- Slowly lead the reader to the discovery of the body.
- Use a serious and dramatic tone.
- Weave the key details (place, time, weapon) into the narration.
- Never reveal who the culprit is.`

// Intro narrates the opening of a case. Callers fall back to the scenario atmosphere on error.
func (e *Engine) Intro(ctx context.Context, scenario models.Scenario) (string, error) {
	var report strings.Builder
	for _, fact := range scenario.ForensicReport {
		fmt.Fprintf(&report, "- %s\n", fact)
	}
	prompt := fmt.Sprintf(introPrompt, scenario.Victim, scenario.CrimeLocation, scenario.Weapon,
		scenario.Atmosphere, report.String())

	intro, err := e.generate(ctx, []ai.Message{
		{Role: ai.RoleSystem, Content: introSystemPrompt},
		{Role: ai.RoleUser, Content: prompt},
	}, e.temperatures.Creative)
	if err != nil {
		return "", errors.Wrap(err, "generate intro")
	}
	return strings.TrimSpace(intro), nil
}
