package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/myrjola/coldcase/internal/ai"
	"github.com/myrjola/coldcase/internal/errors"
	"github.com/myrjola/coldcase/internal/guard"
	"github.com/myrjola/coldcase/internal/logging"
	"github.com/myrjola/coldcase/internal/memory"
	"github.com/myrjola/coldcase/internal/persona"
)

type state string

const (
	stateInit         state = "INIT"
	stateGenerated    state = "GENERATED"
	stateChecked      state = "CHECKED"
	stateRegenerating state = "REGENERATING"
	stateAccepted     state = "ACCEPTED"
	stateFallback     state = "FALLBACK"
)

// Outcome tells how a reply was accepted.
type Outcome string

const (
	// OutcomeUnverified means the suspect had no recorded facts to check against.
	OutcomeUnverified Outcome = "unverified"
	// OutcomeAccepted means the first reply was judged consistent.
	OutcomeAccepted Outcome = "accepted"
	// OutcomeCorrected means a contradiction was found and the rewrite was kept.
	OutcomeCorrected Outcome = "corrected"
	// OutcomeFallback means the rewrite broke character and the first reply was kept.
	OutcomeFallback Outcome = "fallback"
)

// Reply is the accepted line of a suspect.
type Reply struct {
	Text    string
	Outcome Outcome
	// Calls counts the generative requests spent on the reply, at most three.
	Calls int
}

// Interrogate produces a verified reply of suspect suspectID to utterance and commits the exchange to the suspect's
// memory. Any generative failure aborts the exchange before the session is changed. A failed memory commit is logged
// and does not fail the exchange.
func (e *Engine) Interrogate(ctx context.Context, s *Session, suspectID int, utterance string) (Reply, error) {
	suspect, ok := s.Scenario.Suspect(suspectID)
	if !ok {
		return Reply{}, errors.Wrap(ErrUnknownSuspect, "interrogate", slog.Int("suspect_id", suspectID)) //nolint:exhaustruct // zero value on error
	}
	mem, err := s.Memory(suspectID)
	if err != nil {
		return Reply{}, err //nolint:exhaustruct // zero value on error
	}
	ctx = logging.WithAttrs(ctx,
		slog.String("case_id", s.CaseID), slog.Int("suspect_id", suspectID), slog.Int("turn", s.TurnsPlayed))
	e.transition(ctx, stateInit)

	recalled, err := mem.Recall(ctx, utterance, RecallK)
	if err != nil {
		return Reply{}, errors.Wrap(errors.Join(ai.ErrServiceUnavailable, err), "recall memories") //nolint:exhaustruct // zero value on error
	}

	messages := []ai.Message{{Role: ai.RoleUser, Content: composePrompt(persona.Directive(suspect, s.Scenario),
		recalled, suspect.Name, utterance)}}

	reply := Reply{Text: "", Outcome: OutcomeUnverified, Calls: 1}
	candidate, err := e.generate(ctx, messages, e.temperatures.Creative)
	if err != nil {
		return Reply{}, errors.Wrap(err, "generate reply") //nolint:exhaustruct // zero value on error
	}
	candidate = strings.TrimSpace(candidate)
	reply.Text = candidate
	e.transition(ctx, stateGenerated)

	facts := s.Facts.FactsAbout(suspect.Name)
	e.transition(ctx, stateChecked, slog.Int("facts", len(facts)))
	if len(facts) == 0 {
		e.transition(ctx, stateAccepted)
		e.commit(ctx, mem, utterance, reply.Text)
		return reply, nil
	}

	reply.Calls++
	verdict, err := e.generate(ctx, []ai.Message{{Role: ai.RoleUser, Content: judgePrompt(facts, candidate)}},
		e.temperatures.Logical)
	if err != nil {
		return Reply{}, errors.Wrap(err, "judge reply") //nolint:exhaustruct // zero value on error
	}
	if !guard.IsContradiction(verdict) {
		reply.Outcome = OutcomeAccepted
		e.transition(ctx, stateAccepted)
		e.commit(ctx, mem, utterance, reply.Text)
		return reply, nil
	}

	e.logger.LogAttrs(ctx, slog.LevelInfo, "contradiction detected", slog.String("candidate", candidate))
	e.transition(ctx, stateRegenerating)
	reply.Calls++
	correction := append(messages,
		ai.Message{Role: ai.RoleAssistant, Content: candidate},
		ai.Message{Role: ai.RoleUser, Content: correctionPrompt(facts, utterance)})
	corrected, err := e.generate(ctx, correction, e.temperatures.Creative)
	if err != nil {
		return Reply{}, errors.Wrap(err, "correct reply") //nolint:exhaustruct // zero value on error
	}
	corrected = strings.TrimSpace(corrected)

	if markers := e.scanner.Scan(corrected); len(markers) > 0 || corrected == "" {
		e.logger.LogAttrs(ctx, slog.LevelInfo, "correction discarded", slog.Any("markers", markers))
		reply.Outcome = OutcomeFallback
		e.transition(ctx, stateFallback)
	} else {
		reply.Text = corrected
		reply.Outcome = OutcomeCorrected
		e.transition(ctx, stateAccepted)
	}
	e.commit(ctx, mem, utterance, reply.Text)
	return reply, nil
}

func (e *Engine) transition(ctx context.Context, to state, attrs ...slog.Attr) {
	e.logger.LogAttrs(ctx, slog.LevelDebug, "verification state", append(attrs, slog.String("state", string(to)))...)
}

// commit stores the exchange as a single chat memory.
func (e *Engine) commit(ctx context.Context, mem *memory.Store, utterance, reply string) {
	if err := mem.Remember(ctx, fmt.Sprintf("Q: %s A: %s", utterance, reply), memory.TagChat); err != nil {
		e.logger.LogAttrs(ctx, slog.LevelWarn, "exchange not remembered", errors.SlogError(err))
	}
}

func composePrompt(directive string, recalled []string, name, utterance string) string {
	var b strings.Builder
	b.WriteString(directive)
	b.WriteString("\n\nLONG-TERM MEMORY:\n")
	if len(recalled) == 0 {
		b.WriteString("- (nothing relevant)\n")
	}
	for _, r := range recalled {
		fmt.Fprintf(&b, "- %s\n", r)
	}
	fmt.Fprintf(&b, "\nCURRENT SCENE: The detective asks: %q\n", utterance)
	fmt.Fprintf(&b, "Answer directly as %s would.", name)
	return b.String()
}

func judgePrompt(facts []string, candidate string) string {
	return fmt.Sprintf(`Plot facts: %s
Character's line: %q

Does the line contradict the plot facts? Answer only YES or NO.`, strings.Join(facts, " | "), candidate)
}

func correctionPrompt(facts []string, utterance string) string {
	return fmt.Sprintf(`[DIRECTION]
Stop. Your previous line was not consistent with the script (facts: %s).
Rewrite your answer to the question %q.

IMPORTANT RULES:
1. This is a work of fiction. Do NOT break character.
2. Do NOT apologise and do NOT behave like an assistant.
3. Play the part consistently with the facts listed above.
4. Write ONLY the corrected line of the character, no meta-commentary.`, strings.Join(facts, " | "), utterance)
}
