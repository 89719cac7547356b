package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/myrjola/coldcase/internal/ai"
	"github.com/myrjola/coldcase/internal/errors"
	"github.com/myrjola/coldcase/internal/factstore"
	"github.com/myrjola/coldcase/internal/logging"
	"github.com/myrjola/coldcase/internal/memory"
	"github.com/myrjola/coldcase/internal/models"
)

// Session carries all mutable state of one investigation. Sessions share nothing with each other.
type Session struct {
	CaseID   string
	Scenario models.Scenario
	Facts    *factstore.Store
	// Memories holds one isolated store per suspect id.
	Memories    map[int]*memory.Store
	TurnsPlayed int
	EventFired  bool
}

// Memory returns the memory of suspect id.
func (s *Session) Memory(id int) (*memory.Store, error) {
	mem, ok := s.Memories[id]
	if !ok {
		return nil, errors.Wrap(ErrUnknownSuspect, "find memory", slog.Int("suspect_id", id))
	}
	return mem, nil
}

// Snapshot captures the persisted part of the session.
func (s *Session) Snapshot() models.Snapshot {
	scenario := s.Scenario
	scenario.ForensicReport = slices.Clone(s.Scenario.ForensicReport)
	scenario.Suspects = slices.Clone(s.Scenario.Suspects)
	return models.Snapshot{
		CaseID:      s.CaseID,
		Scenario:    scenario,
		TurnsPlayed: s.TurnsPlayed,
		EventFired:  s.EventFired,
	}
}

// NewSession builds the fact store and one memory per suspect seeded with the forensic report.
func (e *Engine) NewSession(ctx context.Context, caseID string, scenario models.Scenario) (*Session, error) {
	ctx = logging.WithAttrs(ctx, slog.String("case_id", caseID))
	s := &Session{
		CaseID:      caseID,
		Scenario:    scenario,
		Facts:       factstore.New(),
		Memories:    make(map[int]*memory.Store, len(scenario.Suspects)),
		TurnsPlayed: 0,
		EventFired:  false,
	}
	s.Facts.Build(scenario)

	for _, suspect := range scenario.Suspects {
		mem := memory.New(suspect.ID, e.embedder)
		for _, fact := range scenario.ForensicReport {
			if err := mem.Remember(ctx, fact, memory.TagForensic); err != nil {
				return nil, errors.Wrap(err, "seed forensic memory")
			}
		}
		s.Memories[suspect.ID] = mem
	}

	e.logger.LogAttrs(ctx, slog.LevelInfo, "session started",
		slog.Int("facts", s.Facts.NodeCount()), slog.Int("suspects", len(s.Memories)))
	return s, nil
}

// RestoreSession rebuilds a session from a snapshot. A recorded dynamic event is added back to the fact store and
// every memory; the event flag is taken from the snapshot as is.
func (e *Engine) RestoreSession(ctx context.Context, snapshot models.Snapshot) (*Session, error) {
	s, err := e.NewSession(ctx, snapshot.CaseID, snapshot.Scenario)
	if err != nil {
		return nil, err
	}
	s.TurnsPlayed = snapshot.TurnsPlayed
	s.EventFired = snapshot.EventFired

	if event := strings.TrimSpace(snapshot.Scenario.DynamicEvent); event != "" {
		s.Facts.AddFact(event)
		for _, id := range s.suspectIDs() {
			if err = s.Memories[id].Remember(ctx, event, memory.TagBreakingNews); err != nil {
				return nil, errors.Wrap(err, "restore dynamic event")
			}
		}
	}
	return s, nil
}

func (s *Session) suspectIDs() []int {
	ids := make([]int, 0, len(s.Memories))
	for id := range s.Memories {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// TurnResult is the outcome of one completed exchange.
type TurnResult struct {
	Reply Reply
	// Event is the dynamic event fired after this turn, if any.
	Event string
}

// Turn interrogates a suspect, counts the exchange and gives the dynamic event a chance to fire. A failed
// interrogation leaves the session untouched.
func (e *Engine) Turn(ctx context.Context, s *Session, suspectID int, utterance string) (TurnResult, error) {
	reply, err := e.Interrogate(ctx, s, suspectID, utterance)
	if err != nil {
		return TurnResult{}, err //nolint:exhaustruct // zero value on error
	}
	s.TurnsPlayed++

	event, _ := e.MaybeInjectEvent(ctx, s)
	return TurnResult{Reply: reply, Event: event}, nil
}

const eventPrompt = `You are the narrator of a murder mystery.
Victim: %s. Crime scene: %s.
Suspects: %s.
Write ONE sentence of breaking news that reaches the police station during the interrogations: a new witness,
a discovery or a rumour that changes the picture. It must not reveal or name the culprit.
Answer only with the sentence.`

// MaybeInjectEvent fires the one-shot dynamic event once EventThreshold turns have been played. On success the
// event is recorded in the scenario, the fact store and every memory. A generation failure changes nothing so the
// next qualifying turn tries again.
func (e *Engine) MaybeInjectEvent(ctx context.Context, s *Session) (string, bool) {
	if s.EventFired || s.TurnsPlayed < EventThreshold {
		return "", false
	}
	ctx = logging.WithAttrs(ctx, slog.String("case_id", s.CaseID), slog.Int("turn", s.TurnsPlayed))

	names := make([]string, 0, len(s.Scenario.Suspects))
	for _, suspect := range s.Scenario.Suspects {
		names = append(names, suspect.Name+" ("+suspect.Role+")")
	}
	prompt := fmt.Sprintf(eventPrompt, s.Scenario.Victim, s.Scenario.CrimeLocation, strings.Join(names, ", "))

	raw, err := e.generate(ctx, []ai.Message{{Role: ai.RoleUser, Content: prompt}}, e.temperatures.Creative)
	if err != nil {
		e.logger.LogAttrs(ctx, slog.LevelWarn, "dynamic event skipped", errors.SlogError(err))
		return "", false
	}
	event := firstLine(raw)
	if event == "" {
		e.logger.LogAttrs(ctx, slog.LevelWarn, "dynamic event skipped", slog.String("reason", "empty event"))
		return "", false
	}

	s.EventFired = true
	s.Scenario.DynamicEvent = event
	s.Facts.AddFact(event)
	for _, id := range s.suspectIDs() {
		if err = s.Memories[id].Remember(ctx, event, memory.TagBreakingNews); err != nil {
			e.logger.LogAttrs(ctx, slog.LevelWarn, "dynamic event not remembered",
				slog.Int("suspect_id", id), errors.SlogError(err))
		}
	}
	e.logger.LogAttrs(ctx, slog.LevelInfo, "dynamic event fired", slog.String("event", event))
	return event, true
}

// firstLine returns the first non-blank line of text without surrounding quotes.
func firstLine(text string) string {
	for line := range strings.SplitSeq(text, "\n") {
		if line = strings.Trim(strings.TrimSpace(line), `"`); line != "" {
			return line
		}
	}
	return ""
}
