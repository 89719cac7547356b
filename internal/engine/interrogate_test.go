package engine_test

import (
	"strings"
	"testing"

	"github.com/myrjola/coldcase/internal/ai"
	"github.com/myrjola/coldcase/internal/engine"
	"github.com/myrjola/coldcase/internal/factstore"
	"github.com/myrjola/coldcase/internal/memory"
	"github.com/myrjola/coldcase/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

const (
	question  = "What time did you learn about the death?"
	candidate = "I was in the greenhouse, tending the orchids."
)

func TestInterrogate(t *testing.T) {
	tests := []struct {
		name        string
		script      []step
		wantText    string
		wantOutcome engine.Outcome
	}{
		{
			name:        "judge finds no contradiction",
			script:      []step{{text: candidate}, {text: "NO"}},
			wantText:    candidate,
			wantOutcome: engine.OutcomeAccepted,
		},
		{
			name:        "affirmative letters inside another word are not a verdict",
			script:      []step{{text: candidate}, {text: "Significant? Not really."}},
			wantText:    candidate,
			wantOutcome: engine.OutcomeAccepted,
		},
		{
			name:        "contradiction corrected",
			script:      []step{{text: candidate}, {text: "YES."}, {text: "I was in my study all evening."}},
			wantText:    "I was in my study all evening.",
			wantOutcome: engine.OutcomeCorrected,
		},
		{
			name: "refusing correction falls back to the first reply",
			script: []step{
				{text: candidate},
				{text: "SI"},
				{text: "I'm sorry, but as an AI language model I cannot role-play a murderer."},
			},
			wantText:    candidate,
			wantOutcome: engine.OutcomeFallback,
		},
		{
			name:        "marker matching ignores case",
			script:      []step{{text: candidate}, {text: "yes"}, {text: "MI DISPIACE, non posso."}},
			wantText:    candidate,
			wantOutcome: engine.OutcomeFallback,
		},
		{
			name:        "blank correction falls back",
			script:      []step{{text: candidate}, {text: "YES"}, {text: "   "}},
			wantText:    candidate,
			wantOutcome: engine.OutcomeFallback,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generator := &scriptedGenerator{script: tt.script} //nolint:exhaustruct // test fake
			e := newEngine(t, generator, &testhelpers.Embedder{}) //nolint:exhaustruct // test fake
			s := newSession(t, e)
			before := s.Memories[0].Len()

			reply, err := e.Interrogate(t.Context(), s, 0, question)
			require.NoError(t, err)
			require.Equal(t, tt.wantText, reply.Text)
			require.Equal(t, tt.wantOutcome, reply.Outcome)
			require.Equal(t, len(tt.script), reply.Calls)
			require.Equal(t, len(tt.script), generator.calls())
			require.LessOrEqual(t, generator.calls(), 3)

			entries := s.Memories[0].Entries()
			require.Len(t, entries, before+1)
			last := entries[len(entries)-1]
			require.Equal(t, memory.TagChat, last.Tag)
			require.Equal(t, "Q: "+question+" A: "+tt.wantText, last.Text)
			require.Zero(t, s.TurnsPlayed)
		})
	}
}

func TestInterrogate_Requests(t *testing.T) {
	generator := &scriptedGenerator{ //nolint:exhaustruct // test fake
		script: []step{{text: candidate}, {text: "YES"}, {text: "I was in my study."}},
	}
	e := newEngine(t, generator, &testhelpers.Embedder{}) //nolint:exhaustruct // test fake
	s := newSession(t, e)

	_, err := e.Interrogate(t.Context(), s, 0, question)
	require.NoError(t, err)

	first := generator.requests[0]
	require.Len(t, first.messages, 1)
	prompt := first.messages[0].Content
	require.Contains(t, prompt, "CULPRIT")
	require.Contains(t, prompt, question)
	require.Contains(t, prompt, "Time of death: 22:00", "recalled forensic memory grounds the prompt")
	require.InDelta(t, 0.7, first.opts.Temperature, 1e-6)

	judge := generator.requests[1]
	require.InDelta(t, 0.1, judge.opts.Temperature, 1e-6)
	for _, fact := range s.Facts.FactsAbout("Oliver Blackwood") {
		require.Contains(t, judge.messages[0].Content, fact)
	}
	require.Contains(t, judge.messages[0].Content, candidate)

	correction := generator.requests[2]
	require.Len(t, correction.messages, 3)
	require.Equal(t, first.messages[0], correction.messages[0], "correction extends the original history")
	require.Equal(t, ai.Message{Role: ai.RoleAssistant, Content: candidate}, correction.messages[1])
	require.Equal(t, ai.RoleUser, correction.messages[2].Role)
	require.Contains(t, correction.messages[2].Content, "Do NOT break character")
}

func TestInterrogate_NoFactsSkipsVerification(t *testing.T) {
	generator := &scriptedGenerator{script: []step{{text: candidate}}} //nolint:exhaustruct // test fake
	e := newEngine(t, generator, &testhelpers.Embedder{})              //nolint:exhaustruct // test fake
	s := newSession(t, e)
	s.Facts = factstore.New()

	reply, err := e.Interrogate(t.Context(), s, 1, question)
	require.NoError(t, err)
	require.Equal(t, engine.OutcomeUnverified, reply.Outcome)
	require.Equal(t, candidate, reply.Text)
	require.Equal(t, 1, generator.calls())
}

func TestInterrogate_ServiceFailures(t *testing.T) {
	tests := []struct {
		name   string
		script []step
	}{
		{name: "generation", script: []step{{err: ai.ErrServiceUnavailable}}},
		{name: "judge", script: []step{{text: candidate}, {err: ai.ErrServiceUnavailable}}},
		{name: "correction", script: []step{{text: candidate}, {text: "YES"}, {err: ai.ErrServiceUnavailable}}},
		{name: "script exhausted", script: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generator := &scriptedGenerator{script: tt.script} //nolint:exhaustruct // test fake
			e := newEngine(t, generator, &testhelpers.Embedder{}) //nolint:exhaustruct // test fake
			s := newSession(t, e)
			before := s.Memories[0].Len()

			result, err := e.Turn(t.Context(), s, 0, question)
			require.ErrorIs(t, err, ai.ErrServiceUnavailable)
			require.Empty(t, result.Reply.Text)
			require.Equal(t, before, s.Memories[0].Len())
			require.Zero(t, s.TurnsPlayed)
		})
	}
}

func TestInterrogate_UnknownSuspect(t *testing.T) {
	generator := &scriptedGenerator{} //nolint:exhaustruct // test fake
	e := newEngine(t, generator, &testhelpers.Embedder{}) //nolint:exhaustruct // test fake
	s := newSession(t, e)

	_, err := e.Interrogate(t.Context(), s, 3, question)
	require.ErrorIs(t, err, engine.ErrUnknownSuspect)
	require.Zero(t, generator.calls())
}

func TestInterrogate_CommitFailureDegrades(t *testing.T) {
	generator := &scriptedGenerator{script: []step{{text: candidate}, {text: "NO"}}} //nolint:exhaustruct // test fake
	e := newEngine(t, generator, &commitFailingEmbedder{})                            //nolint:exhaustruct // test fake
	s := newSession(t, e)
	before := s.Memories[0].Len()

	result, err := e.Turn(t.Context(), s, 0, question)
	require.NoError(t, err)
	require.Equal(t, candidate, result.Reply.Text)
	require.Equal(t, before, s.Memories[0].Len())
	require.Equal(t, 1, s.TurnsPlayed)
}

func TestInterrogate_MemoryIsolation(t *testing.T) {
	const secret = "Zanzibar marmalade sabotage"
	generator := &scriptedGenerator{ //nolint:exhaustruct // test fake
		script: []step{{text: "Nothing to say about " + secret}, {text: "NO"}},
	}
	e := newEngine(t, generator, &testhelpers.Embedder{}) //nolint:exhaustruct // test fake
	s := newSession(t, e)

	_, err := e.Interrogate(t.Context(), s, 0, "Tell me about "+secret)
	require.NoError(t, err)

	recalled, err := s.Memories[0].Recall(t.Context(), secret, engine.RecallK)
	require.NoError(t, err)
	require.Contains(t, recalled[0], secret)

	for _, id := range []int{1, 2} {
		recalled, err = s.Memories[id].Recall(t.Context(), secret, 3)
		require.NoError(t, err)
		for _, text := range recalled {
			require.False(t, strings.Contains(text, secret), "suspect %d recalled another suspect's exchange", id)
		}
	}
}
