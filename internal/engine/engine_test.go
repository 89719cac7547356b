package engine_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/myrjola/coldcase/internal/ai"
	"github.com/myrjola/coldcase/internal/engine"
	"github.com/myrjola/coldcase/internal/errors"
	"github.com/myrjola/coldcase/internal/guard"
	"github.com/myrjola/coldcase/internal/memory"
	"github.com/myrjola/coldcase/internal/testhelpers"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type step struct {
	text string
	err  error
}

type request struct {
	messages []ai.Message
	opts     ai.Options
}

// scriptedGenerator answers requests from a fixed script and records them.
type scriptedGenerator struct {
	script   []step
	requests []request
}

func (g *scriptedGenerator) Generate(_ context.Context, messages []ai.Message, opts ai.Options) (string, error) {
	g.requests = append(g.requests, request{messages: messages, opts: opts})
	if len(g.requests) > len(g.script) {
		return "", errors.New("script exhausted")
	}
	s := g.script[len(g.requests)-1]
	return s.text, s.err
}

func (g *scriptedGenerator) push(steps ...step) {
	g.script = append(g.script, steps...)
}

func (g *scriptedGenerator) calls() int {
	return len(g.requests)
}

// commitFailingEmbedder fails only when embedding committed exchanges.
type commitFailingEmbedder struct {
	testhelpers.Embedder
}

func (e *commitFailingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.HasPrefix(text, "Q: ") {
		return nil, ai.ErrServiceUnavailable
	}
	return e.Embedder.Embed(ctx, text)
}

var temperatures = engine.Temperatures{Creative: 0.7, Logical: 0.1}

func newEngine(t *testing.T, generator engine.Generator, embedder memory.Embedder) *engine.Engine {
	t.Helper()
	scanner, err := guard.NewMarkerScanner([]string{"I'm sorry", "as an AI", "language model", "mi dispiace"})
	require.NoError(t, err)
	return engine.New(generator, embedder, scanner, temperatures, testhelpers.NewLogger(io.Discard))
}

func newSession(t *testing.T, e *engine.Engine) *engine.Session {
	t.Helper()
	s, err := e.NewSession(t.Context(), "case-1", testhelpers.Scenario())
	require.NoError(t, err)
	return s
}
