package memory_test

import (
	"context"
	"testing"

	"github.com/myrjola/coldcase/internal/errors"
	"github.com/myrjola/coldcase/internal/memory"
	"github.com/myrjola/coldcase/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func TestStore_RememberAndRecall(t *testing.T) {
	ctx := context.Background()
	embedder := &testhelpers.Embedder{}
	store := memory.New(0, embedder)

	texts, err := store.Recall(ctx, "where were you", 2)
	require.NoError(t, err)
	require.Empty(t, texts)
	require.Equal(t, 0, embedder.Calls, "empty store must not embed the query")

	require.NoError(t, store.Remember(ctx, "Time of death: 22:00", memory.TagForensic))
	require.NoError(t, store.Remember(ctx, "Q: where were you at ten R: at the club playing cards", memory.TagChat))
	require.NoError(t, store.Remember(ctx, "The gardener found the body at dawn", memory.TagForensic))
	require.NoError(t, store.Remember(ctx, "   ", memory.TagChat))
	require.Equal(t, 3, store.Len())

	texts, err = store.Recall(ctx, "were you at the club", 2)
	require.NoError(t, err)
	require.Len(t, texts, 2)
	require.Equal(t, "Q: where were you at ten R: at the club playing cards", texts[0])

	texts, err = store.Recall(ctx, "club", 10)
	require.NoError(t, err)
	require.Len(t, texts, 3, "k larger than the store returns everything")

	texts, err = store.Recall(ctx, "club", 0)
	require.NoError(t, err)
	require.Empty(t, texts)

	entries := store.Entries()
	require.Len(t, entries, 3)
	require.Equal(t, memory.TagChat, entries[1].Tag)
	require.NotEqual(t, entries[0].ID, entries[1].ID)
}

func TestStore_Isolation(t *testing.T) {
	ctx := context.Background()
	embedder := &testhelpers.Embedder{}
	first := memory.New(0, embedder)
	second := memory.New(1, embedder)

	require.NoError(t, first.Remember(ctx, "I burned the letter in the fireplace", memory.TagChat))
	require.NoError(t, second.Remember(ctx, "I polished the silver all evening", memory.TagChat))

	for _, query := range []string{"letter", "fireplace", "I burned the letter in the fireplace", "silver"} {
		texts, err := second.Recall(ctx, query, 3)
		require.NoError(t, err)
		require.NotContains(t, texts, "I burned the letter in the fireplace")
	}
	require.Equal(t, 0, first.Owner())
	require.Equal(t, 1, second.Owner())
}

func TestStore_EmbedderFailure(t *testing.T) {
	ctx := context.Background()
	unavailable := errors.NewSentinel("embedding service unreachable")
	embedder := &testhelpers.Embedder{}
	store := memory.New(2, embedder)
	require.NoError(t, store.Remember(ctx, "Time of death: 22:00", memory.TagForensic))

	embedder.Err = unavailable
	err := store.Remember(ctx, "new text", memory.TagChat)
	require.ErrorIs(t, err, unavailable)
	require.Equal(t, 1, store.Len(), "failed write must not append")

	_, err = store.Recall(ctx, "time", 2)
	require.ErrorIs(t, err, unavailable)
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "length mismatch", a: []float32{1}, b: []float32{1, 0}, want: 0},
		{name: "zero norm", a: []float32{0, 0}, b: []float32{1, 0}, want: 0},
		{name: "empty", a: nil, b: nil, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.want, memory.CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}
