// Package memory implements the per-character semantic memory: an embedding-indexed, append-only log of short
// texts used to ground generated dialogue.
package memory

import (
	"cmp"
	"context"
	"log/slog"
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/myrjola/coldcase/internal/errors"
)

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Tag categorises an entry.
type Tag string

const (
	TagChat         Tag = "chat"
	TagForensic     Tag = "forensic"
	TagBreakingNews Tag = "breaking-news"
)

// Entry is a single remembered text. Entries are never mutated or deleted.
type Entry struct {
	ID     uuid.UUID
	Text   string
	Tag    Tag
	Vector []float32
}

// Store is the memory of exactly one character. Characters never share a Store.
type Store struct {
	owner    int
	embedder Embedder
	entries  []Entry
}

// New creates an empty Store owned by the character with id owner.
func New(owner int, embedder Embedder) *Store {
	return &Store{
		owner:    owner,
		embedder: embedder,
		entries:  nil,
	}
}

// Owner returns the id of the character owning the store.
func (s *Store) Owner() int {
	return s.owner
}

// Remember embeds text and appends it. Embedding failures are returned so that callers can decide whether to
// degrade or abort. Blank text is ignored.
func (s *Store) Remember(ctx context.Context, text string, tag Tag) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return errors.Wrap(err, "embed memory", slog.Int("owner", s.owner), slog.String("tag", string(tag)))
	}
	s.entries = append(s.entries, Entry{
		ID:     uuid.New(),
		Text:   text,
		Tag:    tag,
		Vector: vector,
	})
	return nil
}

// Recall returns up to k remembered texts most similar to query by cosine similarity, best first. Ties keep
// insertion order. An empty store returns no texts without embedding the query.
func (s *Store) Recall(ctx context.Context, query string, k int) ([]string, error) {
	if len(s.entries) == 0 || k <= 0 {
		return []string{}, nil
	}
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "embed query", slog.Int("owner", s.owner))
	}

	type scored struct {
		text  string
		score float64
	}
	candidates := make([]scored, len(s.entries))
	for i, entry := range s.entries {
		candidates[i] = scored{text: entry.Text, score: CosineSimilarity(vector, entry.Vector)}
	}
	slices.SortStableFunc(candidates, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	texts := make([]string, 0, min(k, len(candidates)))
	for _, c := range candidates[:min(k, len(candidates))] {
		texts = append(texts, c.text)
	}
	return texts, nil
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the entries in insertion order.
func (s *Store) Entries() []Entry {
	return slices.Clone(s.entries)
}

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns 0 if the lengths differ or either vector is empty or zero-norm.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		ai, bi := float64(a[i]), float64(b[i])
		dot += ai * bi
		normA += ai * ai
		normB += bi * bi
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
