// Package guard classifies generated text: it detects out-of-character refusals and parses contradiction verdicts.
package guard

import (
	"log/slog"
	"strings"

	"github.com/coregx/ahocorasick"
	"github.com/myrjola/coldcase/internal/errors"
)

// MarkerScanner finds refusal and break-of-character markers in text, ignoring case.
type MarkerScanner struct {
	patterns []string
	ac       *ahocorasick.Automaton
}

// NewMarkerScanner compiles markers into a single automaton. Blank markers are skipped.
func NewMarkerScanner(markers []string) (*MarkerScanner, error) {
	patterns := make([]string, 0, len(markers))
	seen := map[string]bool{}
	for _, marker := range markers {
		key := normalize(marker)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		patterns = append(patterns, key)
	}

	scanner := &MarkerScanner{patterns: patterns, ac: nil}
	if len(patterns) == 0 {
		return scanner, nil
	}

	automaton, err := ahocorasick.NewBuilder().
		AddStrings(patterns).
		SetMatchKind(ahocorasick.LeftmostLongest).
		Build()
	if err != nil {
		return nil, errors.Wrap(err, "build marker automaton", slog.Int("markers", len(patterns)))
	}
	scanner.ac = automaton
	return scanner, nil
}

// Scan returns the markers found in text in order of appearance, without duplicates.
func (s *MarkerScanner) Scan(text string) []string {
	if s.ac == nil {
		return nil
	}
	var found []string
	seen := map[int]bool{}
	for _, m := range s.ac.FindAllOverlapping([]byte(normalize(text))) {
		if seen[m.PatternID] {
			continue
		}
		seen[m.PatternID] = true
		found = append(found, s.patterns[m.PatternID])
	}
	return found
}

// Contains reports whether text contains any marker.
func (s *MarkerScanner) Contains(text string) bool {
	return len(s.Scan(text)) > 0
}

// normalize folds case and typographic apostrophes so that "I’m Sorry" matches "i'm sorry".
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("’", "'", "‘", "'").Replace(s)
}
