// Package savegame persists session snapshots as JSON files in a directory.
package savegame

import (
	"encoding/json"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/myrjola/coldcase/internal/errors"
	"github.com/myrjola/coldcase/internal/models"
)

const extension = ".json"

// ErrNotFound is returned when loading a save that does not exist.
var ErrNotFound = errors.NewSentinel("save not found")

// Store keeps one file per save in dir.
type Store struct {
	dir string
	now func() time.Time
}

func New(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// List returns the save names in lexical order. A missing directory has no saves.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read saves dir", slog.String("dir", s.dir))
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != extension {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), extension))
	}
	slices.Sort(names)
	return names, nil
}

// Save writes snapshot under name, replacing an existing save of the same name. A blank name is derived from the
// victim and the current time. The used name is returned.
func (s *Store) Save(name string, snapshot models.Snapshot) (string, error) {
	name = Slug(name)
	if name == "" {
		name = Slug(snapshot.Scenario.Victim + " " + s.now().Format("20060102-150405"))
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "marshal snapshot")
	}
	if err = os.MkdirAll(s.dir, 0o750); err != nil {
		return "", errors.Wrap(err, "create saves dir", slog.String("dir", s.dir))
	}

	// Replace atomically.
	path := s.path(name)
	tmp := path + ".tmp"
	if err = os.WriteFile(tmp, data, 0o600); err != nil {
		return "", errors.Wrap(err, "write save", slog.String("path", tmp))
	}
	if err = os.Rename(tmp, path); err != nil {
		return "", errors.Wrap(err, "rename save", slog.String("path", path))
	}
	return name, nil
}

// Load reads the save called name.
func (s *Store) Load(name string) (models.Snapshot, error) {
	var snapshot models.Snapshot
	path := s.path(Slug(name))
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return snapshot, errors.Wrap(ErrNotFound, "load save", slog.String("name", name))
	}
	if err != nil {
		return snapshot, errors.Wrap(err, "read save", slog.String("path", path))
	}
	if err = json.Unmarshal(data, &snapshot); err != nil {
		return snapshot, errors.Wrap(err, "unmarshal save", slog.String("path", path))
	}
	return snapshot, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+extension)
}

// Slug lowercases name and keeps only letters, digits and single dashes.
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSuffix(strings.TrimSpace(name), extension)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
