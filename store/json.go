package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/optfolio/optfolio"
)

// JSONStore persists positions as a single human-readable JSON document.
// Writes go to a temporary file first and are renamed into place, so a
// killed run never leaves a half-written store behind.
type JSONStore struct {
	path string
}

// NewJSONStore opens a JSON document store at path. The file does not need
// to exist yet.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// document is the on-disk shape of the store.
type document struct {
	RunID     string              `json:"runId,omitempty"`
	Positions []optfolio.Position `json:"positions"`
}

func (s *JSONStore) Snapshot() (optfolio.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return optfolio.NewSnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read position store %q: %w", s.path, err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("cannot parse position store %q: %w", s.path, err)
	}
	return optfolio.NewSnapshot(doc.Positions...), nil
}

func (s *JSONStore) Apply(runID string, r optfolio.MergeResult) error {
	snap, err := s.Snapshot()
	if err != nil {
		return err
	}
	next := snap.Apply(r)

	doc := document{RunID: runID, Positions: slices.Collect(next.Positions())}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode position store: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".positions-*.json")
	if err != nil {
		return fmt.Errorf("cannot create temporary store file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("cannot write position store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot close position store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("cannot commit position store: %w", err)
	}
	return nil
}

func (s *JSONStore) Close() error { return nil }

var _ Store = (*JSONStore)(nil)
