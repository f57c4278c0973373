// Package metastore persists the entry collection as a single JSON snapshot.
// The snapshot is always read and written whole; order in the file is the
// display order.
package metastore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kotobacli/kotoba/internal/dict"
)

// Store reads and writes the snapshot at a fixed path.
type Store struct {
	path string
}

// New returns a store backed by the given file path. The file need not exist
// yet; Load treats a missing snapshot as an empty collection.
func New(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted records. A missing snapshot yields an empty list
// and no error. A snapshot that cannot be parsed also yields an empty list,
// with a non-nil error the caller may log; startup must never fail on it.
func (s *Store) Load() ([]dict.Record, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("metastore: read snapshot: %w", err)
	}

	var records []dict.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("metastore: parse snapshot: %w", err)
	}
	return records, nil
}

// Save overwrites the snapshot with the given records.
func (s *Store) Save(records []dict.Record) error {
	if records == nil {
		records = []dict.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("metastore: encode snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("metastore: create directory: %w", err)
	}

	// Temp file plus rename keeps the previous snapshot intact if this
	// write dies halfway.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("metastore: write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("metastore: replace snapshot: %w", err)
	}
	return nil
}
