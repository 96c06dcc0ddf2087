// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lifecycle

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const metadataFile = "metadata.json"

// Record is the persisted freshness marker written next to the index
// directory after each successful rebuild.
type Record struct {
	// LastUpdate is the calendar date of the last rebuild, "YYYY-MM-DD"
	// in the reference timezone.
	LastUpdate string `json:"last_update"`

	// Source identifies the upstream data source.
	Source string `json:"source"`

	// Documents is the number of documents in the index.
	Documents int `json:"documents"`
}

// MetadataPath returns the freshness record path: a metadata.json sibling
// of the index directory.
func MetadataPath(indexPath string) string {
	return filepath.Join(filepath.Dir(indexPath), metadataFile)
}

// ReadRecord loads the freshness record from path.
func ReadRecord(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("reading freshness record: %w", err)
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("parsing freshness record: %w", err)
	}
	return r, nil
}

// WriteRecord persists the freshness record to path.
func WriteRecord(path string, r Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating metadata directory: %w", err)
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling freshness record: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing freshness record: %w", err)
	}
	return nil
}

// isCurrent reports whether the record marks today's date. A date that
// does not parse is treated as stale.
func (r Record) isCurrent(today string) bool {
	if _, err := time.Parse("2006-01-02", r.LastUpdate); err != nil {
		return false
	}
	return r.LastUpdate == today
}
