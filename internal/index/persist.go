// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/golazo-dev/golazo/pkg/types"
)

const dbFile = "index.db"

// ErrNoIndex reports that the index artifact file is absent. Callers
// distinguish it from a corrupt artifact with errors.Is.
var ErrNoIndex = errors.New("index artifacts not found")

// embedderState is the serialized vectorizer model, stored as YAML in the
// model table. Terms are in vocabulary order, aligned with IDF.
type embedderState struct {
	Terms []string  `yaml:"terms"`
	IDF   []float64 `yaml:"idf"`
}

// Save persists the index to dir/index.db, replacing any previous
// artifact. The write targets a temporary file that is renamed into
// place so a crashed save never leaves a half-written artifact behind.
func (ix *Index) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	tmpPath := filepath.Join(dir, dbFile+".tmp")
	os.Remove(tmpPath)

	db, err := sql.Open("sqlite3", tmpPath+"?_journal_mode=WAL")
	if err != nil {
		return fmt.Errorf("opening index database: %w", err)
	}

	if err := ix.writeArtifact(db); err != nil {
		db.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("closing index database: %w", err)
	}

	if err := os.Rename(tmpPath, filepath.Join(dir, dbFile)); err != nil {
		return fmt.Errorf("replacing index artifact: %w", err)
	}
	return nil
}

func (ix *Index) writeArtifact(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			content TEXT NOT NULL,
			metadata TEXT,
			vector TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS model (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO documents (content, metadata, vector) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, d := range ix.docs {
		metaJSON, _ := json.Marshal(d.Metadata)
		vecJSON, _ := json.Marshal(ix.vectors[i])
		if _, err := stmt.Exec(d.Content, string(metaJSON), string(vecJSON)); err != nil {
			return fmt.Errorf("inserting document %d: %w", i, err)
		}
	}

	state := embedderState{IDF: ix.emb.idf}
	state.Terms = make([]string, ix.emb.dimension)
	for term, idx := range ix.emb.vocabulary {
		state.Terms[idx] = term
	}
	modelYAML, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshaling embedder state: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT OR REPLACE INTO model (key, value) VALUES ('embedder', ?)`, modelYAML,
	); err != nil {
		return fmt.Errorf("writing embedder state: %w", err)
	}

	return tx.Commit()
}

// Load reads the index artifact from dir/index.db. It returns an error
// wrapping ErrNoIndex when the artifact is absent, and a descriptive
// error when it is malformed.
func Load(dir string) (*Index, error) {
	path := filepath.Join(dir, dbFile)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoIndex, path)
		}
		return nil, fmt.Errorf("stat index artifact: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}
	defer db.Close()

	var modelYAML []byte
	err = db.QueryRow(`SELECT value FROM model WHERE key = 'embedder'`).Scan(&modelYAML)
	if err != nil {
		return nil, fmt.Errorf("reading embedder state: %w", err)
	}

	var state embedderState
	if err := yaml.Unmarshal(modelYAML, &state); err != nil {
		return nil, fmt.Errorf("parsing embedder state: %w", err)
	}
	if len(state.Terms) != len(state.IDF) {
		return nil, fmt.Errorf("malformed embedder state: %d terms, %d idf values",
			len(state.Terms), len(state.IDF))
	}

	emb := &embedder{
		vocabulary: make(map[string]int, len(state.Terms)),
		idf:        state.IDF,
		dimension:  len(state.Terms),
	}
	for i, term := range state.Terms {
		emb.vocabulary[term] = i
	}

	rows, err := db.Query(`SELECT content, metadata, vector FROM documents ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("reading documents: %w", err)
	}
	defer rows.Close()

	ix := &Index{emb: emb}
	for rows.Next() {
		var content string
		var metaJSON, vecJSON sql.NullString
		if err := rows.Scan(&content, &metaJSON, &vecJSON); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}

		doc := types.Document{Content: content}
		if metaJSON.Valid && metaJSON.String != "" {
			if err := json.Unmarshal([]byte(metaJSON.String), &doc.Metadata); err != nil {
				return nil, fmt.Errorf("parsing document metadata: %w", err)
			}
		}

		var vec []float64
		if err := json.Unmarshal([]byte(vecJSON.String), &vec); err != nil {
			return nil, fmt.Errorf("parsing document vector: %w", err)
		}

		ix.docs = append(ix.docs, doc)
		ix.vectors = append(ix.vectors, vec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading documents: %w", err)
	}
	if len(ix.docs) == 0 {
		return nil, fmt.Errorf("malformed index artifact: no documents")
	}

	return ix, nil
}
