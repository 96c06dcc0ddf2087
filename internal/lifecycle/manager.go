// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lifecycle owns the authoritative index reference: it decides
// between loading the persisted index and rebuilding from the document
// source, keeps a daily freshness record, and serves searches against an
// atomically swapped index handle.
package lifecycle

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golazo-dev/golazo/internal/fixtures"
	"github.com/golazo-dev/golazo/internal/index"
	"github.com/golazo-dev/golazo/pkg/types"
)

// DocumentSource produces the current day's fixture documents. Tests
// supply a stub; production wires the fixtures client.
type DocumentSource interface {
	FetchDocuments(ctx context.Context) ([]types.Document, error)
}

// Manager maintains exactly one authoritative index, fresh as of today.
// Readers observe either the previous complete index or the new one; the
// reference is swapped atomically and only after a rebuild fully
// persisted its artifacts.
type Manager struct {
	source    DocumentSource
	indexPath string
	metaPath  string
	w         io.Writer

	current   atomic.Pointer[index.Index]
	rebuildMu sync.Mutex
	initOnce  sync.Once
	ready     chan struct{}

	loc *time.Location
	now func() time.Time
}

// NewManager returns a Manager over the given index path. Progress and
// recovered errors are reported to w.
func NewManager(cfg types.IndexConfig, source DocumentSource, timezone string, w io.Writer) *Manager {
	if w == nil {
		w = io.Discard
	}
	path := cfg.IndexPath
	if path == "" {
		path = types.DefaultIndexPath
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	return &Manager{
		source:    source,
		indexPath: path,
		metaPath:  MetadataPath(path),
		w:         w,
		ready:     make(chan struct{}),
		loc:       loc,
		now:       time.Now,
	}
}

// today returns the current calendar date in the reference timezone.
func (m *Manager) today() string {
	return m.now().In(m.loc).Format("2006-01-02")
}

// Initialize launches the load-or-rebuild decision as a background task
// and returns immediately. It runs at most once per Manager; searches
// issued before it completes observe no index rather than blocking.
func (m *Manager) Initialize(ctx context.Context) {
	m.initOnce.Do(func() {
		go func() {
			defer close(m.ready)
			if err := m.loadOrRebuild(ctx); err != nil {
				fmt.Fprintf(m.w, "index initialization failed: %v\n", err)
			}
		}()
	})
}

// Ready returns a channel closed when the background initialization task
// has finished, successfully or not.
func (m *Manager) Ready() <-chan struct{} { return m.ready }

// loadOrRebuild loads the persisted index when it is current, otherwise
// rebuilds. A failed load falls through to a rebuild.
func (m *Manager) loadOrRebuild(ctx context.Context) error {
	if m.IsCurrent() {
		err := m.Load()
		if err == nil {
			return nil
		}
		fmt.Fprintf(m.w, "index load failed, rebuilding: %v\n", err)
	}
	return m.Rebuild(ctx)
}

// Reload re-runs the load-or-rebuild decision on demand: it reuses the
// persisted index when still current and rebuilds otherwise.
func (m *Manager) Reload(ctx context.Context) error {
	return m.loadOrRebuild(ctx)
}

// IsCurrent reads the freshness record and reports whether the persisted
// index was built today. Any read or parse failure counts as stale.
func (m *Manager) IsCurrent() bool {
	rec, err := ReadRecord(m.metaPath)
	if err != nil {
		return false
	}
	return rec.isCurrent(m.today())
}

// Status returns the persisted freshness record.
func (m *Manager) Status() (Record, error) {
	return ReadRecord(m.metaPath)
}

// Load deserializes the persisted index and atomically replaces the
// current reference.
func (m *Manager) Load() error {
	ix, err := index.Load(m.indexPath)
	if err != nil {
		return err
	}
	m.current.Store(ix)
	fmt.Fprintf(m.w, "index loaded: %d documents\n", ix.Len())
	return nil
}

// Rebuild fetches a fresh document set, builds and persists a new index,
// writes the freshness record, and swaps the current reference. A failed
// or empty document source is recovered with a single placeholder
// document; the index is never left empty because of upstream data.
// Build and persistence failures propagate, leaving the previous index
// authoritative. Concurrent rebuilds are serialized.
func (m *Manager) Rebuild(ctx context.Context) error {
	m.rebuildMu.Lock()
	defer m.rebuildMu.Unlock()

	today := m.today()

	docs, err := m.source.FetchDocuments(ctx)
	if err != nil {
		fmt.Fprintf(m.w, "document source unavailable, indexing placeholder: %v\n", err)
		docs = nil
	}
	if len(docs) == 0 {
		docs = []types.Document{fixtures.Placeholder(today)}
	}

	ix, err := index.Build(docs)
	if err != nil {
		return fmt.Errorf("rebuilding index: %w", err)
	}
	if err := ix.Save(m.indexPath); err != nil {
		return fmt.Errorf("persisting index: %w", err)
	}
	if err := WriteRecord(m.metaPath, Record{
		LastUpdate: today,
		Source:     fixtures.SourceName,
		Documents:  ix.Len(),
	}); err != nil {
		return err
	}

	// Swap last: readers see the old index until the new one is complete.
	m.current.Store(ix)
	fmt.Fprintf(m.w, "index rebuilt: %d documents\n", ix.Len())
	return nil
}

// Search delegates to the current index. When no index is resident it
// attempts a synchronous load; if one still is not available it returns
// an empty result set. Search never returns an error to the caller.
func (m *Manager) Search(query string, k int) []types.Document {
	ix := m.current.Load()
	if ix == nil {
		if err := m.Load(); err != nil {
			return nil
		}
		ix = m.current.Load()
	}
	if ix == nil {
		return nil
	}
	return ix.Search(query, k)
}
