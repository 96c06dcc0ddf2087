package lifecycle

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golazo-dev/golazo/internal/fixtures"
	"github.com/golazo-dev/golazo/pkg/types"
)

// stubSource returns a fixed document set or error.
type stubSource struct {
	mu   sync.Mutex
	docs []types.Document
	err  error
}

func (s *stubSource) FetchDocuments(context.Context) ([]types.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs, s.err
}

func (s *stubSource) set(docs []types.Document, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs, s.err = docs, err
}

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func testManager(t *testing.T, source DocumentSource) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	indexPath := filepath.Join(dir, "vector_store", "index")
	m := NewManager(types.IndexConfig{IndexPath: indexPath}, source, "UTC", io.Discard)
	m.now = func() time.Time { return testNow }
	return m, indexPath
}

func leagueDocs() []types.Document {
	return []types.Document{
		{Content: "⚽ Boca Juniors vs River Plate | Liga Profesional Argentina (Argentina) | 17:00 (ARG)",
			Metadata: map[string]any{"league": "Liga Profesional Argentina (Argentina)"}},
		{Content: "⚽ Sevilla vs Real Betis | La Liga (Spain) | 16:00 (ARG)",
			Metadata: map[string]any{"league": "La Liga (Spain)"}},
	}
}

// --- freshness tests ---

func TestIsCurrentAbsentRecord(t *testing.T) {
	m, _ := testManager(t, &stubSource{})
	if m.IsCurrent() {
		t.Error("IsCurrent() = true with no metadata file")
	}
}

func TestIsCurrentMalformedRecord(t *testing.T) {
	m, indexPath := testManager(t, &stubSource{})
	metaPath := MetadataPath(indexPath)
	if err := os.MkdirAll(filepath.Dir(metaPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(metaPath, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if m.IsCurrent() {
		t.Error("IsCurrent() = true with malformed metadata")
	}
}

func TestIsCurrentStaleAndFresh(t *testing.T) {
	m, indexPath := testManager(t, &stubSource{})
	metaPath := MetadataPath(indexPath)

	if err := WriteRecord(metaPath, Record{LastUpdate: "2026-03-13", Source: "api-football", Documents: 2}); err != nil {
		t.Fatal(err)
	}
	if m.IsCurrent() {
		t.Error("IsCurrent() = true for yesterday's record")
	}

	if err := WriteRecord(metaPath, Record{LastUpdate: "2026-03-14", Source: "api-football", Documents: 2}); err != nil {
		t.Fatal(err)
	}
	if !m.IsCurrent() {
		t.Error("IsCurrent() = false for today's record")
	}
}

func TestIsCurrentUnparseableDate(t *testing.T) {
	m, indexPath := testManager(t, &stubSource{})
	if err := WriteRecord(MetadataPath(indexPath), Record{LastUpdate: "not-a-date"}); err != nil {
		t.Fatal(err)
	}
	if m.IsCurrent() {
		t.Error("IsCurrent() = true for unparseable date")
	}
}

// --- rebuild tests ---

func TestRebuildWritesRecordAndServesSearch(t *testing.T) {
	m, indexPath := testManager(t, &stubSource{docs: leagueDocs()})

	if err := m.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}

	rec, err := ReadRecord(MetadataPath(indexPath))
	if err != nil {
		t.Fatal(err)
	}
	if rec.LastUpdate != "2026-03-14" {
		t.Errorf("LastUpdate = %q", rec.LastUpdate)
	}
	if rec.Source != fixtures.SourceName {
		t.Errorf("Source = %q", rec.Source)
	}
	if rec.Documents != 2 {
		t.Errorf("Documents = %d, want 2", rec.Documents)
	}
	if !m.IsCurrent() {
		t.Error("IsCurrent() = false after rebuild")
	}

	got := m.Search("partidos de La Liga", 1)
	if len(got) != 1 || !strings.Contains(got[0].Content, "Sevilla") {
		t.Errorf("Search = %+v", got)
	}
}

func TestRebuildEmptySourceIndexesPlaceholder(t *testing.T) {
	m, indexPath := testManager(t, &stubSource{docs: nil})

	if err := m.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}

	rec, err := ReadRecord(MetadataPath(indexPath))
	if err != nil {
		t.Fatal(err)
	}
	if rec.Documents != 1 {
		t.Errorf("Documents = %d, want 1 (placeholder)", rec.Documents)
	}

	got := m.Search("¿qué partidos hay hoy?", 3)
	if len(got) != 1 {
		t.Fatalf("Search returned %d docs, want the placeholder", len(got))
	}
	if got[0].Content != fixtures.PlaceholderContent {
		t.Errorf("content = %q", got[0].Content)
	}
}

func TestRebuildSourceErrorIndexesPlaceholder(t *testing.T) {
	m, _ := testManager(t, &stubSource{err: errors.New("upstream down")})

	if err := m.Rebuild(context.Background()); err != nil {
		t.Fatalf("source failure must not fail the rebuild: %v", err)
	}

	got := m.Search("partidos", 1)
	if len(got) != 1 || got[0].Content != fixtures.PlaceholderContent {
		t.Errorf("Search = %+v", got)
	}
}

func TestRebuildPersistFailureKeepsPreviousIndex(t *testing.T) {
	source := &stubSource{docs: leagueDocs()}
	m, indexPath := testManager(t, source)

	if err := m.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Replace the index directory path with a plain file so Save fails.
	if err := os.RemoveAll(indexPath); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(indexPath, []byte("blocker"), 0o644); err != nil {
		t.Fatal(err)
	}

	source.set([]types.Document{{Content: "⚽ Inter vs Milan | Serie A (Italy) | 15:00 (ARG)"}}, nil)
	if err := m.Rebuild(context.Background()); err == nil {
		t.Fatal("expected persistence error")
	}

	// The previous index remains authoritative.
	got := m.Search("Boca Juniors", 1)
	if len(got) != 1 || !strings.Contains(got[0].Content, "Boca Juniors") {
		t.Errorf("previous index not serving: %+v", got)
	}
}

// --- initialization and search tests ---

func TestSearchBeforeInitializeReturnsEmpty(t *testing.T) {
	m, _ := testManager(t, &stubSource{docs: leagueDocs()})
	if got := m.Search("Boca", 3); len(got) != 0 {
		t.Errorf("Search before initialize = %+v, want empty", got)
	}
}

func TestSearchLazyLoadsPersistedIndex(t *testing.T) {
	source := &stubSource{docs: leagueDocs()}
	first, indexPath := testManager(t, source)
	if err := first.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}

	// A fresh manager over the same path loads on first search.
	second := NewManager(types.IndexConfig{IndexPath: indexPath}, source, "UTC", io.Discard)
	second.now = func() time.Time { return testNow }

	got := second.Search("La Liga", 1)
	if len(got) != 1 || !strings.Contains(got[0].Content, "Sevilla") {
		t.Errorf("Search = %+v", got)
	}
}

func TestInitializeBackgroundLoadsCurrentIndex(t *testing.T) {
	source := &stubSource{docs: leagueDocs()}
	first, indexPath := testManager(t, source)
	if err := first.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Fail any fetch: initialization must prefer the fresh persisted index.
	second := NewManager(types.IndexConfig{IndexPath: indexPath},
		&stubSource{err: errors.New("should not be called")}, "UTC", io.Discard)
	second.now = func() time.Time { return testNow }

	second.Initialize(context.Background())
	select {
	case <-second.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("initialization did not finish")
	}

	got := second.Search("Boca", 1)
	if len(got) != 1 || !strings.Contains(got[0].Content, "Boca") {
		t.Errorf("Search = %+v", got)
	}
}

func TestInitializeRebuildsStaleIndex(t *testing.T) {
	source := &stubSource{docs: leagueDocs()}
	m, indexPath := testManager(t, source)
	if err := m.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Next day: the record is stale, initialization rebuilds.
	next := NewManager(types.IndexConfig{IndexPath: indexPath}, source, "UTC", io.Discard)
	next.now = func() time.Time { return testNow.Add(24 * time.Hour) }

	next.Initialize(context.Background())
	<-next.Ready()

	rec, err := next.Status()
	if err != nil {
		t.Fatal(err)
	}
	if rec.LastUpdate != "2026-03-15" {
		t.Errorf("LastUpdate = %q, want 2026-03-15", rec.LastUpdate)
	}
}

func TestInitializeRunsOnce(t *testing.T) {
	m, _ := testManager(t, &stubSource{docs: leagueDocs()})
	ctx := context.Background()
	m.Initialize(ctx)
	m.Initialize(ctx)
	<-m.Ready()
}

func TestConcurrentSearchDuringRebuildObservesCompleteIndex(t *testing.T) {
	source := &stubSource{docs: leagueDocs()}
	m, _ := testManager(t, source)
	if err := m.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}

	source.set([]types.Document{
		{Content: "⚽ Inter vs Milan | Serie A (Italy) | 15:00 (ARG)"},
		{Content: "⚽ Roma vs Lazio | Serie A (Italy) | 17:00 (ARG)"},
	}, nil)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			got := m.Search("partidos", 5)
			// Either the full old set or the full new set, never a mix.
			if len(got) != 2 {
				t.Errorf("observed partial index: %d docs", len(got))
				return
			}
			old := strings.Contains(got[0].Content, "Boca") || strings.Contains(got[0].Content, "Sevilla")
			for _, d := range got[1:] {
				sameOld := strings.Contains(d.Content, "Boca") || strings.Contains(d.Content, "Sevilla")
				if sameOld != old {
					t.Errorf("observed mixed index: %+v", got)
					return
				}
			}
		}
	}()

	for i := 0; i < 3; i++ {
		if err := m.Rebuild(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	close(stop)
	wg.Wait()
}
