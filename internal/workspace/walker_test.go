package workspace

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"
)

// mockLister implements Lister for testing.
type mockLister struct {
	listings map[string][]string
	errs     map[string]error
	visited  []string
}

func (m *mockLister) List(_ context.Context, dir string) ([]string, error) {
	m.visited = append(m.visited, dir)
	if err := m.errs[dir]; err != nil {
		return nil, err
	}
	return m.listings[dir], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func sampleTree() *mockLister {
	return &mockLister{
		listings: map[string][]string{
			"/Shared/proj": {
				"NOTEBOOK /Shared/proj/foo PYTHON",
				"DIRECTORY /Shared/proj/bar",
				"LIBRARY /Shared/proj/dep",
				"",
			},
			"/Shared/proj/bar": {
				"NOTEBOOK /Shared/proj/bar/baz SCALA",
				"DIRECTORY /Shared/proj/bar/deep",
			},
			"/Shared/proj/bar/deep": {
				"NOTEBOOK /Shared/proj/bar/deep/etl_job SQL",
				"NOTEBOOK /Shared/proj/bar/deep/report R",
			},
		},
	}
}

func paths(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	return out
}

func walk(t *testing.T, lister Lister, q Query) []Entry {
	t.Helper()
	entries, err := NewWalker(lister, testLogger()).Walk(context.Background(), q)
	if err != nil {
		t.Fatalf("Walk(%+v): %v", q, err)
	}
	return entries
}

func assertPaths(t *testing.T, entries []Entry, want []string) {
	t.Helper()
	if got := paths(entries); !reflect.DeepEqual(got, want) {
		t.Errorf("paths = %q, want %q", got, want)
	}
}

func TestWalk_NonRecursive(t *testing.T) {
	lister := sampleTree()
	entries := walk(t, lister, Query{Path: "/Shared/proj"})

	want := []Entry{
		{Kind: KindFolder, Raw: "DIRECTORY bar", Path: "bar/"},
		{Kind: KindNotebook, Raw: "NOTEBOOK foo PYTHON", Path: "foo", Language: "PYTHON"},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("entries = %+v, want %+v", entries, want)
	}
	if !reflect.DeepEqual(lister.visited, []string{"/Shared/proj"}) {
		t.Errorf("visited %q", lister.visited)
	}
}

func TestWalk_RecursiveVisitsEveryFolder(t *testing.T) {
	lister := sampleTree()
	entries := walk(t, lister, Query{Path: "/Shared/proj", Recursive: true})

	wantVisited := []string{"/Shared/proj", "/Shared/proj/bar", "/Shared/proj/bar/deep"}
	if !reflect.DeepEqual(lister.visited, wantVisited) {
		t.Errorf("visited %q, want %q", lister.visited, wantVisited)
	}
	assertPaths(t, entries, []string{
		"bar/",
		"bar/baz",
		"bar/deep/",
		"bar/deep/etl_job",
		"bar/deep/report",
		"foo",
	})
}

func TestWalk_OmitDirsStillDescends(t *testing.T) {
	entries := walk(t, sampleTree(), Query{Path: "/Shared/proj", Recursive: true, OmitDirs: true})

	assertPaths(t, entries, []string{"bar/baz", "bar/deep/etl_job", "bar/deep/report", "foo"})
	for _, e := range entries {
		if e.Kind != KindNotebook {
			t.Errorf("unexpected %s entry %q", e.Kind, e.Path)
		}
	}
}

func TestWalk_IncludeOther(t *testing.T) {
	entries := walk(t, sampleTree(), Query{Path: "/Shared/proj", IncludeOther: true})

	assertPaths(t, entries, []string{"bar/", "dep (L)", "foo"})
	if entries[1].Kind != KindOther || entries[1].Raw != "LIBRARY dep" {
		t.Errorf("unexpected other entry %+v", entries[1])
	}
}

func TestWalk_Absolute(t *testing.T) {
	entries := walk(t, sampleTree(), Query{Path: "/Shared/proj", Absolute: true})

	assertPaths(t, entries, []string{"/Shared/proj/bar/", "/Shared/proj/foo"})
	if entries[1].Raw != "NOTEBOOK /Shared/proj/foo PYTHON" {
		t.Errorf("raw line changed: %q", entries[1].Raw)
	}
}

func TestWalk_NotebookPath(t *testing.T) {
	lister := &mockLister{
		listings: map[string][]string{
			"/Shared/proj/foo": {"NOTEBOOK /Shared/proj/foo PYTHON"},
		},
	}

	entries := walk(t, lister, Query{Path: "/Shared/proj/foo"})
	want := []Entry{{Kind: KindNotebook, Raw: "NOTEBOOK foo PYTHON", Path: "foo", Language: "PYTHON"}}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("entries = %+v, want %+v", entries, want)
	}

	entries = walk(t, lister, Query{Path: "/Shared/proj/foo", Absolute: true})
	assertPaths(t, entries, []string{"/Shared/proj/foo"})
}

func TestWalk_PatternFiltersByBaseName(t *testing.T) {
	entries := walk(t, sampleTree(), Query{Path: "/Shared/proj/*_job", Recursive: true, OmitDirs: true})

	assertPaths(t, entries, []string{"bar/deep/etl_job"})
	if entries[0].Language != "SQL" {
		t.Errorf("Language = %q, want SQL", entries[0].Language)
	}
}

func TestWalk_InvalidPattern(t *testing.T) {
	lister := sampleTree()
	_, err := NewWalker(lister, testLogger()).Walk(context.Background(), Query{Path: "/Shared/proj/nb[0-"})
	if err == nil {
		t.Fatal("expected error for malformed pattern")
	}
	if len(lister.visited) != 0 {
		t.Errorf("listed %q before rejecting the pattern", lister.visited)
	}
}

func TestWalk_RecursiveMarkerInPath(t *testing.T) {
	lister := sampleTree()
	entries := walk(t, lister, Query{Path: "/Shared/proj/**/*_job", Recursive: true, OmitDirs: true})

	if lister.visited[0] != "/Shared/proj" {
		t.Errorf("walk started at %q", lister.visited[0])
	}
	assertPaths(t, entries, []string{"bar/deep/etl_job"})
}

func TestWalk_ListingFailureIsSkipped(t *testing.T) {
	lister := sampleTree()
	lister.errs = map[string]error{"/Shared/proj/bar": errors.New("boom")}

	entries := walk(t, lister, Query{Path: "/Shared/proj", Recursive: true})

	assertPaths(t, entries, []string{"bar/", "foo"})
	for _, dir := range lister.visited {
		if dir == "/Shared/proj/bar/deep" {
			t.Error("walked below a folder whose listing failed")
		}
	}
}

func TestWalk_NoDuplicates(t *testing.T) {
	lister := &mockLister{
		listings: map[string][]string{
			"/a": {
				"DIRECTORY /a/b",
				"DIRECTORY /a/b",
				"NOTEBOOK /a/nb PYTHON",
				"NOTEBOOK /a/nb PYTHON",
			},
			"/a/b": {"DIRECTORY /a/b"},
		},
	}

	entries := walk(t, lister, Query{Path: "/a", Recursive: true})

	assertPaths(t, entries, []string{"b/", "nb"})
	if !reflect.DeepEqual(lister.visited, []string{"/a", "/a/b"}) {
		t.Errorf("visited %q", lister.visited)
	}
}

func TestWalk_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewWalker(sampleTree(), testLogger())
	if _, err := w.Walk(ctx, Query{Path: "/Shared/proj"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestKind_String(t *testing.T) {
	tests := map[Kind]string{
		KindNotebook: "NOTEBOOK",
		KindFolder:   "FOLDER",
		KindOther:    "OTHER",
		Kind(42):     "UNKNOWN",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(k), got, want)
		}
	}
}
