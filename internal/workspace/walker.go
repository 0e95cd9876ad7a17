package workspace

import (
	"context"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/schaermu/databricks-sync/internal/pathmap"
)

// otherSuffix marks non-notebook objects in display paths
const otherSuffix = " (L)"

// Lister returns the extended, absolute-path listing lines of one workspace directory
type Lister interface {
	List(ctx context.Context, dir string) ([]string, error)
}

// Query describes one walk over the workspace
type Query struct {
	// Path is the resolved absolute workspace path. Its last element may be
	// a name pattern (e.g. /Shared/etl/*_job).
	Path string
	// Recursive descends into every folder found
	Recursive bool
	// IncludeOther keeps objects that are neither notebooks nor folders
	IncludeOther bool
	// OmitDirs drops folder entries from the result (they are still walked)
	OmitDirs bool
	// Absolute keeps absolute workspace paths instead of paths relative to Path
	Absolute bool
}

// Root returns the folder the walk starts from and the name pattern
// entries must match (empty when there is none).
func (q Query) Root() (dir, pattern string) {
	dir, pattern, _ = pathmap.SplitPattern(q.Path)
	return pathmap.TrimRecursiveMarker(dir), pattern
}

// Walker performs a breadth-first traversal of the workspace tree
type Walker struct {
	lister Lister
	logger *slog.Logger
}

// NewWalker creates a walker that lists directories through lister
func NewWalker(lister Lister, logger *slog.Logger) *Walker {
	return &Walker{lister: lister, logger: logger}
}

// Walk lists the workspace starting at q.Path and returns entries sorted by
// display path. A directory whose listing fails is logged and skipped.
func (w *Walker) Walk(ctx context.Context, q Query) ([]Entry, error) {
	start, pattern := q.Root()
	w.logger.Debug("walking workspace", "path", start, "pattern", pattern, "recursive", q.Recursive)

	match, err := pathmap.CompileBase(pattern)
	if err != nil {
		return nil, err
	}

	queue := []string{start}
	queued := map[string]bool{start: true}
	seen := make(map[string]bool)
	var entries []Entry

	add := func(e Entry) {
		if seen[e.Path] {
			return
		}
		seen[e.Path] = true
		entries = append(entries, e)
	}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dir := queue[0]
		queue = queue[1:]

		lines, err := w.lister.List(ctx, dir)
		if err != nil {
			w.logger.Error("workspace listing failed", "path", dir, "error", err)
			continue
		}

		for _, raw := range lines {
			switch l := parseLine(raw).(type) {
			case notebookLine:
				if match.Match(l.path) {
					add(Entry{Kind: KindNotebook, Raw: raw, Path: l.path, Language: l.language})
				}
			case folderLine:
				if !q.OmitDirs {
					add(Entry{Kind: KindFolder, Raw: raw, Path: l.path + pathmap.Separator})
				}
				if q.Recursive && !queued[l.path] {
					queued[l.path] = true
					queue = append(queue, l.path)
				}
			case otherLine:
				if q.IncludeOther && match.Match(l.path) {
					display := raw
					if l.kind != "" {
						display = l.path + otherSuffix
					}
					add(Entry{Kind: KindOther, Raw: raw, Path: display})
				}
			case blankLine:
			}
		}
	}

	if !q.Absolute {
		entries = relativize(entries, start)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})

	w.logger.Debug("workspace walk complete", "path", start, "entries", len(entries))
	return entries, nil
}

// relativize strips root from the raw line and display path of each entry.
// An entry that is root itself (a listed notebook) keeps its base name.
func relativize(entries []Entry, root string) []Entry {
	self := strings.TrimSuffix(root, pathmap.Separator)
	prefix := self + pathmap.Separator
	out := make([]Entry, len(entries))
	for i, e := range entries {
		if e.Path == self && self != "" {
			base := path.Base(self)
			e.Raw = strings.Replace(e.Raw, self, base, 1)
			e.Path = base
		} else {
			e.Raw = strings.Replace(e.Raw, prefix, "", 1)
			e.Path = strings.TrimPrefix(e.Path, prefix)
		}
		out[i] = e
	}
	return out
}
