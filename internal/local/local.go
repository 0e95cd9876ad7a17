// Package local expands local file patterns the way a shell would, with
// support for the ** wildcard.
package local

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/afero"

	"github.com/schaermu/databricks-sync/internal/pathmap"
)

// Lister lists files on a local filesystem
type Lister struct {
	fs afero.Fs
}

// NewLister creates a lister backed by fsys
func NewLister(fsys afero.Fs) *Lister {
	return &Lister{fs: fsys}
}

// NewOSLister creates a lister backed by the real filesystem
func NewOSLister() *Lister {
	return NewLister(afero.NewOsFs())
}

// Exists reports whether p exists
func (l *Lister) Exists(p string) bool {
	ok, err := afero.Exists(l.fs, filepath.FromSlash(p))
	return err == nil && ok
}

// Glob returns the files matching pattern, cleaned and sorted.
//
// Without recursive, ** behaves like *. A pattern without wildcards names a
// file (returned as is) or a directory (expanded to the files it contains).
// Hidden files and directories are skipped unless the pattern asks for them.
func (l *Lister) Glob(pattern string, recursive bool) ([]string, error) {
	p := path.Clean(filepath.ToSlash(pattern))
	if !pathmap.HasMagic(p) {
		return l.expand(p, recursive)
	}

	if !recursive {
		p = strings.ReplaceAll(p, pathmap.RecursiveMarker, "*")
	}

	matchers, err := compile(p)
	if err != nil {
		return nil, err
	}

	root := staticPrefix(p)
	maxDepth := -1
	if !pathmap.HasRecursiveMarker(p) {
		maxDepth = depth(p) - depth(root)
	}
	showHidden := strings.HasPrefix(path.Base(p), ".")

	var files []string
	err = l.walk(root, maxDepth, showHidden, func(name string) {
		for _, m := range matchers {
			if m.Match(name) {
				files = append(files, name)
				return
			}
		}
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// expand resolves a pattern without wildcards
func (l *Lister) expand(p string, recursive bool) ([]string, error) {
	info, err := l.fs.Stat(filepath.FromSlash(p))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", p, err)
	}
	if !info.IsDir() {
		return []string{p}, nil
	}

	maxDepth := 1
	if recursive {
		maxDepth = -1
	}
	var files []string
	if err := l.walk(p, maxDepth, false, func(name string) {
		files = append(files, name)
	}); err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// walk calls fn with the slash-separated path of every regular file below
// root, descending at most maxDepth levels (unbounded when negative).
func (l *Lister) walk(root string, maxDepth int, showHidden bool, fn func(string)) error {
	info, err := l.fs.Stat(filepath.FromSlash(root))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil
	}

	return afero.Walk(l.fs, filepath.FromSlash(root), func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		name := filepath.ToSlash(p)
		if name == root {
			return nil
		}

		// Skip hidden files and directories (e.g. .git, .gitignore)
		if !showHidden && strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if maxDepth >= 0 && depth(name)-depth(root) >= maxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Mode().IsRegular() {
			fn(name)
		}
		return nil
	})
}

// compile builds the matchers for p. A "**/" element may also stand for no
// directory at all, so a second matcher without it is added.
func compile(p string) ([]glob.Glob, error) {
	variants := []string{p}
	if collapsed := strings.ReplaceAll(p, pathmap.RecursiveMarker+"/", ""); collapsed != p {
		variants = append(variants, collapsed)
	}

	matchers := make([]glob.Glob, 0, len(variants))
	for _, v := range variants {
		g, err := glob.Compile(v, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		matchers = append(matchers, g)
	}
	return matchers, nil
}

// staticPrefix returns the leading elements of p that contain no wildcard
func staticPrefix(p string) string {
	elems := strings.Split(p, "/")
	var static []string
	for _, e := range elems[:len(elems)-1] {
		if pathmap.HasMagic(e) {
			break
		}
		static = append(static, e)
	}
	switch {
	case len(static) == 0:
		return "."
	case len(static) == 1 && static[0] == "":
		return "/"
	}
	return strings.Join(static, "/")
}

// depth counts the elements of a cleaned path
func depth(p string) int {
	if p == "." || p == "/" {
		return 0
	}
	return len(strings.Split(strings.TrimPrefix(p, "/"), "/"))
}
