// Package pathmap translates user-supplied paths into canonical workspace
// paths and local glob patterns.
//
// Workspace paths always use "/" as separator. A relative workspace path is
// placed under the configured root; an absolute one is used as given.
package pathmap

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// Separator is the workspace path separator
const Separator = "/"

// RecursiveMarker in any path implies recursive mode
const RecursiveMarker = "**"

// ErrParentTraversal is returned for local paths that climb out of the
// current directory.
var ErrParentTraversal = errors.New("paths with `..` are not supported")

// Resolve returns the absolute workspace path for p. Relative paths are
// joined under root. Extra segments are appended with any leading "./"
// removed; an absolute segment discards everything before it.
func Resolve(p, root string, segments ...string) string {
	base := p
	if !strings.HasPrefix(p, Separator) {
		base = path.Join(root, p)
	}
	if len(segments) == 0 {
		return base
	}

	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, base)
	for _, s := range segments {
		if strings.HasPrefix(s, Separator) {
			parts = parts[:0]
		}
		parts = append(parts, strings.TrimPrefix(s, "./"))
	}
	return path.Join(parts...)
}

// HasMagic reports whether s contains a glob metacharacter (?, * or [).
func HasMagic(s string) bool {
	return strings.ContainsAny(s, "?*[")
}

// HasRecursiveMarker reports whether s contains the ** wildcard
func HasRecursiveMarker(s string) bool {
	return strings.Contains(s, RecursiveMarker)
}

// TrimRecursiveMarker removes ** elements from p. The directories they
// stand for are reached by recursion instead.
func TrimRecursiveMarker(p string) string {
	if !HasRecursiveMarker(p) {
		return p
	}
	elems := strings.Split(p, Separator)
	kept := elems[:0]
	for _, e := range elems {
		if e != RecursiveMarker {
			kept = append(kept, e)
		}
	}
	out := strings.Join(kept, Separator)
	if out == "" && strings.HasPrefix(p, Separator) {
		return Separator
	}
	return path.Clean(out)
}

// SplitPattern splits p into its containing directory and file-name pattern
// when the last element has magic. ok is false when p has no pattern.
func SplitPattern(p string) (dir, pattern string, ok bool) {
	dir, pattern = path.Split(p)
	if !HasMagic(pattern) {
		return p, "", false
	}
	if dir != Separator {
		dir = strings.TrimSuffix(dir, Separator)
	}
	return dir, pattern, true
}

// LocalPattern prepares a local path for glob expansion.
//
// Paths containing a ".." element are rejected. In recursive mode a file
// pattern without a directory (or with ".") is rewritten to search every
// subdirectory. When absolute is set, "./"-relative paths are re-rooted
// under cwd.
func LocalPattern(p string, recursive, absolute bool, cwd string) (string, error) {
	slashed := filepath.ToSlash(p)
	for _, elem := range strings.Split(slashed, "/") {
		if elem == ".." {
			return "", ErrParentTraversal
		}
	}

	dir, name := path.Split(slashed)
	dir = strings.TrimSuffix(dir, "/")

	if recursive && (dir == "" || dir == ".") && HasMagic(name) {
		dir = "./" + RecursiveMarker
	}

	local := name
	if dir != "" {
		local = dir + "/" + name
	}

	if absolute && strings.HasPrefix(local, "./") {
		local = filepath.ToSlash(filepath.Join(cwd, local[2:]))
	}

	return local, nil
}

// BaseMatcher matches the base name of workspace paths against a shell
// pattern. The zero value matches everything.
type BaseMatcher struct {
	g glob.Glob
}

// CompileBase compiles pattern once for repeated base-name matching.
// An empty pattern matches everything.
func CompileBase(pattern string) (BaseMatcher, error) {
	if pattern == "" {
		return BaseMatcher{}, nil
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return BaseMatcher{}, fmt.Errorf("invalid name pattern %q: %w", pattern, err)
	}
	return BaseMatcher{g: g}, nil
}

// Match reports whether the base name of name matches
func (m BaseMatcher) Match(name string) bool {
	if m.g == nil {
		return true
	}
	return m.g.Match(path.Base(strings.TrimSuffix(name, Separator)))
}

// MatchBase reports whether the base name of name matches the shell pattern.
// An empty pattern matches everything. Malformed patterns match nothing.
func MatchBase(name, pattern string) bool {
	m, err := CompileBase(pattern)
	if err != nil {
		return false
	}
	return m.Match(name)
}
