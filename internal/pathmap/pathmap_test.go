package pathmap

import (
	"errors"
	"path"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		p        string
		root     string
		segments []string
		want     string
	}{
		{name: "absolute unchanged", p: "/Shared/etl", root: "/Users/me", want: "/Shared/etl"},
		{name: "absolute with trailing slash unchanged", p: "/Shared/etl/", root: "/Users/me", want: "/Shared/etl/"},
		{name: "relative joined", p: "etl", root: "/Users/me", want: "/Users/me/etl"},
		{name: "relative with dot prefix", p: "./etl", root: "/Users/me", want: "/Users/me/etl"},
		{name: "empty root", p: "etl", root: "", want: "etl"},
		{name: "segments appended", p: "/Shared", root: "/Users/me", segments: []string{"./a", "b.py"}, want: "/Shared/a/b.py"},
		{name: "relative plus segments", p: "proj", root: "/Users/me", segments: []string{"sub/nb"}, want: "/Users/me/proj/sub/nb"},
		{name: "absolute segment restarts", p: "/Shared/proj/foo", root: "/Shared", segments: []string{"/Shared/proj/foo"}, want: "/Shared/proj/foo"},
		{name: "later segments follow absolute one", p: "proj", root: "/Shared", segments: []string{"/Repos/x", "./nb"}, want: "/Repos/x/nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.p, tt.root, tt.segments...); got != tt.want {
				t.Errorf("Resolve(%q, %q, %q) = %q, want %q", tt.p, tt.root, tt.segments, got, tt.want)
			}
		})
	}
}

func TestResolve_JoinProperty(t *testing.T) {
	roots := []string{"", "/", "/Users/me", "/Users/me/", "rel/root"}
	paths := []string{"a", "a/b", "nb.py", "x/y/z", "dir/"}

	for _, root := range roots {
		for _, p := range paths {
			if got := Resolve(p, root); got != path.Join(root, p) {
				t.Errorf("Resolve(%q, %q) = %q, want %q", p, root, got, path.Join(root, p))
			}
			if got := Resolve("/"+p, root); got != "/"+p {
				t.Errorf("Resolve(%q, %q) = %q, want unchanged", "/"+p, root, got)
			}
		}
	}
}

func TestHasMagic(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{"plain", false},
		{"/Users/me/nb", false},
		{"*.py", true},
		{"nb?", true},
		{"nb[0-9]", true},
		{"**/x", true},
		{"a]b", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.s, func(t *testing.T) {
			if got := HasMagic(tt.s); got != tt.want {
				t.Errorf("HasMagic(%q) = %v, want %v", tt.s, got, tt.want)
			}
		})
	}
}

func TestHasRecursiveMarker(t *testing.T) {
	if !HasRecursiveMarker("src/**/*.py") {
		t.Error("expected marker in src/**/*.py")
	}
	if HasRecursiveMarker("src/*.py") {
		t.Error("unexpected marker in src/*.py")
	}
}

func TestTrimRecursiveMarker(t *testing.T) {
	tests := map[string]string{
		"/Shared/etl":       "/Shared/etl",
		"/Shared/**":        "/Shared",
		"/Shared/**/daily":  "/Shared/daily",
		"/**":               "/",
		"**":                ".",
		"notebooks/**/x.py": "notebooks/x.py",
	}
	for in, want := range tests {
		if got := TrimRecursiveMarker(in); got != want {
			t.Errorf("TrimRecursiveMarker(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSplitPattern(t *testing.T) {
	tests := []struct {
		name        string
		p           string
		wantDir     string
		wantPattern string
		wantOK      bool
	}{
		{name: "no magic", p: "/Users/me/etl", wantDir: "/Users/me/etl", wantOK: false},
		{name: "pattern", p: "/Users/me/etl/*.py", wantDir: "/Users/me/etl", wantPattern: "*.py", wantOK: true},
		{name: "root pattern", p: "/nb*", wantDir: "/", wantPattern: "nb*", wantOK: true},
		{name: "bare pattern", p: "nb?", wantDir: "", wantPattern: "nb?", wantOK: true},
		{name: "magic only in dir", p: "/a*/b", wantDir: "/a*/b", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, pattern, ok := SplitPattern(tt.p)
			if ok != tt.wantOK || dir != tt.wantDir || pattern != tt.wantPattern {
				t.Errorf("SplitPattern(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.p, dir, pattern, ok, tt.wantDir, tt.wantPattern, tt.wantOK)
			}
		})
	}
}

func TestLocalPattern(t *testing.T) {
	tests := []struct {
		name      string
		p         string
		recursive bool
		absolute  bool
		want      string
		wantErr   error
	}{
		{name: "plain file", p: "nb.py", want: "nb.py"},
		{name: "pattern non recursive", p: "*.py", want: "*.py"},
		{name: "pattern recursive", p: "*.py", recursive: true, want: "./**/*.py"},
		{name: "dot dir recursive", p: "./*.py", recursive: true, want: "./**/*.py"},
		{name: "subdir recursive untouched", p: "src/*.py", recursive: true, want: "src/*.py"},
		{name: "plain name recursive untouched", p: "src", recursive: true, want: "src"},
		{name: "absolute rerooted", p: "./src/*.py", absolute: true, want: "/work/src/*.py"},
		{name: "absolute recursive", p: "*.py", recursive: true, absolute: true, want: "/work/**/*.py"},
		{name: "parent rejected", p: "../other/*.py", wantErr: ErrParentTraversal},
		{name: "nested parent rejected", p: "src/../../x.py", wantErr: ErrParentTraversal},
		{name: "dotdot prefix name allowed", p: "..hidden.py", want: "..hidden.py"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LocalPattern(tt.p, tt.recursive, tt.absolute, "/work")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("LocalPattern(%q): %v", tt.p, err)
			}
			if got != tt.want {
				t.Errorf("LocalPattern(%q) = %q, want %q", tt.p, got, tt.want)
			}
		})
	}
}

func TestMatchBase(t *testing.T) {
	tests := []struct {
		name    string
		entry   string
		pattern string
		want    bool
	}{
		{name: "empty pattern", entry: "/a/b", pattern: "", want: true},
		{name: "star", entry: "/Users/me/etl_job", pattern: "etl*", want: true},
		{name: "directory ignored", entry: "/etl/job", pattern: "etl*", want: false},
		{name: "question mark", entry: "nb1", pattern: "nb?", want: true},
		{name: "class", entry: "/x/nb7", pattern: "nb[0-9]", want: true},
		{name: "class miss", entry: "/x/nbx", pattern: "nb[0-9]", want: false},
		{name: "folder trailing slash", entry: "/x/data/", pattern: "d*", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchBase(tt.entry, tt.pattern); got != tt.want {
				t.Errorf("MatchBase(%q, %q) = %v, want %v", tt.entry, tt.pattern, got, tt.want)
			}
		})
	}
}

func TestCompileBase(t *testing.T) {
	m, err := CompileBase("*_job")
	if err != nil {
		t.Fatalf("CompileBase: %v", err)
	}
	for name, want := range map[string]bool{
		"/Shared/etl_job":    true,
		"/Shared/etl_job/":   true,
		"/Shared/etl_job/nb": false,
		"report":             false,
	} {
		if got := m.Match(name); got != want {
			t.Errorf("Match(%q) = %v, want %v", name, got, want)
		}
	}

	var zero BaseMatcher
	if !zero.Match("/anything") {
		t.Error("zero matcher should match everything")
	}

	if _, err := CompileBase("nb[0-"); err == nil {
		t.Error("expected error for malformed pattern")
	}
	if MatchBase("nb1", "nb[0-") {
		t.Error("malformed pattern should match nothing")
	}
}
