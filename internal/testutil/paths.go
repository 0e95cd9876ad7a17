package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// FindProjectRoot walks up from the caller's source file to the directory
// holding go.mod
func FindProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(1)
	if !ok {
		return "", fmt.Errorf("failed to get caller information")
	}

	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found in any parent directory")
		}
		dir = parent
	}
}

// TestdataPath returns the absolute path of name under the testdata
// directory of the package at rel, relative to the project root
func TestdataPath(rel, name string) (string, error) {
	root, err := FindProjectRoot()
	if err != nil {
		return "", err
	}
	p := filepath.Join(root, filepath.FromSlash(rel), "testdata", name)
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("testdata %s: %w", name, err)
	}
	return p, nil
}
