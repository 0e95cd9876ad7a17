package workspace

import (
	"regexp"
	"strings"
)

var (
	reNotebook = regexp.MustCompile(`^NOTEBOOK +(.*) +([A-Z]+)$`)
	reFolder   = regexp.MustCompile(`^DIRECTORY +(.*)$`)
	reOther    = regexp.MustCompile(`^([A-Z]+) +(.*)$`)
)

// line is the classified form of one extended listing line.
// Exactly one of the concrete types below is returned by parseLine.
type line interface {
	isLine()
}

type notebookLine struct {
	path     string
	language string
}

type folderLine struct {
	path string
}

// otherLine is any other typed object (library, file, repo, ...).
// kind is empty when the line has no recognizable type prefix.
type otherLine struct {
	kind string
	path string
}

type blankLine struct{}

func (notebookLine) isLine() {}
func (folderLine) isLine()   {}
func (otherLine) isLine()    {}
func (blankLine) isLine()    {}

func parseLine(s string) line {
	if strings.TrimSpace(s) == "" {
		return blankLine{}
	}
	if m := reNotebook.FindStringSubmatch(s); m != nil {
		return notebookLine{path: strings.TrimSpace(m[1]), language: m[2]}
	}
	if m := reFolder.FindStringSubmatch(s); m != nil {
		return folderLine{path: strings.TrimSpace(m[1])}
	}
	if m := reOther.FindStringSubmatch(s); m != nil {
		return otherLine{kind: m[1], path: strings.TrimSpace(m[2])}
	}
	return otherLine{path: s}
}
