package main

import (
	"io"

	"github.com/fatih/color"

	"github.com/schaermu/databricks-sync/internal/workspace"
)

// fatih/color disables these itself when output is not a terminal
var (
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	headerColor  = color.New(color.FgBlue, color.Bold)
	folderColor  = color.New(color.FgCyan)
	dimColor     = color.New(color.FgHiBlack)
)

func printHeader(w io.Writer, title string) {
	_, _ = headerColor.Fprintln(w, title)
}

func printSuccess(w io.Writer, msg string) {
	_, _ = successColor.Fprintf(w, "✓ %s\n", msg)
}

func printWarning(w io.Writer, msg string) {
	_, _ = warningColor.Fprintf(w, "⚠ %s\n", msg)
}

// printEntries prints one listing entry per line. long prints the raw
// listing line instead of the display path.
func printEntries(w io.Writer, entries []workspace.Entry, long bool) {
	for _, e := range entries {
		text := e.Path
		if long {
			text = e.Raw
		}
		switch e.Kind {
		case workspace.KindFolder:
			_, _ = folderColor.Fprintf(w, "  %s\n", text)
		case workspace.KindOther:
			_, _ = dimColor.Fprintf(w, "  %s\n", text)
		default:
			_, _ = io.WriteString(w, "  "+text+"\n")
		}
	}
}

func printPaths(w io.Writer, paths []string) {
	for _, p := range paths {
		_, _ = io.WriteString(w, "  "+p+"\n")
	}
}
