// Package notebook maps workspace notebook languages and export formats to
// local file names.
package notebook

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownLanguage indicates a language the workspace does not support
	ErrUnknownLanguage = errors.New("unknown notebook language")

	// ErrUnknownFormat indicates an unsupported export/import format
	ErrUnknownFormat = errors.New("unknown notebook format")
)

// Language is the language tag of a workspace notebook
type Language string

const (
	LanguageScala  Language = "SCALA"
	LanguagePython Language = "PYTHON"
	LanguageSQL    Language = "SQL"
	LanguageR      Language = "R"
)

// Languages lists the accepted languages in help-text order
var Languages = []Language{LanguageScala, LanguagePython, LanguageSQL, LanguageR}

// Format is the serialization used when moving notebooks in or out of the workspace
type Format string

const (
	FormatSource  Format = "SOURCE"
	FormatDBC     Format = "DBC"
	FormatJupyter Format = "JUPYTER"
	FormatHTML    Format = "HTML"
)

// Formats lists the accepted formats in help-text order
var Formats = []Format{FormatSource, FormatDBC, FormatJupyter, FormatHTML}

var languageExtensions = map[Language]string{
	LanguageR:      ".r",
	LanguagePython: ".py",
	LanguageScala:  ".scala",
	LanguageSQL:    ".sql",
}

// ParseLanguage parses a language name case-insensitively
func ParseLanguage(s string) (Language, error) {
	l := Language(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Languages {
		if l == known {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q (must be one of %s)", ErrUnknownLanguage, s, joinLanguages())
}

// ParseFormat parses a format name case-insensitively
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q (must be one of %s)", ErrUnknownFormat, s, joinFormats())
}

// Extension returns the local file extension for a notebook exported in
// format. SOURCE and JUPYTER exports use the language extension.
func Extension(lang Language, format Format) (string, error) {
	switch format {
	case FormatDBC:
		return ".dbc", nil
	case FormatHTML:
		return ".html", nil
	case FormatSource, FormatJupyter:
		ext, ok := languageExtensions[lang]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, lang)
		}
		return ext, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// LocalFilename returns the local file name for the notebook at p.
// Parentheses are replaced with underscores.
func LocalFilename(p string, lang Language, format Format) (string, error) {
	ext, err := Extension(lang, format)
	if err != nil {
		return "", err
	}
	return sanitize(p + ext), nil
}

func sanitize(name string) string {
	return strings.NewReplacer("(", "_", ")", "_").Replace(name)
}

func joinLanguages() string {
	names := make([]string, len(Languages))
	for i, l := range Languages {
		names[i] = string(l)
	}
	return strings.Join(names, ", ")
}

func joinFormats() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
