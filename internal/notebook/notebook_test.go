package notebook

import (
	"errors"
	"testing"
)

func TestLocalFilename(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		lang    Language
		format  Format
		want    string
		wantErr error
	}{
		{name: "python source", path: "demo", lang: LanguagePython, format: FormatSource, want: "demo.py"},
		{name: "python html", path: "demo", lang: LanguagePython, format: FormatHTML, want: "demo.html"},
		{name: "scala source", path: "etl/job", lang: LanguageScala, format: FormatSource, want: "etl/job.scala"},
		{name: "r jupyter", path: "stats", lang: LanguageR, format: FormatJupyter, want: "stats.r"},
		{name: "sql source", path: "report", lang: LanguageSQL, format: FormatSource, want: "report.sql"},
		{name: "dbc ignores language", path: "archive", lang: "", format: FormatDBC, want: "archive.dbc"},
		{name: "parentheses sanitized", path: "copy (1)", lang: LanguagePython, format: FormatSource, want: "copy _1_.py"},
		{name: "unknown language", path: "x", lang: "COBOL", format: FormatSource, wantErr: ErrUnknownLanguage},
		{name: "unknown format", path: "x", lang: LanguagePython, format: "PDF", wantErr: ErrUnknownFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LocalFilename(tt.path, tt.lang, tt.format)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("LocalFilename() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LocalFilename() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("LocalFilename() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseLanguage(t *testing.T) {
	for _, in := range []string{"python", "PYTHON", " Python "} {
		got, err := ParseLanguage(in)
		if err != nil {
			t.Fatalf("ParseLanguage(%q) error: %v", in, err)
		}
		if got != LanguagePython {
			t.Errorf("ParseLanguage(%q) = %q, want PYTHON", in, got)
		}
	}

	if _, err := ParseLanguage("java"); !errors.Is(err, ErrUnknownLanguage) {
		t.Errorf("ParseLanguage(java) error = %v, want ErrUnknownLanguage", err)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"source":  FormatSource,
		"DBC":     FormatDBC,
		"jupyter": FormatJupyter,
		"Html":    FormatHTML,
	} {
		got, err := ParseFormat(in)
		if err != nil {
			t.Fatalf("ParseFormat(%q) error: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseFormat(%q) = %q, want %q", in, got, want)
		}
	}

	if _, err := ParseFormat("pdf"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ParseFormat(pdf) error = %v, want ErrUnknownFormat", err)
	}
}
