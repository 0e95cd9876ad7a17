package workspace

// Kind classifies a workspace listing entry
type Kind int

const (
	KindNotebook Kind = iota
	KindFolder
	KindOther
)

// String returns the label used in listings
func (k Kind) String() string {
	switch k {
	case KindNotebook:
		return "NOTEBOOK"
	case KindFolder:
		return "FOLDER"
	case KindOther:
		return "OTHER"
	default:
		return "UNKNOWN"
	}
}

// Entry is one object found while walking the workspace
type Entry struct {
	Kind Kind
	// Raw is the listing line as reported by the workspace CLI
	Raw string
	// Path is the display path; folders end with "/"
	Path string
	// Language is set for notebooks only
	Language string
}
