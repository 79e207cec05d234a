package model

import "strings"

// Format identifies an output representation
type Format string

const (
	// FormatJSON is the structured-data dump of the canonical record
	FormatJSON Format = "JSON"
	// FormatHTML is the styled document rendered from a template
	FormatHTML Format = "HTML"
	// FormatPDF is the paginated export of the styled document
	FormatPDF Format = "PDF"
)

// ValidFormats lists the recognized formats in display order
var ValidFormats = []Format{FormatPDF, FormatHTML, FormatJSON}

// DefaultFormats is used when the input does not request any
var DefaultFormats = []string{string(FormatPDF), string(FormatJSON)}

// ParseFormat matches a name case-insensitively against the recognized formats
func ParseFormat(name string) (Format, bool) {
	f := Format(strings.ToUpper(strings.TrimSpace(name)))
	if f.IsValid() {
		return f, true
	}
	return "", false
}

// IsValid reports whether the format is one of the recognized formats
func (f Format) IsValid() bool {
	switch f {
	case FormatJSON, FormatHTML, FormatPDF:
		return true
	default:
		return false
	}
}

// ContentType returns the MIME type label for the format
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatHTML:
		return "text/html"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// Extension returns the file extension for the format
func (f Format) Extension() string {
	return "." + strings.ToLower(string(f))
}

func (f Format) String() string {
	return string(f)
}
