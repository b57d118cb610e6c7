// Package output renders command reports for the firecrown CLI.
// Styling is optional: a Printer renders plain text unless it is given a
// StyleProvider, and test mode always forces plain text.
package output

// StyleProvider supplies a style for each semantic type.
type StyleProvider interface {
	// GetStyle returns a TextStyle for the given semantic type.
	GetStyle(semantic string) TextStyle

	// IsAvailable returns true if the provider can style text.
	IsAvailable() bool
}

// TextStyle represents the capability to render text with styling.
// lipgloss.Style satisfies it.
type TextStyle interface {
	Render(strs ...string) string
}

// Mode selects how a Printer renders lines.
type Mode int

const (
	// ModeAuto styles output when a provider is available
	ModeAuto Mode = iota

	// ModePlain forces plain text output
	ModePlain

	// ModeJSON outputs one JSON object per line for machine consumption
	ModeJSON
)

// SemanticType is the role of a report line; styles are looked up by it.
type SemanticType string

const (
	// SemanticHeading represents a report section heading.
	SemanticHeading SemanticType = "heading"
	// SemanticField represents a key/value line within a section.
	SemanticField SemanticType = "field"
	// SemanticSuccess represents success or completion text.
	SemanticSuccess SemanticType = "success"
	// SemanticWarning represents warning text.
	SemanticWarning SemanticType = "warning"
	// SemanticError represents error text.
	SemanticError SemanticType = "error"
)
