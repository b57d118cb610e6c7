package output

import "github.com/charmbracelet/lipgloss"

// plainStyle prefixes text with a marker instead of styling it.
type plainStyle struct {
	prefix string
}

// Render implements TextStyle.
func (p plainStyle) Render(strs ...string) string {
	out := p.prefix
	for _, s := range strs {
		out += s
	}
	return out
}

// plainPrefixes keep the meaning of status lines visible without color.
var plainPrefixes = map[SemanticType]string{
	SemanticSuccess: "✓ ",
	SemanticWarning: "⚠ ",
	SemanticError:   "✗ ",
}

func plainStyleFor(semantic SemanticType) TextStyle {
	return plainStyle{prefix: plainPrefixes[semantic]}
}

// LipglossStyles is the default terminal theme.
type LipglossStyles struct {
	styles map[string]lipgloss.Style
}

// NewLipglossStyles creates the default terminal theme.
func NewLipglossStyles() *LipglossStyles {
	return &LipglossStyles{
		styles: map[string]lipgloss.Style{
			string(SemanticHeading): lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33")),
			string(SemanticField):   lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
			string(SemanticSuccess): lipgloss.NewStyle().Foreground(lipgloss.Color("10")).SetString("✓"),
			string(SemanticWarning): lipgloss.NewStyle().Foreground(lipgloss.Color("11")).SetString("⚠"),
			string(SemanticError):   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")).SetString("✗"),
		},
	}
}

// GetStyle returns the style for semantic, unstyled for unknown types.
func (l *LipglossStyles) GetStyle(semantic string) TextStyle {
	if style, ok := l.styles[semantic]; ok {
		return style
	}
	return lipgloss.NewStyle()
}

// IsAvailable implements StyleProvider.
func (l *LipglossStyles) IsAvailable() bool {
	return l != nil
}
