package output

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
)

// Printer writes semantic report lines in plain, styled or JSON form.
type Printer struct {
	styleProvider StyleProvider
	writer        io.Writer
	mode          Mode
	testMode      bool
	indent        string

	mu sync.Mutex
}

// NewPrinter creates a Printer writing to os.Stdout unless an option says
// otherwise.
func NewPrinter(options ...Option) *Printer {
	p := &Printer{
		writer: os.Stdout,
		mode:   ModeAuto,
		indent: "  ",
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Heading starts a report section.
func (p *Printer) Heading(text string) {
	p.output(SemanticHeading, "", text)
}

// Field outputs an indented "key: value" line. Lists are joined with ", ".
func (p *Printer) Field(key string, values ...string) {
	p.output(SemanticField, key, strings.Join(values, ", "))
}

// Success outputs success text.
func (p *Printer) Success(text string) {
	p.output(SemanticSuccess, "", text)
}

// Warning outputs warning text.
func (p *Printer) Warning(text string) {
	p.output(SemanticWarning, "", text)
}

// Error outputs error text.
func (p *Printer) Error(text string) {
	p.output(SemanticError, "", text)
}

func (p *Printer) output(semantic SemanticType, key, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	line := p.renderText(semantic, key, text)
	if p.mode == ModeJSON {
		line = p.renderJSON(semantic, key, text)
	}
	// Report lines are best effort; the command's own error carries failures.
	_, _ = io.WriteString(p.writer, line)
}

// renderText renders one line, styled when a provider is available.
func (p *Printer) renderText(semantic SemanticType, key, text string) string {
	var style TextStyle
	if p.IsStylable() {
		style = p.styleProvider.GetStyle(string(semantic))
	} else {
		style = plainStyleFor(semantic)
	}

	var result string
	if semantic == SemanticField {
		result = p.indent + style.Render(key+":") + " " + text
	} else {
		result = style.Render(text)
	}
	if !strings.HasSuffix(result, "\n") {
		result += "\n"
	}
	return result
}

// jsonLine is one report line in JSON mode.
type jsonLine struct {
	Type    SemanticType `json:"type"`
	Key     string       `json:"key,omitempty"`
	Message string       `json:"message"`
}

func (p *Printer) renderJSON(semantic SemanticType, key, text string) string {
	data, err := json.Marshal(jsonLine{Type: semantic, Key: key, Message: text})
	if err != nil {
		return text + "\n"
	}
	return string(data) + "\n"
}

// IsStylable returns true if the printer can apply styles.
func (p *Printer) IsStylable() bool {
	return p.mode == ModeAuto && !p.testMode && p.styleProvider != nil && p.styleProvider.IsAvailable()
}
