package diag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Formatter renders *Error values against their source file as a
// caret-annotated excerpt, in the Rust-style rendering the teacher
// compiler uses for its own diagnostics.
type Formatter struct {
	Out        io.Writer
	sourceByFile map[string]string
	color      bool
}

// NewFormatter creates a formatter that reads source files on demand
// (cached by filename) and writes to stderr by default.
func NewFormatter() *Formatter {
	return &Formatter{
		Out:          os.Stderr,
		sourceByFile: make(map[string]string),
		color:        true,
	}
}

// LoadSource registers source text for a filename so the formatter
// does not need to re-read it from disk.
func (f *Formatter) LoadSource(filename, text string) {
	f.sourceByFile[filename] = text
}

func (f *Formatter) source(filename string) (string, bool) {
	if text, ok := f.sourceByFile[filename]; ok {
		return text, true
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", false
	}
	text := string(data)
	f.sourceByFile[filename] = text
	return text, true
}

// Format writes a human-readable rendering of err to f.Out.
func (f *Formatter) Format(err *Error) {
	severityTag := f.tag(err.Severity)
	fmt.Fprintf(f.Out, "%s[%s]: %s\n", severityTag, err.Kind, err.Message)

	if err.Span.IsValid() {
		f.printExcerpt(err.Span, "")
	}
	for _, related := range err.Related {
		fmt.Fprintf(f.Out, "  = note: %s\n", related.Message)
		if related.Span.IsValid() {
			f.printExcerpt(related.Span, "note")
		}
	}
	if err.Help != "" {
		fmt.Fprintf(f.Out, "help: %s\n", err.Help)
	}
}

func (f *Formatter) tag(sev Severity) string {
	label := string(sev)
	if label == "" {
		label = "error"
	}
	if !f.color {
		return label
	}
	c := color.New(color.FgRed, color.Bold)
	if sev == SeverityNote {
		c = color.New(color.FgCyan)
	}
	return c.Sprint(label)
}

func (f *Formatter) printExcerpt(span Span, prefix string) {
	fmt.Fprintf(f.Out, "  --> %s\n", span)
	text, ok := f.source(span.Filename)
	if !ok {
		return
	}
	lines := strings.Split(text, "\n")
	if span.Line < 1 || span.Line > len(lines) {
		return
	}
	line := lines[span.Line-1]
	gutter := fmt.Sprintf("%d", span.Line)
	fmt.Fprintf(f.Out, "%s | %s\n", gutter, line)

	width := span.End - span.Start
	if width < 1 {
		width = 1
	}
	col := span.Column - 1
	if col < 0 {
		col = 0
	}
	caretLine := strings.Repeat(" ", col) + strings.Repeat("^", width)
	if f.color {
		caretLine = color.New(color.FgRed, color.Bold).Sprint(caretLine)
	}
	fmt.Fprintf(f.Out, "%s | %s\n", strings.Repeat(" ", len(gutter)), caretLine)
}
