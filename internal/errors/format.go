package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Style selects how errors are printed.
type Style uint8

const (
	// StylePretty is the multi-line terminal format.
	StylePretty Style = iota
	// StyleCompact is one line per error.
	StyleCompact
	// StyleJSON is one JSON object per error.
	StyleJSON
)

// String returns the flag spelling of the style.
func (s Style) String() string {
	switch s {
	case StyleCompact:
		return "compact"
	case StyleJSON:
		return "json"
	default:
		return "pretty"
	}
}

// ParseStyle parses "pretty", "compact" or "json".
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pretty":
		return StylePretty, nil
	case "compact":
		return StyleCompact, nil
	case "json":
		return StyleJSON, nil
	}
	return StylePretty, Newf(CategoryCLI, "unknown error format %q", s).
		WithSuggestion("Use pretty, compact or json")
}

// printer holds the output settings used by PrintError and Fprint.
var printer = struct {
	style Style
	color bool
}{style: StylePretty, color: true}

// Configure sets the style and coloring of printed errors.
func Configure(style Style, color bool) {
	printer.style = style
	printer.color = color
}

// ANSI escapes.
const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiRed   = "\033[31m"
	ansiCyan  = "\033[36m"
	ansiGray  = "\033[90m"
)

func paint(text string, codes ...string) string {
	if !printer.color || text == "" {
		return text
	}
	return strings.Join(codes, "") + text + ansiReset
}

// Format returns the multi-line terminal rendering of the error.
func (e *CodedError) Format() string {
	var b strings.Builder

	title := e.Message
	if e.Code != "" {
		title = e.Code + ": " + title
	}
	fmt.Fprintf(&b, "\n%s %s\n", paint("ERROR", ansiBold, ansiRed), paint(title, ansiBold))

	if e.Location != nil {
		fmt.Fprintf(&b, "\n  %s\n", paint(e.Location.String(), ansiCyan))
		writeContext(&b, e.Location, e.Context)
	}

	for _, text := range []string{e.Detail, registry[e.Code].Detail} {
		if text == "" {
			continue
		}
		b.WriteString("\n")
		for _, line := range wrapText(text, 70) {
			b.WriteString("  " + line + "\n")
		}
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  %s %s\n", paint("Hint:", ansiCyan), e.Suggestion)
	}
	if e.Wrapped != nil {
		fmt.Fprintf(&b, "\n  %s %s\n", paint("Caused by:", ansiGray), e.Wrapped.Error())
	}
	b.WriteString("\n")
	return b.String()
}

// writeContext prints the lines around loc, marking loc's line and column.
func writeContext(b *strings.Builder, loc *Location, lines []string) {
	if len(lines) == 0 {
		return
	}
	first := loc.Line - len(lines)/2
	if first < 1 {
		first = 1
	}
	for i, line := range lines {
		n := first + i
		marker := " "
		if n == loc.Line {
			marker = paint(">", ansiRed)
		}
		fmt.Fprintf(b, "  %s %4d %s %s\n", marker, n, paint("|", ansiGray), line)
		if n == loc.Line && loc.Column > 0 {
			fmt.Fprintf(b, "         %s %s%s\n", paint("|", ansiGray), strings.Repeat(" ", loc.Column-1), paint("^", ansiRed))
		}
	}
}

// FormatCompact returns "location: code: message".
func (e *CodedError) FormatCompact() string {
	parts := make([]string, 0, 3)
	if e.Location != nil {
		parts = append(parts, e.Location.String())
	}
	if e.Code != "" {
		parts = append(parts, e.Code)
	}
	return strings.Join(append(parts, e.Message), ": ")
}

type jsonError struct {
	Code       string    `json:"code,omitempty"`
	Category   Category  `json:"category,omitempty"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	Location   *Location `json:"location,omitempty"`
	Suggestion string    `json:"suggestion,omitempty"`
	Cause      string    `json:"cause,omitempty"`
}

// MarshalJSON encodes the error without its context lines.
func (e *CodedError) MarshalJSON() ([]byte, error) {
	out := jsonError{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Location:   e.Location,
		Suggestion: e.Suggestion,
	}
	if e.Wrapped != nil {
		out.Cause = e.Wrapped.Error()
	}
	return json.Marshal(out)
}

// FormatJSON returns the error as a single JSON object.
func (e *CodedError) FormatJSON() string {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Sprintf(`{"message":%q}`, e.Error())
	}
	return string(data)
}

// wrapText breaks text into lines of at most width bytes. Words longer
// than width get a line of their own.
func wrapText(text string, width int) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) <= width:
			line += " " + word
		default:
			lines = append(lines, line)
			line = word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// Fprint writes err to w in the configured style. Errors without a code
// are printed as uncoded CodedErrors.
func Fprint(w io.Writer, err error) {
	if err == nil {
		return
	}
	var ce *CodedError
	if !stderrors.As(err, &ce) {
		ce = &CodedError{Message: err.Error()}
	}
	switch printer.style {
	case StyleCompact:
		fmt.Fprintln(w, "error: "+ce.FormatCompact())
	case StyleJSON:
		fmt.Fprintln(w, ce.FormatJSON())
	default:
		fmt.Fprint(w, ce.Format())
	}
}

// PrintError prints err to stderr in the configured style.
func PrintError(err error) {
	Fprint(os.Stderr, err)
}
