// Package output renders run reports for humans or as JSON.
//
// Human output is styled with lipgloss; styling is dropped automatically when
// the writer is not a terminal so piped output stays plain:
//
//	p := output.NewPrinter(os.Stdout, jsonFlag, output.ResolveColorMode(mode, output.IsTTY(os.Stdout)))
//	p.Report(report)
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Printer writes reports to w.
type Printer struct {
	w      io.Writer
	json   bool
	isTTY  bool
	styles *Styles
}

// Styles holds lipgloss styles for human-readable output.
type Styles struct {
	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Key     lipgloss.Style
}

// NewPrinter creates a Printer. isTTY enables colors for human output.
func NewPrinter(w io.Writer, jsonMode bool, isTTY bool) *Printer {
	styles := &Styles{
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true), // Red
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),           // Green
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),           // Yellow
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Muted:   lipgloss.NewStyle().Faint(true),
		Key:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	}
	if !isTTY {
		styles.Error = lipgloss.NewStyle()
		styles.Success = lipgloss.NewStyle()
		styles.Warning = lipgloss.NewStyle()
		styles.Title = lipgloss.NewStyle()
		styles.Muted = lipgloss.NewStyle()
		styles.Key = lipgloss.NewStyle()
	}
	return &Printer{w: w, json: jsonMode, isTTY: isTTY, styles: styles}
}

// ResolveColorMode maps a "never", "always" or "auto" setting to a decision.
func ResolveColorMode(mode string, isTTY bool) bool {
	switch mode {
	case "never":
		return false
	case "always":
		return true
	default:
		return isTTY
	}
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// WriteJSON encodes data as indented JSON.
func (p *Printer) WriteJSON(data any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// Section writes a title with an underline.
func (p *Printer) Section(title string) {
	p.println()
	p.println(p.styles.Title.Render(title))
	p.println(p.styles.Muted.Render(strings.Repeat("─", len(title))))
}

// KeyValue writes "key: value".
func (p *Printer) KeyValue(key string, value any) {
	p.printf("%s %v\n", p.styles.Key.Render(key+":"), value)
}

// Error writes err in the error style.
func (p *Printer) Error(err error) {
	if p.json {
		_ = p.WriteJSON(map[string]string{"error": err.Error()})
		return
	}
	p.printf("%s: %s\n", p.styles.Error.Render("Error"), err.Error())
}

func (p *Printer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) println(args ...any) {
	_, _ = fmt.Fprintln(p.w, args...)
}
