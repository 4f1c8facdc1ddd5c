// Package ui renders CLI output.
package ui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

// UI writes styled output to a pair of writers.
type UI struct {
	out     io.Writer
	err     io.Writer
	verbose bool
	noColor bool

	success *color.Color
	failure *color.Color
	warning *color.Color
	heading *color.Color
	dim     *color.Color
}

// New creates a UI. noColor disables styling and the spinner for this UI
// only.
func New(out, errOut io.Writer, noColor, verbose bool) *UI {
	u := &UI{
		out:     out,
		err:     errOut,
		verbose: verbose,
		noColor: noColor,
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed, color.Bold),
		warning: color.New(color.FgYellow),
		heading: color.New(color.FgCyan, color.Bold),
		dim:     color.New(color.Faint),
	}
	if noColor {
		for _, c := range u.colors() {
			c.DisableColor()
		}
	}
	return u
}

func (u *UI) colors() []*color.Color {
	return []*color.Color{u.success, u.failure, u.warning, u.heading, u.dim}
}

// Out returns the primary writer.
func (u *UI) Out() io.Writer { return u.out }

// Section prints a heading.
func (u *UI) Section(title string) {
	u.heading.Fprintln(u.err, title)
	u.heading.Fprintln(u.err, strings.Repeat("─", len([]rune(title))))
}

// Success prints a success line.
func (u *UI) Success(format string, args ...any) {
	u.success.Fprintf(u.err, "✓ %s\n", fmt.Sprintf(format, args...))
}

// Error prints an error line.
func (u *UI) Error(format string, args ...any) {
	u.failure.Fprintf(u.err, "✗ %s\n", fmt.Sprintf(format, args...))
}

// Warning prints a warning line.
func (u *UI) Warning(format string, args ...any) {
	u.warning.Fprintf(u.err, "⚠ %s\n", fmt.Sprintf(format, args...))
}

// Step prints a progress line, only in verbose mode.
func (u *UI) Step(format string, args ...any) {
	if u.verbose {
		u.dim.Fprintf(u.err, "→ %s\n", fmt.Sprintf(format, args...))
	}
}

// KeyValue prints an aligned key/value pair.
func (u *UI) KeyValue(key, value string) {
	fmt.Fprintf(u.err, "  %s: %s\n", u.dim.Sprint(key), value)
}

// Table prints rows under headers to the primary writer.
func (u *UI) Table(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(u.out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, strings.Join(headers, "\t"))
	separator := make([]string, len(headers))
	for i := range separator {
		separator[i] = strings.Repeat("-", len(headers[i]))
	}
	fmt.Fprintln(w, strings.Join(separator, "\t"))

	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}

	_ = w.Flush()
}
