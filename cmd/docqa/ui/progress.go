package ui

import (
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
)

// Spinner wraps a spinner instance for indeterminate progress display. A
// disabled Spinner does nothing.
type Spinner struct {
	spinner *spinner.Spinner
}

// NewSpinner creates a spinner on the UI's error writer. It is disabled
// when colour is off or the writer is not a terminal.
func (u *UI) NewSpinner(message string) *Spinner {
	if u.noColor || !isTerminal(u.err) {
		return &Spinner{}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(u.err))
	s.Suffix = " " + message
	return &Spinner{spinner: s}
}

// Enabled reports whether the spinner will draw anything.
func (s *Spinner) Enabled() bool {
	return s.spinner != nil
}

// Start starts the spinner animation.
func (s *Spinner) Start() {
	if s.spinner != nil {
		s.spinner.Start()
	}
}

// Stop stops the spinner animation and clears the line.
func (s *Spinner) Stop() {
	if s.spinner != nil {
		s.spinner.Stop()
	}
}

// UpdateMessage updates the spinner's message.
func (s *Spinner) UpdateMessage(message string) {
	if s.spinner != nil {
		s.spinner.Suffix = " " + message
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
