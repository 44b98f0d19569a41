// Package cv implements the cv shell command: it fetches the CV JSON
// document, renders the requested sections as text tables and charts the
// monthly download statistics of open-source projects.
package cv

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrMissingArg is returned when no section flag is given
	ErrMissingArg = errors.New("cv: missing argument, try 'cv --help'")
	// ErrUsage is returned for an unknown flag or a stray argument
	ErrUsage = errors.New("cv: invalid usage")
)

// Request is a parsed cv command line
type Request struct {
	Sections []string // section flags, in document order
	Download bool
	Help     bool
}

// Parse reads the flags of a cv command line, without the command name
func Parse(args []string) (Request, error) {
	fs := flag.NewFlagSet("cv", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	set := make(map[string]*bool, len(sections))
	for _, s := range sections {
		set[s.Flag] = fs.Bool(s.Flag, false, s.Help)
	}
	download := fs.Bool("download", false, "open the PDF version")
	help := fs.Bool("help", false, "show this help")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return Request{Help: true}, nil
		}
		return Request{}, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return Request{}, fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}

	req := Request{Download: *download, Help: *help}
	for _, s := range sections {
		if *set[s.Flag] {
			req.Sections = append(req.Sections, s.Flag)
		}
	}
	if !req.Help && !req.Download && len(req.Sections) == 0 {
		return Request{}, ErrMissingArg
	}
	return req, nil
}

// Flags lists every accepted flag, in help order
func Flags() []string {
	out := make([]string, 0, len(sections)+2)
	for _, s := range sections {
		out = append(out, "--"+s.Flag)
	}
	return append(out, "--download", "--help")
}

// Usage returns the help text, one line per flag
func Usage() []string {
	lines := []string{"usage: cv [flags]", ""}
	w := 0
	for _, f := range Flags() {
		w = max(w, len(f))
	}
	row := func(f, help string) string {
		return "  " + f + strings.Repeat(" ", w-len(f)+2) + help
	}
	for _, s := range sections {
		lines = append(lines, row("--"+s.Flag, s.Help))
	}
	return append(lines,
		row("--download", "open the PDF version"),
		row("--help", "show this help"),
	)
}
