package cv

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/tidwall/gjson"
)

// ErrNoPDF is returned by --download when no PDF location is configured
var ErrNoPDF = errors.New("cv: no PDF configured")

// Style tags output lines for coloring by the shell
type Style uint8

const (
	StylePlain Style = iota
	StyleTitle
	StyleChart
)

// Line is one line of command output
type Line struct {
	Text  string
	Style Style
}

// Command runs parsed cv requests. Run may block on the network and is
// called off the loop goroutine.
type Command struct {
	client *Client
	opener Opener
	pdfURL string
	now    func() time.Time
}

// NewCommand creates the command. opener may be nil when downloads are disabled.
func NewCommand(client *Client, opener Opener, pdfURL string) *Command {
	return &Command{client: client, opener: opener, pdfURL: pdfURL, now: time.Now}
}

// Run executes req and returns its output for a terminal width cells wide.
// A failed document fetch returns the error and no section output; a failed
// stats fetch only omits that chart.
func (c *Command) Run(ctx context.Context, req Request, width int) ([]Line, error) {
	var out []Line
	if req.Help {
		for _, l := range Usage() {
			out = append(out, Line{Text: l})
		}
		return out, nil
	}

	if req.Download {
		if c.pdfURL == "" || c.opener == nil {
			return out, ErrNoPDF
		}
		if err := c.opener.Open(c.pdfURL); err != nil {
			return out, err
		}
		out = append(out, Line{Text: "opening " + c.pdfURL})
	}
	if len(req.Sections) == 0 {
		return out, nil
	}

	doc, err := c.client.Fetch(ctx)
	if err != nil {
		return out, err
	}
	for _, flag := range req.Sections {
		s, ok := lookupSection(flag)
		if !ok {
			continue
		}
		out = append(out, Line{Text: s.Title, Style: StyleTitle})
		header, rows := s.rows(doc)
		if len(rows) == 0 {
			out = append(out, Line{Text: "(nothing here yet)"})
			continue
		}
		for _, l := range Table(header, rows, width) {
			out = append(out, Line{Text: l})
		}
		if s.Key == "oss" {
			out = append(out, c.charts(ctx, doc.Get(s.Key), width)...)
		}
	}
	return out, nil
}

// charts fetches and renders the stats of every project that has a stats URL
func (c *Command) charts(ctx context.Context, projects gjson.Result, width int) []Line {
	var out []Line
	for _, p := range projects.Array() {
		url := p.Get("stats").String()
		if url == "" {
			continue
		}
		daily, err := c.client.FetchStats(ctx, url)
		if err != nil {
			log.Printf("cv: stats for %s: %v", p.Get("name").String(), err)
			continue
		}
		out = append(out, Line{Text: fmt.Sprintf("%s downloads, last %d months", p.Get("name").String(), chartMonths), Style: StyleTitle})
		for _, l := range Chart(AggregateMonthly(daily), c.now(), width) {
			out = append(out, Line{Text: l, Style: StyleChart})
		}
	}
	return out
}
