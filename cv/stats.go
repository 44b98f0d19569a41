package cv

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/tidwall/gjson"
)

const (
	chartMonths = 24
	monthLayout = "2006-01"
	dayLayout   = "2006-01-02"
	barGlyph    = "█"
)

// ParseStats reads a stats document {project: {date: count}}. Counts of
// every project key are merged.
func ParseStats(body string) (map[string]int, error) {
	if !gjson.Valid(body) {
		return nil, fmt.Errorf("%w: stats is not valid JSON", ErrInvalid)
	}
	daily := make(map[string]int)
	gjson.Parse(body).ForEach(func(_, project gjson.Result) bool {
		project.ForEach(func(date, count gjson.Result) bool {
			daily[date.String()] += int(count.Int())
			return true
		})
		return true
	})
	return daily, nil
}

// AggregateMonthly sums daily counts keyed by YYYY-MM-DD (or a full ISO
// timestamp) into YYYY-MM buckets. Keys that are not dates are dropped.
func AggregateMonthly(daily map[string]int) map[string]int {
	monthly := make(map[string]int)
	for day, n := range daily {
		if len(day) < len(dayLayout) {
			continue
		}
		t, err := time.Parse(dayLayout, day[:len(dayLayout)])
		if err != nil {
			continue
		}
		monthly[t.Format(monthLayout)] += n
	}
	return monthly
}

// Humanize formats a count with a K or M suffix above a thousand
func Humanize(n int) string {
	switch {
	case n >= 1_000_000:
		return trimZero(fmt.Sprintf("%.1f", float64(n)/1_000_000)) + "M"
	case n >= 1_000:
		return trimZero(fmt.Sprintf("%.1f", float64(n)/1_000)) + "K"
	}
	return fmt.Sprint(n)
}

func trimZero(s string) string { return strings.TrimSuffix(s, ".0") }

// Chart renders the 24 months ending with the month of now as bars scaled
// to the largest bucket, followed by a total line. width bounds the lines.
func Chart(monthly map[string]int, now time.Time, width int) []string {
	months := make([]string, chartMonths)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(chartMonths - 1), 0)
	peak, total := 0, 0
	for i := range months {
		months[i] = first.AddDate(0, i, 0).Format(monthLayout)
		peak = max(peak, monthly[months[i]])
		total += monthly[months[i]]
	}

	labelW := 0
	for _, m := range months {
		labelW = max(labelW, len(Humanize(monthly[m])))
	}
	// "YYYY-MM " + bar + " " + label
	barW := max(width-len(monthLayout)-2-labelW, 1)

	out := make([]string, 0, len(months)+1)
	for _, m := range months {
		n := monthly[m]
		bar := 0
		if peak > 0 {
			bar = n * barW / peak
		}
		if n > 0 && bar == 0 {
			bar = 1
		}
		out = append(out, fmt.Sprintf("%s %s %s", m,
			runewidth.FillRight(strings.Repeat(barGlyph, bar), barW), Humanize(n)))
	}
	return append(out, fmt.Sprintf("total %s, peak %s", Humanize(total), Humanize(peak)))
}
