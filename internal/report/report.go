// Package report renders human-readable run summaries for the console.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/yourusername/live-snapshots/internal/snapshot"
)

var headers = []string{"DATE", "FILE", "STATUS", "ROTATION", "ARTICLES", "SIZE"}

const columnGap = "  "

// Marker returns the console marker for a status.
func Marker(s snapshot.Status) string {
	switch s {
	case snapshot.StatusGenerated:
		return "✅"
	case snapshot.StatusExists:
		return "✓"
	case snapshot.StatusDryRun:
		return "📝"
	default:
		return "?"
	}
}

// Table writes one row per result with columns aligned by display width.
func Table(w io.Writer, results []snapshot.Result) error {
	rows := make([][]string, 0, len(results)+1)
	rows = append(rows, headers)
	for _, r := range results {
		rows = append(rows, row(r))
	}

	widths := make([]int, len(headers))
	for _, cells := range rows {
		for i, cell := range cells {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	for _, cells := range rows {
		padded := make([]string, len(cells))
		for i, cell := range cells {
			if i == len(cells)-1 {
				padded[i] = cell
				continue
			}
			padded[i] = runewidth.FillRight(cell, widths[i])
		}
		if _, err := fmt.Fprintln(w, strings.Join(padded, columnGap)); err != nil {
			return err
		}
	}

	return nil
}

// Summary writes the table followed by the totals line and the on-disk count.
func Summary(w io.Writer, s *snapshot.Summary) error {
	if len(s.Results) > 0 {
		if err := Table(w, s.Results); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	totals := fmt.Sprintf("✓ Total snapshots: %d (generated %d, already present %d",
		s.Processed(), s.Generated, s.Existing)
	if s.DryRun > 0 {
		totals += fmt.Sprintf(", dry run %d", s.DryRun)
	}
	totals += ")"

	if _, err := fmt.Fprintln(w, totals); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "✓ Files on disk: %d\n", s.OnDisk)
	return err
}

// Result writes a single-date outcome.
func Result(w io.Writer, r snapshot.Result) error {
	return Table(w, []snapshot.Result{r})
}

func row(r snapshot.Result) []string {
	status := Marker(r.Status) + " " + string(r.Status)
	if r.Status == snapshot.StatusExists {
		return []string{r.Date, r.File, status, "-", "-", "-"}
	}
	return []string{
		r.Date,
		r.File,
		status,
		strconv.Itoa(r.Rotation),
		strconv.Itoa(r.Articles),
		humanize.Bytes(uint64(r.Bytes)),
	}
}
