package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/live-snapshots/internal/snapshot"
)

func sampleSummary() *snapshot.Summary {
	return &snapshot.Summary{
		Results: []snapshot.Result{
			{Date: "2025-11-14", File: "live-sources-2025-11-14.json", Status: snapshot.StatusExists},
			{Date: "2025-11-15", File: "live-sources-2025-11-15.json", Status: snapshot.StatusGenerated, Rotation: 1, Articles: 120, Bytes: 48213},
		},
		Generated: 1,
		Existing:  1,
		OnDisk:    2,
	}
}

func TestTableAlignsByDisplayWidth(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Table(&buf, sampleSummary().Results))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	// the ROTATION column starts at the same display offset on every line
	offset := func(line, prefixEnd string) int {
		i := strings.Index(line, prefixEnd)
		require.GreaterOrEqual(t, i, 0, line)
		return runewidth.StringWidth(line[:i])
	}
	header := offset(lines[0], "ROTATION")
	assert.Equal(t, header, offset(lines[1], "-  "))
	assert.Equal(t, header, offset(lines[2], "1  "))

	assert.Contains(t, lines[2], "48 kB")
	assert.Contains(t, lines[1], "✓ exists")
	assert.Contains(t, lines[2], "✅ generated")
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Summary(&buf, sampleSummary()))

	out := buf.String()
	assert.Contains(t, out, "✓ Total snapshots: 2 (generated 1, already present 1)\n")
	assert.Contains(t, out, "✓ Files on disk: 2\n")
	assert.NotContains(t, out, "dry run")
}

func TestSummaryDryRun(t *testing.T) {
	var buf bytes.Buffer
	s := &snapshot.Summary{
		Results: []snapshot.Result{{Date: "2025-11-14", Status: snapshot.StatusDryRun, Articles: 3, Bytes: 900}},
		DryRun:  1,
	}
	require.NoError(t, Summary(&buf, s))

	assert.Contains(t, buf.String(), "dry run 1)")
	assert.Contains(t, buf.String(), "📝 dry-run")
}

func TestSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Summary(&buf, &snapshot.Summary{}))

	assert.Equal(t, "✓ Total snapshots: 0 (generated 0, already present 0)\n✓ Files on disk: 0\n", buf.String())
}
