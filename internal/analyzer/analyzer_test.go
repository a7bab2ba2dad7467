package analyzer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const e2eSession = "00aec530-0614-436f-a53b-faaa0b32f123"

func writeLines(t *testing.T, dir, relPath string, lines ...string) {
	t.Helper()
	fullPath := filepath.Join(dir, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0755))
	require.NoError(t, os.WriteFile(fullPath, []byte(strings.Join(lines, "\n")+"\n"), 0644))
}

func TestBuildReportBothDirectoriesMissing(t *testing.T) {
	a := New(&Config{
		StateDir: "/nope/sessions",
		UsageDir: "/nope/logs",
		GroupBy:  "day",
		Timezone: "UTC",
	})

	_, err := a.BuildReport()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input directories found")
}

func TestBuildReportStateOnly(t *testing.T) {
	stateDir := t.TempDir()
	writeLines(t, stateDir, e2eSession+"/events.jsonl",
		`{"type":"session_start","startTime":"2025-06-01T10:00:00Z","model":"gpt-5"}`,
		`{"type":"user_message","text":"`+strings.Repeat("q", 2000)+`"}`,
		`{"type":"context_truncation","postTruncationTokensInMessages":1000}`,
		`{"type":"assistant_message","text":"`+strings.Repeat("a", 400)+`"}`,
	)

	a := New(&Config{
		StateDir: stateDir,
		UsageDir: filepath.Join(stateDir, "no-logs-here"),
		GroupBy:  "day",
		Timezone: "UTC",
	})

	report, err := a.BuildReport()
	require.NoError(t, err)

	require.Len(t, report.Buckets, 1)
	bucket := report.Buckets[0]
	assert.Equal(t, "2025-06-01", bucket.Key)
	assert.Equal(t, 1, bucket.Sessions)
	assert.Equal(t, 1000, bucket.InputTokens, "truncation accounting replaces the byte heuristic")
	assert.Equal(t, 100, bucket.OutputTokens)
	// gpt-5 pricing: 1000/1e6*1.25 + 100/1e6*10.00
	assert.InDelta(t, 0.00225, bucket.Cost, 1e-9)

	assert.Equal(t, 1, report.Totals.TotalSessions)
	assert.Equal(t, 1000, report.Totals.TotalInputTokens)
}

func TestBuildReportReconcilesBothSources(t *testing.T) {
	stateDir := t.TempDir()
	usageDir := t.TempDir()

	writeLines(t, stateDir, e2eSession+"/events.jsonl",
		`{"type":"session_start","startTime":"2025-06-01T10:00:00Z","model":"gpt-5.1-codex"}`,
		`{"type":"user_message","text":"`+strings.Repeat("q", 2000)+`"}`,
		`{"type":"assistant_message","text":"`+strings.Repeat("a", 800)+`"}`,
	)
	writeLines(t, usageDir, "process-2025-06-01.log",
		`2025-06-01T10:00:01Z [info] Starting session `+e2eSession+` in /work`,
		`2025-06-01T10:00:05Z [debug] {`,
		`  "id": "resp_1",`,
		`  "model": "gpt-5.1-codex",`,
		`  "usage": {"prompt_tokens": 120, "completion_tokens": 80}`,
		`}`,
	)

	a := New(&Config{
		StateDir: stateDir,
		UsageDir: usageDir,
		GroupBy:  "day",
		Timezone: "UTC",
	})

	report, err := a.BuildReport()
	require.NoError(t, err)

	require.Len(t, report.Buckets, 1)
	bucket := report.Buckets[0]
	assert.Equal(t, 1, bucket.Sessions, "one session, not two")
	assert.Equal(t, 120, bucket.InputTokens, "authoritative counts replace the 500-token estimate")
	assert.Equal(t, 80, bucket.OutputTokens)
}

func TestBuildReportUsageOnlySession(t *testing.T) {
	stateDir := t.TempDir()
	usageDir := t.TempDir()

	writeLines(t, usageDir, e2eSession+".log",
		`2025-06-02T14:30:00Z [debug] {"id":"r1","model":"o3","usage":{"prompt_tokens":50,"completion_tokens":25}}`,
	)

	a := New(&Config{
		StateDir: stateDir,
		UsageDir: usageDir,
		GroupBy:  "day",
		Timezone: "UTC",
	})

	report, err := a.BuildReport()
	require.NoError(t, err)

	require.Len(t, report.Buckets, 1)
	assert.Equal(t, "2025-06-02", report.Buckets[0].Key, "standalone usage is placed at its payload timestamp")
	assert.Equal(t, 50, report.Buckets[0].InputTokens)
}

func TestNewInvalidTimezoneFallsBackToLocal(t *testing.T) {
	a := New(&Config{Timezone: "Not/AZone"})
	assert.NotNil(t, a.location)
}
