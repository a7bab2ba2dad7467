package parser

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sessionA = "00aec530-0614-436f-a53b-faaa0b32f123"
	sessionB = "fb3a2c10-90ab-4cde-8f01-234567890abc"
)

func writeUsageLog(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestExtractFileMultilinePayload(t *testing.T) {
	dir := t.TempDir()
	path := writeUsageLog(t, dir, "process-2025-06-01.log",
		`2025-06-01T10:00:00Z [info] Starting session `+sessionA+` in /home/user/project
2025-06-01T10:00:05Z [debug] {
  "id": "resp_1",
  "model": "gpt-5.1-codex",
  "usage": {"prompt_tokens": 120, "completion_tokens": 80}
}
2025-06-01T10:00:06Z [info] request complete
`)

	extractor := NewUsageExtractor()
	extractor.ExtractFile(path)

	usage, ok := extractor.Results().Get(sessionA)
	require.True(t, ok)
	assert.Equal(t, 120, usage.PromptTokens)
	assert.Equal(t, 80, usage.CompletionTokens)
	assert.Equal(t, "gpt-5.1-codex", usage.Model)
	assert.Equal(t, time.Date(2025, 6, 1, 10, 0, 5, 0, time.UTC), usage.Timestamp.UTC())
}

func TestExtractFileSingleLinePayload(t *testing.T) {
	dir := t.TempDir()
	path := writeUsageLog(t, dir, sessionA+".log",
		`2025-06-01T09:00:00.123Z [debug] {"id":"resp_1","usage":{"prompt_tokens":10,"completion_tokens":5}}
2025-06-01T09:00:01Z [info] done
`)

	extractor := NewUsageExtractor()
	extractor.ExtractFile(path)

	usage, ok := extractor.Results().Get(sessionA)
	require.True(t, ok, "session id should fall back to the file name")
	assert.Equal(t, 10, usage.PromptTokens)
	assert.Equal(t, 5, usage.CompletionTokens)
}

func TestExtractFileDedupAcrossRun(t *testing.T) {
	payload := `2025-06-01T10:00:00Z [info] session ` + sessionA + ` resumed
2025-06-01T10:00:05Z [debug] {"id":"resp_1","usage":{"prompt_tokens":100,"completion_tokens":50}}
`
	dir := t.TempDir()
	first := writeUsageLog(t, dir, "process-a.log", payload)
	second := writeUsageLog(t, dir, "process-b.log", payload)

	once := NewUsageExtractor()
	once.ExtractFile(first)

	twice := NewUsageExtractor()
	twice.ExtractFiles([]string{first, second})

	usageOnce, ok := once.Results().Get(sessionA)
	require.True(t, ok)
	usageTwice, ok := twice.Results().Get(sessionA)
	require.True(t, ok)

	// The same (sessionId, responseId) observed twice counts once.
	assert.Equal(t, usageOnce.PromptTokens, usageTwice.PromptTokens)
	assert.Equal(t, usageOnce.CompletionTokens, usageTwice.CompletionTokens)
}

func TestExtractFileNoResponseIDCountsEach(t *testing.T) {
	dir := t.TempDir()
	path := writeUsageLog(t, dir, sessionA+".log",
		`2025-06-01T10:00:00Z [debug] {"usage":{"prompt_tokens":10,"completion_tokens":5}}
2025-06-01T10:00:01Z [debug] {"usage":{"prompt_tokens":10,"completion_tokens":5}}
`)

	extractor := NewUsageExtractor()
	extractor.ExtractFile(path)

	usage, ok := extractor.Results().Get(sessionA)
	require.True(t, ok)
	assert.Equal(t, 20, usage.PromptTokens)
	assert.Equal(t, 10, usage.CompletionTokens)
}

func TestExtractFilePayloadSessionWins(t *testing.T) {
	dir := t.TempDir()
	path := writeUsageLog(t, dir, "process-x.log",
		`2025-06-01T10:00:00Z [info] session `+sessionA+` started
2025-06-01T10:00:05Z [debug] {"session_id":"`+sessionB+`","usage":{"prompt_tokens":7,"completion_tokens":3}}
`)

	extractor := NewUsageExtractor()
	extractor.ExtractFile(path)

	_, hasA := extractor.Results().Get(sessionA)
	usage, hasB := extractor.Results().Get(sessionB)
	assert.False(t, hasA)
	require.True(t, hasB)
	assert.Equal(t, 7, usage.PromptTokens)
}

func TestExtractFileWorkspaceAnnouncement(t *testing.T) {
	dir := t.TempDir()
	path := writeUsageLog(t, dir, "process-x.log",
		`2025-06-01T10:00:00Z [info] Initializing workspace for `+sessionB+`
2025-06-01T10:00:05Z [debug] {"usage":{"prompt_tokens":42,"completion_tokens":17}}
`)

	extractor := NewUsageExtractor()
	extractor.ExtractFile(path)

	usage, ok := extractor.Results().Get(sessionB)
	require.True(t, ok)
	assert.Equal(t, 42, usage.PromptTokens)
}

func TestExtractFileUnresolvableSessionDiscarded(t *testing.T) {
	dir := t.TempDir()
	path := writeUsageLog(t, dir, "process-x.log",
		`2025-06-01T10:00:00Z [info] starting up
2025-06-01T10:00:05Z [debug] {"usage":{"prompt_tokens":99,"completion_tokens":99}}
`)

	extractor := NewUsageExtractor()
	extractor.ExtractFile(path)

	assert.Equal(t, 0, extractor.Results().Len())
}

func TestExtractFileEOFMidPayload(t *testing.T) {
	dir := t.TempDir()
	path := writeUsageLog(t, dir, sessionA+".log",
		`2025-06-01T10:00:00Z [debug] {
  "usage": {"prompt_tokens": 10,
`)

	extractor := NewUsageExtractor()
	extractor.ExtractFile(path)

	// Truncated trailing buffer is discarded, not an error.
	assert.Equal(t, 0, extractor.Results().Len())
}

func TestExtractFilePlainLinesIgnored(t *testing.T) {
	dir := t.TempDir()
	path := writeUsageLog(t, dir, sessionA+".log",
		`2025-06-01T10:00:00Z [info] nothing to see here
stray continuation line with no open buffer
2025-06-01T10:00:01Z [warn] usage: prompt_tokens=10 completion_tokens=5
`)

	extractor := NewUsageExtractor()
	extractor.ExtractFile(path)

	assert.Equal(t, 0, extractor.Results().Len())
}

func TestExtractFilePayloadWithoutUsageDiscarded(t *testing.T) {
	dir := t.TempDir()
	path := writeUsageLog(t, dir, sessionA+".log",
		`2025-06-01T10:00:00Z [debug] {"id":"resp_1","model":"gpt-5"}
2025-06-01T10:00:01Z [debug] {"usage":{"prompt_tokens":1}}
`)

	extractor := NewUsageExtractor()
	extractor.ExtractFile(path)

	// Missing usage object and missing completion_tokens both disqualify.
	assert.Equal(t, 0, extractor.Results().Len())
}

func TestUsageSetAccumulation(t *testing.T) {
	dir := t.TempDir()
	path := writeUsageLog(t, dir, sessionA+".log",
		`2025-06-01T10:00:00Z [debug] {"id":"r1","model":"gpt-5.1","usage":{"prompt_tokens":10,"completion_tokens":1}}
2025-06-01T09:00:00Z [debug] {"id":"r2","model":"default","usage":{"prompt_tokens":20,"completion_tokens":2}}
`)

	extractor := NewUsageExtractor()
	extractor.ExtractFile(path)

	usage, ok := extractor.Results().Get(sessionA)
	require.True(t, ok)
	assert.Equal(t, 30, usage.PromptTokens)
	assert.Equal(t, 3, usage.CompletionTokens)
	assert.Equal(t, "gpt-5.1", usage.Model, "sentinel must not overwrite a real model")
	assert.Equal(t, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC), usage.Timestamp.UTC(), "earliest timestamp wins")
}
