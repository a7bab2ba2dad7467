package parser

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-agent-usage/internal/core/model"
	"github.com/penwyp/go-agent-usage/internal/util"
)

// linePrefixRe matches the strict "TIMESTAMP [TAG] " prefix of a usage log
// line. Lines without it are continuations of a multi-line payload.
var linePrefixRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:?\d{2})) \[([^\]]+)\] (.*)$`)

const uuidPattern = `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`

var uuidRe = regexp.MustCompile(uuidPattern)

// announceRes recognize free-text session identifier announcements: a UUID
// near the word "session", or a workspace-initialization phrase.
var announceRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bsession\b[^{]{0,48}?` + uuidPattern),
	regexp.MustCompile(`(?i)` + uuidPattern + `[^{]{0,48}?\bsession\b`),
	regexp.MustCompile(`(?i)\binitializ\w*\b[^{]{0,64}?\bworkspace\b[^{]{0,48}?` + uuidPattern),
}

// announcedSessionID extracts a session id from a prefixed line's free-text
// payload, if the payload is an announcement.
func announcedSessionID(payload string) (string, bool) {
	for _, re := range announceRes {
		if m := re.FindString(payload); m != "" {
			return uuidRe.FindString(m), true
		}
	}
	return "", false
}

// UsageSet accumulates AuthoritativeUsage per session id: token counts sum,
// the model is kept once set, the timestamp is the earliest seen.
type UsageSet struct {
	sessions map[string]*model.AuthoritativeUsage
	order    []string
}

// NewUsageSet creates an empty UsageSet.
func NewUsageSet() *UsageSet {
	return &UsageSet{sessions: make(map[string]*model.AuthoritativeUsage)}
}

// Add merges one extracted payload record into the set.
func (s *UsageSet) Add(rec model.AuthoritativeUsage) {
	existing, ok := s.sessions[rec.SessionID]
	if !ok {
		copied := rec
		s.sessions[rec.SessionID] = &copied
		s.order = append(s.order, rec.SessionID)
		return
	}

	existing.PromptTokens += rec.PromptTokens
	existing.CompletionTokens += rec.CompletionTokens
	if (existing.Model == "" || existing.Model == model.ModelDefault) &&
		rec.Model != "" && rec.Model != model.ModelDefault {
		existing.Model = rec.Model
	}
	if !rec.Timestamp.IsZero() &&
		(existing.Timestamp.IsZero() || rec.Timestamp.Before(existing.Timestamp)) {
		existing.Timestamp = rec.Timestamp
	}
}

// Get returns the accumulated usage for a session id.
func (s *UsageSet) Get(sessionID string) (model.AuthoritativeUsage, bool) {
	rec, ok := s.sessions[sessionID]
	if !ok {
		return model.AuthoritativeUsage{}, false
	}
	return *rec, true
}

// Sessions returns accumulated usage records in first-seen order.
func (s *UsageSet) Sessions() []model.AuthoritativeUsage {
	result := make([]model.AuthoritativeUsage, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, *s.sessions[id])
	}
	return result
}

// Len returns the number of distinct sessions in the set.
func (s *UsageSet) Len() int {
	return len(s.sessions)
}

// UsageExtractor pulls embedded API response payloads out of usage logs.
// Deduplication by (sessionId, responseId) spans the whole run, so one
// extractor instance must process every file.
type UsageExtractor struct {
	set  *UsageSet
	seen map[string]struct{}
}

// NewUsageExtractor creates a new UsageExtractor.
func NewUsageExtractor() *UsageExtractor {
	return &UsageExtractor{
		set:  NewUsageSet(),
		seen: make(map[string]struct{}),
	}
}

// Results returns the accumulated usage set.
func (e *UsageExtractor) Results() *UsageSet {
	return e.set
}

// ExtractFiles processes files in order.
func (e *UsageExtractor) ExtractFiles(files []string) {
	for _, file := range files {
		e.ExtractFile(file)
	}
}

// payloadBuffer collects the lines of one embedded JSON payload together
// with the timestamp and session context captured when it was opened.
type payloadBuffer struct {
	lines     []string
	timestamp time.Time
	session   string
}

// ExtractFile runs the line state machine over a single usage log. A
// prefixed line whose payload starts with "{" opens a buffer; unprefixed
// lines append to it verbatim; the next prefixed line or EOF finalizes it.
func (e *UsageExtractor) ExtractFile(path string) {
	file, err := os.Open(path)
	if err != nil {
		util.LogDebug(fmt.Sprintf("Failed to open usage log: %s - %v", path, err))
		return
	}
	defer file.Close()

	fileSession := ""
	if base := filepath.Base(path); strings.HasSuffix(base, ".log") {
		if id := strings.TrimSuffix(base, ".log"); util.IsUUID(id) {
			fileSession = id
		}
	}
	currentSession := fileSession

	var buf *payloadBuffer

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		m := linePrefixRe.FindStringSubmatch(line)
		if m == nil {
			if buf != nil {
				buf.lines = append(buf.lines, line)
			}
			continue
		}

		// A prefixed line always closes any open buffer.
		e.finalize(path, buf, fileSession)
		buf = nil

		payload := m[3]
		if strings.HasPrefix(payload, "{") {
			buf = &payloadBuffer{
				lines:     []string{payload},
				timestamp: parseLineTimestamp(m[1]),
				session:   currentSession,
			}
			continue
		}

		if id, ok := announcedSessionID(payload); ok {
			currentSession = id
		}
	}

	if err := scanner.Err(); err != nil {
		util.LogDebug(fmt.Sprintf("Error scanning usage log: %s - %v", path, err))
	}

	e.finalize(path, buf, fileSession)
}

// finalize parses a closed buffer and accumulates its usage. Buffers that
// fail to parse, lack a usage object, or cannot resolve a session id are
// discarded silently.
func (e *UsageExtractor) finalize(path string, buf *payloadBuffer, fileSession string) {
	if buf == nil {
		return
	}

	raw := strings.Join(buf.lines, "\n")
	var payload model.ResponsePayload
	if err := sonic.Unmarshal([]byte(raw), &payload); err != nil {
		util.LogDebug(fmt.Sprintf("Discard unparseable payload in %s - %v", path, err))
		return
	}
	if payload.Usage == nil || payload.Usage.PromptTokens == nil || payload.Usage.CompletionTokens == nil {
		return
	}

	sessionID, ok := util.ResolveSessionID(payload.SessionID, buf.session, fileSession)
	if !ok {
		util.LogDebug(fmt.Sprintf("Discard payload with unresolvable session id in %s", path))
		return
	}

	if payload.ID != "" {
		key := sessionID + "|" + payload.ID
		if _, dup := e.seen[key]; dup {
			util.LogDebug(fmt.Sprintf("Duplicate response %s for session %s", payload.ID, sessionID))
			return
		}
		e.seen[key] = struct{}{}
	}

	e.set.Add(model.AuthoritativeUsage{
		SessionID:        sessionID,
		PromptTokens:     *payload.Usage.PromptTokens,
		CompletionTokens: *payload.Usage.CompletionTokens,
		Model:            payload.Model,
		Timestamp:        buf.timestamp,
	})
}

func parseLineTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
