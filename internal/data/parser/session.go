package parser

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-agent-usage/internal/core/model"
	"github.com/penwyp/go-agent-usage/internal/util"
)

// EstimateSet accumulates SessionEstimates per session id. Multiple files
// resolving to the same id sum their tokens, keep the earliest date, and
// keep the first non-default model observed.
type EstimateSet struct {
	sessions map[string]*model.SessionEstimate
	order    []string
}

// NewEstimateSet creates an empty EstimateSet.
func NewEstimateSet() *EstimateSet {
	return &EstimateSet{sessions: make(map[string]*model.SessionEstimate)}
}

// Add merges one file's estimate into the set.
func (s *EstimateSet) Add(est model.SessionEstimate) {
	existing, ok := s.sessions[est.SessionID]
	if !ok {
		copied := est
		s.sessions[est.SessionID] = &copied
		s.order = append(s.order, est.SessionID)
		return
	}

	existing.EstimatedInputTokens += est.EstimatedInputTokens
	existing.EstimatedOutputTokens += est.EstimatedOutputTokens
	if est.Date.Before(existing.Date) {
		existing.Date = est.Date
	}
	if existing.Model == model.ModelDefault && est.Model != model.ModelDefault {
		existing.Model = est.Model
	}
}

// Get returns the accumulated estimate for a session id.
func (s *EstimateSet) Get(sessionID string) (model.SessionEstimate, bool) {
	est, ok := s.sessions[sessionID]
	if !ok {
		return model.SessionEstimate{}, false
	}
	return *est, true
}

// Sessions returns accumulated estimates in first-seen order.
func (s *EstimateSet) Sessions() []model.SessionEstimate {
	result := make([]model.SessionEstimate, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, *s.sessions[id])
	}
	return result
}

// Len returns the number of distinct sessions in the set.
func (s *EstimateSet) Len() int {
	return len(s.sessions)
}

// ProvisionalSessionID derives a session id from a state log's path: the
// parent directory name for events.jsonl, the base name minus .jsonl
// otherwise.
func ProvisionalSessionID(path string) string {
	name := filepath.Base(path)
	if name == "events.jsonl" {
		return filepath.Base(filepath.Dir(path))
	}
	return strings.TrimSuffix(name, ".jsonl")
}

// estimateTokens approximates the token count of a text as the ceiling of
// its UTF-8 byte length divided by 4.
func estimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// ExtractSessionEstimate parses one session-state log file into at most one
// SessionEstimate. It returns false when the file never carried a parseable
// session-start timestamp. Malformed lines are skipped silently.
func ExtractSessionEstimate(path string) (model.SessionEstimate, bool) {
	file, err := os.Open(path)
	if err != nil {
		util.LogDebug(fmt.Sprintf("Failed to open state log: %s - %v", path, err))
		return model.SessionEstimate{}, false
	}
	defer file.Close()

	sessionID := ProvisionalSessionID(path)
	modelName := model.ModelDefault
	var startTime time.Time

	messageInput := 0
	outputTokens := 0
	truncationMax := 0
	truncationSeen := false

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	lineCount := 0
	for scanner.Scan() {
		lineCount++
		var event model.SessionEvent
		if err := sonic.Unmarshal(scanner.Bytes(), &event); err != nil {
			util.LogDebug(fmt.Sprintf("Skip invalid JSON line %s:%d - %v", path, lineCount, err))
			continue
		}

		switch event.Type {
		case model.EventSessionStart:
			if startTime.IsZero() && event.StartTime != "" {
				t, err := time.Parse(time.RFC3339, event.StartTime)
				if err != nil {
					util.LogDebug(fmt.Sprintf("Unparseable start time %s:%d - %v", path, lineCount, err))
				} else {
					startTime = t
				}
			}
			if event.SessionID != "" {
				sessionID = event.SessionID
			}
			if modelName == model.ModelDefault && event.Model != "" {
				modelName = event.Model
			}
		case model.EventSessionInfo:
			if modelName == model.ModelDefault && event.Model != "" {
				modelName = event.Model
			}
		case model.EventUserMessage:
			text := event.Text
			if event.NormalizedText != "" {
				text = event.NormalizedText
			}
			messageInput += estimateTokens(text)
		case model.EventContextTruncation:
			if event.PostTruncationTokensInMessages != nil {
				truncationSeen = true
				if *event.PostTruncationTokensInMessages > truncationMax {
					truncationMax = *event.PostTruncationTokensInMessages
				}
			}
		case model.EventAssistantMessage, model.EventAssistantReasoning:
			outputTokens += estimateTokens(event.Text)
		}
	}

	if err := scanner.Err(); err != nil {
		util.LogDebug(fmt.Sprintf("Error scanning state log: %s - %v", path, err))
	}

	if startTime.IsZero() {
		return model.SessionEstimate{}, false
	}

	// A truncation record reports the tokens actually held in context, which
	// beats the byte-length heuristic. Max across records, not sum: repeated
	// truncations describe overlapping windows.
	inputTokens := messageInput
	if truncationSeen {
		inputTokens = truncationMax
	}

	return model.SessionEstimate{
		SessionID:             sessionID,
		Date:                  startTime,
		EstimatedInputTokens:  inputTokens,
		EstimatedOutputTokens: outputTokens,
		Model:                 modelName,
	}, true
}

// ExtractSessionEstimates parses each file and accumulates the results into
// an EstimateSet.
func ExtractSessionEstimates(files []string) *EstimateSet {
	set := NewEstimateSet()
	for _, file := range files {
		est, ok := ExtractSessionEstimate(file)
		if !ok {
			util.LogDebug(fmt.Sprintf("No usable session estimate in %s", file))
			continue
		}
		set.Add(est)
	}
	return set
}
