package model

import "time"

// ModelDefault is the sentinel used when no model hint has been observed yet.
const ModelDefault = "default"

// SessionEstimate is the per-session result of parsing one or more
// session-state log files. Token counts are heuristic estimates unless a
// context_truncation event supplied an authoritative post-truncation count.
type SessionEstimate struct {
	SessionID             string
	Date                  time.Time
	EstimatedInputTokens  int
	EstimatedOutputTokens int
	Model                 string
}

// AuthoritativeUsage accumulates exact token counts extracted from API
// response payloads embedded in usage logs, one record per session.
// Timestamp is the earliest log-line timestamp seen for the session and may
// be zero when no prefixed line carried one.
type AuthoritativeUsage struct {
	SessionID        string
	PromptTokens     int
	CompletionTokens int
	Model            string
	Timestamp        time.Time
}

// ReconciledSession is the merge of a SessionEstimate and an optional
// AuthoritativeUsage for the same session. When an authoritative record
// exists its counts fully replace the estimate's.
type ReconciledSession struct {
	SessionID    string
	Date         time.Time
	InputTokens  int
	OutputTokens int
	Model        string
	Cost         float64
}

// Session-state event types.
const (
	EventSessionStart       = "session_start"
	EventSessionInfo        = "session_info"
	EventUserMessage        = "user_message"
	EventContextTruncation  = "context_truncation"
	EventAssistantMessage   = "assistant_message"
	EventAssistantReasoning = "assistant_reasoning"
)

// SessionEvent is a single newline-delimited JSON record in a session-state
// log. Only the fields relevant to the event's type are populated.
type SessionEvent struct {
	Type      string `json:"type"`
	StartTime string `json:"startTime,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Model     string `json:"model,omitempty"`
	// Message content. NormalizedText is preferred over Text when both are
	// present.
	Text           string `json:"text,omitempty"`
	NormalizedText string `json:"normalizedText,omitempty"`
	// Tokens left in context after a truncation pass.
	PostTruncationTokensInMessages *int `json:"postTruncationTokensInMessages,omitempty"`
}

// ResponseUsage mirrors the OpenAI-compatible usage object inside an API
// response payload. Pointers distinguish absent fields from zero counts.
type ResponseUsage struct {
	PromptTokens     *int `json:"prompt_tokens"`
	CompletionTokens *int `json:"completion_tokens"`
}

// ResponsePayload is an embedded JSON response object found in a usage log.
type ResponsePayload struct {
	ID        string         `json:"id,omitempty"`
	Model     string         `json:"model,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	Usage     *ResponseUsage `json:"usage,omitempty"`
}
