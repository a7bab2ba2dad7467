// Package reconciler merges session-state estimates with authoritative
// usage-log records into one usage figure per session. Precedence is
// asymmetric: event logs reliably say when a session happened, process logs
// reliably say how many tokens it used.
package reconciler

import (
	"fmt"

	"github.com/penwyp/go-agent-usage/internal/core/model"
	"github.com/penwyp/go-agent-usage/internal/data/parser"
	"github.com/penwyp/go-agent-usage/internal/util"
)

// Reconcile merges the two accumulated sets. For every estimate with a
// matching authoritative record the authoritative token counts replace the
// estimated ones (never summed). Authoritative records with no matching
// estimate are emitted standalone, but only when they carry a timestamp:
// without one they cannot be placed in a time bucket and are dropped.
func Reconcile(estimates *parser.EstimateSet, usage *parser.UsageSet) []model.ReconciledSession {
	result := make([]model.ReconciledSession, 0, estimates.Len())
	consumed := make(map[string]bool, estimates.Len())

	for _, est := range estimates.Sessions() {
		session := model.ReconciledSession{
			SessionID:    est.SessionID,
			Date:         est.Date,
			InputTokens:  est.EstimatedInputTokens,
			OutputTokens: est.EstimatedOutputTokens,
			Model:        est.Model,
		}

		if auth, ok := usage.Get(est.SessionID); ok {
			session.InputTokens = auth.PromptTokens
			session.OutputTokens = auth.CompletionTokens
			if session.Model == model.ModelDefault && auth.Model != "" {
				session.Model = auth.Model
			}
			consumed[est.SessionID] = true
		}

		if session.Date.IsZero() {
			util.LogDebug(fmt.Sprintf("Drop session %s: no resolvable date", session.SessionID))
			continue
		}

		result = append(result, session)
	}

	for _, auth := range usage.Sessions() {
		if consumed[auth.SessionID] {
			continue
		}
		if auth.Timestamp.IsZero() {
			util.LogDebug(fmt.Sprintf("Drop unplaceable usage record for session %s", auth.SessionID))
			continue
		}

		modelName := auth.Model
		if modelName == "" {
			modelName = model.ModelDefault
		}

		result = append(result, model.ReconciledSession{
			SessionID:    auth.SessionID,
			Date:         auth.Timestamp,
			InputTokens:  auth.PromptTokens,
			OutputTokens: auth.CompletionTokens,
			Model:        modelName,
		})
	}

	return result
}
