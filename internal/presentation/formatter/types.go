package formatter

// BucketRow is one line of the usage report.
type BucketRow struct {
	Key          string  `json:"key"`
	Sessions     int     `json:"sessions"`
	InputTokens  int     `json:"inputTokens"`
	OutputTokens int     `json:"outputTokens"`
	Cost         float64 `json:"cost"`
}

// ReportTotals are run-wide sums over the full reconciliation.
type ReportTotals struct {
	TotalSessions     int     `json:"totalSessions"`
	TotalInputTokens  int     `json:"totalInputTokens"`
	TotalOutputTokens int     `json:"totalOutputTokens"`
	TotalCost         float64 `json:"totalCost"`
}

// Report is what the formatters render.
type Report struct {
	Rows   []BucketRow  `json:"buckets"`
	Totals ReportTotals `json:"totals"`
}
