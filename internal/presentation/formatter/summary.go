package formatter

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/penwyp/go-agent-usage/internal/util"
)

// SummaryFormatter renders a human-readable run summary.
type SummaryFormatter struct{}

// NewSummaryFormatter creates a new instance of SummaryFormatter.
func NewSummaryFormatter() *SummaryFormatter {
	return &SummaryFormatter{}
}

// separatorWidth adapts the separator to the terminal, with a sane default
// when stdout is not a terminal.
func separatorWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 || width > 100 {
		return 60
	}
	return width
}

func (f *SummaryFormatter) Format(report Report) error {
	width := separatorWidth()

	fmt.Println(strings.Repeat("=", width))
	fmt.Println("Agent Usage Summary Report")
	fmt.Println(strings.Repeat("=", width))
	fmt.Println()

	if len(report.Rows) == 0 {
		fmt.Println("No data to summarize")
		fmt.Println()
		fmt.Println(strings.Repeat("=", width))
		return nil
	}

	// Rows are sorted most-recent-first (or by cost when ranked), so min/max
	// key gives the covered range.
	first, last := report.Rows[0].Key, report.Rows[0].Key
	for _, row := range report.Rows {
		if row.Key < first {
			first = row.Key
		}
		if row.Key > last {
			last = row.Key
		}
	}
	if first == last {
		fmt.Printf("Date Range: %s\n", first)
	} else {
		fmt.Printf("Date Range: %s to %s\n", first, last)
	}
	fmt.Println()

	fmt.Println("Token Breakdown:")
	fmt.Printf("  Input: %s\n", util.FormatNumber(report.Totals.TotalInputTokens))
	fmt.Printf("  Output: %s\n", util.FormatNumber(report.Totals.TotalOutputTokens))
	fmt.Printf("  Total Tokens: %s\n", util.FormatNumber(report.Totals.TotalInputTokens+report.Totals.TotalOutputTokens))
	fmt.Println()

	fmt.Println("Cost Breakdown:")
	fmt.Printf("  Sessions: %s\n", util.FormatNumber(report.Totals.TotalSessions))
	fmt.Printf("  Total Cost: %s USD\n", util.FormatCurrency(report.Totals.TotalCost))
	fmt.Println()

	fmt.Println(strings.Repeat("=", width))

	return nil
}
