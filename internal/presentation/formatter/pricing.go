package formatter

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/penwyp/go-agent-usage/internal/core/pricing"
)

// PrintPricingTable renders the static pricing table, one row per entry in
// declaration order, rates in USD per million tokens.
func PrintPricingTable() {
	headers := []string{"Model", "Input ($/M)", "Output ($/M)"}
	entries := pricing.Entries()

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		row := []string{
			entry.Key,
			fmt.Sprintf("%.2f", entry.Pricing.Input),
			fmt.Sprintf("%.2f", entry.Pricing.Output),
		}
		for i, value := range row {
			if w := runewidth.StringWidth(value); w > widths[i] {
				widths[i] = w
			}
		}
		rows = append(rows, row)
	}

	printPricingRow(headers, widths)
	line := make([]string, len(widths))
	for i, w := range widths {
		line[i] = strings.Repeat("-", w)
	}
	printPricingRow(line, widths)
	for _, row := range rows {
		printPricingRow(row, widths)
	}
}

func printPricingRow(values []string, widths []int) {
	parts := make([]string, len(values))
	for i, value := range values {
		pad := widths[i] - runewidth.StringWidth(value)
		if i == 0 {
			parts[i] = value + strings.Repeat(" ", pad)
		} else {
			parts[i] = strings.Repeat(" ", pad) + value
		}
	}
	fmt.Println(strings.Join(parts, "  "))
}
