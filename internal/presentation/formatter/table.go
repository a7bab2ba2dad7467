package formatter

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/penwyp/go-agent-usage/internal/util"
)

type TableFormatter struct {
	headers []string
}

func NewTableFormatter() *TableFormatter {
	return &TableFormatter{
		headers: []string{"Date", "Sessions", "Input", "Output", "Cost (USD)"},
	}
}

func (f *TableFormatter) Format(report Report) error {
	widths := f.calculateColumnWidths(report)

	f.printBorder(widths, "top")
	f.printRow(f.headers, widths)
	f.printBorder(widths, "middle")

	for _, row := range report.Rows {
		f.printRow(f.rowValues(row), widths)
	}

	f.printBorder(widths, "middle")
	f.printRow(f.totalValues(report.Totals), widths)
	f.printBorder(widths, "bottom")

	return nil
}

func (f *TableFormatter) rowValues(row BucketRow) []string {
	return []string{
		row.Key,
		util.FormatNumber(row.Sessions),
		util.FormatNumber(row.InputTokens),
		util.FormatNumber(row.OutputTokens),
		util.FormatCost(row.Cost),
	}
}

func (f *TableFormatter) totalValues(totals ReportTotals) []string {
	return []string{
		"Total",
		util.FormatNumber(totals.TotalSessions),
		util.FormatNumber(totals.TotalInputTokens),
		util.FormatNumber(totals.TotalOutputTokens),
		util.FormatCost(totals.TotalCost),
	}
}

// calculateColumnWidths determines the width for each column based on
// content, using display width rather than byte length.
func (f *TableFormatter) calculateColumnWidths(report Report) []int {
	widths := make([]int, len(f.headers))
	for i, header := range f.headers {
		widths[i] = runewidth.StringWidth(header)
	}

	rows := make([][]string, 0, len(report.Rows)+1)
	for _, row := range report.Rows {
		rows = append(rows, f.rowValues(row))
	}
	rows = append(rows, f.totalValues(report.Totals))

	for _, values := range rows {
		for i, value := range values {
			if w := runewidth.StringWidth(value); w > widths[i] {
				widths[i] = w
			}
		}
	}

	for i := range widths {
		if widths[i] < 8 {
			widths[i] = 8
		}
	}

	return widths
}

func (f *TableFormatter) printBorder(widths []int, borderType string) {
	var left, middle, right string

	switch borderType {
	case "top":
		left, middle, right = "┌", "┬", "┐"
	case "middle":
		left, middle, right = "├", "┼", "┤"
	case "bottom":
		left, middle, right = "└", "┴", "┘"
	}

	fmt.Print(left)
	for i, width := range widths {
		fmt.Print(strings.Repeat("─", width+2))
		if i < len(widths)-1 {
			fmt.Print(middle)
		}
	}
	fmt.Println(right)
}

func (f *TableFormatter) printRow(values []string, widths []int) {
	fmt.Print("│")
	for i, value := range values {
		pad := widths[i] - runewidth.StringWidth(value)
		if pad < 0 {
			pad = 0
		}
		if i == 0 {
			// Key column is left-aligned, numeric columns right-aligned.
			fmt.Printf(" %s%s │", value, strings.Repeat(" ", pad))
		} else {
			fmt.Printf(" %s%s │", strings.Repeat(" ", pad), value)
		}
	}
	fmt.Println()
}
