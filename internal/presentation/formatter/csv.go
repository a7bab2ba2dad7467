package formatter

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/penwyp/go-agent-usage/internal/util"
)

type CSVFormatter struct{}

func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{}
}

func (f *CSVFormatter) Format(report Report) error {
	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	headers := []string{"Date", "Sessions", "Input", "Output", "Cost (USD)"}
	if err := w.Write(headers); err != nil {
		return err
	}

	for _, row := range report.Rows {
		record := []string{
			row.Key,
			fmt.Sprintf("%d", row.Sessions),
			fmt.Sprintf("%d", row.InputTokens),
			fmt.Sprintf("%d", row.OutputTokens),
			fmt.Sprintf("%.4f", util.RoundCost(row.Cost)),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	totals := []string{
		"Total",
		fmt.Sprintf("%d", report.Totals.TotalSessions),
		fmt.Sprintf("%d", report.Totals.TotalInputTokens),
		fmt.Sprintf("%d", report.Totals.TotalOutputTokens),
		fmt.Sprintf("%.4f", util.RoundCost(report.Totals.TotalCost)),
	}
	return w.Write(totals)
}
