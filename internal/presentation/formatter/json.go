package formatter

import (
	"encoding/json"
	"os"

	"github.com/penwyp/go-agent-usage/internal/util"
)

type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format writes the report as indented JSON. Costs are rounded to 4 decimal
// places here, at the formatting boundary.
func (f *JSONFormatter) Format(report Report) error {
	rounded := Report{
		Rows:   make([]BucketRow, len(report.Rows)),
		Totals: report.Totals,
	}
	for i, row := range report.Rows {
		row.Cost = util.RoundCost(row.Cost)
		rounded.Rows[i] = row
	}
	rounded.Totals.TotalCost = util.RoundCost(rounded.Totals.TotalCost)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rounded)
}
