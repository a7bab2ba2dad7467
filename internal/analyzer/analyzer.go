package analyzer

import (
	"fmt"
	"os"
	"time"

	"github.com/penwyp/go-agent-usage/internal/data/aggregator"
	"github.com/penwyp/go-agent-usage/internal/data/parser"
	"github.com/penwyp/go-agent-usage/internal/data/reconciler"
	"github.com/penwyp/go-agent-usage/internal/data/scanner"
	"github.com/penwyp/go-agent-usage/internal/presentation/formatter"
	"github.com/penwyp/go-agent-usage/internal/util"
)

type Config struct {
	StateDir     string
	UsageDir     string
	OutputFormat string
	Timezone     string
	GroupBy      string
	Rank         bool
	Limit        int
}

type Analyzer struct {
	config   *Config
	location *time.Location
}

func New(config *Config) *Analyzer {
	location := time.Local
	if config.Timezone != "" && config.Timezone != "Local" {
		loc, err := time.LoadLocation(config.Timezone)
		if err != nil {
			util.LogWarn(fmt.Sprintf("Invalid timezone %q, falling back to Local: %v", config.Timezone, err))
		} else {
			location = loc
		}
	}

	return &Analyzer{
		config:   config,
		location: location,
	}
}

// BuildReport runs the scan/extract/reconcile/aggregate pipeline and
// returns the aggregation result. It fails only when neither input
// directory exists; a single missing source just yields fewer data points.
func (a *Analyzer) BuildReport() (aggregator.Report, error) {
	stateOK := dirExists(a.config.StateDir)
	usageOK := dirExists(a.config.UsageDir)
	if !stateOK && !usageOK {
		return aggregator.Report{}, fmt.Errorf("no input directories found (checked %s and %s)",
			a.config.StateDir, a.config.UsageDir)
	}
	if !stateOK {
		util.LogWarn(fmt.Sprintf("State directory missing, continuing with usage logs only: %s", a.config.StateDir))
	}
	if !usageOK {
		util.LogWarn(fmt.Sprintf("Usage directory missing, continuing with session state only: %s", a.config.UsageDir))
	}

	// Phase 1: Scan and extract session-state estimates
	stateStart := time.Now()
	stateFiles := scanner.NewStateScanner(a.config.StateDir).Scan()
	estimates := parser.ExtractSessionEstimates(stateFiles)
	util.LogDebug(fmt.Sprintf("Phase 1 - Session state: duration %v, %d files, %d sessions",
		time.Since(stateStart), len(stateFiles), estimates.Len()))

	// Phase 2: Scan and extract authoritative usage
	usageStart := time.Now()
	usageFiles := scanner.NewUsageScanner(a.config.UsageDir).Scan()
	extractor := parser.NewUsageExtractor()
	extractor.ExtractFiles(usageFiles)
	usage := extractor.Results()
	util.LogDebug(fmt.Sprintf("Phase 2 - Usage logs: duration %v, %d files, %d sessions",
		time.Since(usageStart), len(usageFiles), usage.Len()))

	// Phase 3: Reconcile the two sources
	reconcileStart := time.Now()
	sessions := reconciler.Reconcile(estimates, usage)
	util.LogDebug(fmt.Sprintf("Phase 3 - Reconciliation: duration %v, %d sessions",
		time.Since(reconcileStart), len(sessions)))

	// Phase 4: Aggregate into time buckets
	aggregateStart := time.Now()
	agg := aggregator.New(a.config.GroupBy, a.config.Rank, a.config.Limit, a.location)
	report := agg.Aggregate(sessions)
	util.LogDebug(fmt.Sprintf("Phase 4 - Aggregation: duration %v, %d buckets",
		time.Since(aggregateStart), len(report.Buckets)))

	return report, nil
}

func (a *Analyzer) Run() error {
	startTime := time.Now()
	util.LogInfo("Starting agent usage analysis...")

	report, err := a.BuildReport()
	if err != nil {
		return err
	}

	err = a.formatAndOutput(toFormatterReport(report))
	util.LogDebug(fmt.Sprintf("Total duration: %v", time.Since(startTime)))
	return err
}

func toFormatterReport(report aggregator.Report) formatter.Report {
	rows := make([]formatter.BucketRow, 0, len(report.Buckets))
	for _, bucket := range report.Buckets {
		rows = append(rows, formatter.BucketRow{
			Key:          bucket.Key,
			Sessions:     bucket.Sessions,
			InputTokens:  bucket.InputTokens,
			OutputTokens: bucket.OutputTokens,
			Cost:         bucket.Cost,
		})
	}
	return formatter.Report{
		Rows: rows,
		Totals: formatter.ReportTotals{
			TotalSessions:     report.Totals.TotalSessions,
			TotalInputTokens:  report.Totals.TotalInputTokens,
			TotalOutputTokens: report.Totals.TotalOutputTokens,
			TotalCost:         report.Totals.TotalCost,
		},
	}
}

func (a *Analyzer) formatAndOutput(report formatter.Report) error {
	switch a.config.OutputFormat {
	case "json":
		return formatter.NewJSONFormatter().Format(report)
	case "csv":
		return formatter.NewCSVFormatter().Format(report)
	case "summary":
		return formatter.NewSummaryFormatter().Format(report)
	default:
		return formatter.NewTableFormatter().Format(report)
	}
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
