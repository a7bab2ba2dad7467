package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-agent-usage/internal/analyzer"
	"github.com/penwyp/go-agent-usage/internal/presentation/formatter"
	"github.com/penwyp/go-agent-usage/internal/util"
)

var (
	// Logging related
	debug bool

	// Data paths
	stateDir string
	usageDir string

	// Grouping and ranking
	groupBy string
	rank    bool
	limit   int

	// Output related
	outputFormat string
	timezone     string

	// Modes
	watch       bool
	showPricing bool

	rootCmd = &cobra.Command{
		Use:   "go-agent-usage [flags]",
		Short: "AI coding agent usage and cost reporting tool",
		Long: `go-agent-usage estimates usage cost from the agent's local logs.

It reconciles two sources: session-state event logs (token counts estimated)
and process/usage logs embedding exact API token counts, then aggregates the
result into time-bucketed cost reports.

Examples:
  go-agent-usage                                  # Daily report with default directories
  go-agent-usage --state-dir ~/.agent/sessions    # Analyze a specific state directory
  go-agent-usage --group-by month --output json   # Monthly report as JSON
  go-agent-usage --group-by hour --rank --limit 10 # Top 10 hours by cost
  go-agent-usage --watch                          # Re-run on log changes
  go-agent-usage --pricing                        # Print the pricing table`,
		RunE: runAnalyze,
	}
)

const (
	defaultLogFile  = "~/.go-agent-usage/logs/app.log"
	defaultStateDir = "~/.agent/sessions"
	defaultUsageDir = "~/.agent/logs"

	// stateDirEnv overrides the state directory default when the flag is not
	// set explicitly.
	stateDirEnv = "AGENT_SESSIONS_DIR"
)

func init() {
	// Input data configuration
	rootCmd.Flags().StringVar(&stateDir, "state-dir", defaultStateDir,
		"Session-state log directory")
	rootCmd.Flags().StringVar(&usageDir, "usage-dir", defaultUsageDir,
		"Usage/process log directory")

	// Data organization
	rootCmd.Flags().StringVar(&groupBy, "group-by", "day",
		"Time bucket unit (day, month, hour)")
	rootCmd.Flags().BoolVar(&rank, "rank", false,
		"Sort buckets by descending cost instead of date")
	rootCmd.Flags().IntVar(&limit, "limit", 0,
		"Limit result count (0 = unlimited); totals stay unfiltered")

	// Output configuration
	rootCmd.Flags().StringVarP(&outputFormat, "output", "o", "table",
		"Output format (table, json, csv, summary)")
	rootCmd.Flags().StringVar(&timezone, "timezone", "Local",
		"Timezone for bucket boundaries (e.g., UTC, Asia/Shanghai)")

	// Modes
	rootCmd.Flags().BoolVarP(&watch, "watch", "w", false,
		"Re-run analysis whenever a log directory changes")
	rootCmd.Flags().BoolVar(&showPricing, "pricing", false,
		"Print the pricing table and exit")

	// System and debugging
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	logLevel := "info"
	if debug {
		logLevel = "debug"
	}

	logFile := expandPath(defaultLogFile)
	if err := ensureDir(filepath.Dir(logFile)); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	util.InitLogger(logLevel, logFile, debug)

	if showPricing {
		formatter.PrintPricingTable()
		return nil
	}

	resolvedStateDir := stateDir
	if !cmd.Flags().Changed("state-dir") {
		if env := os.Getenv(stateDirEnv); env != "" {
			resolvedStateDir = env
		}
	}

	config := &analyzer.Config{
		StateDir:     expandPath(resolvedStateDir),
		UsageDir:     expandPath(usageDir),
		OutputFormat: outputFormat,
		Timezone:     timezone,
		GroupBy:      groupBy,
		Rank:         rank,
		Limit:        limit,
	}

	a := analyzer.New(config)
	if watch {
		return a.RunWatch()
	}
	return a.Run()
}

func Execute() error {
	return rootCmd.Execute()
}

// Helper functions

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
