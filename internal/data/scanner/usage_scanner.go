package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/penwyp/go-agent-usage/internal/util"
)

// UsageScanner lists authoritative usage log files in a directory.
type UsageScanner struct {
	dir string
}

// NewUsageScanner creates a new UsageScanner instance.
func NewUsageScanner(dir string) *UsageScanner {
	return &UsageScanner{dir: dir}
}

// Scan returns usage log files in a fixed priority order: process logs
// (process-*.log) lexically sorted, then session-id-named logs (<uuid>.log)
// lexically sorted. A missing directory yields an empty result.
func (s *UsageScanner) Scan() []string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		util.LogDebug(fmt.Sprintf("Usage directory unreadable: %s - %v", s.dir, err))
		return nil
	}

	var processLogs []string
	var sessionLogs []string

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".log") {
			continue
		}

		switch {
		case strings.HasPrefix(name, "process-"):
			processLogs = append(processLogs, filepath.Join(s.dir, name))
		case util.IsUUID(strings.TrimSuffix(name, ".log")):
			sessionLogs = append(sessionLogs, filepath.Join(s.dir, name))
		}
	}

	sort.Strings(processLogs)
	sort.Strings(sessionLogs)

	util.LogDebug(fmt.Sprintf("Usage scan completed: %d process logs, %d session logs",
		len(processLogs), len(sessionLogs)))

	return append(processLogs, sessionLogs...)
}
