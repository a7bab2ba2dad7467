package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/penwyp/go-agent-usage/internal/util"
)

// eventLogName is the file name of a rich session log inside a session
// directory.
const eventLogName = "events.jsonl"

// StateScanner discovers session-state log files under a root directory.
type StateScanner struct {
	baseDir string
}

// NewStateScanner creates a new StateScanner instance.
func NewStateScanner(baseDir string) *StateScanner {
	return &StateScanner{baseDir: baseDir}
}

// Scan walks the state directory and returns session log files: every
// events.jsonl found inside a session subdirectory plus every other .jsonl
// file. An unreadable root yields an empty result rather than an error.
func (s *StateScanner) Scan() []string {
	start := time.Now()
	var eventLogs []string
	var flatLogs []string
	dirCount := 0

	util.LogDebug(fmt.Sprintf("Start scanning state directory: %s", s.baseDir))

	err := filepath.Walk(s.baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			util.LogDebug(fmt.Sprintf("Skip path (error): %s - %v", path, err))
			return nil
		}

		if info.IsDir() {
			dirCount++
			return nil
		}

		name := filepath.Base(path)
		switch {
		case name == eventLogName:
			eventLogs = append(eventLogs, path)
		case strings.HasSuffix(strings.ToLower(name), ".jsonl"):
			flatLogs = append(flatLogs, path)
		}

		return nil
	})
	if err != nil {
		util.LogDebug(fmt.Sprintf("State directory walk aborted: %s - %v", s.baseDir, err))
		return nil
	}

	sort.Strings(eventLogs)
	sort.Strings(flatLogs)
	files := append(eventLogs, flatLogs...)

	util.LogDebug(fmt.Sprintf("State scan completed: duration %v, %d directories, %d event logs, %d flat logs",
		time.Since(start), dirCount, len(eventLogs), len(flatLogs)))

	return files
}
