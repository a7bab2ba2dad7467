package analyzer

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/penwyp/go-agent-usage/internal/util"
)

// debounceDelay batches bursts of file events (an agent appending to a log
// produces many writes) into one re-run.
const debounceDelay = 500 * time.Millisecond

// RunWatch performs an initial analysis, then re-runs it whenever either
// input directory changes. It blocks until the watcher fails.
func (a *Analyzer) RunWatch() error {
	if err := a.Run(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range []string{a.config.StateDir, a.config.UsageDir} {
		if err := addRecursive(watcher, dir); err != nil {
			util.LogWarn(fmt.Sprintf("Failed to watch %s: %v", dir, err))
		}
	}

	debounce := time.NewTimer(debounceDelay)
	if !debounce.Stop() {
		<-debounce.C
	}

	util.LogInfo("Watching for log changes...")

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// New session directories need to be watched too.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addRecursive(watcher, event.Name); err != nil {
						util.LogDebug(fmt.Sprintf("Failed to watch new directory %s: %v", event.Name, err))
					}
				}
			}
			debounce.Reset(debounceDelay)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			util.LogWarn(fmt.Sprintf("Watcher error: %v", err))
		case <-debounce.C:
			if err := a.Run(); err != nil {
				util.LogError(fmt.Sprintf("Analysis failed: %v", err))
			}
		}
	}
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
