package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsageScannerMissingDirectory(t *testing.T) {
	scanner := NewUsageScanner("/path/that/does/not/exist")
	assert.Empty(t, scanner.Scan())
}

func TestUsageScannerPriorityOrder(t *testing.T) {
	tempDir := t.TempDir()

	uuid2 := writeFile(t, tempDir, "fb3a2c10-90ab-4cde-8f01-234567890abc.log")
	proc2 := writeFile(t, tempDir, "process-2025-06-02.log")
	uuid1 := writeFile(t, tempDir, "00aec530-0614-436f-a53b-faaa0b32f123.log")
	proc1 := writeFile(t, tempDir, "process-2025-06-01.log")
	writeFile(t, tempDir, "debug.log")    // neither pattern
	writeFile(t, tempDir, "process.txt")  // wrong extension
	writeFile(t, tempDir, "not-a-uuid.log")

	files := NewUsageScanner(tempDir).Scan()

	// Process logs first (sorted), then session-id logs (sorted).
	assert.Equal(t, []string{proc1, proc2, uuid1, uuid2}, files)
}

func TestUsageScannerSkipsDirectories(t *testing.T) {
	tempDir := t.TempDir()
	writeFile(t, tempDir, "process-nested/inner.log")
	proc := writeFile(t, tempDir, "process-a.log")

	files := NewUsageScanner(tempDir).Scan()
	assert.Equal(t, []string{proc}, files)
}
