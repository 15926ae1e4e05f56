package conventions

import (
	"fmt"
	"path/filepath"
)

const (
	// DefaultDataDir is the default upkeep data directory name (relative to home).
	DefaultDataDir = ".upkeep"
	// LogsDir is the subdirectory holding per-run log artifacts.
	LogsDir = "logs"
	// DBFile is the run history database filename.
	DBFile = "upkeep.db"
)

// LogsPath returns the directory holding run log artifacts.
func LogsPath(dataDir string) string {
	return filepath.Join(dataDir, LogsDir)
}

// LogFilePath returns the log artifact path for a run.
func LogFilePath(logDir, runID string) string {
	return filepath.Join(logDir, fmt.Sprintf("upkeep-%s.log", runID))
}

// DBPath returns the run history database path.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, DBFile)
}
