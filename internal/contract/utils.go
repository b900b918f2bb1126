package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// AUC quality label constants.
const (
	ExcellentValue = "Excellent" // Excellent separation
	GoodValue      = "Good"      // Good separation
	FairValue      = "Fair"      // Fair separation
	PoorValue      = "Poor"      // Near or below chance
)

// Color variables for console output.
var (
	ExcellentColor = color.New(color.FgGreen, color.Bold) // ExcellentColor marks a strong separator.
	GoodColor      = color.New(color.FgCyan, color.Bold)  // GoodColor marks a useful separator.
	FairColor      = color.New(color.FgYellow)            // FairColor marks a weak separator.
	PoorColor      = color.New(color.FgRed)               // PoorColor marks chance-level scoring.
)

// GetPlainLabel returns a plain text label describing how well an area-under-curve
// value separates positives from negatives. This is the core logic used for
// CSV, JSON, and table printing.
func GetPlainLabel(auc float64) string {
	switch {
	case auc >= 0.9:
		return ExcellentValue
	case auc >= 0.8:
		return GoodValue
	case auc >= 0.7:
		return FairValue
	default:
		return PoorValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(auc float64) string {
	text := GetPlainLabel(auc)

	switch text {
	case ExcellentValue:
		return ExcellentColor.Sprint(text)
	case GoodValue:
		return GoodColor.Sprint(text)
	case FairValue:
		return FairColor.Sprint(text)
	default:
		return PoorColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	return os.Create(filePath)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for graph cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".annopredict_cache.db"
	}
	return filepath.Join(homeDir, ".annopredict_cache.db")
}

// GetRunsDBFilePath returns the path to the SQLite DB file for run tracking.
func GetRunsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".annopredict_runs.db"
	}
	return filepath.Join(homeDir, ".annopredict_runs.db")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
