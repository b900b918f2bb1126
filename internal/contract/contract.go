// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/annopredict/annopredict/schema"
)

// ProgressFunc receives progress updates from long-running loops.
// current counts processed items, starting at 1; total is the expected item count.
type ProgressFunc func(current, total int)

// StoreManager defines the interface for managing the persistence stores.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetGraphStore() CacheStore
	GetRunStore() RunStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// RunStore defines the interface for tracking evaluation runs and storing per-algorithm metrics.
type RunStore interface {
	// BeginRun creates a new evaluation run and returns its unique ID
	BeginRun(startTime time.Time, sampleSize int, seed int64, configParams map[string]any) (int64, error)

	// RecordMetrics stores the metrics of a successful algorithm
	RecordMetrics(runID int64, algorithm string, metrics *schema.MetricsResult, numExamples int) error

	// RecordFailure stores the reason an algorithm was omitted from a run
	RecordFailure(runID int64, algorithm string, reason string) error

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, succeeded, failed int) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// GetAllRuns returns every recorded run ordered by ID
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllMetrics returns every recorded algorithm outcome ordered by run and algorithm
	GetAllMetrics() ([]schema.AlgorithmMetricsRecord, error)

	// Close closes the underlying connection
	Close() error
}
