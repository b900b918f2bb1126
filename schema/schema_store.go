package schema

import "time"

// RunRecord represents a row from the annopredict_runs table.
type RunRecord struct {
	RunID            int64
	StartTime        time.Time
	EndTime          *time.Time
	RunDurationMs    *int32
	SampleSize       int32
	Seed             int64
	AlgorithmsOK     int32
	AlgorithmsFailed int32
	ConfigParams     *string
}

// AlgorithmMetricsRecord represents a row from the annopredict_algorithm_metrics table.
type AlgorithmMetricsRecord struct {
	RunID             int64
	Algorithm         string
	RecordedAt        time.Time
	Status            string
	ROCAUC            *float64
	PRAUC             *float64
	ThresholdYouden   *float64
	ThresholdF1       *float64
	ThresholdDistance *float64
	NumExamples       int32
	Failure           *string
}
