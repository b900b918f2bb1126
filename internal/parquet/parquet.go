// Package parquet provides data structures and functions for exporting evaluation
// runs and rankings to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/annopredict/annopredict/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single evaluation run with metadata.
// This struct maps to the annopredict_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// SampleSize is the number of positive (and negative) pairs evaluated
	SampleSize int32 `parquet:"sample_size,snappy"`

	// Seed is the random seed used for sampling and the random baseline
	Seed int64 `parquet:"seed,snappy"`

	AlgorithmsOK     int32 `parquet:"algorithms_ok,snappy"`
	AlgorithmsFailed int32 `parquet:"algorithms_failed,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// AlgorithmMetrics represents the outcome of one algorithm in a run.
// This struct maps to the annopredict_algorithm_metrics database table.
type AlgorithmMetrics struct {
	// RunID references the parent run
	RunID int64 `parquet:"run_id,snappy"`

	Algorithm  string    `parquet:"algorithm,snappy"`
	RecordedAt time.Time `parquet:"recorded_at,snappy"`

	// Status is "ok" or "failed"
	Status string `parquet:"status,snappy"`

	ROCAUC            *float64 `parquet:"roc_auc,optional,snappy"`
	PRAUC             *float64 `parquet:"pr_auc,optional,snappy"`
	ThresholdYouden   *float64 `parquet:"threshold_youden,optional,snappy"`
	ThresholdF1       *float64 `parquet:"threshold_f1,optional,snappy"`
	ThresholdDistance *float64 `parquet:"threshold_distance,optional,snappy"`
	NumExamples       int32    `parquet:"n_examples,snappy"`

	// Failure is the reason a failed algorithm was omitted (nullable)
	Failure *string `parquet:"failure,optional,snappy"`
}

// Ranking represents one row of a ranking report.
type Ranking struct {
	Rank      int32   `parquet:"rank,snappy"`
	Algorithm string  `parquet:"algorithm,snappy"`
	ROCAUC    float64 `parquet:"roc_auc,snappy"`
	PRAUC     float64 `parquet:"pr_auc,snappy"`
	Label     string  `parquet:"label,snappy"`

	// Thresholds are null when not finite
	ThresholdYouden   *float64 `parquet:"threshold_youden,optional,snappy"`
	ThresholdF1       *float64 `parquet:"threshold_f1,optional,snappy"`
	ThresholdDistance *float64 `parquet:"threshold_distance,optional,snappy"`
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteAlgorithmMetricsParquet writes a slice of AlgorithmMetrics structs to a Parquet file.
func WriteAlgorithmMetricsParquet(data []AlgorithmMetrics, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteRankingParquet writes a ranking report to a Parquet file.
func WriteRankingParquet(data []Ranking, outputPath string) error {
	return writeRows(data, outputPath)
}

// writeRows writes rows to a new Parquet file. The schema is derived from the struct tags of T.
func writeRows[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:            record.RunID,
			StartTime:        record.StartTime,
			EndTime:          record.EndTime,
			RunDurationMs:    record.RunDurationMs,
			SampleSize:       record.SampleSize,
			Seed:             record.Seed,
			AlgorithmsOK:     record.AlgorithmsOK,
			AlgorithmsFailed: record.AlgorithmsFailed,
			ConfigParams:     record.ConfigParams,
		}
	}
	return result
}

// ConvertAlgorithmMetricsRecords converts schema.AlgorithmMetricsRecord to AlgorithmMetrics for Parquet export.
func ConvertAlgorithmMetricsRecords(records []schema.AlgorithmMetricsRecord) []AlgorithmMetrics {
	result := make([]AlgorithmMetrics, len(records))
	for i, record := range records {
		result[i] = AlgorithmMetrics{
			RunID:             record.RunID,
			Algorithm:         record.Algorithm,
			RecordedAt:        record.RecordedAt,
			Status:            record.Status,
			ROCAUC:            record.ROCAUC,
			PRAUC:             record.PRAUC,
			ThresholdYouden:   record.ThresholdYouden,
			ThresholdF1:       record.ThresholdF1,
			ThresholdDistance: record.ThresholdDistance,
			NumExamples:       record.NumExamples,
			Failure:           record.Failure,
		}
	}
	return result
}

// ConvertRanking converts ranked algorithm results to Ranking rows. Ranks start at 1.
func ConvertRanking(results []schema.AlgorithmResult, label func(float64) string) []Ranking {
	rows := make([]Ranking, len(results))
	for i, r := range results {
		m := r.Metrics
		rows[i] = Ranking{
			Rank:              int32(i + 1),
			Algorithm:         r.Name,
			ROCAUC:            m.ROCAUC,
			PRAUC:             m.PRAUC,
			Label:             label(m.ROCAUC),
			ThresholdYouden:   finite(m.OptimalThresholdYouden),
			ThresholdF1:       finite(m.OptimalThresholdF1),
			ThresholdDistance: finite(m.OptimalThresholdDistance),
		}
	}
	return rows
}

func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

// MockFetchRuns generates sample Run data for demonstration.
func MockFetchRuns() []Run {
	now := time.Now()
	startTime1 := now.Add(-2 * time.Hour)
	endTime1 := startTime1.Add(90 * time.Second)
	durationMs1 := int32(endTime1.Sub(startTime1).Milliseconds())
	configParams1 := `{"algorithms":"overlapping_neighbors,random","rank_by":"roc_auc"}`

	startTime2 := now.Add(-10 * time.Minute)
	// Note: the second run has no end time to demonstrate nullable fields

	return []Run{
		{
			RunID:         1,
			StartTime:     startTime1,
			EndTime:       &endTime1,
			RunDurationMs: &durationMs1,
			SampleSize:    10000,
			Seed:          1,
			AlgorithmsOK:  2,
			ConfigParams:  &configParams1,
		},
		{
			RunID:      2,
			StartTime:  startTime2,
			SampleSize: 500,
			Seed:       42,
		},
	}
}

// MockFetchAlgorithmMetrics generates sample AlgorithmMetrics data for demonstration.
func MockFetchAlgorithmMetrics() []AlgorithmMetrics {
	now := time.Now()
	rocOverlap, prOverlap, youden, f1 := 0.912, 0.887, 0.41, 0.33
	rocRandom, prRandom := 0.502, 0.497
	reason := "metric undefined: 0 positive and 0 negative examples"

	return []AlgorithmMetrics{
		{
			RunID:           1,
			Algorithm:       "overlapping_neighbors",
			RecordedAt:      now.Add(-2 * time.Hour),
			Status:          schema.StatusOK,
			ROCAUC:          &rocOverlap,
			PRAUC:           &prOverlap,
			ThresholdYouden: &youden,
			ThresholdF1:     &f1,
			NumExamples:     20000,
		},
		{
			RunID:       1,
			Algorithm:   "random",
			RecordedAt:  now.Add(-2 * time.Hour),
			Status:      schema.StatusOK,
			ROCAUC:      &rocRandom,
			PRAUC:       &prRandom,
			NumExamples: 20000,
		},
		{
			RunID:      2,
			Algorithm:  "protein_degree",
			RecordedAt: now.Add(-10 * time.Minute),
			Status:     schema.StatusFailed,
			Failure:    &reason,
		},
	}
}
