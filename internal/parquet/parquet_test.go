package parquet

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/annopredict/annopredict/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readRows reads every row of a Parquet file written by writeRows.
func readRows[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestRunStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(Run))
	for _, col := range []string{
		"run_id", "start_time", "end_time", "run_duration_ms", "sample_size",
		"seed", "algorithms_ok", "algorithms_failed", "config_params",
	} {
		_, ok := s.Lookup(col)
		assert.True(t, ok, "column %s should exist in schema", col)
	}
}

func TestAlgorithmMetricsStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(AlgorithmMetrics))
	for _, col := range []string{
		"run_id", "algorithm", "recorded_at", "status", "roc_auc", "pr_auc",
		"threshold_youden", "threshold_f1", "threshold_distance", "n_examples", "failure",
	} {
		_, ok := s.Lookup(col)
		assert.True(t, ok, "column %s should exist in schema", col)
	}
}

func TestWriteRunsParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.parquet")
	data := MockFetchRuns()
	require.NoError(t, WriteRunsParquet(data, path))

	got := readRows[Run](t, path)
	require.Len(t, got, len(data))
	for i := range data {
		assert.Equal(t, data[i].RunID, got[i].RunID)
		assert.Equal(t, data[i].SampleSize, got[i].SampleSize)
		assert.Equal(t, data[i].Seed, got[i].Seed)
		if data[i].EndTime == nil {
			assert.Nil(t, got[i].EndTime)
		} else {
			require.NotNil(t, got[i].EndTime)
			assert.WithinDuration(t, *data[i].EndTime, *got[i].EndTime, time.Microsecond)
		}
		if data[i].ConfigParams == nil {
			assert.Nil(t, got[i].ConfigParams)
		} else {
			require.NotNil(t, got[i].ConfigParams)
			assert.Equal(t, *data[i].ConfigParams, *got[i].ConfigParams)
		}
	}
}

func TestWriteAlgorithmMetricsParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.parquet")
	data := MockFetchAlgorithmMetrics()
	require.NoError(t, WriteAlgorithmMetricsParquet(data, path))

	got := readRows[AlgorithmMetrics](t, path)
	require.Len(t, got, len(data))
	assert.Equal(t, "overlapping_neighbors", got[0].Algorithm)
	require.NotNil(t, got[0].ROCAUC)
	assert.InDelta(t, 0.912, *got[0].ROCAUC, 1e-12)
	assert.Nil(t, got[1].ThresholdYouden)
	assert.Equal(t, schema.StatusFailed, got[2].Status)
	require.NotNil(t, got[2].Failure)
	assert.Nil(t, got[2].ROCAUC)
}

func TestWriteParquet_EmptyData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteRunsParquet(nil, path))
	assert.Empty(t, readRows[Run](t, path))
}

func TestWriteParquet_InvalidPath(t *testing.T) {
	err := WriteRunsParquet(MockFetchRuns(), "/nonexistent/dir/runs.parquet")
	assert.Error(t, err)
	err = WriteRankingParquet(nil, "/nonexistent/dir/ranking.parquet")
	assert.Error(t, err)
}

func TestConvertRunRecords(t *testing.T) {
	end := time.Now()
	duration := int32(1500)
	records := []schema.RunRecord{
		{RunID: 7, StartTime: end.Add(-time.Second), EndTime: &end, RunDurationMs: &duration, SampleSize: 3, Seed: 9, AlgorithmsOK: 2, AlgorithmsFailed: 1},
	}
	got := ConvertRunRecords(records)
	require.Len(t, got, 1)
	assert.Equal(t, int64(7), got[0].RunID)
	assert.Equal(t, &duration, got[0].RunDurationMs)
	assert.Equal(t, int32(1), got[0].AlgorithmsFailed)
}

func TestConvertAlgorithmMetricsRecords(t *testing.T) {
	roc := 0.75
	records := []schema.AlgorithmMetricsRecord{{RunID: 1, Algorithm: "random", Status: schema.StatusOK, ROCAUC: &roc, NumExamples: 8}}
	got := ConvertAlgorithmMetricsRecords(records)
	require.Len(t, got, 1)
	assert.Equal(t, "random", got[0].Algorithm)
	assert.Equal(t, &roc, got[0].ROCAUC)
	assert.Equal(t, int32(8), got[0].NumExamples)
}

func TestConvertRanking(t *testing.T) {
	results := []schema.AlgorithmResult{
		{Name: "overlapping_neighbors", Metrics: &schema.MetricsResult{ROCAUC: 0.95, PRAUC: 0.9, OptimalThresholdYouden: math.Inf(1), OptimalThresholdF1: 0.4}},
		{Name: "random", Metrics: &schema.MetricsResult{ROCAUC: 0.5, PRAUC: 0.5}},
	}
	label := func(v float64) string {
		if v > 0.9 {
			return "high"
		}
		return "low"
	}

	rows := ConvertRanking(results, label)
	require.Len(t, rows, 2)
	assert.Equal(t, int32(1), rows[0].Rank)
	assert.Equal(t, "high", rows[0].Label)
	assert.Nil(t, rows[0].ThresholdYouden, "infinite thresholds are stored as null")
	require.NotNil(t, rows[0].ThresholdF1)
	assert.Equal(t, 0.4, *rows[0].ThresholdF1)
	assert.Equal(t, int32(2), rows[1].Rank)
	assert.Equal(t, "low", rows[1].Label)

	path := filepath.Join(t.TempDir(), "ranking.parquet")
	require.NoError(t, WriteRankingParquet(rows, path))
	got := readRows[Ranking](t, path)
	require.Len(t, got, 2)
	assert.Equal(t, "random", got[1].Algorithm)
}
