package iocache

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/annopredict/annopredict/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteRunStore(t *testing.T) *RunStoreImpl {
	t.Helper()
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*RunStoreImpl)
}

func sampleMetrics() *schema.MetricsResult {
	return &schema.MetricsResult{
		ROCAUC:                   0.875,
		PRAUC:                    0.8,
		OptimalThresholdYouden:   math.Inf(1),
		OptimalThresholdF1:       0.35,
		OptimalThresholdDistance: 0.5,
	}
}

func TestRunStore_NoneBackend(t *testing.T) {
	store, err := NewRunStore(schema.NoneBackend, "")
	require.NoError(t, err)

	runID, err := store.BeginRun(time.Now(), 100, 1, map[string]any{"algorithms": "random"})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), runID)

	assert.NoError(t, store.RecordMetrics(1, "random", sampleMetrics(), 200))
	assert.NoError(t, store.RecordFailure(1, "random", "boom"))
	assert.NoError(t, store.EndRun(1, time.Now(), 1, 1))

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)
	status, err := store.GetStatus()
	assert.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestRunStore_SQLiteLifecycle(t *testing.T) {
	store := newSQLiteRunStore(t)

	start := time.Now().Add(-1500 * time.Millisecond)
	runID, err := store.BeginRun(start, 5000, 42, map[string]any{"rank_by": "roc_auc"})
	require.NoError(t, err)
	assert.Greater(t, runID, int64(0))

	require.NoError(t, store.RecordMetrics(runID, "overlapping_neighbors", sampleMetrics(), 10000))
	require.NoError(t, store.RecordFailure(runID, "protein_degree", "metric undefined"))
	require.NoError(t, store.EndRun(runID, time.Now(), 1, 1))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, runID, run.RunID)
	assert.WithinDuration(t, start, run.StartTime, time.Millisecond)
	require.NotNil(t, run.EndTime)
	require.NotNil(t, run.RunDurationMs)
	assert.GreaterOrEqual(t, *run.RunDurationMs, int32(1500))
	assert.Equal(t, int32(5000), run.SampleSize)
	assert.Equal(t, int64(42), run.Seed)
	assert.Equal(t, int32(1), run.AlgorithmsOK)
	assert.Equal(t, int32(1), run.AlgorithmsFailed)
	require.NotNil(t, run.ConfigParams)
	assert.JSONEq(t, `{"rank_by":"roc_auc"}`, *run.ConfigParams)

	metrics, err := store.GetAllMetrics()
	require.NoError(t, err)
	require.Len(t, metrics, 2)

	ok := metrics[0]
	assert.Equal(t, "overlapping_neighbors", ok.Algorithm)
	assert.Equal(t, schema.StatusOK, ok.Status)
	require.NotNil(t, ok.ROCAUC)
	assert.Equal(t, 0.875, *ok.ROCAUC)
	assert.Nil(t, ok.ThresholdYouden, "an infinite threshold is stored as NULL")
	require.NotNil(t, ok.ThresholdF1)
	assert.Equal(t, 0.35, *ok.ThresholdF1)
	assert.Equal(t, int32(10000), ok.NumExamples)
	assert.Nil(t, ok.Failure)

	failed := metrics[1]
	assert.Equal(t, "protein_degree", failed.Algorithm)
	assert.Equal(t, schema.StatusFailed, failed.Status)
	assert.Nil(t, failed.ROCAUC)
	require.NotNil(t, failed.Failure)
	assert.Equal(t, "metric undefined", *failed.Failure)
	assert.False(t, failed.RecordedAt.IsZero())
}

func TestRunStore_MultipleRuns(t *testing.T) {
	store := newSQLiteRunStore(t)

	first, err := store.BeginRun(time.Now().Add(-time.Hour), 10, 1, nil)
	require.NoError(t, err)
	second, err := store.BeginRun(time.Now(), 20, 2, nil)
	require.NoError(t, err)
	assert.Greater(t, second, first)

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first, runs[0].RunID)
	assert.Nil(t, runs[0].EndTime, "unfinished runs have no end time")
	assert.Nil(t, runs[0].RunDurationMs)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.Equal(t, 2, status.TotalRuns)
	assert.Equal(t, second, status.LastRunID)
	assert.True(t, status.OldestRunTime.Before(status.LastRunTime))
	assert.Equal(t, int64(2), status.TableSizes[runsTable])
	assert.Equal(t, int64(0), status.TableSizes[metricsTable])
}

func TestRunStore_Errors(t *testing.T) {
	store := newSQLiteRunStore(t)

	err := store.EndRun(999, time.Now(), 0, 0)
	assert.Error(t, err, "ending an unknown run fails")

	err = store.RecordMetrics(1, "random", nil, 10)
	assert.Error(t, err)

	runID, err := store.BeginRun(time.Now(), 1, 1, nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordFailure(runID, "random", "first"))
	assert.Error(t, store.RecordFailure(runID, "random", "second"), "one outcome per algorithm and run")

	_, err = store.BeginRun(time.Now(), 1, 1, map[string]any{"bad": make(chan int)})
	assert.Error(t, err)
}

func TestNewRunStoreErrors(t *testing.T) {
	_, err := NewRunStore("oracle", "")
	assert.Error(t, err)
}

func TestClearRuns_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	store, err := NewRunStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, ClearRuns(schema.SQLiteBackend, path, ""))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestMigrateRuns(t *testing.T) {
	t.Run("none backend", func(t *testing.T) {
		err := MigrateRuns(schema.NoneBackend, "", -1, &bytes.Buffer{})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not supported")
	})

	t.Run("sqlite up and down", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "migrate.db")
		var out bytes.Buffer

		require.NoError(t, MigrateRuns(schema.SQLiteBackend, path, -1, &out))
		assert.Contains(t, out.String(), "Successfully migrated from version 0 to version 1")

		out.Reset()
		require.NoError(t, MigrateRuns(schema.SQLiteBackend, path, -1, &out))
		assert.Contains(t, out.String(), "No migration needed")

		out.Reset()
		require.NoError(t, MigrateRuns(schema.SQLiteBackend, path, 0, &out))
		assert.Contains(t, out.String(), "rolled back")

		require.NoError(t, MigrateRuns(schema.SQLiteBackend, path, 1, &out))
	})

	t.Run("migrated schema serves the store", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "runs.db")
		require.NoError(t, MigrateRuns(schema.SQLiteBackend, path, -1, &bytes.Buffer{}))

		store, err := NewRunStore(schema.SQLiteBackend, path)
		require.NoError(t, err)
		defer func() { _ = store.Close() }()
		runID, err := store.BeginRun(time.Now(), 1, 1, nil)
		require.NoError(t, err)
		assert.NoError(t, store.EndRun(runID, time.Now(), 0, 0))
	})
}

func TestExportRuns(t *testing.T) {
	t.Run("requires output file", func(t *testing.T) {
		err := ExportRuns(&MockRunStore{}, "", &bytes.Buffer{})
		assert.Error(t, err)
	})

	t.Run("requires a store", func(t *testing.T) {
		err := ExportRuns(nil, "out", &bytes.Buffer{})
		assert.Error(t, err)
	})

	t.Run("no runs", func(t *testing.T) {
		store := &MockRunStore{}
		store.On("GetStatus").Return(schema.RunStatus{Backend: "sqlite", Connected: true}, nil)
		err := ExportRuns(store, filepath.Join(t.TempDir(), "out"), &bytes.Buffer{})
		assert.ErrorContains(t, err, "no run data")
		store.AssertExpectations(t)
	})

	t.Run("status failure", func(t *testing.T) {
		store := &MockRunStore{}
		store.On("GetStatus").Return(schema.RunStatus{}, errors.New("db down"))
		err := ExportRuns(store, filepath.Join(t.TempDir(), "out"), &bytes.Buffer{})
		assert.ErrorContains(t, err, "db down")
	})

	t.Run("writes both files", func(t *testing.T) {
		store := newSQLiteRunStore(t)
		runID, err := store.BeginRun(time.Now(), 10, 1, map[string]any{"algorithms": "random"})
		require.NoError(t, err)
		require.NoError(t, store.RecordMetrics(runID, "random", sampleMetrics(), 20))
		require.NoError(t, store.EndRun(runID, time.Now(), 1, 0))

		prefix := filepath.Join(t.TempDir(), "history")
		var out bytes.Buffer
		require.NoError(t, ExportRuns(store, prefix, &out))

		for _, suffix := range []string{".runs.parquet", ".algorithm_metrics.parquet"} {
			info, err := os.Stat(prefix + suffix)
			require.NoError(t, err)
			assert.Greater(t, info.Size(), int64(0))
		}
		assert.Contains(t, out.String(), "Exported 1 runs")
		assert.Contains(t, out.String(), "Exported 1 algorithm records")
	})
}

func TestPrintRunStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintRunStatus(&buf, schema.RunStatus{
		Backend:            "sqlite",
		Connected:          true,
		TotalRuns:          2,
		LastRunID:          2,
		LastRunTime:        time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local),
		OldestRunTime:      time.Date(2024, 4, 1, 10, 0, 0, 0, time.Local),
		TotalAlgorithmRuns: 6,
		TableSizes:         map[string]int64{metricsTable: 6, runsTable: 2},
	})
	out := buf.String()
	assert.Contains(t, out, "Total Runs: 2")
	assert.Contains(t, out, "Total Algorithm Runs: 6")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(metricsTable)), bytes.Index(buf.Bytes(), []byte(runsTable+":")),
		"tables are listed alphabetically")
}
