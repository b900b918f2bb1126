package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"strings"
	"time"

	"github.com/annopredict/annopredict/internal/contract"
	"github.com/annopredict/annopredict/schema"
)

// Table names for run tracking.
const (
	runsTable    = "annopredict_runs"
	metricsTable = "annopredict_algorithm_metrics"
)

// runTables lists the run tracking tables in dependency order.
var runTables = []string{runsTable, metricsTable}

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, defaultPathFor(true))
	if err != nil {
		return nil, err
	}
	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}
	return &RunStoreImpl{db: db, backend: backend}, nil
}

// createRunTables applies the initial schema migration statement by statement.
func createRunTables(db *sql.DB, backend schema.DatabaseBackend) error {
	data, err := fs.ReadFile(migrationsFS, fmt.Sprintf("migrations/%s/000001_create_run_tables.up.sql", backend))
	if err != nil {
		return err
	}
	for stmt := range strings.SplitSeq(string(data), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// disabled reports whether the store is a no-op.
func (rs *RunStoreImpl) disabled() bool {
	return rs.backend == schema.NoneBackend || rs.db == nil
}

// query formats a statement with backend-specific table quoting and placeholders.
// Every %s after the table name is replaced by the next placeholder.
func (rs *RunStoreImpl) query(format, table string, params int) string {
	args := []any{quoteTableName(table, rs.backend)}
	for _, p := range placeholders(rs.backend, params) {
		args = append(args, p)
	}
	return fmt.Sprintf(format, args...)
}

// BeginRun creates a new evaluation run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(startTime time.Time, sampleSize int, seed int64, configParams map[string]any) (int64, error) {
	// Skip for NoneBackend
	if rs.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	const insert = `INSERT INTO %s (start_time, sample_size, seed, config_params) VALUES (%s, %s, %s, %s)`
	args := []any{formatTime(startTime, rs.backend), sampleSize, seed, string(configJSON)}

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		err = rs.db.QueryRow(rs.query(insert+" RETURNING run_id", runsTable, 4), args...).Scan(&runID)
	default: // SQLite and MySQL
		var result sql.Result
		result, err = rs.db.Exec(rs.query(insert, runsTable, 4), args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// RecordMetrics stores the metrics of a successful algorithm.
func (rs *RunStoreImpl) RecordMetrics(runID int64, algorithm string, metrics *schema.MetricsResult, numExamples int) error {
	if rs.disabled() {
		return nil
	}
	if metrics == nil {
		return fmt.Errorf("no metrics to record for algorithm %s", algorithm)
	}

	const insert = `INSERT INTO %s (run_id, algorithm, recorded_at, status, roc_auc, pr_auc,
		threshold_youden, threshold_f1, threshold_distance, n_examples)
		VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)`
	_, err := rs.db.Exec(rs.query(insert, metricsTable, 10),
		runID, algorithm, formatTime(time.Now(), rs.backend), schema.StatusOK,
		finiteOrNull(metrics.ROCAUC), finiteOrNull(metrics.PRAUC),
		finiteOrNull(metrics.OptimalThresholdYouden), finiteOrNull(metrics.OptimalThresholdF1),
		finiteOrNull(metrics.OptimalThresholdDistance), numExamples)
	if err != nil {
		return fmt.Errorf("failed to insert metrics for %s: %w", algorithm, err)
	}
	return nil
}

// RecordFailure stores the reason an algorithm was omitted from a run.
func (rs *RunStoreImpl) RecordFailure(runID int64, algorithm string, reason string) error {
	if rs.disabled() {
		return nil
	}

	const insert = `INSERT INTO %s (run_id, algorithm, recorded_at, status, failure) VALUES (%s, %s, %s, %s, %s)`
	_, err := rs.db.Exec(rs.query(insert, metricsTable, 5),
		runID, algorithm, formatTime(time.Now(), rs.backend), schema.StatusFailed, reason)
	if err != nil {
		return fmt.Errorf("failed to insert failure for %s: %w", algorithm, err)
	}
	return nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, succeeded, failed int) error {
	if rs.disabled() {
		return nil
	}

	startTime, err := rs.scanTime(rs.db.QueryRow(rs.query(`SELECT start_time FROM %s WHERE run_id = %s`, runsTable, 1), runID))
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	durationMs := endTime.Sub(startTime).Milliseconds()

	const update = `UPDATE %s SET end_time = %s, run_duration_ms = %s, algorithms_ok = %s, algorithms_failed = %s WHERE run_id = %s`
	if _, err := rs.db.Exec(rs.query(update, runsTable, 5),
		formatTime(endTime, rs.backend), durationMs, succeeded, failed, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if rs.disabled() {
		return status, nil
	}

	quotedRuns := quoteTableName(runsTable, rs.backend)
	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		row := rs.db.QueryRow(fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns))
		lastID, lastTime, err := rs.scanIDAndTime(row)
		if err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		status.LastRunID, status.LastRunTime = lastID, lastTime

		row = rs.db.QueryRow(fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id ASC LIMIT 1", quotedRuns))
		if _, status.OldestRunTime, err = rs.scanIDAndTime(row); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}

		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(metricsTable, rs.backend))
		if err := rs.db.QueryRow(countQuery).Scan(&status.TotalAlgorithmRuns); err != nil {
			return status, fmt.Errorf("failed to get algorithm run count: %w", err)
		}
	}

	for _, table := range runTables {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend))
		if err := rs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	return status, nil
}

// GetAllRuns retrieves every recorded run ordered by ID.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, start_time, end_time, run_duration_ms, sample_size, seed,
		algorithms_ok, algorithms_failed, config_params FROM %s ORDER BY run_id`, quoteTableName(runsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		switch rs.backend {
		case schema.SQLiteBackend:
			var startStr string
			var endStr *string
			if err := rows.Scan(&record.RunID, &startStr, &endStr, &record.RunDurationMs, &record.SampleSize,
				&record.Seed, &record.AlgorithmsOK, &record.AlgorithmsFailed, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			if record.StartTime, err = parseTime(startStr); err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			if endStr != nil {
				endTime, err := parseTime(*endStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL store native datetimes
			if err := rows.Scan(&record.RunID, &record.StartTime, &record.EndTime, &record.RunDurationMs, &record.SampleSize,
				&record.Seed, &record.AlgorithmsOK, &record.AlgorithmsFailed, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllMetrics retrieves every recorded algorithm outcome ordered by run and algorithm.
func (rs *RunStoreImpl) GetAllMetrics() ([]schema.AlgorithmMetricsRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, algorithm, recorded_at, status, roc_auc, pr_auc,
		threshold_youden, threshold_f1, threshold_distance, n_examples, failure
		FROM %s ORDER BY run_id, algorithm`, quoteTableName(metricsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query algorithm metrics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AlgorithmMetricsRecord
	for rows.Next() {
		var record schema.AlgorithmMetricsRecord
		var recordedAt any = &record.RecordedAt
		var recordedStr string
		if rs.backend == schema.SQLiteBackend {
			recordedAt = &recordedStr
		}
		if err := rows.Scan(&record.RunID, &record.Algorithm, recordedAt, &record.Status, &record.ROCAUC, &record.PRAUC,
			&record.ThresholdYouden, &record.ThresholdF1, &record.ThresholdDistance, &record.NumExamples, &record.Failure); err != nil {
			return nil, fmt.Errorf("failed to scan algorithm metrics: %w", err)
		}
		if rs.backend == schema.SQLiteBackend {
			if record.RecordedAt, err = parseTime(recordedStr); err != nil {
				return nil, fmt.Errorf("failed to parse recorded_at: %w", err)
			}
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating algorithm metrics: %w", err)
	}
	return results, nil
}

// scanTime reads a single time column, handling the SQLite text encoding.
func (rs *RunStoreImpl) scanTime(row *sql.Row) (time.Time, error) {
	if rs.backend == schema.SQLiteBackend {
		var s string
		if err := row.Scan(&s); err != nil {
			return time.Time{}, err
		}
		return parseTime(s)
	}
	var t time.Time
	err := row.Scan(&t)
	return t, err
}

// scanIDAndTime reads a run ID and a time column.
func (rs *RunStoreImpl) scanIDAndTime(row *sql.Row) (int64, time.Time, error) {
	var id int64
	if rs.backend == schema.SQLiteBackend {
		var s string
		if err := row.Scan(&id, &s); err != nil {
			return 0, time.Time{}, err
		}
		t, err := parseTime(s)
		return id, t, err
	}
	var t time.Time
	err := row.Scan(&id, &t)
	return id, t, err
}

// finiteOrNull stores non-finite values (such as a +Inf threshold) as NULL.
func finiteOrNull(v float64) any {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return v
}
