package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/annopredict/annopredict/internal/contract"
	"github.com/annopredict/annopredict/internal/parquet"
)

// ExecuteRunsExport exports the global run store to Parquet files.
func ExecuteRunsExport(outputFile string, w io.Writer) error {
	return ExportRuns(Manager.GetRunStore(), outputFile, w)
}

// ExportRuns writes every run and algorithm outcome of the store to
// <outputFile>.runs.parquet and <outputFile>.algorithm_metrics.parquet.
func ExportRuns(store contract.RunStore, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run tracking is not configured. Set --runs-backend")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total algorithm records: %d\n", status.TableSizes[metricsTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	metrics, err := store.GetAllMetrics()
	if err != nil {
		return fmt.Errorf("failed to retrieve algorithm metrics: %w", err)
	}

	parquetRuns := parquet.ConvertRunRecords(runs)
	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	parquetMetrics := parquet.ConvertAlgorithmMetricsRecords(metrics)
	metricsFile := outputFile + ".algorithm_metrics.parquet"
	if err := parquet.WriteAlgorithmMetricsParquet(parquetMetrics, metricsFile); err != nil {
		return fmt.Errorf("failed to write algorithm metrics: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d algorithm records to: %s\n", len(parquetMetrics), metricsFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be read with DuckDB, Pandas (via pyarrow), Spark or Arrow.")
	return nil
}
