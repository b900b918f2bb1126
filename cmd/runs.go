package cmd

import (
	"fmt"
	"os"

	"github.com/annopredict/annopredict/internal/contract"
	"github.com/annopredict/annopredict/internal/iocache"
	"github.com/annopredict/annopredict/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsBackendConfig reads and validates the run tracking backend.
// An empty backend means NoneBackend.
func runsBackendConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backend := schema.DatabaseBackend(viper.GetString("runs-backend"))
	if backend == "" {
		backend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("runs-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// runsSetup loads minimal configuration needed for run store operations.
func runsSetup() error {
	backend, connStr, err := runsBackendConfig()
	if err != nil {
		return err
	}

	// No graph caching for runs commands
	if err := iocache.InitStores("", "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run store: %w", err)
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// runsSetupWrapper wraps runsSetup to provide PreRunE for runs commands.
func runsSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsSetup()
}

// runsMigrateSetup loads the backend without initializing stores or creating
// tables, so that migrations can run on a fresh database.
func runsMigrateSetup(cmd *cobra.Command, _ []string) error {
	if err := bindCommandFlags(cmd); err != nil {
		return fmt.Errorf("error binding migrate flags: %w", err)
	}
	backend, connStr, err := runsBackendConfig()
	if err != nil {
		return err
	}
	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr
	if backend == schema.SQLiteBackend {
		cfg.RunsDBConnect = sqliteFile(connStr, contract.GetRunsDBFilePath())
	}
	return nil
}

// runsCmd focused on evaluation run history.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage evaluation run tracking and exports",
	Long: `Manage the history of evaluation runs.

When --runs-backend is set, every evaluate and run invocation is recorded:
- Run metadata (timestamps, duration, sample size, seed, configuration)
- Per-algorithm ROC AUC, PR AUC and optimal thresholds
- The reason of every algorithm that failed

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, the default)

Subcommands:
  status  - Show run tracking statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all tracking data
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  annopredict runs status --runs-backend sqlite

  # Export for analysis in pandas/DuckDB
  annopredict runs export --runs-backend sqlite --output-file runs`,
}

// runsClearCmd clears the run history.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all evaluation run history",
	Long: `Delete all stored runs and per-algorithm metrics.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  annopredict runs export --runs-backend sqlite --output-file backup
  annopredict runs clear --runs-backend sqlite`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		iocache.CloseStores()
		if err := iocache.ClearRuns(cfg.RunsBackend, sqliteFile(cfg.RunsDBConnect, contract.GetRunsDBFilePath()), cfg.RunsDBConnect); err != nil {
			contract.LogFatal("Failed to clear run data", err)
		}
		fmt.Println("Run data cleared successfully.")
	},
}

// runsStatusCmd shows run store status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run tracking statistics and connection details",
	Long: `Show detailed information about evaluation run tracking.

Displays:
- Backend type and connection status
- Total number of runs and algorithm outcomes stored
- Last and oldest run timestamps
- Database table sizes

Examples:
  # Check run tracking status
  annopredict runs status --runs-backend sqlite`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetRunStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run status", err)
		}
		iocache.PrintRunStatus(os.Stdout, status)
	},
}

// runsExportCmd exports run history to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all stored runs and per-algorithm metrics to Parquet.

Writes two files:
- <output-file>.runs.parquet              - one row per run
- <output-file>.algorithm_metrics.parquet - one row per algorithm and run

Requires: --output-file parameter

Examples:
  # Export all data
  annopredict runs export --runs-backend sqlite --output-file annopredict

  # Use with DuckDB for analysis
  duckdb -c "SELECT algorithm, avg(roc_auc) FROM read_parquet('annopredict.algorithm_metrics.parquet') GROUP BY 1"`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteRunsExport(cfg.OutputFile, os.Stdout); err != nil {
			contract.LogFatal("Failed to export run data", err)
		}
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run tracking store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  annopredict runs migrate --runs-backend sqlite

  # Rollback to the initial state
  annopredict runs migrate --runs-backend sqlite --target-version 0`,
	PreRunE: runsMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateRuns(cfg.RunsBackend, cfg.RunsDBConnect, targetVersion, os.Stdout); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
