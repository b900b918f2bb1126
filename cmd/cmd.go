// Package cmd defines the command-line interface for annopredict.
package cmd

import (
	"github.com/annopredict/annopredict/internal/contract"
	"github.com/annopredict/annopredict/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(networkCmd)
	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(algorithmsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(runsCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("interactome", "i", "", "Path to the protein interaction table")
	rootCmd.PersistentFlags().StringP("annotations", "a", "", "Path to the GO annotation table")
	rootCmd.PersistentFlags().String("interactome-columns", contract.DefaultInteractomeColumns, "Zero-based interactome columns: nameA,nameB,idA,idB")
	rootCmd.PersistentFlags().String("annotation-columns", contract.DefaultAnnotationColumns, "Zero-based annotation columns: protein,go_term")
	rootCmd.PersistentFlags().String("interactome-delimiter", contract.DefaultInteractomeDelimiter, "Interactome delimiter: tab or comma or semicolon or space or pipe or a single character")
	rootCmd.PersistentFlags().String("annotation-delimiter", contract.DefaultAnnotationDelimiter, "Annotation delimiter: tab or comma or semicolon or space or pipe or a single character")
	rootCmd.PersistentFlags().String("dataset-dir", contract.DefaultDatasetDir, "Directory holding the sampled dataset and the saved network")
	rootCmd.PersistentFlags().String("output-dir", contract.DefaultOutputDir, "Directory for prediction tables, threshold report and curves")
	rootCmd.PersistentFlags().String("graph-file", "", "Path of the saved network (default <dataset-dir>/graph.json)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Graph cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("runs-backend", "", "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("runs-db-connect", "", "Database connection string for run tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("progress", "yes", "Draw progress bars on interactive terminals (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Sampling flags are shared by sampleCmd and runCmd
	for _, c := range []*cobra.Command{sampleCmd, runCmd} {
		c.Flags().Int("sample-size", contract.DefaultSampleSize, "Number of positive and of negative pairs to draw")
		c.Flags().Int64("seed", contract.DefaultSeed, "Seed for sampling and the random baseline")
		c.Flags().Int("max-retries", contract.DefaultMaxRetries, "Attempts per negative pair before giving up")
		c.Flags().String("on-exhausted", string(schema.AbortOnExhausted), "When a negative cannot be drawn: abort or skip")
	}

	// Evaluation flags are shared by evaluateCmd and runCmd
	for _, c := range []*cobra.Command{evaluateCmd, runCmd} {
		c.Flags().String("algorithms", contract.DefaultAlgorithm, "Comma-separated algorithms to evaluate (see 'annopredict algorithms')")
		c.Flags().String("rank-by", string(schema.ROCAUCKey), "Ranking metric: roc_auc or pr_auc")
		c.Flags().String("thresholds", "yes", "Write the optimal threshold report (yes/no/true/false/1/0)")
		c.Flags().String("curves", "no", "Write ROC and PR curve points per algorithm (yes/no/true/false/1/0)")
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
}

// bindCommandFlags binds the local flags of the running command only. Commands
// share flag names, so binding every command at init would let the last one win.
func bindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
