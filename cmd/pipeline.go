package cmd

import (
	"github.com/annopredict/annopredict/core"
	"github.com/annopredict/annopredict/internal/contract"
	"github.com/spf13/cobra"
)

// networkCmd builds the protein interaction network.
var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Build the protein interaction and GO annotation network.",
	Long: `Read the interactome and the GO annotation table and build the undirected
network of protein to protein and protein to GO term edges.

The network is saved to --graph-file so that 'sample' and 'evaluate' can reuse it
without the input tables. Builds are cached in the configured graph cache and
reused while the input files are unchanged.

Examples:
  # Build the network from BioGRID-style tables
  annopredict network --interactome interactome.tsv --annotations go_annotations.csv

  # Custom column layout and delimiter
  annopredict network -i ppi.csv --interactome-delimiter comma --interactome-columns 0,1,2,3 -a go.csv

  # Summary as JSON
  annopredict network -i interactome.tsv -a go_annotations.csv --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteNetwork(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot build network", err)
		}
	},
}

// sampleCmd draws the balanced dataset.
var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Draw a balanced dataset of positive and negative pairs.",
	Long: `Draw --sample-size positive protein to GO term pairs from the annotations and
as many negative pairs, where no negative protein is linked to its GO term in
the network.

The dataset is written to --dataset-dir as positive_protein_go_term_pairs.csv and
negative_protein_go_term_pairs.csv. Sampling is reproducible for a given --seed.

Examples:
  # Sample 1000 pairs of each class
  annopredict sample -i interactome.tsv -a go_annotations.csv --sample-size 1000

  # Skip negatives that cannot be drawn instead of failing
  annopredict sample -i interactome.tsv -a go_annotations.csv --on-exhausted skip`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSample(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot sample dataset", err)
		}
	},
}

// evaluateCmd scores the saved dataset and ranks the algorithms.
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate algorithms on the saved dataset and rank them.",
	Long: `Score every pair of the saved dataset with each algorithm, compute ROC and PR
curves, their areas and the optimal thresholds, and rank the algorithms.

A failing algorithm is reported and omitted from the ranking; the others still run.
Prediction tables go to --output-dir along with the threshold report and, when
--curves is on, the curve points.

Examples:
  # Compare every algorithm on the saved network and dataset
  annopredict evaluate --algorithms overlapping_neighbors,protein_degree,random

  # Rank by PR AUC and export the ranking to CSV
  annopredict evaluate --algorithms overlapping_neighbors,random --rank-by pr_auc --output csv --output-file ranking.csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteEvaluate(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot evaluate algorithms", err)
		}
	},
}

// runCmd performs the whole pipeline.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build the network, sample a dataset and evaluate algorithms in one go.",
	Long: `Run the full pipeline: network, sample and evaluate.

This is equivalent to running the three commands in sequence with the same flags,
without reading the dataset back from disk.

Examples:
  # Full pipeline with the default algorithm
  annopredict run -i interactome.tsv -a go_annotations.csv

  # Full pipeline with all algorithms, tracked in the run store
  annopredict run -i interactome.tsv -a go_annotations.csv \
    --algorithms overlapping_neighbors,protein_degree,random --runs-backend sqlite`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRun(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot run pipeline", err)
		}
	},
}

// algorithmsCmd lists the scoring algorithms.
var algorithmsCmd = &cobra.Command{
	Use:   "algorithms",
	Short: "List the available scoring algorithms.",
	Long: `Show every registered scoring algorithm with its purpose and formula.

Examples:
  # Show the catalogue
  annopredict algorithms

  # Machine-readable catalogue
  annopredict algorithms --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAlgorithms(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot list algorithms", err)
		}
	},
}
