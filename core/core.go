// Package core has the evaluation workflow that ties network building,
// sampling, scoring and metrics together.
package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/annopredict/annopredict/core/algo"
	"github.com/annopredict/annopredict/core/network"
	"github.com/annopredict/annopredict/core/sample"
	"github.com/annopredict/annopredict/internal/contract"
	"github.com/annopredict/annopredict/internal/outwriter"
	"github.com/annopredict/annopredict/schema"
	"go.uber.org/zap"
)

// ExecutorFunc defines the function signature for executing the different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// ExecuteNetwork builds the network from the input tables, saves it and prints its summary.
// It serves as the main entry point for the 'network' command.
func ExecuteNetwork(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	if err := requireInputs(cfg); err != nil {
		return err
	}
	g, _, err := PrepareNetwork(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintNetworkSummary(g.Summary(), cfg, time.Since(start))
}

// ExecuteSample draws the balanced dataset and saves it to the dataset directory.
// It serves as the main entry point for the 'sample' command.
func ExecuteSample(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	if cfg.AnnotationPath == "" {
		return errors.New("--annotations is required to sample a dataset")
	}
	g, proteins, err := PrepareNetwork(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	ds, err := sampleDataset(ctx, cfg, g, proteins)
	if err != nil {
		return err
	}
	return outwriter.PrintDatasetSummary(ds, cfg.DatasetDir, cfg, time.Since(start))
}

// ExecuteEvaluate scores the saved dataset with every configured algorithm and
// reports the ranking. It serves as the main entry point for the 'evaluate' command.
func ExecuteEvaluate(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	g, _, err := PrepareNetwork(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	ds, err := sample.Load(cfg.DatasetDir)
	if err != nil {
		return err
	}
	result, err := EvaluateDataset(ctx, cfg, mgr, g, ds)
	if err != nil {
		return err
	}
	return writeReports(cfg, result, time.Since(start))
}

// ExecuteRun performs the whole pipeline: build, sample, evaluate and report.
// It serves as the main entry point for the 'run' command.
func ExecuteRun(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	if err := requireInputs(cfg); err != nil {
		return err
	}
	g, proteins, err := PrepareNetwork(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	contract.LogInfo("network ready", zap.Int("nodes", g.NodeCount()), zap.Int("edges", g.EdgeCount()))

	ds, err := sampleDataset(ctx, cfg, g, proteins)
	if err != nil {
		return err
	}
	result, err := EvaluateDataset(ctx, cfg, mgr, g, ds)
	if err != nil {
		return err
	}
	return writeReports(cfg, result, time.Since(start))
}

// ExecuteAlgorithms lists the registered scoring algorithms.
// This is a static display that does not read any input.
func ExecuteAlgorithms(_ context.Context, cfg *contract.Config, _ contract.StoreManager) error {
	return outwriter.PrintAlgorithms(algo.Describe(), cfg)
}

// BuildNetwork builds the network when input tables are configured. Without
// inputs it loads the previously saved graph. Nothing is written to the graph file.
func BuildNetwork(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (*network.Graph, []string, error) {
	if !hasInputs(cfg) {
		g, proteins, err := network.Load(cfg.GraphFile)
		if err != nil {
			return nil, nil, fmt.Errorf("no input tables configured and no saved network: %w", err)
		}
		return g, proteins, nil
	}
	return cachedBuildNetwork(ctx, cfg, mgr, outwriter.NewProgress("Building network", cfg))
}

// PrepareNetwork is BuildNetwork followed by saving a freshly built network
// to the graph file.
func PrepareNetwork(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (*network.Graph, []string, error) {
	g, proteins, err := BuildNetwork(ctx, cfg, mgr)
	if err != nil {
		return nil, nil, err
	}
	if hasInputs(cfg) {
		if err := network.Save(g, cfg.GraphFile); err != nil {
			return nil, nil, err
		}
	}
	return g, proteins, nil
}

func hasInputs(cfg *contract.Config) bool {
	return cfg.InteractomePath != "" && cfg.AnnotationPath != ""
}

// EvaluateDataset runs the configured algorithms over the dataset and records
// the run when a run store is configured.
func EvaluateDataset(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, g *network.Graph, ds *schema.Dataset) (*schema.WorkflowResult, error) {
	algorithms, err := ResolveAlgorithms(cfg.Algorithms, cfg.Seed)
	if err != nil {
		return nil, err
	}

	// --- 1. Begin Run Tracking (if configured) ---
	var runID int64
	var runs contract.RunStore
	if mgr != nil {
		runs = mgr.GetRunStore()
	}
	if runs != nil {
		configParams := map[string]any{
			"algorithms":  strings.Join(cfg.Algorithms, ","),
			"rank_by":     string(cfg.RankBy),
			"interactome": cfg.InteractomePath,
			"annotations": cfg.AnnotationPath,
			"dataset_dir": cfg.DatasetDir,
		}
		runID, err = runs.BeginRun(time.Now(), ds.Len(), cfg.Seed, configParams)
		if err != nil {
			contract.LogWarn("Run tracking initialization failed", err)
		}
	}

	// --- 2. Scoring and Metrics ---
	result, err := Run(ctx, algorithms, ds, g, RunOptions{
		Progress: func(name string) contract.ProgressFunc {
			return outwriter.NewProgress("Scoring "+name, cfg)
		},
	})
	if err != nil {
		return nil, err
	}

	// --- 3. End Run Tracking ---
	if runs != nil && runID > 0 {
		recordRun(runs, runID, result, 2*ds.Len())
	}
	return result, nil
}

// recordRun stores per-algorithm outcomes. Store errors are logged and never fail the run.
func recordRun(runs contract.RunStore, runID int64, result *schema.WorkflowResult, numExamples int) {
	for _, r := range result.Results {
		if err := runs.RecordMetrics(runID, r.Name, r.Metrics, numExamples); err != nil {
			contract.LogWarn("Failed to record algorithm metrics", err)
		}
	}
	for _, f := range result.Failures {
		if err := runs.RecordFailure(runID, f.Name, f.Reason); err != nil {
			contract.LogWarn("Failed to record algorithm failure", err)
		}
	}
	if err := runs.EndRun(runID, time.Now(), len(result.Results), len(result.Failures)); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}

// sampleDataset draws the dataset from the annotation table and saves it.
func sampleDataset(ctx context.Context, cfg *contract.Config, g *network.Graph, proteins []string) (*schema.Dataset, error) {
	annotations, err := network.ReadAnnotations(cfg.AnnotationPath, cfg.AnnotationColumns, cfg.AnnotationDelimiter)
	if err != nil {
		return nil, err
	}
	ds, err := sample.Sample(ctx, network.AnnotationPairs(annotations), cfg.SampleSize, proteins, g, sample.Options{
		Seed:        cfg.Seed,
		MaxRetries:  cfg.MaxRetries,
		OnExhausted: cfg.OnExhausted,
		Progress:    outwriter.NewProgress("Sampling negatives", cfg),
	})
	if err != nil {
		return nil, err
	}
	if err := sample.Save(cfg.DatasetDir, ds); err != nil {
		return nil, err
	}
	return ds, nil
}

// writeReports persists the per-algorithm artifacts and prints the ranking.
func writeReports(cfg *contract.Config, result *schema.WorkflowResult, duration time.Duration) error {
	if err := outwriter.WritePredictionTables(cfg.OutputDir, result.Results, cfg.Precision); err != nil {
		return err
	}
	if cfg.WriteThresholds {
		path := filepath.Join(cfg.OutputDir, contract.DefaultThresholdsFile)
		if err := outwriter.WriteThresholdReport(path, result); err != nil {
			return err
		}
	}
	if cfg.WriteCurves {
		if err := outwriter.WriteCurves(cfg.OutputDir, result.Results, cfg.Precision); err != nil {
			return err
		}
	}
	ranked := RankResults(result.Results, cfg.RankBy)
	return outwriter.PrintRanking(ranked, result.Failures, cfg, duration)
}

// requireInputs checks that both input tables are configured.
func requireInputs(cfg *contract.Config) error {
	if cfg.InteractomePath == "" {
		return errors.New("--interactome is required")
	}
	if cfg.AnnotationPath == "" {
		return errors.New("--annotations is required")
	}
	return nil
}
