package core

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/annopredict/annopredict/core/algo"
	"github.com/annopredict/annopredict/core/network"
	"github.com/annopredict/annopredict/core/sample"
	"github.com/annopredict/annopredict/internal/contract"
	"github.com/annopredict/annopredict/internal/iocache"
	"github.com/annopredict/annopredict/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testInteractome = "name_a\tname_b\tid_a\tid_b\n" +
		"alpha\tbeta\tA\tB\n" +
		"beta\tgamma\tB\tC\n" +
		"gamma\tdelta\tC\tD\n"
	testAnnotations = "protein,go_term\n" +
		"A,GO1\n" +
		"B,GO1\n"
)

// testConfig writes the chain network inputs to a temp dir and returns a config reading them.
func testConfig(t *testing.T) *contract.Config {
	t.Helper()
	dir := t.TempDir()
	interactome := filepath.Join(dir, "interactome.tsv")
	annotations := filepath.Join(dir, "annotations.csv")
	require.NoError(t, os.WriteFile(interactome, []byte(testInteractome), 0o644))
	require.NoError(t, os.WriteFile(annotations, []byte(testAnnotations), 0o644))

	return &contract.Config{
		InteractomePath:      interactome,
		AnnotationPath:       annotations,
		InteractomeColumns:   []int{0, 1, 2, 3},
		AnnotationColumns:    []int{0, 1},
		InteractomeDelimiter: '\t',
		AnnotationDelimiter:  ',',
		DatasetDir:           filepath.Join(dir, "dataset"),
		OutputDir:            filepath.Join(dir, "data"),
		GraphFile:            filepath.Join(dir, "dataset", "graph.json"),
		SampleSize:           2,
		Seed:                 1,
		MaxRetries:           100,
		OnExhausted:          schema.AbortOnExhausted,
		Algorithms:           []string{algo.OverlappingNeighborsName, algo.RandomBaselineName, algo.ProteinDegreeName},
		RankBy:               schema.ROCAUCKey,
		WriteThresholds:      true,
		WriteCurves:          true,
		Precision:            3,
		Output:               schema.JSONOut,
		OutputFile:           filepath.Join(dir, "ranking.json"),
	}
}

// noStores returns a manager without cache or run tracking.
func noStores() *iocache.MockStoreManager {
	mgr := &iocache.MockStoreManager{}
	mgr.On("GetGraphStore").Return(nil)
	mgr.On("GetRunStore").Return(nil)
	return mgr
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err, path)
	assert.Greater(t, info.Size(), int64(0), path)
}

func TestExecuteRun(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, ExecuteRun(context.Background(), cfg, noStores()))

	assertFileExists(t, cfg.GraphFile)
	assertFileExists(t, filepath.Join(cfg.DatasetDir, sample.PositiveFile))
	assertFileExists(t, filepath.Join(cfg.DatasetDir, sample.NegativeFile))
	assertFileExists(t, filepath.Join(cfg.OutputDir, contract.DefaultThresholdsFile))
	for _, name := range cfg.Algorithms {
		assertFileExists(t, filepath.Join(cfg.OutputDir, name+"_data.tsv"))
		assertFileExists(t, filepath.Join(cfg.OutputDir, name+"_roc.tsv"))
		assertFileExists(t, filepath.Join(cfg.OutputDir, name+"_pr.tsv"))
	}

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var report struct {
		Ranking []struct {
			Rank      int    `json:"rank"`
			Algorithm string `json:"algorithm"`
		} `json:"ranking"`
	}
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Len(t, report.Ranking, 3)
	assert.Equal(t, 1, report.Ranking[0].Rank)

	ds, err := sample.Load(cfg.DatasetDir)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
	for _, neg := range ds.Negative {
		assert.Contains(t, []string{"C", "D"}, neg.Protein, "negatives never carry the GO term")
	}
}

func TestExecuteRunRequiresInputs(t *testing.T) {
	cfg := testConfig(t)
	cfg.InteractomePath = ""
	assert.ErrorContains(t, ExecuteRun(context.Background(), cfg, noStores()), "--interactome is required")

	cfg = testConfig(t)
	cfg.AnnotationPath = ""
	assert.ErrorContains(t, ExecuteNetwork(context.Background(), cfg, noStores()), "--annotations is required")
}

func TestExecuteRunSampleTooLarge(t *testing.T) {
	cfg := testConfig(t)
	cfg.SampleSize = 3
	err := ExecuteRun(context.Background(), cfg, noStores())
	var sizeErr *sample.SampleSizeError
	assert.ErrorAs(t, err, &sizeErr)
}

func TestExecuteStepByStep(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	require.NoError(t, ExecuteNetwork(ctx, cfg, noStores()))
	assertFileExists(t, cfg.GraphFile)
	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var summary schema.NetworkSummary
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, 3, summary.ProteinProteinEdges)
	assert.Equal(t, 2, summary.ProteinGOTermEdges)
	assert.Equal(t, 5, summary.TotalNodes)

	require.NoError(t, ExecuteSample(ctx, cfg, noStores()))
	assertFileExists(t, filepath.Join(cfg.DatasetDir, sample.PositiveFile))

	// Evaluate reuses the saved graph and dataset without the input tables
	evalCfg := cfg.Clone()
	evalCfg.InteractomePath = ""
	evalCfg.AnnotationPath = ""
	require.NoError(t, ExecuteEvaluate(ctx, evalCfg, noStores()))
	assertFileExists(t, filepath.Join(cfg.OutputDir, "random_data.tsv"))
}

func TestExecuteSampleRequiresAnnotations(t *testing.T) {
	cfg := testConfig(t)
	cfg.AnnotationPath = ""
	assert.ErrorContains(t, ExecuteSample(context.Background(), cfg, noStores()), "--annotations is required")
}

func TestExecuteEvaluateWithoutSavedNetwork(t *testing.T) {
	cfg := testConfig(t)
	cfg.InteractomePath = ""
	err := ExecuteEvaluate(context.Background(), cfg, noStores())
	assert.ErrorContains(t, err, "no saved network")
}

func TestExecuteAlgorithms(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, ExecuteAlgorithms(context.Background(), cfg, nil))
	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var infos []schema.AlgorithmInfo
	require.NoError(t, json.Unmarshal(data, &infos))
	assert.Equal(t, algo.Describe(), infos)
}

func TestEvaluateDatasetRecordsRun(t *testing.T) {
	cfg := testConfig(t)
	cfg.Algorithms = []string{algo.OverlappingNeighborsName, algo.ProteinDegreeName}

	runs := &iocache.MockRunStore{}
	runs.On("BeginRun", mock.Anything, 2, int64(1), mock.MatchedBy(func(params map[string]any) bool {
		return params["algorithms"] == "overlapping_neighbors,protein_degree" && params["rank_by"] == "roc_auc"
	})).Return(int64(5), nil).Once()
	runs.On("RecordMetrics", int64(5), algo.OverlappingNeighborsName, mock.Anything, 4).Return(nil).Once()
	runs.On("RecordMetrics", int64(5), algo.ProteinDegreeName, mock.Anything, 4).Return(errors.New("disk full")).Once()
	runs.On("EndRun", int64(5), mock.Anything, 2, 0).Return(nil).Once()

	mgr := &iocache.MockStoreManager{}
	mgr.On("GetRunStore").Return(runs)

	result, err := EvaluateDataset(context.Background(), cfg, mgr, chainNetwork(t), chainDataset())
	require.NoError(t, err, "store errors never fail the run")
	assert.Len(t, result.Results, 2)
	runs.AssertExpectations(t)
}

func TestEvaluateDatasetRepeatedNegatives(t *testing.T) {
	cfg := testConfig(t)
	cfg.Algorithms = []string{algo.ProteinDegreeName}

	runs := &iocache.MockRunStore{}
	runs.On("BeginRun", mock.Anything, 2, int64(1), mock.Anything).Return(int64(9), nil)
	runs.On("RecordMetrics", int64(9), algo.ProteinDegreeName, mock.Anything, 4).Return(nil)
	runs.On("EndRun", int64(9), mock.Anything, 1, 0).Return(nil)

	mgr := &iocache.MockStoreManager{}
	mgr.On("GetRunStore").Return(runs)

	ds := &schema.Dataset{
		Positive: []schema.LabeledPair{{Protein: "A", GOTerm: "GO1", Label: 1}, {Protein: "B", GOTerm: "GO1", Label: 1}},
		Negative: []schema.LabeledPair{{Protein: "C", GOTerm: "GO1", Label: 0}, {Protein: "C", GOTerm: "GO1", Label: 0}},
	}
	_, err := EvaluateDataset(context.Background(), cfg, mgr, chainNetwork(t), ds)
	require.NoError(t, err)
	runs.AssertExpectations(t)
	runs.AssertNotCalled(t, "RecordFailure", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordRunWritesFailures(t *testing.T) {
	runs := &iocache.MockRunStore{}
	runs.On("RecordMetrics", int64(3), "random", mock.Anything, 10).Return(nil)
	runs.On("RecordFailure", int64(3), "broken", "bad input").Return(errors.New("locked"))
	runs.On("EndRun", int64(3), mock.Anything, 1, 1).Return(errors.New("locked"))

	recordRun(runs, 3, &schema.WorkflowResult{
		Results:  []schema.AlgorithmResult{{Name: "random", Metrics: &schema.MetricsResult{}}},
		Failures: []schema.AlgorithmFailure{{Name: "broken", Reason: "bad input"}},
	}, 10)
	runs.AssertExpectations(t)
}

func TestEvaluateDatasetUntrackedRun(t *testing.T) {
	cfg := testConfig(t)
	cfg.Algorithms = []string{algo.RandomBaselineName}

	runs := &iocache.MockRunStore{}
	runs.On("BeginRun", mock.Anything, 2, int64(1), mock.Anything).Return(int64(0), errors.New("no connection"))
	mgr := &iocache.MockStoreManager{}
	mgr.On("GetRunStore").Return(runs)

	result, err := EvaluateDataset(context.Background(), cfg, mgr, chainNetwork(t), chainDataset())
	require.NoError(t, err)
	assert.Len(t, result.Results, 1)
	runs.AssertNotCalled(t, "RecordMetrics", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	runs.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEvaluateDatasetUnknownAlgorithm(t *testing.T) {
	cfg := testConfig(t)
	cfg.Algorithms = []string{"adamic_adar"}
	_, err := EvaluateDataset(context.Background(), cfg, nil, chainNetwork(t), chainDataset())
	assert.ErrorContains(t, err, "unknown algorithm")
}

func TestCachedBuildNetwork(t *testing.T) {
	ctx := context.Background()

	t.Run("no store", func(t *testing.T) {
		g, proteins, err := cachedBuildNetwork(ctx, testConfig(t), nil, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B", "C", "D"}, proteins)
		assert.Equal(t, 5, g.EdgeCount())
	})

	t.Run("miss stores the graph", func(t *testing.T) {
		cfg := testConfig(t)
		key, err := generateCacheKey(cfg)
		require.NoError(t, err)

		store := &iocache.MockCacheStore{}
		store.On("Get", key).Return(nil, 0, int64(0), errors.New("not found"))
		store.On("Set", key, mock.Anything, currentCacheVersion, mock.Anything).Return(nil)
		mgr := &iocache.MockStoreManager{}
		mgr.On("GetGraphStore").Return(store)

		g, _, err := cachedBuildNetwork(ctx, cfg, mgr, nil)
		require.NoError(t, err)
		assert.Equal(t, 5, g.NodeCount())
		store.AssertExpectations(t)
	})

	t.Run("hit skips building", func(t *testing.T) {
		cfg := testConfig(t)
		key, err := generateCacheKey(cfg)
		require.NoError(t, err)
		data, err := network.Marshal(chainNetwork(t))
		require.NoError(t, err)

		store := &iocache.MockCacheStore{}
		store.On("Get", key).Return(data, currentCacheVersion, time.Now().Unix(), nil)
		mgr := &iocache.MockStoreManager{}
		mgr.On("GetGraphStore").Return(store)

		g, proteins, err := cachedBuildNetwork(ctx, cfg, mgr, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B", "C", "D"}, proteins)
		assert.True(t, g.HasEdge("A", "GO1"))
		store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("stale entries are rebuilt", func(t *testing.T) {
		cfg := testConfig(t)
		key, err := generateCacheKey(cfg)
		require.NoError(t, err)

		store := &iocache.MockCacheStore{}
		store.On("Get", key).Return([]byte("{}"), currentCacheVersion, time.Now().Add(-2*maxCacheAge).Unix(), nil)
		store.On("Set", key, mock.Anything, currentCacheVersion, mock.Anything).Return(errors.New("read only"))
		mgr := &iocache.MockStoreManager{}
		mgr.On("GetGraphStore").Return(store)

		g, _, err := cachedBuildNetwork(ctx, cfg, mgr, nil)
		require.NoError(t, err, "a failed cache write is only logged")
		assert.Equal(t, 5, g.NodeCount())
		store.AssertExpectations(t)
	})
}

func TestBuildNetworkDoesNotSave(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	g, proteins, err := BuildNetwork(ctx, cfg, noStores())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "D"}, proteins)
	assert.Equal(t, 5, g.EdgeCount())
	assert.NoFileExists(t, cfg.GraphFile)

	_, _, err = PrepareNetwork(ctx, cfg, noStores())
	require.NoError(t, err)
	assertFileExists(t, cfg.GraphFile)

	t.Run("without inputs the saved graph is loaded", func(t *testing.T) {
		saved := cfg.Clone()
		saved.InteractomePath = ""
		g, _, err := BuildNetwork(ctx, saved, noStores())
		require.NoError(t, err)
		assert.True(t, g.HasEdge("A", "GO1"))
	})
}

func TestGenerateCacheKey(t *testing.T) {
	cfg := testConfig(t)
	first, err := generateCacheKey(cfg)
	require.NoError(t, err)
	assert.Len(t, first, 64)

	same, err := generateCacheKey(cfg)
	require.NoError(t, err)
	assert.Equal(t, first, same)

	cfg.AnnotationColumns = []int{1, 0}
	swapped, err := generateCacheKey(cfg)
	require.NoError(t, err)
	assert.NotEqual(t, first, swapped, "column layout is part of the key")

	cfg.InteractomePath = filepath.Join(t.TempDir(), "missing.tsv")
	_, err = generateCacheKey(cfg)
	assert.Error(t, err)
}
