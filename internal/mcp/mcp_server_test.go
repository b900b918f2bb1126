package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/annopredict/annopredict/core/algo"
	"github.com/annopredict/annopredict/core/sample"
	"github.com/annopredict/annopredict/internal/contract"
	"github.com/annopredict/annopredict/internal/iocache"
	mcp_internal "github.com/annopredict/annopredict/internal/mcp"
	"github.com/annopredict/annopredict/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// baseConfig writes the A-B-C-D chain network and a saved dataset to a temp dir.
func baseConfig(t *testing.T) *contract.Config {
	t.Helper()
	dir := t.TempDir()
	interactome := filepath.Join(dir, "interactome.tsv")
	annotations := filepath.Join(dir, "annotations.csv")
	require.NoError(t, os.WriteFile(interactome, []byte("a\tb\tid_a\tid_b\nx\ty\tA\tB\nx\ty\tB\tC\nx\ty\tC\tD\n"), 0o644))
	require.NoError(t, os.WriteFile(annotations, []byte("protein,go_term\nA,GO1\nB,GO1\n"), 0o644))

	cfg := &contract.Config{
		InteractomePath:      interactome,
		AnnotationPath:       annotations,
		InteractomeColumns:   []int{0, 1, 2, 3},
		AnnotationColumns:    []int{0, 1},
		InteractomeDelimiter: '\t',
		AnnotationDelimiter:  ',',
		DatasetDir:           filepath.Join(dir, "dataset"),
		GraphFile:            filepath.Join(dir, "graph.json"),
		Seed:                 1,
		Algorithms:           []string{algo.OverlappingNeighborsName},
		RankBy:               schema.ROCAUCKey,
		ShowProgress:         true,
	}
	require.NoError(t, sample.Save(cfg.DatasetDir, &schema.Dataset{
		Positive: []schema.LabeledPair{{Protein: "A", GOTerm: "GO1", Label: 1}, {Protein: "B", GOTerm: "GO1", Label: 1}},
		Negative: []schema.LabeledPair{{Protein: "D", GOTerm: "GO1", Label: 0}, {Protein: "C", GOTerm: "GO1", Label: 0}},
	}))
	return cfg
}

func newStores(t *testing.T) contract.StoreManager {
	t.Helper()
	mgr, err := iocache.NewStoreManager(schema.NoneBackend, "", schema.NoneBackend, "")
	require.NoError(t, err)
	t.Cleanup(mgr.Close)
	return mgr
}

func callTool(t *testing.T, cfg *contract.Config, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := mcp_internal.NewMCPServer(cfg, newStores(t))
	tool := s.GetTool(name)
	require.NotNil(t, tool, "tool %s should exist", name)

	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "the MCP handler should not return a raw error for tool logic failures")
	require.NotNil(t, res)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestListAlgorithms(t *testing.T) {
	res := callTool(t, baseConfig(t), "list_algorithms", nil)
	require.False(t, res.IsError)

	var infos []schema.AlgorithmInfo
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &infos))
	assert.Equal(t, algo.Describe(), infos)
}

func TestNetworkSummary(t *testing.T) {
	cfg := baseConfig(t)
	res := callTool(t, cfg, "network_summary", nil)
	require.False(t, res.IsError, resultText(t, res))

	var summary schema.NetworkSummary
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &summary))
	assert.Equal(t, 3, summary.ProteinProteinEdges)
	assert.Equal(t, 2, summary.ProteinGOTermEdges)
	assert.Equal(t, 4, summary.ProteinNodes)
	assert.NoFileExists(t, cfg.GraphFile)

	t.Run("saved graph is left alone", func(t *testing.T) {
		saved := []byte(`{"elements":{"nodes":[],"edges":[]}}`)
		require.NoError(t, os.WriteFile(cfg.GraphFile, saved, 0o644))
		other := filepath.Join(t.TempDir(), "other.csv")
		require.NoError(t, os.WriteFile(other, []byte("protein,go_term\nC,GO2\n"), 0o644))

		res := callTool(t, cfg, "network_summary", map[string]any{"annotations": other})
		require.False(t, res.IsError, resultText(t, res))
		assert.Contains(t, resultText(t, res), `"go_term_nodes": 1`)

		data, err := os.ReadFile(cfg.GraphFile)
		require.NoError(t, err)
		assert.Equal(t, saved, data, "a summary never rewrites the graph file")
	})

	t.Run("missing input", func(t *testing.T) {
		res := callTool(t, cfg, "network_summary", map[string]any{"interactome": filepath.Join(t.TempDir(), "absent.tsv")})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "network build failed")
	})
}

func TestScorePair(t *testing.T) {
	cfg := baseConfig(t)

	t.Run("overlapping neighbors", func(t *testing.T) {
		res := callTool(t, cfg, "score_pair", map[string]any{"protein": "A", "go_term": "GO1"})
		require.False(t, res.IsError, resultText(t, res))

		var got struct {
			Algorithm string             `json:"algorithm"`
			Score     float64            `json:"score"`
			Details   map[string]float64 `json:"details"`
		}
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &got))
		assert.Equal(t, algo.OverlappingNeighborsName, got.Algorithm)
		assert.InDelta(t, 2.0/3.0, got.Score, 1e-12)
		assert.Equal(t, 1.0, got.Details[algo.AnnotatedNeighborsColumn])
	})

	t.Run("protein degree", func(t *testing.T) {
		res := callTool(t, cfg, "score_pair", map[string]any{"protein": "B", "go_term": "GO1", "algorithm": "protein_degree"})
		require.False(t, res.IsError, resultText(t, res))
		assert.Contains(t, resultText(t, res), `"score": 3`)
	})

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing go term", map[string]any{"protein": "A"}, "protein and go_term are required"},
		{"unknown algorithm", map[string]any{"protein": "A", "go_term": "GO1", "algorithm": "adamic_adar"}, "unknown algorithm"},
		{"random cannot score pairs", map[string]any{"protein": "A", "go_term": "GO1", "algorithm": "random"}, "cannot score a single pair"},
		{"unknown protein", map[string]any{"protein": "Z", "go_term": "GO1"}, `protein "Z" is not in the network`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, cfg, "score_pair", tt.args)
			assert.True(t, res.IsError)
			assert.Contains(t, resultText(t, res), tt.want)
		})
	}
}

func TestEvaluate(t *testing.T) {
	cfg := baseConfig(t)

	res := callTool(t, cfg, "evaluate", map[string]any{"algorithms": "random, overlapping_neighbors", "rank_by": "pr_auc"})
	require.False(t, res.IsError, resultText(t, res))

	var report struct {
		RankBy  string `json:"rank_by"`
		Ranking []struct {
			Rank      int    `json:"rank"`
			Algorithm string `json:"algorithm"`
		} `json:"ranking"`
		Failures []schema.AlgorithmFailure `json:"failures"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &report))
	assert.Equal(t, "pr_auc", report.RankBy)
	assert.Len(t, report.Ranking, 2)
	assert.Empty(t, report.Failures)
	assert.Equal(t, []string{algo.OverlappingNeighborsName}, cfg.Algorithms, "the base config is never mutated")

	t.Run("invalid rank_by", func(t *testing.T) {
		res := callTool(t, cfg, "evaluate", map[string]any{"rank_by": "f1"})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "invalid rank_by")
	})

	t.Run("unknown algorithm", func(t *testing.T) {
		res := callTool(t, cfg, "evaluate", map[string]any{"algorithms": "nope"})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "unknown algorithm")
	})

	t.Run("missing dataset", func(t *testing.T) {
		noData := cfg.Clone()
		noData.DatasetDir = t.TempDir()
		res := callTool(t, noData, "evaluate", nil)
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "dataset load failed")
	})
}
