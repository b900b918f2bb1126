package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/annopredict/annopredict/core"
	"github.com/annopredict/annopredict/core/algo"
	"github.com/annopredict/annopredict/core/sample"
	"github.com/annopredict/annopredict/internal/contract"
	"github.com/annopredict/annopredict/internal/outwriter"
	"github.com/annopredict/annopredict/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// pairScore is the score_pair response.
type pairScore struct {
	Protein   string             `json:"protein"`
	GOTerm    string             `json:"go_term"`
	Algorithm string             `json:"algorithm"`
	Score     float64            `json:"score"`
	Details   map[string]float64 `json:"details,omitempty"`
}

// toolConfig clones the base config. Progress bars are off because stdio carries the protocol.
func (h *toolHandler) toolConfig() *contract.Config {
	cfg := h.baseCfg.Clone()
	cfg.ShowProgress = false
	return cfg
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListAlgorithms(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(algo.Describe())
}

func (h *toolHandler) handleNetworkSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.toolConfig()
	if p := request.GetString("interactome", ""); p != "" {
		cfg.InteractomePath = p
	}
	if p := request.GetString("annotations", ""); p != "" {
		cfg.AnnotationPath = p
	}

	g, _, err := core.BuildNetwork(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("network build failed: %v", err)), nil
	}
	return jsonResult(g.Summary())
}

func (h *toolHandler) handleScorePair(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	protein := strings.TrimSpace(request.GetString("protein", ""))
	goTerm := strings.TrimSpace(request.GetString("go_term", ""))
	name := request.GetString("algorithm", algo.OverlappingNeighborsName)
	if protein == "" || goTerm == "" {
		return mcp.NewToolResultError("protein and go_term are required"), nil
	}

	cfg := h.toolConfig()
	a, err := algo.Lookup(name, algo.Options{Seed: cfg.Seed})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	scorer, ok := a.(algo.PairScorer)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("algorithm %s cannot score a single pair", a.Name())), nil
	}

	g, _, err := core.PrepareNetwork(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("network build failed: %v", err)), nil
	}
	if !g.HasNode(protein) {
		return mcp.NewToolResultError(fmt.Sprintf("protein %q is not in the network", protein)), nil
	}

	score, details := scorer.Score(g, protein, goTerm)
	return jsonResult(pairScore{Protein: protein, GOTerm: goTerm, Algorithm: a.Name(), Score: score, Details: details})
}

func (h *toolHandler) handleEvaluate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.toolConfig()
	if names := request.GetString("algorithms", ""); names != "" {
		cfg.Algorithms = nil
		for name := range strings.SplitSeq(names, ",") {
			if name = strings.TrimSpace(name); name != "" {
				cfg.Algorithms = append(cfg.Algorithms, name)
			}
		}
	}
	if len(cfg.Algorithms) == 0 {
		return mcp.NewToolResultError("at least one algorithm is required"), nil
	}
	if key := request.GetString("rank_by", ""); key != "" {
		cfg.RankBy = schema.MetricKey(strings.ToLower(key))
	}
	if _, ok := schema.ValidMetricKeys[cfg.RankBy]; !ok {
		return mcp.NewToolResultError(fmt.Sprintf("invalid rank_by %q. must be roc_auc, pr_auc", cfg.RankBy)), nil
	}
	if _, err := core.ResolveAlgorithms(cfg.Algorithms, cfg.Seed); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	g, _, err := core.PrepareNetwork(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("network build failed: %v", err)), nil
	}
	ds, err := sample.Load(cfg.DatasetDir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("dataset load failed: %v", err)), nil
	}
	result, err := core.EvaluateDataset(ctx, cfg, h.mgr, g, ds)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evaluation failed: %v", err)), nil
	}

	var buf bytes.Buffer
	if err := outwriter.WriteRankingJSON(&buf, core.RankResults(result.Results, cfg.RankBy), result.Failures, cfg.RankBy); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}
