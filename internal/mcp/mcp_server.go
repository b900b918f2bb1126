// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/annopredict/annopredict/core/algo"
	"github.com/annopredict/annopredict/internal/contract"
	"github.com/annopredict/annopredict/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the annotation prediction MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Annotation Prediction Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: list_algorithms ---
	s.AddTool(mcp.NewTool("list_algorithms",
		mcp.WithDescription("List the registered protein to GO term scoring algorithms with their formulas."),
	), h.handleListAlgorithms)

	// --- 2. Tool: network_summary ---
	s.AddTool(mcp.NewTool("network_summary",
		mcp.WithDescription("Build (or load) the protein interaction and GO annotation network and report its node and edge counts."),
		mcp.WithString("interactome", mcp.Description("Path to the interactome table (defaults to the configured one).")),
		mcp.WithString("annotations", mcp.Description("Path to the GO annotation table (defaults to the configured one).")),
	), h.handleNetworkSummary)

	// --- 3. Tool: score_pair ---
	s.AddTool(mcp.NewTool("score_pair",
		mcp.WithDescription("Score a single protein and GO term pair with a deterministic algorithm."),
		mcp.WithString("protein", mcp.Description("Protein identifier as it appears in the interactome."), mcp.Required()),
		mcp.WithString("go_term", mcp.Description("GO term identifier, e.g. GO:0005515."), mcp.Required()),
		mcp.WithString("algorithm", mcp.Description("Algorithm name. Defaults to 'overlapping_neighbors'."),
			mcp.Enum(algo.OverlappingNeighborsName, algo.ProteinDegreeName)),
	), h.handleScorePair)

	// --- 4. Tool: evaluate ---
	s.AddTool(mcp.NewTool("evaluate",
		mcp.WithDescription("Evaluate algorithms on the saved dataset and return the ranking with ROC/PR AUCs and thresholds."),
		mcp.WithString("algorithms", mcp.Description("Comma-separated algorithm names (defaults to the configured ones).")),
		mcp.WithString("rank_by", mcp.Description("Ranking metric. Defaults to 'roc_auc'."),
			mcp.Enum(string(schema.ROCAUCKey), string(schema.PRAUCKey))),
	), h.handleEvaluate)

	return s
}

// StartMCPServer starts the annotation prediction MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
