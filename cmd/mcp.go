package cmd

import (
	"github.com/annopredict/annopredict/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the annopredict MCP server",
	Long: `Launch an MCP server over stdio that lets AI agents list algorithms, inspect
the network, score single protein to GO term pairs and evaluate algorithms.

Progress bars are disabled and logs go to stderr, since stdout carries the protocol.`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}

func init() {
	// Evaluation defaults of the evaluate tool
	mcpCmd.Flags().String("algorithms", "overlapping_neighbors,protein_degree,random", "Default algorithms of the evaluate tool")
	mcpCmd.Flags().String("rank-by", "roc_auc", "Default ranking metric of the evaluate tool")
	rootCmd.AddCommand(mcpCmd)
}
