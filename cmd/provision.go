package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toolgate/toolgate/pkg/types"
)

var (
	provisionCmdMaxTools      int
	provisionCmdContextTokens int
)

var provisionCmd = &cobra.Command{
	Use:   "provision [tool id]...",
	Short: "Provision tools for execution under a token budget",
	Long: "Ask the gateway to select and load tools for execution.\n" +
		"Candidates are taken in the order given; without arguments, the most used\n" +
		"tools are selected. Tools that would overflow the token budget are skipped.\n" +
		"Only provisioned tools can be executed through the proxy.",
	RunE: runProvisionTools,
	Annotations: map[string]string{
		"group": string(subCommandGroupBasic),
		"order": "5",
	},
}

func init() {
	provisionCmd.Flags().IntVar(&provisionCmdMaxTools, "max-tools", 0, "Maximum number of tools to provision (default 10)")
	provisionCmd.Flags().IntVar(
		&provisionCmdContextTokens, "context-tokens", 0, "Token budget for the provisioned set (0 means unlimited)",
	)

	rootCmd.AddCommand(provisionCmd)
}

func runProvisionTools(cmd *cobra.Command, args []string) error {
	resp, err := apiClient.ProvisionTools(&types.ProvisionRequest{
		ToolIDs:       args,
		MaxTools:      provisionCmdMaxTools,
		ContextTokens: provisionCmdContextTokens,
	})
	if err != nil {
		return fmt.Errorf("failed to provision tools: %w", err)
	}

	cmd.Printf("Provisioned %d tools (%d tokens total):\n", len(resp.Tools), resp.Metadata.TotalTokens)
	for _, tool := range resp.Tools {
		cmd.Printf("  %s (~%d tokens)\n", tool.Name, tool.TokenCount)
	}
	return nil
}
