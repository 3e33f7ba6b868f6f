package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/toolgate/toolgate/pkg/types"
)

var (
	discoverCmdContext string
	discoverCmdTags    []string
	discoverCmdLimit   int
)

var discoverCmd = &cobra.Command{
	Use:   "discover <query>",
	Short: "Search the tool repository",
	Long: "Search the gateway's tool repository with a natural language query.\n" +
		"Results are ranked by semantic relevance; use --tag to restrict matches\n" +
		"to tools carrying at least one of the given tags.",
	Args: cobra.MinimumNArgs(1),
	RunE: runDiscoverTools,
	Annotations: map[string]string{
		"group": string(subCommandGroupBasic),
		"order": "4",
	},
}

func init() {
	discoverCmd.Flags().StringVar(
		&discoverCmdContext, "context", "", "Additional context to refine the ranking",
	)
	discoverCmd.Flags().StringSliceVar(
		&discoverCmdTags, "tag", nil, "Only match tools carrying this tag (repeatable)",
	)
	discoverCmd.Flags().IntVar(&discoverCmdLimit, "limit", 0, "Maximum number of results (default 10, max 50)")

	rootCmd.AddCommand(discoverCmd)
}

func runDiscoverTools(cmd *cobra.Command, args []string) error {
	resp, err := apiClient.DiscoverTools(&types.DiscoverRequest{
		Query:   strings.Join(args, " "),
		Context: discoverCmdContext,
		Tags:    discoverCmdTags,
		Limit:   discoverCmdLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to discover tools: %w", err)
	}

	if len(resp.Tools) == 0 {
		cmd.Println("No matching tools found")
		return nil
	}

	for _, m := range resp.Tools {
		cmd.Printf("%.3f  %s  (~%d tokens)\n", m.Score, m.ToolID, m.EstimatedTokens)
		if m.Description != "" {
			cmd.Printf("       %s\n", firstLine(m.Description))
		}
		if len(m.MatchedTags) > 0 {
			cmd.Printf("       tags: %s\n", strings.Join(m.MatchedTags, ", "))
		}
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
