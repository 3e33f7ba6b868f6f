package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toolgate/toolgate/pkg/types"
)

var invokeCmdInput string

var invokeCmd = &cobra.Command{
	Use:   "invoke <tool id>",
	Short: "Invoke a provisioned tool",
	Long: "Invoke a tool on its backend MCP server through the gateway proxy.\n" +
		"The tool must be provisioned first (see the provision command).\n\n" +
		"Example:\n" +
		"    toolgate invoke calc_add --input '{\"a\": 1, \"b\": 2}'",
	Args: cobra.ExactArgs(1),
	RunE: runInvokeTool,
	Annotations: map[string]string{
		"group": string(subCommandGroupBasic),
		"order": "6",
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <tool id>",
	Short: "Preview what invoking a tool would do",
	Long: "Show a preview of a tool invocation without contacting the backend server.\n" +
		"The tool does not need to be provisioned.",
	Args: cobra.ExactArgs(1),
	RunE: runInspectTool,
	Annotations: map[string]string{
		"group": string(subCommandGroupAdvanced),
		"order": "7",
	},
}

func init() {
	invokeCmd.Flags().StringVar(&invokeCmdInput, "input", "{}", "JSON object of arguments to pass to the tool")
	inspectCmd.Flags().StringVar(&invokeCmdInput, "input", "{}", "JSON object of arguments to pass to the tool")

	rootCmd.AddCommand(invokeCmd)
	rootCmd.AddCommand(inspectCmd)
}

func parseToolArguments() (map[string]any, error) {
	var args map[string]any
	if err := json.Unmarshal([]byte(invokeCmdInput), &args); err != nil {
		return nil, fmt.Errorf("failed to parse --input as a JSON object: %w", err)
	}
	return args, nil
}

func runInvokeTool(cmd *cobra.Command, cmdArgs []string) error {
	toolArgs, err := parseToolArguments()
	if err != nil {
		return err
	}

	result, err := apiClient.ExecuteTool(&types.ExecuteRequest{
		ToolID:    cmdArgs[0],
		Arguments: toolArgs,
	})
	if err != nil {
		return fmt.Errorf("failed to invoke tool '%s': %w", cmdArgs[0], err)
	}

	if result.IsError {
		cmd.Println("Tool returned an error:")
	}
	for _, content := range result.Content {
		if text, ok := content["text"].(string); ok {
			cmd.Println(text)
			continue
		}
		j, err := json.MarshalIndent(content, "", "  ")
		if err != nil {
			// Simply print the raw object if we fail to marshal it
			cmd.Println(content)
			continue
		}
		cmd.Println(string(j))
	}
	return nil
}

func runInspectTool(cmd *cobra.Command, cmdArgs []string) error {
	toolArgs, err := parseToolArguments()
	if err != nil {
		return err
	}

	info, err := apiClient.GetExecutionInfo(&types.ExecuteRequest{
		ToolID:    cmdArgs[0],
		Arguments: toolArgs,
	})
	if err != nil {
		return fmt.Errorf("failed to inspect tool '%s': %w", cmdArgs[0], err)
	}

	cmd.Println(info.ActionSummary)
	cmd.Printf("server: %s, estimated tokens: %d\n", info.Server, info.EstimatedTokens)
	return nil
}
