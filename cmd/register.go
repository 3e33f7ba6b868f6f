package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/toolgate/toolgate/pkg/types"
)

var (
	registerCmdConfigFilePath string

	registerCmdName        string
	registerCmdTransport   string
	registerCmdDescription string
	registerCmdURL         string
	registerCmdBearerToken string
	registerCmdCommand     string
	registerCmdArgs        []string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register an MCP server with toolgate",
	Long: "Register a backend MCP server with the toolgate gateway.\n" +
		"The server's tools are discovered immediately and become searchable.\n\n" +
		"Supply the configuration either via flags or a JSON/YAML file:\n" +
		"    toolgate register --name exa --transport streamable_http --url https://example.com/mcp\n" +
		"    toolgate register -c ./server.yaml\n\n" +
		"Server names must not contain underscores: tool ids are formed as <server>_<tool>.",
	RunE: runRegisterServer,
	Annotations: map[string]string{
		"group": string(subCommandGroupBasic),
		"order": "2",
	},
}

func init() {
	registerCmd.Flags().StringVarP(
		&registerCmdConfigFilePath, "conf", "c", "", "Path to a JSON or YAML server configuration file",
	)
	registerCmd.Flags().StringVar(&registerCmdName, "name", "", "Unique name of the MCP server (no underscores)")
	registerCmd.Flags().StringVar(
		&registerCmdTransport, "transport", string(types.TransportStreamableHTTP),
		fmt.Sprintf("Transport protocol ('%s' or '%s')", types.TransportStreamableHTTP, types.TransportStdio),
	)
	registerCmd.Flags().StringVar(&registerCmdDescription, "description", "", "Description of the MCP server")
	registerCmd.Flags().StringVar(&registerCmdURL, "url", "", "URL of the MCP server (streamable_http)")
	registerCmd.Flags().StringVar(
		&registerCmdBearerToken, "bearer-token", "", "Bearer token for authenticating with the MCP server",
	)
	registerCmd.Flags().StringVar(&registerCmdCommand, "command", "", "Command to run the MCP server (stdio)")
	registerCmd.Flags().StringSliceVar(&registerCmdArgs, "arg", nil, "Argument to pass to the command (repeatable)")

	rootCmd.AddCommand(registerCmd)
}

// loadServerConfig reads a server registration from a JSON or YAML file.
// The format is picked by file extension, defaulting to YAML.
func loadServerConfig(path string) (*types.RegisterServerInput, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}

	var input types.RegisterServerInput
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &input); err != nil {
			return nil, fmt.Errorf("failed to parse JSON configuration: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &input); err != nil {
			return nil, fmt.Errorf("failed to parse YAML configuration: %w", err)
		}
	}
	return &input, nil
}

func runRegisterServer(cmd *cobra.Command, args []string) error {
	var input *types.RegisterServerInput

	if registerCmdConfigFilePath != "" {
		conf, err := loadServerConfig(registerCmdConfigFilePath)
		if err != nil {
			return err
		}
		input = conf
	} else {
		if registerCmdName == "" {
			return fmt.Errorf("either --conf or --name must be supplied")
		}
		input = &types.RegisterServerInput{
			Name:        registerCmdName,
			Transport:   registerCmdTransport,
			Description: registerCmdDescription,
			URL:         registerCmdURL,
			BearerToken: registerCmdBearerToken,
			Command:     registerCmdCommand,
			Args:        registerCmdArgs,
		}
	}

	result, err := apiClient.AddServer(input)
	if err != nil {
		return fmt.Errorf("failed to register MCP server: %w", err)
	}

	cmd.Printf("Registered MCP server '%s'\n", result.Name)
	cmd.Printf("Discovered %d tools:\n", result.ToolCount)
	for _, id := range result.Tools {
		cmd.Printf("  %s\n", id)
	}
	return nil
}
