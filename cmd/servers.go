package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listServersCmd = &cobra.Command{
	Use:   "list",
	Short: "List MCP servers registered with toolgate",
	RunE:  runListServers,
	Annotations: map[string]string{
		"group": string(subCommandGroupBasic),
		"order": "3",
	},
}

var deregisterCmd = &cobra.Command{
	Use:   "deregister <name>",
	Short: "Deregister an MCP server from toolgate",
	Long: "Deregister a backend MCP server from the toolgate gateway.\n" +
		"All of the server's tools are removed from the repository and unprovisioned.",
	Args: cobra.ExactArgs(1),
	RunE: runDeregisterServer,
	Annotations: map[string]string{
		"group": string(subCommandGroupAdvanced),
		"order": "4",
	},
}

func init() {
	rootCmd.AddCommand(listServersCmd)
	rootCmd.AddCommand(deregisterCmd)
}

func runListServers(cmd *cobra.Command, args []string) error {
	servers, err := apiClient.ListServers()
	if err != nil {
		return fmt.Errorf("failed to list MCP servers: %w", err)
	}

	if len(servers) == 0 {
		cmd.Println("No MCP servers registered")
		return nil
	}

	for _, s := range servers {
		cmd.Printf("%s (%s)\n", s.Name, s.Transport)
		if s.Description != "" {
			cmd.Printf("  %s\n", s.Description)
		}
		if s.URL != "" {
			cmd.Printf("  url: %s\n", s.URL)
		}
		if s.Command != "" {
			cmd.Printf("  command: %s\n", s.Command)
		}
	}
	return nil
}

func runDeregisterServer(cmd *cobra.Command, args []string) error {
	name := args[0]
	if err := apiClient.DeregisterServer(name); err != nil {
		return fmt.Errorf("failed to deregister MCP server '%s': %w", name, err)
	}
	cmd.Printf("Deregistered MCP server '%s'\n", name)
	return nil
}
