// Package cmd contains the toolgate command line interface.
package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/toolgate/toolgate/client"
	"github.com/toolgate/toolgate/pkg/version"
)

const (
	// ServerURLEnvVar configures the gateway URL used by client commands.
	ServerURLEnvVar = "TOOLGATE_SERVER_URL"

	serverURLDefault = "http://127.0.0.1:8080"
)

type subCommandGroup string

const (
	subCommandGroupBasic    subCommandGroup = "basic"
	subCommandGroupAdvanced subCommandGroup = "advanced"
)

const asciiArt = `
 _              _            _
| |_ ___   ___ | | __ _ __ _| |_ ___
| __/ _ \ / _ \| |/ _' / _' | __/ _ \
| || (_) | (_) | | (_| | (_| | ||  __/
 \__\___/ \___/|_|\__, |\__,_|\__\___|
                  |___/
`

var (
	rootCmdServerURL string

	// apiClient talks to the gateway. It is initialized before any
	// subcommand runs.
	apiClient *client.Client

	// fs abstracts file access for commands that read config files.
	// Tests swap in an in-memory filesystem.
	fs = afero.NewOsFs()
)

var rootCmd = &cobra.Command{
	Use:   "toolgate",
	Short: "toolgate is a gateway between LLM agents and MCP servers",
	Long: "toolgate is a self-hosted gateway that sits between LLM agents and MCP servers.\n" +
		"It aggregates the tools of all registered servers into a searchable repository,\n" +
		"selects tools under a token budget, and proxies tool executions to the right backend.",
	Version: version.GetVersion(),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		u := rootCmdServerURL
		if u == "" {
			u = os.Getenv(ServerURLEnvVar)
		}
		if u == "" {
			u = serverURLDefault
		}
		apiClient = client.NewClient(u, &http.Client{})
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&rootCmdServerURL,
		"registry",
		"",
		fmt.Sprintf("URL of the toolgate server (overrides env var %s)", ServerURLEnvVar),
	)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
