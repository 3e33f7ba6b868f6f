package types

import "fmt"

// McpServerTransport represents the transport protocol used by an MCP server.
// All transport types supported by toolgate are defined in this file with this type.
type McpServerTransport string

const (
	TransportStdio          McpServerTransport = "stdio"
	TransportStreamableHTTP McpServerTransport = "streamable_http"
)

// McpServer represents an MCP server registered in the toolgate registry.
type McpServer struct {
	Name        string `json:"name"`
	Transport   string `json:"transport"`
	Description string `json:"description"`

	URL string `json:"url,omitempty"`

	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// RegisterServerInput is the input structure for registering a new MCP server with toolgate.
// It is also the basis for the JSON/YAML configuration file used to register a new MCP server.
type RegisterServerInput struct {
	// Name (mandatory) is the unique name of an MCP server registered in toolgate.
	// It must not contain underscores: tool ids are formed as "<server>_<tool>"
	// and are split on the first underscore when routing execution.
	Name string `json:"name" yaml:"name" binding:"required"`

	// Transport (mandatory) is the transport protocol used by the MCP server.
	// valid values are "stdio" and "streamable_http".
	Transport string `json:"transport" yaml:"transport" binding:"required"`

	Description string `json:"description" yaml:"description"`

	// URL is the URL of the remote mcp server.
	// It is mandatory when transport is streamable_http and must be a valid
	// http/https URL (e.g., https://example.com/mcp).
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// BearerToken is an optional token used for authenticating requests to the remote MCP server.
	// If the transport is "stdio", this field is ignored.
	BearerToken string `json:"bearer_token,omitempty" yaml:"bearer_token,omitempty"`

	// Headers is an optional set of HTTP headers to forward to upstream streamable_http MCP servers.
	// If both BearerToken and Headers["Authorization"] are provided, the custom Authorization header takes precedence.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// Command is the command to run the mcp server.
	// It is mandatory when the transport is "stdio".
	Command string `json:"command,omitempty" yaml:"command,omitempty"`

	// Args is the list of arguments to pass to the command when the transport is "stdio".
	Args []string `json:"args,omitempty" yaml:"args,omitempty"`

	// Env is the set of environment variables to pass to the mcp server when the transport is "stdio".
	Env map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
}

// AddServerResult is returned after registering an MCP server and
// auto-discovering its tools.
type AddServerResult struct {
	Name      string   `json:"name"`
	Tools     []string `json:"tools"`
	ToolCount int      `json:"tool_count"`
}

// ServerMetadata represents the server metadata response
type ServerMetadata struct {
	Version string `json:"version"`
}

// ValidateTransport validates the input string and returns the corresponding McpServerTransport.
// It returns an error if the input is invalid or empty.
func ValidateTransport(input string) (McpServerTransport, error) {
	errMsgExt := fmt.Sprintf(
		"(acceptable values: '%s', '%s')", TransportStreamableHTTP, TransportStdio,
	)

	switch input {
	case string(TransportStreamableHTTP):
		return TransportStreamableHTTP, nil
	case string(TransportStdio):
		return TransportStdio, nil
	case "":
		return "", fmt.Errorf("transport is required %s", errMsgExt)
	default:
		return "", fmt.Errorf("unsupported transport type: %s %s", input, errMsgExt)
	}
}
