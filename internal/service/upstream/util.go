package upstream

import (
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/toolgate/toolgate/pkg/types"
)

// Server names may only contain letters, numbers and hyphens.
// Underscores are forbidden: tool ids are formed as "<server>_<tool>" and
// split on the first underscore, so an underscore in the server name would
// corrupt routing (e.g. "my_server" + "read" -> "my_server_read" would route
// to server "my" with tool "server_read").
var validServerName = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

// ValidateServerName checks if the server name is usable as a tool id prefix.
func ValidateServerName(name string) error {
	if name == "" {
		return fmt.Errorf("invalid server name: must not be empty")
	}
	if !validServerName.MatchString(name) {
		return fmt.Errorf(
			"invalid server name: '%s' must follow the regular expression %s (underscores are reserved for tool ids)",
			name, validServerName,
		)
	}
	return nil
}

// isLoopbackURL returns true if rawURL resolves to a loopback address.
// It assumes that rawURL is a valid URL.
func isLoopbackURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false // invalid URL, cannot determine loopback
	}
	host := u.Hostname()

	if host == "" {
		return false // no host, not a loopback
	}
	if strings.EqualFold(host, "localhost") {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}

	return false
}

// convertToolCallResToAPIRes converts an MCP CallToolResult to types.ToolInvokeResult,
// the shape passed down to the end user.
func convertToolCallResToAPIRes(resp *mcp.CallToolResult) (*types.ToolInvokeResult, error) {
	contentList, err := convertToolCallRespContent(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to convert content: %w", err)
	}

	return &types.ToolInvokeResult{
		Meta:              convertMCPMetaToMap(resp.Meta),
		IsError:           resp.IsError,
		Content:           contentList,
		StructuredContent: resp.StructuredContent,
	}, nil
}

// convertToolCallRespContent converts []mcp.Content to []map[string]any with proper error handling.
func convertToolCallRespContent(content []mcp.Content) ([]map[string]any, error) {
	if len(content) == 0 {
		return []map[string]any{}, nil
	}

	contentList := make([]map[string]any, 0, len(content))
	for i, item := range content {
		serialized, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal content item %d: %w", i, err)
		}

		var contentMap map[string]any
		if err := json.Unmarshal(serialized, &contentMap); err != nil {
			return nil, fmt.Errorf("failed to unmarshal content item %d: %w", i, err)
		}
		contentList = append(contentList, contentMap)
	}
	return contentList, nil
}

// convertMCPMetaToMap converts *mcp.Meta to map[string]any with proper nil handling.
func convertMCPMetaToMap(meta *mcp.Meta) map[string]any {
	if meta == nil {
		return nil
	}

	metaMap := make(map[string]any)
	for k, v := range meta.AdditionalFields {
		metaMap[k] = v
	}
	if meta.ProgressToken != nil {
		metaMap["progressToken"] = meta.ProgressToken
	}

	// keep nil for an empty map to stay consistent on the wire
	if len(metaMap) == 0 {
		return nil
	}
	return metaMap
}
