package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolgate/toolgate/pkg/types"
)

func TestNewStreamableHTTPServer(t *testing.T) {
	s, err := NewStreamableHTTPServer(
		"exa",
		"Exa search MCP server",
		"https://mcp.exa.ai/mcp",
		"secret-token",
		map[string]string{"X-Team": "research"},
	)
	require.NoError(t, err)
	assert.Equal(t, types.TransportStreamableHTTP, s.Transport)

	conf, err := s.GetStreamableHTTPConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://mcp.exa.ai/mcp", conf.URL)
	assert.Equal(t, "secret-token", conf.BearerToken)
	assert.Equal(t, "research", conf.Headers["X-Team"])

	// the stdio accessor must refuse a streamable http server
	_, err = s.GetStdioConfig()
	assert.Error(t, err)
}

func TestNewStreamableHTTPServerRequiresURL(t *testing.T) {
	_, err := NewStreamableHTTPServer("exa", "", "", "", nil)
	assert.Error(t, err)
}

func TestNewStdioServer(t *testing.T) {
	s, err := NewStdioServer(
		"fs",
		"filesystem MCP server",
		"npx",
		[]string{"-y", "@modelcontextprotocol/server-filesystem", "/tmp"},
		map[string]string{"HOME": "/home/app"},
	)
	require.NoError(t, err)
	assert.Equal(t, types.TransportStdio, s.Transport)

	conf, err := s.GetStdioConfig()
	require.NoError(t, err)
	assert.Equal(t, "npx", conf.Command)
	assert.Len(t, conf.Args, 3)
	assert.Equal(t, "/home/app", conf.Env["HOME"])

	_, err = s.GetStreamableHTTPConfig()
	assert.Error(t, err)
}

func TestNewStdioServerRequiresCommand(t *testing.T) {
	_, err := NewStdioServer("fs", "", "", nil, nil)
	assert.Error(t, err)
}
