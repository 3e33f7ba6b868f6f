package cmd

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerConfig(t *testing.T) {
	origFs := fs
	fs = afero.NewMemMapFs()
	t.Cleanup(func() { fs = origFs })

	t.Run("yaml config", func(t *testing.T) {
		content := `name: exa
transport: streamable_http
description: Web search tools
url: https://example.com/mcp
bearer_token: secret
`
		require.NoError(t, afero.WriteFile(fs, "/conf/server.yaml", []byte(content), 0o644))

		input, err := loadServerConfig("/conf/server.yaml")
		require.NoError(t, err)
		assert.Equal(t, "exa", input.Name)
		assert.Equal(t, "streamable_http", input.Transport)
		assert.Equal(t, "https://example.com/mcp", input.URL)
		assert.Equal(t, "secret", input.BearerToken)
	})

	t.Run("json config", func(t *testing.T) {
		content := `{
  "name": "files",
  "transport": "stdio",
  "command": "npx",
  "args": ["-y", "@modelcontextprotocol/server-filesystem", "/tmp"],
  "env": {"DEBUG": "1"}
}`
		require.NoError(t, afero.WriteFile(fs, "/conf/server.json", []byte(content), 0o644))

		input, err := loadServerConfig("/conf/server.json")
		require.NoError(t, err)
		assert.Equal(t, "files", input.Name)
		assert.Equal(t, "stdio", input.Transport)
		assert.Equal(t, "npx", input.Command)
		assert.Len(t, input.Args, 3)
		assert.Equal(t, "1", input.Env["DEBUG"])
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadServerConfig("/conf/nope.yaml")
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		require.NoError(t, afero.WriteFile(fs, "/conf/bad.yaml", []byte("{not yaml"), 0o644))
		_, err := loadServerConfig("/conf/bad.yaml")
		assert.Error(t, err)
	})
}
