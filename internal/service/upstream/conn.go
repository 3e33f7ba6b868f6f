package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/toolgate/toolgate/internal/model"
	"github.com/toolgate/toolgate/pkg/types"
)

// prepareSHTTPClientOptions prepares the options (specifically, http headers) for creating a
// streamable HTTP client based on the MCP server's configuration.
// If a bearer token is provided in the config and a custom Authorization header is set, the custom header
// takes precedence and the bearer token is ignored.
func (r *Registry) prepareSHTTPClientOptions(serverName string, conf *model.StreamableHTTPConfig) []transport.StreamableHTTPCOption {
	var opts []transport.StreamableHTTPCOption

	headers := map[string]string{}
	for key, value := range conf.Headers {
		headers[key] = value
	}

	if conf.BearerToken != "" {
		if _, hasAuthorizationHeader := headers["Authorization"]; hasAuthorizationHeader {
			r.logger.Info("custom Authorization header will be used, bearer_token ignored",
				zap.String("server", serverName),
			)
		} else {
			headers["Authorization"] = "Bearer " + conf.BearerToken
		}
	}

	if len(headers) > 0 {
		opts = append(opts, transport.WithHTTPHeaders(headers))
	}
	return opts
}

// createHTTPMcpServerConn creates a new connection with a streamable http MCP server and returns the client.
func (r *Registry) createHTTPMcpServerConn(ctx context.Context, s *model.McpServer) (*client.Client, error) {
	conf, err := s.GetStreamableHTTPConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get streamable HTTP config for MCP server %s: %w", s.Name, err)
	}

	opts := r.prepareSHTTPClientOptions(s.Name, conf)

	c, err := client.NewStreamableHttpClient(conf.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create streamable HTTP client for MCP server: %w", err)
	}

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    "toolgate mcp client for " + conf.URL,
		Version: "0.1",
	}
	initRequest.Params.Capabilities = mcp.ClientCapabilities{}

	initCtx, cancel := context.WithTimeout(ctx, time.Duration(r.initReqTimeoutSec)*time.Second)
	defer cancel()

	_, err = c.Initialize(initCtx, initRequest)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("initialization request to MCP server timed out after %d seconds", r.initReqTimeoutSec)
		}
		if errors.Is(err, syscall.ECONNREFUSED) && isLoopbackURL(conf.URL) {
			return nil, fmt.Errorf(
				"connection to the MCP server %s was refused. "+
					"If toolgate is running inside Docker, use 'host.docker.internal' as your MCP server's hostname",
				conf.URL,
			)
		}
		return nil, fmt.Errorf("failed to initialize connection with MCP server: %w", err)
	}

	return c, nil
}

// captureStdioServerStderr captures the stderr output of a stdio MCP server in the background
// and writes it to toolgate server logs.
// This is useful for troubleshooting and visibility into the stdio server's behaviour.
func (r *Registry) captureStdioServerStderr(name string, c *client.Client) {
	stdioTransport, ok := c.GetTransport().(*transport.Stdio)
	if !ok {
		return
	}

	go func() {
		buf := make([]byte, 4096) // 4KB buffer for reading stderr
		for {
			n, err := stdioTransport.Stderr().Read(buf)
			if err != nil {
				if err == io.EOF || errors.Is(err, os.ErrClosed) {
					r.logger.Debug("stdio MCP server process has exited gracefully", zap.String("server", name))
				} else {
					r.logger.Warn("error reading stdio MCP server stderr", zap.String("server", name), zap.Error(err))
				}
				break
			}
			if n > 0 {
				r.logger.Info("stdio MCP server stderr",
					zap.String("server", name),
					zap.String("output", string(buf[:n])),
				)
			}
		}
	}()
}

// runStdioServer runs a stdio MCP server and returns the client.
func (r *Registry) runStdioServer(ctx context.Context, s *model.McpServer) (*client.Client, error) {
	conf, err := s.GetStdioConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdio config for MCP server %s: %w", s.Name, err)
	}

	// Convert the environment map to a slice of strings in the format "KEY=VALUE"
	envVars := make([]string, 0)
	for k, v := range conf.Env {
		envVars = append(envVars, fmt.Sprintf("%s=%s", k, v))
	}

	c, err := client.NewStdioMCPClient(conf.Command, envVars, conf.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create stdio client for MCP server: %w", err)
	}

	r.captureStdioServerStderr(s.Name, c)

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    "toolgate mcp client for stdio",
		Version: "0.1",
	}
	initRequest.Params.Capabilities = mcp.ClientCapabilities{}

	initCtx, cancel := context.WithTimeout(ctx, time.Duration(r.initReqTimeoutSec)*time.Second)
	defer cancel()

	_, err = c.Initialize(initCtx, initRequest)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf(
				"initialization request to MCP server timed out after %d seconds,"+
					" check toolgate server logs for any errors from this MCP server",
				r.initReqTimeoutSec,
			)
		}
		return nil, fmt.Errorf("failed to initialize connection with MCP server: %w", err)
	}

	return c, nil
}

// newMcpServerSession creates a fresh connection to an MCP server based on its transport.
func (r *Registry) newMcpServerSession(ctx context.Context, s *model.McpServer) (*client.Client, error) {
	if s.Transport == types.TransportStreamableHTTP {
		mcpClient, err := r.createHTTPMcpServerConn(ctx, s)
		if err != nil {
			return nil, fmt.Errorf(
				"failed to create connection to streamable http MCP server %s: %w", s.Name, err,
			)
		}
		return mcpClient, nil
	}

	mcpClient, err := r.runStdioServer(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("failed to run stdio MCP server %s: %w", s.Name, err)
	}
	return mcpClient, nil
}
