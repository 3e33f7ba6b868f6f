// Package upstream implements toolgate's client registry: it owns the
// registration records and live connections for all backend MCP servers.
//
// Connections are cached per server name and created on first use instead of
// reconnecting for every tool call. A failed call drops the cached session so
// the next call reconnects.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"sync"

	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/toolgate/toolgate/internal/model"
	"github.com/toolgate/toolgate/pkg/types"
)

// ErrServerNotFound indicates that no MCP server with the given name is
// registered.
var ErrServerNotFound = errors.New("mcp server not found")

// Registry manages MCP server registrations and their live connections.
type Registry struct {
	db     *gorm.DB
	logger *zap.Logger

	// initReqTimeoutSec bounds how long an MCP server may take to answer
	// the initialize request before the connection attempt is aborted.
	initReqTimeoutSec int

	mu       sync.Mutex
	sessions map[string]*mcpclient.Client
}

// Config holds the parameters for constructing a Registry.
type Config struct {
	DB     *gorm.DB
	Logger *zap.Logger

	// McpServerInitReqTimeout is the timeout in seconds for MCP server
	// initialization requests.
	McpServerInitReqTimeout int
}

// NewRegistry creates a client registry.
func NewRegistry(c *Config) (*Registry, error) {
	if c.DB == nil {
		return nil, errors.New("db is required")
	}
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		db:                c.DB,
		logger:            logger,
		initReqTimeoutSec: c.McpServerInitReqTimeout,
		sessions:          make(map[string]*mcpclient.Client),
	}, nil
}

// RegisterServer persists a new MCP server registration record.
func (r *Registry) RegisterServer(s *model.McpServer) error {
	if err := ValidateServerName(s.Name); err != nil {
		return err
	}
	if err := r.db.Create(s).Error; err != nil {
		return fmt.Errorf("failed to register MCP server %s: %w", s.Name, err)
	}
	r.logger.Info("registered MCP server",
		zap.String("server", s.Name),
		zap.String("transport", string(s.Transport)),
	)
	return nil
}

// DeregisterServer removes an MCP server's registration record and tears
// down its cached session, if any.
func (r *Registry) DeregisterServer(name string) error {
	s, err := r.GetServer(name)
	if err != nil {
		return err
	}
	if err := r.db.Unscoped().Delete(s).Error; err != nil {
		return fmt.Errorf("failed to deregister MCP server %s: %w", name, err)
	}
	r.dropSession(name)
	r.logger.Info("deregistered MCP server", zap.String("server", name))
	return nil
}

// GetServer fetches an MCP server's registration record by name.
func (r *Registry) GetServer(name string) (*model.McpServer, error) {
	var s model.McpServer
	if err := r.db.Where("name = ?", name).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrServerNotFound, name)
		}
		return nil, fmt.Errorf("failed to get MCP server %s from DB: %w", name, err)
	}
	return &s, nil
}

// ListServers returns all registered MCP servers.
func (r *Registry) ListServers() ([]model.McpServer, error) {
	var servers []model.McpServer
	if err := r.db.Find(&servers).Error; err != nil {
		return nil, fmt.Errorf("failed to list MCP servers: %w", err)
	}
	return servers, nil
}

// ServerNames returns the names of all registered MCP servers.
func (r *Registry) ServerNames() ([]string, error) {
	servers, err := r.ListServers()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(servers))
	for i, s := range servers {
		names[i] = s.Name
	}
	return names, nil
}

// ListTools fetches the live tool list from a registered MCP server.
func (r *Registry) ListTools(ctx context.Context, serverName string) ([]mcp.Tool, error) {
	session, err := r.session(ctx, serverName)
	if err != nil {
		return nil, err
	}

	resp, err := session.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		r.dropSession(serverName)
		return nil, fmt.Errorf("failed to fetch tools from MCP server %s: %w", serverName, err)
	}
	return resp.Tools, nil
}

// CallTool invokes a tool on a registered MCP server and returns its
// response. The backend's result and errors are propagated unchanged apart
// from context wrapping; the registry adds no retry logic of its own.
func (r *Registry) CallTool(ctx context.Context, serverName, toolName string, args map[string]any) (*types.ToolInvokeResult, error) {
	session, err := r.session(ctx, serverName)
	if err != nil {
		return nil, err
	}

	callToolReq := mcp.CallToolRequest{}
	callToolReq.Params.Name = toolName
	callToolReq.Params.Arguments = args

	callToolResp, err := session.CallTool(ctx, callToolReq)
	if err != nil {
		// the session may be broken; drop it so the next call reconnects
		r.dropSession(serverName)
		return nil, fmt.Errorf("failed to call tool %s on MCP server %s: %w", toolName, serverName, err)
	}

	result, err := convertToolCallResToAPIRes(callToolResp)
	if err != nil {
		return nil, fmt.Errorf("failed to convert MCP response to api response: %w", err)
	}
	return result, nil
}

// Shutdown closes all cached sessions. Used at server teardown.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, session := range r.sessions {
		if err := session.Close(); err != nil {
			r.logger.Warn("failed to close MCP server session",
				zap.String("server", name),
				zap.Error(err),
			)
		}
		delete(r.sessions, name)
	}
}

// session returns the cached connection for a server, creating it on first
// use.
func (r *Registry) session(ctx context.Context, serverName string) (*mcpclient.Client, error) {
	r.mu.Lock()
	if session, ok := r.sessions[serverName]; ok {
		r.mu.Unlock()
		return session, nil
	}
	r.mu.Unlock()

	s, err := r.GetServer(serverName)
	if err != nil {
		return nil, err
	}

	// connect outside the lock: initialization may block on subprocess
	// startup or network I/O and must not stall other servers' calls
	session, err := r.newMcpServerSession(ctx, s)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[serverName]; ok {
		// lost the race with a concurrent connect, keep the winner
		_ = session.Close()
		return existing, nil
	}
	r.sessions[serverName] = session
	return session, nil
}

// dropSession closes and forgets the cached connection for a server.
func (r *Registry) dropSession(serverName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[serverName]; ok {
		_ = session.Close()
		delete(r.sessions, serverName)
	}
}
