// Package api provides HTTP API functionality for the toolgate server.
package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/toolgate/toolgate/internal/registry"
	"github.com/toolgate/toolgate/internal/service/discovery"
	"github.com/toolgate/toolgate/internal/service/gating"
	"github.com/toolgate/toolgate/internal/service/proxy"
	"github.com/toolgate/toolgate/internal/service/upstream"
	"github.com/toolgate/toolgate/internal/telemetry"
	"github.com/toolgate/toolgate/pkg/types"
	"github.com/toolgate/toolgate/pkg/version"
)

type ServerOptions struct {
	// Port is the HTTP port to bind the server to
	Port string

	ToolRegistry    *registry.ToolRegistry
	DiscoveryEngine *discovery.Engine
	GatingEngine    *gating.Engine
	Upstream        *upstream.Registry
	Router          *proxy.Router

	// MCPProxy serves the provisioned tool set over the MCP protocol.
	// Optional; when nil the /mcp endpoint is not mounted.
	MCPProxy *proxy.MCPProxy

	OtelProviders *telemetry.Providers
	Metrics       telemetry.CustomMetrics

	Logger *zap.Logger
}

// Server represents the toolgate gateway server that handles discovery,
// provisioning, proxy execution and MCP server management requests.
type Server struct {
	port   string
	router *gin.Engine

	toolRegistry    *registry.ToolRegistry
	discoveryEngine *discovery.Engine
	gatingEngine    *gating.Engine
	upstream        *upstream.Registry
	execRouter      *proxy.Router
	mcpProxy        *proxy.MCPProxy

	otelProviders *telemetry.Providers
	metrics       telemetry.CustomMetrics

	logger *zap.Logger
}

// NewServer initializes a new Gin server for the toolgate gateway.
func NewServer(opts *ServerOptions) (*Server, error) {
	if opts.ToolRegistry == nil {
		return nil, fmt.Errorf("tool registry is required")
	}
	if opts.DiscoveryEngine == nil || opts.GatingEngine == nil {
		return nil, fmt.Errorf("discovery and gating engines are required")
	}
	if opts.Router == nil {
		return nil, fmt.Errorf("execution router is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.NewNoopCustomMetrics()
	}

	s := &Server{
		port:            opts.Port,
		toolRegistry:    opts.ToolRegistry,
		discoveryEngine: opts.DiscoveryEngine,
		gatingEngine:    opts.GatingEngine,
		upstream:        opts.Upstream,
		execRouter:      opts.Router,
		mcpProxy:        opts.MCPProxy,
		otelProviders:   opts.OtelProviders,
		metrics:         metrics,
		logger:          logger,
	}

	s.router = s.setupRouter()
	return s, nil
}

// Start runs the Gin server (blocking call)
func (s *Server) Start() error {
	if err := s.router.Run(":" + s.port); err != nil {
		return fmt.Errorf("failed to run the server: %w", err)
	}
	return nil
}

// setupRouter sets up the Gin router with the MCP proxy server and API endpoints.
func (s *Server) setupRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	// if otel is enabled, setup prometheus metrics endpoint
	if s.otelProviders != nil && s.otelProviders.IsEnabled() {
		// instrument gin
		r.Use(otelgin.Middleware(s.otelProviders.ServiceName()))

		// expose prometheus metrics endpoint
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	r.GET(
		"/health",
		func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		},
	)

	r.GET(
		"/metadata",
		func(c *gin.Context) {
			m := &types.ServerMetadata{
				Version: version.GetVersion(),
			}
			c.JSON(http.StatusOK, m)
		},
	)

	// serve the provisioned tool set over MCP itself on /mcp
	if s.mcpProxy != nil {
		streamableHTTPServer := mcpserver.NewStreamableHTTPServer(s.mcpProxy.Server())
		r.Any("/mcp", gin.WrapH(streamableHTTPServer))
	}

	tools := r.Group("/tools")
	{
		tools.POST("/discover", s.discoverToolsHandler())
		tools.POST("/provision", s.provisionToolsHandler())
		tools.POST("/register", s.registerToolHandler())
		tools.DELETE("/clear", s.clearToolsHandler())
	}

	proxyAPI := r.Group("/proxy")
	{
		proxyAPI.POST("/execute", s.executeToolHandler())
		proxyAPI.POST("/execute/info", s.executionInfoHandler())
	}

	mcpAPI := r.Group("/mcp")
	{
		mcpAPI.POST("/add_server", s.addServerHandler())
		mcpAPI.GET("/servers", s.listServersHandler())
		mcpAPI.DELETE("/servers/:name", s.deregisterServerHandler())
	}

	return r
}

// respondValidationError writes a 422 response for request bodies that
// failed binding or shape validation.
func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
}
