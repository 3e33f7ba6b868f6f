package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/toolgate/toolgate/internal/model"
	"github.com/toolgate/toolgate/internal/service/upstream"
	"github.com/toolgate/toolgate/pkg/types"
)

// addServerHandler registers a backend MCP server and immediately runs
// tool discovery scoped to it, so its tools become searchable.
func (s *Server) addServerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input types.RegisterServerInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondValidationError(c, err)
			return
		}

		transport, err := types.ValidateTransport(input.Transport)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}

		if err := upstream.ValidateServerName(input.Name); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}

		var server *model.McpServer

		switch transport {
		case types.TransportStreamableHTTP:
			server, err = model.NewStreamableHTTPServer(
				input.Name,
				input.Description,
				input.URL,
				input.BearerToken,
				input.Headers,
			)
			if err != nil {
				c.JSON(
					http.StatusBadRequest,
					gin.H{"detail": fmt.Sprintf("Error creating streamable http server: %v", err)},
				)
				return
			}
		case types.TransportStdio:
			server, err = model.NewStdioServer(
				input.Name,
				input.Description,
				input.Command,
				input.Args,
				input.Env,
			)
			if err != nil {
				c.JSON(
					http.StatusBadRequest,
					gin.H{"detail": fmt.Sprintf("Error creating stdio server: %v", err)},
				)
				return
			}
		}

		if err := s.upstream.RegisterServer(server); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
			return
		}

		toolIDs, err := s.execRouter.DiscoverServerTools(c.Request.Context(), input.Name)
		if err != nil {
			// an unreachable server is not worth keeping registered
			if derr := s.upstream.DeregisterServer(input.Name); derr != nil {
				s.logger.Error("failed to roll back server registration",
					zap.String("server", input.Name),
					zap.Error(derr),
				)
			}
			c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, types.AddServerResult{
			Name:      input.Name,
			Tools:     toolIDs,
			ToolCount: len(toolIDs),
		})
	}
}

func (s *Server) listServersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := s.upstream.ListServers()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
			return
		}

		servers := make([]*types.McpServer, len(records))

		for i, record := range records {
			servers[i] = &types.McpServer{
				Name:        record.Name,
				Transport:   string(record.Transport),
				Description: record.Description,
			}

			switch record.Transport {
			case types.TransportStreamableHTTP:
				conf, err := record.GetStreamableHTTPConfig()
				if err != nil {
					c.JSON(
						http.StatusInternalServerError,
						gin.H{
							"detail": fmt.Sprintf("Error getting streamable HTTP config for server %s: %v", record.Name, err),
						},
					)
					return
				}
				servers[i].URL = conf.URL
			case types.TransportStdio:
				conf, err := record.GetStdioConfig()
				if err != nil {
					c.JSON(
						http.StatusInternalServerError,
						gin.H{
							"detail": fmt.Sprintf("Error getting stdio config for server %s: %v", record.Name, err),
						},
					)
					return
				}
				servers[i].Command = conf.Command
				servers[i].Args = conf.Args
				servers[i].Env = conf.Env
			}
		}

		c.JSON(http.StatusOK, servers)
	}
}

// deregisterServerHandler removes a backend server registration along with
// all of its tools from the repository and the provisioned set.
func (s *Server) deregisterServerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")

		if err := s.upstream.DeregisterServer(name); err != nil {
			if errors.Is(err, upstream.ErrServerNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
			return
		}

		removed := s.toolRegistry.RemoveByServer(name)
		for _, id := range removed {
			s.execRouter.Unprovision(id)
		}
		s.logger.Info("deregistered MCP server",
			zap.String("server", name),
			zap.Int("tools_removed", len(removed)),
		)

		c.Status(http.StatusNoContent)
	}
}
