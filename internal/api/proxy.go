package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/toolgate/toolgate/internal/service/proxy"
	"github.com/toolgate/toolgate/internal/service/upstream"
	"github.com/toolgate/toolgate/pkg/types"
)

// executeToolHandler invokes a provisioned tool on its backend server.
func (s *Server) executeToolHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.ExecuteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		result, err := s.execRouter.Execute(c.Request.Context(), req.ToolID, req.Arguments)
		if err != nil {
			var notProvisioned *proxy.NotProvisionedError
			var invalidID *proxy.InvalidToolIDError
			switch {
			case errors.As(err, &notProvisioned), errors.As(err, &invalidID):
				c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			case errors.Is(err, upstream.ErrServerNotFound):
				c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
			default:
				// backend errors are propagated with their message preserved
				c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
			}
			return
		}

		c.JSON(http.StatusOK, types.ExecuteResponse{Result: result})
	}
}

// executionInfoHandler returns a preview of a tool execution without
// contacting any backend.
func (s *Server) executionInfoHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.ExecuteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		info, err := s.execRouter.ExecutionInfo(req.ToolID, req.Arguments)
		if err != nil {
			if errors.Is(err, proxy.ErrToolNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
			return
		}

		c.JSON(http.StatusOK, info)
	}
}
