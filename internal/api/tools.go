package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/toolgate/toolgate/internal/registry"
	"github.com/toolgate/toolgate/internal/service/proxy"
	"github.com/toolgate/toolgate/internal/service/upstream"
	"github.com/toolgate/toolgate/pkg/types"
)

// discoverToolsHandler ranks repository tools against a natural language
// query and returns the top matches.
func (s *Server) discoverToolsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.DiscoverRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		started := time.Now()
		matches, err := s.discoveryEngine.Search(req.Query, req.Context, req.Tags, req.Limit)
		if err != nil {
			// the only search error is a blank query, which is a shape problem
			respondValidationError(c, err)
			return
		}
		s.metrics.RecordDiscovery(c.Request.Context(), len(matches), time.Since(started))

		results := make([]types.ToolMatch, len(matches))
		for i, m := range matches {
			results[i] = types.ToolMatch{
				ToolID:          m.Tool.ID,
				Name:            m.Tool.Name,
				Description:     m.Tool.Description,
				Score:           m.Score,
				MatchedTags:     m.MatchedTags,
				EstimatedTokens: m.Tool.EstimatedTokens,
				Server:          m.Tool.Server,
			}
		}

		c.JSON(http.StatusOK, types.DiscoverResponse{
			Tools:     results,
			QueryID:   uuid.NewString(),
			Timestamp: time.Now().UTC(),
		})
	}
}

// provisionToolsHandler selects tools under the token budget and marks the
// returned set as provisioned for execution.
func (s *Server) provisionToolsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.ProvisionRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			// an empty body is a valid request: all fields are optional
			respondValidationError(c, err)
			return
		}

		selected := s.gatingEngine.Select(req.ToolIDs, req.MaxTools, req.ContextTokens)

		provisioned := make([]types.ProvisionedTool, len(selected))
		totalTokens := 0
		for i, tool := range selected {
			s.execRouter.Provision(tool.ID)
			totalTokens += tool.EstimatedTokens
			// the wire name is the composite id so that calls made with it
			// arrive routable
			provisioned[i] = types.ProvisionedTool{
				Name:        tool.ID,
				Description: tool.Description,
				Parameters:  tool.InputSchema(),
				TokenCount:  tool.EstimatedTokens,
				Server:      tool.Server,
			}
		}
		s.metrics.RecordProvisionedTokens(c.Request.Context(), totalTokens)

		c.JSON(http.StatusOK, types.ProvisionResponse{
			Tools: provisioned,
			Metadata: types.ProvisionMetadata{
				TotalTokens:   totalTokens,
				GatingApplied: true,
			},
		})
	}
}

// registerToolHandler adds a tool record to the repository without
// contacting any backend server.
func (s *Server) registerToolHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input types.RegisterToolInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondValidationError(c, err)
			return
		}

		if err := upstream.ValidateServerName(input.Server); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}

		id := input.ID
		if id == "" {
			id = registry.MergeToolID(input.Server, input.Name)
		}

		tokens := input.EstimatedTokens
		if tokens == 0 {
			schemaJSON, _ := json.Marshal(input.Parameters)
			tokens = proxy.EstimateTokens(input.Name, input.Description, schemaJSON)
		}

		tool := &registry.Tool{
			ID:              id,
			Name:            input.Name,
			Description:     input.Description,
			Tags:            input.Tags,
			Parameters:      input.Parameters,
			EstimatedTokens: tokens,
			Server:          input.Server,
		}
		if err := s.toolRegistry.Add(tool); err != nil {
			respondValidationError(c, err)
			return
		}

		s.logger.Info("registered tool", zap.String("tool_id", id))
		c.JSON(http.StatusCreated, types.RegisterToolResult{
			Status: "success",
			ToolID: id,
		})
	}
}

// clearToolsHandler empties the tool repository and the provisioned set.
func (s *Server) clearToolsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		count := s.toolRegistry.Count()

		for _, id := range s.execRouter.ProvisionedIDs() {
			s.execRouter.Unprovision(id)
		}
		s.toolRegistry.Clear()

		s.logger.Info("cleared tool repository", zap.Int("removed", count))
		c.JSON(http.StatusOK, types.ClearResult{
			Status:  "success",
			Message: fmt.Sprintf("removed %d tools from the repository", count),
		})
	}
}
