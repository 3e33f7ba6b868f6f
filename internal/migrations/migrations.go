// Package migrations runs schema migrations for the toolgate database.
package migrations

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/toolgate/toolgate/internal/model"
)

// Migrate applies all pending schema migrations.
// Only MCP server registration records are persisted; tool metadata lives in
// the in-memory repository and is rebuilt from live servers at startup.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.McpServer{}); err != nil {
		return fmt.Errorf("failed to migrate mcp server model: %w", err)
	}
	return nil
}
