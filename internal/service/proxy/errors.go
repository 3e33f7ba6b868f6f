package proxy

import (
	"errors"
	"fmt"
)

// ErrToolNotFound indicates that a tool id is not present in the tool
// repository, for operations that require repository presence.
var ErrToolNotFound = errors.New("tool not found in repository")

// NotProvisionedError is returned when execute is called for a tool id that
// is not in the provisioned set.
type NotProvisionedError struct {
	ToolID string
}

func (e *NotProvisionedError) Error() string {
	return fmt.Sprintf(
		"tool %s has not been provisioned: provision it via POST /tools/provision before executing",
		e.ToolID,
	)
}

// InvalidToolIDError is returned when a composite tool id cannot be split
// into server and tool name.
type InvalidToolIDError struct {
	ToolID string
}

func (e *InvalidToolIDError) Error() string {
	return fmt.Sprintf(
		"invalid tool id %q: expected \"<server>_<toolname>\" with at least one underscore",
		e.ToolID,
	)
}
