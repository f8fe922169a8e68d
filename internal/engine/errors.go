package engine

import (
	"fmt"
	"strings"

	"github.com/takeshy/davquery/internal/query"
)

// CommandError is returned when the block's command is missing or unsupported
type CommandError struct {
	Command string
}

func (e *CommandError) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("missing command: expected %q", query.CommandListFiles)
	}
	return fmt.Sprintf("unsupported command %q: expected %q", e.Command, query.CommandListFiles)
}

// ConfigurationError is returned when connection settings are incomplete
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("connection is not configured: missing %s", strings.Join(e.Missing, ", "))
}

// ServerError is returned when the server answers with a non-2xx status
type ServerError struct {
	StatusCode int
	Folder     string
	Err        error
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("failed to list %s: server responded with status %d", e.Folder, e.StatusCode)
}

func (e *ServerError) Unwrap() error {
	return e.Err
}
