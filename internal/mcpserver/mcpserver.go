// Package mcpserver exposes the pipeline as MCP tools over stdio.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/jorge-barreto/augmentor/internal/runner"
	"github.com/jorge-barreto/augmentor/internal/state"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Runs creates runners and locates their artifacts. *bootstrap.Container
// satisfies it.
type Runs interface {
	NewRunner(runID string, models state.Models) *runner.Runner
	Models() state.Models
	RunDir(runID string) string
}

// New creates the MCP server with every tool registered.
func New(runs Runs) *server.MCPServer {
	s := server.NewMCPServer(
		"augmentor",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions("Use augment_prompt to research a request, turn it into a detailed prompt and "+
			"generate the result. If it returns questions, answer them with clarify_run."),
	)

	augment := NewAugmentTool(runs)
	s.AddTool(augment.Definition(), augment.Handle)

	clarify := NewClarifyTool(runs)
	s.AddTool(clarify.Definition(), clarify.Handle)

	return s
}

// Serve runs the MCP server on stdin/stdout until the client disconnects.
func Serve(runs Runs) error {
	return server.ServeStdio(New(runs))
}
