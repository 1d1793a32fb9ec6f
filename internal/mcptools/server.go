package mcptools

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/lazypower/kaizen/internal/engine"
)

// NewServer registers every kaizen tool on a fresh MCP server.
func NewServer(eng *engine.Engine, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"kaizen",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	tree := NewTreeTool(eng)
	s.AddTool(tree.Definition(), tree.Handle)

	due := NewDueTool(eng)
	s.AddTool(due.Definition(), due.Handle)

	mark := NewMarkTool(eng)
	s.AddTool(mark.Definition(), mark.Handle)

	study := NewStudyTool(eng)
	s.AddTool(study.Definition(), study.Handle)

	progressSync := NewSyncTool(eng)
	s.AddTool(progressSync.Definition(), progressSync.Handle)

	return s
}
