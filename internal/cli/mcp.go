package cli

import (
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/lazypower/kaizen/internal/logger"
	"github.com/lazypower/kaizen/internal/mcptools"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the kaizen tools over MCP stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		// stdout carries the protocol.
		logger.SetOutput(os.Stderr)

		eng, _, cleanup, err := openEngine()
		if err != nil {
			return err
		}
		defer cleanup()

		return server.ServeStdio(mcptools.NewServer(eng, VersionString()))
	},
}
