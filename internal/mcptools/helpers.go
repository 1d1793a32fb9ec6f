package mcptools

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lazypower/kaizen/internal/engine"
	"github.com/lazypower/kaizen/internal/taxonomy"
)

// intArg extracts an integer argument; JSON numbers arrive as float64.
func intArg(req mcp.CallToolRequest, key string, defaultVal int) (int, bool) {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal, false
	}
	return int(v), true
}

func writeTree(b *strings.Builder, nodes []taxonomy.Node, depth int) {
	for _, n := range nodes {
		fmt.Fprintf(b, "%s- %s (%d/%d learned)\n", strings.Repeat("  ", depth), n.Name, n.Learned, n.Points)
		writeTree(b, n.Children, depth+1)
	}
}

func writeReviews(b *strings.Builder, items []engine.Review) {
	for _, it := range items {
		fmt.Fprintf(b, "- [%s #%d] %s", strings.Join(it.Chain, " > "), it.Index, it.Point.Content)
		if it.Point.NextRecall != nil {
			fmt.Fprintf(b, " (due %s)", it.Point.NextRecall)
		}
		b.WriteString("\n")
	}
}
