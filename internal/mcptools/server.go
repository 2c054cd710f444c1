package mcptools

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported to MCP clients. The CLI sets it from its build version.
var Version = "dev"

// NewServer creates an MCP server with every analysis tool registered.
func NewServer(svc *Service) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "dontreadme",
		Version: Version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze",
		Description: "Analyze a JavaScript or TypeScript project: architecture, dependency graph, API surface, decisions, hotspots and risk. Loads the result for the other tools and returns a summary.",
	}, svc.Analyze)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_dependencies",
		Description: "Traverse file imports upstream (what a file imports) or downstream (what imports it). Returns one chain per reachable file up to the given depth.",
	}, svc.GetDependencies)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "assess_impact",
		Description: "Compute the blast radius of changing a set of files. Returns directly and transitively affected importers and the fraction of files affected.",
	}, svc.AssessImpact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_components",
		Description: "Return every architectural component with its type, layer, cohesion and member files.",
	}, svc.GetComponents)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_hotspots",
		Description: "Return the files with the highest churn scores from version-control history.",
	}, svc.GetHotspots)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_risk",
		Description: "Return the riskiest files with their domain, multipliers, mitigations and severity.",
	}, svc.GetRisk)

	return server
}

// RunStdio serves on stdin and stdout until the client disconnects or ctx
// is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves over streamable HTTP on addr until ctx is cancelled.
func RunHTTP(ctx context.Context, server *mcp.Server, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Shut down when the context is cancelled.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
