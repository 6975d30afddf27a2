// Package mcpserver wraps a sync.Engine, a query.Engine, and a
// ts.Store behind the five MCP tools of the external interface:
// register_repository, list_repositories, sync_repositories,
// search_items, and find_related_items. Tool registration follows
// other_examples/bcbcfb8b_takihito-ghub-desk__mcp-docs.go.go's
// sdk.Server usage, generalized from that file's resource-only example
// to mcp.AddTool's typed-input/typed-output tool shape.
package mcpserver

import (
	"context"
	"fmt"
	"log"
	"net/http"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hlfshell/gitdb/internal/query"
	"github.com/hlfshell/gitdb/internal/storage/ts"
	"github.com/hlfshell/gitdb/internal/sync"
)

const (
	serverName    = "gitdb"
	serverVersion = "0.1.0"
)

// Server bundles the engines every tool handler needs.
type Server struct {
	Sync   *sync.Engine
	Query  *query.Engine
	TS     *ts.Store
	Logger *log.Logger

	mcp *mcp.Server
}

// New constructs a Server and registers all five tools against a fresh
// mcp.Server instance.
func New(syncEngine *sync.Engine, queryEngine *query.Engine, tsStore *ts.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{Sync: syncEngine, Query: queryEngine, TS: tsStore, Logger: logger}
	s.mcp = mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "register_repository",
		Description: "Register a GitHub repository by URL or owner/name and run its initial sync.",
	}, s.registerRepository)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_repositories",
		Description: "List every repository gitdb has registered locally.",
	}, s.listRepositories)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "sync_repositories",
		Description: "Sync one registered repository, or all of them, incrementally or fully.",
	}, s.syncRepositories)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_items",
		Description: "Full-text search across repositories, issues, pull requests, and comments.",
	}, s.searchItems)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "find_related_items",
		Description: "Find cross-references and semantically similar items for one issue or pull request.",
	}, s.findRelatedItems)
}

// ServeStdio runs the server over the stdio transport, the shape
// `gitdb mcp stdio` uses.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// ServeSSE runs the server over the SSE transport mounted on an
// http.Server at addr, the shape `gitdb mcp serve --addr` uses.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	handler := mcp.NewSSEHandler(func(*http.Request) *mcp.Server {
		return s.mcp
	})
	httpServer := &http.Server{Addr: addr, Handler: handler}

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return httpServer.Shutdown(context.Background())
	case err := <-errCh:
		return fmt.Errorf("mcp sse server: %w", err)
	}
}
