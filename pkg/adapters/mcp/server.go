package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/magnetrade/internal/logging"
	"github.com/aretw0/magnetrade/internal/presentation/graph"
	"github.com/aretw0/magnetrade/pkg/compiler"
	"github.com/aretw0/magnetrade/pkg/domain"
	"github.com/aretw0/magnetrade/pkg/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const schemaURI = "magnetrade://schema"

// Studio defines what the MCP server needs from the application.
// *magnetrade.Studio implements it.
type Studio interface {
	Catalog() *schema.Catalog
	Compile(g domain.Graph) (domain.Graph, compiler.Workflow, error)
	Validate(g domain.Graph) []compiler.Issue
	Load(ctx context.Context, id string) (*domain.Strategy, error)
	List(ctx context.Context, owner string) ([]*domain.Strategy, error)
}

// CompileResult is the structured output of compile_strategy.
type CompileResult struct {
	Nodes    []domain.Node `json:"nodes" jsonschema_description:"Nodes with recompiled summaries"`
	Edges    []domain.Edge `json:"edges" jsonschema_description:"Edges as submitted"`
	Workflow [][]string    `json:"workflow" jsonschema_description:"Ordered command paths, one per entry node"`
	Issues   []string      `json:"issues,omitempty" jsonschema_description:"Structural warnings and errors"`
	Mermaid  string        `json:"mermaid" jsonschema_description:"Mermaid flowchart of the graph"`
}

// StrategyList is the structured output of list_strategies.
type StrategyList struct {
	Strategies []*domain.Strategy `json:"strategies" jsonschema_description:"Strategies owned by the user, oldest first"`
}

// Server exposes the studio as an MCP server.
type Server struct {
	studio    Studio
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(studio Studio, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		studio:    studio,
		logger:    logger,
		mcpServer: server.NewMCPServer("magnetrade-mcp", version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_schema",
		mcp.WithDescription("Get the block catalog: menus, sub-menus and prompts per block kind."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data, err := json.Marshal(s.studio.Catalog())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode catalog: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	})

	compileTool := mcp.NewTool("compile_strategy",
		mcp.WithDescription("Recompile node summaries and extract the ordered workflow of a strategy graph."),
		mcp.WithString("graph", mcp.Required(), mcp.Description(`JSON object {"nodes": [...], "edges": [...]}`)),
		mcp.WithOutputSchema[CompileResult](),
	)
	s.mcpServer.AddTool(compileTool, mcp.NewStructuredToolHandler(s.handleCompile))

	s.mcpServer.AddTool(mcp.NewTool("get_strategy",
		mcp.WithDescription("Get a saved strategy by ID."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Strategy ID")),
		mcp.WithOutputSchema[domain.Strategy](),
	), mcp.NewStructuredToolHandler(s.handleGetStrategy))

	s.mcpServer.AddTool(mcp.NewTool("list_strategies",
		mcp.WithDescription("List the strategies saved by a user."),
		mcp.WithString("owner", mcp.Required(), mcp.Description("Owner user ID")),
		mcp.WithOutputSchema[StrategyList](),
	), mcp.NewStructuredToolHandler(s.handleListStrategies))
}

func (s *Server) handleCompile(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (CompileResult, error) {
	raw, _ := args["graph"].(string)
	var g domain.Graph
	if err := json.Unmarshal([]byte(raw), &g); err != nil {
		return CompileResult{}, fmt.Errorf("invalid graph: %w", err)
	}

	fresh, workflow, err := s.studio.Compile(g)
	if err != nil {
		s.logger.Warn("MCP compile_strategy failed", "err", err)
		return CompileResult{}, fmt.Errorf("compile failed: %w", err)
	}

	result := CompileResult{
		Nodes:    fresh.Nodes,
		Edges:    fresh.Edges,
		Workflow: workflow,
		Mermaid:  graph.GenerateMermaid(fresh),
	}
	for _, issue := range s.studio.Validate(g) {
		result.Issues = append(result.Issues, issue.String())
	}
	return result, nil
}

func (s *Server) handleGetStrategy(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.Strategy, error) {
	id, _ := args["id"].(string)
	strategy, err := s.studio.Load(ctx, id)
	if err != nil {
		return domain.Strategy{}, fmt.Errorf("get strategy %q: %w", id, err)
	}
	return *strategy, nil
}

func (s *Server) handleListStrategies(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StrategyList, error) {
	owner, _ := args["owner"].(string)
	list, err := s.studio.List(ctx, owner)
	if err != nil {
		return StrategyList{}, fmt.Errorf("list strategies: %w", err)
	}
	return StrategyList{Strategies: list}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(schemaURI, "Block Catalog",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.studio.Catalog())
		if err != nil {
			return nil, fmt.Errorf("failed to encode catalog: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      schemaURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
