package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/ruleflow"
	"github.com/aretw0/ruleflow/pkg/domain"
	"github.com/aretw0/ruleflow/pkg/synth"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// WorkflowsURI lists the stored workflow ids.
const WorkflowsURI = "ruleflow://workflows"

// Service defines what the MCP server needs from ruleflow.
type Service interface {
	ValidateWorkflow(ctx context.Context, wf *domain.Workflow) (domain.ValidationReport, error)
	ListWorkflows(ctx context.Context) ([]string, error)
	SynthesizeTestData(conditions []domain.Condition) *synth.Object
	TestRule(ctx context.Context, ruleID string) (*ruleflow.TrialResult, error)
}

// Server wraps the ruleflow Service and exposes it as an MCP Server.
type Server struct {
	svc       Service
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(svc Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		svc:       svc,
		logger:    logger,
		mcpServer: server.NewMCPServer("ruleflow-mcp", ruleflow.Version),
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
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
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
	// TOOL: validate_workflow
	validateTool := mcp.NewTool("validate_workflow",
		mcp.WithDescription("Check a workflow graph for a start and end node, isolated nodes, start-to-end reachability and complete decision branches."),
		mcp.WithString("workflow", mcp.Required(), mcp.Description(`Workflow JSON: {"nodes":[{"id","type","label"}],"edges":[{"source","target","sourceHandle"}]}`)),
		mcp.WithOutputSchema[domain.ValidationReport](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidateWorkflow))

	// TOOL: synthesize_test_data
	s.mcpServer.AddTool(mcp.NewTool("synthesize_test_data",
		mcp.WithDescription("Build a nested sample payload from rule conditions (dotted field paths with literal values)."),
		mcp.WithString("conditions", mcp.Required(), mcp.Description(`JSON array of {"field","operator","value"}`)),
	), s.handleSynthesize)

	// TOOL: list_workflows
	s.mcpServer.AddTool(mcp.NewTool("list_workflows",
		mcp.WithDescription("List the ids of stored workflows."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := s.svc.ListWorkflows(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(ids)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: test_rule
	s.mcpServer.AddTool(mcp.NewTool("test_rule",
		mcp.WithDescription("Synthesize a payload from a rule's conditions and submit it to the rule evaluator."),
		mcp.WithString("rule_id", mcp.Required(), mcp.Description("Rule ID")),
	), s.handleTestRule)
}

func (s *Server) handleValidateWorkflow(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.ValidationReport, error) {
	raw, _ := args["workflow"].(string)

	var wf domain.Workflow
	if err := json.Unmarshal([]byte(raw), &wf); err != nil {
		return domain.ValidationReport{}, fmt.Errorf("invalid workflow JSON: %w", err)
	}

	report, err := s.svc.ValidateWorkflow(ctx, &wf)
	if err != nil {
		return domain.ValidationReport{}, err
	}
	return report, nil
}

func (s *Server) handleSynthesize(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("conditions")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var conditions []domain.Condition
	if err := json.Unmarshal([]byte(raw), &conditions); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid conditions JSON: %v", err)), nil
	}

	jsonBytes, err := json.Marshal(s.svc.SynthesizeTestData(conditions))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleTestRule(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ruleID, err := request.RequireString("rule_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.svc.TestRule(ctx, ruleID)
	if err != nil {
		if ruleflow.IsClientError(err) {
			s.logger.Debug("MCP test_rule rejected", "rule_id", ruleID, "error", err)
		} else {
			s.logger.Warn("MCP test_rule failed", "rule_id", ruleID, "error", err)
		}
		return mcp.NewToolResultError(fmt.Sprintf("test failed: %v", err)), nil
	}

	jsonBytes, err := json.Marshal(res)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) registerResources() {
	// EXPOSE: ruleflow://workflows
	s.mcpServer.AddResource(mcp.NewResource(WorkflowsURI, "Stored workflows",
		mcp.WithMIMEType("application/json"),
	), s.readWorkflows)
}

func (s *Server) readWorkflows(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	ids, err := s.svc.ListWorkflows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	jsonBytes, _ := json.Marshal(ids)

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      WorkflowsURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
