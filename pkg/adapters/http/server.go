package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/ruleflow"
	"github.com/aretw0/ruleflow/internal/presentation/graph"
	"github.com/aretw0/ruleflow/pkg/adapters/evaluator"
	"github.com/aretw0/ruleflow/pkg/domain"
	"github.com/aretw0/ruleflow/pkg/synth"
	"github.com/aretw0/ruleflow/pkg/validator"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds request bodies (workflows from the editor are small).
const maxBodyBytes = 1 << 20

// Service defines the operations the HTTP API exposes.
type Service interface {
	ValidateWorkflow(ctx context.Context, wf *domain.Workflow) (domain.ValidationReport, error)
	SaveWorkflow(ctx context.Context, wf *domain.Workflow) (domain.ValidationReport, error)
	ActivateWorkflow(ctx context.Context, id string) (domain.ValidationReport, error)
	GetWorkflow(ctx context.Context, id string) (*domain.Workflow, error)
	ListWorkflows(ctx context.Context) ([]string, error)
	DeleteWorkflow(ctx context.Context, id string) error
	SynthesizeTestData(conditions []domain.Condition) *synth.Object
	GetRule(ctx context.Context, id string) (*domain.Rule, error)
	ListRules(ctx context.Context) ([]domain.Rule, error)
	TestRule(ctx context.Context, ruleID string) (*ruleflow.TrialResult, error)
}

var _ Service = (*ruleflow.Service)(nil)

// Server holds the HTTP handlers.
type Server struct {
	Service Service
	logger  *slog.Logger
}

type config struct {
	logger           *slog.Logger
	metrics          http.Handler
	validateRequests bool
}

// Option configures NewHandler.
type Option func(*config)

// WithLogger sets the logger used for request failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithMetricsHandler mounts h (typically promhttp) at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(c *config) {
		c.metrics = h
	}
}

// WithRequestValidation checks request bodies and parameters against the OpenAPI document.
func WithRequestValidation(enabled bool) Option {
	return func(c *config) {
		c.validateRequests = enabled
	}
}

// NewHandler creates a new HTTP handler for the service.
func NewHandler(svc Service, opts ...Option) (http.Handler, error) {
	cfg := &config{logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}

	server := &Server{Service: svc, logger: cfg.logger}
	r := chi.NewRouter()

	if cfg.validateRequests {
		doc, err := LoadSpec(context.Background())
		if err != nil {
			return nil, err
		}
		mw, err := requestValidator(doc, func(w http.ResponseWriter, err error) {
			server.writeError(w, http.StatusBadRequest, err)
		})
		if err != nil {
			return nil, err
		}
		r.Use(mw)
	}

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	if cfg.metrics != nil {
		r.Handle("/metrics", cfg.metrics)
	}

	r.Get("/health", server.GetHealth)

	r.Route("/workflows", func(r chi.Router) {
		r.Get("/", server.ListWorkflows)
		r.Post("/validate", server.ValidateWorkflow)
		r.Get("/{id}", server.GetWorkflow)
		r.Put("/{id}", server.SaveWorkflow)
		r.Delete("/{id}", server.DeleteWorkflow)
		r.Post("/{id}/activate", server.ActivateWorkflow)
		r.Get("/{id}/graph", server.GetWorkflowGraph)
	})

	r.Route("/rules", func(r chi.Router) {
		r.Get("/", server.ListRules)
		r.Post("/synthesize", server.SynthesizeTestData)
		r.Get("/{id}", server.GetRule)
		r.Post("/{id}/test", server.TestRule)
	})

	return enableCORS(r), nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Ruleflow API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": ruleflow.Version})
}

// ValidateWorkflow handles POST /workflows/validate.
func (s *Server) ValidateWorkflow(w http.ResponseWriter, r *http.Request) {
	var wf domain.Workflow
	if !s.decode(w, r, &wf) {
		return
	}

	report, err := s.Service.ValidateWorkflow(r.Context(), &wf)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// ListWorkflows handles GET /workflows.
func (s *Server) ListWorkflows(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Service.ListWorkflows(r.Context())
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"workflows": ids})
}

// GetWorkflow handles GET /workflows/{id}.
func (s *Server) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	wf, err := s.Service.GetWorkflow(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, wf)
}

// SaveWorkflow handles PUT /workflows/{id}.
// The body's id may be omitted; when present it must match the path.
func (s *Server) SaveWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var wf domain.Workflow
	if !s.decode(w, r, &wf) {
		return
	}
	if wf.ID == "" {
		wf.ID = id
	}
	if wf.ID != id {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("body id %q does not match path id %q", wf.ID, id))
		return
	}

	report, err := s.Service.SaveWorkflow(r.Context(), &wf)
	if errors.Is(err, domain.ErrInvalidWorkflow) {
		s.writeJSON(w, http.StatusUnprocessableEntity, report)
		return
	}
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// DeleteWorkflow handles DELETE /workflows/{id}.
func (s *Server) DeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	if err := s.Service.DeleteWorkflow(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ActivateWorkflow handles POST /workflows/{id}/activate.
func (s *Server) ActivateWorkflow(w http.ResponseWriter, r *http.Request) {
	report, err := s.Service.ActivateWorkflow(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrInvalidWorkflow) {
		s.writeJSON(w, http.StatusUnprocessableEntity, report)
		return
	}
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// GetWorkflowGraph handles GET /workflows/{id}/graph.
func (s *Server) GetWorkflowGraph(w http.ResponseWriter, r *http.Request) {
	wf, err := s.Service.GetWorkflow(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleError(w, err)
		return
	}

	var overlay *graph.GraphOverlay
	// Reachability assumes referential integrity; skip the overlay otherwise.
	if validator.CheckIntegrity(*wf) == nil {
		overlay = graph.NewOverlay(*wf, validator.Validate(*wf))
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, graph.GenerateMermaid(*wf, overlay))
}

type synthesizeRequest struct {
	Conditions []domain.Condition `json:"conditions"`
}

// SynthesizeTestData handles POST /rules/synthesize.
func (s *Server) SynthesizeTestData(w http.ResponseWriter, r *http.Request) {
	var body synthesizeRequest
	if !s.decode(w, r, &body) {
		return
	}
	s.writeJSON(w, http.StatusOK, s.Service.SynthesizeTestData(body.Conditions))
}

// ListRules handles GET /rules.
func (s *Server) ListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.Service.ListRules(r.Context())
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]domain.Rule{"rules": rules})
}

// GetRule handles GET /rules/{id}.
func (s *Server) GetRule(w http.ResponseWriter, r *http.Request) {
	rule, err := s.Service.GetRule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rule)
}

// TestRule handles POST /rules/{id}/test.
func (s *Server) TestRule(w http.ResponseWriter, r *http.Request) {
	res, err := s.Service.TestRule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

type errorResponse struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrWorkflowNotFound), errors.Is(err, domain.ErrRuleNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrIntegrity):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidWorkflow), errors.Is(err, domain.ErrPayloadSchema):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNoEvaluator):
		return http.StatusServiceUnavailable
	case errors.Is(err, evaluator.ErrEvaluator):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= 500 {
		s.logger.Error("request failed", "status", status, "error", err)
	} else {
		s.logger.Debug("request rejected", "status", status, "error", err)
	}
	s.writeError(w, status, err)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	resp := errorResponse{Error: err.Error()}
	var integrity *validator.IntegrityError
	if errors.As(err, &integrity) {
		resp.Problems = integrity.Problems
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, out any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		s.logger.Warn("invalid request body", "path", r.URL.Path, "error", err)
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}
