// Package handler implements the HTTP handlers for the Tabi-Navi API.
// All handlers are methods on Server. Methods are split into
// resource-specific files (health.go, plan.go, operation.go, ...) but share
// the same Server struct so they can access its dependencies.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/domain"
	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/service"
)

// PlanServicer defines the business operations the plan handlers depend on.
// Defining the interface here, in the consumer package, lets handler tests
// inject a mock without touching the database or service layer.
type PlanServicer interface {
	Create(ctx context.Context, plan domain.Plan) (domain.Plan, error)
	Save(ctx context.Context, plan domain.Plan) (domain.Plan, error)
	Generate(ctx context.Context, input domain.TravelInput) (domain.Plan, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Plan, error)
	List(ctx context.Context, p domain.PaginationParams) ([]domain.PlanSummary, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ApplyOperation(ctx context.Context, planID uuid.UUID, op domain.Operation) (domain.Plan, domain.HistoryEntry, error)
	History(ctx context.Context, planID uuid.UUID, f domain.HistoryFilter) ([]domain.HistoryEntry, error)
	HistoryCount(ctx context.Context, planID uuid.UUID) (int64, error)
	ClearHistory(ctx context.Context, planID uuid.UUID) (int64, error)
	Status(ctx context.Context) (service.Status, error)
}

// ExportServicer defines the flat export operations.
type ExportServicer interface {
	Export(ctx context.Context) ([]domain.ExportRow, error)
	ExportPlan(ctx context.Context, id uuid.UUID) ([]domain.ExportRow, error)
}

// Server holds the dependencies of every API endpoint.
type Server struct {
	plans   PlanServicer
	export  ExportServicer
	openAPI []byte
}

// NewServer constructs the Server with all its dependencies.
// openAPI is served verbatim at /openapi.yaml.
func NewServer(plans PlanServicer, export ExportServicer, openAPI []byte) *Server {
	return &Server{plans: plans, export: export, openAPI: openAPI}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil)
}

// Routes registers every endpoint on r. Middleware is the caller's concern.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/status", s.GetStatus)
	r.Get("/export", s.GetExport)

	r.Route("/plans", func(r chi.Router) {
		r.Post("/", s.CreatePlan)
		r.Get("/", s.ListPlans)
		r.Post("/generate", s.GeneratePlan)

		r.Route("/{planId}", func(r chi.Router) {
			r.Get("/", s.GetPlan)
			r.Put("/", s.SavePlan)
			r.Delete("/", s.DeletePlan)
			r.Get("/export", s.GetPlanExport)

			r.Post("/operations", s.ApplyOperation)
			r.Post("/days/{day}/items", s.InsertItem)
			r.Patch("/days/{day}/items/{index}", s.UpdateItem)
			r.Delete("/days/{day}/items/{index}", s.DeleteItem)

			r.Get("/history", s.ListHistory)
			r.Delete("/history", s.ClearHistory)
		})
	})
}

// Handler returns a chi router with every endpoint registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Routes(r)
	return r
}
