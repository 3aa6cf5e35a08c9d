package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/domain"
	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/handler"
	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/service"
)

// mockPlanServicer is a test double for handler.PlanServicer.
// Set only the method fields your test needs.
type mockPlanServicer struct {
	create         func(ctx context.Context, plan domain.Plan) (domain.Plan, error)
	save           func(ctx context.Context, plan domain.Plan) (domain.Plan, error)
	generate       func(ctx context.Context, input domain.TravelInput) (domain.Plan, error)
	getByID        func(ctx context.Context, id uuid.UUID) (domain.Plan, error)
	list           func(ctx context.Context, p domain.PaginationParams) ([]domain.PlanSummary, int64, error)
	delete         func(ctx context.Context, id uuid.UUID) error
	applyOperation func(ctx context.Context, planID uuid.UUID, op domain.Operation) (domain.Plan, domain.HistoryEntry, error)
	history        func(ctx context.Context, planID uuid.UUID, f domain.HistoryFilter) ([]domain.HistoryEntry, error)
	historyCount   func(ctx context.Context, planID uuid.UUID) (int64, error)
	clearHistory   func(ctx context.Context, planID uuid.UUID) (int64, error)
	status         func(ctx context.Context) (service.Status, error)
}

func (m *mockPlanServicer) Create(ctx context.Context, p domain.Plan) (domain.Plan, error) {
	return m.create(ctx, p)
}
func (m *mockPlanServicer) Save(ctx context.Context, p domain.Plan) (domain.Plan, error) {
	return m.save(ctx, p)
}
func (m *mockPlanServicer) Generate(ctx context.Context, in domain.TravelInput) (domain.Plan, error) {
	return m.generate(ctx, in)
}
func (m *mockPlanServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Plan, error) {
	return m.getByID(ctx, id)
}
func (m *mockPlanServicer) List(ctx context.Context, p domain.PaginationParams) ([]domain.PlanSummary, int64, error) {
	return m.list(ctx, p)
}
func (m *mockPlanServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockPlanServicer) ApplyOperation(ctx context.Context, planID uuid.UUID, op domain.Operation) (domain.Plan, domain.HistoryEntry, error) {
	return m.applyOperation(ctx, planID, op)
}
func (m *mockPlanServicer) History(ctx context.Context, planID uuid.UUID, f domain.HistoryFilter) ([]domain.HistoryEntry, error) {
	return m.history(ctx, planID, f)
}
func (m *mockPlanServicer) HistoryCount(ctx context.Context, planID uuid.UUID) (int64, error) {
	return m.historyCount(ctx, planID)
}
func (m *mockPlanServicer) ClearHistory(ctx context.Context, planID uuid.UUID) (int64, error) {
	return m.clearHistory(ctx, planID)
}
func (m *mockPlanServicer) Status(ctx context.Context) (service.Status, error) {
	return m.status(ctx)
}

// compile-time check: mockPlanServicer must satisfy handler.PlanServicer.
var _ handler.PlanServicer = (*mockPlanServicer)(nil)

type mockExportServicer struct {
	export     func(ctx context.Context) ([]domain.ExportRow, error)
	exportPlan func(ctx context.Context, id uuid.UUID) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context) ([]domain.ExportRow, error) {
	return m.export(ctx)
}
func (m *mockExportServicer) ExportPlan(ctx context.Context, id uuid.UUID) ([]domain.ExportRow, error) {
	return m.exportPlan(ctx, id)
}

var _ handler.ExportServicer = (*mockExportServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mocks into a chi router,
// the same way the serve command does minus the middleware.
func newHTTPHandler(plans handler.PlanServicer, export handler.ExportServicer) http.Handler {
	return handler.NewServer(plans, export, []byte("openapi: 3.0.3\n")).Handler()
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func planFixture() domain.Plan {
	return domain.Plan{
		ID:    uuid.New(),
		Input: domain.TravelInput{Origin: "Tokyo", Destination: "Nikko", StartDate: "2025-05-01", EndDate: "2025-05-01", Budget: 20000},
		Days: []domain.Day{{
			DayIndex: 1, Date: "2025-05-01",
			Timeline: []domain.TimelineItem{
				{ID: uuid.New(), Time: "09:00", Activity: "Toshogu", Cost: 1300, DurationMinutes: 120},
			},
			DailyCost: 1300, DailyDurationMinutes: 120,
		}},
		TotalCost:            1300,
		TotalDurationMinutes: 120,
	}
}

func decodeError(t *testing.T, body *bytes.Buffer) handler.ErrorDetail {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp.Error
}
