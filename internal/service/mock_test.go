package service_test

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/domain"
	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/itinerary"
	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/repo"
)

// mockGateway is a hand-written test double for repo.Gateway.
// Each method is a function field; set only the ones your test needs.
type mockGateway struct {
	createPlan     func(ctx context.Context, plan domain.Plan) (domain.Plan, error)
	loadPlan       func(ctx context.Context, id uuid.UUID) (domain.Plan, error)
	savePlan       func(ctx context.Context, plan domain.Plan) (domain.Plan, error)
	listPlans      func(ctx context.Context, p domain.PaginationParams) ([]domain.PlanSummary, int64, error)
	countPlans     func(ctx context.Context) (int64, error)
	deletePlan     func(ctx context.Context, id uuid.UUID) error
	appendHistory  func(ctx context.Context, entry domain.HistoryEntry) (domain.HistoryEntry, error)
	listHistory    func(ctx context.Context, planID uuid.UUID, f domain.HistoryFilter) ([]domain.HistoryEntry, error)
	countHistory   func(ctx context.Context, planID uuid.UUID) (int64, error)
	clearHistory   func(ctx context.Context, planID uuid.UUID) (int64, error)
	commitMutation func(ctx context.Context, plan domain.Plan, entry domain.HistoryEntry) (domain.Plan, domain.HistoryEntry, error)
	ping           func(ctx context.Context) error
}

func (m *mockGateway) CreatePlan(ctx context.Context, plan domain.Plan) (domain.Plan, error) {
	return m.createPlan(ctx, plan)
}
func (m *mockGateway) LoadPlan(ctx context.Context, id uuid.UUID) (domain.Plan, error) {
	return m.loadPlan(ctx, id)
}
func (m *mockGateway) SavePlan(ctx context.Context, plan domain.Plan) (domain.Plan, error) {
	return m.savePlan(ctx, plan)
}
func (m *mockGateway) ListPlans(ctx context.Context, p domain.PaginationParams) ([]domain.PlanSummary, int64, error) {
	return m.listPlans(ctx, p)
}
func (m *mockGateway) CountPlans(ctx context.Context) (int64, error) {
	return m.countPlans(ctx)
}
func (m *mockGateway) DeletePlan(ctx context.Context, id uuid.UUID) error {
	return m.deletePlan(ctx, id)
}
func (m *mockGateway) AppendHistory(ctx context.Context, entry domain.HistoryEntry) (domain.HistoryEntry, error) {
	return m.appendHistory(ctx, entry)
}
func (m *mockGateway) ListHistory(ctx context.Context, planID uuid.UUID, f domain.HistoryFilter) ([]domain.HistoryEntry, error) {
	return m.listHistory(ctx, planID, f)
}
func (m *mockGateway) CountHistory(ctx context.Context, planID uuid.UUID) (int64, error) {
	return m.countHistory(ctx, planID)
}
func (m *mockGateway) ClearHistory(ctx context.Context, planID uuid.UUID) (int64, error) {
	return m.clearHistory(ctx, planID)
}
func (m *mockGateway) CommitMutation(ctx context.Context, plan domain.Plan, entry domain.HistoryEntry) (domain.Plan, domain.HistoryEntry, error) {
	return m.commitMutation(ctx, plan, entry)
}
func (m *mockGateway) Ping(ctx context.Context) error {
	return m.ping(ctx)
}
func (m *mockGateway) Close() error { return nil }

// compile-time check: mockGateway must satisfy repo.Gateway.
var _ repo.Gateway = (*mockGateway)(nil)

// counterSeq is a deterministic itinerary.Sequencer.
type counterSeq struct{ n atomic.Int64 }

func (c *counterSeq) Next() int64 { return c.n.Add(1) }

func newEngine() *itinerary.Engine {
	return itinerary.NewEngine(&counterSeq{})
}

// storedGateway returns a mock that serves plan from LoadPlan and echoes
// every write back.
func storedGateway(plan domain.Plan) *mockGateway {
	return &mockGateway{
		loadPlan: func(_ context.Context, id uuid.UUID) (domain.Plan, error) {
			if id != plan.ID {
				return domain.Plan{}, domain.ErrNotFound
			}
			return plan.Clone(), nil
		},
		createPlan: func(_ context.Context, p domain.Plan) (domain.Plan, error) { return p, nil },
		savePlan:   func(_ context.Context, p domain.Plan) (domain.Plan, error) { return p, nil },
		commitMutation: func(_ context.Context, p domain.Plan, e domain.HistoryEntry) (domain.Plan, domain.HistoryEntry, error) {
			return p, e, nil
		},
	}
}
