// Package service contains the business logic for the Tabi-Navi API.
// Services validate inputs, enforce business rules, and orchestrate gateway
// calls. No SQL lives here: services depend on repo.Gateway, not on an
// implementation.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/domain"
	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/itinerary"
	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/repo"
)

// DefaultHistoryLimit is the number of history entries returned when the
// caller does not ask for a specific amount.
const DefaultHistoryLimit = 50

// MaxHistoryLimit caps a single history listing.
const MaxHistoryLimit = 500

// PlanGenerator produces the initial itinerary for a trip request.
// The returned plan does not need IDs or aggregates; PlanService fills both.
type PlanGenerator interface {
	Generate(ctx context.Context, input domain.TravelInput) (domain.Plan, error)
}

// Status reports the state of the backing store.
type Status struct {
	Healthy   bool  `json:"healthy"`
	PlanCount int64 `json:"plan_count"`
}

// PlanService implements plan storage and the edit workflow: load, apply one
// operation through the engine, commit the plan and its history entry together.
type PlanService struct {
	store        repo.Gateway
	engine       *itinerary.Engine
	recorder     *itinerary.Recorder
	generator    PlanGenerator
	historyLimit int
	logger       *slog.Logger
	now          func() time.Time
}

// Option configures optional PlanService collaborators.
type Option func(*PlanService)

// WithGenerator sets the plan generator used by Generate.
func WithGenerator(g PlanGenerator) Option {
	return func(s *PlanService) { s.generator = g }
}

// WithHistoryLimit sets the default page size for history listings.
func WithHistoryLimit(n int) Option {
	return func(s *PlanService) {
		if n > 0 {
			s.historyLimit = min(n, MaxHistoryLimit)
		}
	}
}

// WithLogger sets the logger; slog.Default() is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(s *PlanService) { s.logger = l }
}

// WithClock overrides time.Now for created/updated stamps.
func WithClock(now func() time.Time) Option {
	return func(s *PlanService) { s.now = now }
}

// NewPlanService constructs a PlanService writing through store.
func NewPlanService(store repo.Gateway, engine *itinerary.Engine, opts ...Option) *PlanService {
	s := &PlanService{
		store:        store,
		engine:       engine,
		recorder:     itinerary.NewRecorder(store),
		historyLimit: DefaultHistoryLimit,
		logger:       slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates, normalizes, and persists a new plan.
// Missing plan and item IDs are assigned; aggregates are always recomputed,
// so caller-supplied totals are ignored.
func (s *PlanService) Create(ctx context.Context, plan domain.Plan) (domain.Plan, error) {
	prepared, err := s.prepare(plan)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Create: %w", err)
	}
	created, err := s.store.CreatePlan(ctx, prepared)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Create: %w", err)
	}
	plansSaved.WithLabelValues("create").Inc()
	return created, nil
}

// Save replaces the stored document with plan, or inserts it when no plan
// with that ID exists. Last write wins.
func (s *PlanService) Save(ctx context.Context, plan domain.Plan) (domain.Plan, error) {
	if plan.ID == uuid.Nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Save: %w",
			&domain.ValidationError{Field: "id", Message: "is required"})
	}
	prepared, err := s.prepare(plan)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Save: %w", err)
	}
	saved, err := s.store.SavePlan(ctx, prepared)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Save: %w", err)
	}
	plansSaved.WithLabelValues("save").Inc()
	return saved, nil
}

// Generate asks the configured PlanGenerator for a plan and persists it.
// Both a missing generator and a failing one surface as
// domain.ErrGeneratorUnavailable.
func (s *PlanService) Generate(ctx context.Context, input domain.TravelInput) (domain.Plan, error) {
	if s.generator == nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Generate: %w", domain.ErrGeneratorUnavailable)
	}
	plan, err := s.generator.Generate(ctx, input)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Generate: %w: %w", domain.ErrGeneratorUnavailable, err)
	}
	plan.ID = uuid.Nil
	plan.Input = input

	prepared, err := s.prepare(plan)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Generate: %w", err)
	}
	created, err := s.store.CreatePlan(ctx, prepared)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Generate: %w", err)
	}
	plansSaved.WithLabelValues("generate").Inc()
	s.logger.InfoContext(ctx, "plan generated",
		slog.String("plan_id", created.ID.String()),
		slog.Int("days", len(created.Days)),
	)
	return created, nil
}

// GetByID returns a single plan.
func (s *PlanService) GetByID(ctx context.Context, id uuid.UUID) (domain.Plan, error) {
	p, err := s.store.LoadPlan(ctx, id)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.GetByID: %w", err)
	}
	return p, nil
}

// List returns one page of plan summaries, newest first, and the total count.
func (s *PlanService) List(ctx context.Context, p domain.PaginationParams) ([]domain.PlanSummary, int64, error) {
	plans, total, err := s.store.ListPlans(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.PlanService.List: %w", err)
	}
	return plans, total, nil
}

// Delete removes a plan and, through the gateway, its history.
func (s *PlanService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeletePlan(ctx, id); err != nil {
		return fmt.Errorf("service.PlanService.Delete: %w", err)
	}
	return nil
}

// ApplyOperation loads the plan, applies op, and commits the new plan and its
// history entry together. Nothing is written when the engine rejects op; when
// the commit fails the error wraps domain.ErrAuditPersistence and the stored
// plan is unchanged.
func (s *PlanService) ApplyOperation(ctx context.Context, planID uuid.UUID, op domain.Operation) (domain.Plan, domain.HistoryEntry, error) {
	plan, err := s.store.LoadPlan(ctx, planID)
	if err != nil {
		s.reject(ctx, planID, op, err)
		return domain.Plan{}, domain.HistoryEntry{}, fmt.Errorf("service.PlanService.ApplyOperation: %w", err)
	}

	next, entry, err := s.engine.Apply(plan, op)
	if err != nil {
		s.reject(ctx, planID, op, err)
		return domain.Plan{}, domain.HistoryEntry{}, fmt.Errorf("service.PlanService.ApplyOperation: %w", err)
	}

	timer := prometheus.NewTimer(commitDuration)
	saved, recorded, err := s.recorder.Commit(ctx, next, entry)
	timer.ObserveDuration()
	if err != nil {
		s.reject(ctx, planID, op, err)
		return domain.Plan{}, domain.HistoryEntry{}, fmt.Errorf("service.PlanService.ApplyOperation: %w", err)
	}

	operationsApplied.WithLabelValues(string(op.Type)).Inc()
	s.logger.InfoContext(ctx, "operation applied",
		slog.String("plan_id", planID.String()),
		slog.String("operation", string(op.Type)),
		slog.Int("day_index", recorded.DayIndex),
		slog.Int("item_index", recorded.ItemIndex),
		slog.Int64("seq", recorded.Seq),
		slog.Int64("total_cost", saved.TotalCost),
	)
	return saved, recorded, nil
}

// History lists a plan's history entries, most recent first.
// A zero f.Limit means the configured default; larger limits are capped.
func (s *PlanService) History(ctx context.Context, planID uuid.UUID, f domain.HistoryFilter) ([]domain.HistoryEntry, error) {
	if _, err := s.store.LoadPlan(ctx, planID); err != nil {
		return nil, fmt.Errorf("service.PlanService.History: %w", err)
	}
	switch {
	case f.Limit <= 0:
		f.Limit = s.historyLimit
	case f.Limit > MaxHistoryLimit:
		f.Limit = MaxHistoryLimit
	}
	entries, err := s.store.ListHistory(ctx, planID, f)
	if err != nil {
		return nil, fmt.Errorf("service.PlanService.History: %w", err)
	}
	return entries, nil
}

// HistoryCount returns how many edits have been recorded for a plan.
func (s *PlanService) HistoryCount(ctx context.Context, planID uuid.UUID) (int64, error) {
	if _, err := s.store.LoadPlan(ctx, planID); err != nil {
		return 0, fmt.Errorf("service.PlanService.HistoryCount: %w", err)
	}
	n, err := s.store.CountHistory(ctx, planID)
	if err != nil {
		return 0, fmt.Errorf("service.PlanService.HistoryCount: %w", err)
	}
	return n, nil
}

// ClearHistory removes every history entry of a plan and returns how many
// were removed. The plan itself is untouched.
func (s *PlanService) ClearHistory(ctx context.Context, planID uuid.UUID) (int64, error) {
	if _, err := s.store.LoadPlan(ctx, planID); err != nil {
		return 0, fmt.Errorf("service.PlanService.ClearHistory: %w", err)
	}
	n, err := s.store.ClearHistory(ctx, planID)
	if err != nil {
		return 0, fmt.Errorf("service.PlanService.ClearHistory: %w", err)
	}
	s.logger.InfoContext(ctx, "history cleared",
		slog.String("plan_id", planID.String()),
		slog.Int64("removed", n),
	)
	return n, nil
}

// Status pings the store and counts plans.
func (s *PlanService) Status(ctx context.Context) (Status, error) {
	if err := s.store.Ping(ctx); err != nil {
		return Status{}, fmt.Errorf("service.PlanService.Status: %w", err)
	}
	n, err := s.store.CountPlans(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("service.PlanService.Status: %w", err)
	}
	return Status{Healthy: true, PlanCount: n}, nil
}

// prepare returns a normalized copy of plan ready to be stored whole:
// IDs assigned, day indexes checked, every item validated, aggregates resummed.
func (s *PlanService) prepare(plan domain.Plan) (domain.Plan, error) {
	out := plan.Clone()
	if out.ID == uuid.Nil {
		out.ID = uuid.New()
	}

	if len(out.Days) == 0 {
		return domain.Plan{}, &domain.ValidationError{Field: "days", Message: "must contain at least one day"}
	}

	seen := make(map[uuid.UUID]struct{})
	v := s.engine.Validator()
	for di := range out.Days {
		day := &out.Days[di]
		if day.DayIndex == 0 {
			day.DayIndex = di + 1
		}
		if day.DayIndex != di+1 {
			return domain.Plan{}, &domain.ValidationError{
				Field:   fmt.Sprintf("days[%d].day_index", di),
				Message: fmt.Sprintf("must be %d", di+1),
			}
		}
		if len(day.Timeline) == 0 {
			return domain.Plan{}, &domain.ValidationError{
				Field:   fmt.Sprintf("days[%d].timeline", di),
				Message: "must contain at least one item",
			}
		}
		for ii := range day.Timeline {
			item := &day.Timeline[ii]
			if item.ID == uuid.Nil {
				item.ID = uuid.New()
			}
			if _, dup := seen[item.ID]; dup {
				return domain.Plan{}, &domain.ValidationError{
					Field:   fmt.Sprintf("days[%d].timeline[%d].id", di, ii),
					Message: "duplicate item id",
				}
			}
			seen[item.ID] = struct{}{}

			if err := v.ValidateItem(*item).Err(); err != nil {
				var ve *domain.ValidationError
				if errors.As(err, &ve) {
					return domain.Plan{}, &domain.ValidationError{
						Field:   fmt.Sprintf("days[%d].timeline[%d].%s", di, ii, ve.Field),
						Message: ve.Message,
					}
				}
				return domain.Plan{}, err
			}
		}
	}

	now := s.now().UTC()
	if out.CreatedAt.IsZero() {
		out.CreatedAt = now
	}
	out.UpdatedAt = now
	return itinerary.Normalize(out), nil
}

// reject logs and counts a failed operation.
func (s *PlanService) reject(ctx context.Context, planID uuid.UUID, op domain.Operation, err error) {
	reason := reasonOf(err)
	opLabel := string(op.Type)
	if !op.Type.Valid() {
		opLabel = "unknown"
	}
	operationsRejected.WithLabelValues(opLabel, reason).Inc()
	s.logger.WarnContext(ctx, "operation rejected",
		slog.String("plan_id", planID.String()),
		slog.String("operation", string(op.Type)),
		slog.Int("day_index", op.DayIndex),
		slog.Int("item_index", op.ItemIndex),
		slog.String("reason", reason),
		slog.String("error", err.Error()),
	)
}

func reasonOf(err error) string {
	switch {
	case errors.Is(err, domain.ErrAuditPersistence):
		return "persistence"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrInvariant):
		return "invariant"
	}
	return "internal"
}
