package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/domain"
)

// Gateway is the persistence boundary the service layer depends on.
// Both the Postgres implementation in this package and the SQLite one in
// repo/sqlite satisfy it, and it is a superset of itinerary.HistoryStore.
type Gateway interface {
	// CreatePlan inserts a new plan document.
	CreatePlan(ctx context.Context, plan domain.Plan) (domain.Plan, error)

	// LoadPlan returns the stored plan, or domain.ErrNotFound.
	LoadPlan(ctx context.Context, id uuid.UUID) (domain.Plan, error)

	// SavePlan inserts or overwrites a plan document.
	SavePlan(ctx context.Context, plan domain.Plan) (domain.Plan, error)

	// ListPlans returns one page of plan summaries and the total count.
	ListPlans(ctx context.Context, p domain.PaginationParams) ([]domain.PlanSummary, int64, error)

	// CountPlans returns the number of stored plans.
	CountPlans(ctx context.Context) (int64, error)

	// DeletePlan removes a plan together with its history.
	DeletePlan(ctx context.Context, id uuid.UUID) error

	// AppendHistory stores a single history entry.
	AppendHistory(ctx context.Context, entry domain.HistoryEntry) (domain.HistoryEntry, error)

	// ListHistory returns a plan's entries, newest first.
	ListHistory(ctx context.Context, planID uuid.UUID, f domain.HistoryFilter) ([]domain.HistoryEntry, error)

	// CountHistory returns the number of entries recorded for a plan.
	CountHistory(ctx context.Context, planID uuid.UUID) (int64, error)

	// ClearHistory removes every entry of a plan and returns how many went.
	ClearHistory(ctx context.Context, planID uuid.UUID) (int64, error)

	// CommitMutation appends entry and then updates plan, atomically.
	// Either both writes are visible afterwards or neither is.
	CommitMutation(ctx context.Context, plan domain.Plan, entry domain.HistoryEntry) (domain.Plan, domain.HistoryEntry, error)

	// Ping checks that the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connections.
	Close() error
}

// txDB is a db that can also open a transaction.
// *pgxpool.Pool satisfies it, and so does pgx.Tx (as a savepoint), which lets
// integration tests run the gateway inside a rolled-back transaction.
type txDB interface {
	db
	Begin(ctx context.Context) (pgx.Tx, error)
}

// pgGateway composes the Postgres repos behind the Gateway interface.
type pgGateway struct {
	conn    txDB
	plans   PlanRepo
	history HistoryRepo
}

// NewGateway constructs the Postgres Gateway.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx.
func NewGateway(conn txDB) Gateway {
	return &pgGateway{
		conn:    conn,
		plans:   NewPlanRepo(conn),
		history: NewHistoryRepo(conn),
	}
}

func (g *pgGateway) CreatePlan(ctx context.Context, plan domain.Plan) (domain.Plan, error) {
	return g.plans.Create(ctx, plan)
}

func (g *pgGateway) LoadPlan(ctx context.Context, id uuid.UUID) (domain.Plan, error) {
	return g.plans.GetByID(ctx, id)
}

func (g *pgGateway) SavePlan(ctx context.Context, plan domain.Plan) (domain.Plan, error) {
	return g.plans.Upsert(ctx, plan)
}

func (g *pgGateway) ListPlans(ctx context.Context, p domain.PaginationParams) ([]domain.PlanSummary, int64, error) {
	return g.plans.ListPaged(ctx, p)
}

func (g *pgGateway) CountPlans(ctx context.Context) (int64, error) {
	return g.plans.Count(ctx)
}

func (g *pgGateway) DeletePlan(ctx context.Context, id uuid.UUID) error {
	return g.plans.Delete(ctx, id)
}

func (g *pgGateway) AppendHistory(ctx context.Context, entry domain.HistoryEntry) (domain.HistoryEntry, error) {
	return g.history.Append(ctx, entry)
}

func (g *pgGateway) ListHistory(ctx context.Context, planID uuid.UUID, f domain.HistoryFilter) ([]domain.HistoryEntry, error) {
	return g.history.ListByPlan(ctx, planID, f)
}

func (g *pgGateway) CountHistory(ctx context.Context, planID uuid.UUID) (int64, error) {
	return g.history.CountByPlan(ctx, planID)
}

func (g *pgGateway) ClearHistory(ctx context.Context, planID uuid.UUID) (int64, error) {
	return g.history.DeleteByPlan(ctx, planID)
}

// CommitMutation runs the history append and the plan update in one
// transaction. The history row goes first: a plan must never be visible in
// a state its history does not explain.
func (g *pgGateway) CommitMutation(ctx context.Context, plan domain.Plan, entry domain.HistoryEntry) (domain.Plan, domain.HistoryEntry, error) {
	var (
		savedPlan  domain.Plan
		savedEntry domain.HistoryEntry
	)
	err := pgx.BeginFunc(ctx, g.conn, func(tx pgx.Tx) error {
		var err error
		if savedEntry, err = NewHistoryRepo(tx).Append(ctx, entry); err != nil {
			return err
		}
		savedPlan, err = NewPlanRepo(tx).Update(ctx, plan)
		return err
	})
	if err != nil {
		return domain.Plan{}, domain.HistoryEntry{}, fmt.Errorf("repo.Gateway.CommitMutation: %w", err)
	}
	return savedPlan, savedEntry, nil
}

func (g *pgGateway) Ping(ctx context.Context) error {
	var one int
	if err := g.conn.QueryRow(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("repo.Gateway.Ping: %w", err)
	}
	return nil
}

// Close closes the pool if the gateway owns one. A gateway built on a
// transaction leaves it to the caller.
func (g *pgGateway) Close() error {
	if c, ok := g.conn.(interface{ Close() }); ok {
		c.Close()
	}
	return nil
}
