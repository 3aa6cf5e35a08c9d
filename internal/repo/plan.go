// Package repo contains all database access logic for the Tabi-Navi service.
// Each resource has its own file with an interface and a Postgres
// implementation; gateway.go composes them into the persistence gateway the
// service layer depends on. No business logic lives here, only SQL and type
// mapping.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PlanRepo defines the persistence operations for plan documents.
// Days are stored as one JSON document per plan; the cached aggregates live
// in their own columns so list views never decode the schedule.
type PlanRepo interface {
	// Create inserts a new plan and returns the persisted record.
	Create(ctx context.Context, plan domain.Plan) (domain.Plan, error)

	// GetByID retrieves a single plan by its UUID primary key.
	// Returns domain.ErrNotFound if no plan with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Plan, error)

	// Upsert inserts the plan, or overwrites the days and aggregates of an
	// existing plan with the same ID. Input and created_at are never changed.
	Upsert(ctx context.Context, plan domain.Plan) (domain.Plan, error)

	// Update overwrites the days and aggregates of an existing plan.
	// Returns domain.ErrNotFound if no plan with that ID exists.
	Update(ctx context.Context, plan domain.Plan) (domain.Plan, error)

	// ListPaged returns one page of plan summaries ordered by created_at
	// descending, and the total number of plans.
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.PlanSummary, int64, error)

	// Count returns the number of stored plans.
	Count(ctx context.Context) (int64, error)

	// Delete removes a plan by ID; its history rows go with it (ON DELETE CASCADE).
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgPlanRepo is the Postgres implementation of PlanRepo.
type pgPlanRepo struct {
	db db
}

// NewPlanRepo constructs a PlanRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPlanRepo(db db) PlanRepo {
	return &pgPlanRepo{db: db}
}

const planColumns = `id, input, days, total_cost, total_duration_minutes, created_at, updated_at`

// Create inserts a new plan row and returns the full persisted record.
func (r *pgPlanRepo) Create(ctx context.Context, plan domain.Plan) (domain.Plan, error) {
	const q = `
		INSERT INTO plans (id, input, days, total_cost, total_duration_minutes, created_at, updated_at)
		VALUES (@id, @input, @days, @total_cost, @total_duration_minutes, @created_at, @updated_at)
		RETURNING ` + planColumns

	args, err := planArgs(plan)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.Create: %w", err)
	}
	result, err := scanPlan(r.db.QueryRow(ctx, q, args))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Plan{}, fmt.Errorf("repo.PlanRepo.Create: %w",
				&domain.ValidationError{Field: "id", Message: "plan already exists"})
		}
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a plan by primary key.
func (r *pgPlanRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Plan, error) {
	const q = `SELECT ` + planColumns + ` FROM plans WHERE id = @id`

	result, err := scanPlan(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.GetByID: %w", err)
	}
	return result, nil
}

// Upsert inserts or overwrites a plan. On conflict only the mutable columns
// change, so the originating trip request stays as it was first written.
func (r *pgPlanRepo) Upsert(ctx context.Context, plan domain.Plan) (domain.Plan, error) {
	const q = `
		INSERT INTO plans (id, input, days, total_cost, total_duration_minutes, created_at, updated_at)
		VALUES (@id, @input, @days, @total_cost, @total_duration_minutes, @created_at, @updated_at)
		ON CONFLICT (id) DO UPDATE
		SET days                   = EXCLUDED.days,
		    total_cost             = EXCLUDED.total_cost,
		    total_duration_minutes = EXCLUDED.total_duration_minutes,
		    updated_at             = EXCLUDED.updated_at
		RETURNING ` + planColumns

	args, err := planArgs(plan)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.Upsert: %w", err)
	}
	result, err := scanPlan(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.Upsert: %w", err)
	}
	return result, nil
}

// Update overwrites the mutable columns of a plan and returns the updated record.
func (r *pgPlanRepo) Update(ctx context.Context, plan domain.Plan) (domain.Plan, error) {
	const q = `
		UPDATE plans
		SET days                   = @days,
		    total_cost             = @total_cost,
		    total_duration_minutes = @total_duration_minutes,
		    updated_at             = @updated_at
		WHERE id = @id
		RETURNING ` + planColumns

	args, err := planArgs(plan)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.Update: %w", err)
	}
	result, err := scanPlan(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.Update: %w", err)
	}
	return result, nil
}

// ListPaged returns one page of plan summaries, newest first.
// The day count is read with jsonb_array_length so the schedule is never
// shipped to the client for a list view.
func (r *pgPlanRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.PlanSummary, int64, error) {
	const q = `
		SELECT id, input, jsonb_array_length(days), total_cost, total_duration_minutes, created_at, updated_at
		FROM plans
		ORDER BY created_at DESC, id
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.PlanRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	plans := []domain.PlanSummary{}
	for rows.Next() {
		var (
			s     domain.PlanSummary
			id    pgtype.UUID
			input []byte
		)
		if err := rows.Scan(&id, &input, &s.DayCount, &s.TotalCost, &s.TotalDurationMinutes, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("repo.PlanRepo.ListPaged: scan: %w", err)
		}
		if err := json.Unmarshal(input, &s.Input); err != nil {
			return nil, 0, fmt.Errorf("repo.PlanRepo.ListPaged: decode input: %w", err)
		}
		s.ID = uuid.UUID(id.Bytes)
		plans = append(plans, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.PlanRepo.ListPaged: rows: %w", err)
	}

	total, err := r.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.PlanRepo.ListPaged: %w", err)
	}
	return plans, total, nil
}

// Count returns the number of stored plans.
func (r *pgPlanRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM plans`).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.PlanRepo.Count: %w", err)
	}
	return n, nil
}

// Delete removes a plan by primary key.
func (r *pgPlanRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM plans WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.PlanRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.PlanRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// planArgs encodes a plan into named query arguments. Input and days are
// passed as raw JSON bytes, which pgx writes straight into the jsonb columns.
func planArgs(plan domain.Plan) (pgx.NamedArgs, error) {
	input, days, err := EncodePlanDocument(plan)
	if err != nil {
		return nil, err
	}
	return pgx.NamedArgs{
		"id":                     plan.ID,
		"input":                  input,
		"days":                   days,
		"total_cost":             plan.TotalCost,
		"total_duration_minutes": plan.TotalDurationMinutes,
		"created_at":             plan.CreatedAt,
		"updated_at":             plan.UpdatedAt,
	}, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanPlan to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanPlan maps a single database row into a domain.Plan.
func scanPlan(s scanner) (domain.Plan, error) {
	var (
		p     domain.Plan
		id    pgtype.UUID
		input []byte
		days  []byte
	)

	err := s.Scan(&id, &input, &days, &p.TotalCost, &p.TotalDurationMinutes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Plan{}, domain.ErrNotFound
		}
		return domain.Plan{}, err
	}

	p.ID = uuid.UUID(id.Bytes)
	if err := DecodePlanDocument(input, days, &p); err != nil {
		return domain.Plan{}, err
	}
	return p, nil
}
