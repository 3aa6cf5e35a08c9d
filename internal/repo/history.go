package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/domain"
)

// HistoryRepo defines the persistence operations for plan edit history.
// History rows are append-only: there is no update, and rows are only ever
// removed all at once for a plan.
type HistoryRepo interface {
	// Append inserts one history entry and returns the persisted record.
	Append(ctx context.Context, entry domain.HistoryEntry) (domain.HistoryEntry, error)

	// ListByPlan returns up to f.Limit entries for a plan, most recent first
	// (seq descending). A non-nil f.DayIndex restricts the listing to that day.
	ListByPlan(ctx context.Context, planID uuid.UUID, f domain.HistoryFilter) ([]domain.HistoryEntry, error)

	// CountByPlan returns the number of history entries for a plan.
	CountByPlan(ctx context.Context, planID uuid.UUID) (int64, error)

	// DeleteByPlan removes every history entry of a plan and returns how many
	// rows were removed.
	DeleteByPlan(ctx context.Context, planID uuid.UUID) (int64, error)
}

// pgHistoryRepo is the Postgres implementation of HistoryRepo.
type pgHistoryRepo struct {
	db db
}

// NewHistoryRepo constructs a HistoryRepo backed by the provided db connection.
func NewHistoryRepo(db db) HistoryRepo {
	return &pgHistoryRepo{db: db}
}

const historyColumns = `id, seq, plan_id, day_index, item_index, item_id, operation_type, field_changed, before_state, after_state, created_at`

// Append inserts a history row. A plan that does not exist fails the foreign
// key and is reported as domain.ErrNotFound.
func (r *pgHistoryRepo) Append(ctx context.Context, entry domain.HistoryEntry) (domain.HistoryEntry, error) {
	const q = `
		INSERT INTO plan_history (id, seq, plan_id, day_index, item_index, item_id, operation_type, field_changed, before_state, after_state, created_at)
		VALUES (@id, @seq, @plan_id, @day_index, @item_index, @item_id, @operation_type, @field_changed, @before_state, @after_state, @created_at)
		RETURNING ` + historyColumns

	before, err := EncodeItemSnapshot(entry.Before)
	if err != nil {
		return domain.HistoryEntry{}, fmt.Errorf("repo.HistoryRepo.Append: %w", err)
	}
	after, err := EncodeItemSnapshot(entry.After)
	if err != nil {
		return domain.HistoryEntry{}, fmt.Errorf("repo.HistoryRepo.Append: %w", err)
	}

	args := pgx.NamedArgs{
		"id":             entry.ID,
		"seq":            entry.Seq,
		"plan_id":        entry.PlanID,
		"day_index":      entry.DayIndex,
		"item_index":     entry.ItemIndex,
		"item_id":        nullUUID(entry.ItemID),
		"operation_type": string(entry.Operation),
		"field_changed":  nullString(entry.Field),
		"before_state":   before,
		"after_state":    after,
		"created_at":     entry.CreatedAt,
	}

	result, err := scanHistory(r.db.QueryRow(ctx, q, args))
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.HistoryEntry{}, fmt.Errorf("repo.HistoryRepo.Append: plan %s: %w", entry.PlanID, domain.ErrNotFound)
		}
		return domain.HistoryEntry{}, fmt.Errorf("repo.HistoryRepo.Append: %w", err)
	}
	return result, nil
}

// ListByPlan returns the newest entries first. The optional day filter is
// expressed in SQL so one statement serves both listings.
func (r *pgHistoryRepo) ListByPlan(ctx context.Context, planID uuid.UUID, f domain.HistoryFilter) ([]domain.HistoryEntry, error) {
	const q = `
		SELECT ` + historyColumns + `
		FROM plan_history
		WHERE plan_id = @plan_id
		  AND (@day_index::int IS NULL OR day_index = @day_index::int)
		ORDER BY seq DESC
		LIMIT @limit`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"plan_id":   planID,
		"day_index": f.DayIndex,
		"limit":     f.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("repo.HistoryRepo.ListByPlan: %w", err)
	}
	defer rows.Close()

	entries := []domain.HistoryEntry{}
	for rows.Next() {
		e, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.HistoryRepo.ListByPlan: scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.HistoryRepo.ListByPlan: rows: %w", err)
	}
	return entries, nil
}

// CountByPlan returns the number of history rows for a plan.
func (r *pgHistoryRepo) CountByPlan(ctx context.Context, planID uuid.UUID) (int64, error) {
	const q = `SELECT COUNT(*) FROM plan_history WHERE plan_id = @plan_id`

	var n int64
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"plan_id": planID}).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.HistoryRepo.CountByPlan: %w", err)
	}
	return n, nil
}

// DeleteByPlan removes all history rows of a plan.
func (r *pgHistoryRepo) DeleteByPlan(ctx context.Context, planID uuid.UUID) (int64, error) {
	const q = `DELETE FROM plan_history WHERE plan_id = @plan_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"plan_id": planID})
	if err != nil {
		return 0, fmt.Errorf("repo.HistoryRepo.DeleteByPlan: %w", err)
	}
	return tag.RowsAffected(), nil
}

// scanHistory maps a single database row into a domain.HistoryEntry.
// It handles the UUID, nullable item_id and field_changed, and the JSON
// snapshots.
func scanHistory(s scanner) (domain.HistoryEntry, error) {
	var (
		e      domain.HistoryEntry
		id     pgtype.UUID
		planID pgtype.UUID
		itemID pgtype.UUID
		op     string
		field  pgtype.Text
		before []byte
		after  []byte
	)

	err := s.Scan(&id, &e.Seq, &planID, &e.DayIndex, &e.ItemIndex, &itemID, &op, &field, &before, &after, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.HistoryEntry{}, domain.ErrNotFound
		}
		return domain.HistoryEntry{}, err
	}

	e.ID = uuid.UUID(id.Bytes)
	e.PlanID = uuid.UUID(planID.Bytes)
	if itemID.Valid {
		e.ItemID = uuid.UUID(itemID.Bytes)
	}
	e.Operation = domain.OperationType(op)
	e.Field = field.String

	if e.Before, err = DecodeItemSnapshot(before); err != nil {
		return domain.HistoryEntry{}, err
	}
	if e.After, err = DecodeItemSnapshot(after); err != nil {
		return domain.HistoryEntry{}, err
	}
	return e, nil
}

// nullUUID maps uuid.Nil to SQL NULL.
func nullUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: id != uuid.Nil}
}

// nullString maps "" to SQL NULL.
func nullString(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
