// Package sqlite implements repo.Gateway on SQLite for single-node and
// local development deployments. Plans and history use the same JSON
// encoding as the Postgres gateway; UUIDs and timestamps are stored as text.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/domain"
	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/repo"
)

// DriverName is the database/sql driver registered by go-sqlite3.
const DriverName = "sqlite3"

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Gateway is the SQLite implementation of repo.Gateway.
type Gateway struct {
	db *sql.DB
}

var _ repo.Gateway = (*Gateway)(nil)

// Open opens the SQLite database at dsn with foreign keys enforced.
// The pool is limited to one connection: SQLite serialises writers anyway,
// and ":memory:" databases exist per connection.
func Open(dsn string) (*sql.DB, error) {
	if !strings.Contains(dsn, "_foreign_keys") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_foreign_keys=on"
	}
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite.Open: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.Open: ping: %w", err)
	}
	return db, nil
}

// New wraps an open database. The schema must already be migrated.
func New(db *sql.DB) *Gateway {
	return &Gateway{db: db}
}

const planColumns = `id, input, days, total_cost, total_duration_minutes, created_at, updated_at`

func (g *Gateway) CreatePlan(ctx context.Context, plan domain.Plan) (domain.Plan, error) {
	if err := insertPlan(ctx, g.db, plan, false); err != nil {
		return domain.Plan{}, fmt.Errorf("sqlite.Gateway.CreatePlan: %w", err)
	}
	return g.LoadPlan(ctx, plan.ID)
}

func (g *Gateway) LoadPlan(ctx context.Context, id uuid.UUID) (domain.Plan, error) {
	p, err := loadPlan(ctx, g.db, id)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("sqlite.Gateway.LoadPlan: %w", err)
	}
	return p, nil
}

// SavePlan inserts the plan or overwrites its days and aggregates.
// Input and created_at keep their first written values.
func (g *Gateway) SavePlan(ctx context.Context, plan domain.Plan) (domain.Plan, error) {
	if err := insertPlan(ctx, g.db, plan, true); err != nil {
		return domain.Plan{}, fmt.Errorf("sqlite.Gateway.SavePlan: %w", err)
	}
	return g.LoadPlan(ctx, plan.ID)
}

func (g *Gateway) ListPlans(ctx context.Context, p domain.PaginationParams) ([]domain.PlanSummary, int64, error) {
	const q = `
		SELECT id, input, json_array_length(days), total_cost, total_duration_minutes, created_at, updated_at
		FROM plans
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?`

	rows, err := g.db.QueryContext(ctx, q, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite.Gateway.ListPlans: %w", err)
	}
	defer rows.Close()

	plans := []domain.PlanSummary{}
	for rows.Next() {
		var (
			s                    domain.PlanSummary
			id, input            string
			createdAt, updatedAt string
		)
		if err := rows.Scan(&id, &input, &s.DayCount, &s.TotalCost, &s.TotalDurationMinutes, &createdAt, &updatedAt); err != nil {
			return nil, 0, fmt.Errorf("sqlite.Gateway.ListPlans: scan: %w", err)
		}
		var p domain.Plan
		if err := repo.DecodePlanDocument([]byte(input), []byte("[]"), &p); err != nil {
			return nil, 0, fmt.Errorf("sqlite.Gateway.ListPlans: %w", err)
		}
		s.Input = p.Input
		if s.ID, err = uuid.Parse(id); err != nil {
			return nil, 0, fmt.Errorf("sqlite.Gateway.ListPlans: %w", err)
		}
		if s.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, 0, fmt.Errorf("sqlite.Gateway.ListPlans: %w", err)
		}
		if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, 0, fmt.Errorf("sqlite.Gateway.ListPlans: %w", err)
		}
		plans = append(plans, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite.Gateway.ListPlans: rows: %w", err)
	}

	total, err := g.CountPlans(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite.Gateway.ListPlans: %w", err)
	}
	return plans, total, nil
}

func (g *Gateway) CountPlans(ctx context.Context) (int64, error) {
	var n int64
	if err := g.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM plans`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite.Gateway.CountPlans: %w", err)
	}
	return n, nil
}

func (g *Gateway) DeletePlan(ctx context.Context, id uuid.UUID) error {
	res, err := g.db.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("sqlite.Gateway.DeletePlan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite.Gateway.DeletePlan: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("sqlite.Gateway.DeletePlan: %w", domain.ErrNotFound)
	}
	return nil
}

func (g *Gateway) AppendHistory(ctx context.Context, entry domain.HistoryEntry) (domain.HistoryEntry, error) {
	if err := insertHistory(ctx, g.db, entry); err != nil {
		return domain.HistoryEntry{}, fmt.Errorf("sqlite.Gateway.AppendHistory: %w", err)
	}
	return entry, nil
}

func (g *Gateway) ListHistory(ctx context.Context, planID uuid.UUID, f domain.HistoryFilter) ([]domain.HistoryEntry, error) {
	q := `SELECT id, seq, plan_id, day_index, item_index, item_id, operation_type, field_changed, before_state, after_state, created_at
		FROM plan_history WHERE plan_id = ?`
	args := []any{planID.String()}
	if f.DayIndex != nil {
		q += " AND day_index = ?"
		args = append(args, *f.DayIndex)
	}
	q += " ORDER BY seq DESC LIMIT ?"
	args = append(args, f.Limit)

	rows, err := g.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite.Gateway.ListHistory: %w", err)
	}
	defer rows.Close()

	entries := []domain.HistoryEntry{}
	for rows.Next() {
		e, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite.Gateway.ListHistory: scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite.Gateway.ListHistory: rows: %w", err)
	}
	return entries, nil
}

func (g *Gateway) CountHistory(ctx context.Context, planID uuid.UUID) (int64, error) {
	var n int64
	err := g.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM plan_history WHERE plan_id = ?`, planID.String()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite.Gateway.CountHistory: %w", err)
	}
	return n, nil
}

func (g *Gateway) ClearHistory(ctx context.Context, planID uuid.UUID) (int64, error) {
	res, err := g.db.ExecContext(ctx, `DELETE FROM plan_history WHERE plan_id = ?`, planID.String())
	if err != nil {
		return 0, fmt.Errorf("sqlite.Gateway.ClearHistory: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite.Gateway.ClearHistory: %w", err)
	}
	return n, nil
}

// CommitMutation appends the entry and updates the plan in one transaction.
func (g *Gateway) CommitMutation(ctx context.Context, plan domain.Plan, entry domain.HistoryEntry) (domain.Plan, domain.HistoryEntry, error) {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Plan{}, domain.HistoryEntry{}, fmt.Errorf("sqlite.Gateway.CommitMutation: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	if err := insertHistory(ctx, tx, entry); err != nil {
		return domain.Plan{}, domain.HistoryEntry{}, fmt.Errorf("sqlite.Gateway.CommitMutation: %w", err)
	}
	if err := updatePlan(ctx, tx, plan); err != nil {
		return domain.Plan{}, domain.HistoryEntry{}, fmt.Errorf("sqlite.Gateway.CommitMutation: %w", err)
	}
	saved, err := loadPlan(ctx, tx, plan.ID)
	if err != nil {
		return domain.Plan{}, domain.HistoryEntry{}, fmt.Errorf("sqlite.Gateway.CommitMutation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Plan{}, domain.HistoryEntry{}, fmt.Errorf("sqlite.Gateway.CommitMutation: commit: %w", err)
	}
	return saved, entry, nil
}

func (g *Gateway) Ping(ctx context.Context) error {
	if err := g.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite.Gateway.Ping: %w", err)
	}
	return nil
}

func (g *Gateway) Close() error {
	return g.db.Close()
}

func insertPlan(ctx context.Context, q querier, plan domain.Plan, upsert bool) error {
	input, days, err := repo.EncodePlanDocument(plan)
	if err != nil {
		return err
	}
	stmt := `INSERT INTO plans (` + planColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	if upsert {
		stmt += `
			ON CONFLICT (id) DO UPDATE
			SET days = excluded.days,
			    total_cost = excluded.total_cost,
			    total_duration_minutes = excluded.total_duration_minutes,
			    updated_at = excluded.updated_at`
	}
	_, err = q.ExecContext(ctx, stmt,
		plan.ID.String(), string(input), string(days),
		plan.TotalCost, plan.TotalDurationMinutes,
		formatTime(plan.CreatedAt), formatTime(plan.UpdatedAt),
	)
	if err != nil {
		if hasConstraint(err, sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique) {
			return &domain.ValidationError{Field: "id", Message: "plan already exists"}
		}
		return err
	}
	return nil
}

func updatePlan(ctx context.Context, q querier, plan domain.Plan) error {
	_, days, err := repo.EncodePlanDocument(plan)
	if err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, `
		UPDATE plans
		SET days = ?, total_cost = ?, total_duration_minutes = ?, updated_at = ?
		WHERE id = ?`,
		string(days), plan.TotalCost, plan.TotalDurationMinutes, formatTime(plan.UpdatedAt), plan.ID.String(),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func loadPlan(ctx context.Context, q querier, id uuid.UUID) (domain.Plan, error) {
	var (
		p                    domain.Plan
		rawID, input, days   string
		createdAt, updatedAt string
	)
	err := q.QueryRowContext(ctx, `SELECT `+planColumns+` FROM plans WHERE id = ?`, id.String()).
		Scan(&rawID, &input, &days, &p.TotalCost, &p.TotalDurationMinutes, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Plan{}, domain.ErrNotFound
		}
		return domain.Plan{}, err
	}
	if p.ID, err = uuid.Parse(rawID); err != nil {
		return domain.Plan{}, err
	}
	if err := repo.DecodePlanDocument([]byte(input), []byte(days), &p); err != nil {
		return domain.Plan{}, err
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Plan{}, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.Plan{}, err
	}
	return p, nil
}

func insertHistory(ctx context.Context, q querier, e domain.HistoryEntry) error {
	before, err := repo.EncodeItemSnapshot(e.Before)
	if err != nil {
		return err
	}
	after, err := repo.EncodeItemSnapshot(e.After)
	if err != nil {
		return err
	}
	var itemID, field sql.NullString
	if e.ItemID != uuid.Nil {
		itemID = sql.NullString{String: e.ItemID.String(), Valid: true}
	}
	if e.Field != "" {
		field = sql.NullString{String: e.Field, Valid: true}
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO plan_history (id, seq, plan_id, day_index, item_index, item_id, operation_type, field_changed, before_state, after_state, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID.String(), e.Seq, e.PlanID.String(), e.DayIndex, e.ItemIndex, itemID,
		string(e.Operation), field, nullJSON(before), nullJSON(after), formatTime(e.CreatedAt),
	)
	if err != nil {
		if hasConstraint(err, sqlite3.ErrConstraintForeignKey) {
			return fmt.Errorf("plan %s: %w", e.PlanID, domain.ErrNotFound)
		}
		return err
	}
	return nil
}

func scanHistory(rows *sql.Rows) (domain.HistoryEntry, error) {
	var (
		e                  domain.HistoryEntry
		id, planID, op, at string
		itemID, field      sql.NullString
		before, after      sql.NullString
	)
	if err := rows.Scan(&id, &e.Seq, &planID, &e.DayIndex, &e.ItemIndex, &itemID, &op, &field, &before, &after, &at); err != nil {
		return domain.HistoryEntry{}, err
	}

	var err error
	if e.ID, err = uuid.Parse(id); err != nil {
		return domain.HistoryEntry{}, err
	}
	if e.PlanID, err = uuid.Parse(planID); err != nil {
		return domain.HistoryEntry{}, err
	}
	if itemID.Valid {
		if e.ItemID, err = uuid.Parse(itemID.String); err != nil {
			return domain.HistoryEntry{}, err
		}
	}
	e.Operation = domain.OperationType(op)
	e.Field = field.String
	if e.Before, err = repo.DecodeItemSnapshot([]byte(before.String)); err != nil {
		return domain.HistoryEntry{}, err
	}
	if e.After, err = repo.DecodeItemSnapshot([]byte(after.String)); err != nil {
		return domain.HistoryEntry{}, err
	}
	if e.CreatedAt, err = parseTime(at); err != nil {
		return domain.HistoryEntry{}, err
	}
	return e, nil
}

// Timestamps are stored as fixed-width UTC text so that lexical ORDER BY
// matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func nullJSON(b []byte) sql.NullString {
	return sql.NullString{String: string(b), Valid: b != nil}
}

func hasConstraint(err error, codes ...sqlite3.ErrNoExtended) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	for _, c := range codes {
		if sqliteErr.ExtendedCode == c {
			return true
		}
	}
	return false
}
