package itinerary

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/domain"
)

// Engine applies edit operations to plans.
// It holds no per-plan state; callers serialize operations on the same plan.
type Engine struct {
	validator *Validator
	seq       Sequencer
	now       func() time.Time
	newID     func() uuid.UUID
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for UpdatedAt and CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides how history entry and item IDs are minted.
func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(e *Engine) { e.newID = newID }
}

// NewEngine constructs an Engine that stamps history entries from seq.
func NewEngine(seq Sequencer, opts ...Option) *Engine {
	e := &Engine{
		validator: NewValidator(),
		seq:       seq,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.New,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Validator exposes the item validator the engine applies, so callers can
// validate whole documents with the same rules.
func (e *Engine) Validator() *Validator {
	return e.validator
}

// Apply executes op against plan and returns the new plan together with the
// history entry describing the change.
//
// The input plan is never modified. On any error (domain.ErrNotFound,
// domain.ErrValidation, domain.ErrInvariant) the returned plan and entry are
// zero values and nothing should be recorded.
func (e *Engine) Apply(plan domain.Plan, op domain.Operation) (domain.Plan, domain.HistoryEntry, error) {
	switch op.Type {
	case domain.OpUpdate:
		return e.update(plan, op)
	case domain.OpDelete:
		return e.delete(plan, op)
	case domain.OpInsert:
		return e.insert(plan, op)
	default:
		return domain.Plan{}, domain.HistoryEntry{}, &domain.ValidationError{
			Field:   "operation_type",
			Message: fmt.Sprintf("unknown operation %q", op.Type),
		}
	}
}

func (e *Engine) update(plan domain.Plan, op domain.Operation) (domain.Plan, domain.HistoryEntry, error) {
	di, ii, err := locate(plan, op)
	if err != nil {
		return domain.Plan{}, domain.HistoryEntry{}, err
	}
	field, ok := domain.ParseItemField(op.Field)
	if !ok {
		return domain.Plan{}, domain.HistoryEntry{}, &domain.ValidationError{
			Field:   "field",
			Message: fmt.Sprintf("unknown field %q", op.Field),
		}
	}

	before := plan.Days[di].Timeline[ii]
	after, err := setField(before, field, op.NewValue)
	if err != nil {
		return domain.Plan{}, domain.HistoryEntry{}, err
	}
	if err := e.validator.ValidateItem(after).Err(); err != nil {
		return domain.Plan{}, domain.HistoryEntry{}, err
	}

	out := plan.Clone()
	out.Days[di].Timeline[ii] = after
	applyDelta(&out, di, after.Cost-before.Cost, after.DurationMinutes-before.DurationMinutes)

	entry := e.stamp(&out, di, ii, after.ID, domain.OpUpdate)
	entry.Field = string(field)
	entry.Before = &before
	entry.After = &after
	return out, entry, nil
}

func (e *Engine) delete(plan domain.Plan, op domain.Operation) (domain.Plan, domain.HistoryEntry, error) {
	di, ii, err := locate(plan, op)
	if err != nil {
		return domain.Plan{}, domain.HistoryEntry{}, err
	}
	if err := e.validator.ValidateDelete(plan.Days[di]); err != nil {
		return domain.Plan{}, domain.HistoryEntry{}, err
	}

	removed := plan.Days[di].Timeline[ii]

	out := plan.Clone()
	out.Days[di].Timeline = slices.Delete(out.Days[di].Timeline, ii, ii+1)
	applyDelta(&out, di, -removed.Cost, -removed.DurationMinutes)

	entry := e.stamp(&out, di, ii, removed.ID, domain.OpDelete)
	entry.Before = &removed
	return out, entry, nil
}

func (e *Engine) insert(plan domain.Plan, op domain.Operation) (domain.Plan, domain.HistoryEntry, error) {
	if op.NewItem == nil {
		return domain.Plan{}, domain.HistoryEntry{}, &domain.ValidationError{Field: "new_item", Message: "is required"}
	}
	di := plan.DayPosition(op.DayIndex)
	if di < 0 {
		return domain.Plan{}, domain.HistoryEntry{}, fmt.Errorf("%w: day %d", domain.ErrNotFound, op.DayIndex)
	}

	item := *op.NewItem
	if item.ID == uuid.Nil {
		item.ID = e.newID()
	} else if hasItem(plan, item.ID) {
		return domain.Plan{}, domain.HistoryEntry{}, &domain.ValidationError{
			Field:   "id",
			Message: fmt.Sprintf("item %s already exists in this plan", item.ID),
		}
	}
	if err := e.validator.ValidateItem(item).Err(); err != nil {
		return domain.Plan{}, domain.HistoryEntry{}, err
	}

	n := len(plan.Days[di].Timeline)
	pos := n
	if op.Position != nil {
		pos = min(max(*op.Position, 0), n)
	}

	out := plan.Clone()
	out.Days[di].Timeline = slices.Insert(out.Days[di].Timeline, pos, item)
	applyDelta(&out, di, item.Cost, item.DurationMinutes)

	entry := e.stamp(&out, di, pos, item.ID, domain.OpInsert)
	entry.After = &item
	return out, entry, nil
}

// stamp refreshes out.UpdatedAt and builds the common part of the history
// entry for an edit at day position di, item position ii.
func (e *Engine) stamp(out *domain.Plan, di, ii int, itemID uuid.UUID, t domain.OperationType) domain.HistoryEntry {
	now := e.now()
	out.UpdatedAt = now
	return domain.HistoryEntry{
		ID:        e.newID(),
		Seq:       e.seq.Next(),
		PlanID:    out.ID,
		DayIndex:  out.Days[di].DayIndex,
		ItemIndex: ii,
		ItemID:    itemID,
		Operation: t,
		CreatedAt: now,
	}
}

// locate resolves the target of an update or delete to a day position and an
// item position. A non-zero op.ItemID takes precedence over op.ItemIndex.
func locate(plan domain.Plan, op domain.Operation) (int, int, error) {
	di := plan.DayPosition(op.DayIndex)
	if di < 0 {
		return 0, 0, fmt.Errorf("%w: day %d", domain.ErrNotFound, op.DayIndex)
	}
	timeline := plan.Days[di].Timeline

	if op.ItemID != uuid.Nil {
		ii := slices.IndexFunc(timeline, func(it domain.TimelineItem) bool { return it.ID == op.ItemID })
		if ii < 0 {
			return 0, 0, fmt.Errorf("%w: item %s on day %d", domain.ErrNotFound, op.ItemID, op.DayIndex)
		}
		return di, ii, nil
	}

	if op.ItemIndex < 0 || op.ItemIndex >= len(timeline) {
		return 0, 0, fmt.Errorf("%w: item %d on day %d", domain.ErrNotFound, op.ItemIndex, op.DayIndex)
	}
	return di, op.ItemIndex, nil
}

func hasItem(plan domain.Plan, id uuid.UUID) bool {
	for _, day := range plan.Days {
		for _, it := range day.Timeline {
			if it.ID == id {
				return true
			}
		}
	}
	return false
}

// setField returns a copy of item with field set to value.
// String fields accept a string or nil (which clears the field).
// Integer fields accept Go integers, integral floats, json.Number, and
// base-10 strings.
func setField(item domain.TimelineItem, field domain.ItemField, value any) (domain.TimelineItem, error) {
	switch field {
	case domain.FieldTime, domain.FieldActivity, domain.FieldLocation, domain.FieldNotes:
		s, err := toString(field, value)
		if err != nil {
			return domain.TimelineItem{}, err
		}
		switch field {
		case domain.FieldTime:
			item.Time = s
		case domain.FieldActivity:
			item.Activity = s
		case domain.FieldLocation:
			item.Location = s
		default:
			item.Notes = s
		}
	case domain.FieldCost, domain.FieldDuration:
		n, err := toInt64(field, value)
		if err != nil {
			return domain.TimelineItem{}, err
		}
		if field == domain.FieldCost {
			item.Cost = n
		} else {
			item.DurationMinutes = n
		}
	}
	return item, nil
}

func toString(field domain.ItemField, value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", &domain.ValidationError{Field: string(field), Message: fmt.Sprintf("must be a string (got %T)", value)}
	}
}

func toInt64(field domain.ItemField, value any) (int64, error) {
	bad := func() error {
		return &domain.ValidationError{Field: string(field), Message: fmt.Sprintf("must be an integer (got %v)", value)}
	}
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint32:
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || v >= 1<<63 || v < -1<<63 {
			return 0, bad()
		}
		return int64(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, bad()
		}
		return n, nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, bad()
		}
		return n, nil
	default:
		return 0, bad()
	}
}
