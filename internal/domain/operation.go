package domain

import (
	"strings"

	"github.com/google/uuid"
)

// ItemField names an editable field of a TimelineItem.
type ItemField string

const (
	FieldTime     ItemField = "time"
	FieldActivity ItemField = "activity"
	FieldLocation ItemField = "location"
	FieldCost     ItemField = "cost"
	FieldDuration ItemField = "duration_minutes"
	FieldNotes    ItemField = "notes"
)

// fieldAliases maps accepted spellings to their canonical ItemField.
// "label" and "duration" are the names older clients send.
var fieldAliases = map[string]ItemField{
	"time":             FieldTime,
	"activity":         FieldActivity,
	"label":            FieldActivity,
	"location":         FieldLocation,
	"cost":             FieldCost,
	"duration_minutes": FieldDuration,
	"durationminutes":  FieldDuration,
	"duration":         FieldDuration,
	"notes":            FieldNotes,
}

// ParseItemField resolves a client-supplied field name, case-insensitively.
// The second return value is false for unknown names.
func ParseItemField(name string) (ItemField, bool) {
	f, ok := fieldAliases[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// Operation is one discrete edit request against a plan.
//
//   - update: DayIndex, ItemIndex (or ItemID), Field, NewValue
//   - delete: DayIndex, ItemIndex (or ItemID)
//   - insert: DayIndex, NewItem, optional Position (nil appends)
//
// When ItemID is non-zero it identifies the target item and ItemIndex is
// ignored, so requests built from a stale copy of the plan cannot hit the
// wrong item.
type Operation struct {
	Type      OperationType
	DayIndex  int
	ItemIndex int
	ItemID    uuid.UUID
	Field     string
	NewValue  any
	NewItem   *TimelineItem
	Position  *int
}
