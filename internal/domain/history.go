package domain

import (
	"time"

	"github.com/google/uuid"
)

// OperationType is the kind of edit an Operation or HistoryEntry describes.
type OperationType string

const (
	OpUpdate OperationType = "update"
	OpDelete OperationType = "delete"
	OpInsert OperationType = "insert"
)

// Valid reports whether t is one of the known operation types.
func (t OperationType) Valid() bool {
	switch t {
	case OpUpdate, OpDelete, OpInsert:
		return true
	}
	return false
}

// HistoryEntry is an immutable audit record of one applied operation.
//
// DayIndex and ItemIndex are the target position at the time of the edit;
// ItemID is the stable identity of the affected item. Before is nil for
// inserts and After is nil for deletes. Field is set only for updates.
//
// Seq is strictly increasing in the order operations were applied and is the
// sort key for history listings; CreatedAt alone can tie.
type HistoryEntry struct {
	ID        uuid.UUID
	Seq       int64
	PlanID    uuid.UUID
	DayIndex  int
	ItemIndex int
	ItemID    uuid.UUID
	Operation OperationType
	Field     string
	Before    *TimelineItem
	After     *TimelineItem
	CreatedAt time.Time
}

// HistoryFilter narrows a history listing.
// A nil DayIndex returns entries for every day.
type HistoryFilter struct {
	Limit    int
	DayIndex *int
}
