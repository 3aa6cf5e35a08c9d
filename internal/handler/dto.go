package handler

import (
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/domain"
)

// PlanRequest is the body of POST /plans and PUT /plans/{planId}.
// Aggregates and timestamps are computed server-side and are not accepted.
type PlanRequest struct {
	ID    *openapi_types.UUID `json:"id,omitempty"`
	Input domain.TravelInput  `json:"input"`
	Days  []domain.Day        `json:"days"`
}

func (p PlanRequest) toDomain() domain.Plan {
	plan := domain.Plan{Input: p.Input, Days: p.Days}
	if p.ID != nil {
		plan.ID = *p.ID
	}
	return plan
}

// PlanListResponse is one page of plan summaries.
type PlanListResponse struct {
	Items []domain.PlanSummary `json:"items"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

// OperationRequest is the body of POST /plans/{planId}/operations.
// Which fields are read depends on operation_type.
type OperationRequest struct {
	OperationType string               `json:"operation_type"`
	DayIndex      int                  `json:"day_index"`
	ItemIndex     int                  `json:"item_index"`
	ItemID        *openapi_types.UUID  `json:"item_id,omitempty"`
	Field         string               `json:"field,omitempty"`
	NewValue      any                  `json:"new_value,omitempty"`
	NewItem       *domain.TimelineItem `json:"new_item,omitempty"`
	Position      *int                 `json:"position,omitempty"`
}

func (o OperationRequest) toDomain() domain.Operation {
	op := domain.Operation{
		Type:      domain.OperationType(o.OperationType),
		DayIndex:  o.DayIndex,
		ItemIndex: o.ItemIndex,
		Field:     o.Field,
		NewValue:  o.NewValue,
		NewItem:   o.NewItem,
		Position:  o.Position,
	}
	if o.ItemID != nil {
		op.ItemID = *o.ItemID
	}
	return op
}

// UpdateItemRequest is the body of PATCH /plans/{planId}/days/{day}/items/{index}.
type UpdateItemRequest struct {
	Field    string              `json:"field"`
	NewValue any                 `json:"new_value"`
	ItemID   *openapi_types.UUID `json:"item_id,omitempty"`
}

// InsertItemRequest is the body of POST /plans/{planId}/days/{day}/items.
type InsertItemRequest struct {
	Item     *domain.TimelineItem `json:"item"`
	Position *int                 `json:"position,omitempty"`
}

// HistoryEntryResponse is the wire form of a domain.HistoryEntry.
type HistoryEntryResponse struct {
	ID            uuid.UUID            `json:"id"`
	Seq           int64                `json:"seq"`
	PlanID        uuid.UUID            `json:"plan_id"`
	DayIndex      int                  `json:"day_index"`
	ItemIndex     int                  `json:"item_index"`
	ItemID        *uuid.UUID           `json:"item_id,omitempty"`
	OperationType string               `json:"operation_type"`
	FieldChanged  string               `json:"field_changed,omitempty"`
	BeforeState   *domain.TimelineItem `json:"before_state"`
	AfterState    *domain.TimelineItem `json:"after_state"`
	CreatedAt     time.Time            `json:"created_at"`
}

func toHistoryResponse(e domain.HistoryEntry) HistoryEntryResponse {
	out := HistoryEntryResponse{
		ID:            e.ID,
		Seq:           e.Seq,
		PlanID:        e.PlanID,
		DayIndex:      e.DayIndex,
		ItemIndex:     e.ItemIndex,
		OperationType: string(e.Operation),
		FieldChanged:  e.Field,
		BeforeState:   e.Before,
		AfterState:    e.After,
		CreatedAt:     e.CreatedAt,
	}
	if e.ItemID != uuid.Nil {
		id := e.ItemID
		out.ItemID = &id
	}
	return out
}

// MutationResponse is returned by every item-editing endpoint: the updated
// plan plus the history entry just recorded.
type MutationResponse struct {
	Plan         domain.Plan          `json:"plan"`
	HistoryEntry HistoryEntryResponse `json:"history_entry"`
}

// HistoryListResponse is the JSON form of GET /plans/{planId}/history.
type HistoryListResponse struct {
	Items []HistoryEntryResponse `json:"items"`
	Total int64                  `json:"total"`
}
