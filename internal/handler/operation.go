package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/domain"
)

// ApplyOperation handles POST /plans/{planId}/operations, the general edit
// endpoint. The item endpoints below are shorthands that build the same
// domain.Operation from the URL.
func (s *Server) ApplyOperation(w http.ResponseWriter, r *http.Request) {
	planID, err := pathUUID(r, "planId")
	if err != nil {
		requestError(w, err, err.Error())
		return
	}
	var body OperationRequest
	if err := decodeBody(r, &body); err != nil {
		requestError(w, err, err.Error())
		return
	}
	status := http.StatusOK
	if body.OperationType == string(domain.OpInsert) {
		status = http.StatusCreated
	}
	s.apply(w, r, planID, body.toDomain(), status)
}

// UpdateItem handles PATCH /plans/{planId}/days/{day}/items/{index}.
func (s *Server) UpdateItem(w http.ResponseWriter, r *http.Request) {
	planID, day, index, ok := itemPath(w, r)
	if !ok {
		return
	}
	var body UpdateItemRequest
	if err := decodeBody(r, &body); err != nil {
		requestError(w, err, err.Error())
		return
	}
	op := domain.Operation{
		Type:      domain.OpUpdate,
		DayIndex:  day,
		ItemIndex: index,
		Field:     body.Field,
		NewValue:  body.NewValue,
	}
	if body.ItemID != nil {
		op.ItemID = *body.ItemID
	}
	s.apply(w, r, planID, op, http.StatusOK)
}

// DeleteItem handles DELETE /plans/{planId}/days/{day}/items/{index}.
// An optional ?item_id= pins the target item regardless of index.
func (s *Server) DeleteItem(w http.ResponseWriter, r *http.Request) {
	planID, day, index, ok := itemPath(w, r)
	if !ok {
		return
	}
	var itemID *uuid.UUID
	if err := queryParam(r, "item_id", &itemID); err != nil {
		requestError(w, err, err.Error())
		return
	}
	op := domain.Operation{Type: domain.OpDelete, DayIndex: day, ItemIndex: index}
	if itemID != nil {
		op.ItemID = *itemID
	}
	s.apply(w, r, planID, op, http.StatusOK)
}

// InsertItem handles POST /plans/{planId}/days/{day}/items.
// Without a position the item is appended.
func (s *Server) InsertItem(w http.ResponseWriter, r *http.Request) {
	planID, err := pathUUID(r, "planId")
	if err != nil {
		requestError(w, err, err.Error())
		return
	}
	day, err := pathInt(r, "day")
	if err != nil {
		requestError(w, err, err.Error())
		return
	}
	var body InsertItemRequest
	if err := decodeBody(r, &body); err != nil {
		requestError(w, err, err.Error())
		return
	}
	op := domain.Operation{
		Type:     domain.OpInsert,
		DayIndex: day,
		NewItem:  body.Item,
		Position: body.Position,
	}
	s.apply(w, r, planID, op, http.StatusCreated)
}

func (s *Server) apply(w http.ResponseWriter, r *http.Request, planID uuid.UUID, op domain.Operation, status int) {
	plan, entry, err := s.plans.ApplyOperation(r.Context(), planID, op)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, MutationResponse{Plan: plan, HistoryEntry: toHistoryResponse(entry)})
}

// itemPath binds the planId, day, and index path parameters, answering 400
// itself when one is malformed.
func itemPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, int, int, bool) {
	planID, err := pathUUID(r, "planId")
	if err != nil {
		requestError(w, err, err.Error())
		return uuid.Nil, 0, 0, false
	}
	day, err := pathInt(r, "day")
	if err != nil {
		requestError(w, err, err.Error())
		return uuid.Nil, 0, 0, false
	}
	index, err := pathInt(r, "index")
	if err != nil {
		requestError(w, err, err.Error())
		return uuid.Nil, 0, 0, false
	}
	return planID, day, index, true
}
