package handler

import (
	"net/http"
	"strconv"

	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/domain"
)

// CreatePlan handles POST /plans.
func (s *Server) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var body PlanRequest
	if err := decodeBody(r, &body); err != nil {
		requestError(w, err, err.Error())
		return
	}
	plan, err := s.plans.Create(r.Context(), body.toDomain())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

// GeneratePlan handles POST /plans/generate. The body is the trip request.
func (s *Server) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	var input domain.TravelInput
	if err := decodeBody(r, &input); err != nil {
		requestError(w, err, err.Error())
		return
	}
	plan, err := s.plans.Generate(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

// ListPlans handles GET /plans?page=&limit=.
// The total is also sent as X-Total-Count.
func (s *Server) ListPlans(w http.ResponseWriter, r *http.Request) {
	var page, limit *int
	if err := queryParam(r, "page", &page); err != nil {
		requestError(w, err, err.Error())
		return
	}
	if err := queryParam(r, "limit", &limit); err != nil {
		requestError(w, err, err.Error())
		return
	}
	p := domain.NewPaginationParams(page, limit)

	items, total, err := s.plans.List(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	writeJSON(w, http.StatusOK, PlanListResponse{Items: items, Total: total, Page: p.Page, Limit: p.Limit})
}

// GetPlan handles GET /plans/{planId}.
func (s *Server) GetPlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "planId")
	if err != nil {
		requestError(w, err, err.Error())
		return
	}
	plan, err := s.plans.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// SavePlan handles PUT /plans/{planId}. The path ID wins over any ID in
// the body.
func (s *Server) SavePlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "planId")
	if err != nil {
		requestError(w, err, err.Error())
		return
	}
	var body PlanRequest
	if err := decodeBody(r, &body); err != nil {
		requestError(w, err, err.Error())
		return
	}
	plan := body.toDomain()
	plan.ID = id

	saved, err := s.plans.Save(r.Context(), plan)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// DeletePlan handles DELETE /plans/{planId}.
func (s *Server) DeletePlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "planId")
	if err != nil {
		requestError(w, err, err.Error())
		return
	}
	if err := s.plans.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
