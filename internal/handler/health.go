package handler

import (
	"net/http"
)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// GetHealth handles GET /healthz.
// It returns HTTP 200 with {"status":"ok"} when the server is running.
func (s *Server) GetHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// GetStatus handles GET /status: storage reachability and plan count.
func (s *Server) GetStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.plans.Status(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("storage_unavailable", unwrapMessage(err)))
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// GetOpenAPI serves the embedded OpenAPI document.
func (s *Server) GetOpenAPI(w http.ResponseWriter, _ *http.Request) {
	if len(s.openAPI) == 0 {
		http.NotFound(w, nil)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(s.openAPI)
}
