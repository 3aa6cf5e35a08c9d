package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/domain"
)

// exportCSVHeaders defines the column names written as the first row of any
// CSV export.
var exportCSVHeaders = []string{
	"plan_id", "destination", "day_index", "date", "position",
	"item_id", "time", "activity", "location", "cost", "duration_minutes", "notes",
}

// ExportRowResponse is the JSON form of one export row.
type ExportRowResponse struct {
	PlanID          string `json:"plan_id"`
	Destination     string `json:"destination"`
	DayIndex        int    `json:"day_index"`
	Date            string `json:"date"`
	Position        int    `json:"position"`
	ItemID          string `json:"item_id"`
	Time            string `json:"time"`
	Activity        string `json:"activity"`
	Location        string `json:"location,omitempty"`
	Cost            int64  `json:"cost"`
	DurationMinutes int64  `json:"duration_minutes"`
	Notes           string `json:"notes,omitempty"`
}

// GetExport handles GET /export: every timeline item of every plan as a flat
// table. Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	var format *string
	if err := queryParam(r, "format", &format); err != nil {
		requestError(w, err, err.Error())
		return
	}
	rows, err := s.export.Export(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeExport(w, rows, format)
}

// GetPlanExport handles GET /plans/{planId}/export.
func (s *Server) GetPlanExport(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "planId")
	if err != nil {
		requestError(w, err, err.Error())
		return
	}
	var format *string
	if err := queryParam(r, "format", &format); err != nil {
		requestError(w, err, err.Error())
		return
	}
	rows, err := s.export.ExportPlan(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeExport(w, rows, format)
}

func writeExport(w http.ResponseWriter, rows []domain.ExportRow, format *string) {
	if format != nil && *format == "csv" {
		writeExportCSV(w, rows)
		return
	}
	out := make([]ExportRowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ExportRowResponse(r))
	}
	writeJSON(w, http.StatusOK, out)
}

// writeExportCSV encodes rows as CSV, one line per timeline item.
func writeExportCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	_ = cw.Write(exportCSVHeaders) // bytes.Buffer writes never fail
	for _, r := range rows {
		_ = cw.Write([]string{
			r.PlanID,
			r.Destination,
			strconv.Itoa(r.DayIndex),
			r.Date,
			strconv.Itoa(r.Position),
			r.ItemID,
			r.Time,
			r.Activity,
			r.Location,
			strconv.FormatInt(r.Cost, 10),
			strconv.FormatInt(r.DurationMinutes, 10),
			r.Notes,
		})
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
