package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/domain"
)

// historyCSVHeaders are the column names of the CSV history listing.
var historyCSVHeaders = []string{
	"seq", "created_at", "operation_type", "day_index", "item_index", "item_id",
	"field_changed", "before_cost", "after_cost", "before_duration_minutes",
	"after_duration_minutes", "before_activity", "after_activity",
}

// ListHistory handles GET /plans/{planId}/history?limit=&day=&format=.
// Entries are most recent first. Use ?format=csv to receive CSV.
func (s *Server) ListHistory(w http.ResponseWriter, r *http.Request) {
	planID, err := pathUUID(r, "planId")
	if err != nil {
		requestError(w, err, err.Error())
		return
	}
	var (
		limit, day *int
		format     *string
	)
	for name, dest := range map[string]any{"limit": &limit, "day": &day, "format": &format} {
		if err := queryParam(r, name, dest); err != nil {
			requestError(w, err, err.Error())
			return
		}
	}
	f := domain.HistoryFilter{DayIndex: day}
	if limit != nil {
		f.Limit = *limit
	}

	entries, err := s.plans.History(r.Context(), planID, f)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if format != nil && *format == "csv" {
		writeHistoryCSV(w, entries)
		return
	}

	total, err := s.plans.HistoryCount(r.Context(), planID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := HistoryListResponse{Items: make([]HistoryEntryResponse, 0, len(entries)), Total: total}
	for _, e := range entries {
		out.Items = append(out.Items, toHistoryResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

// ClearHistory handles DELETE /plans/{planId}/history.
func (s *Server) ClearHistory(w http.ResponseWriter, r *http.Request) {
	planID, err := pathUUID(r, "planId")
	if err != nil {
		requestError(w, err, err.Error())
		return
	}
	n, err := s.plans.ClearHistory(r.Context(), planID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"removed": n})
}

func writeHistoryCSV(w http.ResponseWriter, entries []domain.HistoryEntry) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	_ = cw.Write(historyCSVHeaders) // bytes.Buffer writes never fail
	for _, e := range entries {
		itemID := ""
		if e.ItemID != uuid.Nil {
			itemID = e.ItemID.String()
		}
		_ = cw.Write([]string{
			strconv.FormatInt(e.Seq, 10),
			e.CreatedAt.UTC().Format(time.RFC3339),
			string(e.Operation),
			strconv.Itoa(e.DayIndex),
			strconv.Itoa(e.ItemIndex),
			itemID,
			e.Field,
			snapshotInt(e.Before, func(it *domain.TimelineItem) int64 { return it.Cost }),
			snapshotInt(e.After, func(it *domain.TimelineItem) int64 { return it.Cost }),
			snapshotInt(e.Before, func(it *domain.TimelineItem) int64 { return it.DurationMinutes }),
			snapshotInt(e.After, func(it *domain.TimelineItem) int64 { return it.DurationMinutes }),
			snapshotActivity(e.Before),
			snapshotActivity(e.After),
		})
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// snapshotInt reads a numeric field of a possibly-nil snapshot; nil gives "".
func snapshotInt(it *domain.TimelineItem, get func(*domain.TimelineItem) int64) string {
	if it == nil {
		return ""
	}
	return strconv.FormatInt(get(it), 10)
}

func snapshotActivity(it *domain.TimelineItem) string {
	if it == nil {
		return ""
	}
	return it.Activity
}
