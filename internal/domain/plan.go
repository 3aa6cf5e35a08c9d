// Package domain contains the core data types for the Tabi-Navi itinerary
// service. It is imported by every other internal package (itinerary, repo,
// service, handler) and depends on nothing but uuid.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// TravelInput is the trip request a plan was generated from.
// It is written once when the plan is created and never edited afterwards.
type TravelInput struct {
	Origin          string   `json:"origin"`
	Destination     string   `json:"destination"`
	StartDate       string   `json:"start_date"` // "2006-01-02"
	EndDate         string   `json:"end_date"`   // "2006-01-02"
	Budget          int64    `json:"budget"`
	Travelers       int      `json:"travelers,omitempty"`
	Interests       []string `json:"interests,omitempty"`
	AdditionalNotes string   `json:"additional_notes,omitempty"`
}

// Plan is a full multi-day itinerary document.
// Days are ordered by DayIndex (1..N) and are never reordered.
// TotalCost and TotalDurationMinutes are cached aggregates that must always
// equal the sums over Days; only the itinerary engine changes them.
type Plan struct {
	ID                   uuid.UUID   `json:"id"`
	Input                TravelInput `json:"input"`
	Days                 []Day       `json:"days"`
	TotalCost            int64       `json:"total_cost"`
	TotalDurationMinutes int64       `json:"total_duration_minutes"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// Day is one travel day of a plan.
// Timeline is kept in stored order, which is the display order; it is not
// necessarily sorted by Time.
type Day struct {
	DayIndex             int            `json:"day_index"`
	Date                 string         `json:"date"` // "2006-01-02"
	Timeline             []TimelineItem `json:"timeline"`
	DailyCost            int64          `json:"daily_cost"`
	DailyDurationMinutes int64          `json:"daily_duration_minutes"`
}

// Per-item ceilings. They keep every daily and plan aggregate far inside
// int64, so the running sums never wrap. The validate tags on TimelineItem
// repeat these values.
const (
	MaxItemCost            = 100_000_000 // yen
	MaxItemDurationMinutes = 7 * 24 * 60
)

// TimelineItem is a single scheduled activity, meal, or transport leg.
// ID is a stable identity assigned when the item is created; positions shift
// on insert and delete, IDs do not.
type TimelineItem struct {
	ID              uuid.UUID `json:"id"`
	Time            string    `json:"time" validate:"hhmm"`
	Activity        string    `json:"activity" validate:"max=200"`
	Location        string    `json:"location,omitempty"`
	Cost            int64     `json:"cost" validate:"min=0,max=100000000"`
	DurationMinutes int64     `json:"duration_minutes" validate:"gt=0,max=10080"`
	Notes           string    `json:"notes,omitempty"`
}

// PlanSummary is the list view of a plan, without the day schedules.
type PlanSummary struct {
	ID                   uuid.UUID   `json:"id"`
	Input                TravelInput `json:"input"`
	DayCount             int         `json:"day_count"`
	TotalCost            int64       `json:"total_cost"`
	TotalDurationMinutes int64       `json:"total_duration_minutes"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// Clone returns a deep copy of the plan. Mutating the copy's days, timelines,
// or interests never affects the original.
func (p Plan) Clone() Plan {
	out := p
	if p.Input.Interests != nil {
		out.Input.Interests = append([]string(nil), p.Input.Interests...)
	}
	if p.Days != nil {
		out.Days = make([]Day, len(p.Days))
		for i, d := range p.Days {
			out.Days[i] = d
			if d.Timeline != nil {
				out.Days[i].Timeline = append([]TimelineItem(nil), d.Timeline...)
			}
		}
	}
	return out
}

// DayPosition returns the slice position of the day with the given 1-based
// DayIndex, or -1 when the plan has no such day.
func (p Plan) DayPosition(dayIndex int) int {
	for i := range p.Days {
		if p.Days[i].DayIndex == dayIndex {
			return i
		}
	}
	return -1
}

// Summary builds the list view of the plan.
func (p Plan) Summary() PlanSummary {
	return PlanSummary{
		ID:                   p.ID,
		Input:                p.Input,
		DayCount:             len(p.Days),
		TotalCost:            p.TotalCost,
		TotalDurationMinutes: p.TotalDurationMinutes,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}
