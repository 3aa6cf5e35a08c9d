package domain

// ExportRow is a single row of the flat itinerary export.
// It is a denormalized view: one row per timeline item, with the plan and day
// fields repeated on every row. Days with no items are skipped.
type ExportRow struct {
	// Plan fields, repeated for every item of the plan.
	PlanID      string
	Destination string

	// Day fields, repeated for every item of the day.
	DayIndex int
	Date     string // "2006-01-02"

	// Item fields. Position is the 0-based index within the day's timeline.
	Position        int
	ItemID          string
	Time            string
	Activity        string
	Location        string
	Cost            int64
	DurationMinutes int64
	Notes           string
}
