// Package itinerary is the mutation and audit core of the service.
// It applies one edit operation at a time to a plan, keeps the cached cost
// and duration aggregates consistent, and emits one history entry per
// successful edit. Everything here is synchronous and works on copies:
// a failed operation never changes the plan it was given.
package itinerary

import "github.com/OOP-2025-final-G02/Tabi-Navi/internal/domain"

// RecomputeDay returns the full resum of a day's cost and duration.
func RecomputeDay(day domain.Day) (cost, durationMinutes int64) {
	for _, item := range day.Timeline {
		cost += item.Cost
		durationMinutes += item.DurationMinutes
	}
	return cost, durationMinutes
}

// RecomputeTotals returns the full resum of a plan's cost and duration,
// computed from items rather than from the cached daily aggregates.
func RecomputeTotals(plan domain.Plan) (cost, durationMinutes int64) {
	for _, day := range plan.Days {
		c, d := RecomputeDay(day)
		cost += c
		durationMinutes += d
	}
	return cost, durationMinutes
}

// Normalize returns a copy of plan with every cached aggregate rewritten from
// a full resum. Used on documents that arrive from outside the engine
// (generator output, client uploads) whose aggregates cannot be trusted.
func Normalize(plan domain.Plan) domain.Plan {
	out := plan.Clone()
	for i := range out.Days {
		out.Days[i].DailyCost, out.Days[i].DailyDurationMinutes = RecomputeDay(out.Days[i])
	}
	out.TotalCost, out.TotalDurationMinutes = RecomputeTotals(out)
	return out
}

// Consistent reports whether every cached aggregate of plan matches its resum.
func Consistent(plan domain.Plan) bool {
	for _, day := range plan.Days {
		c, d := RecomputeDay(day)
		if c != day.DailyCost || d != day.DailyDurationMinutes {
			return false
		}
	}
	c, d := RecomputeTotals(plan)
	return c == plan.TotalCost && d == plan.TotalDurationMinutes
}

// applyDelta shifts the aggregates of the day at position di and of the plan
// by the given cost and duration differences.
func applyDelta(plan *domain.Plan, di int, costDiff, durationDiff int64) {
	plan.Days[di].DailyCost += costDiff
	plan.Days[di].DailyDurationMinutes += durationDiff
	plan.TotalCost += costDiff
	plan.TotalDurationMinutes += durationDiff
}
