package itinerary_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/domain"
	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/itinerary"
)

func TestValidateItem_Valid(t *testing.T) {
	v := itinerary.NewValidator()

	res := v.ValidateItem(item("00:00", "Night bus", 0, 1))

	assert.True(t, res.Valid())
	assert.NoError(t, res.Err())
}

func TestValidateItem_Rules(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(*domain.TimelineItem)
		wantField string
		wantRule  string
	}{
		{"hour out of range", func(it *domain.TimelineItem) { it.Time = "24:00" }, "time", "hhmm"},
		{"minute out of range", func(it *domain.TimelineItem) { it.Time = "09:60" }, "time", "hhmm"},
		{"single digit hour", func(it *domain.TimelineItem) { it.Time = "9:00" }, "time", "hhmm"},
		{"empty time", func(it *domain.TimelineItem) { it.Time = "" }, "time", "hhmm"},
		{"negative cost", func(it *domain.TimelineItem) { it.Cost = -1 }, "cost", "min"},
		{"zero duration", func(it *domain.TimelineItem) { it.DurationMinutes = 0 }, "duration_minutes", "gt"},
		{"cost above ceiling", func(it *domain.TimelineItem) { it.Cost = domain.MaxItemCost + 1 }, "cost", "max"},
		{"duration above ceiling", func(it *domain.TimelineItem) { it.DurationMinutes = domain.MaxItemDurationMinutes + 1 }, "duration_minutes", "max"},
		{"long activity", func(it *domain.TimelineItem) { it.Activity = strings.Repeat("a", 201) }, "activity", "max"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			it := item("09:00", "Temple", 600, 60)
			tc.mutate(&it)

			res := itinerary.NewValidator().ValidateItem(it)

			require.False(t, res.Valid())
			require.Len(t, res.Violations, 1)
			assert.Equal(t, tc.wantField, res.Violations[0].Field)
			assert.Equal(t, tc.wantRule, res.Violations[0].Rule)

			var verr *domain.ValidationError
			require.ErrorAs(t, res.Err(), &verr)
			assert.Equal(t, tc.wantField, verr.Field)
			assert.ErrorIs(t, res.Err(), domain.ErrValidation)
		})
	}
}

func TestValidateItem_AtCeilings(t *testing.T) {
	it := item("09:00", "Charter", domain.MaxItemCost, domain.MaxItemDurationMinutes)

	assert.True(t, itinerary.NewValidator().ValidateItem(it).Valid())
}

func TestValidateItem_ActivityLengthCountsCharacters(t *testing.T) {
	// 200 multi-byte characters is within the limit even though it is 600 bytes.
	it := item("09:00", strings.Repeat("寺", 200), 600, 60)

	assert.True(t, itinerary.NewValidator().ValidateItem(it).Valid())
}

func TestValidateItem_MultipleViolationsInFieldOrder(t *testing.T) {
	it := domain.TimelineItem{Time: "noon", Cost: -5, DurationMinutes: -1}

	res := itinerary.NewValidator().ValidateItem(it)

	require.Len(t, res.Violations, 3)
	assert.Equal(t, "time", res.Violations[0].Field)
	assert.Equal(t, "cost", res.Violations[1].Field)
	assert.Equal(t, "duration_minutes", res.Violations[2].Field)
}

func TestValidateItem_Idempotent(t *testing.T) {
	v := itinerary.NewValidator()
	it := domain.TimelineItem{Time: "7:5", Activity: "x", Cost: -10, DurationMinutes: 0}

	first := v.ValidateItem(it)
	second := v.ValidateItem(it)

	assert.Equal(t, first, second)
}

func TestValidateDelete(t *testing.T) {
	v := itinerary.NewValidator()

	one := domain.Day{DayIndex: 1, Timeline: []domain.TimelineItem{item("09:00", "a", 1, 1)}}
	two := domain.Day{DayIndex: 2, Timeline: []domain.TimelineItem{item("09:00", "a", 1, 1), item("10:00", "b", 1, 1)}}

	assert.ErrorIs(t, v.ValidateDelete(one), domain.ErrInvariant)
	assert.NoError(t, v.ValidateDelete(two))
}
