package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/domain"
	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/repo"
	"github.com/OOP-2025-final-G02/Tabi-Navi/testutil"
)

// planFixture returns a consistent two-day plan with fresh IDs.
// Callers can override individual fields after calling this function.
func planFixture() domain.Plan {
	now := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	return domain.Plan{
		ID: uuid.New(),
		Input: domain.TravelInput{
			Origin:      "Tokyo",
			Destination: "Kyoto",
			StartDate:   "2025-04-01",
			EndDate:     "2025-04-02",
			Budget:      50000,
			Travelers:   2,
			Interests:   []string{"temples", "food"},
		},
		Days: []domain.Day{
			{
				DayIndex: 1, Date: "2025-04-01",
				Timeline: []domain.TimelineItem{
					{ID: uuid.New(), Time: "09:00", Activity: "Shinkansen", Location: "Tokyo Station", Cost: 14000, DurationMinutes: 135},
				},
				DailyCost: 14000, DailyDurationMinutes: 135,
			},
			{
				DayIndex: 2, Date: "2025-04-02",
				Timeline: []domain.TimelineItem{
					{ID: uuid.New(), Time: "08:00", Activity: "Fushimi Inari", Location: "Fushimi", Cost: 0, DurationMinutes: 120},
					{ID: uuid.New(), Time: "12:00", Activity: "Lunch", Location: "Nishiki Market", Cost: 2000, DurationMinutes: 60, Notes: "cash only"},
				},
				DailyCost: 2000, DailyDurationMinutes: 180,
			},
		},
		TotalCost:            16000,
		TotalDurationMinutes: 315,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

func TestPlanRepo_CreateAndGet(t *testing.T) {
	r := repo.NewPlanRepo(testutil.NewTx(t))
	ctx := context.Background()
	input := planFixture()

	created, err := r.Create(ctx, input)
	require.NoError(t, err)

	got, err := r.GetByID(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, input.ID, got.ID)
	assert.Equal(t, input.Input, got.Input)
	assert.Equal(t, input.Days, got.Days)
	assert.Equal(t, input.TotalCost, got.TotalCost)
	assert.True(t, got.CreatedAt.Equal(input.CreatedAt), "CreatedAt mismatch")
}

func TestPlanRepo_Create_DuplicateID(t *testing.T) {
	r := repo.NewPlanRepo(testutil.NewTx(t))
	ctx := context.Background()
	p := planFixture()

	_, err := r.Create(ctx, p)
	require.NoError(t, err)
	_, err = r.Create(ctx, p)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPlanRepo_GetByID_NotFound(t *testing.T) {
	r := repo.NewPlanRepo(testutil.NewTx(t))

	_, err := r.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPlanRepo_Upsert_KeepsInput(t *testing.T) {
	r := repo.NewPlanRepo(testutil.NewTx(t))
	ctx := context.Background()
	p := planFixture()
	_, err := r.Create(ctx, p)
	require.NoError(t, err)

	changed := p.Clone()
	changed.Input.Destination = "Osaka"
	changed.Days = changed.Days[:1]
	changed.TotalCost = 14000
	changed.TotalDurationMinutes = 135

	got, err := r.Upsert(ctx, changed)

	require.NoError(t, err)
	assert.Equal(t, "Kyoto", got.Input.Destination, "input is immutable on upsert")
	assert.Len(t, got.Days, 1)
	assert.Equal(t, int64(14000), got.TotalCost)
}

func TestPlanRepo_Update_NotFound(t *testing.T) {
	r := repo.NewPlanRepo(testutil.NewTx(t))

	_, err := r.Update(context.Background(), planFixture())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPlanRepo_ListPaged(t *testing.T) {
	r := repo.NewPlanRepo(testutil.NewTx(t))
	ctx := context.Background()

	before, err := r.Count(ctx)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		p := planFixture()
		p.CreatedAt = p.CreatedAt.Add(time.Duration(i) * time.Hour)
		_, err := r.Create(ctx, p)
		require.NoError(t, err)
	}

	page, total, err := r.ListPaged(ctx, domain.NewPaginationParams(nil, nil))

	require.NoError(t, err)
	assert.Equal(t, before+3, total)
	require.NotEmpty(t, page)
	assert.Equal(t, 2, page[0].DayCount)
	assert.Equal(t, "Kyoto", page[0].Input.Destination)
}

func TestPlanRepo_Delete(t *testing.T) {
	r := repo.NewPlanRepo(testutil.NewTx(t))
	ctx := context.Background()
	p, err := r.Create(ctx, planFixture())
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, p.ID))

	_, err = r.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, r.Delete(ctx, p.ID), domain.ErrNotFound)
}
