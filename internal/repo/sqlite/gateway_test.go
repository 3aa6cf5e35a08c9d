package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/domain"
	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/repo/sqlite"
	"github.com/OOP-2025-final-G02/Tabi-Navi/testutil"
)

// newTestGateway returns a gateway over a fresh, migrated in-memory database.
func newTestGateway(t *testing.T) *sqlite.Gateway {
	t.Helper()
	return sqlite.New(testutil.NewSQLite(t))
}

func planFixture() domain.Plan {
	now := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	return domain.Plan{
		ID:    uuid.New(),
		Input: domain.TravelInput{Origin: "Osaka", Destination: "Nara", StartDate: "2025-04-01", EndDate: "2025-04-01", Budget: 10000},
		Days: []domain.Day{{
			DayIndex: 1, Date: "2025-04-01",
			Timeline: []domain.TimelineItem{
				{ID: uuid.New(), Time: "10:00", Activity: "Todai-ji", Cost: 600, DurationMinutes: 90},
				{ID: uuid.New(), Time: "12:00", Activity: "Lunch", Cost: 1200, DurationMinutes: 60},
			},
			DailyCost: 1800, DailyDurationMinutes: 150,
		}},
		TotalCost:            1800,
		TotalDurationMinutes: 150,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

func entryFixture(planID uuid.UUID, seq int64) domain.HistoryEntry {
	before := domain.TimelineItem{ID: uuid.New(), Time: "12:00", Activity: "Lunch", Cost: 1200, DurationMinutes: 60}
	return domain.HistoryEntry{
		ID:        uuid.New(),
		Seq:       seq,
		PlanID:    planID,
		DayIndex:  1,
		ItemIndex: 1,
		ItemID:    before.ID,
		Operation: domain.OpDelete,
		Before:    &before,
		CreatedAt: time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestGateway_CreateAndLoad(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()
	p := planFixture()

	_, err := g.CreatePlan(ctx, p)
	require.NoError(t, err)

	got, err := g.LoadPlan(ctx, p.ID)

	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestGateway_CreatePlan_Duplicate(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()
	p := planFixture()
	_, err := g.CreatePlan(ctx, p)
	require.NoError(t, err)

	_, err = g.CreatePlan(ctx, p)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGateway_LoadPlan_NotFound(t *testing.T) {
	_, err := newTestGateway(t).LoadPlan(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGateway_SavePlan_Upsert(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()
	p := planFixture()

	_, err := g.SavePlan(ctx, p)
	require.NoError(t, err)

	changed := p.Clone()
	changed.Input.Destination = "Kobe"
	changed.Days[0].Timeline = changed.Days[0].Timeline[:1]
	changed.Days[0].DailyCost, changed.Days[0].DailyDurationMinutes = 600, 90
	changed.TotalCost, changed.TotalDurationMinutes = 600, 90

	got, err := g.SavePlan(ctx, changed)

	require.NoError(t, err)
	assert.Equal(t, "Nara", got.Input.Destination)
	assert.Equal(t, int64(600), got.TotalCost)
	assert.Len(t, got.Days[0].Timeline, 1)
}

func TestGateway_ListPlans(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()
	var last domain.Plan
	for i := 0; i < 3; i++ {
		p := planFixture()
		p.CreatedAt = p.CreatedAt.Add(time.Duration(i) * time.Minute)
		_, err := g.CreatePlan(ctx, p)
		require.NoError(t, err)
		last = p
	}
	limit := 2

	page, total, err := g.ListPlans(ctx, domain.NewPaginationParams(nil, &limit))

	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 2)
	assert.Equal(t, last.ID, page[0].ID, "newest first")
	assert.Equal(t, 1, page[0].DayCount)
	assert.Equal(t, "Nara", page[0].Input.Destination)
}

func TestGateway_History(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()
	p, err := g.CreatePlan(ctx, planFixture())
	require.NoError(t, err)

	for seq := int64(1); seq <= 3; seq++ {
		_, err := g.AppendHistory(ctx, entryFixture(p.ID, seq))
		require.NoError(t, err)
	}

	got, err := g.ListHistory(ctx, p.ID, domain.HistoryFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].Seq)
	assert.Equal(t, int64(2), got[1].Seq)
	require.NotNil(t, got[0].Before)
	assert.Nil(t, got[0].After)
	assert.Equal(t, "Lunch", got[0].Before.Activity)

	other := 2
	filtered, err := g.ListHistory(ctx, p.ID, domain.HistoryFilter{Limit: 10, DayIndex: &other})
	require.NoError(t, err)
	assert.Empty(t, filtered)

	n, err := g.CountHistory(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	removed, err := g.ClearHistory(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
}

func TestGateway_AppendHistory_UnknownPlan(t *testing.T) {
	_, err := newTestGateway(t).AppendHistory(context.Background(), entryFixture(uuid.New(), 1))

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGateway_CommitMutation(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()
	p, err := g.CreatePlan(ctx, planFixture())
	require.NoError(t, err)

	next := p.Clone()
	next.Days[0].Timeline = next.Days[0].Timeline[:1]
	next.Days[0].DailyCost, next.Days[0].DailyDurationMinutes = 600, 90
	next.TotalCost, next.TotalDurationMinutes = 600, 90

	saved, _, err := g.CommitMutation(ctx, next, entryFixture(p.ID, 1))

	require.NoError(t, err)
	assert.Equal(t, int64(600), saved.TotalCost)
	n, err := g.CountHistory(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestGateway_CommitMutation_Atomic(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()
	p, err := g.CreatePlan(ctx, planFixture())
	require.NoError(t, err)

	// The plan update fails after the history insert succeeded.
	_, _, err = g.CommitMutation(ctx, planFixture(), entryFixture(p.ID, 1))
	require.ErrorIs(t, err, domain.ErrNotFound)

	n, err := g.CountHistory(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGateway_DeletePlan_CascadesHistory(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()
	p, err := g.CreatePlan(ctx, planFixture())
	require.NoError(t, err)
	_, err = g.AppendHistory(ctx, entryFixture(p.ID, 1))
	require.NoError(t, err)

	require.NoError(t, g.DeletePlan(ctx, p.ID))

	n, err := g.CountHistory(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.ErrorIs(t, g.DeletePlan(ctx, p.ID), domain.ErrNotFound)
}

func TestGateway_Ping(t *testing.T) {
	assert.NoError(t, newTestGateway(t).Ping(context.Background()))
}
