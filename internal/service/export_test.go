package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/domain"
	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/service"
)

func TestExportService_ExportPlan(t *testing.T) {
	p := storedPlan()

	rows, err := service.NewExportService(storedGateway(p)).ExportPlan(context.Background(), p.ID)

	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 1, rows[0].DayIndex)
	assert.Equal(t, 0, rows[0].Position)
	assert.Equal(t, 2, rows[2].DayIndex)
	assert.Equal(t, 1, rows[2].Position)
	assert.Equal(t, "Onsen", rows[2].Activity)
	assert.Equal(t, "Hakone", rows[2].Destination)
	assert.Equal(t, p.Days[1].Timeline[1].ID.String(), rows[2].ItemID)
}

func TestExportService_ExportPlan_NotFound(t *testing.T) {
	_, err := service.NewExportService(storedGateway(storedPlan())).ExportPlan(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExportService_Export_AllPlans(t *testing.T) {
	a, b := storedPlan(), storedPlan()
	plans := map[uuid.UUID]domain.Plan{a.ID: a, b.ID: b}
	g := &mockGateway{
		listPlans: func(_ context.Context, p domain.PaginationParams) ([]domain.PlanSummary, int64, error) {
			if p.Page > 1 {
				return []domain.PlanSummary{}, 2, nil
			}
			return []domain.PlanSummary{b.Summary(), a.Summary()}, 2, nil
		},
		loadPlan: func(_ context.Context, id uuid.UUID) (domain.Plan, error) {
			return plans[id], nil
		},
	}

	rows, err := service.NewExportService(g).Export(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, b.ID.String(), rows[0].PlanID)
	assert.Equal(t, a.ID.String(), rows[5].PlanID)
}

func TestExportService_Export_Empty(t *testing.T) {
	g := &mockGateway{
		listPlans: func(context.Context, domain.PaginationParams) ([]domain.PlanSummary, int64, error) {
			return []domain.PlanSummary{}, 0, nil
		},
	}

	rows, err := service.NewExportService(g).Export(context.Background())

	require.NoError(t, err)
	assert.Empty(t, rows)
}
