package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/domain"
	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/repo"
)

// ExportService flattens plans into one row per timeline item.
type ExportService struct {
	store repo.Gateway
}

// NewExportService constructs an ExportService backed by the provided gateway.
func NewExportService(store repo.Gateway) *ExportService {
	return &ExportService{store: store}
}

// ExportPlan returns the rows of a single plan in day then timeline order.
func (s *ExportService) ExportPlan(ctx context.Context, id uuid.UUID) ([]domain.ExportRow, error) {
	plan, err := s.store.LoadPlan(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.ExportPlan: %w", err)
	}
	return flatten(plan), nil
}

// Export returns the rows of every stored plan, newest plan first.
func (s *ExportService) Export(ctx context.Context) ([]domain.ExportRow, error) {
	rows := []domain.ExportRow{}
	for p := (domain.PaginationParams{Page: 1, Limit: domain.MaxPageSize}); ; p.Page++ {
		summaries, total, err := s.store.ListPlans(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("service.ExportService.Export: %w", err)
		}
		for _, sum := range summaries {
			plan, err := s.store.LoadPlan(ctx, sum.ID)
			if err != nil {
				return nil, fmt.Errorf("service.ExportService.Export: plan %s: %w", sum.ID, err)
			}
			rows = append(rows, flatten(plan)...)
		}
		if len(summaries) == 0 || !p.HasMore(total) {
			return rows, nil
		}
	}
}

func flatten(plan domain.Plan) []domain.ExportRow {
	rows := []domain.ExportRow{}
	for _, day := range plan.Days {
		for pos, item := range day.Timeline {
			rows = append(rows, domain.ExportRow{
				PlanID:          plan.ID.String(),
				Destination:     plan.Input.Destination,
				DayIndex:        day.DayIndex,
				Date:            day.Date,
				Position:        pos,
				ItemID:          item.ID.String(),
				Time:            item.Time,
				Activity:        item.Activity,
				Location:        item.Location,
				Cost:            item.Cost,
				DurationMinutes: item.DurationMinutes,
				Notes:           item.Notes,
			})
		}
	}
	return rows
}
