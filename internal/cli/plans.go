package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/config"
	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/domain"
	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/service"
)

// PlansCmd returns the plans command group.
func PlansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Inspect stored plans",
	}
	cmd.AddCommand(plansListCmd())
	return cmd
}

func plansListCmd() *cobra.Command {
	var page, limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List plans, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, closeStore, err := loadPlanService(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			p := domain.NewPaginationParams(&page, &limit)
			plans, total, err := svc.List(ctx, p)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(plans) == 0 {
				fmt.Fprintln(out, "No plans found")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDESTINATION\tDATES\tDAYS\tCOST\tMINUTES\tUPDATED")
			for _, s := range plans {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
					s.ID, s.Input.Destination, dateRange(s.Input), s.DayCount,
					s.TotalCost, s.TotalDurationMinutes, s.UpdatedAt.Local().Format("2006-01-02 15:04"))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\npage %d of %d, %d of %d plans\n", p.Page, p.TotalPages(total), len(plans), total)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 20, "Plans per page (max 100)")

	return cmd
}

func dateRange(in domain.TravelInput) string {
	switch {
	case in.StartDate == "":
		return "-"
	case in.EndDate == "" || in.EndDate == in.StartDate:
		return in.StartDate
	}
	return in.StartDate + ".." + in.EndDate
}

// loadPlanService opens the configured store and wraps it in a PlanService.
// Logs go to stderr so they never mix with command output. The returned func
// closes the store.
func loadPlanService(cmd *cobra.Command) (*service.PlanService, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	store, err := openGateway(cmd.Context(), cfg, false)
	if err != nil {
		return nil, nil, err
	}
	svc, err := newPlanService(cfg, store, newLogger(cmd.ErrOrStderr(), cfg.LogLevel))
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return svc, func() { store.Close() }, nil
}
