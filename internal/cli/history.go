package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/domain"
)

// HistoryCmd returns the history command, which prints a plan's edit
// history, most recent first.
func HistoryCmd() *cobra.Command {
	var (
		limit int
		day   int
	)

	cmd := &cobra.Command{
		Use:   "history <plan-id>",
		Short: "Show the edit history of a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid plan id %q: %w", args[0], err)
			}
			svc, closeStore, err := loadPlanService(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			f := domain.HistoryFilter{Limit: limit}
			if cmd.Flags().Changed("day") {
				f.DayIndex = &day
			}
			entries, err := svc.History(cmd.Context(), planID, f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No history recorded")
				return nil
			}
			for _, e := range entries {
				printEntry(out, e)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of entries (default from HISTORY_LIMIT)")
	cmd.Flags().IntVarP(&day, "day", "d", 0, "Only show edits to this day")

	return cmd
}

func printEntry(w io.Writer, e domain.HistoryEntry) {
	fmt.Fprintf(w, "%s  %s  %s  day %d, item %d\n",
		color.New(color.Faint).Sprintf("#%d", e.Seq),
		e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		operationLabel(e.Operation),
		e.DayIndex, e.ItemIndex)

	switch e.Operation {
	case domain.OpUpdate:
		fmt.Fprintf(w, "    %s: %s -> %s\n", e.Field,
			color.New(color.FgRed).Sprint(fieldValue(e.Before, e.Field)),
			color.New(color.FgGreen).Sprint(fieldValue(e.After, e.Field)))
	case domain.OpInsert:
		fmt.Fprintf(w, "    + %s\n", color.New(color.FgGreen).Sprint(itemLine(e.After)))
	case domain.OpDelete:
		fmt.Fprintf(w, "    - %s\n", color.New(color.FgRed).Sprint(itemLine(e.Before)))
	}
}

func operationLabel(op domain.OperationType) string {
	switch op {
	case domain.OpInsert:
		return color.New(color.FgGreen, color.Bold).Sprint("INSERT")
	case domain.OpDelete:
		return color.New(color.FgRed, color.Bold).Sprint("DELETE")
	default:
		return color.New(color.FgYellow, color.Bold).Sprint("UPDATE")
	}
}

func itemLine(it *domain.TimelineItem) string {
	if it == nil {
		return "(none)"
	}
	return fmt.Sprintf("%s %s (%d yen, %d min)", it.Time, it.Activity, it.Cost, it.DurationMinutes)
}

// fieldValue renders one field of a snapshot.
func fieldValue(it *domain.TimelineItem, field string) string {
	if it == nil {
		return "(none)"
	}
	switch domain.ItemField(field) {
	case domain.FieldTime:
		return it.Time
	case domain.FieldActivity:
		return strconv.Quote(it.Activity)
	case domain.FieldLocation:
		return strconv.Quote(it.Location)
	case domain.FieldCost:
		return strconv.FormatInt(it.Cost, 10)
	case domain.FieldDuration:
		return strconv.FormatInt(it.DurationMinutes, 10)
	case domain.FieldNotes:
		return strconv.Quote(it.Notes)
	}
	return "?"
}
