package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/config"
)

// MigrateCmd returns the migrate command group.
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long: `Apply, roll back, or inspect schema migrations for the store named by
DATABASE_URL. Postgres and SQLite each have their own migration set.`,
	}
	cmd.AddCommand(migrateUpCmd())
	cmd.AddCommand(migrateDownCmd())
	cmd.AddCommand(migrateStatusCmd())
	return cmd
}

func migrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, closeDB, err := loadProvider()
			if err != nil {
				return err
			}
			defer closeDB()

			results, err := provider.Up(cmd.Context())
			if err != nil {
				return fmt.Errorf("migrate up: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "No pending migrations")
				return nil
			}
			for _, r := range results {
				fmt.Fprintf(out, "%s %s (%s)\n", color.New(color.FgGreen).Sprint("APPLIED "), r.Source.Path, r.Duration)
			}
			return nil
		},
	}
}

func migrateDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, closeDB, err := loadProvider()
			if err != nil {
				return err
			}
			defer closeDB()

			r, err := provider.Down(cmd.Context())
			if err != nil {
				return fmt.Errorf("migrate down: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", color.New(color.FgYellow).Sprint("REVERTED"), r.Source.Path, r.Duration)
			return nil
		},
	}
}

func migrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which migrations are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, closeDB, err := loadProvider()
			if err != nil {
				return err
			}
			defer closeDB()

			statuses, err := provider.Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("migrate status: %w", err)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tSTATE\tAPPLIED AT\tFILE")
			for _, s := range statuses {
				state := color.New(color.FgYellow).Sprint("pending")
				appliedAt := "-"
				if s.State == goose.StateApplied {
					state = color.New(color.FgGreen).Sprint("applied")
					appliedAt = s.AppliedAt.Local().Format("2006-01-02 15:04")
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.Source.Version, state, appliedAt, s.Source.Path)
			}
			return w.Flush()
		},
	}
}

// loadProvider opens the configured store for goose. The returned func
// closes the underlying handle.
func loadProvider() (*goose.Provider, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	driver, dsn, err := cfg.Store()
	if err != nil {
		return nil, nil, err
	}
	db, err := openSQLDB(driver, dsn)
	if err != nil {
		return nil, nil, err
	}
	provider, err := newProvider(db, driver)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return provider, func() { db.Close() }, nil
}
