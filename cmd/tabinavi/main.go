// Package main is the entry point for the tabinavi binary.
// Its sole responsibility is assembling the command tree; wiring lives in
// internal/cli.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tabinavi",
		Short: "Tabi-Navi travel plan service",
		Long: `tabinavi stores travel plans and applies audited edits to their
day timelines. Every edit is recorded in the plan's history.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.MigrateCmd())
	rootCmd.AddCommand(cli.PlansCmd())
	rootCmd.AddCommand(cli.HistoryCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
