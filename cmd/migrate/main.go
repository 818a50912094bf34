// Command migrate applies or rolls back the Postgres schema used by the
// postgres store.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/staffnote/internal/adapters/repository/postgres"
)

const dsnEnv = "STAFFNOTE_POSTGRES_DSN"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var dsn string

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the staffnote Postgres schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if dsn == "" {
				dsn = os.Getenv(dsnEnv)
			}
			if dsn == "" {
				return fmt.Errorf("--dsn or %s is required", dsnEnv)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&dsn, "dsn", "", "Postgres connection URL (default $"+dsnEnv+")")

	for _, a := range []struct{ action, short string }{
		{postgres.ActionUp, "Apply all pending migrations"},
		{postgres.ActionDown, "Roll back all migrations"},
		{postgres.ActionDrop, "Drop everything in the database"},
		{postgres.ActionVersion, "Print the current schema version"},
	} {
		root.AddCommand(actionCmd(a.action, a.short, &dsn))
	}
	return root
}

func actionCmd(action, short string, dsn *string) *cobra.Command {
	return &cobra.Command{
		Use:   action,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := postgres.Migrate(action, *dsn)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !status.Applied {
				fmt.Fprintf(out, "migration %s completed: no migration applied\n", action)
				return nil
			}
			fmt.Fprintf(out, "migration %s completed: version=%d dirty=%t\n", action, status.Version, status.Dirty)
			return nil
		},
	}
}
