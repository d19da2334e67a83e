package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yigit/iatracker/internal/bootstrap"
	"github.com/yigit/iatracker/internal/seed"
)

var seedPassword string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, _ []string) error {
		n, err := bootstrap.Migrate(ctx, e.database, e.log)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", n)
		return nil
	}),
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the default principal, HOD, faculty, subjects and students",
	Long: `Create the default accounts and CS semester 5 data of a fresh installation.

Existing users, subjects and students are left untouched, so the command can be
run repeatedly.`,
	Args: cobra.NoArgs,
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, _ []string) error {
		res, err := seed.Run(ctx, e.deps.Repos, seedPassword, e.log)
		fmt.Fprintf(cmd.OutOrStdout(), "created %d user(s), %d subject(s), %d student(s)\n", res.Users, res.Subjects, res.Students)
		return err
	}),
}

func init() {
	seedCmd.Flags().StringVar(&seedPassword, "password", seed.DefaultPassword, "Password for every created account")
}
