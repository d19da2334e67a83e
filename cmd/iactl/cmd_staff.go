package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var facultyDepartment string

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password <username> <password>",
	Short: "Set a user's password and revoke their sessions",
	Args:  cobra.ExactArgs(2),
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, args []string) error {
		if err := e.deps.Services.Auth.ResetPassword(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s\n", args[0])
		return nil
	}),
}

var listFacultyCmd = &cobra.Command{
	Use:   "list-faculty",
	Short: "List faculty and HOD accounts",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, _ []string) error {
		staff, err := e.deps.Services.Directory.FacultyList(ctx, facultyDepartment)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tNAME\tROLE\tDEPARTMENT")
		for _, u := range staff {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.Username, u.FullName, u.Role, u.Department)
		}
		return w.Flush()
	}),
}

// tokenCleaner is the part of the token repository cleanup-tokens needs.
type tokenCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

var cleanupTokensCmd = &cobra.Command{
	Use:   "cleanup-tokens",
	Short: "Delete expired refresh tokens and long-revoked ones",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, _ []string) error {
		return cleanupTokens(ctx, e.deps.Repos.Tokens, cmd.OutOrStdout())
	}),
}

func cleanupTokens(ctx context.Context, tokens tokenCleaner, w io.Writer) error {
	n, err := tokens.CleanupExpired(ctx)
	if err != nil {
		return fmt.Errorf("cleanup tokens: %w", err)
	}
	fmt.Fprintf(w, "removed %d refresh tokens\n", n)
	return nil
}

func init() {
	listFacultyCmd.Flags().StringVarP(&facultyDepartment, "department", "d", "", "Only list staff of this department")
}
