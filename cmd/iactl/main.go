// Command iactl runs maintenance tasks against the IA tracker database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/yigit/iatracker/internal/app/repositories"
	"github.com/yigit/iatracker/internal/bootstrap"
	"github.com/yigit/iatracker/internal/config"
	"github.com/yigit/iatracker/internal/db"
)

var (
	configPath string
	timeout    time.Duration
)

// env is the connected state shared by subcommands.
type env struct {
	cfg      *config.Config
	log      zerolog.Logger
	database *db.PostgresDB
	deps     *bootstrap.Dependencies
}

var rootCmd = &cobra.Command{
	Use:           "iactl",
	Short:         "IA tracker maintenance tool",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", bootstrap.DefaultConfigPath, "Path to the YAML config file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")

	rootCmd.AddCommand(migrateCmd, seedCmd)
	rootCmd.AddCommand(resetPasswordCmd, listFacultyCmd, cleanupTokensCmd)
	rootCmd.AddCommand(dumpSubjectsCmd, reassignInstructorCmd, showStudentCmd)
}

// connect loads configuration and opens the database for one command run.
func connect(ctx context.Context) (*env, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return nil, err
	}
	database, err := db.NewPostgresDB(ctx, cfg, lgr)
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:      cfg,
		log:      lgr,
		database: database,
		deps:     bootstrap.BuildDependencies(cfg, repositories.NewRepositories(database.Pool), lgr),
	}, nil
}

// withEnv adapts a command body that needs a database connection into a cobra RunE.
func withEnv(run func(ctx context.Context, e *env, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		e, err := connect(ctx)
		if err != nil {
			return err
		}
		defer e.database.Close()
		return run(ctx, e, cmd, args)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
