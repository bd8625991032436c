// Command stockctl runs stock administration tasks against the database:
// creating users, applying the schema, importing or exporting stock and
// resetting it, without going through the web server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/stockroom/internal/config"
	"github.com/JonMunkholm/stockroom/internal/logging"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// app carries what every subcommand needs once the root has run.
type app struct {
	cfg  *config.Config
	pool *pgxpool.Pool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "stockctl",
		Short:         "Stock administration tool",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.pool != nil {
				a.pool.Close()
			}
		},
	}

	root.AddCommand(
		newMigrateCmd(a),
		newAddUserCmd(a),
		newImportCmd(a),
		newExportCmd(a),
		newResetCmd(a),
	)
	return root
}

// open loads the environment and connects to the database.
func (a *app) open(ctx context.Context) error {
	_ = godotenv.Overload()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	slog.Debug("connected to database")
	a.cfg, a.pool = cfg, pool
	return nil
}
