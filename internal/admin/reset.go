// Package admin provides administrative operations for database management.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	db "github.com/JonMunkholm/stockroom/internal/database"
	"github.com/jackc/pgx/v5"
)

// ResetTimeout is the maximum duration for database reset operations.
const ResetTimeout = 30 * time.Second

// TxBeginner starts the transaction a reset runs in. *pgxpool.Pool
// satisfies it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Reset clears stock data. Users are kept so the app stays usable.
type Reset struct {
	DB TxBeginner
}

type dbResetFn func(ctx context.Context) error

// ResetStock empties the import history and the product table in one
// transaction. Product ids restart from 1. This is a destructive operation.
func (r *Reset) ResetStock(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback(ctx)

	q := db.New(tx)
	if err := runResets(ctx, []dbResetFn{
		q.ResetImportRuns,
		q.ResetProducts,
	}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	slog.Warn("stock data reset")
	return nil
}

func runResets(ctx context.Context, resets []dbResetFn) error {
	for _, reset := range resets {
		if err := reset(ctx); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}
	return nil
}
