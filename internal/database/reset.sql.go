// source: reset.sql

package database

import (
	"context"
)

const resetImportRuns = `-- name: ResetImportRuns :exec
TRUNCATE import_runs
`

func (q *Queries) ResetImportRuns(ctx context.Context) error {
	_, err := q.db.Exec(ctx, resetImportRuns)
	return err
}

const resetProducts = `-- name: ResetProducts :exec
TRUNCATE products RESTART IDENTITY
`

func (q *Queries) ResetProducts(ctx context.Context) error {
	_, err := q.db.Exec(ctx, resetProducts)
	return err
}
