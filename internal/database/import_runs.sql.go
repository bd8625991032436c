// source: import_runs.sql

package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertImportRun = `-- name: InsertImportRun :exec
INSERT INTO import_runs (
    id, user_email, ip_address, inserted, updated, malformed, failed, interrupted, duration_ms
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

type InsertImportRunParams struct {
	ID          pgtype.UUID
	UserEmail   pgtype.Text
	IpAddress   pgtype.Text
	Inserted    int32
	Updated     int32
	Malformed   int32
	Failed      int32
	Interrupted bool
	DurationMs  int64
}

func (q *Queries) InsertImportRun(ctx context.Context, arg InsertImportRunParams) error {
	_, err := q.db.Exec(ctx, insertImportRun,
		arg.ID,
		arg.UserEmail,
		arg.IpAddress,
		arg.Inserted,
		arg.Updated,
		arg.Malformed,
		arg.Failed,
		arg.Interrupted,
		arg.DurationMs,
	)
	return err
}

const listImportRuns = `-- name: ListImportRuns :many
SELECT id, user_email, ip_address, inserted, updated, malformed, failed, interrupted, duration_ms, created_at
FROM import_runs
ORDER BY created_at DESC
LIMIT $1
`

func (q *Queries) ListImportRuns(ctx context.Context, limit int32) ([]ImportRun, error) {
	rows, err := q.db.Query(ctx, listImportRuns, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ImportRun
	for rows.Next() {
		var i ImportRun
		if err := rows.Scan(
			&i.ID,
			&i.UserEmail,
			&i.IpAddress,
			&i.Inserted,
			&i.Updated,
			&i.Malformed,
			&i.Failed,
			&i.Interrupted,
			&i.DurationMs,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
