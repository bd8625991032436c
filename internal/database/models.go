package database

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Product struct {
	ID          int64
	Barcode     string
	Description string
	Quantity    int64
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}

type User struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    pgtype.Timestamptz
}

type ImportRun struct {
	ID          pgtype.UUID
	UserEmail   pgtype.Text
	IpAddress   pgtype.Text
	Inserted    int32
	Updated     int32
	Malformed   int32
	Failed      int32
	Interrupted bool
	DurationMs  int64
	CreatedAt   pgtype.Timestamptz
}
