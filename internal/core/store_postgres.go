package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	db "github.com/JonMunkholm/stockroom/internal/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// pgUniqueViolation is the SQLSTATE for unique constraint violations.
const pgUniqueViolation = "23505"

// PostgresStore implements Catalog and ImportRunStore on top of the
// generated queries. It is safe for concurrent use when backed by a pool.
type PostgresStore struct {
	q *db.Queries
}

// NewPostgresStore wraps a pool, connection or transaction.
func NewPostgresStore(conn db.DBTX) *PostgresStore {
	return &PostgresStore{q: db.New(conn)}
}

// startSpan opens a client span for one reconciliation query.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("db.system", "postgresql")),
	)
}

// endSpan records err on span unless it is an expected miss.
func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, ErrProductNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *PostgresStore) FindByBarcode(ctx context.Context, barcode string) (p Product, err error) {
	ctx, span := startSpan(ctx, "store.FindByBarcode")
	defer func() { endSpan(span, err) }()

	row, err := s.q.GetProductByBarcode(ctx, barcode)
	if err != nil {
		return Product{}, notFound(err)
	}
	return productFromRow(row), nil
}

func (s *PostgresStore) Insert(ctx context.Context, barcode, description string, quantity int64) (_ ProductID, err error) {
	ctx, span := startSpan(ctx, "store.Insert")
	defer func() { endSpan(span, err) }()

	id, err := s.q.InsertProduct(ctx, db.InsertProductParams{
		Barcode:     barcode,
		Description: description,
		Quantity:    quantity,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateBarcode, barcode)
		}
		return 0, fmt.Errorf("insert product: %w", err)
	}
	return ProductID(id), nil
}

func (s *PostgresStore) UpdateQuantity(ctx context.Context, id ProductID, newQuantity int64) (err error) {
	ctx, span := startSpan(ctx, "store.UpdateQuantity")
	defer func() { endSpan(span, err) }()

	n, err := s.q.UpdateProductQuantity(ctx, db.UpdateProductQuantityParams{
		ID:       int64(id),
		Quantity: newQuantity,
	})
	if err != nil {
		return fmt.Errorf("update quantity: %w", err)
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (s *PostgresStore) GetProduct(ctx context.Context, id ProductID) (Product, error) {
	row, err := s.q.GetProduct(ctx, int64(id))
	if err != nil {
		return Product{}, notFound(err)
	}
	return productFromRow(row), nil
}

func (s *PostgresStore) FindByBarcodes(ctx context.Context, barcodes []string) ([]Product, error) {
	if len(barcodes) == 0 {
		return nil, nil
	}
	rows, err := s.q.ListProductsByBarcodes(ctx, barcodes)
	if err != nil {
		return nil, fmt.Errorf("list products by barcode: %w", err)
	}
	return productsFromRows(rows), nil
}

func (s *PostgresStore) ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error) {
	limit := int32(math.MaxInt32)
	if filter.Limit > 0 {
		limit = clampInt32(filter.Limit)
	}
	rows, err := s.q.ListProducts(ctx, db.ListProductsParams{
		Search: filter.Search,
		Limit:  limit,
		Offset: clampInt32(filter.Offset),
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return productsFromRows(rows), nil
}

func (s *PostgresStore) AllProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.q.ListAllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all products: %w", err)
	}
	return productsFromRows(rows), nil
}

func (s *PostgresStore) UpdateProduct(ctx context.Context, id ProductID, description string, quantity int64) error {
	n, err := s.q.UpdateProduct(ctx, db.UpdateProductParams{
		ID:          int64(id),
		Description: description,
		Quantity:    quantity,
	})
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (s *PostgresStore) StockStats(ctx context.Context) (StockStats, error) {
	row, err := s.q.GetStockTotals(ctx)
	if err != nil {
		return StockStats{}, fmt.Errorf("stock totals: %w", err)
	}
	return StockStats{Products: row.Products, Units: row.Units}, nil
}

func (s *PostgresStore) RecordImportRun(ctx context.Context, run ImportRun) error {
	err := s.q.InsertImportRun(ctx, db.InsertImportRunParams{
		ID:          pgtype.UUID{Bytes: run.ID, Valid: true},
		UserEmail:   pgtype.Text{String: run.UserEmail, Valid: run.UserEmail != ""},
		IpAddress:   pgtype.Text{String: run.IPAddress, Valid: run.IPAddress != ""},
		Inserted:    int32(run.Inserted),
		Updated:     int32(run.Updated),
		Malformed:   int32(run.Malformed),
		Failed:      int32(run.Failed),
		Interrupted: run.Interrupted,
		DurationMs:  run.Duration.Milliseconds(),
	})
	if err != nil {
		return fmt.Errorf("record import run: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListImportRuns(ctx context.Context, limit int) ([]ImportRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.q.ListImportRuns(ctx, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("list import runs: %w", err)
	}
	runs := make([]ImportRun, len(rows))
	for i, r := range rows {
		runs[i] = importRunFromRow(r)
	}
	return runs, nil
}

// notFound maps pgx's no-rows error onto ErrProductNotFound.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrProductNotFound
	}
	return fmt.Errorf("query product: %w", err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func productFromRow(r db.Product) Product {
	return Product{
		ID:          ProductID(r.ID),
		Barcode:     r.Barcode,
		Description: r.Description,
		Quantity:    r.Quantity,
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
	}
}

func productsFromRows(rows []db.Product) []Product {
	out := make([]Product, len(rows))
	for i, r := range rows {
		out[i] = productFromRow(r)
	}
	return out
}

func importRunFromRow(r db.ImportRun) ImportRun {
	return ImportRun{
		ID:          r.ID.Bytes,
		UserEmail:   r.UserEmail.String,
		IPAddress:   r.IpAddress.String,
		Inserted:    int(r.Inserted),
		Updated:     int(r.Updated),
		Malformed:   int(r.Malformed),
		Failed:      int(r.Failed),
		Interrupted: r.Interrupted,
		Duration:    time.Duration(r.DurationMs) * time.Millisecond,
		CreatedAt:   r.CreatedAt.Time,
	}
}

// clampInt32 bounds n to [0, math.MaxInt32] for int4 query parameters.
func clampInt32(n int) int32 {
	switch {
	case n < 0:
		return 0
	case n > math.MaxInt32:
		return math.MaxInt32
	}
	return int32(n)
}
