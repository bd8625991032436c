package core

// reconcile.go applies parsed import rows to a Store.
//
// Every pending row is looked up by barcode. A hit accumulates the row's
// delta onto the stored quantity (keyed by product id), a miss inserts a
// new product. Rows sharing a barcode form a group and are applied one
// after another in input order, because the second row's base quantity
// depends on the first row's write. Distinct groups run in parallel on a
// bounded errgroup and the call returns only after every group finished.

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/JonMunkholm/stockroom/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the default number of barcode groups applied at once.
const DefaultWorkers = 8

// ReasonCancelled marks rows that were never attempted because the batch
// context ended first.
const ReasonCancelled = "import cancelled"

var tracer = otel.Tracer("github.com/JonMunkholm/stockroom/internal/core")

// Engine reconciles import rows against an injected Store.
type Engine struct {
	store          Store
	workers        int
	rejectNegative bool
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithWorkers bounds how many barcode groups are applied concurrently.
// One worker makes the engine fully sequential.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithNegativeStockRejected fails rows that would leave a product with a
// quantity below zero instead of applying them.
func WithNegativeStockRejected(reject bool) EngineOption {
	return func(e *Engine) {
		e.rejectNegative = reject
	}
}

// NewEngine creates an engine writing to store.
func NewEngine(store Store, opts ...EngineOption) *Engine {
	e := &Engine{
		store:   store,
		workers: DefaultWorkers,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithStore returns a copy of e that writes to store instead.
func (e *Engine) WithStore(store Store) *Engine {
	clone := *e
	clone.store = store
	return &clone
}

// ImportBatch parses raw and applies every valid row.
//
// The only error is ErrMissingInput. Row-level problems, including store
// failures and cancellation, are reported in the returned summary.
func (e *Engine) ImportBatch(ctx context.Context, raw string) (ImportSummary, error) {
	start := time.Now()

	rows, err := ParseBatch(raw)
	if err != nil {
		return ImportSummary{}, err
	}

	e.Reconcile(ctx, rows)

	summary := Summarize(rows)
	summary.Interrupted = ctx.Err() != nil
	summary.Duration = time.Since(start)
	return summary, nil
}

// Reconcile applies all pending rows in place and waits for them to finish.
// Rows in any other status are left untouched.
func (e *Engine) Reconcile(ctx context.Context, rows []ImportRow) {
	ctx, span := tracer.Start(ctx, "core.Reconcile", trace.WithAttributes(
		attribute.Int("import.rows", len(rows)),
		attribute.Int("import.workers", e.workers),
	))
	defer span.End()

	groups := groupByBarcode(rows)
	span.SetAttributes(attribute.Int("import.barcodes", len(groups)))

	// Plain Group: a failed row must never cancel its siblings.
	var g errgroup.Group
	g.SetLimit(e.workers)
	for _, group := range groups {
		group := group
		g.Go(func() error {
			for _, i := range group {
				if ctx.Err() != nil {
					rows[i].Status = RowFailed
					rows[i].Reason = ReasonCancelled
					continue
				}
				e.apply(ctx, &rows[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, "import cancelled")
		span.RecordError(err)
	}
}

// groupByBarcode returns indexes of pending rows grouped by barcode, in
// order of first appearance. Indexes inside a group keep input order.
func groupByBarcode(rows []ImportRow) [][]int {
	pos := make(map[string]int)
	var groups [][]int
	for i, row := range rows {
		if row.Status != RowPending {
			continue
		}
		g, ok := pos[row.Barcode]
		if !ok {
			g = len(groups)
			pos[row.Barcode] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return groups
}

// apply runs the lookup and write for one row.
func (e *Engine) apply(ctx context.Context, row *ImportRow) {
	existing, err := e.store.FindByBarcode(ctx, row.Barcode)
	switch {
	case err == nil:
		row.Status = RowMatched
		e.accumulate(ctx, row, existing)

	case errors.Is(err, ErrProductNotFound):
		row.Status = RowNew
		e.insert(ctx, row)

	default:
		e.fail(ctx, row, "lookup", err)
	}
}

// accumulate adds the row delta to an existing product. The description
// on file is kept as is.
func (e *Engine) accumulate(ctx context.Context, row *ImportRow, existing Product) {
	newQty, ok := addQuantity(existing.Quantity, row.QuantityDelta)
	if !ok {
		e.fail(ctx, row, "update", fmt.Errorf("%w (stock %d, change %d)", ErrQuantityOutOfRange, existing.Quantity, row.QuantityDelta))
		return
	}
	if e.rejectNegative && newQty < 0 {
		e.fail(ctx, row, "update", fmt.Errorf("%w (stock %d, change %d)", ErrNegativeStock, existing.Quantity, row.QuantityDelta))
		return
	}

	if err := e.store.UpdateQuantity(ctx, existing.ID, newQty); err != nil {
		e.fail(ctx, row, "update", err)
		return
	}

	row.Status = RowUpdated
	row.ProductID = existing.ID
	row.NewQuantity = newQty
}

// insert creates a product for an unseen barcode. When a concurrent batch
// created the same barcode after our lookup, the row falls back to the
// update path once.
func (e *Engine) insert(ctx context.Context, row *ImportRow) {
	if e.rejectNegative && row.QuantityDelta < 0 {
		e.fail(ctx, row, "insert", fmt.Errorf("%w (change %d)", ErrNegativeStock, row.QuantityDelta))
		return
	}

	id, err := e.store.Insert(ctx, row.Barcode, row.Description, row.QuantityDelta)
	if errors.Is(err, ErrDuplicateBarcode) {
		existing, lookupErr := e.store.FindByBarcode(ctx, row.Barcode)
		if lookupErr != nil {
			e.fail(ctx, row, "lookup", lookupErr)
			return
		}
		row.Status = RowMatched
		e.accumulate(ctx, row, existing)
		return
	}
	if err != nil {
		e.fail(ctx, row, "insert", err)
		return
	}

	row.Status = RowInserted
	row.ProductID = id
	row.NewQuantity = row.QuantityDelta
}

// fail marks the row failed and logs the cause. Store errors are not retried.
func (e *Engine) fail(ctx context.Context, row *ImportRow, op string, err error) {
	row.Status = RowFailed
	row.Reason = fmt.Sprintf("%s failed: %v", op, err)

	logging.FromContext(ctx).Warn("import row failed",
		"line", row.LineNumber,
		"barcode", row.Barcode,
		"op", op,
		"error", err,
	)
}

// Summarize aggregates row outcomes. Errors follow input order.
func Summarize(rows []ImportRow) ImportSummary {
	summary := ImportSummary{
		Errors: []LineError{},
		Rows:   rows,
	}
	for _, row := range rows {
		switch row.Status {
		case RowInserted:
			summary.Inserted++
		case RowUpdated:
			summary.Updated++
		case RowMalformed:
			summary.Malformed++
			summary.Errors = append(summary.Errors, LineError{Line: row.LineNumber, Barcode: row.Barcode, Reason: row.Reason})
		default:
			// Any row left mid-flight is reported as failed.
			summary.Failed++
			reason := row.Reason
			if reason == "" {
				reason = "not applied"
			}
			summary.Errors = append(summary.Errors, LineError{Line: row.LineNumber, Barcode: row.Barcode, Reason: reason})
		}
	}
	return summary
}

// addQuantity returns qty+delta, or false when the sum overflows int64.
func addQuantity(qty, delta int64) (int64, bool) {
	if (delta > 0 && qty > math.MaxInt64-delta) || (delta < 0 && qty < math.MinInt64-delta) {
		return 0, false
	}
	return qty + delta, true
}
