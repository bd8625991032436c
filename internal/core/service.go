package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/stockroom/internal/config"
	"github.com/JonMunkholm/stockroom/internal/logging"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DefaultImportTimeout bounds a batch when the config leaves it unset.
const DefaultImportTimeout = 2 * time.Minute

// Service is the entry point for stock operations used by the web layer
// and the CLI.
type Service struct {
	catalog Catalog
	runs    ImportRunStore
	engine  *Engine
	limiter *ImportLimiter

	importTimeout time.Duration
}

// NewService wires the engine and limiter around the given stores.
// Zero values in cfg fall back to package defaults.
func NewService(catalog Catalog, runs ImportRunStore, cfg *config.Config) *Service {
	if cfg == nil {
		cfg = config.Defaults()
	}
	timeout := cfg.Import.Timeout
	if timeout <= 0 {
		timeout = DefaultImportTimeout
	}
	return &Service{
		catalog: catalog,
		runs:    runs,
		engine: NewEngine(catalog,
			WithWorkers(cfg.Import.Workers),
			WithNegativeStockRejected(cfg.Import.RejectNegativeStock),
		),
		limiter:       NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime),
		importTimeout: timeout,
	}
}

// ImportBatch applies a pasted or uploaded stock sheet and records the run.
//
// Only ErrMissingInput and limiter errors are returned; everything that
// goes wrong on individual lines is reported in the summary.
func (s *Service) ImportBatch(ctx context.Context, raw string) (ImportSummary, error) {
	if strings.TrimSpace(raw) == "" {
		return ImportSummary{}, ErrMissingInput
	}
	raw, err := NormalizeInput([]byte(raw))
	if err != nil {
		return ImportSummary{}, err
	}

	var summary ImportSummary
	err = s.limiter.Do(ctx, func(ctx context.Context) error {
		runID := uuid.New()
		ctx, span := tracer.Start(ctx, "core.ImportBatch")
		defer span.End()
		span.SetAttributes(attribute.String("import.id", runID.String()))

		batchCtx, cancel := context.WithTimeout(ctx, s.importTimeout)
		defer cancel()

		var err error
		summary, err = s.engine.ImportBatch(batchCtx, raw)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		summary.RunID = runID.String()

		span.SetAttributes(
			attribute.Int("import.inserted", summary.Inserted),
			attribute.Int("import.updated", summary.Updated),
			attribute.Int("import.malformed", summary.Malformed),
			attribute.Int("import.failed", summary.Failed),
			attribute.Bool("import.interrupted", summary.Interrupted),
		)

		s.recordRun(ctx, runID, summary)
		return nil
	})
	if err != nil {
		return ImportSummary{}, err
	}
	return summary, nil
}

// recordRun persists the run outside the batch deadline so interrupted
// batches are still recorded.
func (s *Service) recordRun(ctx context.Context, runID uuid.UUID, summary ImportSummary) {
	logger := logging.WithFields(ctx, "import_id", runID.String())
	logger.Info("import finished",
		"inserted", summary.Inserted,
		"updated", summary.Updated,
		"malformed", summary.Malformed,
		"failed", summary.Failed,
		"interrupted", summary.Interrupted,
		"duration_ms", summary.Duration.Milliseconds(),
	)

	if s.runs == nil {
		return
	}
	run := ImportRun{
		ID:          runID,
		UserEmail:   logging.UserFromContext(ctx),
		IPAddress:   IPAddressFromContext(ctx),
		Inserted:    summary.Inserted,
		Updated:     summary.Updated,
		Malformed:   summary.Malformed,
		Failed:      summary.Failed,
		Interrupted: summary.Interrupted,
		Duration:    summary.Duration,
	}
	if err := s.runs.RecordImportRun(context.WithoutCancel(ctx), run); err != nil {
		logger.Error("failed to record import run", "error", err)
	}
}

// ReceiveProduct books one manual stock entry through the same
// insert-or-accumulate path as a batch line.
func (s *Service) ReceiveProduct(ctx context.Context, barcode, description, quantity string) (ImportRow, error) {
	row := parseFields(1, []string{barcode, description, quantity})
	if row.Status == RowMalformed {
		return row, fmt.Errorf("%w: %s", ErrInvalidProduct, row.Reason)
	}

	rows := []ImportRow{row}
	s.engine.Reconcile(ctx, rows)
	row = rows[0]

	logging.FromContext(ctx).Info("stock received",
		"barcode", row.Barcode,
		"status", row.Status,
		"quantity", row.NewQuantity,
	)
	if row.Status == RowFailed {
		return row, fmt.Errorf("receive %s: %s", row.Barcode, row.Reason)
	}
	return row, nil
}

// AddProduct creates a new product. It fails with ErrDuplicateBarcode when
// the barcode is already registered.
func (s *Service) AddProduct(ctx context.Context, barcode, description string, quantity int64) (Product, error) {
	barcode = strings.TrimSpace(barcode)
	description = strings.TrimSpace(description)
	if barcode == "" || description == "" {
		return Product{}, fmt.Errorf("%w: barcode and description are required", ErrInvalidProduct)
	}
	if quantity < 0 && s.engine.rejectNegative {
		return Product{}, ErrNegativeStock
	}

	id, err := s.catalog.Insert(ctx, barcode, description, quantity)
	if err != nil {
		return Product{}, err
	}
	logging.FromContext(ctx).Info("product added", "id", id, "barcode", barcode)
	return s.catalog.GetProduct(ctx, id)
}

// UpdateProduct overwrites description and quantity of an existing product.
func (s *Service) UpdateProduct(ctx context.Context, id ProductID, description string, quantity int64) (Product, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Product{}, fmt.Errorf("%w: description is required", ErrInvalidProduct)
	}
	if quantity < 0 && s.engine.rejectNegative {
		return Product{}, ErrNegativeStock
	}

	if err := s.catalog.UpdateProduct(ctx, id, description, quantity); err != nil {
		return Product{}, err
	}
	logging.FromContext(ctx).Info("product updated", "id", id, "quantity", quantity)
	return s.catalog.GetProduct(ctx, id)
}

// LookupBarcode returns the product registered under barcode.
func (s *Service) LookupBarcode(ctx context.Context, barcode string) (Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return Product{}, fmt.Errorf("%w: barcode is required", ErrInvalidProduct)
	}
	return s.catalog.FindByBarcode(ctx, barcode)
}

// ListProducts returns a page of products.
func (s *Service) ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	return s.catalog.ListProducts(ctx, filter)
}

// StockStats returns catalog totals for the dashboard.
func (s *Service) StockStats(ctx context.Context) (StockStats, error) {
	return s.catalog.StockStats(ctx)
}

// RecentImports returns the latest recorded import runs.
func (s *Service) RecentImports(ctx context.Context, limit int) ([]ImportRun, error) {
	if s.runs == nil {
		return nil, nil
	}
	return s.runs.ListImportRuns(ctx, limit)
}

// ImportLimiterStatus reports import slot usage.
func (s *Service) ImportLimiterStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until in-flight batches finish or ctx ends.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
