package core

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrMissingInput is returned when a batch carries no text at all.
	ErrMissingInput = errors.New("missing input: no import data provided")

	// ErrProductNotFound is returned by stores when no product matches.
	ErrProductNotFound = errors.New("product not found")

	// ErrDuplicateBarcode is returned when an insert collides with an existing barcode.
	ErrDuplicateBarcode = errors.New("duplicate barcode: a product with this barcode already exists")

	// ErrNegativeStock is returned when a change would leave a product below zero
	// and negative stock is rejected.
	ErrNegativeStock = errors.New("negative stock: quantity would drop below zero")

	// ErrQuantityOutOfRange is returned when a change would overflow the stored quantity.
	ErrQuantityOutOfRange = errors.New("quantity out of range")

	// ErrInvalidProduct wraps validation failures on manual product input.
	ErrInvalidProduct = errors.New("invalid product")
)

// ProductID is the store-assigned surrogate key of a product.
type ProductID int64

// Product is one stock-keeping unit. Barcode is unique within a store.
type Product struct {
	ID          ProductID `json:"id"`
	Barcode     string    `json:"barcode"`
	Description string    `json:"description"`
	Quantity    int64     `json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RowStatus is the position of an ImportRow in its lifecycle.
//
//	pending -> matched -> updated
//	pending -> new     -> inserted
//	pending -> failed
//	malformed (set by the parser, never reconciled)
type RowStatus string

const (
	RowPending   RowStatus = "pending"
	RowMatched   RowStatus = "matched"
	RowNew       RowStatus = "new"
	RowUpdated   RowStatus = "updated"
	RowInserted  RowStatus = "inserted"
	RowMalformed RowStatus = "malformed"
	RowFailed    RowStatus = "failed"
)

// Terminal reports whether no further transition is possible.
func (s RowStatus) Terminal() bool {
	switch s {
	case RowUpdated, RowInserted, RowMalformed, RowFailed:
		return true
	}
	return false
}

// ImportRow is one non-blank input line of a batch.
type ImportRow struct {
	LineNumber    int       `json:"line"`
	Barcode       string    `json:"barcode"`
	Description   string    `json:"description"`
	QuantityDelta int64     `json:"quantity_delta"`
	Status        RowStatus `json:"status"`
	Reason        string    `json:"reason,omitempty"`
	ProductID     ProductID `json:"product_id,omitempty"`
	// NewQuantity is the stored quantity after the row was applied.
	NewQuantity int64 `json:"new_quantity,omitempty"`
}

// LineError reports why one line was not applied.
type LineError struct {
	Line    int    `json:"line"`
	Barcode string `json:"barcode,omitempty"`
	Reason  string `json:"reason"`
}

// ImportSummary is the single aggregated result of a batch.
type ImportSummary struct {
	RunID       string        `json:"run_id,omitempty"`
	Inserted    int           `json:"inserted"`
	Updated     int           `json:"updated"`
	Malformed   int           `json:"malformed"`
	Failed      int           `json:"failed"`
	Errors      []LineError   `json:"errors"`
	Rows        []ImportRow   `json:"rows,omitempty"`
	Interrupted bool          `json:"interrupted"`
	DryRun      bool          `json:"dry_run,omitempty"`
	Duration    time.Duration `json:"duration_ns"`
}

// Total is the number of non-blank lines the summary accounts for.
func (s ImportSummary) Total() int {
	return s.Inserted + s.Updated + s.Malformed + s.Failed
}

// Applied is the number of rows that changed the store.
func (s ImportSummary) Applied() int {
	return s.Inserted + s.Updated
}

// ImportRun is the persisted audit record of one executed batch.
type ImportRun struct {
	ID          uuid.UUID     `json:"id"`
	UserEmail   string        `json:"user_email,omitempty"`
	IPAddress   string        `json:"ip_address,omitempty"`
	Inserted    int           `json:"inserted"`
	Updated     int           `json:"updated"`
	Malformed   int           `json:"malformed"`
	Failed      int           `json:"failed"`
	Interrupted bool          `json:"interrupted"`
	Duration    time.Duration `json:"duration_ns"`
	CreatedAt   time.Time     `json:"created_at"`
}

// ProductFilter narrows a product listing.
type ProductFilter struct {
	// Search matches the barcode exactly or the description as a substring.
	Search string
	Limit  int
	Offset int
}

// StockStats summarises the whole catalog.
type StockStats struct {
	Products int64 `json:"products"`
	Units    int64 `json:"units"`
}

// Store is the persistence capability the reconciliation engine needs.
// Implementations must be safe for concurrent use.
type Store interface {
	// FindByBarcode returns ErrProductNotFound when no product has barcode.
	FindByBarcode(ctx context.Context, barcode string) (Product, error)
	// Insert returns ErrDuplicateBarcode when barcode is already taken.
	Insert(ctx context.Context, barcode, description string, quantity int64) (ProductID, error)
	// UpdateQuantity returns ErrProductNotFound when id does not exist.
	UpdateQuantity(ctx context.Context, id ProductID, newQuantity int64) error
}

// Catalog is the full product store used by the service.
type Catalog interface {
	Store
	GetProduct(ctx context.Context, id ProductID) (Product, error)
	FindByBarcodes(ctx context.Context, barcodes []string) ([]Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
	AllProducts(ctx context.Context) ([]Product, error)
	UpdateProduct(ctx context.Context, id ProductID, description string, quantity int64) error
	StockStats(ctx context.Context) (StockStats, error)
}

// ImportRunStore persists import audit records.
type ImportRunStore interface {
	RecordImportRun(ctx context.Context, run ImportRun) error
	ListImportRuns(ctx context.Context, limit int) ([]ImportRun, error)
}
