package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mock Store ---
type MockStore struct {
	mock.Mock
}

func (m *MockStore) FindByBarcode(ctx context.Context, barcode string) (Product, error) {
	args := m.Called(ctx, barcode)
	return args.Get(0).(Product), args.Error(1)
}

func (m *MockStore) Insert(ctx context.Context, barcode, description string, quantity int64) (ProductID, error) {
	args := m.Called(ctx, barcode, description, quantity)
	return args.Get(0).(ProductID), args.Error(1)
}

func (m *MockStore) UpdateQuantity(ctx context.Context, id ProductID, newQuantity int64) error {
	args := m.Called(ctx, id, newQuantity)
	return args.Error(0)
}

// --- Tests ---

func TestImportBatch_EndToEnd(t *testing.T) {
	store := NewMemoryStore()
	engine := NewEngine(store)

	summary, err := engine.ImportBatch(context.Background(), "111;Widget;10\n222;Gadget;5\n111;Widget;3\n")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Inserted)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 0, summary.Malformed)
	assert.Equal(t, 0, summary.Failed)
	assert.Empty(t, summary.Errors)
	assert.False(t, summary.Interrupted)

	widget, err := store.FindByBarcode(context.Background(), "111")
	require.NoError(t, err)
	assert.Equal(t, int64(13), widget.Quantity)

	gadget, err := store.FindByBarcode(context.Background(), "222")
	require.NoError(t, err)
	assert.Equal(t, int64(5), gadget.Quantity)

	stats, _ := store.StockStats(context.Background())
	assert.Equal(t, int64(2), stats.Products)
}

func TestImportBatch_MissingInput(t *testing.T) {
	engine := NewEngine(NewMemoryStore())

	for _, raw := range []string{"", "   ", "\n\n"} {
		_, err := engine.ImportBatch(context.Background(), raw)
		assert.ErrorIs(t, err, ErrMissingInput, "input %q", raw)
	}
}

func TestImportBatch_ExistingProductAccumulates(t *testing.T) {
	store := NewMemoryStore(Product{ID: 7, Barcode: "111", Description: "Widget", Quantity: 40})
	engine := NewEngine(store)

	summary, err := engine.ImportBatch(context.Background(), "111;Renamed widget;-15")
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Inserted)
	assert.Equal(t, 1, summary.Updated)

	row := summary.Rows[0]
	assert.Equal(t, RowUpdated, row.Status)
	assert.Equal(t, ProductID(7), row.ProductID)
	assert.Equal(t, int64(25), row.NewQuantity)

	p, err := store.GetProduct(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(25), p.Quantity)
	assert.Equal(t, "Widget", p.Description, "description on file is kept")
}

func TestImportBatch_SameNewBarcodeTwice(t *testing.T) {
	store := NewMemoryStore()
	engine := NewEngine(store, WithWorkers(4))

	summary, err := engine.ImportBatch(context.Background(), "B1;desc;5\nB1;desc;3")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 1, summary.Updated)

	all, _ := store.AllProducts(context.Background())
	require.Len(t, all, 1)
	assert.Equal(t, int64(8), all[0].Quantity)
}

func TestImportBatch_NotIdempotent(t *testing.T) {
	store := NewMemoryStore()
	engine := NewEngine(store)

	for i := 0; i < 2; i++ {
		_, err := engine.ImportBatch(context.Background(), "X9;Parafuso;6")
		require.NoError(t, err)
	}

	p, err := store.FindByBarcode(context.Background(), "X9")
	require.NoError(t, err)
	assert.Equal(t, int64(12), p.Quantity)
}

func TestImportBatch_MalformedRowsSkipStore(t *testing.T) {
	store := new(MockStore)
	engine := NewEngine(store)

	summary, err := engine.ImportBatch(context.Background(), "B2;desc\nB3;desc;abc\n;desc;1")
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Malformed)
	assert.Equal(t, 0, summary.Inserted+summary.Updated+summary.Failed)
	require.Len(t, summary.Errors, 3)
	assert.Equal(t, ReasonWrongFieldCount, summary.Errors[0].Reason)
	assert.Equal(t, ReasonBadQuantity, summary.Errors[1].Reason)
	assert.Equal(t, ReasonEmptyField, summary.Errors[2].Reason)

	store.AssertNotCalled(t, "FindByBarcode", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestImportBatch_StoreErrorsDoNotStopBatch(t *testing.T) {
	store := new(MockStore)
	engine := NewEngine(store, WithWorkers(1))
	dbErr := errors.New("connection reset by peer")

	store.On("FindByBarcode", mock.Anything, "100").Return(Product{}, dbErr).Once()
	store.On("FindByBarcode", mock.Anything, "200").Return(Product{ID: 2, Barcode: "200", Quantity: 1}, nil).Once()
	store.On("UpdateQuantity", mock.Anything, ProductID(2), int64(5)).Return(dbErr).Once()
	store.On("FindByBarcode", mock.Anything, "300").Return(Product{}, ErrProductNotFound).Once()
	store.On("Insert", mock.Anything, "300", "Third", int64(9)).Return(ProductID(3), nil).Once()

	summary, err := engine.ImportBatch(context.Background(), "100;First;1\n200;Second;4\n300;Third;9")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 2, summary.Failed)
	require.Len(t, summary.Errors, 2)
	assert.Equal(t, 1, summary.Errors[0].Line)
	assert.Contains(t, summary.Errors[0].Reason, "lookup failed")
	assert.Equal(t, 2, summary.Errors[1].Line)
	assert.Contains(t, summary.Errors[1].Reason, "update failed")

	store.AssertExpectations(t)
}

func TestImportBatch_UpdatesById(t *testing.T) {
	store := new(MockStore)
	engine := NewEngine(store)

	store.On("FindByBarcode", mock.Anything, "555").Return(Product{ID: 42, Barcode: "555", Quantity: 10}, nil).Once()
	store.On("UpdateQuantity", mock.Anything, ProductID(42), int64(13)).Return(nil).Once()

	summary, err := engine.ImportBatch(context.Background(), "555;Caneta;3")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)

	store.AssertExpectations(t)
}

func TestImportBatch_DuplicateInsertFallsBackToUpdate(t *testing.T) {
	store := new(MockStore)
	engine := NewEngine(store)

	store.On("FindByBarcode", mock.Anything, "777").Return(Product{}, ErrProductNotFound).Once()
	store.On("Insert", mock.Anything, "777", "Lapis", int64(2)).
		Return(ProductID(0), fmt.Errorf("%w: 777", ErrDuplicateBarcode)).Once()
	store.On("FindByBarcode", mock.Anything, "777").Return(Product{ID: 9, Barcode: "777", Quantity: 4}, nil).Once()
	store.On("UpdateQuantity", mock.Anything, ProductID(9), int64(6)).Return(nil).Once()

	summary, err := engine.ImportBatch(context.Background(), "777;Lapis;2")
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Inserted)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, int64(6), summary.Rows[0].NewQuantity)
	store.AssertExpectations(t)
}

func TestImportBatch_NegativeStock(t *testing.T) {
	tests := []struct {
		name       string
		reject     bool
		wantQty    int64
		wantFailed int
	}{
		{"allowed by default", false, -2, 0},
		{"rejected when configured", true, 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore(Product{ID: 1, Barcode: "111", Description: "Widget", Quantity: 3})
			engine := NewEngine(store, WithNegativeStockRejected(tt.reject))

			summary, err := engine.ImportBatch(context.Background(), "111;Widget;-5")
			require.NoError(t, err)
			assert.Equal(t, tt.wantFailed, summary.Failed)

			p, _ := store.GetProduct(context.Background(), 1)
			assert.Equal(t, tt.wantQty, p.Quantity)
			if tt.reject {
				assert.Contains(t, summary.Errors[0].Reason, "negative stock")
			}
		})
	}
}

func TestImportBatch_Cancelled(t *testing.T) {
	store := NewMemoryStore()
	engine := NewEngine(store, WithWorkers(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := engine.ImportBatch(ctx, "1;a;1\n2;b;2\nbad")
	require.NoError(t, err)

	assert.True(t, summary.Interrupted)
	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, 1, summary.Malformed)
	assert.Equal(t, 3, summary.Total())
	for _, e := range summary.Errors {
		if e.Line != 3 {
			assert.Equal(t, ReasonCancelled, e.Reason)
		}
	}

	stats, _ := store.StockStats(context.Background())
	assert.Zero(t, stats.Products)
}

// cancelAfterWrites cancels the import context once n writes have succeeded.
type cancelAfterWrites struct {
	*MemoryStore
	n      int
	cancel context.CancelFunc
}

func (c *cancelAfterWrites) wrote() {
	c.n--
	if c.n == 0 {
		c.cancel()
	}
}

func (c *cancelAfterWrites) Insert(ctx context.Context, barcode, description string, quantity int64) (ProductID, error) {
	id, err := c.MemoryStore.Insert(ctx, barcode, description, quantity)
	if err == nil {
		c.wrote()
	}
	return id, err
}

func (c *cancelAfterWrites) UpdateQuantity(ctx context.Context, id ProductID, newQuantity int64) error {
	err := c.MemoryStore.UpdateQuantity(ctx, id, newQuantity)
	if err == nil {
		c.wrote()
	}
	return err
}

func TestImportBatch_CancelledMidBatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mem := NewMemoryStore()
	store := &cancelAfterWrites{MemoryStore: mem, n: 2, cancel: cancel}
	engine := NewEngine(store, WithWorkers(1))

	summary, err := engine.ImportBatch(ctx, "1;a;1\n2;b;2\n3;c;3\n4;d;4")
	require.NoError(t, err)

	assert.True(t, summary.Interrupted)
	assert.Equal(t, 2, summary.Inserted)
	assert.Equal(t, 2, summary.Failed)
	require.Len(t, summary.Errors, 2)
	assert.Equal(t, LineError{Line: 3, Barcode: "3", Reason: ReasonCancelled}, summary.Errors[0])
	assert.Equal(t, LineError{Line: 4, Barcode: "4", Reason: ReasonCancelled}, summary.Errors[1])

	stats, _ := mem.StockStats(context.Background())
	assert.Equal(t, int64(2), stats.Products)
	assert.Equal(t, int64(3), stats.Units)
}

func TestImportBatch_QuantityOverflow(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{"above max", "A;a;9223372036854775807\nA;a;1\n", math.MaxInt64},
		{"below min", "A;a;-9223372036854775808\nA;a;-1\n", math.MinInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			engine := NewEngine(store)

			summary, err := engine.ImportBatch(context.Background(), tt.input)
			require.NoError(t, err)

			assert.Equal(t, 1, summary.Inserted)
			assert.Equal(t, 0, summary.Updated)
			assert.Equal(t, 1, summary.Failed)
			require.Len(t, summary.Errors, 1)
			assert.Equal(t, 2, summary.Errors[0].Line)
			assert.Contains(t, summary.Errors[0].Reason, "quantity out of range")

			p, err := store.FindByBarcode(context.Background(), "A")
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Quantity)
		})
	}
}

func TestAddQuantity(t *testing.T) {
	tests := []struct {
		qty, delta int64
		want       int64
		ok         bool
	}{
		{5, -7, -2, true},
		{math.MaxInt64 - 1, 1, math.MaxInt64, true},
		{math.MaxInt64, 1, 0, false},
		{math.MinInt64 + 1, -1, math.MinInt64, true},
		{math.MinInt64, -1, 0, false},
		{math.MinInt64, math.MaxInt64, -1, true},
	}

	for _, tt := range tests {
		got, ok := addQuantity(tt.qty, tt.delta)
		assert.Equal(t, tt.ok, ok, "%d + %d", tt.qty, tt.delta)
		assert.Equal(t, tt.want, got, "%d + %d", tt.qty, tt.delta)
	}
}

func TestImportBatch_CountsMatchNonBlankLines(t *testing.T) {
	store := NewMemoryStore(Product{ID: 1, Barcode: "A", Description: "a", Quantity: 1})
	engine := NewEngine(store, WithWorkers(3))

	var b strings.Builder
	nonBlank := 0
	for i := 0; i < 200; i++ {
		switch i % 5 {
		case 0:
			fmt.Fprintf(&b, "A;a;%d\n", i)
		case 1:
			fmt.Fprintf(&b, "N%d;new;%d\n", i%20, i)
		case 2:
			b.WriteString("broken line\n")
		case 3:
			b.WriteString("\n")
			continue
		case 4:
			fmt.Fprintf(&b, "Q%d;qty;x\n", i)
		}
		nonBlank++
	}

	summary, err := engine.ImportBatch(context.Background(), b.String())
	require.NoError(t, err)
	assert.Equal(t, nonBlank, summary.Total())
	assert.Equal(t, 0, summary.Failed)

	// A received 0+5+10+...+195 on top of its initial 1.
	var want int64 = 1
	for i := 0; i < 200; i += 5 {
		want += int64(i)
	}
	p, _ := store.FindByBarcode(context.Background(), "A")
	assert.Equal(t, want, p.Quantity)
}

func TestSummarize_ErrorsInInputOrder(t *testing.T) {
	rows := []ImportRow{
		{LineNumber: 1, Barcode: "a", Status: RowInserted},
		{LineNumber: 2, Barcode: "b", Status: RowFailed, Reason: "insert failed: boom"},
		{LineNumber: 4, Barcode: "c", Status: RowMalformed, Reason: ReasonBadQuantity},
		{LineNumber: 5, Barcode: "d", Status: RowMatched},
	}

	summary := Summarize(rows)

	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 1, summary.Malformed)
	assert.Equal(t, 2, summary.Failed, "non-terminal rows count as failed")
	require.Len(t, summary.Errors, 3)
	assert.Equal(t, []int{2, 4, 5}, []int{summary.Errors[0].Line, summary.Errors[1].Line, summary.Errors[2].Line})
	assert.Equal(t, "not applied", summary.Errors[2].Reason)
}

func TestGroupByBarcode(t *testing.T) {
	rows := []ImportRow{
		{Barcode: "x", Status: RowPending},
		{Barcode: "y", Status: RowPending},
		{Barcode: "x", Status: RowMalformed},
		{Barcode: "x", Status: RowPending},
	}

	assert.Equal(t, [][]int{{0, 3}, {1}}, groupByBarcode(rows))
}
