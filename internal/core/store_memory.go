package core

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded Catalog and ImportRunStore held in memory.
// Import previews run against one, and it doubles as a test store.
type MemoryStore struct {
	mu        sync.RWMutex
	nextID    ProductID
	byID      map[ProductID]*Product
	byBarcode map[string]ProductID
	runs      []ImportRun

	now func() time.Time
}

// NewMemoryStore returns a store seeded with products. Seeded IDs are kept;
// new inserts are numbered above the highest seeded ID.
func NewMemoryStore(seed ...Product) *MemoryStore {
	m := &MemoryStore{
		byID:      make(map[ProductID]*Product),
		byBarcode: make(map[string]ProductID),
		now:       time.Now,
	}
	for _, p := range seed {
		p := p
		if p.ID == 0 {
			m.nextID++
			p.ID = m.nextID
		}
		if p.ID > m.nextID {
			m.nextID = p.ID
		}
		m.byID[p.ID] = &p
		m.byBarcode[p.Barcode] = p.ID
	}
	return m
}

func (m *MemoryStore) FindByBarcode(ctx context.Context, barcode string) (Product, error) {
	if err := ctx.Err(); err != nil {
		return Product{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byBarcode[barcode]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return *m.byID[id], nil
}

func (m *MemoryStore) Insert(ctx context.Context, barcode, description string, quantity int64) (ProductID, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byBarcode[barcode]; ok {
		return 0, ErrDuplicateBarcode
	}
	m.nextID++
	now := m.now()
	p := &Product{
		ID:          m.nextID,
		Barcode:     barcode,
		Description: description,
		Quantity:    quantity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.byID[p.ID] = p
	m.byBarcode[barcode] = p.ID
	return p.ID, nil
}

func (m *MemoryStore) UpdateQuantity(ctx context.Context, id ProductID, newQuantity int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.byID[id]
	if !ok {
		return ErrProductNotFound
	}
	p.Quantity = newQuantity
	p.UpdatedAt = m.now()
	return nil
}

func (m *MemoryStore) GetProduct(ctx context.Context, id ProductID) (Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.byID[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return *p, nil
}

func (m *MemoryStore) FindByBarcodes(ctx context.Context, barcodes []string) ([]Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Product
	for _, b := range barcodes {
		if id, ok := m.byBarcode[b]; ok {
			out = append(out, *m.byID[id])
		}
	}
	return out, nil
}

func (m *MemoryStore) ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error) {
	all, _ := m.AllProducts(ctx)

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := all[:0]
	for _, p := range all {
		if search == "" || p.Barcode == filter.Search || strings.Contains(strings.ToLower(p.Description), search) {
			matched = append(matched, p)
		}
	}

	offset := max(filter.Offset, 0)
	if offset >= len(matched) {
		return []Product{}, nil
	}
	matched = matched[offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (m *MemoryStore) AllProducts(ctx context.Context) ([]Product, error) {
	m.mu.RLock()
	out := make([]Product, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, *p)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) UpdateProduct(ctx context.Context, id ProductID, description string, quantity int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.byID[id]
	if !ok {
		return ErrProductNotFound
	}
	p.Description = description
	p.Quantity = quantity
	p.UpdatedAt = m.now()
	return nil
}

func (m *MemoryStore) StockStats(ctx context.Context) (StockStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := StockStats{Products: int64(len(m.byID))}
	for _, p := range m.byID {
		stats.Units += p.Quantity
	}
	return stats, nil
}

func (m *MemoryStore) RecordImportRun(ctx context.Context, run ImportRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if run.CreatedAt.IsZero() {
		run.CreatedAt = m.now()
	}
	m.runs = append(m.runs, run)
	return nil
}

// ListImportRuns returns the newest runs first.
func (m *MemoryStore) ListImportRuns(ctx context.Context, limit int) ([]ImportRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ImportRun, 0, len(m.runs))
	for i := len(m.runs) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, m.runs[i])
	}
	return out, nil
}
