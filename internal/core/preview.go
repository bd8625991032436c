package core

import (
	"context"
	"slices"
	"time"
)

// maxPreviewSamples caps each sample list in a preview response.
const maxPreviewSamples = 20

// PreviewSummary contains the counts a dry run would produce.
type PreviewSummary struct {
	TotalRows       int `json:"totalRows"`
	NewRows         int `json:"newRows"`
	UpdateRows      int `json:"updateRows"`
	ErrorRows       int `json:"errorRows"`
	DuplicateInFile int `json:"duplicateInFile"`
}

// QuantityDiff is the before/after quantity of a product a batch touches.
// Several lines for the same barcode collapse into one diff.
type QuantityDiff struct {
	Barcode     string `json:"barcode"`
	Description string `json:"description"`
	Current     int64  `json:"current"`
	Incoming    int64  `json:"incoming"`
	Result      int64  `json:"result"`
	New         bool   `json:"new"`
	Lines       []int  `json:"lines"`
}

// DuplicatePreview lists barcodes that appear on more than one line.
type DuplicatePreview struct {
	Barcode     string `json:"barcode"`
	LineNumbers []int  `json:"lineNumbers"`
}

// PreviewResponse is the dry-run view of a batch.
type PreviewResponse struct {
	Summary          PreviewSummary     `json:"summary"`
	NewProducts      []QuantityDiff     `json:"newProducts"`
	UpdatedProducts  []QuantityDiff     `json:"updatedProducts"`
	Errors           []LineError        `json:"errors"`
	DuplicateSamples []DuplicatePreview `json:"duplicateSamples"`
	ProcessingTimeMs int64              `json:"processingTimeMs"`
}

// PreviewImport runs a batch against an in-memory snapshot of the products
// it references. Nothing is written to the catalog.
func (s *Service) PreviewImport(ctx context.Context, raw string) (ImportSummary, error) {
	start := time.Now()

	raw, err := NormalizeInput([]byte(raw))
	if err != nil {
		return ImportSummary{}, err
	}
	rows, err := ParseBatch(raw)
	if err != nil {
		return ImportSummary{}, err
	}

	ctx, span := tracer.Start(ctx, "core.PreviewImport")
	defer span.End()

	existing, err := s.catalog.FindByBarcodes(ctx, pendingBarcodes(rows))
	if err != nil {
		return ImportSummary{}, err
	}

	snapshot := NewMemoryStore(existing...)
	s.engine.WithStore(snapshot).Reconcile(ctx, rows)

	summary := Summarize(rows)
	summary.DryRun = true
	summary.Interrupted = ctx.Err() != nil
	summary.Duration = time.Since(start)
	return summary, nil
}

// BuildPreview turns a dry-run summary into per-product diffs.
func BuildPreview(summary ImportSummary) PreviewResponse {
	resp := PreviewResponse{
		Summary: PreviewSummary{
			TotalRows:  summary.Total(),
			NewRows:    summary.Inserted,
			UpdateRows: summary.Updated,
			ErrorRows:  summary.Malformed + summary.Failed,
		},
		NewProducts:      []QuantityDiff{},
		UpdatedProducts:  []QuantityDiff{},
		Errors:           summary.Errors,
		DuplicateSamples: []DuplicatePreview{},
		ProcessingTimeMs: summary.Duration.Milliseconds(),
	}
	if len(resp.Errors) > maxPreviewSamples {
		resp.Errors = resp.Errors[:maxPreviewSamples]
	}

	diffs := make(map[string]*QuantityDiff)
	var order []string
	for _, row := range summary.Rows {
		if row.Status != RowInserted && row.Status != RowUpdated {
			continue
		}
		d, ok := diffs[row.Barcode]
		if !ok {
			d = &QuantityDiff{
				Barcode:     row.Barcode,
				Description: row.Description,
				Current:     row.NewQuantity - row.QuantityDelta,
				New:         row.Status == RowInserted,
			}
			diffs[row.Barcode] = d
			order = append(order, row.Barcode)
		}
		d.Incoming += row.QuantityDelta
		d.Result = row.NewQuantity
		d.Lines = append(d.Lines, row.LineNumber)
	}

	for _, barcode := range order {
		d := diffs[barcode]
		if len(d.Lines) > 1 {
			resp.Summary.DuplicateInFile++
			if len(resp.DuplicateSamples) < maxPreviewSamples {
				resp.DuplicateSamples = append(resp.DuplicateSamples, DuplicatePreview{
					Barcode:     barcode,
					LineNumbers: slices.Clone(d.Lines),
				})
			}
		}
		if d.New {
			if len(resp.NewProducts) < maxPreviewSamples {
				resp.NewProducts = append(resp.NewProducts, *d)
			}
			continue
		}
		if len(resp.UpdatedProducts) < maxPreviewSamples {
			resp.UpdatedProducts = append(resp.UpdatedProducts, *d)
		}
	}
	return resp
}

func pendingBarcodes(rows []ImportRow) []string {
	seen := make(map[string]struct{}, len(rows))
	var barcodes []string
	for _, row := range rows {
		if row.Status != RowPending {
			continue
		}
		if _, ok := seen[row.Barcode]; ok {
			continue
		}
		seen[row.Barcode] = struct{}{}
		barcodes = append(barcodes, row.Barcode)
	}
	return barcodes
}
