// Package templates renders the HTML pages of the web UI as templ components.
package templates

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/stockroom/internal/core"
	"github.com/a-h/templ"
)

// Flash is a one-shot status line shown above page content.
type Flash struct {
	Success string
	Error   string
}

// LoginPage is the sign-in form.
type LoginPage struct {
	Email string
	Error string
}

// DashboardPage shows catalog totals and the latest imports.
type DashboardPage struct {
	User    string
	Stats   core.StockStats
	Imports []core.ImportRun
}

// ImportPage is the paste/upload form, optionally with a result.
type ImportPage struct {
	User    string
	Input   string
	Error   string
	Summary *core.ImportSummary
	Preview *core.PreviewResponse
}

// InsertPage is the single product entry form.
type InsertPage struct {
	User  string
	Flash Flash
}

// StockPage lists products.
type StockPage struct {
	User     string
	Query    string
	Products []core.Product
	Stats    core.StockStats
}

// ScanPage is the barcode lookup page. Product is set on a hit; Barcode
// is set on a miss so the add form can be prefilled.
type ScanPage struct {
	User    string
	Product *core.Product
	Barcode string
	Flash   Flash
}

// ExportPage offers the stock report downloads.
type ExportPage struct {
	User string
}

// htmlWriter writes markup and keeps the first write error.
type htmlWriter struct {
	ctx context.Context
	w   io.Writer
	err error
}

// raw writes trusted markup.
func (h *htmlWriter) raw(parts ...string) {
	for _, s := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, s)
	}
}

// text writes v HTML-escaped. It is safe inside element bodies and quoted
// attribute values.
func (h *htmlWriter) text(v any) {
	h.raw(templ.EscapeString(fmt.Sprint(v)))
}

// child renders a nested component.
func (h *htmlWriter) child(c templ.Component) {
	if h.err == nil {
		h.err = c.Render(h.ctx, h.w)
	}
}

// component adapts a markup writing func to templ.Component.
func component(fn func(h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{ctx: ctx, w: w}
		fn(h)
		return h.err
	})
}

func datetime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("02/01/2006 15:04")
}
