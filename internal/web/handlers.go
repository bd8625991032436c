package web

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/stockroom/internal/core"
	"github.com/JonMunkholm/stockroom/internal/logging"
	"github.com/JonMunkholm/stockroom/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

const (
	// stockPageSize is the number of products per stock page.
	stockPageSize = 100

	// dashboardImports is how many recent imports the dashboard lists.
	dashboardImports = 10
)

// handleDashboard renders totals and the latest imports.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := templates.DashboardPage{User: logging.UserFromContext(ctx)}

	// Partial data is better than no dashboard.
	if stats, err := s.service.StockStats(ctx); err == nil {
		page.Stats = stats
	} else {
		logging.FromContext(ctx).Warn("failed to load stock stats", "error", err)
	}
	if runs, err := s.service.RecentImports(ctx, dashboardImports); err == nil {
		page.Imports = runs
	} else {
		logging.FromContext(ctx).Warn("failed to load recent imports", "error", err)
	}

	templates.Dashboard(page).Render(ctx, w)
}

// handleStock lists products, optionally filtered by ?q=.
func (s *Server) handleStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query().Get("q")
	page := parseIntParam(r, "page", 1, 1)

	products, err := s.service.ListProducts(ctx, core.ProductFilter{
		Search: query,
		Limit:  stockPageSize,
		Offset: (page - 1) * stockPageSize,
	})
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	stats, _ := s.service.StockStats(ctx)

	templates.Stock(templates.StockPage{
		User:     logging.UserFromContext(ctx),
		Query:    query,
		Products: products,
		Stats:    stats,
	}).Render(ctx, w)
}

// handleInsertPage renders the manual entry form with any flash message.
func (s *Server) handleInsertPage(w http.ResponseWriter, r *http.Request) {
	templates.Insert(templates.InsertPage{
		User:  logging.UserFromContext(r.Context()),
		Flash: flashFromQuery(r),
	}).Render(r.Context(), w)
}

// handleInsert books one product through the import path: a known barcode
// has the quantity added, an unknown one is created.
func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithFlash(w, r, "/inserir", false, core.FormatUserError(err))
		return
	}

	row, err := s.service.ReceiveProduct(r.Context(),
		r.PostFormValue("codigo_de_barras"),
		r.PostFormValue("descricao"),
		r.PostFormValue("quantidade"),
	)
	if err != nil {
		logging.FromContext(r.Context()).Warn("insert failed", "error", err)
		msg := "Por favor, forneça todos os campos necessários."
		if !errors.Is(err, core.ErrInvalidProduct) {
			msg = core.FormatUserError(err)
		}
		redirectWithFlash(w, r, "/inserir", false, msg)
		return
	}

	msg := "Produto adicionado com sucesso!"
	if row.Status == core.RowUpdated {
		msg = "Produto atualizado com sucesso!"
	}
	redirectWithFlash(w, r, "/inserir", true, msg)
}

// handleScanPage renders the empty barcode lookup.
func (s *Server) handleScanPage(w http.ResponseWriter, r *http.Request) {
	templates.Scan(templates.ScanPage{
		User:  logging.UserFromContext(r.Context()),
		Flash: flashFromQuery(r),
	}).Render(r.Context(), w)
}

// handleScan looks a barcode up. A miss prefills the add form.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := templates.ScanPage{User: logging.UserFromContext(ctx)}
	barcode := strings.TrimSpace(r.FormValue("barcode"))

	p, err := s.service.LookupBarcode(ctx, barcode)
	switch {
	case err == nil:
		page.Product = &p
	case errors.Is(err, core.ErrProductNotFound):
		page.Barcode = barcode
	case errors.Is(err, core.ErrInvalidProduct):
		page.Flash.Error = core.FormatUserError(err)
	default:
		s.respondError(w, r, err, statusFor(err))
		return
	}
	templates.Scan(page).Render(ctx, w)
}

// handleAddProduct creates the product offered after a scan miss.
func (s *Server) handleAddProduct(w http.ResponseWriter, r *http.Request) {
	qty, err := parseQuantity(r.FormValue("quantidade"))
	if err == nil {
		_, err = s.service.AddProduct(r.Context(), r.FormValue("barcode"), r.FormValue("descricao"), qty)
	}
	if err != nil {
		redirectWithFlash(w, r, "/scan", false, core.FormatUserError(err))
		return
	}
	redirectWithFlash(w, r, "/scan", true, "Produto adicionado com sucesso!")
}

// handleUpdateProduct overwrites description and quantity of a product.
func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.FormValue("id"), 10, 64)
	if err != nil {
		redirectWithFlash(w, r, "/scan", false, core.FormatUserError(core.ErrProductNotFound))
		return
	}

	qty, err := parseQuantity(r.FormValue("quantidade"))
	if err == nil {
		_, err = s.service.UpdateProduct(r.Context(), core.ProductID(id), r.FormValue("descricao"), qty)
	}
	if err != nil {
		redirectWithFlash(w, r, "/scan", false, core.FormatUserError(err))
		return
	}
	redirectWithFlash(w, r, "/scan", true, "Produto atualizado com sucesso!")
}

// handleExportPage renders the export options.
func (s *Server) handleExportPage(w http.ResponseWriter, r *http.Request) {
	templates.Export(templates.ExportPage{
		User: logging.UserFromContext(r.Context()),
	}).Render(r.Context(), w)
}

// handleExport downloads the whole stock as CSV or XLSX.
// The file is built in memory so a failure still yields a clean error.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := core.ParseExportFormat(r.FormValue("format"))
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := s.service.ExportStock(r.Context(), &buf, format); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	logging.FromContext(r.Context()).Info("stock exported", "format", format, "bytes", buf.Len())
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.Filename()+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	buf.WriteTo(w)
}

// handleAPIListProducts returns a page of products as JSON.
func (s *Server) handleAPIListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.service.ListProducts(r.Context(), core.ProductFilter{
		Search: r.URL.Query().Get("q"),
		Limit:  parseIntParam(r, "limit", stockPageSize, 1),
		Offset: parseIntParam(r, "offset", 0, 0),
	})
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, products)
}

// handleAPIProduct returns the product registered under {barcode}.
func (s *Server) handleAPIProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.service.LookupBarcode(r.Context(), chi.URLParam(r, "barcode"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, p)
}

// handleAPIImports returns recent import runs, newest first.
func (s *Server) handleAPIImports(w http.ResponseWriter, r *http.Request) {
	runs, err := s.service.RecentImports(r.Context(), parseIntParam(r, "limit", 20, 1))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if runs == nil {
		runs = []core.ImportRun{}
	}
	writeJSON(w, runs)
}
