package web

import (
	"net/http"

	"github.com/JonMunkholm/stockroom/internal/core"
	"github.com/JonMunkholm/stockroom/internal/logging"
	"github.com/JonMunkholm/stockroom/internal/web/templates"
)

// handleImportPage renders the paste/upload form.
func (s *Server) handleImportPage(w http.ResponseWriter, r *http.Request) {
	templates.Import(templates.ImportPage{
		User: logging.UserFromContext(r.Context()),
	}).Render(r.Context(), w)
}

// handleImport applies a batch and renders its summary.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	page := templates.ImportPage{User: logging.UserFromContext(r.Context())}

	raw, err := s.readImportInput(w, r)
	if err == nil {
		var summary core.ImportSummary
		summary, err = s.service.ImportBatch(r.Context(), raw)
		page.Summary = &summary
	}
	s.renderImport(w, r, page, err)
}

// handleImportPreview dry-runs a batch and renders the would-be changes.
func (s *Server) handleImportPreview(w http.ResponseWriter, r *http.Request) {
	page := templates.ImportPage{User: logging.UserFromContext(r.Context())}

	raw, err := s.readImportInput(w, r)
	if err == nil {
		page.Input = raw
		var summary core.ImportSummary
		summary, err = s.service.PreviewImport(r.Context(), raw)
		preview := core.BuildPreview(summary)
		page.Preview = &preview
	}
	s.renderImport(w, r, page, err)
}

// renderImport writes the import page, or just its result fragment for
// HTMX. Batch-level errors are shown on the form instead of the result.
func (s *Server) renderImport(w http.ResponseWriter, r *http.Request, page templates.ImportPage, err error) {
	if err != nil {
		if isHTMX(r) {
			s.respondError(w, r, err, statusFor(err))
			return
		}
		logging.FromContext(r.Context()).Warn("import rejected", "error", err)
		page.Summary, page.Preview = nil, nil
		page.Error = core.FormatUserError(err)
		w.WriteHeader(statusFor(err))
		templates.Import(page).Render(r.Context(), w)
		return
	}

	if isHTMX(r) {
		templates.ImportResult(page).Render(r.Context(), w)
		return
	}
	templates.Import(page).Render(r.Context(), w)
}

// handleAPIImport applies a batch and returns the summary as JSON.
// Per-row detail is included with ?rows=1.
func (s *Server) handleAPIImport(w http.ResponseWriter, r *http.Request) {
	raw, err := s.readImportInput(w, r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	summary, err := s.service.ImportBatch(r.Context(), raw)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if r.URL.Query().Get("rows") != "1" {
		summary.Rows = nil
	}
	writeJSON(w, summary)
}

// handleAPIImportPreview returns the dry-run diff of a batch.
func (s *Server) handleAPIImportPreview(w http.ResponseWriter, r *http.Request) {
	raw, err := s.readImportInput(w, r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	summary, err := s.service.PreviewImport(r.Context(), raw)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, core.BuildPreview(summary))
}
