// Package web provides the HTTP server and handlers for the stock UI.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/stockroom/internal/auth"
	"github.com/JonMunkholm/stockroom/internal/config"
	"github.com/JonMunkholm/stockroom/internal/core"
	appmw "github.com/JonMunkholm/stockroom/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP server for the stock application.
type Server struct {
	service  *core.Service
	auth     *auth.Authenticator
	sessions *auth.Sessions
	cfg      *config.Config
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a Server with middleware and routes installed.
func NewServer(service *core.Service, authn *auth.Authenticator, sessions *auth.Sessions, cfg *config.Config) *Server {
	s := &Server{
		service:  service,
		auth:     authn,
		sessions: sessions,
		cfg:      cfg,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(appmw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(appmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5, "text/html", "text/css", "application/json"))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(appmw.SecurityHeaders(s.cfg.Security.EnableCSP))

	s.router.Use(s.limiter(s.cfg.Rate.RequestsPerMinute))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	loginLimit := s.limiter(s.cfg.Rate.LoginLimit)
	importLimit := s.limiter(s.cfg.Rate.ImportLimit)

	s.router.Get("/healthz", s.handleHealth)
	s.router.With(loginLimit).Get("/login", s.handleLoginPage)
	s.router.With(loginLimit).Post("/login", s.handleLogin)
	s.router.Get("/logout", s.handleLogout)

	s.router.Group(func(r chi.Router) {
		r.Use(appmw.RequireLogin(s.sessions))

		// Pages
		r.Get("/", http.RedirectHandler("/dashboard", http.StatusSeeOther).ServeHTTP)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/importar", s.handleImportPage)
		r.With(importLimit).Post("/importar", s.handleImport)
		r.With(importLimit).Post("/importar/preview", s.handleImportPreview)
		r.Get("/inserir", s.handleInsertPage)
		r.Post("/inserir", s.handleInsert)
		r.Get("/estoque", s.handleStock)
		r.Get("/scan", s.handleScanPage)
		r.Post("/scan", s.handleScan)
		r.Post("/adicionar-produto", s.handleAddProduct)
		r.Post("/atualizar-produto", s.handleUpdateProduct)
		r.Get("/exportar", s.handleExportPage)
		r.Post("/exportar", s.handleExport)

		// API routes
		r.Route("/api", func(r chi.Router) {
			r.With(importLimit).Post("/import", s.handleAPIImport)
			r.With(importLimit).Post("/import/preview", s.handleAPIImportPreview)
			r.Get("/products", s.handleAPIListProducts)
			r.Get("/products/{barcode}", s.handleAPIProduct)
			r.Get("/imports", s.handleAPIImports)
			r.Get("/export", s.handleExport)
		})
	})
}

// limiter returns a per-IP rate limit middleware, or a pass-through when
// rate limiting is disabled.
func (s *Server) limiter(perMinute int) func(http.Handler) http.Handler {
	if !s.cfg.Rate.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return appmw.NewRateLimiter(perMinute, 0).Middleware
}

// Start begins listening for HTTP requests on the configured address.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// handleHealth reports liveness and import slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":  "ok",
		"imports": s.service.ImportLimiterStatus(),
	})
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
