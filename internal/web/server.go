// Package web provides the HTTP server: the JSON API used by the UI
// and the remote CLI, and the server-rendered admin pages.
package web

import (
	"database/sql"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rs/cors"

	"github.com/lianasoft/agency-crm/internal/audit"
	"github.com/lianasoft/agency-crm/internal/auth"
	"github.com/lianasoft/agency-crm/internal/client"
	"github.com/lianasoft/agency-crm/internal/logging"
	"github.com/lianasoft/agency-crm/internal/property"
	"github.com/lianasoft/agency-crm/internal/showing"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Server is the agency CRM HTTP server.
type Server struct {
	db        *sql.DB
	config    auth.Config
	tokens    *auth.TokenService
	users     *auth.UserStore
	limiter   *auth.LoginLimiter
	props     *property.Repository
	clients   *client.Repository
	showings  *showing.Repository
	actions   *audit.Log
	passkeys  *passkeyHandlers
	templates *template.Template
	mux       *http.ServeMux
	handler   http.Handler
}

// NewServer creates a server with the given database and auth config.
func NewServer(db *sql.DB, cfg auth.Config) (*Server, error) {
	funcMap := template.FuncMap{
		"formatPrice": tmplFormatPrice,
		"formatArea":  tmplFormatArea,
		"statusLabel": tmplStatusLabel,
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	tokens := auth.NewTokenService(cfg.Secret)
	users := auth.NewUserStore(db)

	s := &Server{
		db:        db,
		config:    cfg,
		tokens:    tokens,
		users:     users,
		limiter:   auth.NewLoginLimiter(),
		props:     property.NewRepository(db),
		clients:   client.NewRepository(db),
		showings:  showing.NewRepository(db),
		actions:   audit.NewLog(db),
		templates: tmpl,
		mux:       http.NewServeMux(),
	}

	pk, err := newPasskeyHandlers(cfg, auth.NewPasskeyStore(db), tokens, users, s.actions)
	if err != nil {
		return nil, fmt.Errorf("configuring passkeys: %w", err)
	}
	s.passkeys = pk

	s.routes()
	s.handler = s.buildHandler()

	return s, nil
}

func (s *Server) routes() {
	staticContent, err := fs.Sub(staticFS, "static")
	if err != nil {
		// The sub-fs only fails if the embedded tree is missing the
		// static directory, which is a build error.
		panic(fmt.Sprintf("static sub-fs: %v", err))
	}
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticContent))))

	// JSON API
	s.mux.HandleFunc("/api/auth/", s.handleAuthRoute)
	s.mux.HandleFunc("/api/properties", s.handlePropertiesRoute)
	s.mux.HandleFunc("/api/properties/", s.handlePropertiesRoute)
	s.mux.HandleFunc("/api/clients", s.handleClientsRoute)
	s.mux.HandleFunc("/api/clients/", s.handleClientsRoute)
	s.mux.HandleFunc("/api/showings", s.handleShowingsRoute)
	s.mux.HandleFunc("/api/showings/", s.handleShowingsRoute)
	s.mux.HandleFunc("/api/admin-actions", s.handleAdminActions)
	s.mux.HandleFunc("/api/admin-actions/admins", s.handleAdminActionAdmins)
	s.mux.HandleFunc("/api/admin/clear-database", s.handleClearDatabase)
	s.mux.HandleFunc("/api/passkeys", s.passkeys.handleCredentialsRoute)
	s.mux.HandleFunc("/api/passkeys/register/begin", s.passkeys.handleBeginRegistration)
	s.mux.HandleFunc("/api/passkeys/register/finish", s.passkeys.handleFinishRegistration)
	s.mux.HandleFunc("/api/health", s.handleHealth)

	// Passkey login stays outside /api: the caller has no credential yet.
	s.mux.HandleFunc("/passkey/login/begin", s.passkeys.handleBeginLogin)
	s.mux.HandleFunc("/passkey/login/finish", s.passkeys.handleFinishLogin)

	// HTML pages
	s.mux.HandleFunc("/", s.handleDashboard)
	s.mux.HandleFunc("/login", s.handleLoginPage)
	s.mux.HandleFunc("/properties/", s.handlePropertyPage)
	s.mux.HandleFunc("/clients", s.handleClientsPage)
	s.mux.HandleFunc("/showings", s.handleShowingsPage)
	s.mux.HandleFunc("/audit", s.handleAuditPage)
	s.mux.HandleFunc("/health", s.handleHealth)
}

// buildHandler wraps the mux in the full middleware chain.
func (s *Server) buildHandler() http.Handler {
	var origins []string
	if s.config.CORSOrigins != "" {
		for _, o := range strings.Split(s.config.CORSOrigins, ",") {
			origins = append(origins, strings.TrimSpace(o))
		}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	var h http.Handler = s.mux
	h = auth.RequireToken(s.tokens, h)
	h = auth.RequireAuth(s.tokens, h)
	h = c.Handler(h)
	h = logging.RequestLogger(h)
	return h
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(port int) error {
	addr := fmt.Sprintf(":%d", port)
	slog.Info("starting server", "addr", addr)
	return http.ListenAndServe(addr, s)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// record appends an audit entry for a mutating request. Failures are
// logged, not surfaced: the action itself already succeeded.
func (s *Server) record(r *http.Request, action, details string) {
	actor := auth.UsernameFromContext(r)
	if actor == "" {
		actor = "unknown"
	}
	if _, err := s.actions.Record(actor, action, details, logging.ClientIP(r)); err != nil {
		slog.Error("recording admin action", "action", action, "err", err)
	}
}

// render executes a page template.
func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("rendering template", "template", name, "err", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

// Template helpers

func tmplFormatPrice(p int64) string {
	s := fmt.Sprintf("%d", p)
	if len(s) <= 3 {
		return "€" + s
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return "€" + strings.Join(parts, ",")
}

func tmplFormatArea(a float64) string {
	if a == float64(int64(a)) {
		return fmt.Sprintf("%d m²", int64(a))
	}
	return fmt.Sprintf("%.1f m²", a)
}

func tmplStatusLabel(s property.Status) string {
	switch s {
	case property.Available:
		return "Available"
	case property.Reserved:
		return "Reserved"
	case property.Sold:
		return "Sold"
	}
	return string(s)
}
