// Package console is the server-rendered admin UI. It signs operators in
// against the party data API, keeps the access token in a cookie, and
// renders registry-driven list and form pages for every entity.
package console

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"partydesk.org/internal/console/apiclient"
	"partydesk.org/internal/console/session"
	"partydesk.org/internal/httpapi"
	"partydesk.org/internal/obs"
	"partydesk.org/internal/party"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// Config carries the console's runtime knobs.
type Config struct {
	Cookies   session.CookieOptions
	LookupTTL time.Duration
	Version   string
}

// Server routes and renders the console.
type Server struct {
	mux     *http.ServeMux
	api     *apiclient.Client
	reg     *party.Registry
	cookies session.CookieOptions
	lookups *lookupCache
	pages   map[string]*template.Template
	version string
}

func NewServer(api *apiclient.Client, reg *party.Registry, cfg Config) (*Server, error) {
	if cfg.LookupTTL <= 0 {
		cfg.LookupTTL = 2 * time.Minute
	}
	s := &Server{
		mux:     http.NewServeMux(),
		api:     api,
		reg:     reg,
		cookies: cfg.Cookies,
		lookups: newLookupCache(api, reg, cfg.LookupTTL),
		version: cfg.Version,
	}
	if err := s.parseTemplates(); err != nil {
		return nil, err
	}

	s.mux.HandleFunc("/login", s.publicOnly(s.handleLogin))
	s.mux.HandleFunc("/register", s.publicOnly(s.handleRegister))
	s.mux.HandleFunc("/logout", s.handleLogout)
	s.mux.HandleFunc("/v1/", s.requireSession(s.handleEntity))
	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/", s.requireSession(s.handleHome))

	return s, nil
}

// Handler returns the wrapped handler for the server.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = httpapi.SecurityHeaders(h)
	h = httpapi.LoggingJSON(h)
	h = httpapi.RequestID(h)
	return obs.Instrument(h)
}

func (s *Server) parseTemplates() error {
	pages := []string{"login", "register", "home", "list", "form"}
	s.pages = make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		t, err := template.ParseFS(templateFS,
			"templates/base.html.tmpl", "templates/"+name+".html.tmpl")
		if err != nil {
			return fmt.Errorf("parse %s template: %w", name, err)
		}
		s.pages[name] = t
	}
	return nil
}

func (s *Server) render(w http.ResponseWriter, page string, data any) {
	t, ok := s.pages[page]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		obs.Logger().Printf(`{"level":"error","msg":"render %s: %v"}`, page, err)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	fmt.Fprintf(w, `{"status":"ok","service":"partydesk-console","version":%q}`+"\n", s.version)
}
