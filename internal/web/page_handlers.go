package web

import (
	"net/http"
	"strings"

	"github.com/lianasoft/agency-crm/internal/audit"
	"github.com/lianasoft/agency-crm/internal/auth"
	"github.com/lianasoft/agency-crm/internal/client"
	"github.com/lianasoft/agency-crm/internal/property"
	"github.com/lianasoft/agency-crm/internal/showing"
)

type dashboardData struct {
	Username     string
	Properties   []*property.Property
	Tab          string // "available", "reserved", or "sold"
	AvailableCnt int
	ReservedCnt  int
	SoldCnt      int
}

type propertyPageData struct {
	Username string
	Property *property.Property
	Showings []*showing.Showing
}

type clientsPageData struct {
	Username string
	Clients  []*client.Client
}

type showingRow struct {
	Showing  *showing.Showing
	Property *property.Property
}

type showingsPageData struct {
	Username string
	Rows     []showingRow
}

type auditPageData struct {
	Username string
	Entries  []*audit.Entry
	Admins   []string
	Filter   string
}

type loginPageData struct {
	Error string
}

// handleLoginPage renders the login form. Authentication itself goes
// through the JSON API.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, "login.html", loginPageData{})
}

// handleDashboard renders the property list grouped by status.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	tab := r.URL.Query().Get("tab")
	if tab != "reserved" && tab != "sold" {
		tab = "available"
	}

	available, err := s.props.List(property.ListOptions{Status: property.Available})
	if err != nil {
		http.Error(w, "Error loading properties", http.StatusInternalServerError)
		return
	}
	reserved, err := s.props.List(property.ListOptions{Status: property.Reserved})
	if err != nil {
		http.Error(w, "Error loading properties", http.StatusInternalServerError)
		return
	}
	sold, err := s.props.List(property.ListOptions{Status: property.Sold})
	if err != nil {
		http.Error(w, "Error loading properties", http.StatusInternalServerError)
		return
	}

	var props []*property.Property
	switch tab {
	case "reserved":
		props = reserved
	case "sold":
		props = sold
	default:
		props = available
	}

	s.render(w, "dashboard.html", dashboardData{
		Username:     auth.UsernameFromContext(r),
		Properties:   props,
		Tab:          tab,
		AvailableCnt: len(available),
		ReservedCnt:  len(reserved),
		SoldCnt:      len(sold),
	})
}

// handlePropertyPage renders one property with its showings.
func (s *Server) handlePropertyPage(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/properties/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	p, err := s.props.Get(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	showings, err := s.showings.ListByProperty(id)
	if err != nil {
		http.Error(w, "Error loading showings", http.StatusInternalServerError)
		return
	}

	s.render(w, "property.html", propertyPageData{
		Username: auth.UsernameFromContext(r),
		Property: p,
		Showings: showings,
	})
}

// handleClientsPage renders the client list.
func (s *Server) handleClientsPage(w http.ResponseWriter, r *http.Request) {
	clients, err := s.clients.List()
	if err != nil {
		http.Error(w, "Error loading clients", http.StatusInternalServerError)
		return
	}

	s.render(w, "clients.html", clientsPageData{
		Username: auth.UsernameFromContext(r),
		Clients:  clients,
	})
}

// handleShowingsPage renders all scheduled showings with their
// properties.
func (s *Server) handleShowingsPage(w http.ResponseWriter, r *http.Request) {
	showings, err := s.showings.List()
	if err != nil {
		http.Error(w, "Error loading showings", http.StatusInternalServerError)
		return
	}

	rows := make([]showingRow, 0, len(showings))
	for _, sh := range showings {
		p, err := s.props.Get(sh.PropertyID)
		if err != nil {
			// Property rows cascade-delete their showings, so a miss
			// here is a race; skip the row rather than fail the page.
			continue
		}
		rows = append(rows, showingRow{Showing: sh, Property: p})
	}

	s.render(w, "showings.html", showingsPageData{
		Username: auth.UsernameFromContext(r),
		Rows:     rows,
	})
}

// handleAuditPage renders the admin action log.
func (s *Server) handleAuditPage(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("admin")

	var entries []*audit.Entry
	var err error
	if filter != "" {
		entries, err = s.actions.ListByActor(filter)
	} else {
		entries, err = s.actions.List()
	}
	if err != nil {
		http.Error(w, "Error loading actions", http.StatusInternalServerError)
		return
	}

	admins, err := s.actions.Actors()
	if err != nil {
		http.Error(w, "Error loading actions", http.StatusInternalServerError)
		return
	}

	s.render(w, "audit.html", auditPageData{
		Username: auth.UsernameFromContext(r),
		Entries:  entries,
		Admins:   admins,
		Filter:   filter,
	})
}
