package web

import (
	"fmt"
	"net/http"

	"github.com/lianasoft/agency-crm/internal/audit"
	"github.com/lianasoft/agency-crm/internal/db"
)

// handleAdminActions lists the audit log, optionally filtered to one
// administrator via ?admin=.
func (s *Server) handleAdminActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var entries []*audit.Entry
	var err error
	if actor := r.URL.Query().Get("admin"); actor != "" {
		entries, err = s.actions.ListByActor(actor)
	} else {
		entries, err = s.actions.List()
	}
	if err != nil {
		storeError(w, err)
		return
	}
	if entries == nil {
		entries = make([]*audit.Entry, 0)
	}
	apiJSON(w, entries, http.StatusOK)
}

// handleAdminActionAdmins lists the distinct administrators present in
// the audit log.
func (s *Server) handleAdminActionAdmins(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actors, err := s.actions.Actors()
	if err != nil {
		storeError(w, err)
		return
	}
	if actors == nil {
		actors = make([]string, 0)
	}
	apiJSON(w, actors, http.StatusOK)
}

// handleClearDatabase wipes all business data. Admin accounts survive,
// and the wipe itself becomes the first entry of the fresh audit log.
func (s *Server) handleClearDatabase(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	removed, err := db.Clear(s.db)
	if err != nil {
		apiError(w, "clearing database: "+err.Error(), http.StatusInternalServerError)
		return
	}

	s.record(r, "clear_database", fmt.Sprintf(
		"removed %d properties, %d clients, %d showings, %d actions",
		removed["properties"], removed["clients"], removed["showings"], removed["admin_actions"],
	))

	apiJSON(w, map[string]interface{}{"status": "ok", "removed": removed}, http.StatusOK)
}
