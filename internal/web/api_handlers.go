package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/lianasoft/agency-crm/internal/client"
	"github.com/lianasoft/agency-crm/internal/property"
	"github.com/lianasoft/agency-crm/internal/showing"
	"github.com/lianasoft/agency-crm/internal/store"
)

// apiError writes a JSON error response.
func apiError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	resp := map[string]string{"error": msg}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// storeError maps repository errors onto HTTP status codes.
func storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		apiError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, store.ErrConflict):
		apiError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, store.ErrValidation):
		apiError(w, err.Error(), http.StatusBadRequest)
	default:
		apiError(w, err.Error(), http.StatusInternalServerError)
	}
}

// decodeStrict decodes a JSON body rejecting unknown fields.
func decodeStrict(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// handlePropertiesRoute routes /api/properties requests.
func (s *Server) handlePropertiesRoute(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/properties")
	path = strings.TrimPrefix(path, "/")

	// /api/properties — list or create
	if path == "" {
		switch r.Method {
		case http.MethodGet:
			s.apiListProperties(w, r)
		case http.MethodPost:
			s.apiCreateProperty(w, r)
		default:
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	// /api/properties/{id}/showings
	if rest, ok := strings.CutSuffix(path, "/showings"); ok {
		switch r.Method {
		case http.MethodGet:
			s.apiListPropertyShowings(w, rest)
		case http.MethodPost:
			s.apiCreateShowing(w, r, rest)
		default:
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	// /api/properties/{id}/photos
	if rest, ok := strings.CutSuffix(path, "/photos"); ok {
		switch r.Method {
		case http.MethodPost:
			s.apiAttachPhoto(w, r, rest)
		case http.MethodDelete:
			s.apiDetachPhoto(w, r, rest)
		default:
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if strings.Contains(path, "/") {
		apiError(w, "not found", http.StatusNotFound)
		return
	}

	// /api/properties/{id}
	switch r.Method {
	case http.MethodGet:
		s.apiGetProperty(w, path)
	case http.MethodPut:
		s.apiUpdateProperty(w, r, path)
	case http.MethodDelete:
		s.apiDeleteProperty(w, r, path)
	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) apiListProperties(w http.ResponseWriter, r *http.Request) {
	opts := property.ListOptions{
		District: r.URL.Query().Get("district"),
	}
	if v := r.URL.Query().Get("status"); v != "" {
		st := property.Status(v)
		if !st.IsValid() {
			apiError(w, "status must be available, reserved or sold", http.StatusBadRequest)
			return
		}
		opts.Status = st
	}
	if v := r.URL.Query().Get("type"); v != "" {
		pt := property.Type(v)
		if !pt.IsValid() {
			apiError(w, "type must be apartment or house", http.StatusBadRequest)
			return
		}
		opts.Type = pt
	}

	props, err := s.props.List(opts)
	if err != nil {
		storeError(w, err)
		return
	}
	if props == nil {
		props = make([]*property.Property, 0)
	}
	apiJSON(w, props, http.StatusOK)
}

func (s *Server) apiCreateProperty(w http.ResponseWriter, r *http.Request) {
	var p property.Property
	if err := decodeStrict(r, &p); err != nil {
		apiError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}

	created, err := s.props.Create(&p)
	if err != nil {
		storeError(w, err)
		return
	}

	s.record(r, "create_object", fmt.Sprintf("%s (%s)", created.ID, created.Address))
	apiJSON(w, created, http.StatusCreated)
}

func (s *Server) apiGetProperty(w http.ResponseWriter, id string) {
	p, err := s.props.Get(id)
	if err != nil {
		storeError(w, err)
		return
	}
	apiJSON(w, p, http.StatusOK)
}

func (s *Server) apiUpdateProperty(w http.ResponseWriter, r *http.Request, id string) {
	var patch property.Patch
	if err := decodeStrict(r, &patch); err != nil {
		apiError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := s.props.Update(id, patch)
	if err != nil {
		storeError(w, err)
		return
	}

	s.record(r, "update_object", id)
	apiJSON(w, updated, http.StatusOK)
}

func (s *Server) apiDeleteProperty(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.props.Delete(id); err != nil {
		storeError(w, err)
		return
	}

	s.record(r, "delete_object", id)
	apiJSON(w, map[string]interface{}{"id": id, "deleted": true}, http.StatusOK)
}

func (s *Server) apiAttachPhoto(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Photo string `json:"photo"`
	}
	if err := decodeStrict(r, &req); err != nil {
		apiError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Photo) == "" {
		apiError(w, "photo is required", http.StatusBadRequest)
		return
	}

	updated, err := s.props.AttachPhoto(id, req.Photo)
	if err != nil {
		storeError(w, err)
		return
	}

	s.record(r, "add_photo", id)
	apiJSON(w, updated, http.StatusOK)
}

func (s *Server) apiDetachPhoto(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Photo string `json:"photo"`
	}
	if err := decodeStrict(r, &req); err != nil {
		apiError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Photo) == "" {
		apiError(w, "photo is required", http.StatusBadRequest)
		return
	}

	updated, err := s.props.DetachPhoto(id, req.Photo)
	if err != nil {
		storeError(w, err)
		return
	}

	s.record(r, "remove_photo", id)
	apiJSON(w, updated, http.StatusOK)
}

// handleClientsRoute routes /api/clients requests.
func (s *Server) handleClientsRoute(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/clients")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			s.apiListClients(w)
		case http.MethodPost:
			s.apiCreateClient(w, r)
		default:
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if strings.Contains(path, "/") {
		apiError(w, "not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.apiGetClient(w, path)
	case http.MethodPut:
		s.apiUpdateClient(w, r, path)
	case http.MethodDelete:
		s.apiDeleteClient(w, r, path)
	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) apiListClients(w http.ResponseWriter) {
	clients, err := s.clients.List()
	if err != nil {
		storeError(w, err)
		return
	}
	if clients == nil {
		clients = make([]*client.Client, 0)
	}
	apiJSON(w, clients, http.StatusOK)
}

func (s *Server) apiCreateClient(w http.ResponseWriter, r *http.Request) {
	var c client.Client
	if err := decodeStrict(r, &c); err != nil {
		apiError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}

	created, err := s.clients.Create(&c)
	if err != nil {
		storeError(w, err)
		return
	}

	s.record(r, "create_client", fmt.Sprintf("%s (%s)", created.ID, created.Name))
	apiJSON(w, created, http.StatusCreated)
}

func (s *Server) apiGetClient(w http.ResponseWriter, id string) {
	c, err := s.clients.Get(id)
	if err != nil {
		storeError(w, err)
		return
	}
	apiJSON(w, c, http.StatusOK)
}

func (s *Server) apiUpdateClient(w http.ResponseWriter, r *http.Request, id string) {
	var patch client.Patch
	if err := decodeStrict(r, &patch); err != nil {
		apiError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := s.clients.Update(id, patch)
	if err != nil {
		storeError(w, err)
		return
	}

	s.record(r, "update_client", id)
	apiJSON(w, updated, http.StatusOK)
}

func (s *Server) apiDeleteClient(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.clients.Delete(id); err != nil {
		storeError(w, err)
		return
	}

	s.record(r, "delete_client", id)
	apiJSON(w, map[string]interface{}{"id": id, "deleted": true}, http.StatusOK)
}

// handleShowingsRoute routes /api/showings requests. Creation is nested
// under a property; this route reads, reschedules and cancels.
func (s *Server) handleShowingsRoute(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/showings")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		showings, err := s.showings.List()
		if err != nil {
			storeError(w, err)
			return
		}
		if showings == nil {
			showings = make([]*showing.Showing, 0)
		}
		apiJSON(w, showings, http.StatusOK)
		return
	}

	if strings.Contains(path, "/") {
		apiError(w, "not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		sh, err := s.showings.Get(path)
		if err != nil {
			storeError(w, err)
			return
		}
		apiJSON(w, sh, http.StatusOK)
	case http.MethodPut:
		s.apiUpdateShowing(w, r, path)
	case http.MethodDelete:
		s.apiDeleteShowing(w, r, path)
	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) apiListPropertyShowings(w http.ResponseWriter, propertyID string) {
	if _, err := s.props.Get(propertyID); err != nil {
		storeError(w, err)
		return
	}

	showings, err := s.showings.ListByProperty(propertyID)
	if err != nil {
		storeError(w, err)
		return
	}
	if showings == nil {
		showings = make([]*showing.Showing, 0)
	}
	apiJSON(w, showings, http.StatusOK)
}

func (s *Server) apiCreateShowing(w http.ResponseWriter, r *http.Request, propertyID string) {
	var sh showing.Showing
	if err := decodeStrict(r, &sh); err != nil {
		apiError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	sh.PropertyID = propertyID

	created, err := s.showings.Create(&sh)
	if err != nil {
		storeError(w, err)
		return
	}

	s.record(r, "create_showing", fmt.Sprintf("%s for %s", created.ID, propertyID))
	apiJSON(w, created, http.StatusCreated)
}

func (s *Server) apiUpdateShowing(w http.ResponseWriter, r *http.Request, id string) {
	var patch showing.Patch
	if err := decodeStrict(r, &patch); err != nil {
		apiError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := s.showings.Update(id, patch)
	if err != nil {
		storeError(w, err)
		return
	}

	s.record(r, "update_showing", id)
	apiJSON(w, updated, http.StatusOK)
}

func (s *Server) apiDeleteShowing(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.showings.Delete(id); err != nil {
		storeError(w, err)
		return
	}

	s.record(r, "delete_showing", id)
	apiJSON(w, map[string]interface{}{"id": id, "deleted": true}, http.StatusOK)
}
