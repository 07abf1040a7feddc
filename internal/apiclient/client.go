// Package apiclient provides an HTTP client for the agency-crm REST
// API, used by the remote CLI commands.
package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lianasoft/agency-crm/internal/audit"
	"github.com/lianasoft/agency-crm/internal/client"
	"github.com/lianasoft/agency-crm/internal/property"
	"github.com/lianasoft/agency-crm/internal/showing"
)

// Client is an HTTP client for the agency-crm API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a new API client.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// LoginResponse is the response from POST /api/auth/login.
type LoginResponse struct {
	Token       string `json:"token"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

// Login exchanges a username/password pair for a token.
func (c *Client) Login(username, password string) (*LoginResponse, error) {
	body := map[string]string{"username": username, "password": password}
	var resp LoginResponse
	if err := c.post("/api/auth/login", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Verify reports the username behind the client's token.
func (c *Client) Verify() (string, error) {
	var resp struct {
		Username string `json:"username"`
	}
	if err := c.get("/api/auth/verify", &resp); err != nil {
		return "", err
	}
	return resp.Username, nil
}

// ListOptions controls filtering for ListProperties.
type ListOptions struct {
	Status   string // available, reserved, sold (empty = all)
	Type     string // apartment, house (empty = all)
	District string
}

// ListProperties returns all properties, optionally filtered.
func (c *Client) ListProperties(opts ListOptions) ([]*property.Property, error) {
	path := "/api/properties"
	params := url.Values{}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Type != "" {
		params.Set("type", opts.Type)
	}
	if opts.District != "" {
		params.Set("district", opts.District)
	}
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var props []*property.Property
	if err := c.get(path, &props); err != nil {
		return nil, err
	}
	return props, nil
}

// GetProperty returns a single property.
func (c *Client) GetProperty(id string) (*property.Property, error) {
	var p property.Property
	if err := c.get("/api/properties/"+url.PathEscape(id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProperty registers a new property.
func (c *Client) CreateProperty(p *property.Property) (*property.Property, error) {
	var created property.Property
	if err := c.post("/api/properties", p, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteProperty removes a property and its showings.
func (c *Client) DeleteProperty(id string) error {
	return c.doDelete("/api/properties/" + url.PathEscape(id))
}

// ListClients returns all clients.
func (c *Client) ListClients() ([]*client.Client, error) {
	var clients []*client.Client
	if err := c.get("/api/clients", &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

// CreateClient registers a new client.
func (c *Client) CreateClient(cl *client.Client) (*client.Client, error) {
	var created client.Client
	if err := c.post("/api/clients", cl, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListShowings returns all scheduled showings.
func (c *Client) ListShowings() ([]*showing.Showing, error) {
	var showings []*showing.Showing
	if err := c.get("/api/showings", &showings); err != nil {
		return nil, err
	}
	return showings, nil
}

// ScheduleShowing books a showing for a property.
func (c *Client) ScheduleShowing(propertyID, date, timeOfDay, notes string) (*showing.Showing, error) {
	body := map[string]string{"date": date, "time": timeOfDay, "notes": notes}
	var sh showing.Showing
	if err := c.post("/api/properties/"+url.PathEscape(propertyID)+"/showings", body, &sh); err != nil {
		return nil, err
	}
	return &sh, nil
}

// ListActions returns the audit log, optionally filtered to one admin.
func (c *Client) ListActions(admin string) ([]*audit.Entry, error) {
	path := "/api/admin-actions"
	if admin != "" {
		path += "?admin=" + url.QueryEscape(admin)
	}
	var entries []*audit.Entry
	if err := c.get(path, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// get performs a GET request and decodes the response.
func (c *Client) get(path string, result interface{}) error {
	req, err := http.NewRequest("GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, result)
}

// post performs a POST request with a JSON body and decodes the response.
func (c *Client) post(path string, body interface{}, result interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequest("POST", c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, result)
}

// doDelete performs a DELETE request.
func (c *Client) doDelete(path string) error {
	req, err := http.NewRequest("DELETE", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, nil)
}

// do executes an HTTP request with auth header and handles errors.
func (c *Client) do(req *http.Request, result interface{}) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			fmt.Printf("warning: closing response body: %v\n", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("server error: %s", http.StatusText(resp.StatusCode))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
