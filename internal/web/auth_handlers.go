package web

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/lianasoft/agency-crm/internal/auth"
	"github.com/lianasoft/agency-crm/internal/logging"
)

// handleAuthRoute routes /api/auth requests.
func (s *Server) handleAuthRoute(w http.ResponseWriter, r *http.Request) {
	switch strings.TrimPrefix(r.URL.Path, "/api/auth/") {
	case "login":
		s.handleLogin(w, r)
	case "logout":
		s.handleLogout(w, r)
	case "verify":
		s.handleVerify(w, r)
	case "profile":
		s.handleProfile(w, r)
	case "register":
		s.handleRegister(w, r)
	default:
		apiError(w, "not found", http.StatusNotFound)
	}
}

// handleLogin authenticates a username/password pair and issues a token.
// The failure message never says whether the username or the password
// was wrong.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ip := logging.ClientIP(r)
	if s.limiter.Limited(ip) {
		apiError(w, "too many failed attempts, try again later", http.StatusTooManyRequests)
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeStrict(r, &req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	user, err := s.users.Authenticate(req.Username, req.Password)
	if err != nil {
		s.limiter.RecordFailure(ip)
		slog.Warn("login failed", "username", req.Username, "ip", ip)
		apiError(w, "invalid username or password", http.StatusUnauthorized)
		return
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		apiError(w, "issuing credential: "+err.Error(), http.StatusInternalServerError)
		return
	}

	auth.SetCookie(w, token)

	if _, err := s.actions.Record(user.Username, "login", "successful login", ip); err != nil {
		slog.Error("recording login", "err", err)
	}

	apiJSON(w, map[string]string{
		"token":       token,
		"username":    user.Username,
		"displayName": user.Name,
	}, http.StatusOK)
}

// handleLogout clears the credential cookie. Tokens are stateless, so
// there is nothing server-side to revoke.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.record(r, "logout", "")
	auth.ClearCookie(w)
	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// handleVerify reports the username behind a valid credential. The
// access gate has already rejected invalid ones.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	apiJSON(w, map[string]string{"username": auth.UsernameFromContext(r)}, http.StatusOK)
}

// handleProfile lets an admin update their own record.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var patch auth.UserPatch
	if err := decodeStrict(r, &patch); err != nil {
		apiError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}

	username := auth.UsernameFromContext(r)
	user, err := s.users.Update(username, patch)
	if err != nil {
		storeError(w, err)
		return
	}

	details := "profile updated"
	if patch.Password != nil {
		details = "profile updated (password changed)"
	}
	s.record(r, "update_profile", details)
	apiJSON(w, user, http.StatusOK)
}

// handleRegister creates a new admin account. Only an authenticated
// admin can register another one.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Email    string `json:"email"`
	}
	if err := decodeStrict(r, &req); err != nil {
		apiError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}

	user, err := s.users.Add(req.Username, req.Password, req.Name, req.Email)
	if err != nil {
		storeError(w, err)
		return
	}

	s.record(r, "register_admin", user.Username)
	apiJSON(w, user, http.StatusCreated)
}
