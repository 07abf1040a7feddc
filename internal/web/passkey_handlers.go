package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"

	"github.com/lianasoft/agency-crm/internal/audit"
	"github.com/lianasoft/agency-crm/internal/auth"
	"github.com/lianasoft/agency-crm/internal/logging"
)

// passkeyHandlers holds WebAuthn-related HTTP handlers.
type passkeyHandlers struct {
	wan      *webauthn.WebAuthn
	passkeys *auth.PasskeyStore
	tokens   *auth.TokenService
	users    *auth.UserStore
	actions  *audit.Log

	// In-memory session data for in-flight WebAuthn ceremonies.
	// regSessions is keyed by username for registration.
	// loginSessionData holds a single login ceremony — only one
	// concurrent passkey login is supported (acceptable for a small
	// agency team).
	mu               sync.Mutex
	regSessions      map[string]*webauthn.SessionData
	loginSessionData *webauthn.SessionData
}

func newPasskeyHandlers(cfg auth.Config, passkeys *auth.PasskeyStore, tokens *auth.TokenService, users *auth.UserStore, actions *audit.Log) (*passkeyHandlers, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	wan, err := webauthn.New(&webauthn.Config{
		RPDisplayName: "Agency CRM",
		RPID:          parsed.Hostname(),
		RPOrigins:     []string{cfg.BaseURL},
	})
	if err != nil {
		return nil, err
	}

	return &passkeyHandlers{
		wan:         wan,
		passkeys:    passkeys,
		tokens:      tokens,
		users:       users,
		actions:     actions,
		regSessions: make(map[string]*webauthn.SessionData),
	}, nil
}

// handleCredentialsRoute lists or removes the caller's passkeys.
func (h *passkeyHandlers) handleCredentialsRoute(w http.ResponseWriter, r *http.Request) {
	username := auth.UsernameFromContext(r)

	switch r.Method {
	case http.MethodGet:
		stored, err := h.passkeys.ListByUsername(username)
		if err != nil {
			apiError(w, "listing passkeys: "+err.Error(), http.StatusInternalServerError)
			return
		}
		type passkeyInfo struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}
		result := make([]passkeyInfo, len(stored))
		for i, sc := range stored {
			result[i] = passkeyInfo{ID: sc.ID, Name: sc.Name}
		}
		apiJSON(w, result, http.StatusOK)

	case http.MethodDelete:
		var req struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
			apiError(w, "id is required", http.StatusBadRequest)
			return
		}
		if err := h.passkeys.Delete(req.ID, username); err != nil {
			apiError(w, "passkey not found", http.StatusNotFound)
			return
		}
		apiJSON(w, map[string]interface{}{"id": req.ID, "deleted": true}, http.StatusOK)

	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleBeginRegistration starts passkey registration for the
// authenticated admin.
func (h *passkeyHandlers) handleBeginRegistration(w http.ResponseWriter, r *http.Request) {
	username := auth.UsernameFromContext(r)

	creds, err := h.passkeys.WebAuthnCredentials(username)
	if err != nil {
		slog.Error("loading credentials", "err", err)
		apiError(w, "internal error", http.StatusInternalServerError)
		return
	}

	user := auth.NewPasskeyUser(username, creds)

	// Exclude existing credentials so the admin doesn't re-register
	// the same key
	excludeList := make([]protocol.CredentialDescriptor, len(creds))
	for i, c := range creds {
		excludeList[i] = c.Descriptor()
	}

	creation, session, err := h.wan.BeginRegistration(user,
		webauthn.WithExclusions(excludeList),
	)
	if err != nil {
		slog.Error("beginning registration", "err", err)
		apiError(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.mu.Lock()
	h.regSessions[username] = session
	h.mu.Unlock()

	apiJSON(w, creation, http.StatusOK)
}

// handleFinishRegistration completes passkey registration.
func (h *passkeyHandlers) handleFinishRegistration(w http.ResponseWriter, r *http.Request) {
	username := auth.UsernameFromContext(r)

	h.mu.Lock()
	session, ok := h.regSessions[username]
	if ok {
		delete(h.regSessions, username)
	}
	h.mu.Unlock()

	if !ok {
		apiError(w, "no registration in progress", http.StatusBadRequest)
		return
	}

	creds, err := h.passkeys.WebAuthnCredentials(username)
	if err != nil {
		slog.Error("loading credentials", "err", err)
		apiError(w, "internal error", http.StatusInternalServerError)
		return
	}

	user := auth.NewPasskeyUser(username, creds)

	credential, err := h.wan.FinishRegistration(user, *session, r)
	if err != nil {
		slog.Error("finishing registration", "err", err)
		apiError(w, "registration failed", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		name = "Passkey"
	}

	if err := h.passkeys.Save(username, name, credential); err != nil {
		slog.Error("saving credential", "err", err)
		apiError(w, "internal error", http.StatusInternalServerError)
		return
	}

	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// handleBeginLogin starts passkey login (discoverable/conditional).
func (h *passkeyHandlers) handleBeginLogin(w http.ResponseWriter, r *http.Request) {
	assertion, session, err := h.wan.BeginDiscoverableLogin()
	if err != nil {
		slog.Error("beginning passkey login", "err", err)
		apiError(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.mu.Lock()
	h.loginSessionData = session
	h.mu.Unlock()

	apiJSON(w, assertion, http.StatusOK)
}

// handleFinishLogin completes passkey login and issues a token.
func (h *passkeyHandlers) handleFinishLogin(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	session := h.loginSessionData
	h.loginSessionData = nil
	h.mu.Unlock()

	if session == nil {
		apiError(w, "no login in progress", http.StatusBadRequest)
		return
	}

	var loggedIn string

	handler := func(rawID, userHandle []byte) (webauthn.User, error) {
		// userHandle is the WebAuthnID (sha256 of username). Try all
		// admin usernames to find the matching account.
		usernames, err := h.users.Usernames()
		if err != nil {
			return nil, err
		}

		for _, username := range usernames {
			user := auth.NewPasskeyUser(username, nil)
			if string(user.WebAuthnID()) == string(userHandle) {
				creds, err := h.passkeys.WebAuthnCredentials(username)
				if err != nil {
					return nil, err
				}
				loggedIn = username
				return auth.NewPasskeyUser(username, creds), nil
			}
		}

		return nil, protocol.ErrBadRequest.WithDetails("unknown user")
	}

	_, err := h.wan.FinishDiscoverableLogin(handler, *session, r)
	if err != nil {
		slog.Error("finishing passkey login", "err", err)
		apiError(w, "login failed", http.StatusUnauthorized)
		return
	}

	token, err := h.tokens.Issue(loggedIn)
	if err != nil {
		apiError(w, "issuing credential: "+err.Error(), http.StatusInternalServerError)
		return
	}

	auth.SetCookie(w, token)

	if _, err := h.actions.Record(loggedIn, "login", "passkey login", logging.ClientIP(r)); err != nil {
		slog.Error("recording login", "err", err)
	}

	slog.Info("login success", "username", loggedIn, "method", "passkey")
	apiJSON(w, map[string]string{"status": "ok", "token": token, "username": loggedIn}, http.StatusOK)
}
