package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// TokenValidity is how long an issued token is accepted.
const TokenValidity = 24 * time.Hour

// Claims are the verified contents of a token.
type Claims struct {
	Username string
	IssuedAt time.Time
}

// envelope is the wire format: base64 of this JSON document.
// The signature is HMAC-SHA256 over "username:timestamp" (hex encoded).
type envelope struct {
	Username  string `json:"username"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
	Signature string `json:"signature"`
}

// TokenService issues and verifies signed, expiring credentials.
// Tokens are stateless: there is no revocation list, logout simply
// discards the credential on the client side.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService creates a token service with the configured secret.
// An empty secret falls back to a built-in literal and logs a warning:
// the fallback is a deployment hazard, not an acceptable production setup.
func NewTokenService(secret string) *TokenService {
	if secret == "" {
		slog.Warn("CRM_AUTH_SECRET not set, using built-in fallback secret; tokens are forgeable until a real secret is configured")
		secret = fallbackSecret
	}
	return &TokenService{secret: []byte(secret), now: time.Now}
}

// Issue produces a credential embedding the username and issuance time.
func (s *TokenService) Issue(username string) (string, error) {
	if username == "" {
		return "", fmt.Errorf("username is required")
	}

	ts := s.now().UnixMilli()
	env := envelope{
		Username:  username,
		Timestamp: ts,
		Signature: s.sign(username, ts),
	}

	data, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("encoding token: %w", err)
	}

	return base64.StdEncoding.EncodeToString(data), nil
}

// Verify decodes a credential and checks its signature and age.
// It returns the embedded claims, or an error if the token is malformed,
// tampered with, or older than TokenValidity.
func (s *TokenService) Verify(token string) (*Claims, error) {
	data, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid token encoding")
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("invalid token payload")
	}
	if env.Username == "" || env.Timestamp == 0 || env.Signature == "" {
		return nil, fmt.Errorf("incomplete token")
	}

	expected := s.sign(env.Username, env.Timestamp)
	if !hmac.Equal([]byte(env.Signature), []byte(expected)) {
		return nil, fmt.Errorf("invalid token signature")
	}

	issued := time.UnixMilli(env.Timestamp)
	if s.now().Sub(issued) > TokenValidity {
		return nil, fmt.Errorf("token expired")
	}

	return &Claims{Username: env.Username, IssuedAt: issued}, nil
}

// sign computes the hex HMAC-SHA256 of "username:timestamp".
func (s *TokenService) sign(username string, timestamp int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s:%d", username, timestamp)
	return hex.EncodeToString(mac.Sum(nil))
}
