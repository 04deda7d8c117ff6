package storage

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// SessionUser is the signed-in account as reported at login.
type SessionUser struct {
	ID       int64    `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Phone    string   `json:"phone,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

type Session struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	TokenType    string      `json:"token_type"`
	ExpiresAt    string      `json:"expires_at,omitempty"`
	User         SessionUser `json:"user"`
	LoggedInAt   string      `json:"logged_in_at"`
}

func LoadSession() (*Session, error) {
	path, err := SessionPath()
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("session path is a directory: %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var session Session
	if err := json.NewDecoder(file).Decode(&session); err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	return &session, nil
}

func SaveSession(session *Session) error {
	if _, err := ensureConfigDir(); err != nil {
		return err
	}
	path, err := SessionPath()
	if err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(session)
}

func ClearSession() error {
	path, err := SessionPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return nil
}

// Expired reports whether the access token is past its expiry. Sessions
// without a recorded expiry are left to the backend to reject.
func (s *Session) Expired(now time.Time) bool {
	if s.ExpiresAt == "" {
		return false
	}
	exp, err := time.Parse(time.RFC3339, s.ExpiresAt)
	if err != nil {
		return true
	}
	return now.After(exp)
}

func (s *Session) IsAdmin() bool {
	for _, role := range s.User.Roles {
		if strings.TrimPrefix(strings.ToUpper(role), "ROLE_") == "ADMIN" {
			return true
		}
	}
	return false
}

// SessionTokens hands the stored access token to the API client.
type SessionTokens struct {
	Now func() time.Time
}

func (t SessionTokens) Token() string {
	session, err := LoadSession()
	if err != nil || session == nil {
		return ""
	}
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}
	if session.Expired(now()) {
		return ""
	}
	return session.AccessToken
}

func (t SessionTokens) User() *SessionUser {
	session, err := LoadSession()
	if err != nil || session == nil || session.AccessToken == "" {
		return nil
	}
	user := session.User
	return &user
}

// TokenExpiry reads the exp claim of a JWT access token without verifying it.
func TokenExpiry(token string) (time.Time, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return time.Time{}, false
	}
	var claims struct {
		Exp int64 `json:"exp"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil || claims.Exp == 0 {
		return time.Time{}, false
	}
	return time.Unix(claims.Exp, 0).UTC(), true
}
