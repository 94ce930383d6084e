package session

import (
	"strings"

	"github.com/anonto42/quartfeed/pkg/security"
)

// Data is the persisted part of a session.
type Data struct {
	UserID    uint     `json:"user_id,omitempty"`
	Username  string   `json:"username,omitempty"`
	CSRFToken string   `json:"csrf_token,omitempty"`
	Next      string   `json:"next,omitempty"`
	Flashes   []string `json:"flashes,omitempty"`
}

// Session is the per-request view of a stored session. Every mutation marks
// it modified so the middleware persists it before the response is written.
type Session struct {
	id       string
	oldID    string
	data     Data
	modified bool
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) UserID() uint {
	return s.data.UserID
}

func (s *Session) Username() string {
	return s.data.Username
}

func (s *Session) LoggedIn() bool {
	return s.data.UserID != 0
}

// Login records the authenticated user. The caller is expected to have
// regenerated the session id first.
func (s *Session) Login(userID uint, username string) {
	s.data.UserID = userID
	s.data.Username = username
	s.modified = true
}

func (s *Session) Logout() {
	if !s.LoggedIn() && s.data.Username == "" {
		return
	}
	s.data.UserID = 0
	s.data.Username = ""
	s.modified = true
}

// Regenerate moves the session to a fresh id; the old id is deleted from the
// store when the session is saved.
func (s *Session) Regenerate(newID string) {
	if s.oldID == "" {
		s.oldID = s.id
	}
	s.id = newID
	s.modified = true
}

func (s *Session) AddFlash(msg string) {
	s.data.Flashes = append(s.data.Flashes, msg)
	s.modified = true
}

// Flashes returns and clears the queued flash messages.
func (s *Session) Flashes() []string {
	if len(s.data.Flashes) == 0 {
		return nil
	}
	flashes := s.data.Flashes
	s.data.Flashes = nil
	s.modified = true
	return flashes
}

// CSRFToken returns the session's CSRF token, creating one if needed.
func (s *Session) CSRFToken() string {
	if s.data.CSRFToken == "" {
		s.data.CSRFToken = security.NewCSRFToken()
		s.modified = true
	}
	return s.data.CSRFToken
}

// RotateCSRFToken discards the current token; the next form gets a new one.
func (s *Session) RotateCSRFToken() {
	if s.data.CSRFToken == "" {
		return
	}
	s.data.CSRFToken = ""
	s.modified = true
}

// ValidCSRFToken reports whether token matches the session's token.
func (s *Session) ValidCSRFToken(token string) bool {
	return security.TokensEqual(s.data.CSRFToken, token)
}

// SetNext remembers where to send the user after login. Only local paths
// are accepted.
func (s *Session) SetNext(next string) bool {
	if !IsSafeRedirect(next) {
		return false
	}
	s.data.Next = next
	s.modified = true
	return true
}

// PopNext returns and clears the stored post-login target.
func (s *Session) PopNext() string {
	next := s.data.Next
	if next != "" {
		s.data.Next = ""
		s.modified = true
	}
	return next
}

// IsSafeRedirect accepts absolute paths on this host only.
func IsSafeRedirect(target string) bool {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return false
	}
	return !strings.ContainsAny(target, "\\\r\n")
}
