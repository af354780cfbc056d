// Package session replaces process-wide "logged in" state with an explicit
// value created when a user starts working and discarded when they stop.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrNameRequired is returned when a session is started without a display name.
	ErrNameRequired = errors.New("display name is required")
	// ErrEnded is returned when acting through a session that was already ended.
	ErrEnded = errors.New("session has ended")
)

// Session identifies who is acting for the lifetime of one login.
type Session struct {
	ID          string
	DisplayName string
	// Username is set only for account-backed sessions.
	Username string
	Started  time.Time

	mu    sync.Mutex
	ended bool
}

// New starts a name-only session.
func New(displayName string) (*Session, error) {
	name := norm.NFC.String(strings.TrimSpace(displayName))
	if name == "" {
		return nil, ErrNameRequired
	}
	return &Session{
		ID:          uuid.NewString(),
		DisplayName: name,
		Started:     time.Now(),
	}, nil
}

// NewForAccount starts a session for an authenticated account. The display
// name falls back to the username.
func NewForAccount(username, displayName string) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrNameRequired
	}
	if strings.TrimSpace(displayName) == "" {
		displayName = username
	}
	s, err := New(displayName)
	if err != nil {
		return nil, err
	}
	s.Username = username
	return s, nil
}

// Authenticated reports whether the session was started from an account.
func (s *Session) Authenticated() bool {
	return s != nil && s.Username != ""
}

// End discards the session; later Check calls fail.
func (s *Session) End() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.ended = true
	s.mu.Unlock()
}

// Check returns nil when s can still act.
func (s *Session) Check() error {
	if s == nil {
		return ErrNameRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return ErrEnded
	}
	return nil
}

type contextKey struct{}

// WithContext returns a copy of ctx carrying s.
func WithContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session carried by ctx, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}
