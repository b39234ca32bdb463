package sameday

import (
	"strings"
	"sync"
	"time"
)

// expiryLayouts are the formats seen in expire_at_utc, tried in order.
var expiryLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Session holds the bearer token of one client and its absolute expiry.
// The mutex only protects the fields: two callers that both find the token
// stale will both log in.
type Session struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time
	now       func() time.Time
}

// NewSession creates an empty session. A nil clock defaults to time.Now.
func NewSession(now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{now: now}
}

// Token returns the cached token and whether it can still be used.
func (s *Session) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" || s.expiredLocked() {
		return s.token, false
	}
	return s.token, true
}

// Expired reports whether the session must be renewed before use. A session
// without a recorded expiry is always expired; reaching the exact expiry
// instant is not.
func (s *Session) Expired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiredLocked()
}

func (s *Session) expiredLocked() bool {
	if s.expiresAt.IsZero() {
		return true
	}
	return s.now().UTC().After(s.expiresAt)
}

// ExpiresAt returns the recorded expiry, zero if none.
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

// Store replaces the token and its expiry.
func (s *Session) Store(token string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.expiresAt = expiresAt.UTC()
}

// ParseExpiry parses an expire_at_utc value as UTC. It returns the zero
// time when the value is empty or in an unknown format.
func ParseExpiry(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range expiryLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
