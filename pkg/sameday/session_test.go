package sameday_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tournevent/sameday/pkg/sameday"
)

func TestSession_EmptyIsExpired(t *testing.T) {
	s := sameday.NewSession(nil)

	token, ok := s.Token()
	assert.False(t, ok)
	assert.Empty(t, token)
	assert.True(t, s.Expired())
}

func TestSession_Token(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := sameday.NewSession(func() time.Time { return now })

	s.Store("T1", now.Add(time.Hour))
	token, ok := s.Token()
	assert.True(t, ok)
	assert.Equal(t, "T1", token)

	// The exact expiry instant is still valid.
	s.Store("T2", now)
	_, ok = s.Token()
	assert.True(t, ok)

	s.Store("T3", now.Add(-time.Second))
	token, ok = s.Token()
	assert.False(t, ok)
	assert.Equal(t, "T3", token)
}

func TestSession_NoExpiryIsStale(t *testing.T) {
	s := sameday.NewSession(nil)
	s.Store("T1", time.Time{})

	_, ok := s.Token()
	assert.False(t, ok)
}

func TestParseExpiry(t *testing.T) {
	want := time.Date(2024, 5, 1, 13, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value string
		want  time.Time
	}{
		{"rfc3339", "2024-05-01T13:30:00Z", want},
		{"rfc3339 offset", "2024-05-01T16:30:00+03:00", want},
		{"iso without zone", "2024-05-01T13:30:00", want},
		{"seconds", "2024-05-01 13:30:00", want},
		{"minutes", "2024-05-01 13:30", want},
		{"empty", "", time.Time{}},
		{"garbage", "tomorrow", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sameday.ParseExpiry(tt.value)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}
