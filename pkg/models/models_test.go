package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModerationLogEntry(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		action       Action
		reason       string
		duration     time.Duration
		wantReason   string
		wantDuration *int64
	}{
		{"ban keeps reason", ActionBan, "spam", time.Hour, "spam", nil},
		{"empty reason defaults", ActionKick, "", 0, DefaultReason, nil},
		{"timeout stores ms", ActionTimeout, "flood", 10 * time.Minute, "flood", ptr(int64(600000))},
		{"warn drops duration", ActionWarn, "rude", time.Minute, "rude", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewModerationLogEntry(tt.action, "g", "u", "m", tt.reason, tt.duration, now)
			assert.Equal(t, tt.action, e.Action)
			assert.Equal(t, tt.wantReason, e.Reason)
			assert.Equal(t, tt.wantDuration, e.DurationMs)
			assert.Equal(t, now, e.CreatedAt)
			assert.False(t, e.ID.IsZero())
		})
	}
}

func TestNewWarning(t *testing.T) {
	now := time.Now()
	w := NewWarning("g", "u", "m", "reason", now)
	require.NotNil(t, w)
	assert.True(t, w.Active)
	assert.False(t, w.ID.IsZero())
	assert.Equal(t, now, w.CreatedAt)
}

func TestActionValid(t *testing.T) {
	for _, a := range []Action{ActionKick, ActionBan, ActionTimeout, ActionWarn, ActionUnban} {
		assert.True(t, a.Valid(), a)
	}
	assert.False(t, Action("mute").Valid())
}

func ptr[T any](v T) *T { return &v }
