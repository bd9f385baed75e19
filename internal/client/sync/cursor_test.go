package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAfterCursor(t *testing.T) {
	cursor := Position{UpdatedAtMillis: 1000, RemoteID: "m"}

	tests := []struct {
		name     string
		remoteID string
		ts       int64
		want     bool
	}{
		{name: "later timestamp", ts: 1001, remoteID: "a", want: true},
		{name: "earlier timestamp", ts: 999, remoteID: "z", want: false},
		{name: "same timestamp greater id", ts: 1000, remoteID: "n", want: true},
		{name: "same timestamp smaller id", ts: 1000, remoteID: "l", want: false},
		{name: "exact cursor row", ts: 1000, remoteID: "m", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAfterCursor(tt.ts, tt.remoteID, cursor))
		})
	}
}

func TestPosition_After(t *testing.T) {
	a := Position{UpdatedAtMillis: 5, RemoteID: "b"}
	b := Position{UpdatedAtMillis: 5, RemoteID: "a"}

	assert.True(t, a.After(b))
	assert.False(t, b.After(a))
	assert.False(t, a.After(a))
}
