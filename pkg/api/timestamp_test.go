package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTimestamp(t *testing.T) {
	ms := time.Date(2024, 11, 5, 8, 30, 15, 42_000_000, time.UTC).UnixMilli()
	assert.Equal(t, "2024-11-05T08:30:15.042Z", FormatTimestamp(ms))

	// Доли миллисекунды отбрасываются
	ts := time.Date(2024, 11, 5, 8, 30, 15, 42_999_999, time.FixedZone("CET", 3600))
	assert.Equal(t, "2024-11-05T07:30:15.042Z", FormatTime(ts))
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int64
		wantErr bool
	}{
		{name: "wire format", in: "2024-11-05T08:30:15.042Z", want: 1730795415042},
		{name: "offset", in: "2024-11-05T09:30:15.042+01:00", want: 1730795415042},
		{name: "no fraction", in: "2024-11-05T08:30:15Z", want: 1730795415000},
		{name: "microseconds", in: "2024-11-05T08:30:15.042999Z", want: 1730795415042},
		{name: "postgres style", in: "2024-11-05T08:30:15.042+00:00", want: 1730795415042},
		{name: "empty", in: "", wantErr: true},
		{name: "garbage", in: "yesterday", wantErr: true},
		{name: "date only", in: "2024-11-05", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	for _, ms := range []int64{0, 1, 1_700_000_000_000, 1_700_000_000_999} {
		got, err := ParseTimestamp(FormatTimestamp(ms))
		require.NoError(t, err)
		assert.Equal(t, ms, got)
	}
}

func TestIsKnownTable(t *testing.T) {
	for _, name := range Tables {
		assert.True(t, IsKnownTable(name))
	}
	assert.False(t, IsKnownTable("users"))
	assert.False(t, IsKnownTable(""))
}
