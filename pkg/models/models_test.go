package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageDelta(t *testing.T) {
	tests := []struct {
		name     string
		start    Counters
		end      Counters
		wantDown float64
		wantUp   float64
	}{
		{
			name:     "normal growth",
			start:    Counters{DownloadMB: 100.0, UploadMB: 20.0},
			end:      Counters{DownloadMB: 150.5, UploadMB: 35.25},
			wantDown: 50.5,
			wantUp:   15.25,
		},
		{
			name:     "counter reset clamps to end value",
			start:    Counters{DownloadMB: 500.0, UploadMB: 100.0},
			end:      Counters{DownloadMB: 10.0, UploadMB: 5.0},
			wantDown: 10.0,
			wantUp:   5.0,
		},
		{
			name:     "reset in one direction only",
			start:    Counters{DownloadMB: 500.0, UploadMB: 100.0},
			end:      Counters{DownloadMB: 620.75, UploadMB: 2.5},
			wantDown: 120.75,
			wantUp:   2.5,
		},
		{
			name:     "no traffic",
			start:    Counters{DownloadMB: 42.0, UploadMB: 13.0},
			end:      Counters{DownloadMB: 42.0, UploadMB: 13.0},
			wantDown: 0,
			wantUp:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			down, up := UsageDelta(tt.start, tt.end)
			assert.InDelta(t, tt.wantDown, down, 0.001)
			assert.InDelta(t, tt.wantUp, up, 0.001)
			assert.GreaterOrEqual(t, down, 0.0)
			assert.GreaterOrEqual(t, up, 0.0)
		})
	}
}

func TestRoundMB(t *testing.T) {
	assert.InDelta(t, 12.35, RoundMB(12.3456), 0.0001)
	assert.InDelta(t, 0.0, RoundMB(0.0001), 0.0001)
	assert.InDelta(t, 100.0, RoundMB(100.0), 0.0001)
}

func TestTimestampJSONRoundTrip(t *testing.T) {
	ts := At(time.Date(2025, 3, 14, 15, 9, 26, 535897932, time.UTC))

	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2025-03-14 15:09:26"`, string(data))

	var back Timestamp
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, ts.Equal(back.Time))
}

func TestTimestampScan(t *testing.T) {
	var ts Timestamp

	require.NoError(t, ts.Scan("2025-01-02 03:04:05"))
	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), ts.Time)

	require.NoError(t, ts.Scan(time.Date(2025, 6, 7, 8, 9, 10, 11, time.UTC)))
	assert.Equal(t, time.Date(2025, 6, 7, 8, 9, 10, 0, time.UTC), ts.Time)

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())

	assert.Error(t, ts.Scan(12345))
}

func TestObservationHasMAC(t *testing.T) {
	assert.False(t, (&Observation{}).HasMAC())
	assert.False(t, (&Observation{MAC: Unknown}).HasMAC())
	assert.True(t, (&Observation{MAC: "00:1E:65:AA:BB:CC"}).HasMAC())
}
