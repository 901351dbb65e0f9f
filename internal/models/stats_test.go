package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatsDecodeKeepsNumericFields(t *testing.T) {
	var stats Stats
	require.NoError(t, json.Unmarshal([]byte(`{"total_received": 1200, "received_today": 12, "node": "lab-1", "ratio": 0.5, "missing": null}`), &stats))

	require.Equal(t, []string{"ratio", "received_today", "total_received"}, stats.Names())
	require.Equal(t, 1200.0, stats.Get(StatTotalReceived))
	require.Equal(t, 0.0, stats.Get("node"))

	_, ok := stats.Lookup("missing")
	require.False(t, ok)
}

func TestStatsNullAndEmpty(t *testing.T) {
	var stats Stats
	require.NoError(t, json.Unmarshal([]byte(`null`), &stats))
	require.Equal(t, 0, stats.Len())
	require.Equal(t, 0.0, stats.Get(StatTotalReceived))

	var zero Stats
	require.Equal(t, 0.0, zero.First(StatReceivedToday, StatSentToday))
	out, err := json.Marshal(zero)
	require.NoError(t, err)
	require.Equal(t, "{}", string(out))
}

func TestStatsFirstFallsThroughMissingFields(t *testing.T) {
	stats := NewStats(map[string]float64{StatSentToday: 4, StatTotalMessages: 0})
	require.Equal(t, 4.0, stats.First(StatReceivedToday, StatSentToday))
	require.Equal(t, 0.0, stats.First(StatTotalReceived, StatTotalMessages))

	stats = NewStats(map[string]float64{StatReceivedToday: 0, StatSentToday: 9})
	require.Equal(t, 0.0, stats.First(StatReceivedToday, StatSentToday))
}

func TestStatsMapIsCopy(t *testing.T) {
	stats := NewStats(map[string]float64{"a": 1})
	m := stats.Map()
	m["a"] = 5
	require.Equal(t, 1.0, stats.Get("a"))
}
