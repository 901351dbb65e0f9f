package rxsync

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/rxconsole/internal/models"
)

func msgAt(ts time.Time) models.Message {
	return models.Message{Timestamp: models.NewToken(ts.Format(time.RFC3339Nano))}
}

func TestComputeRateWindowBoundaries(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	messages := []models.Message{
		msgAt(now),
		msgAt(now.Add(-RateWindow)),
		msgAt(now.Add(-RateWindow - time.Millisecond)),
		msgAt(now.Add(time.Second)),
		msgAt(now.Add(-30 * time.Second)),
	}

	// Inclusive at 0 and 60000ms, exclusive beyond and in the future.
	require.Equal(t, 3, ComputeRate(messages, now))
	require.Equal(t, ComputeRate(messages, now), ComputeRate(messages, now))
}

func TestComputeRateSkipsUnparsableTimestamps(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	messages := []models.Message{
		{Timestamp: models.NewToken("not a time"), Message: "kept"},
		{Message: "no timestamp"},
		{Timestamp: models.IntToken(now.Add(-time.Second).UnixMilli())},
	}
	require.Equal(t, 1, ComputeRate(messages, now))
	require.Equal(t, 0, ComputeRate(nil, now))
}

func TestDeriveUsesStatsFallbacksAndPreview(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	long := strings.Repeat("é", 81)
	v := View{
		Messages: []models.Message{msgAt(now)},
		Stats:    models.NewStats(map[string]float64{models.StatSentToday: 3, models.StatTotalMessages: 900}),
	}
	v.Messages[0].Message = long

	d := Derive(v, now)
	require.Equal(t, 1, d.RatePerMinute)
	require.Equal(t, 3.0, d.Today)
	require.Equal(t, 900.0, d.Total)
	require.Equal(t, strings.Repeat("é", 80)+"…", d.LastPreview)
}

func TestDeriveEmptyView(t *testing.T) {
	d := Derive(View{}, time.Now())
	require.Equal(t, Derived{LastPreview: "-"}, d)

	d = Derive(View{Messages: []models.Message{{Message: ""}}}, time.Now())
	require.Equal(t, "-", d.LastPreview)
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "abc", Truncate("abc", 3))
	require.Equal(t, "ab…", Truncate("abc", 2))
	require.Equal(t, "abc", Truncate("abc", 0))
}
