package rxsync

import (
	"time"
	"unicode/utf8"

	"github.com/tOgg1/rxconsole/internal/models"
)

const (
	// RateWindow is the trailing window for the arrival rate.
	RateWindow = 60 * time.Second

	previewLimit = 80
)

// Derived holds the metrics computed from one View.
type Derived struct {
	RatePerMinute int
	Today         float64
	Total         float64
	LastPreview   string
}

// ComputeRate counts messages whose timestamp lies in [now-60s, now]. Messages
// without a parseable timestamp are skipped.
func ComputeRate(messages []models.Message, now time.Time) int {
	count := 0
	for _, msg := range messages {
		ts, ok := msg.Time()
		if !ok {
			continue
		}
		age := now.Sub(ts)
		if age >= 0 && age <= RateWindow {
			count++
		}
	}
	return count
}

// Derive computes display metrics for v at now.
func Derive(v View, now time.Time) Derived {
	d := Derived{
		RatePerMinute: ComputeRate(v.Messages, now),
		Today:         v.Stats.First(models.StatReceivedToday, models.StatSentToday),
		Total:         v.Stats.First(models.StatTotalReceived, models.StatTotalMessages),
		LastPreview:   "-",
	}
	if len(v.Messages) > 0 {
		if text := v.Messages[0].Message; text != "" {
			d.LastPreview = Truncate(text, previewLimit)
		}
	}
	return d
}

// Truncate shortens s to max runes followed by an ellipsis.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "…"
}
