// Package testutil provides shared helpers for rxconsole tests.
package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// DefaultStats is the stats body served by a new Backend.
const DefaultStats = `{"received_today":1234,"total_received":56789,"note":"ignored"}`

// Backend is a fake message API serving /messages/ and /stats/.
type Backend struct {
	Server *httptest.Server

	mu       sync.Mutex
	messages string
	stats    string
	status   int
	queries  []string
	headers  []http.Header
}

// NewBackend starts a backend that serves RecentMessages and DefaultStats.
// The server is closed when the test ends.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	SkipIfNoNetwork(t)

	b := &Backend{
		messages: RecentMessages(time.Now()),
		stats:    DefaultStats,
		status:   http.StatusOK,
	}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Server.Close)
	return b
}

// RecentMessages returns two messages, newest first: one five seconds
// before now and one from 2024.
func RecentMessages(now time.Time) string {
	return fmt.Sprintf(`[
		{"id":2,"timestamp":%q,"device":"RX1","msg_id":7,"message":"hello\nworld"},
		{"id":1,"timestamp":"2024-01-01T00:00:00Z","device":"RX2","msg_id":6,"message":"older"}
	]`, now.UTC().Add(-5*time.Second).Format(time.RFC3339))
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	status, messages, stats := b.status, b.messages, b.stats
	if r.URL.Path == "/messages/" {
		b.queries = append(b.queries, r.URL.RawQuery)
	}
	b.headers = append(b.headers, r.Header.Clone())
	b.mu.Unlock()

	if status != http.StatusOK {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/messages/":
		_, _ = io.WriteString(w, messages)
	case "/stats/":
		_, _ = io.WriteString(w, stats)
	default:
		http.NotFound(w, r)
	}
}

// URL is the base URL to configure clients with.
func (b *Backend) URL() string { return b.Server.URL }

// SetMessages replaces the /messages/ body.
func (b *Backend) SetMessages(raw string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = raw
}

// SetStats replaces the /stats/ body.
func (b *Backend) SetStats(raw string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats = raw
}

// SetStatus makes every endpoint answer with code and no body.
func (b *Backend) SetStatus(code int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = code
}

// Queries returns the raw query strings seen on /messages/.
func (b *Backend) Queries() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.queries...)
}

// Headers returns the request headers seen on every endpoint.
func (b *Backend) Headers() []http.Header {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]http.Header(nil), b.headers...)
}
