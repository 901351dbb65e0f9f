package rxsync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tOgg1/rxconsole/internal/logging"
	"github.com/tOgg1/rxconsole/internal/models"
	"github.com/tOgg1/rxconsole/internal/rxclient"
)

// snapshotFor builds a snapshot whose messages and stats both carry n, so a
// mixed pair is detectable.
func snapshotFor(n int, q models.QueryParams) rxclient.Snapshot {
	return rxclient.Snapshot{
		Messages: []models.Message{{
			ID:      models.IntToken(int64(n)),
			Device:  q.Role,
			Message: fmt.Sprintf("call-%d", n),
		}},
		Stats:     models.NewStats(map[string]float64{"cycle": float64(n), "limit": float64(q.Limit)}),
		CycleID:   fmt.Sprintf("cycle-%d", n),
		FetchedAt: time.Date(2024, 1, 1, 0, 0, n, 0, time.UTC),
	}
}

type fakeFetcher struct {
	mu    sync.Mutex
	calls []models.QueryParams
	gates map[int]chan struct{}
	errs  map[int]error
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{gates: make(map[int]chan struct{}), errs: make(map[int]error)}
}

// gate makes call n block until the returned channel is closed.
func (f *fakeFetcher) gate(n int) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[n] = ch
	return ch
}

func (f *fakeFetcher) failCall(n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[n] = err
}

func (f *fakeFetcher) Fetch(ctx context.Context, q models.QueryParams) (rxclient.Snapshot, error) {
	f.mu.Lock()
	n := len(f.calls)
	f.calls = append(f.calls, q)
	gate := f.gates[n]
	err := f.errs[n]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return rxclient.Snapshot{}, ctx.Err()
		}
	}
	if err != nil {
		return rxclient.Snapshot{}, err
	}
	return snapshotFor(n, q), nil
}

func (f *fakeFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeFetcher) call(n int) models.QueryParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[n]
}

type fakeTicker struct {
	ch      chan time.Time
	period  time.Duration
	stopped atomic.Bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }
func (t *fakeTicker) Stop()               { t.stopped.Store(true) }

type fakeTickers struct {
	mu      sync.Mutex
	tickers []*fakeTicker
}

func (f *fakeTickers) New(d time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{ch: make(chan time.Time, 1), period: d}
	f.tickers = append(f.tickers, t)
	return t
}

func (f *fakeTickers) created() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tickers)
}

func (f *fakeTickers) active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.tickers {
		if !t.stopped.Load() {
			n++
		}
	}
	return n
}

// fireAll delivers a tick on every ticker ever created, stopped or not.
func (f *fakeTickers) fireAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tickers {
		select {
		case t.ch <- time.Now():
		default:
		}
	}
}

var errMixed = errors.New("messages and stats from different cycles")

func formatCycle(v float64) string {
	return strconv.FormatInt(int64(v), 10)
}

func rxStoreEmpty() rxclient.Snapshot {
	return rxclient.Snapshot{Messages: nil, Stats: models.NewStats(nil)}
}

// loggingFetcher logs through the logger carried by the fetch context.
type loggingFetcher struct {
	*fakeFetcher
}

func (f loggingFetcher) Fetch(ctx context.Context, q models.QueryParams) (rxclient.Snapshot, error) {
	logger := logging.FromContext(ctx, zerolog.Nop())
	logger.Info().Msg("fetching")
	return f.fakeFetcher.Fetch(ctx, q)
}

// lockedBuffer is a bytes.Buffer safe for concurrent log writers.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
