package rxsync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tOgg1/rxconsole/internal/logging"
	"github.com/tOgg1/rxconsole/internal/models"
	"github.com/tOgg1/rxconsole/internal/rxclient"
)

// DefaultInterval is the live polling period.
const DefaultInterval = 3 * time.Second

// Fetcher performs one poll cycle. ctx carries the poll's logger; see
// logging.FromContext.
type Fetcher interface {
	Fetch(ctx context.Context, q models.QueryParams) (rxclient.Snapshot, error)
}

// Ticker is the recurring timer driving live mode.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a Ticker with period d.
type TickerFactory func(d time.Duration) Ticker

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker wraps time.NewTicker.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Options configures a Scheduler.
type Options struct {
	Interval  time.Duration
	Query     models.QueryParams
	NewTicker TickerFactory
	Now       func() time.Time
}

// Status is a point-in-time description of the scheduler for display.
type Status struct {
	Mode        models.SyncMode
	Query       models.QueryParams
	InFlight    int
	LastError   error
	LastErrorAt time.Time
}

// Scheduler drives poll cycles into a Store. While live it owns exactly one
// ticker handle; every fetch runs on its own goroutine and the last one to
// complete wins.
type Scheduler struct {
	fetcher   Fetcher
	store     *Store
	interval  time.Duration
	newTicker TickerFactory
	now       func() time.Time
	logger    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	query       models.QueryParams
	handle      *pollHandle
	closed      bool
	inFlight    int
	lastErr     error
	lastErrAt   time.Time
	pollsIssued uint64

	wg sync.WaitGroup
}

// pollHandle is the scheduler's single live timer.
type pollHandle struct {
	ticker Ticker
	stop   chan struct{}
}

// NewScheduler builds an idle scheduler. The query must be valid.
func NewScheduler(fetcher Fetcher, store *Store, opts Options) (*Scheduler, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher required")
	}
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	query := opts.Query
	if query.Role == "" && query.Limit == 0 {
		query = models.DefaultQuery()
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	newTicker := opts.NewTicker
	if newTicker == nil {
		newTicker = NewTimeTicker
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		fetcher:   fetcher,
		store:     store,
		interval:  interval,
		newTicker: newTicker,
		now:       now,
		logger:    logging.Component("rxsync"),
		ctx:       ctx,
		cancel:    cancel,
		query:     query,
	}, nil
}

// Store returns the store the scheduler writes.
func (s *Scheduler) Store() *Store { return s.store }

// Enable switches to live mode: the ticker starts and one fetch runs
// immediately. Enabling while live does nothing.
func (s *Scheduler) Enable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.handle != nil {
		return
	}
	s.acquireLocked()
	s.launchLocked()
	s.logger.Info().Dur("interval", s.interval).Int("limit", s.query.Limit).Msg("live polling enabled")
}

// Disable stops scheduled fetches. It is safe to call at any time. Fetches
// already in flight still land in the store.
func (s *Scheduler) Disable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == nil {
		return
	}
	s.releaseLocked()
	s.logger.Info().Msg("live polling paused")
}

// Toggle flips between live and paused and returns the new mode.
func (s *Scheduler) Toggle() models.SyncMode {
	if s.Mode() == models.SyncLive {
		s.Disable()
	} else {
		s.Enable()
	}
	return s.Mode()
}

// RefreshOnce runs one fetch outside the cadence in either mode. The ticker
// is left alone.
func (s *Scheduler) RefreshOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.launchLocked()
}

// SetLimit changes the list size and fetches immediately. When live the
// ticker is replaced so the cadence restarts from now.
func (s *Scheduler) SetLimit(limit int) error {
	next := s.Query()
	next.Limit = limit
	if err := next.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.query = next
	if s.handle != nil {
		s.releaseLocked()
		s.acquireLocked()
	}
	s.launchLocked()
	s.logger.Debug().Int("limit", limit).Msg("limit changed")
	return nil
}

// Mode reports live or paused.
func (s *Scheduler) Mode() models.SyncMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle != nil {
		return models.SyncLive
	}
	return models.SyncPaused
}

// Query returns the current query parameters.
func (s *Scheduler) Query() models.QueryParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Status returns mode, query and the outcome of the latest failed cycle, if
// no cycle has succeeded since.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	mode := models.SyncPaused
	if s.handle != nil {
		mode = models.SyncLive
	}
	return Status{
		Mode:        mode,
		Query:       s.query,
		InFlight:    s.inFlight,
		LastError:   s.lastErr,
		LastErrorAt: s.lastErrAt,
	}
}

// PollsIssued counts fetches started since creation.
func (s *Scheduler) PollsIssued() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pollsIssued
}

// Wait blocks until every fetch started so far has finished.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Close stops polling, cancels outstanding requests and waits for them.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.releaseLocked()
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) acquireLocked() {
	h := &pollHandle{
		ticker: s.newTicker(s.interval),
		stop:   make(chan struct{}),
	}
	s.handle = h
	go s.tickLoop(h)
}

func (s *Scheduler) releaseLocked() {
	h := s.handle
	if h == nil {
		return
	}
	s.handle = nil
	h.ticker.Stop()
	close(h.stop)
}

func (s *Scheduler) tickLoop(h *pollHandle) {
	for {
		select {
		case <-h.stop:
			return
		case <-h.ticker.C():
			s.mu.Lock()
			if s.handle != h {
				// Released while this tick was pending.
				s.mu.Unlock()
				return
			}
			s.launchLocked()
			s.mu.Unlock()
		}
	}
}

func (s *Scheduler) launchLocked() {
	if s.closed {
		return
	}
	query := s.query
	s.inFlight++
	s.pollsIssued++
	seq := s.pollsIssued
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.poll(seq, query)
	}()
}

func (s *Scheduler) poll(seq uint64, query models.QueryParams) {
	logger := s.logger.With().Uint64("poll", seq).Int("limit", query.Limit).Logger()
	snap, err := s.fetcher.Fetch(logging.WithContext(s.ctx, logger), query)

	if err != nil {
		s.mu.Lock()
		s.inFlight--
		s.lastErr = err
		s.lastErrAt = s.now()
		s.mu.Unlock()
		// The previous view stays in place.
		if s.ctx.Err() != nil {
			logger.Debug().Msg("poll cycle cancelled on shutdown")
			return
		}
		logger.Warn().
			Str("error", logging.Redact(err.Error())).
			Msg("poll cycle failed")
		return
	}

	version := s.store.replace(snap)

	s.mu.Lock()
	s.inFlight--
	s.lastErr = nil
	s.lastErrAt = time.Time{}
	s.mu.Unlock()

	logger.Debug().
		Str("cycle_id", snap.CycleID).
		Int("messages", len(snap.Messages)).
		Uint64("version", version).
		Msg("stream state replaced")
}
