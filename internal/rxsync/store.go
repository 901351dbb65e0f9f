// Package rxsync keeps the live view of the RX stream: the stream state, the
// poll scheduler that writes it and the metrics derived from it.
package rxsync

import (
	"sync"
	"time"

	"github.com/tOgg1/rxconsole/internal/models"
	"github.com/tOgg1/rxconsole/internal/rxclient"
)

// View is one consistent snapshot of the stream state. Messages and Stats
// always come from the same poll cycle.
type View struct {
	Messages  []models.Message
	Stats     models.Stats
	CycleID   string
	UpdatedAt time.Time
	// Version increases by one on every replacement; zero means never fetched.
	Version uint64
}

// Empty reports whether there are no messages to act on.
func (v View) Empty() bool { return len(v.Messages) == 0 }

// Store holds the latest reconciled poll cycle. Readers get copies; only the
// Scheduler in this package writes.
type Store struct {
	mu   sync.RWMutex
	view View

	subMu   sync.Mutex
	subs    map[int]chan struct{}
	nextSub int
}

func NewStore() *Store {
	return &Store{subs: make(map[int]chan struct{})}
}

// Snapshot returns the current view.
func (s *Store) Snapshot() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.view
	out.Messages = models.CloneMessages(s.view.Messages)
	return out
}

// Version returns the current version without copying messages.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view.Version
}

// replace swaps messages and stats together. The whole previous view is
// discarded; nothing is merged.
func (s *Store) replace(snap rxclient.Snapshot) uint64 {
	messages := models.CloneMessages(snap.Messages)
	if messages == nil {
		messages = []models.Message{}
	}

	s.mu.Lock()
	s.view = View{
		Messages:  messages,
		Stats:     snap.Stats,
		CycleID:   snap.CycleID,
		UpdatedAt: snap.FetchedAt,
		Version:   s.view.Version + 1,
	}
	version := s.view.Version
	s.mu.Unlock()

	s.notify()
	return version
}

// Changes returns a channel that receives after every replacement. Bursts
// coalesce into one pending notification. Call cancel to unsubscribe.
func (s *Store) Changes() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
	return ch, cancel
}

func (s *Store) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
