package models

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Well-known stats fields reported by the backend.
const (
	StatReceivedToday = "received_today"
	StatSentToday     = "sent_today"
	StatTotalReceived = "total_received"
	StatTotalMessages = "total_messages"
)

// Stats is the backend statistics snapshot: named numeric counters with no
// fixed schema. Missing fields read as zero.
type Stats struct {
	values map[string]float64
}

// NewStats builds a snapshot from a map. The map is copied.
func NewStats(values map[string]float64) Stats {
	out := Stats{values: make(map[string]float64, len(values))}
	for k, v := range values {
		out.values[k] = v
	}
	return out
}

// Get returns the named counter or 0.
func (s Stats) Get(name string) float64 {
	return s.values[name]
}

// Lookup returns the named counter and whether the backend reported it.
func (s Stats) Lookup(name string) (float64, bool) {
	v, ok := s.values[name]
	return v, ok
}

// First returns the first counter present among names, or 0.
func (s Stats) First(names ...string) float64 {
	for _, name := range names {
		if v, ok := s.values[name]; ok {
			return v
		}
	}
	return 0
}

// Names lists the reported counters in sorted order.
func (s Stats) Names() []string {
	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of reported counters.
func (s Stats) Len() int { return len(s.values) }

// Map returns a copy of the counters.
func (s Stats) Map() map[string]float64 {
	out := make(map[string]float64, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// UnmarshalJSON keeps numeric fields and drops everything else.
func (s *Stats) UnmarshalJSON(data []byte) error {
	s.values = make(map[string]float64)
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for name, value := range raw {
		if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			continue
		}
		var n float64
		if err := json.Unmarshal(value, &n); err != nil {
			continue
		}
		s.values[name] = n
	}
	return nil
}

func (s Stats) MarshalJSON() ([]byte, error) {
	if s.values == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.values)
}
