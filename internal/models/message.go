package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Message is one received radio-frame message as reported by the backend.
// Messages are never modified after they are decoded.
type Message struct {
	ID        Token  `json:"id"`
	Timestamp Token  `json:"timestamp"`
	Device    string `json:"device"`
	MsgID     Token  `json:"msg_id"`
	Message   string `json:"message"`
}

// UnmarshalJSON accepts any scalar for device and message; numbers and
// booleans keep their literal text.
func (m *Message) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID        Token `json:"id"`
		Timestamp Token `json:"timestamp"`
		Device    Token `json:"device"`
		MsgID     Token `json:"msg_id"`
		Message   Token `json:"message"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*m = Message{
		ID:        wire.ID,
		Timestamp: wire.Timestamp,
		Device:    wire.Device.String(),
		MsgID:     wire.MsgID,
		Message:   wire.Message.String(),
	}
	return nil
}

// Key returns a stable identity for the message at position index of a batch.
// The server id wins; without one the timestamp and batch position are used.
func (m Message) Key(index int) string {
	if !m.ID.IsZero() {
		return m.ID.String()
	}
	return fmt.Sprintf("%s-%d", m.Timestamp.String(), index)
}

// Time parses the message timestamp. ok is false when the value is missing
// or not a recognizable instant.
func (m Message) Time() (time.Time, bool) {
	return ParseTimestamp(m.Timestamp)
}

// Token is an opaque scalar value from the backend: a string, a number or a
// boolean. Numbers keep their literal JSON text. The zero Token is absent.
type Token struct {
	text    string
	numeric bool
}

// NewToken returns a string token.
func NewToken(s string) Token {
	return Token{text: s}
}

// IntToken returns a numeric token.
func IntToken(n int64) Token {
	return Token{text: strconv.FormatInt(n, 10), numeric: true}
}

// String renders the token; absent tokens render as "".
func (t Token) String() string { return t.text }

// IsZero reports whether the token is absent or empty.
func (t Token) IsZero() bool { return t.text == "" }

// IsNumber reports whether the token was a JSON number.
func (t Token) IsNumber() bool { return t.numeric }

func (t *Token) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*t = Token{}
		return nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*t = Token{text: s}
	case '{', '[':
		return fmt.Errorf("expected scalar value, got %q", string(trimmed[:1]))
	case 't', 'f':
		*t = Token{text: string(trimmed)}
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return err
		}
		*t = Token{text: n.String(), numeric: true}
	}
	return nil
}

func (t Token) MarshalJSON() ([]byte, error) {
	switch {
	case t.text == "":
		return []byte("null"), nil
	case t.numeric, t.text == "true", t.text == "false":
		return []byte(t.text), nil
	default:
		return json.Marshal(t.text)
	}
}

// Zone-less layouts are read in local time; date-only values are UTC.
var (
	zonedLayouts = []string{time.RFC3339Nano}
	localLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04",
	}
	dateLayout = "2006-01-02"
)

// ParseTimestamp converts a timestamp token to an instant. Numeric tokens are
// Unix epoch milliseconds.
func ParseTimestamp(t Token) (time.Time, bool) {
	raw := strings.TrimSpace(t.text)
	if raw == "" {
		return time.Time{}, false
	}
	if t.numeric {
		ms, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsInf(ms, 0) || math.IsNaN(ms) {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(ms)), true
	}
	for _, layout := range zonedLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true
		}
	}
	for _, layout := range localLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return parsed, true
		}
	}
	if parsed, err := time.Parse(dateLayout, raw); err == nil {
		return parsed, true
	}
	return time.Time{}, false
}

// CloneMessages returns a copy of the slice; Message holds only values.
func CloneMessages(in []Message) []Message {
	if in == nil {
		return nil
	}
	out := make([]Message, len(in))
	copy(out, in)
	return out
}
