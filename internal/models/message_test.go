package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMessageDecodeKeepsScalarText(t *testing.T) {
	var msgs []Message
	body := `[
		{"id": 1, "timestamp": "2024-01-01T00:00:00Z", "device": "RX1", "msg_id": 7, "message": "hello"},
		{"id": "abc", "timestamp": null, "msg_id": "0x1f", "message": "x"},
		{"timestamp": 1704067200000, "msg_id": 1.5}
	]`
	require.NoError(t, json.Unmarshal([]byte(body), &msgs))
	require.Len(t, msgs, 3)

	require.Equal(t, "1", msgs[0].ID.String())
	require.True(t, msgs[0].ID.IsNumber())
	require.Equal(t, "7", msgs[0].MsgID.String())
	require.Equal(t, "RX1", msgs[0].Device)

	require.Equal(t, "abc", msgs[1].ID.String())
	require.True(t, msgs[1].Timestamp.IsZero())
	require.Equal(t, "0x1f", msgs[1].MsgID.String())

	require.True(t, msgs[2].ID.IsZero())
	require.Equal(t, "1.5", msgs[2].MsgID.String())
	require.Equal(t, "", msgs[2].Device)
}

func TestMessageDecodeAcceptsScalarDeviceAndText(t *testing.T) {
	var msgs []Message
	body := `[
		{"id": 3, "device": 17, "message": 4096},
		{"id": 2, "device": true, "message": null},
		null
	]`
	require.NoError(t, json.Unmarshal([]byte(body), &msgs))
	require.Len(t, msgs, 3)

	require.Equal(t, "17", msgs[0].Device)
	require.Equal(t, "4096", msgs[0].Message)
	require.Equal(t, "true", msgs[1].Device)
	require.Equal(t, "", msgs[1].Message)
	require.Equal(t, Message{}, msgs[2])
}

func TestTokenRejectsObjects(t *testing.T) {
	var msg Message
	err := json.Unmarshal([]byte(`{"id": {"nested": true}}`), &msg)
	require.Error(t, err)
}

func TestTokenMarshalRoundTrip(t *testing.T) {
	out, err := json.Marshal(Message{ID: IntToken(3), Timestamp: NewToken("2024-01-01T00:00:00Z")})
	require.NoError(t, err)
	require.JSONEq(t, `{"id":3,"timestamp":"2024-01-01T00:00:00Z","device":"","msg_id":null,"message":""}`, string(out))
}

func TestMessageKeyFallsBackToTimestampAndIndex(t *testing.T) {
	require.Equal(t, "42", Message{ID: IntToken(42)}.Key(3))
	require.Equal(t, "2024-01-01T00:00:00Z-3", Message{Timestamp: NewToken("2024-01-01T00:00:00Z")}.Key(3))
	require.Equal(t, "-0", Message{}.Key(0))
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	got, ok := ParseTimestamp(NewToken("2024-01-01T00:00:00Z"))
	require.True(t, ok)
	require.True(t, want.Equal(got))

	got, ok = ParseTimestamp(NewToken("2024-01-01T02:00:00.123+02:00"))
	require.True(t, ok)
	require.True(t, want.Add(123*time.Millisecond).Equal(got))

	got, ok = ParseTimestamp(IntToken(want.UnixMilli()))
	require.True(t, ok)
	require.True(t, want.Equal(got))

	got, ok = ParseTimestamp(NewToken("2024-01-01T00:00:00.5"))
	require.True(t, ok)
	require.Equal(t, time.Local, got.Location())
	require.Equal(t, 500*time.Millisecond, time.Duration(got.Nanosecond()))

	got, ok = ParseTimestamp(NewToken("2024-01-01"))
	require.True(t, ok)
	require.True(t, want.Equal(got))

	for _, bad := range []string{"", "   ", "yesterday", "2024-13-45T00:00:00Z", "1704067200000"} {
		_, ok := ParseTimestamp(NewToken(bad))
		require.False(t, ok, bad)
	}
}
