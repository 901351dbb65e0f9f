package rxtui

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tOgg1/rxconsole/internal/logging"
	"github.com/tOgg1/rxconsole/internal/models"
	"github.com/tOgg1/rxconsole/internal/rxsync"
)

const (
	messageLimit  = 120
	placeholder   = "–"
	defaultDevice = "RX"

	timeWidth   = 8
	deviceWidth = 12
	msgIDWidth  = 10
	defaultWide = 100
)

// FormatCount renders a stats counter with thousands separators.
func FormatCount(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return humanize.Comma(int64(v))
	}
	return humanize.Commaf(v)
}

// ModeLabel is the operator-facing name of a sync mode.
func ModeLabel(mode models.SyncMode) string {
	if mode == models.SyncLive {
		return "Streaming enabled"
	}
	return "Paused snapshot"
}

// Row is one table line before styling.
type Row struct {
	Time    string
	Device  string
	MsgID   string
	Message string
}

// RowFor formats msg for the table.
func RowFor(msg models.Message) Row {
	row := Row{
		Time:    placeholder,
		Device:  msg.Device,
		MsgID:   msg.MsgID.String(),
		Message: rxsync.Truncate(strings.ReplaceAll(msg.Message, "\n", " "), messageLimit),
	}
	if ts, ok := msg.Time(); ok {
		row.Time = ts.Local().Format("15:04:05")
	}
	if strings.TrimSpace(row.Device) == "" {
		row.Device = defaultDevice
	}
	if row.MsgID == "" {
		row.MsgID = placeholder
	}
	return row
}

func (m *Model) lineWidth() int {
	if m.width > 0 {
		return m.width
	}
	return defaultWide
}

func (m *Model) renderHeader() string {
	t := m.theme
	derived := rxsync.Derive(m.view, m.clock)
	live := m.status.Mode == models.SyncLive

	title := t.titleStyle().Render("RX Console")
	mode := t.modeStyle(live).Render(ModeLabel(m.status.Mode))
	query := t.mutedStyle().Render(fmt.Sprintf("role %s · limit %d", m.status.Query.Role, m.status.Query.Limit))
	top := strings.Join([]string{title, mode, query}, "  ")
	if m.status.InFlight > 0 {
		top += "  " + t.accentStyle().Render("↻")
	}

	sep := t.mutedStyle().Render(" · ")
	counters := strings.Join([]string{
		t.textStyle().Render(fmt.Sprintf("Rate %d/min", derived.RatePerMinute)),
		t.textStyle().Render("Today " + FormatCount(derived.Today)),
		t.textStyle().Render("Total " + FormatCount(derived.Total)),
	}, sep)

	preview := t.mutedStyle().Render("Last: ") + t.textStyle().Render(strings.ReplaceAll(derived.LastPreview, "\n", " "))

	lines := []string{top, counters, preview}
	if m.status.LastError != nil {
		text := "Last poll failed"
		if !m.status.LastErrorAt.IsZero() {
			text += " at " + m.status.LastErrorAt.Local().Format("15:04:05")
		}
		text += ": " + logging.Redact(m.status.LastError.Error())
		lines = append(lines, t.errorStyle().Render(clip(text, m.lineWidth())))
	}
	lines = append(lines, t.ruleStyle().Render(strings.Repeat("─", m.lineWidth())))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) renderTable(height int) string {
	if height <= 0 {
		return ""
	}
	t := m.theme
	width := m.lineWidth()
	msgWidth := width - timeWidth - deviceWidth - msgIDWidth - 3
	if msgWidth < 10 {
		msgWidth = 10
	}

	lines := []string{t.columnStyle().Render(formatRow(Row{
		Time: "Time", Device: "Device", MsgID: "Msg ID", Message: "Message",
	}, msgWidth))}

	if len(m.view.Messages) == 0 && height > 1 {
		hint := "Waiting for messages…"
		if m.status.Mode != models.SyncLive {
			hint = "No messages. Press r to refresh or space to go live."
		}
		lines = append(lines, t.mutedStyle().Render(hint))
	}
	for _, msg := range m.view.Messages {
		if len(lines) >= height {
			break
		}
		lines = append(lines, t.textStyle().Render(formatRow(RowFor(msg), msgWidth)))
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func formatRow(r Row, msgWidth int) string {
	return pad(r.Time, timeWidth) + " " +
		pad(r.Device, deviceWidth) + " " +
		pad(r.MsgID, msgIDWidth) + " " +
		clip(r.Message, msgWidth)
}

func (m *Model) renderFooter() string {
	t := m.theme
	keys := t.footerStyle().Render("space live/pause · r refresh · l/L limit · e export · c copy · q quit")
	if m.flash == "" {
		return keys
	}
	style := t.flashStyle()
	if m.flashErr {
		style = t.errorStyle()
	}
	return lipgloss.JoinVertical(lipgloss.Left, style.Render(clip(m.flash, m.lineWidth())), keys)
}

func pad(s string, width int) string {
	s = clip(s, width)
	if n := utf8.RuneCountInString(s); n < width {
		s += strings.Repeat(" ", width-n)
	}
	return s
}

func clip(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return rxsync.Truncate(s, width-1)
}
