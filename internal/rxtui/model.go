// Package rxtui renders the live RX message view in the terminal. The model
// owns no stream data: every frame is drawn from the store's latest snapshot.
package rxtui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/tOgg1/rxconsole/internal/logging"
	"github.com/tOgg1/rxconsole/internal/models"
	"github.com/tOgg1/rxconsole/internal/rxexport"
	"github.com/tOgg1/rxconsole/internal/rxsync"
)

const (
	clockInterval = 1 * time.Second
	flashDuration = 4 * time.Second
)

// Controller is the part of the scheduler the keys drive.
type Controller interface {
	Toggle() models.SyncMode
	RefreshOnce()
	SetLimit(limit int) error
	Status() rxsync.Status
}

// Source supplies stream snapshots and change notifications.
type Source interface {
	Snapshot() rxsync.View
	Changes() (<-chan struct{}, func())
}

// Exporter writes the current list to a CSV file.
type Exporter interface {
	Export(messages []models.Message) (rxexport.Result, bool, error)
}

// Options wires a Model.
type Options struct {
	Controller Controller
	Source     Source
	Exporter   Exporter
	Clipboard  rxexport.Clipboard
	Theme      string
	Now        func() time.Time
}

type Model struct {
	ctrl      Controller
	source    Source
	exporter  Exporter
	clipboard rxexport.Clipboard
	theme     Theme
	now       func() time.Time
	logger    zerolog.Logger

	width  int
	height int

	view   rxsync.View
	status rxsync.Status
	clock  time.Time

	flash      string
	flashErr   bool
	flashUntil time.Time

	changes <-chan struct{}
	unsub   func()
	done    chan struct{}
}

type clockTickMsg time.Time

type storeChangedMsg struct{}

type exportDoneMsg struct {
	result rxexport.Result
	ok     bool
	err    error
}

func NewModel(opts Options) (*Model, error) {
	if opts.Controller == nil || opts.Source == nil {
		return nil, fmt.Errorf("controller and source required")
	}
	theme, err := ThemeByName(opts.Theme)
	if err != nil {
		return nil, err
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	changes, unsub := opts.Source.Changes()
	m := &Model{
		ctrl:      opts.Controller,
		source:    opts.Source,
		exporter:  opts.Exporter,
		clipboard: opts.Clipboard,
		theme:     theme,
		now:       now,
		logger:    logging.Component("rxtui"),
		changes:   changes,
		unsub:     unsub,
		done:      make(chan struct{}),
	}
	m.refresh()
	return m, nil
}

// Run takes over the terminal until the user quits or ctx is cancelled.
func Run(ctx context.Context, m *Model) error {
	defer m.Close()

	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Close drops the store subscription.
func (m *Model) Close() {
	if m == nil || m.unsub == nil {
		return
	}
	m.unsub()
	m.unsub = nil
	close(m.done)
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(clockTickCmd(), m.listenCmd())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		return m, nil
	case clockTickMsg:
		m.refresh()
		return m, clockTickCmd()
	case storeChangedMsg:
		m.refresh()
		return m, m.listenCmd()
	case exportDoneMsg:
		m.applyExport(typed)
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKey(typed)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case " ", "p":
		mode := m.ctrl.Toggle()
		m.logger.Debug().Str("mode", mode.String()).Msg("sync mode toggled")
	case "r":
		m.ctrl.RefreshOnce()
		m.setFlash("Refreshing…", false)
	case "l":
		m.changeLimit(models.NextLimit(m.status.Query.Limit))
	case "L":
		m.changeLimit(models.PrevLimit(m.status.Query.Limit))
	case "e":
		return m.exportCmd()
	case "c":
		m.copyLast()
	default:
		return nil
	}
	m.refresh()
	return nil
}

func (m *Model) changeLimit(limit int) {
	if err := m.ctrl.SetLimit(limit); err != nil {
		m.setFlash(err.Error(), true)
		return
	}
	m.setFlash(fmt.Sprintf("Limit set to %d", limit), false)
}

func (m *Model) copyLast() {
	view := m.source.Snapshot()
	if !rxexport.CopyLast(m.clipboard, view.Messages) {
		m.setFlash("Nothing to copy", false)
		return
	}
	m.setFlash("Copied latest message", false)
}

func (m *Model) exportCmd() tea.Cmd {
	if m.exporter == nil {
		m.setFlash("Export unavailable", true)
		return nil
	}
	messages := m.source.Snapshot().Messages
	exporter := m.exporter
	return func() tea.Msg {
		result, ok, err := exporter.Export(messages)
		return exportDoneMsg{result: result, ok: ok, err: err}
	}
}

func (m *Model) applyExport(msg exportDoneMsg) {
	switch {
	case msg.err != nil:
		m.setFlash("Export failed: "+msg.err.Error(), true)
	case !msg.ok:
		m.setFlash("No messages to export", false)
	default:
		m.setFlash(fmt.Sprintf("Exported %d rows to %s", msg.result.Rows, msg.result.Path), false)
	}
}

func (m *Model) setFlash(text string, isErr bool) {
	m.flash = text
	m.flashErr = isErr
	m.flashUntil = m.now().Add(flashDuration)
}

// refresh pulls the latest snapshot and scheduler status for the next frame.
func (m *Model) refresh() {
	m.clock = m.now()
	m.view = m.source.Snapshot()
	m.status = m.ctrl.Status()
	if m.flash != "" && !m.clock.Before(m.flashUntil) {
		m.flash = ""
		m.flashErr = false
	}
}

func (m *Model) listenCmd() tea.Cmd {
	changes := m.changes
	done := m.done
	return func() tea.Msg {
		select {
		case <-changes:
			return storeChangedMsg{}
		case <-done:
			return nil
		}
	}
}

func clockTickCmd() tea.Cmd {
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg { return clockTickMsg(t) })
}

func (m *Model) View() string {
	header := m.renderHeader()
	footer := m.renderFooter()
	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if m.height == 0 {
		bodyHeight = len(m.view.Messages) + 2
	}
	if bodyHeight < 0 {
		bodyHeight = 0
	}
	body := m.renderTable(bodyHeight)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}
