package rxtui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// BaseColors defines global UI colors.
type BaseColors struct {
	Foreground string
	Muted      string
	Accent     string
	Border     string
}

// StatusColors defines colors for sync state.
type StatusColors struct {
	Live   string
	Paused string
	Error  string
}

// ChromeColors defines non-content UI colors.
type ChromeColors struct {
	Header      string
	Footer      string
	Flash       string
	ColumnTitle string
}

// Theme defines the rxconsole TUI color tokens.
type Theme struct {
	Name   string
	Base   BaseColors
	Status StatusColors
	Chrome ChromeColors
}

// DefaultTheme is the baseline dark palette.
var DefaultTheme = Theme{
	Name: "default",
	Base: BaseColors{
		Foreground: "252",
		Muted:      "245",
		Accent:     "75",
		Border:     "240",
	},
	Status: StatusColors{
		Live:   "41",
		Paused: "220",
		Error:  "203",
	},
	Chrome: ChromeColors{
		Header:      "111",
		Footer:      "110",
		Flash:       "81",
		ColumnTitle: "109",
	},
}

// HighContrastTheme favors maximum readability.
var HighContrastTheme = Theme{
	Name: "high-contrast",
	Base: BaseColors{
		Foreground: "15",
		Muted:      "250",
		Accent:     "51",
		Border:     "15",
	},
	Status: StatusColors{
		Live:   "46",
		Paused: "226",
		Error:  "196",
	},
	Chrome: ChromeColors{
		Header:      "15",
		Footer:      "15",
		Flash:       "51",
		ColumnTitle: "15",
	},
}

// Themes lists available palettes by name.
var Themes = map[string]Theme{
	"default":       DefaultTheme,
	"high-contrast": HighContrastTheme,
}

// ThemeByName resolves a palette; empty selects the default.
func ThemeByName(name string) (Theme, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultTheme, nil
	}
	theme, ok := Themes[name]
	if !ok {
		return Theme{}, fmt.Errorf("invalid theme %q", name)
	}
	return theme, nil
}

func (t Theme) fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func (t Theme) titleStyle() lipgloss.Style  { return t.fg(t.Chrome.Header).Bold(true) }
func (t Theme) mutedStyle() lipgloss.Style  { return t.fg(t.Base.Muted) }
func (t Theme) accentStyle() lipgloss.Style { return t.fg(t.Base.Accent) }
func (t Theme) textStyle() lipgloss.Style   { return t.fg(t.Base.Foreground) }
func (t Theme) errorStyle() lipgloss.Style  { return t.fg(t.Status.Error) }
func (t Theme) flashStyle() lipgloss.Style  { return t.fg(t.Chrome.Flash).Bold(true) }
func (t Theme) footerStyle() lipgloss.Style { return t.fg(t.Chrome.Footer) }
func (t Theme) columnStyle() lipgloss.Style { return t.fg(t.Chrome.ColumnTitle).Bold(true) }
func (t Theme) ruleStyle() lipgloss.Style   { return t.fg(t.Base.Border) }

func (t Theme) modeStyle(live bool) lipgloss.Style {
	if live {
		return t.fg(t.Status.Live).Bold(true)
	}
	return t.fg(t.Status.Paused).Bold(true)
}
