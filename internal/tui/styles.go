// Package tui provides the terminal user interface for the MediLink client.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/medilink/medilink/internal/config"
)

// Theme contains all style definitions for the TUI.
type Theme struct {
	// Colors (raw values for reference)
	PrimaryColor   lipgloss.Color
	SecondaryColor lipgloss.Color
	AccentColor    lipgloss.Color
	MutedColor     lipgloss.Color
	ErrorColor     lipgloss.Color
	WarningColor   lipgloss.Color
	SuccessColor   lipgloss.Color

	// Base styles
	Base lipgloss.Style

	// Color styles (for direct use)
	Primary   lipgloss.Style
	Secondary lipgloss.Style
	Accent    lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Success   lipgloss.Style
	Muted     lipgloss.Style

	// Component styles
	Header    lipgloss.Style
	Footer    lipgloss.Style
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Box       lipgloss.Style
	Selected  lipgloss.Style
	Alert     lipgloss.Style
	AlertWarn lipgloss.Style
	AlertCrit lipgloss.Style

	// Tab styles
	Tab       lipgloss.Style
	TabActive lipgloss.Style

	// Form styles
	FormLabel lipgloss.Style
	FormError lipgloss.Style

	StatusDivider lipgloss.Style
}

// NewTheme creates a new theme based on the color scheme configuration.
func NewTheme(scheme config.ColorScheme) *Theme {
	switch scheme {
	case config.ColorSchemeAmber:
		return buildTheme(
			lipgloss.Color("#FFAA00"), lipgloss.Color("#AA7700"),
			lipgloss.Color("#FFCC66"), lipgloss.Color("#664400"),
		)
	case config.ColorSchemeWhite:
		return buildTheme(
			lipgloss.Color("#FFFFFF"), lipgloss.Color("#AAAAAA"),
			lipgloss.Color("#FFFFFF"), lipgloss.Color("#666666"),
		)
	default:
		return buildTheme(
			lipgloss.Color("#00FF00"), lipgloss.Color("#00AA00"),
			lipgloss.Color("#66FF66"), lipgloss.Color("#006600"),
		)
	}
}

func buildTheme(primary, secondary, accent, muted lipgloss.Color) *Theme {
	errorColor := lipgloss.Color("#FF4444")
	warningColor := lipgloss.Color("#FFAA00")
	successColor := lipgloss.Color("#28A745")
	background := lipgloss.Color("#000000")

	t := &Theme{
		PrimaryColor:   primary,
		SecondaryColor: secondary,
		AccentColor:    accent,
		MutedColor:     muted,
		ErrorColor:     errorColor,
		WarningColor:   warningColor,
		SuccessColor:   successColor,
	}

	t.Base = lipgloss.NewStyle().Foreground(primary)

	t.Primary = lipgloss.NewStyle().Foreground(primary)
	t.Secondary = lipgloss.NewStyle().Foreground(secondary)
	t.Accent = lipgloss.NewStyle().Foreground(accent)
	t.Error = lipgloss.NewStyle().Foreground(errorColor)
	t.Warning = lipgloss.NewStyle().Foreground(warningColor)
	t.Success = lipgloss.NewStyle().Foreground(successColor)
	t.Muted = lipgloss.NewStyle().Foreground(muted)

	t.Header = lipgloss.NewStyle().
		Foreground(primary).
		Bold(true).
		Padding(0, 1)

	t.Footer = lipgloss.NewStyle().
		Foreground(secondary).
		Padding(0, 1)

	t.Title = lipgloss.NewStyle().
		Foreground(accent).
		Bold(true).
		Padding(0, 1)

	t.Subtitle = lipgloss.NewStyle().
		Foreground(primary).
		Padding(0, 1)

	t.Label = lipgloss.NewStyle().Foreground(secondary)
	t.Value = lipgloss.NewStyle().Foreground(primary)

	t.Box = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(secondary).
		Padding(0, 1)

	t.Selected = lipgloss.NewStyle().
		Foreground(background).
		Background(primary).
		Bold(true)

	t.Alert = lipgloss.NewStyle().
		Foreground(primary).
		Bold(true)

	t.AlertWarn = lipgloss.NewStyle().
		Foreground(warningColor).
		Bold(true)

	t.AlertCrit = lipgloss.NewStyle().
		Foreground(errorColor).
		Bold(true)

	t.Tab = lipgloss.NewStyle().
		Foreground(secondary).
		Padding(0, 2)

	t.TabActive = lipgloss.NewStyle().
		Foreground(background).
		Background(primary).
		Bold(true).
		Padding(0, 2)

	t.FormLabel = lipgloss.NewStyle().
		Foreground(secondary).
		Width(20)

	t.FormError = lipgloss.NewStyle().Foreground(errorColor)

	t.StatusDivider = lipgloss.NewStyle().
		Foreground(muted).
		SetString(" │ ")

	return t
}

// DrawHorizontalLine draws a horizontal line.
func (t *Theme) DrawHorizontalLine(width int) string {
	return t.Secondary.Render(strings.Repeat("─", width))
}

// DrawDoubleLine draws a double horizontal line.
func (t *Theme) DrawDoubleLine(width int) string {
	return t.Primary.Render(strings.Repeat("═", width))
}
