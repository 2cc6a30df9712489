package admin

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/medilink/medilink/internal/api"
	"github.com/medilink/medilink/internal/models"
	"github.com/medilink/medilink/internal/tui/components"
)

// colorSchemes lists the display palettes offered in the edit form, in the
// order the Select shows them.
var colorSchemes = []string{"green_phosphor", "amber", "white"}

// SettingsView shows and edits the administrator settings. StockThreshold
// and ExpireWarnDays are shown read-only and echoed back unchanged on save.
// The color scheme is a client-side display choice and never leaves the
// terminal; the caller applies it on submit.
type SettingsView struct {
	client *api.Client

	settings *models.AdminSettings
	scheme   string

	editing   bool
	nameIn    *components.Input
	phoneIn   *components.Input
	rangeIn   *components.Input
	schemeSel *components.Select
	editIdx   int
	editErr   string
	saveState string

	loading bool
	err     error
}

// NewSettingsView creates a new settings view.
func NewSettingsView(client *api.Client) *SettingsView {
	return &SettingsView{client: client, scheme: colorSchemes[0]}
}

// SetColorScheme sets the current display scheme shown in the edit form.
func (v *SettingsView) SetColorScheme(scheme string) {
	for _, s := range colorSchemes {
		if s == scheme {
			v.scheme = scheme
			return
		}
	}
}

// ColorScheme returns the chosen display scheme.
func (v *SettingsView) ColorScheme() string {
	return v.scheme
}

// Load fetches the current settings.
func (v *SettingsView) Load(ctx context.Context) error {
	v.loading = true
	v.err = nil

	settings, err := v.client.Settings(ctx)
	if err != nil {
		v.loading = false
		v.err = err
		return err
	}
	v.settings = settings
	v.loading = false
	return nil
}

// Settings returns the loaded settings, or nil.
func (v *SettingsView) Settings() *models.AdminSettings {
	return v.settings
}

// Editing reports whether the edit form is open.
func (v *SettingsView) Editing() bool {
	return v.editing
}

// StartEdit opens the edit form prefilled from the loaded settings.
func (v *SettingsView) StartEdit() bool {
	if v.settings == nil {
		return false
	}

	v.nameIn = components.NewInput("Name").
		SetWidth(32).
		SetValue(v.settings.Name).
		SetRequired(true)
	v.phoneIn = components.NewInput("Phone").
		SetWidth(20).
		SetValue(v.settings.Phone)
	v.rangeIn = components.NewInput("Aggregate Range").
		SetWidth(8).
		SetValue(strconv.Itoa(v.settings.AggregateRange.Int()))
	v.schemeSel = components.NewSelect("Color Scheme", colorSchemes)
	for i, s := range colorSchemes {
		if s == v.scheme {
			v.schemeSel.SetSelected(i)
		}
	}

	v.editIdx = 0
	v.editErr = ""
	v.saveState = ""
	v.nameIn.Focus(true)
	v.phoneIn.Focus(false)
	v.rangeIn.Focus(false)
	v.schemeSel.Focus(false)
	v.editing = true
	return true
}

// CancelEdit closes the form without saving.
func (v *SettingsView) CancelEdit() {
	v.editing = false
}

// SetSaved records the outcome of a save round trip.
func (v *SettingsView) SetSaved(saved *models.AdminSettings, err error) {
	if err != nil {
		v.saveState = "Save failed: " + err.Error()
		return
	}
	v.settings = saved
	v.saveState = "Settings saved"
}

// HandleEditKey processes a key inside the edit form. A non-nil result is the
// full settings object to save, with the server-owned fields carried over.
func (v *SettingsView) HandleEditKey(key string) *models.AdminSettings {
	switch key {
	case "esc":
		v.CancelEdit()
		return nil
	case "tab", "down":
		v.cycleFocus(1)
		return nil
	case "shift+tab", "up":
		v.cycleFocus(-1)
		return nil
	case "enter":
		if v.editIdx < 3 {
			v.cycleFocus(1)
			return nil
		}
		return v.submit()
	case "ctrl+s":
		return v.submit()
	default:
		switch v.editIdx {
		case 0:
			v.nameIn.HandleKey(key)
		case 1:
			v.phoneIn.HandleKey(key)
		case 2:
			v.rangeIn.HandleKey(key)
		default:
			v.schemeSel.HandleKey(key)
		}
		return nil
	}
}

func (v *SettingsView) cycleFocus(dir int) {
	v.editIdx = (v.editIdx + dir + 4) % 4
	v.nameIn.Focus(v.editIdx == 0)
	v.phoneIn.Focus(v.editIdx == 1)
	v.rangeIn.Focus(v.editIdx == 2)
	v.schemeSel.Focus(v.editIdx == 3)
}

func (v *SettingsView) submit() *models.AdminSettings {
	name := strings.TrimSpace(v.nameIn.Value())
	if name == "" {
		v.editErr = "Name is required"
		return nil
	}
	aggRange, err := strconv.Atoi(strings.TrimSpace(v.rangeIn.Value()))
	if err != nil || aggRange < 0 {
		v.editErr = "Aggregate range must be a non-negative whole number"
		return nil
	}

	out := &models.AdminSettings{
		Name:           name,
		Phone:          strings.TrimSpace(v.phoneIn.Value()),
		AggregateRange: models.Quantity(aggRange),
		StockThreshold: v.settings.StockThreshold,
		ExpireWarnDays: v.settings.ExpireWarnDays,
	}
	v.scheme = v.schemeSel.Value()
	v.editing = false
	return out
}

// Render renders the settings view.
func (v *SettingsView) Render(width, height int) string {
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#66FF66")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Width(18)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#006600"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444"))
	okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#28A745"))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))

	var b strings.Builder

	b.WriteString(titleStyle.Render("=== SETTINGS ==="))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(errStyle.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	}

	if v.loading {
		b.WriteString(mutedStyle.Render("Loading..."))
		return b.String()
	}

	if v.settings == nil {
		b.WriteString(mutedStyle.Render("No settings loaded."))
		return b.String()
	}

	if v.editing {
		b.WriteString(v.nameIn.Render())
		b.WriteString("\n")
		b.WriteString(v.phoneIn.Render())
		b.WriteString("\n")
		b.WriteString(v.rangeIn.Render())
		b.WriteString("\n")
		b.WriteString(v.schemeSel.Render())
		b.WriteString("\n")

		if v.editErr != "" {
			b.WriteString("\n")
			b.WriteString(errStyle.Render(v.editErr))
			b.WriteString("\n")
		}

		b.WriteString("\n")
		b.WriteString(helpStyle.Render("Tab:Next field  Ctrl+S:Save  Esc:Cancel"))
		return b.String()
	}

	b.WriteString(labelStyle.Render("Name:") + " " + valueStyle.Render(v.settings.Name) + "\n")
	b.WriteString(labelStyle.Render("Phone:") + " " + valueStyle.Render(v.settings.Phone) + "\n")
	b.WriteString(labelStyle.Render("Aggregate Range:") + " " + valueStyle.Render(strconv.Itoa(v.settings.AggregateRange.Int())) + "\n")
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Stock threshold: %d (server managed)", v.settings.StockThreshold.Int())) + "\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Expiry warning:  %d days (server managed)", v.settings.ExpireWarnDays.Int())) + "\n")

	if v.saveState != "" {
		b.WriteString("\n")
		if strings.HasPrefix(v.saveState, "Save failed") {
			b.WriteString(errStyle.Render(v.saveState))
		} else {
			b.WriteString(okStyle.Render(v.saveState))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("e:Edit  F2:Dashboard  F3:Inventory"))

	return b.String()
}
