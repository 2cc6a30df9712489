// Package auth provides the login view.
package auth

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/medilink/medilink/internal/tui/components"
)

// LoginView is the credential entry screen. Both fields are required; the
// actual login call is issued by the application once HandleKey reports a
// validated submit.
type LoginView struct {
	email    *components.Input
	password *components.Input
	focusIdx int
	errMsg   string
	busy     bool
}

// NewLoginView creates a new login view.
func NewLoginView() *LoginView {
	email := components.NewInput("Email").
		SetWidth(32).
		SetPlaceholder("you@example.com").
		SetRequired(true)
	email.Focus(true)

	password := components.NewInput("Password").
		SetWidth(32).
		SetMasked(true).
		SetRequired(true)

	return &LoginView{
		email:    email,
		password: password,
	}
}

// Email returns the entered email.
func (v *LoginView) Email() string {
	return strings.TrimSpace(v.email.Value())
}

// Password returns the entered password.
func (v *LoginView) Password() string {
	return v.password.Value()
}

// SetError sets the error line shown under the form.
func (v *LoginView) SetError(msg string) {
	v.errMsg = msg
	v.busy = false
}

// SetBusy marks the view as waiting for the login round trip.
func (v *LoginView) SetBusy(busy bool) {
	v.busy = busy
	if busy {
		v.errMsg = ""
	}
}

// Busy reports whether a login request is in flight.
func (v *LoginView) Busy() bool {
	return v.busy
}

// Reset clears both fields and any error.
func (v *LoginView) Reset() {
	v.email.SetValue("")
	v.password.SetValue("")
	v.errMsg = ""
	v.busy = false
	v.focusIdx = 0
	v.email.Focus(true)
	v.password.Focus(false)
}

// HandleKey processes a key press. It returns true when the form was
// submitted with both fields filled in.
func (v *LoginView) HandleKey(key string) bool {
	if v.busy {
		return false
	}

	switch key {
	case "tab", "down":
		v.cycleFocus(1)
		return false
	case "shift+tab", "up":
		v.cycleFocus(-1)
		return false
	case "enter":
		// Enter on a filled email field advances; on an empty one it
		// validates so the empty form complains instead of moving focus.
		if v.focusIdx == 0 && v.Email() != "" {
			v.cycleFocus(1)
			return false
		}
		return v.validate()
	default:
		if v.focusIdx == 0 {
			v.email.HandleKey(key)
		} else {
			v.password.HandleKey(key)
		}
		return false
	}
}

func (v *LoginView) cycleFocus(dir int) {
	v.focusIdx = (v.focusIdx + dir + 2) % 2
	v.email.Focus(v.focusIdx == 0)
	v.password.Focus(v.focusIdx == 1)
}

func (v *LoginView) validate() bool {
	if v.Email() == "" || v.Password() == "" {
		v.errMsg = "Please enter both email and password"
		return false
	}
	v.errMsg = ""
	return true
}

// Render renders the login screen.
func (v *LoginView) Render(width, height int) string {
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#66FF66")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444"))

	var b strings.Builder

	b.WriteString(titleStyle.Render("=== MEDILINK LOGIN ==="))
	b.WriteString("\n\n")

	b.WriteString(v.email.Render())
	b.WriteString("\n")
	b.WriteString(v.password.Render())
	b.WriteString("\n\n")

	if v.busy {
		b.WriteString(labelStyle.Render("Signing in..."))
		b.WriteString("\n")
	} else if v.errMsg != "" {
		b.WriteString(errStyle.Render(v.errMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Tab:Next field  Enter:Sign in  F10:Quit"))

	return b.String()
}
