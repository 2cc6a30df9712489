// Package medical provides the QR medical data viewer. It renders a
// URL-encoded JSON payload scanned from a patient's emergency QR code and
// never talks to the server.
package medical

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/medilink/medilink/internal/models"
)

// ParsePayload decodes a URL-encoded JSON medical payload. Any decode
// failure yields a single generic error: the payload came from a QR scan and
// there is nothing the reader can do about a corrupt one.
func ParsePayload(raw string) (*models.MedicalInfo, error) {
	// PathUnescape, not QueryUnescape: the payload is not a query string and
	// a literal "+" (blood types) must survive decoding.
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return nil, fmt.Errorf("medical data is malformed")
	}
	var info models.MedicalInfo
	if err := json.Unmarshal([]byte(decoded), &info); err != nil {
		return nil, fmt.Errorf("medical data is malformed")
	}
	return &info, nil
}

// ViewerView renders a parsed medical payload.
type ViewerView struct {
	info *models.MedicalInfo
	err  error
}

// NewViewerView creates a viewer for the given raw payload.
func NewViewerView(raw string) *ViewerView {
	info, err := ParsePayload(raw)
	return &ViewerView{info: info, err: err}
}

// Valid reports whether the payload parsed.
func (v *ViewerView) Valid() bool {
	return v.err == nil
}

// Render renders the viewer.
func (v *ViewerView) Render(width, height int) string {
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#66FF66")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Width(14)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#006600"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444"))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))

	var b strings.Builder

	b.WriteString(titleStyle.Render("=== EMERGENCY MEDICAL DATA ==="))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(errStyle.Render("Could not read medical data. The QR payload is malformed."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(labelStyle.Render("Name:") + " " + valueStyle.Render(v.info.Name) + "\n")
	if v.info.Birthday != "" {
		b.WriteString(labelStyle.Render("Birthday:") + " " + valueStyle.Render(v.info.Birthday) + "\n")
	}
	if v.info.BloodType != "" {
		b.WriteString(labelStyle.Render("Blood Type:") + " " + valueStyle.Render(v.info.BloodType) + "\n")
	}
	if v.info.AllergyName != "" {
		b.WriteString(labelStyle.Render("Allergy:") + " " + errStyle.Render(v.info.AllergyName) + "\n")
	}
	if v.info.ConditionName != "" {
		b.WriteString(labelStyle.Render("Condition:") + " " + valueStyle.Render(v.info.ConditionName) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(labelStyle.Render("MEDICATIONS"))
	b.WriteString("\n")
	if len(v.info.Medications) == 0 {
		b.WriteString(mutedStyle.Render("  None recorded.") + "\n")
	}
	for _, med := range v.info.Medications {
		line := fmt.Sprintf("  %-24s %-12s %-16s %s", med.Name, med.Dosage, med.Schedule, med.Category)
		b.WriteString(valueStyle.Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("F10:Quit"))

	return b.String()
}

// RenderText renders the payload as plain text for non-interactive output.
func RenderText(info *models.MedicalInfo) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Name:       %s\n", info.Name)
	if info.Birthday != "" {
		fmt.Fprintf(&b, "Birthday:   %s\n", info.Birthday)
	}
	if info.BloodType != "" {
		fmt.Fprintf(&b, "Blood Type: %s\n", info.BloodType)
	}
	if info.AllergyName != "" {
		fmt.Fprintf(&b, "Allergy:    %s\n", info.AllergyName)
	}
	if info.ConditionName != "" {
		fmt.Fprintf(&b, "Condition:  %s\n", info.ConditionName)
	}

	b.WriteString("Medications:\n")
	if len(info.Medications) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, med := range info.Medications {
		fmt.Fprintf(&b, "  %s  %s  %s  %s\n", med.Name, med.Dosage, med.Schedule, med.Category)
	}

	return b.String()
}
