// Package patient provides the patient-facing my-page view.
package patient

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/medilink/medilink/internal/api"
	"github.com/medilink/medilink/internal/models"
	"github.com/medilink/medilink/internal/tui/components"
)

// Tab indexes into the my-page tab bar.
const (
	TabBasic = iota
	TabMedications
)

// MyPageView shows the logged-in patient's profile, medical information, and
// emergency QR code.
type MyPageView struct {
	client *api.Client
	qrDir  string

	tabs    *components.Tabs
	profile *models.Profile
	medical *models.MedicalInfo
	qrPath  string

	search     string
	searchMode bool

	loading bool
	err     error
}

// NewMyPageView creates a new my-page view. QR images are written under
// qrDir.
func NewMyPageView(client *api.Client, qrDir string) *MyPageView {
	return &MyPageView{
		client: client,
		qrDir:  qrDir,
		tabs:   components.NewTabs([]string{"Basic Info", "Medications"}),
	}
}

// Load fetches the profile, then the medical record and QR image for it. The
// profile fetch must succeed; the other two degrade to partial display.
func (v *MyPageView) Load(ctx context.Context) error {
	v.loading = true
	v.err = nil

	profile, err := v.client.CurrentUser(ctx)
	if err != nil {
		v.loading = false
		v.err = err
		return err
	}
	v.profile = profile

	id := profile.Identifier()
	if id != "" {
		if medical, err := v.client.MedicalInfo(ctx, id); err == nil {
			v.medical = medical
		}
		if png, err := v.client.QRImage(ctx, id); err == nil {
			v.qrPath = v.saveQR(id, png)
		}
	}

	v.loading = false
	return nil
}

// saveQR writes the QR PNG to disk and returns its path, or "" on failure.
func (v *MyPageView) saveQR(id string, png []byte) string {
	if err := os.MkdirAll(v.qrDir, 0o755); err != nil {
		return ""
	}
	path := filepath.Join(v.qrDir, fmt.Sprintf("qr-%s.png", id))
	if err := os.WriteFile(path, png, 0o600); err != nil {
		return ""
	}
	return path
}

// Profile returns the loaded profile, or nil.
func (v *MyPageView) Profile() *models.Profile {
	return v.profile
}

// QRPath returns the path of the saved QR image, or "".
func (v *MyPageView) QRPath() string {
	return v.qrPath
}

// ActiveTab returns the active tab index.
func (v *MyPageView) ActiveTab() int {
	return v.tabs.Active()
}

// NextTab switches to the next tab.
func (v *MyPageView) NextTab() {
	v.tabs.Next()
}

// PrevTab switches to the previous tab.
func (v *MyPageView) PrevTab() {
	v.tabs.Prev()
}

// SearchMode reports whether the medication search prompt is active.
func (v *MyPageView) SearchMode() bool {
	return v.searchMode
}

// StartSearch activates the search prompt on the medications tab.
func (v *MyPageView) StartSearch() {
	if v.tabs.Active() == TabMedications {
		v.searchMode = true
		v.search = ""
	}
}

// HandleSearchKey processes a key while the search prompt is active.
func (v *MyPageView) HandleSearchKey(key string) {
	switch key {
	case "esc":
		v.searchMode = false
		v.search = ""
	case "enter":
		v.searchMode = false
	case "backspace":
		if len(v.search) > 0 {
			v.search = v.search[:len(v.search)-1]
		}
	default:
		if len(key) == 1 {
			v.search += key
		}
	}
}

// filteredMedications returns the medications matching the search term.
func (v *MyPageView) filteredMedications() []models.Medication {
	if v.medical == nil {
		return nil
	}
	if v.search == "" {
		return v.medical.Medications
	}
	term := strings.ToLower(v.search)
	var out []models.Medication
	for _, med := range v.medical.Medications {
		if strings.Contains(strings.ToLower(med.Name), term) ||
			strings.Contains(strings.ToLower(med.Category), term) {
			out = append(out, med)
		}
	}
	return out
}

// Render renders the my-page view.
func (v *MyPageView) Render(width, height int) string {
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#66FF66")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Width(16)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#006600"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444"))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))

	var b strings.Builder

	b.WriteString(titleStyle.Render("=== MY PAGE ==="))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(errStyle.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	}

	if v.loading {
		b.WriteString(mutedStyle.Render("Loading..."))
		return b.String()
	}

	if v.profile == nil {
		b.WriteString(mutedStyle.Render("No profile loaded."))
		return b.String()
	}

	b.WriteString(v.tabs.Render())
	b.WriteString("\n\n")

	switch v.tabs.Active() {
	case TabBasic:
		b.WriteString(labelStyle.Render("Name:") + " " + valueStyle.Render(v.profile.Name) + "\n")
		b.WriteString(labelStyle.Render("Email:") + " " + valueStyle.Render(v.profile.Email) + "\n")
		if v.profile.Birthday != "" {
			b.WriteString(labelStyle.Render("Birthday:") + " " + valueStyle.Render(v.profile.Birthday) + "\n")
		}
		if v.profile.BloodType != "" {
			b.WriteString(labelStyle.Render("Blood Type:") + " " + valueStyle.Render(v.profile.BloodType) + "\n")
		}
		if v.medical != nil {
			if v.medical.AllergyName != "" {
				b.WriteString(labelStyle.Render("Allergy:") + " " + valueStyle.Render(v.medical.AllergyName) + "\n")
			}
			if v.medical.ConditionName != "" {
				b.WriteString(labelStyle.Render("Condition:") + " " + valueStyle.Render(v.medical.ConditionName) + "\n")
			}
		}
		b.WriteString("\n")
		if v.qrPath != "" {
			b.WriteString(labelStyle.Render("Emergency QR:") + " " + valueStyle.Render(v.qrPath) + "\n")
		} else {
			b.WriteString(mutedStyle.Render("Emergency QR not available.") + "\n")
		}

	case TabMedications:
		if v.searchMode {
			b.WriteString(labelStyle.Render("SEARCH:") + " " + valueStyle.Render(v.search+"_") + "\n\n")
		} else if v.search != "" {
			b.WriteString(labelStyle.Render("Filter:") + " " + valueStyle.Render(v.search) + "\n\n")
		}

		meds := v.filteredMedications()
		if len(meds) == 0 {
			b.WriteString(mutedStyle.Render("No medications found.") + "\n")
		}
		for _, med := range meds {
			line := fmt.Sprintf("  %-24s %-12s %-16s %s", med.Name, med.Dosage, med.Schedule, med.Category)
			b.WriteString(valueStyle.Render(line))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("Left/Right:Tab  /:Search  Ctrl+L:Logout"))

	return b.String()
}
