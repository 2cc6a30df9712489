// Package admin provides the administrator-facing views.
package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/medilink/medilink/internal/api"
	"github.com/medilink/medilink/internal/inventory"
	"github.com/medilink/medilink/internal/models"
)

// Stat card indexes on the dashboard.
const (
	CardShortage = iota
	CardExcess
	CardExpiring
	cardCount
)

// DashboardView shows aggregate stock health across all shelters.
type DashboardView struct {
	client *api.Client

	items      []models.InventoryItem
	ownShelter string
	ownItems   []models.InventoryItem
	others     []inventory.ShelterSummary
	expiring   []inventory.ExpiringItem

	selectedCard int
	loading      bool
	err          error
	now          func() time.Time
}

// NewDashboardView creates a new dashboard view.
func NewDashboardView(client *api.Client) *DashboardView {
	return &DashboardView{
		client: client,
		now:    time.Now,
	}
}

// SetClock overrides the time source.
func (v *DashboardView) SetClock(now func() time.Time) {
	v.now = now
}

// Load fetches the full inventory and recomputes the aggregates. The own
// shelter comes from the cached profile when it carries one; otherwise it is
// inferred from the list and written back to the cached profile so later
// pages agree on it.
func (v *DashboardView) Load(ctx context.Context) error {
	v.loading = true
	v.err = nil

	items, err := v.client.AllInventory(ctx)
	if err != nil {
		v.loading = false
		v.err = err
		return err
	}
	v.items = items

	sess := v.client.Session()
	profile := sess.Profile()
	if profile != nil && profile.ShelterName != "" {
		v.ownShelter = profile.ShelterName
	} else {
		v.ownShelter = inventory.InferOwnShelter(items)
		if profile != nil && v.ownShelter != "" {
			// Cache it so the stock manager agrees on the own shelter.
			profile.ShelterName = v.ownShelter
			_ = sess.SetProfile(profile)
		}
	}

	v.ownItems = inventory.ForShelter(items, v.ownShelter)
	v.others = inventory.OtherShelters(items, v.ownShelter)
	v.expiring = inventory.ExpiringMedications(v.ownItems, v.now())

	v.loading = false
	return nil
}

// OwnShelter returns the shelter treated as the administrator's own.
func (v *DashboardView) OwnShelter() string {
	return v.ownShelter
}

// Items returns the raw loaded inventory.
func (v *DashboardView) Items() []models.InventoryItem {
	return v.items
}

// SelectedCard returns the focused stat card.
func (v *DashboardView) SelectedCard() int {
	return v.selectedCard
}

// MoveLeft focuses the previous stat card.
func (v *DashboardView) MoveLeft() {
	if v.selectedCard > 0 {
		v.selectedCard--
	}
}

// MoveRight focuses the next stat card.
func (v *DashboardView) MoveRight() {
	if v.selectedCard < cardCount-1 {
		v.selectedCard++
	}
}

// shortageItems returns own-shelter items below their required quantity.
func (v *DashboardView) shortageItems() []models.InventoryItem {
	var out []models.InventoryItem
	for _, item := range v.ownItems {
		if item.Quantity.Int() < item.RequiredQuantity.Int() {
			out = append(out, item)
		}
	}
	return out
}

// excessItems returns own-shelter items above double their required
// quantity. Items with no requirement never qualify.
func (v *DashboardView) excessItems() []models.InventoryItem {
	var out []models.InventoryItem
	for _, item := range v.ownItems {
		required := item.RequiredQuantity.Int()
		if required > 0 && item.Quantity.Int() > required*2 {
			out = append(out, item)
		}
	}
	return out
}

// Render renders the dashboard.
func (v *DashboardView) Render(width, height int) string {
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#66FF66")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#006600"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444"))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))

	var b strings.Builder

	b.WriteString(titleStyle.Render("=== DASHBOARD ==="))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(errStyle.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	}

	if v.loading {
		b.WriteString(mutedStyle.Render("Loading..."))
		return b.String()
	}

	if v.ownShelter != "" {
		b.WriteString(labelStyle.Render("Shelter: "))
		b.WriteString(valueStyle.Render(v.ownShelter))
		b.WriteString("\n\n")
	}

	// Stat cards
	cards := []struct {
		label string
		count int
	}{
		{"Shortage", len(v.shortageItems())},
		{"Excess", len(v.excessItems())},
		{"Expiring", len(v.expiring)},
	}
	var rendered []string
	for i, card := range cards {
		style := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00AA00")).
			Padding(0, 2)
		if i == v.selectedCard {
			style = style.BorderForeground(lipgloss.Color("#66FF66")).Bold(true)
		}
		rendered = append(rendered, style.Render(fmt.Sprintf("%s\n%d", card.label, card.count)))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	b.WriteString("\n\n")

	// Other shelters
	b.WriteString(labelStyle.Render("OTHER SHELTERS"))
	b.WriteString("\n")
	if len(v.others) == 0 {
		b.WriteString(mutedStyle.Render("  No other shelters hold stock.") + "\n")
	}
	for _, s := range v.others {
		line := fmt.Sprintf("  %-24s %3d medications  %5d units", s.ShelterName, s.MedicationCount, s.TotalQuantity)
		b.WriteString(valueStyle.Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("Left/Right:Card  Enter:Details  F3:Inventory  F4:Settings"))

	return b.String()
}

// RenderDetail renders the drill-down list for the focused stat card.
func (v *DashboardView) RenderDetail() string {
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#66FF66")).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#006600"))
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAA00"))
	critStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444"))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))

	var b strings.Builder

	switch v.selectedCard {
	case CardShortage:
		b.WriteString(titleStyle.Render("=== SHORTAGES ==="))
		b.WriteString("\n\n")
		items := v.shortageItems()
		if len(items) == 0 {
			b.WriteString(mutedStyle.Render("No shortages.") + "\n")
		}
		for _, item := range items {
			line := fmt.Sprintf("  %-24s %4d / %4d required", item.MedicationName, item.Quantity.Int(), item.RequiredQuantity.Int())
			b.WriteString(valueStyle.Render(line))
			b.WriteString("\n")
		}

	case CardExcess:
		b.WriteString(titleStyle.Render("=== EXCESS STOCK ==="))
		b.WriteString("\n\n")
		items := v.excessItems()
		if len(items) == 0 {
			b.WriteString(mutedStyle.Render("No excess stock.") + "\n")
		}
		for _, item := range items {
			line := fmt.Sprintf("  %-24s %4d / %4d required", item.MedicationName, item.Quantity.Int(), item.RequiredQuantity.Int())
			b.WriteString(valueStyle.Render(line))
			b.WriteString("\n")
		}

	case CardExpiring:
		b.WriteString(titleStyle.Render("=== EXPIRING MEDICATIONS ==="))
		b.WriteString("\n\n")
		if len(v.expiring) == 0 {
			b.WriteString(mutedStyle.Render("Nothing expiring soon.") + "\n")
		}
		for _, e := range v.expiring {
			var days string
			switch e.Expiry.State {
			case inventory.ExpiryExpired:
				days = critStyle.Render("EXPIRED")
			case inventory.ExpiryCritical:
				days = critStyle.Render(fmt.Sprintf("%d days", e.Expiry.DaysLeft))
			default:
				days = warnStyle.Render(fmt.Sprintf("%d days", e.Expiry.DaysLeft))
			}
			line := fmt.Sprintf("  %-24s %4d units  ", e.MedicationName, e.Quantity.Int())
			b.WriteString(valueStyle.Render(line) + days)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("Esc:Back"))

	return b.String()
}
