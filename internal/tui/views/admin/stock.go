package admin

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/medilink/medilink/internal/api"
	"github.com/medilink/medilink/internal/inventory"
	"github.com/medilink/medilink/internal/models"
	"github.com/medilink/medilink/internal/tui/components"
)

// Stock manager tab indexes.
const (
	TabOwnShelter = iota
	TabOtherShelters
	TabMedications
)

// PendingUpdate carries a submitted stock edit to the caller.
type PendingUpdate struct {
	MedicationName string
	Quantity       int
	Description    string
}

// StockView is the inventory manager. The own-shelter tab lists the
// administrator's stock and allows editing; the other two tabs are read-only
// cross-shelter listings with drill-down.
type StockView struct {
	client *api.Client

	tabs      *components.Tabs
	ownTable  *components.Table
	shelTable *components.Table
	medTable  *components.Table

	allItems   []models.InventoryItem
	ownItems   []models.InventoryItem
	shelters   []inventory.ShelterSummary
	meds       []inventory.MedicationSummary
	ownShelter string

	sortByRatio bool
	search      string
	searchMode  bool

	// Drill-down: non-empty when showing one shelter's or medication's detail
	drillShelter    string
	drillMedication string

	// Edit modal state
	editing  bool
	editItem *models.InventoryItem
	editQty  *components.Input
	editDesc *components.Input
	editIdx  int
	editErr  string

	loading bool
	err     error
}

// NewStockView creates a new stock manager view.
func NewStockView(client *api.Client) *StockView {
	ownTable := components.NewTable([]components.Column{
		{Title: "Medication", Width: 24},
		{Title: "Qty", Width: 6, Align: lipgloss.Right},
		{Title: "Required", Width: 8, Align: lipgloss.Right},
		{Title: "Expires", Width: 12},
		{Title: "Description", Width: 28},
	})
	ownTable.SetVisibleRows(15)
	ownTable.Focus(true)

	shelTable := components.NewTable([]components.Column{
		{Title: "Shelter", Width: 24},
		{Title: "Medications", Width: 12, Align: lipgloss.Right},
		{Title: "Total Qty", Width: 10, Align: lipgloss.Right},
	})
	shelTable.SetVisibleRows(15)
	shelTable.Focus(true)

	medTable := components.NewTable([]components.Column{
		{Title: "Medication", Width: 24},
		{Title: "Shelters", Width: 9, Align: lipgloss.Right},
		{Title: "Total Qty", Width: 10, Align: lipgloss.Right},
	})
	medTable.SetVisibleRows(15)
	medTable.Focus(true)

	return &StockView{
		client:    client,
		tabs:      components.NewTabs([]string{"My Shelter", "Other Shelters", "Medications"}),
		ownTable:  ownTable,
		shelTable: shelTable,
		medTable:  medTable,
	}
}

// Load fetches the own-shelter list and the cross-shelter list, then
// recomputes every tab.
func (v *StockView) Load(ctx context.Context) error {
	v.loading = true
	v.err = nil

	own, err := v.client.MyShelterInventory(ctx)
	if err != nil {
		v.loading = false
		v.err = err
		return err
	}
	v.ownItems = own

	all, err := v.client.AllInventory(ctx)
	if err != nil {
		v.loading = false
		v.err = err
		return err
	}
	v.allItems = all

	profile := v.client.Session().Profile()
	if profile != nil && profile.ShelterName != "" {
		v.ownShelter = profile.ShelterName
	} else if len(own) > 0 {
		v.ownShelter = inventory.InferOwnShelter(own)
	}

	v.recompute()
	v.loading = false
	return nil
}

// recompute rebuilds the table rows from the loaded lists.
func (v *StockView) recompute() {
	items := v.ownItems
	if v.sortByRatio {
		items = inventory.SortByShortageRatio(items)
	}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		if !inventory.MatchSearch(item, v.search) {
			continue
		}
		expires := "-"
		if item.ExpiryDate != nil && *item.ExpiryDate != "" {
			expires = *item.ExpiryDate
		}
		rows = append(rows, []string{
			item.MedicationName,
			strconv.Itoa(item.Quantity.Int()),
			strconv.Itoa(item.RequiredQuantity.Int()),
			expires,
			item.Description,
		})
	}
	v.ownTable.SetRows(rows)

	// The shelter and medication lists honor the search filter too, so the
	// drill-down index stays aligned with the filtered slice.
	v.shelters = nil
	for _, s := range inventory.OtherShelters(v.allItems, v.ownShelter) {
		if matchName(s.ShelterName, v.search) {
			v.shelters = append(v.shelters, s)
		}
	}
	shelRows := make([][]string, len(v.shelters))
	for i, s := range v.shelters {
		shelRows[i] = []string{
			s.ShelterName,
			strconv.Itoa(s.MedicationCount),
			strconv.Itoa(s.TotalQuantity),
		}
	}
	v.shelTable.SetRows(shelRows)

	v.meds = nil
	for _, m := range inventory.MedicationSummaries(v.allItems, v.ownShelter) {
		if matchName(m.Name, v.search) {
			v.meds = append(v.meds, m)
		}
	}
	medRows := make([][]string, len(v.meds))
	for i, m := range v.meds {
		medRows[i] = []string{
			m.Name,
			strconv.Itoa(m.ShelterCount),
			strconv.Itoa(m.TotalQuantity),
		}
	}
	v.medTable.SetRows(medRows)
}

// ActiveTab returns the active tab index.
func (v *StockView) ActiveTab() int {
	return v.tabs.Active()
}

// NextTab switches to the next tab and resets drill-down and search state.
func (v *StockView) NextTab() {
	v.tabs.Next()
	v.resetTabState()
}

// PrevTab switches to the previous tab and resets drill-down and search state.
func (v *StockView) PrevTab() {
	v.tabs.Prev()
	v.resetTabState()
}

func (v *StockView) resetTabState() {
	v.drillShelter = ""
	v.drillMedication = ""
	v.search = ""
	v.searchMode = false
	v.sortByRatio = false
	v.recompute()
}

// ToggleSort flips shortage-ratio ordering. Only the own-shelter tab sorts.
func (v *StockView) ToggleSort() {
	if v.tabs.Active() != TabOwnShelter {
		return
	}
	v.sortByRatio = !v.sortByRatio
	v.recompute()
}

// SortByRatio reports whether shortage-ratio ordering is on.
func (v *StockView) SortByRatio() bool {
	return v.sortByRatio
}

// InDrillDown reports whether a drill-down detail is showing.
func (v *StockView) InDrillDown() bool {
	return v.drillShelter != "" || v.drillMedication != ""
}

// CloseDrillDown returns to the list.
func (v *StockView) CloseDrillDown() {
	v.drillShelter = ""
	v.drillMedication = ""
}

// Select drills into the selected row on the shelter and medication tabs.
func (v *StockView) Select() {
	switch v.tabs.Active() {
	case TabOtherShelters:
		idx := v.shelTable.Selected()
		if idx >= 0 && idx < len(v.shelters) {
			v.drillShelter = v.shelters[idx].ShelterName
		}
	case TabMedications:
		idx := v.medTable.Selected()
		if idx >= 0 && idx < len(v.meds) {
			v.drillMedication = v.meds[idx].Name
		}
	}
}

// MoveUp moves the selection up on the active tab.
func (v *StockView) MoveUp() {
	v.activeTable().MoveUp()
}

// MoveDown moves the selection down on the active tab.
func (v *StockView) MoveDown() {
	v.activeTable().MoveDown()
}

// PageUp moves the selection up one page.
func (v *StockView) PageUp() {
	v.activeTable().PageUp()
}

// PageDown moves the selection down one page.
func (v *StockView) PageDown() {
	v.activeTable().PageDown()
}

func (v *StockView) activeTable() *components.Table {
	switch v.tabs.Active() {
	case TabOtherShelters:
		return v.shelTable
	case TabMedications:
		return v.medTable
	default:
		return v.ownTable
	}
}

// selectedOwnItem returns the item behind the selected own-tab row, honoring
// the current sort and search filter.
func (v *StockView) selectedOwnItem() *models.InventoryItem {
	items := v.ownItems
	if v.sortByRatio {
		items = inventory.SortByShortageRatio(items)
	}
	var visible []models.InventoryItem
	for _, item := range items {
		if inventory.MatchSearch(item, v.search) {
			visible = append(visible, item)
		}
	}
	idx := v.ownTable.Selected()
	if idx >= 0 && idx < len(visible) {
		return &visible[idx]
	}
	return nil
}

// SearchMode reports whether the search prompt is active.
func (v *StockView) SearchMode() bool {
	return v.searchMode
}

// StartSearch activates the search prompt on the active tab.
func (v *StockView) StartSearch() {
	v.searchMode = true
	v.search = ""
}

func matchName(name, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(term))
}

// HandleSearchKey processes a key while the search prompt is active.
func (v *StockView) HandleSearchKey(key string) {
	switch key {
	case "esc":
		v.searchMode = false
		v.search = ""
		v.recompute()
	case "enter":
		v.searchMode = false
		v.recompute()
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

// Editing reports whether the edit modal is open.
func (v *StockView) Editing() bool {
	return v.editing
}

// StartEdit opens the edit modal for the selected own-shelter item. Rows on
// the other tabs are read-only and cannot be edited.
func (v *StockView) StartEdit() bool {
	if v.tabs.Active() != TabOwnShelter {
		return false
	}
	item := v.selectedOwnItem()
	if item == nil {
		return false
	}

	v.editItem = item
	v.editQty = components.NewInput("Quantity").
		SetWidth(8).
		SetValue(strconv.Itoa(item.Quantity.Int())).
		SetRequired(true)
	v.editDesc = components.NewInput("Description").
		SetWidth(40).
		SetMaxLength(200).
		SetValue(item.Description)
	v.editIdx = 0
	v.editErr = ""
	v.editQty.Focus(true)
	v.editDesc.Focus(false)
	v.editing = true
	return true
}

// CancelEdit closes the edit modal without saving.
func (v *StockView) CancelEdit() {
	v.editing = false
	v.editItem = nil
}

// HandleEditKey processes a key inside the edit modal. A non-nil result means
// the form was submitted and validated; the caller performs the update.
func (v *StockView) HandleEditKey(key string) *PendingUpdate {
	switch key {
	case "esc":
		v.CancelEdit()
		return nil
	case "tab", "down":
		v.cycleEditFocus(1)
		return nil
	case "shift+tab", "up":
		v.cycleEditFocus(-1)
		return nil
	case "enter":
		if v.editIdx == 0 {
			v.cycleEditFocus(1)
			return nil
		}
		return v.submitEdit()
	case "ctrl+s":
		return v.submitEdit()
	default:
		if v.editIdx == 0 {
			v.editQty.HandleKey(key)
		} else {
			v.editDesc.HandleKey(key)
		}
		return nil
	}
}

func (v *StockView) cycleEditFocus(dir int) {
	v.editIdx = (v.editIdx + dir + 2) % 2
	v.editQty.Focus(v.editIdx == 0)
	v.editDesc.Focus(v.editIdx == 1)
}

// submitEdit validates the modal. Quantity must be a non-negative integer.
func (v *StockView) submitEdit() *PendingUpdate {
	qty, err := strconv.Atoi(strings.TrimSpace(v.editQty.Value()))
	if err != nil || qty < 0 {
		v.editErr = "Quantity must be a non-negative whole number"
		return nil
	}
	update := &PendingUpdate{
		MedicationName: v.editItem.MedicationName,
		Quantity:       qty,
		Description:    v.editDesc.Value(),
	}
	v.editing = false
	return update
}

// ApplyUpdate patches the local own-shelter list with the server's updated
// item so the table reflects the save without a refetch.
func (v *StockView) ApplyUpdate(updated *models.InventoryItem) {
	if updated == nil {
		return
	}
	for i := range v.ownItems {
		if v.ownItems[i].MedicationName == updated.MedicationName {
			v.ownItems[i] = *updated
			break
		}
	}
	for i := range v.allItems {
		if v.allItems[i].MedicationName == updated.MedicationName &&
			v.allItems[i].ShelterName == updated.ShelterName {
			v.allItems[i] = *updated
			break
		}
	}
	v.editItem = nil
	v.recompute()
}

// Render renders the stock manager.
func (v *StockView) Render(width, height int) string {
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#66FF66")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#006600"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444"))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))

	var b strings.Builder

	b.WriteString(titleStyle.Render("=== INVENTORY MANAGER ==="))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(errStyle.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	}

	if v.loading {
		b.WriteString(mutedStyle.Render("Loading..."))
		return b.String()
	}

	if v.editing {
		return b.String() + v.renderEditModal()
	}

	if v.InDrillDown() {
		return b.String() + v.renderDrillDown()
	}

	b.WriteString(v.tabs.Render())
	b.WriteString("\n\n")

	if v.searchMode {
		b.WriteString(labelStyle.Render("SEARCH: ") + valueStyle.Render(v.search+"_"))
		b.WriteString("\n\n")
	}

	table := v.activeTable()
	if table.Empty() {
		b.WriteString(mutedStyle.Render("Nothing to show."))
		b.WriteString("\n")
	} else {
		b.WriteString(table.Render())
	}

	b.WriteString("\n")
	switch v.tabs.Active() {
	case TabOwnShelter:
		sortLabel := "off"
		if v.sortByRatio {
			sortLabel = "on"
		}
		b.WriteString(helpStyle.Render(fmt.Sprintf("Up/Down:Select  e:Edit  s:Sort by shortage(%s)  /:Search  Left/Right:Tab", sortLabel)))
	default:
		b.WriteString(helpStyle.Render("Up/Down:Select  Enter:Details  /:Search  Left/Right:Tab"))
	}

	return b.String()
}

// renderDrillDown renders a single shelter's or medication's detail listing.
func (v *StockView) renderDrillDown() string {
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#66FF66")).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#006600"))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))

	var b strings.Builder

	if v.drillShelter != "" {
		b.WriteString(titleStyle.Render(fmt.Sprintf("=== %s ===", strings.ToUpper(v.drillShelter))))
		b.WriteString("\n\n")
		items := inventory.ForShelter(v.allItems, v.drillShelter)
		if len(items) == 0 {
			b.WriteString(mutedStyle.Render("No stock recorded.") + "\n")
		}
		for _, item := range items {
			expires := "-"
			if item.ExpiryDate != nil && *item.ExpiryDate != "" {
				expires = *item.ExpiryDate
			}
			line := fmt.Sprintf("  %-24s %4d units  expires %s", item.MedicationName, item.Quantity.Int(), expires)
			b.WriteString(valueStyle.Render(line))
			b.WriteString("\n")
		}
	} else {
		b.WriteString(titleStyle.Render(fmt.Sprintf("=== %s ===", strings.ToUpper(v.drillMedication))))
		b.WriteString("\n\n")
		holdings := inventory.SheltersWithMedication(inventory.ExcludeShelter(v.allItems, v.ownShelter), v.drillMedication, 1)
		if len(holdings) == 0 {
			b.WriteString(mutedStyle.Render("No other shelter holds this medication.") + "\n")
		}
		for _, h := range holdings {
			line := fmt.Sprintf("  %-24s %4d units", h.ShelterName, h.Quantity)
			b.WriteString(valueStyle.Render(line))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("Esc:Back"))

	return b.String()
}

// renderEditModal renders the quantity edit form.
func (v *StockView) renderEditModal() string {
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#66FF66")).Bold(true)
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444"))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))

	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("=== EDIT: %s ===", v.editItem.MedicationName)))
	b.WriteString("\n\n")
	b.WriteString(v.editQty.Render())
	b.WriteString("\n")
	b.WriteString(v.editDesc.Render())
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
