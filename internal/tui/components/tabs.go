package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Tabs is a horizontal tab bar.
type Tabs struct {
	labels []string
	active int

	tabStyle    lipgloss.Style
	activeStyle lipgloss.Style
}

// NewTabs creates a tab bar with the given labels.
func NewTabs(labels []string) *Tabs {
	return &Tabs{
		labels:      labels,
		tabStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Padding(0, 2),
		activeStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#00FF00")).Bold(true).Padding(0, 2),
	}
}

// SetStyles sets the tab styles.
func (t *Tabs) SetStyles(tab, active lipgloss.Style) {
	t.tabStyle = tab
	t.activeStyle = active
}

// Active returns the active tab index.
func (t *Tabs) Active() int {
	return t.active
}

// SetActive sets the active tab index.
func (t *Tabs) SetActive(idx int) {
	if idx >= 0 && idx < len(t.labels) {
		t.active = idx
	}
}

// Next advances to the next tab, wrapping around.
func (t *Tabs) Next() {
	if len(t.labels) == 0 {
		return
	}
	t.active = (t.active + 1) % len(t.labels)
}

// Prev moves to the previous tab, wrapping around.
func (t *Tabs) Prev() {
	if len(t.labels) == 0 {
		return
	}
	t.active--
	if t.active < 0 {
		t.active = len(t.labels) - 1
	}
}

// Render renders the tab bar.
func (t *Tabs) Render() string {
	parts := make([]string, 0, len(t.labels))
	for i, label := range t.labels {
		if i == t.active {
			parts = append(parts, t.activeStyle.Render(label))
		} else {
			parts = append(parts, t.tabStyle.Render(label))
		}
	}
	return strings.Join(parts, "")
}
