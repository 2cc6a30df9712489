package tui

import (
	"github.com/charmbracelet/bubbletea"
)

// KeyMap defines all key bindings for the application.
type KeyMap struct {
	// Navigation
	Up       Key
	Down     Key
	Left     Key
	Right    Key
	PageUp   Key
	PageDown Key
	Home     Key
	End      Key

	// Actions
	Select Key
	Back   Key
	Quit   Key
	Search Key
	Edit   Key
	Sort   Key
	Logout Key

	// Function keys for page navigation
	F2  Key
	F3  Key
	F4  Key
	F10 Key

	// Form navigation
	Tab      Key
	ShiftTab Key
	Enter    Key
	Escape   Key
}

// Key represents a key binding.
type Key struct {
	Keys    []string
	Help    string
	Enabled bool
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Navigation
		Up: Key{
			Keys:    []string{"up", "k"},
			Help:    "up",
			Enabled: true,
		},
		Down: Key{
			Keys:    []string{"down", "j"},
			Help:    "down",
			Enabled: true,
		},
		Left: Key{
			Keys:    []string{"left", "h"},
			Help:    "left",
			Enabled: true,
		},
		Right: Key{
			Keys:    []string{"right", "l"},
			Help:    "right",
			Enabled: true,
		},
		PageUp: Key{
			Keys:    []string{"pgup", "ctrl+u"},
			Help:    "page up",
			Enabled: true,
		},
		PageDown: Key{
			Keys:    []string{"pgdown", "ctrl+d"},
			Help:    "page down",
			Enabled: true,
		},
		Home: Key{
			Keys:    []string{"home", "g"},
			Help:    "home",
			Enabled: true,
		},
		End: Key{
			Keys:    []string{"end", "G"},
			Help:    "end",
			Enabled: true,
		},

		// Actions
		Select: Key{
			Keys:    []string{"enter", " "},
			Help:    "select",
			Enabled: true,
		},
		Back: Key{
			Keys:    []string{"esc"},
			Help:    "back",
			Enabled: true,
		},
		Quit: Key{
			Keys:    []string{"q", "ctrl+c"},
			Help:    "quit",
			Enabled: true,
		},
		Search: Key{
			Keys:    []string{"/"},
			Help:    "search",
			Enabled: true,
		},
		Edit: Key{
			Keys:    []string{"e"},
			Help:    "edit",
			Enabled: true,
		},
		Sort: Key{
			Keys:    []string{"s"},
			Help:    "sort",
			Enabled: true,
		},
		Logout: Key{
			Keys:    []string{"ctrl+l"},
			Help:    "logout",
			Enabled: true,
		},

		// Function keys
		F2: Key{
			Keys:    []string{"f2"},
			Help:    "Dashboard",
			Enabled: true,
		},
		F3: Key{
			Keys:    []string{"f3"},
			Help:    "Inventory",
			Enabled: true,
		},
		F4: Key{
			Keys:    []string{"f4"},
			Help:    "Settings",
			Enabled: true,
		},
		F10: Key{
			Keys:    []string{"f10"},
			Help:    "Quit",
			Enabled: true,
		},

		// Form navigation
		Tab: Key{
			Keys:    []string{"tab"},
			Help:    "next field",
			Enabled: true,
		},
		ShiftTab: Key{
			Keys:    []string{"shift+tab"},
			Help:    "prev field",
			Enabled: true,
		},
		Enter: Key{
			Keys:    []string{"enter"},
			Help:    "confirm",
			Enabled: true,
		},
		Escape: Key{
			Keys:    []string{"esc"},
			Help:    "cancel",
			Enabled: true,
		},
	}
}

// Matches checks if a key message matches this key binding.
func (k Key) Matches(msg tea.KeyMsg) bool {
	if !k.Enabled {
		return false
	}

	keyStr := msg.String()
	for _, key := range k.Keys {
		if keyStr == key {
			return true
		}
	}
	return false
}

// MatchesAny checks if a key message matches any of the provided key bindings.
func MatchesAny(msg tea.KeyMsg, keys ...Key) bool {
	for _, k := range keys {
		if k.Matches(msg) {
			return true
		}
	}
	return false
}

// IsQuit checks if the key message is a quit command.
func (km KeyMap) IsQuit(msg tea.KeyMsg) bool {
	return km.Quit.Matches(msg) || km.F10.Matches(msg)
}

// IsNavigation checks if the key message is a navigation key.
func (km KeyMap) IsNavigation(msg tea.KeyMsg) bool {
	return MatchesAny(msg, km.Up, km.Down, km.Left, km.Right,
		km.PageUp, km.PageDown, km.Home, km.End)
}

// IsFunctionKey checks if the key message is a function key.
func (km KeyMap) IsFunctionKey(msg tea.KeyMsg) bool {
	return MatchesAny(msg, km.F2, km.F3, km.F4, km.F10)
}

// GetFunctionKeyPage returns the page name for a function key.
func (km KeyMap) GetFunctionKeyPage(msg tea.KeyMsg) string {
	switch {
	case km.F2.Matches(msg):
		return "dashboard"
	case km.F3.Matches(msg):
		return "inventory"
	case km.F4.Matches(msg):
		return "settings"
	case km.F10.Matches(msg):
		return "quit"
	default:
		return ""
	}
}

// StatusBarHelp returns the help text for the status bar.
func (km KeyMap) StatusBarHelp() string {
	return "[F2]Dashboard [F3]Inventory [F4]Settings [Ctrl+L]Logout [F10]Quit"
}
