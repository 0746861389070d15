package ui

// MenuHint describes a keyboard shortcut for display in the menu bar.
type MenuHint struct {
	Key         string
	Description string
	Numeric     bool // true for 0-9 shortcuts (displayed in a different color)
}

// Component is implemented by every page of the TUI. Name is the crumb
// label and Hints feed the menu while the page is on top.
type Component interface {
	Name() string
	Hints() []MenuHint
}
