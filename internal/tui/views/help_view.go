package views

import (
	"fmt"
	"strings"

	"github.com/matheus3301/guftagu/internal/tui/ui"
	"github.com/rivo/tview"
)

// HelpSection is one titled group of key or command descriptions.
type HelpSection struct {
	Title string
	Items []ui.MenuHint
}

// HelpView displays the key binding and command reference.
type HelpView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewHelpView creates a new help view.
func NewHelpView(theme *ui.Theme) *HelpView {
	return &HelpView{
		TextView: newTextView(theme, " Help "),
		theme:    theme,
	}
}

// Name implements Component.
func (hv *HelpView) Name() string { return "Help" }

// Hints implements Component.
func (hv *HelpView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
	}
}

// Update renders the reference from sections.
func (hv *HelpView) Update(sections []HelpSection) {
	hv.Clear()
	_, _ = fmt.Fprint(hv, hv.Render(sections))
	hv.ScrollToBeginning()
}

// Render returns the tagged help text.
func (hv *HelpView) Render(sections []HelpSection) string {
	kc := ui.Tag(hv.theme.MenuKeyColor)
	var b strings.Builder
	for _, s := range sections {
		fmt.Fprintf(&b, "\n  [::b]%s[-:-:-]\n\n", s.Title)
		width := 0
		for _, it := range s.Items {
			width = max(width, len(it.Key))
		}
		for _, it := range s.Items {
			pad := strings.Repeat(" ", width-len(it.Key)+2)
			fmt.Fprintf(&b, "  [%s]%s[-]%s%s\n", kc, escape(it.Key), pad, escape(it.Description))
		}
	}
	return b.String()
}
