package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Crumb is one breadcrumb entry. Badge is drawn next to the name when
// positive, e.g. the unread count of the chat list.
type Crumb struct {
	Name  string
	Badge int
}

// Crumbs is a breadcrumb bar showing the current navigation path.
type Crumbs struct {
	*tview.TextView
	theme *Theme
}

// NewCrumbs creates a new breadcrumb bar.
func NewCrumbs(theme *Theme) *Crumbs {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)

	return &Crumbs{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders the breadcrumb trail. The last crumb is the active one.
func (c *Crumbs) Update(trail []Crumb) {
	c.Clear()
	_, _ = fmt.Fprint(c, c.Render(trail))
}

// Render returns the tagged text for trail without drawing it.
func (c *Crumbs) Render(trail []Crumb) string {
	parts := make([]string, 0, len(trail))
	for i, cr := range trail {
		label := strings.ToLower(cr.Name)
		if cr.Badge > 0 {
			label = fmt.Sprintf("%s(%d)", label, cr.Badge)
		}
		fg, bg, attr := c.theme.CrumbInactiveFg, c.theme.CrumbInactiveBg, ""
		if i == len(trail)-1 {
			fg, bg, attr = c.theme.CrumbActiveFg, c.theme.CrumbActiveBg, "b"
		}
		parts = append(parts, fmt.Sprintf("[%s:%s:%s] %s [-:-:-]",
			colorName(fg), colorName(bg), attr, tview.Escape(label)))
	}
	return strings.Join(parts, " ")
}

// colorName returns a tview-compatible color name string.
func colorName(c tcell.Color) string {
	for name, val := range tcell.ColorNames {
		if val == c {
			return name
		}
	}
	return fmt.Sprintf("#%06x", c.Hex())
}
