package views

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/guftagu/internal/model"
	"github.com/matheus3301/guftagu/internal/tui/ui"
	"github.com/rivo/tview"
)

// NotificationsView is the notification center.
type NotificationsView struct {
	*tview.Table
	theme *ui.Theme
	items []model.Notification
	now   func() time.Time
}

// NewNotificationsView creates the notification center page.
func NewNotificationsView(theme *ui.Theme) *NotificationsView {
	return &NotificationsView{
		Table: newTable(theme, " Notifications "),
		theme: theme,
		now:   time.Now,
	}
}

// Name implements Component.
func (nv *NotificationsView) Name() string { return "Notifications" }

// Hints implements Component.
func (nv *NotificationsView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Open"},
		{Key: "r", Description: "Read all"},
		{Key: "C", Description: "Clear"},
		{Key: "Esc", Description: "Close"},
	}
}

// Update redraws the feed. unread is shown in the title.
func (nv *NotificationsView) Update(items []model.Notification, unread int) {
	nv.items = items
	nv.Clear()
	headerCells(nv.Table, nv.theme, []string{"  ", " TITLE", " MESSAGE", " WHEN"}, []int{0, 1, 3, 0})

	now := nv.now()
	for i, n := range items {
		row := i + 1
		dot, attr := " ", tcell.AttrNone
		if !n.Read {
			dot, attr = "●", tcell.AttrBold
		}
		nv.SetCell(row, 0, tview.NewTableCell(" "+dot).SetTextColor(nv.theme.UnreadColor))
		nv.SetCell(row, 1, tview.NewTableCell(" "+oneLine(n.Title)).SetExpansion(1).SetTextColor(nv.theme.FgColor).SetAttributes(attr))
		nv.SetCell(row, 2, tview.NewTableCell(" "+oneLine(n.Body)).SetExpansion(3).SetTextColor(nv.theme.FgColor))
		nv.SetCell(row, 3, tview.NewTableCell(" "+stamp(n.At, now)).SetTextColor(nv.theme.DimColor))
	}
	nv.SetTitle(fmt.Sprintf(" Notifications (%d unread) ", unread))
	keepCursor(nv.Table, len(items))
}

// Selected returns the notification under the cursor.
func (nv *NotificationsView) Selected() (model.Notification, bool) {
	if i := selectedIndex(nv.Table, len(nv.items)); i >= 0 {
		return nv.items[i], true
	}
	return model.Notification{}, false
}
