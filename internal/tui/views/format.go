package views

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/guftagu/internal/model"
	"github.com/matheus3301/guftagu/internal/tui/ui"
	"github.com/rivo/tview"
)

func escape(s string) string { return tview.Escape(s) }

// ticks returns the delivery marker of an outgoing message.
func ticks(theme *ui.Theme, s model.MessageStatus) string {
	switch s {
	case model.StatusRead:
		return fmt.Sprintf("[%s]✓✓[-]", ui.Tag(theme.ReadTickColor))
	case model.StatusDelivered:
		return fmt.Sprintf("[%s]✓✓[-]", ui.Tag(theme.DimColor))
	case model.StatusSent:
		return fmt.Sprintf("[%s]✓[-]", ui.Tag(theme.DimColor))
	}
	return ""
}

// headerCells writes a bold, unselectable header row. Columns with a zero
// expansion keep their content width.
func headerCells(t *tview.Table, theme *ui.Theme, titles []string, expansion []int) {
	for col, h := range titles {
		cell := tview.NewTableCell(h).
			SetSelectable(false).
			SetTextColor(theme.TableHeaderFg).
			SetBackgroundColor(theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold)
		if col < len(expansion) && expansion[col] > 0 {
			cell.SetExpansion(expansion[col])
		}
		t.SetCell(0, col, cell)
	}
}

func newTable(theme *ui.Theme, title string) *tview.Table {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	table.SetTitle(title)
	table.SetTitleColor(theme.TitleColor)
	return table
}

func newTextView(theme *ui.Theme, title string) *tview.TextView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(title)
	tv.SetTitleColor(theme.TitleColor)
	return tv
}

// selectedIndex maps the table cursor to a data index, skipping the header.
func selectedIndex(t *tview.Table, n int) int {
	row, _ := t.GetSelection()
	if idx := row - 1; idx >= 0 && idx < n {
		return idx
	}
	return -1
}

// keepCursor moves the cursor onto the first data row when it is on the
// header or past the end.
func keepCursor(t *tview.Table, n int) {
	if n == 0 {
		return
	}
	if row, _ := t.GetSelection(); row < 1 || row > n {
		t.Select(1, 0)
	}
}

func stamp(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	return model.Relative(t, now)
}
