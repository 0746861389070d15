package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/matheus3301/guftagu/internal/call"
	"github.com/matheus3301/guftagu/internal/model"
	"github.com/matheus3301/guftagu/internal/store"
	"github.com/matheus3301/guftagu/internal/tui/ui"
	"github.com/rivo/tview"
)

// CallsView shows the active call above the call history.
type CallsView struct {
	*tview.Flex
	theme   *ui.Theme
	active  *tview.TextView
	history *tview.Table
	calls   []model.Call
	now     func() time.Time
}

// NewCallsView creates the calls page.
func NewCallsView(theme *ui.Theme) *CallsView {
	active := tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignCenter)
	active.SetBorder(true)
	active.SetBorderColor(theme.BorderFocusColor)
	active.SetBackgroundColor(theme.BgColor)
	active.SetTitle(" Call ")
	active.SetTitleColor(theme.TitleColor)

	history := newTable(theme, " Recent ")

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(active, 0, 0, false).
		AddItem(history, 0, 1, true)

	return &CallsView{
		Flex:    flex,
		theme:   theme,
		active:  active,
		history: history,
		now:     time.Now,
	}
}

// Name implements Component.
func (cv *CallsView) Name() string { return "Calls" }

// Hints implements Component.
func (cv *CallsView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Call back"},
		{Key: "h", Description: "Hang up"},
		{Key: "M", Description: "Minimize"},
	}
}

// Update redraws the active call panel and the history.
func (cv *CallsView) Update(state store.CallView, active bool, calls []model.Call) {
	cv.calls = calls

	cv.active.Clear()
	if active && !state.Minimized {
		cv.ResizeItem(cv.active, 5, 0)
		_, _ = fmt.Fprint(cv.active, cv.RenderActive(state))
	} else {
		cv.ResizeItem(cv.active, 0, 0)
	}

	cv.history.Clear()
	headerCells(cv.history, cv.theme, []string{"  ", " NAME", " TYPE", " WHEN", " DURATION"}, []int{0, 2, 0, 1, 0})
	now := cv.now()
	for i, c := range calls {
		row := i + 1
		arrow, color := "↗", cv.theme.OnlineColor
		switch c.Status {
		case model.CallIncoming:
			arrow = "↙"
		case model.CallMissed:
			arrow, color = "↙", cv.theme.MissedCallColor
		}
		when := c.DateLabel
		if !c.At.IsZero() {
			when = model.DayLabel(c.At, now) + " " + model.Clock(c.At)
		}
		nameColor := cv.theme.FgColor
		if c.Status == model.CallMissed {
			nameColor = cv.theme.MissedCallColor
		}
		cv.history.SetCell(row, 0, tview.NewTableCell(" "+arrow).SetTextColor(color))
		cv.history.SetCell(row, 1, tview.NewTableCell(" "+oneLine(c.UserName)).SetExpansion(2).SetTextColor(nameColor))
		cv.history.SetCell(row, 2, tview.NewTableCell(" "+string(c.Type)).SetTextColor(cv.theme.DimColor))
		cv.history.SetCell(row, 3, tview.NewTableCell(" "+when).SetExpansion(1).SetTextColor(cv.theme.DimColor))
		cv.history.SetCell(row, 4, tview.NewTableCell(" "+c.Duration).SetTextColor(cv.theme.DimColor))
	}
	cv.history.SetTitle(fmt.Sprintf(" Recent (%d) ", len(calls)))
	keepCursor(cv.history, len(calls))
}

// RenderActive returns the tagged text of the active call panel.
func (cv *CallsView) RenderActive(state store.CallView) string {
	var status string
	switch state.Phase {
	case call.Calling:
		status = "Calling…"
	case call.Ringing:
		status = "Ringing…"
	case call.Connected:
		status = state.Duration
	default:
		status = strings.ToLower(string(state.Phase))
	}
	kind := "Voice call"
	if state.Target.Type == model.CallVideo {
		kind = "Video call"
	}
	return fmt.Sprintf("[%s::b]%s[-:-:-]\n[%s]%s[-]\n[%s]%s[-]",
		ui.Tag(cv.theme.TitleColor), clean(state.Target.Name),
		ui.Tag(cv.theme.DimColor), kind,
		ui.Tag(cv.theme.OnlineColor), status)
}

// SelectedCall returns the history entry under the cursor.
func (cv *CallsView) SelectedCall() (model.Call, bool) {
	if i := selectedIndex(cv.history, len(cv.calls)); i >= 0 {
		return cv.calls[i], true
	}
	return model.Call{}, false
}

// History returns the history table (for focus management).
func (cv *CallsView) History() *tview.Table {
	return cv.history
}
