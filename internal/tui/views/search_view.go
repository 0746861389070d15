package views

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/guftagu/internal/index"
	"github.com/matheus3301/guftagu/internal/model"
	"github.com/matheus3301/guftagu/internal/tui/ui"
	"github.com/rivo/tview"
)

// SearchView searches messages across all chats.
type SearchView struct {
	*tview.Flex
	theme   *ui.Theme
	input   *tview.InputField
	results *tview.Table
	onQuery func(query string)
	data    []index.Hit
	now     func() time.Time
}

// NewSearchView creates a new search view.
func NewSearchView(theme *ui.Theme) *SearchView {
	input := tview.NewInputField().
		SetLabel(" Search: ").
		SetFieldWidth(0)
	input.SetBackgroundColor(theme.BgColor)
	input.SetFieldBackgroundColor(theme.BgColor)
	input.SetFieldTextColor(theme.FgColor)
	input.SetLabelColor(theme.MenuKeyColor)

	results := newTable(theme, " Results ")

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(input, 1, 0, true).
		AddItem(results, 0, 1, false)

	sv := &SearchView{
		Flex:    flex,
		theme:   theme,
		input:   input,
		results: results,
		now:     time.Now,
	}
	input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && sv.onQuery != nil {
			sv.onQuery(sv.input.GetText())
		}
	})
	return sv
}

// Name implements Component.
func (sv *SearchView) Name() string { return "Search" }

// Hints implements Component.
func (sv *SearchView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Search/Open"},
		{Key: "Tab", Description: "Results"},
		{Key: "Esc", Description: "Back"},
	}
}

// SetOnQuery sets the callback when a search query is submitted.
func (sv *SearchView) SetOnQuery(fn func(query string)) {
	sv.onQuery = fn
}

// SetQuery fills the input, e.g. from the :search command.
func (sv *SearchView) SetQuery(q string) {
	sv.input.SetText(q)
}

// Update refreshes search results.
func (sv *SearchView) Update(query string, hits []index.Hit) {
	sv.data = hits
	sv.results.Clear()
	headerCells(sv.results, sv.theme, []string{" CHAT", " FROM", " SNIPPET", " TIME"}, []int{0, 0, 1, 0})

	now := sv.now()
	for i, h := range hits {
		row := i + 1
		from := h.SenderName
		if h.SenderID == model.Me {
			from = "You"
		}
		sv.results.SetCell(row, 0, tview.NewTableCell(" "+oneLine(h.ChatName)).SetMaxWidth(24).SetTextColor(sv.theme.CounterColor))
		sv.results.SetCell(row, 1, tview.NewTableCell(" "+oneLine(from)).SetMaxWidth(18).SetTextColor(sv.theme.FgColor))
		sv.results.SetCell(row, 2, tview.NewTableCell(" "+oneLine(h.Snippet)).SetExpansion(1).SetTextColor(sv.theme.FgColor))
		sv.results.SetCell(row, 3, tview.NewTableCell(" "+stamp(h.SentAt, now)).SetTextColor(sv.theme.DimColor))
	}
	if query == "" {
		sv.results.SetTitle(" Results ")
	} else {
		sv.results.SetTitle(fmt.Sprintf(" Results for %q (%d) ", escape(query), len(hits)))
	}
	sv.results.Select(1, 0)
}

// SelectedResult returns the chat and message id of the selected hit.
func (sv *SearchView) SelectedResult() (chatID, messageID string) {
	if i := selectedIndex(sv.results, len(sv.data)); i >= 0 {
		return sv.data[i].ChatID, sv.data[i].MessageID
	}
	return "", ""
}

// Input returns the search input field.
func (sv *SearchView) Input() *tview.InputField {
	return sv.input
}

// Results returns the results table.
func (sv *SearchView) Results() *tview.Table {
	return sv.results
}
