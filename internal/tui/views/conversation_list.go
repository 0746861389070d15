package views

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/guftagu/internal/tui/ui"
	"github.com/matheus3301/guftagu/internal/tui/viewmodel"
	"github.com/rivo/tview"
)

// ConversationList is the main chat list view.
type ConversationList struct {
	*tview.Table
	theme    *ui.Theme
	rows     []viewmodel.ChatRow
	filter   string
	archived bool
	now      func() time.Time
}

// NewConversationList creates a new conversation list table.
func NewConversationList(theme *ui.Theme) *ConversationList {
	return &ConversationList{
		Table: newTable(theme, " Chats "),
		theme: theme,
		now:   time.Now,
	}
}

// Name implements Component.
func (cl *ConversationList) Name() string {
	if cl.archived {
		return "Archived"
	}
	return "Chats"
}

// Hints implements Component.
func (cl *ConversationList) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Open"},
		{Key: "p", Description: "Pin"},
		{Key: "m", Description: "Mute"},
		{Key: "a", Description: "Archive"},
		{Key: "A", Description: "Archived"},
		{Key: "/", Description: "Filter"},
		{Key: "1-9", Description: "Jump", Numeric: true},
	}
}

// Update refreshes the list. The cursor stays on the same chat when it is
// still listed.
func (cl *ConversationList) Update(rows []viewmodel.ChatRow, filter string, archived bool) {
	selected := cl.SelectedChat()
	cl.rows, cl.filter, cl.archived = rows, filter, archived
	cl.render()
	for i, r := range rows {
		if r.Chat.ID == selected {
			cl.Select(i+1, 0)
			return
		}
	}
	keepCursor(cl.Table, len(rows))
}

func (cl *ConversationList) render() {
	cl.Clear()
	headerCells(cl.Table, cl.theme, []string{"  ", " NAME", " LAST MESSAGE", " TIME", " "}, []int{0, 2, 3, 0, 0})

	now := cl.now()
	for i, r := range cl.rows {
		row := i + 1
		c := r.Chat

		marker := " "
		switch {
		case r.Pinned:
			marker = "▲"
		case c.IsGroup:
			marker = "#"
		case c.Online:
			marker = "●"
		}
		markerColor := cl.theme.DimColor
		if c.Online && !c.IsGroup {
			markerColor = cl.theme.OnlineColor
		}

		name := oneLine(c.Name)
		if c.Muted {
			name += " [::d](muted)[-:-:-]"
		}
		preview := oneLine(c.LastMessage)
		previewColor := cl.theme.FgColor
		if r.Typing {
			preview, previewColor = "typing…", cl.theme.TypingColor
		}
		badge := ""
		badgeColor := cl.theme.UnreadColor
		if c.UnreadCount > 0 {
			badge = fmt.Sprintf("%d", c.UnreadCount)
			if c.Muted {
				badgeColor = cl.theme.DimColor
			}
		}

		cl.SetCell(row, 0, tview.NewTableCell(" "+marker).SetTextColor(markerColor))
		cl.SetCell(row, 1, tview.NewTableCell(" "+name).SetExpansion(2).SetTextColor(cl.theme.FgColor))
		cl.SetCell(row, 2, tview.NewTableCell(" "+preview).SetExpansion(3).SetMaxWidth(48).SetTextColor(previewColor))
		cl.SetCell(row, 3, tview.NewTableCell(" "+stamp(c.LastActivity, now)).SetTextColor(cl.theme.DimColor).SetAlign(tview.AlignRight))
		cl.SetCell(row, 4, tview.NewTableCell(badge).SetTextColor(badgeColor).SetAttributes(tcell.AttrBold).SetAlign(tview.AlignRight))
	}

	title := cl.Name()
	if cl.filter != "" {
		cl.SetTitle(fmt.Sprintf(" %s (%d) filter: %s ", title, len(cl.rows), escape(cl.filter)))
	} else {
		cl.SetTitle(fmt.Sprintf(" %s (%d) ", title, len(cl.rows)))
	}
}

// SelectedChat returns the id of the chat under the cursor.
func (cl *ConversationList) SelectedChat() string {
	if i := selectedIndex(cl.Table, len(cl.rows)); i >= 0 {
		return cl.rows[i].Chat.ID
	}
	return ""
}

// ChatByIndex returns the id of the Nth listed chat (1-based).
func (cl *ConversationList) ChatByIndex(n int) string {
	if n < 1 || n > len(cl.rows) {
		return ""
	}
	return cl.rows[n-1].Chat.ID
}
