package ui

import (
	"fmt"

	"github.com/rivo/tview"
)

// SessionData holds the header summary of the signed-in account.
type SessionData struct {
	Session       string
	User          string
	Section       string
	Chats         int
	Unread        int
	Notifications int
	Call          string // empty when no call is active
}

// SessionInfo displays session metadata in the header.
type SessionInfo struct {
	*tview.TextView
	theme *Theme
}

// NewSessionInfo creates a new session info panel.
func NewSessionInfo(theme *Theme) *SessionInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 1, 1)

	return &SessionInfo{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders the session info.
func (si *SessionInfo) Update(data *SessionData) {
	si.Clear()
	if data == nil {
		return
	}

	fg := colorName(si.theme.FgColor)
	counter := colorName(si.theme.CounterColor)
	unread := colorName(si.theme.UnreadColor)

	row := func(label, color, value string) {
		_, _ = fmt.Fprintf(si, "[%s::b]%-8s[-:-:-] [%s]%s[-]\n", fg, label, color, tview.Escape(value))
	}
	row("Session:", counter, data.Session)
	row("User:", counter, data.User)
	row("View:", counter, data.Section)
	row("Chats:", counter, fmt.Sprintf("%d", data.Chats))
	if data.Unread > 0 {
		row("Unread:", unread, fmt.Sprintf("%d", data.Unread))
	} else {
		row("Unread:", counter, "0")
	}
	if data.Call != "" {
		row("Call:", colorName(si.theme.OnlineColor), data.Call)
	} else {
		row("Alerts:", counter, fmt.Sprintf("%d", data.Notifications))
	}
}
