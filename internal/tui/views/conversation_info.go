package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/matheus3301/guftagu/internal/model"
	"github.com/matheus3301/guftagu/internal/tui/ui"
	"github.com/matheus3301/guftagu/internal/verify"
	"github.com/rivo/tview"
)

// ConversationInfo displays details of a chat. Direct chats also show the
// security code both sides compare, as digits and as a QR code.
type ConversationInfo struct {
	*tview.TextView
	theme *ui.Theme
	now   func() time.Time
}

// NewConversationInfo creates a new conversation info view.
func NewConversationInfo(theme *ui.Theme) *ConversationInfo {
	return &ConversationInfo{
		TextView: newTextView(theme, " Details "),
		theme:    theme,
		now:      time.Now,
	}
}

// Name implements Component.
func (ci *ConversationInfo) Name() string { return "Details" }

// Hints implements Component.
func (ci *ConversationInfo) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "p", Description: "Pin"},
		{Key: "m", Description: "Mute"},
		{Key: "t", Description: "Disappearing"},
		{Key: "b", Description: "Block"},
		{Key: "Esc", Description: "Back"},
	}
}

// InfoState is what the details page shows.
type InfoState struct {
	Chat    model.Chat
	Me      model.User
	Blocked bool
	Starred int
}

// Update renders chat details.
func (ci *ConversationInfo) Update(st InfoState) {
	ci.Clear()
	ci.SetTitle(fmt.Sprintf(" %s ", escape(st.Chat.Name)))
	_, _ = fmt.Fprint(ci, ci.Render(st))
	ci.ScrollToBeginning()
}

// Render returns the tagged details text.
func (ci *ConversationInfo) Render(st InfoState) string {
	c := st.Chat
	fg := ui.Tag(ci.theme.FgColor)
	ct := ui.Tag(ci.theme.CounterColor)

	var b strings.Builder
	field := func(label, value string) {
		fmt.Fprintf(&b, " [%s::b]%-13s[-:-:-] [%s]%s[-]\n", fg, label, ct, clean(value))
	}
	onOff := func(v bool) string {
		if v {
			return "on"
		}
		return "off"
	}

	b.WriteString("\n")
	field("Name:", c.Name)
	kind := "Direct"
	if c.IsGroup {
		kind = "Group"
	}
	field("Type:", kind)
	if c.About != "" {
		field("About:", c.About)
	}
	if !c.LastActivity.IsZero() {
		field("Last active:", model.Ago(c.LastActivity, ci.now()))
	}
	field("Unread:", fmt.Sprintf("%d", c.UnreadCount))
	field("Starred:", fmt.Sprintf("%d", st.Starred))
	field("Pinned:", onOff(c.Pinned))
	field("Muted:", onOff(c.Muted))
	field("Archived:", onOff(c.Archived))
	field("Disappearing:", onOff(c.Disappearing))

	if c.IsGroup {
		fmt.Fprintf(&b, "\n [%s::b]Members (%d)[-:-:-]\n", fg, len(c.Members)+1)
		fmt.Fprintf(&b, "  [%s]%s (you)[-]\n", ct, clean(st.Me.Name))
		for _, m := range c.Members {
			role := ""
			for _, a := range c.Admins {
				if a == m.ID {
					role = " admin"
				}
			}
			fmt.Fprintf(&b, "  [%s]%s[-][%s]%s[-]\n", ct, clean(m.Name), ui.Tag(ci.theme.DimColor), role)
		}
		return b.String()
	}

	if st.Blocked {
		fmt.Fprintf(&b, "\n [%s]You blocked this contact.[-]\n", ui.Tag(ci.theme.FlashErrColor))
	}

	code := verify.Code(st.Me.ID, c.ID)
	fmt.Fprintf(&b, "\n [%s::b]Security code[-:-:-]\n", fg)
	for _, line := range strings.Split(verify.Format(code), "\n") {
		fmt.Fprintf(&b, "  [%s]%s[-]\n", ct, line)
	}
	if qr, err := verify.RenderQR(code); err == nil {
		b.WriteString("\n")
		b.WriteString(qr)
	}
	fmt.Fprintf(&b, "\n [%s]Compare this code with %s to verify the chat.[-]\n", ui.Tag(ci.theme.DimColor), clean(c.Name))
	return b.String()
}
