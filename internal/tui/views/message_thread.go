package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/guftagu/internal/model"
	"github.com/matheus3301/guftagu/internal/tui/ui"
	"github.com/rivo/tview"
)

// ThreadState is everything the thread view draws for the open chat.
type ThreadState struct {
	Chat      model.Chat
	Messages  []model.Message
	Typing    bool
	Online    bool
	ReplyTo   *model.Message
	Find      string // in-chat search query, highlighted when set
	Matches   int
	CallLabel string
}

// MessageThread displays messages and a composer for a single chat.
type MessageThread struct {
	*tview.Flex
	theme    *ui.Theme
	messages *tview.TextView
	reply    *tview.TextView
	composer *tview.InputField
	chatName string
	chatID   string
	onSend   func(text string)
	now      func() time.Time
}

// NewMessageThread creates a new message thread view.
func NewMessageThread(theme *ui.Theme) *MessageThread {
	messages := newTextView(theme, " Messages ")

	reply := tview.NewTextView().SetDynamicColors(true)
	reply.SetBackgroundColor(theme.BgColor)
	reply.SetBorderPadding(0, 0, 1, 1)

	composer := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0)
	composer.SetBorder(true)
	composer.SetBorderColor(theme.BorderColor)
	composer.SetBackgroundColor(theme.BgColor)
	composer.SetFieldBackgroundColor(theme.BgColor)
	composer.SetFieldTextColor(theme.FgColor)
	composer.SetLabelColor(theme.MenuKeyColor)
	composer.SetTitle(" Compose (i to focus) ")
	composer.SetTitleColor(theme.TitleColor)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(messages, 0, 1, true).
		AddItem(reply, 0, 0, false).
		AddItem(composer, 3, 0, false)

	mt := &MessageThread{
		Flex:     flex,
		theme:    theme,
		messages: messages,
		reply:    reply,
		composer: composer,
		now:      time.Now,
	}

	composer.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && mt.onSend != nil {
			if text := composer.GetText(); strings.TrimSpace(text) != "" {
				mt.onSend(text)
				composer.SetText("")
			}
		}
	})

	return mt
}

// Name implements Component.
func (mt *MessageThread) Name() string {
	if mt.chatName != "" {
		return mt.chatName
	}
	return "Messages"
}

// Hints implements Component.
func (mt *MessageThread) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "i", Description: "Compose"},
		{Key: "r", Description: "Reply last"},
		{Key: "x", Description: "Cancel reply"},
		{Key: "s", Description: "Star last"},
		{Key: "f", Description: "Find"},
		{Key: "v", Description: "Voice call"},
		{Key: "V", Description: "Video call"},
		{Key: "d", Description: "Details"},
		{Key: "Esc", Description: "Back"},
	}
}

// ChatID returns the id of the chat on screen.
func (mt *MessageThread) ChatID() string {
	return mt.chatID
}

// SetOnSend sets the callback when a message is sent.
func (mt *MessageThread) SetOnSend(fn func(text string)) {
	mt.onSend = fn
}

// Update redraws the thread. Only the newest line is kept in view.
func (mt *MessageThread) Update(st ThreadState) {
	mt.chatID = st.Chat.ID
	mt.chatName = st.Chat.Name
	mt.messages.SetTitle(mt.title(st))

	mt.messages.Clear()
	_, _ = fmt.Fprint(mt.messages, mt.Render(st))
	mt.messages.ScrollToEnd()

	mt.reply.Clear()
	if st.ReplyTo != nil {
		_, _ = fmt.Fprintf(mt.reply, "[%s]↪ replying to %s:[-] %s",
			ui.Tag(mt.theme.DimColor), clean(senderLabel(*st.ReplyTo)), oneLine(st.ReplyTo.Preview()))
		mt.ResizeItem(mt.reply, 1, 0)
	} else {
		mt.ResizeItem(mt.reply, 0, 0)
	}
}

func (mt *MessageThread) title(st ThreadState) string {
	var b strings.Builder
	b.WriteString(" ")
	b.WriteString(escape(st.Chat.Name))
	switch {
	case st.Typing:
		fmt.Fprintf(&b, " [%s]typing…[-]", ui.Tag(mt.theme.TypingColor))
	case st.Chat.IsGroup:
		fmt.Fprintf(&b, " [%s]%d members[-]", ui.Tag(mt.theme.DimColor), len(st.Chat.Members)+1)
	case st.Online:
		fmt.Fprintf(&b, " [%s]online[-]", ui.Tag(mt.theme.OnlineColor))
	}
	if st.Find != "" {
		fmt.Fprintf(&b, " [%s]find %q: %d[-]", ui.Tag(mt.theme.CounterColor), escape(st.Find), st.Matches)
	}
	if st.CallLabel != "" {
		fmt.Fprintf(&b, " [%s]☎ %s[-]", ui.Tag(mt.theme.OnlineColor), escape(st.CallLabel))
	}
	b.WriteString(" ")
	return b.String()
}

// Render returns the tagged text of the message list. Messages are grouped
// under day separators.
func (mt *MessageThread) Render(st ThreadState) string {
	var b strings.Builder
	now := mt.now()
	day := ""
	if len(st.Messages) == 0 {
		fmt.Fprintf(&b, "[%s]No messages yet. Press i to write one.[-]\n", ui.Tag(mt.theme.DimColor))
	}
	if st.Chat.Disappearing {
		fmt.Fprintf(&b, "[%s]Disappearing messages are on.[-]\n\n", ui.Tag(mt.theme.DimColor))
	}
	for _, m := range st.Messages {
		if d := model.DayLabel(m.SentAt, now); d != day {
			day = d
			fmt.Fprintf(&b, "[%s]── %s ──[-]\n", ui.Tag(mt.theme.DimColor), d)
		}
		mt.writeMessage(&b, m, st.Find)
	}
	if st.Typing {
		fmt.Fprintf(&b, "[%s]%s is typing…[-]\n", ui.Tag(mt.theme.TypingColor), escape(st.Chat.Name))
	}
	return b.String()
}

func (mt *MessageThread) writeMessage(b *strings.Builder, m model.Message, find string) {
	nameColor := mt.theme.CounterColor
	if m.FromMe() {
		nameColor = mt.theme.OwnMessageColor
	}
	fmt.Fprintf(b, "[%s::b]%s[-:-:-] [%s]%s[-]", ui.Tag(nameColor), clean(senderLabel(m)), ui.Tag(mt.theme.DimColor), model.Clock(m.SentAt))
	if m.FromMe() {
		b.WriteString(" " + ticks(mt.theme, m.Status))
	}
	if m.Starred {
		fmt.Fprintf(b, " [%s]★[-]", ui.Tag(mt.theme.CounterColor))
	}
	b.WriteString("\n")

	if m.ReplyTo != nil {
		fmt.Fprintf(b, "[%s]│ %s: %s[-]\n", ui.Tag(mt.theme.DimColor), clean(senderLabel(*m.ReplyTo)), oneLine(m.ReplyTo.Preview()))
	}
	body := bodyText(m)
	if find != "" {
		body = highlight(body, find, ui.Tag(mt.theme.TableCursorFg), ui.Tag(mt.theme.TableCursorBg))
	} else {
		body = clean(body)
	}
	b.WriteString(body)
	b.WriteString("\n\n")
}

// Messages returns the messages text view (for focus management).
func (mt *MessageThread) Messages() *tview.TextView {
	return mt.messages
}

// Composer returns the composer input field (for focus management).
func (mt *MessageThread) Composer() *tview.InputField {
	return mt.composer
}

func senderLabel(m model.Message) string {
	if m.FromMe() {
		return "You"
	}
	if m.SenderName != "" {
		return m.SenderName
	}
	return m.SenderID
}

// bodyText describes non-text messages in words.
func bodyText(m model.Message) string {
	p := m.Payload
	switch m.Type {
	case model.TypeImage, model.TypeVideo:
		label := "[" + string(m.Type) + "]"
		if m.Text != "" {
			label += " " + m.Text
		}
		return label
	case model.TypeFile:
		return "[file] " + p.FileName
	case model.TypeVoice:
		return fmt.Sprintf("[voice] %d:%02d", p.Duration/60, p.Duration%60)
	case model.TypeLocation:
		if p.Location != nil {
			if p.Location.Address != "" {
				return "[location] " + p.Location.Address
			}
			return fmt.Sprintf("[location] %.5f, %.5f", p.Location.Lat, p.Location.Lng)
		}
		return "[location]"
	case model.TypeContact:
		if p.Contact != nil {
			return "[contact] " + p.Contact.Name + " " + p.Contact.Phone
		}
		return "[contact]"
	}
	return m.Text
}

// highlight escapes text and wraps every case-insensitive occurrence of
// query in a reverse-colored region.
func highlight(text, query, fg, bg string) string {
	lower, q := strings.ToLower(text), strings.ToLower(query)
	if q == "" || len(lower) != len(text) {
		return clean(text)
	}
	var b strings.Builder
	for {
		i := strings.Index(lower, q)
		if i < 0 {
			b.WriteString(clean(text))
			return b.String()
		}
		b.WriteString(clean(text[:i]))
		fmt.Fprintf(&b, "[%s:%s]%s[-:-]", fg, bg, clean(text[i:i+len(q)]))
		text, lower = text[i+len(q):], lower[i+len(q):]
	}
}
