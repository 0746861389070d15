package tui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/guftagu/internal/model"
	"github.com/matheus3301/guftagu/internal/tui/keys"
	"github.com/matheus3301/guftagu/internal/tui/ui"
	"github.com/matheus3301/guftagu/internal/tui/views"
	"github.com/rivo/tview"
)

func key(r rune, desc string, visible bool, fn func()) *keys.Action {
	return &keys.Action{Key: tcell.KeyRune, Rune: r, Description: desc, Visible: visible, Handler: fn}
}

func special(k tcell.Key, label, desc string, fn func()) *keys.Action {
	return &keys.Action{Key: k, Label: label, Description: desc, Visible: true, Handler: fn}
}

func (a *App) setupBindings() {
	r := a.registry
	st := a.vm.Store

	r.AddGlobal("command", key(':', "Command", true, func() { a.showPrompt(ui.PromptCommand) }))
	r.AddGlobal("help", key('?', "Help", true, a.showHelp))
	r.AddGlobal("notifications", key('N', "Alerts", true, a.openNotifications))
	r.AddGlobal("search", key('S', "Search", true, func() { a.pages.Push(pageSearch) }))
	r.AddGlobal("section", special(tcell.KeyTab, "Tab", "Section", a.nextSection))
	r.AddGlobal("quit", key('q', "Back/Quit", true, a.back))

	// Chat list.
	r.AddView(pageChats, "open", special(tcell.KeyEnter, "Enter", "Open", func() {
		if id := a.chats.SelectedChat(); id != "" {
			a.openChat(id)
		}
	}))
	onSelected := func(fn func(id string)) func() {
		return func() {
			if id := a.chats.SelectedChat(); id != "" {
				fn(id)
			}
		}
	}
	r.AddView(pageChats, "pin", key('p', "Pin", true, onSelected(st.TogglePinChat)))
	r.AddView(pageChats, "mute", key('m', "Mute", true, onSelected(st.ToggleMuteChat)))
	r.AddView(pageChats, "archive", key('a', "Archive", true, onSelected(st.ToggleArchiveChat)))
	r.AddView(pageChats, "archived", key('A', "Archived", true, func() {
		if a.vm.ToggleArchived() {
			a.vm.Flash.Info("showing archived chats")
		}
		a.refresh()
	}))
	r.AddView(pageChats, "filter", key('/', "Filter", true, func() { a.showPrompt(ui.PromptFilter) }))
	r.AddView(pageChats, "unfilter", key('0', "All", false, func() {
		a.vm.SetFilter("")
		a.refresh()
	}))
	for n := 1; n <= 9; n++ {
		n := n
		r.AddView(pageChats, "jump"+string(rune('0'+n)), key(rune('0'+n), "Jump", false, func() {
			if id := a.chats.ChatByIndex(n); id != "" {
				a.openChat(id)
			}
		}))
	}

	// Thread.
	r.AddView(pageThread, "compose", key('i', "Compose", true, func() { a.app.SetFocus(a.thread.Composer()) }))
	r.AddView(pageThread, "reply", key('r', "Reply", true, func() {
		if _, ok := a.vm.ReplyToLast(); ok {
			a.app.SetFocus(a.thread.Composer())
		}
	}))
	r.AddView(pageThread, "unreply", key('x', "Cancel reply", true, st.ClearReplyingTo))
	r.AddView(pageThread, "star", key('s', "Star", true, func() { a.vm.StarLast() }))
	r.AddView(pageThread, "find", key('f', "Find", true, func() {
		st.SetInChatSearch(true)
		a.showPrompt(ui.PromptFind)
	}))
	r.AddView(pageThread, "voice", key('v', "Voice call", true, func() { a.startCall(model.CallVoice) }))
	r.AddView(pageThread, "video", key('V', "Video call", true, func() { a.startCall(model.CallVideo) }))
	r.AddView(pageThread, "details", key('d', "Details", true, func() { a.pages.Push(pageInfo) }))

	// Details.
	onActive := func(fn func(id string)) func() {
		return func() {
			if id := st.ActiveChatID(); id != "" {
				fn(id)
			}
		}
	}
	r.AddView(pageInfo, "pin", key('p', "Pin", true, onActive(st.TogglePinChat)))
	r.AddView(pageInfo, "mute", key('m', "Mute", true, onActive(st.ToggleMuteChat)))
	r.AddView(pageInfo, "disappearing", key('t', "Disappearing", true, onActive(st.ToggleDisappearingMessages)))
	r.AddView(pageInfo, "block", key('b', "Block", true, onActive(a.toggleBlock)))

	// Search results; the input handles its own Enter.
	r.AddView(pageSearch, "open", special(tcell.KeyEnter, "Enter", "Open", func() {
		if chatID, _ := a.search.SelectedResult(); chatID != "" {
			a.openChat(chatID)
		}
	}))
	r.AddView(pageSearch, "input", special(tcell.KeyTab, "Tab", "Query", func() {
		a.app.SetFocus(a.search.Input())
	}))

	// Calls.
	r.AddView(pageCalls, "callback", special(tcell.KeyEnter, "Enter", "Call back", func() {
		if c, ok := a.calls.SelectedCall(); ok {
			a.placeCall(model.CallTarget{UserID: c.UserID, Name: c.UserName, Avatar: c.UserAvatar, Type: c.Type})
		}
	}))
	r.AddView(pageCalls, "hangup", key('h', "Hang up", true, a.hangUp))
	r.AddView(pageCalls, "minimize", key('M', "Minimize", true, func() {
		if cv, ok := st.CallState(); ok {
			st.SetCallMinimized(!cv.Minimized)
		}
	}))

	// Status.
	r.AddView(pageStatus, "view", special(tcell.KeyEnter, "Enter", "View", func() {
		if id := a.stories.SelectedAuthor(); id != "" {
			st.OpenStories(id)
		}
	}))
	r.AddView(pageStatus, "next", key('n', "Next", true, st.NextStory))
	r.AddView(pageStatus, "prev", key('b', "Previous", true, st.PrevStory))
	r.AddView(pageStatus, "close", key('c', "Close", true, st.CloseStories))

	// Notifications.
	r.AddView(pageNotifications, "open", special(tcell.KeyEnter, "Enter", "Open", func() {
		n, ok := a.notes.Selected()
		if !ok {
			return
		}
		st.MarkNotificationAsRead(n.ID)
		if n.ChatID != "" {
			a.pages.Pop()
			a.openChat(n.ChatID)
		}
	}))
	r.AddView(pageNotifications, "readall", key('r', "Read all", true, st.MarkAllNotificationsAsRead))
	r.AddView(pageNotifications, "clear", key('C', "Clear", true, st.ClearNotifications))
}

// handleKey routes keys that are not typed into an input field through
// the registry.
func (a *App) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	focused := a.app.GetFocus()

	if a.promptOpen {
		return ev
	}
	if focused == a.thread.Composer() {
		if ev.Key() == tcell.KeyEscape {
			a.app.SetFocus(a.thread.Messages())
			return nil
		}
		return ev
	}
	if ev.Key() == tcell.KeyEscape {
		a.back()
		return nil
	}
	if _, ok := focused.(*tview.InputField); ok {
		if a.pages.Current() == pageSearch && ev.Key() == tcell.KeyTab {
			a.app.SetFocus(a.search.Results())
			return nil
		}
		return ev
	}

	if a.registry.HandleEvent(a.pages.Current(), ev) {
		a.refresh()
		return nil
	}
	return ev
}

// nextSection cycles chats, status and calls from a section root.
func (a *App) nextSection() {
	if a.pages.Depth() > 1 {
		return
	}
	switch a.pages.Root() {
	case pageChats:
		a.goSection(model.SectionStatus)
	case pageStatus:
		a.goSection(model.SectionCalls)
	default:
		a.goSection(model.SectionChats)
	}
}

func (a *App) startCall(typ model.CallType) {
	if _, err := a.vm.Call(typ); err != nil {
		a.vm.Flash.Err(err)
		return
	}
	a.pages.Push(pageCalls)
}

func (a *App) placeCall(target model.CallTarget) {
	if err := a.vm.Store.StartCall(target); err != nil {
		a.vm.Flash.Err(err)
	}
}

func (a *App) hangUp() {
	c, ok := a.vm.Store.EndCall()
	if !ok {
		a.vm.Flash.Warn("no call in progress")
		return
	}
	if c.Duration != "" {
		a.vm.Flash.Infof("call with %s ended after %s", c.UserName, c.Duration)
	} else {
		a.vm.Flash.Infof("call with %s ended", c.UserName)
	}
}

func (a *App) toggleBlock(userID string) {
	if chat, ok := a.vm.Store.Chat(userID); ok && chat.IsGroup {
		a.vm.Flash.Warn("groups cannot be blocked")
		return
	}
	if a.vm.Store.IsBlocked(userID) {
		a.vm.Store.UnblockUser(userID)
		a.vm.Flash.Info("contact unblocked")
		return
	}
	a.vm.Store.BlockUser(userID)
	a.vm.Flash.Info("contact blocked")
}

func (a *App) showHelp() {
	sections := []views.HelpSection{
		{Title: "Global", Items: append(a.registry.Hints(""), ui.MenuHint{Key: "Esc", Description: "Back"})},
	}
	for _, p := range []string{pageChats, pageThread, pageInfo, pageSearch, pageCalls, pageStatus, pageNotifications} {
		sections = append(sections, views.HelpSection{Title: a.components[p].Name(), Items: a.components[p].Hints()})
	}
	sections = append(sections, views.HelpSection{Title: "Commands", Items: commandHelp})
	a.help.Update(sections)
	a.pages.Push(pageHelp)
}
