package tui

import (
	"github.com/matheus3301/guftagu/internal/model"
	"github.com/matheus3301/guftagu/internal/tui/ui"
	"github.com/matheus3301/guftagu/internal/tui/views"
	"github.com/rivo/tview"
)

var sectionPages = map[model.Section]string{
	model.SectionChats:  pageChats,
	model.SectionStatus: pageStatus,
	model.SectionCalls:  pageCalls,
}

// goSection replaces the page stack with a top-level section.
func (a *App) goSection(sec model.Section) {
	page, ok := sectionPages[sec]
	if !ok {
		return
	}
	a.leaveChat()
	a.closeNotificationCenter()
	a.vm.Store.SetActiveSection(sec)
	a.pages.Reset(page)
}

// openChat selects a chat and shows its thread above the chat list.
func (a *App) openChat(chatID string) {
	if err := a.vm.Open(chatID); err != nil {
		a.vm.Flash.Err(err)
		return
	}
	a.showThread()
}

// showThread shows the thread of the already selected chat.
func (a *App) showThread() {
	a.closeNotificationCenter()
	if a.pages.Root() != pageChats {
		a.vm.Store.SetActiveSection(model.SectionChats)
		a.pages.Reset(pageChats)
	}
	a.pages.Push(pageThread)
}

// leaveChat deselects the open chat so new messages count as unread again.
func (a *App) leaveChat() {
	if a.vm.Store.ActiveChatID() == "" {
		return
	}
	a.vm.Store.SetInChatSearch(false)
	a.vm.Store.ClearReplyingTo()
	a.vm.Store.ClearActiveChat()
}

func (a *App) openNotifications() {
	if !a.vm.Store.UI().NotificationCenterOpen {
		a.vm.Store.ToggleNotificationCenter()
	}
	a.pages.Push(pageNotifications)
}

func (a *App) closeNotificationCenter() {
	if a.vm.Store.UI().NotificationCenterOpen {
		a.vm.Store.ToggleNotificationCenter()
	}
}

// back closes the top page. On a section root it returns to the chat list,
// and on the chat list it quits.
func (a *App) back() {
	switch a.pages.Current() {
	case pageThread:
		a.leaveChat()
	case pageNotifications:
		a.closeNotificationCenter()
	case pageStatus:
		if _, open := a.vm.Store.StoryViewer(); open {
			a.vm.Store.CloseStories()
			return
		}
	}
	if a.pages.Depth() > 1 {
		a.pages.Pop()
		return
	}
	if a.pages.Root() != pageChats {
		a.goSection(model.SectionChats)
		return
	}
	if a.vm.Filter() != "" {
		a.vm.SetFilter("")
		a.refresh()
		return
	}
	a.app.Stop()
}

func (a *App) focusFor(page string) tview.Primitive {
	switch page {
	case pageThread:
		return a.thread.Messages()
	case pageInfo:
		return a.info
	case pageSearch:
		return a.search.Input()
	case pageCalls:
		return a.calls.History()
	case pageStatus:
		return a.stories.List()
	case pageNotifications:
		return a.notes
	case pageHelp:
		return a.help
	}
	return a.chats
}

// refresh redraws the header, footer and the page on top. It must run on
// the UI goroutine.
func (a *App) refresh() {
	st := a.vm.Store
	current := a.pages.Current()

	a.sessionInfo.Update(a.vm.Session(a.session))
	a.flashBar.Update(a.vm.Flash.GetMessage())
	a.updateChrome()

	switch current {
	case pageChats:
		a.chats.Update(a.vm.Rows(), a.vm.Filter(), a.vm.ShowingArchived())
	case pageThread, pageInfo:
		chat, ok := st.ActiveChat()
		if !ok {
			// Deleted or left while open.
			a.pages.Reset(pageChats)
			return
		}
		if current == pageThread {
			a.thread.Update(a.threadState(chat))
		} else {
			a.info.Update(views.InfoState{
				Chat:    chat,
				Me:      st.CurrentUser(),
				Blocked: st.IsBlocked(chat.ID),
				Starred: a.starredIn(chat.ID),
			})
		}
	case pageCalls:
		cv, active := st.CallState()
		a.calls.Update(cv, active, st.Calls())
	case pageStatus:
		viewer, open := st.StoryViewer()
		a.stories.Update(st.StoryGroups(), viewer, open)
	case pageNotifications:
		a.notes.Update(st.Notifications(), st.NotificationCount())
	}
}

func (a *App) updateChrome() {
	current := a.pages.Current()
	var trail []ui.Crumb
	for _, name := range a.pages.Stack() {
		c := ui.Crumb{Name: a.components[name].Name()}
		switch name {
		case pageChats:
			c.Badge = a.vm.Store.TotalUnread()
		case pageNotifications:
			c.Badge = a.vm.Store.NotificationCount()
		}
		trail = append(trail, c)
	}
	a.crumbs.Update(trail)

	var hints []ui.MenuHint
	if comp, ok := a.components[current]; ok {
		hints = append(hints, comp.Hints()...)
	}
	hints = append(hints, a.registry.Hints("")...)
	a.menu.Update(hints)
}

func (a *App) threadState(chat model.Chat) views.ThreadState {
	st := a.vm.Store
	ts := views.ThreadState{
		Chat:     chat,
		Messages: st.ActiveMessages(),
		Typing:   st.IsTyping(chat.ID),
		Online:   !chat.IsGroup && st.IsOnline(chat.ID),
	}
	if r, ok := st.ReplyingTo(); ok {
		ts.ReplyTo = &r
	}
	if u := st.UI(); u.InChatSearch && u.SearchQuery != "" {
		ts.Find = u.SearchQuery
		ts.Matches = len(st.SearchResults())
	}
	if cv, ok := st.CallState(); ok {
		ts.CallLabel = cv.Target.Name
		if cv.Duration != "" {
			ts.CallLabel += " " + cv.Duration
		}
	}
	return ts
}

func (a *App) starredIn(chatID string) int {
	n := 0
	for _, m := range a.vm.Store.StarredMessages() {
		if m.ChatID == chatID {
			n++
		}
	}
	return n
}

func (a *App) runSearch(query string) {
	hits, err := a.vm.Search(query)
	if err != nil {
		a.vm.Flash.Err(err)
		a.refresh()
		return
	}
	a.search.Update(query, hits)
	if len(hits) > 0 {
		a.app.SetFocus(a.search.Results())
	} else {
		a.vm.Flash.Warn("no messages match " + query)
		a.refresh()
	}
}
