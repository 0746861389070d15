package store

import (
	"cmp"
	"slices"
	"strings"

	"github.com/matheus3301/guftagu/internal/call"
	"github.com/matheus3301/guftagu/internal/model"
	"github.com/matheus3301/guftagu/internal/push"
	"github.com/matheus3301/guftagu/internal/story"
)

// ChatList is the main list split into pinned and other chats. Archived
// chats are excluded. Each half is ordered by last activity, newest first.
type ChatList struct {
	Pinned []model.Chat
	Others []model.Chat
}

// UIState is the navigation state of the client.
type UIState struct {
	LoggedIn               bool
	ActiveChatID           string
	Section                model.Section
	Overlay                model.Overlay
	Subpage                model.SettingsSubpage
	InChatSearch           bool
	SearchQuery            string
	NotificationCenterOpen bool
	CallMinimized          bool
}

// CallView is the active call as shown on screen.
type CallView struct {
	Target    model.CallTarget
	Phase     call.Phase
	Elapsed   int
	Duration  string
	Minimized bool
}

// StoryView is the open story viewer.
type StoryView struct {
	UserID   string
	Index    int
	Count    int
	Progress int
	Story    model.Story
}

// Settings groups every user preference.
type Settings struct {
	Privacy       model.PrivacySettings
	Chat          model.ChatSettings
	Notifications model.NotificationSettings
	Permission    push.Permission
	FCMToken      string
	DeviceToken   string
}

// Stats summarizes the store contents.
type Stats struct {
	Chats         int
	Messages      int
	Unread        int
	Notifications int
	Calls         int
	Stories       int
	Timers        int
}

func (s *Store) CurrentUser() model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.me
}

func (s *Store) Contacts() []model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.contacts)
}

func (s *Store) ActiveChatID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeChatID
}

func (s *Store) ActiveChat() (model.Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.chatLocked(s.activeChatID)
	if c == nil {
		return model.Chat{}, false
	}
	return s.snapshotLocked(c), true
}

func (s *Store) Chat(id string) (model.Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.chatLocked(id)
	if c == nil {
		return model.Chat{}, false
	}
	return s.snapshotLocked(c), true
}

// Chats returns every chat, archived ones included, in store order.
func (s *Store) Chats() []model.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Chat, 0, len(s.chats))
	for _, c := range s.chats {
		out = append(out, s.snapshotLocked(c))
	}
	return out
}

func (s *Store) ChatList() ChatList {
	return s.FilterChats("")
}

// FilterChats is ChatList restricted to chats whose name contains q,
// ignoring case.
func (s *Store) FilterChats(q string) ChatList {
	s.mu.Lock()
	defer s.mu.Unlock()
	q = strings.ToLower(strings.TrimSpace(q))
	var list ChatList
	for _, c := range s.chats {
		if c.Archived || (q != "" && !strings.Contains(strings.ToLower(c.Name), q)) {
			continue
		}
		if c.Pinned {
			list.Pinned = append(list.Pinned, s.snapshotLocked(c))
		} else {
			list.Others = append(list.Others, s.snapshotLocked(c))
		}
	}
	byActivity(list.Pinned)
	byActivity(list.Others)
	return list
}

func (s *Store) ArchivedChats() []model.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Chat
	for _, c := range s.chats {
		if c.Archived {
			out = append(out, s.snapshotLocked(c))
		}
	}
	byActivity(out)
	return out
}

func byActivity(chats []model.Chat) {
	slices.SortStableFunc(chats, func(a, b model.Chat) int {
		return b.LastActivity.Compare(a.LastActivity)
	})
}

// Messages returns a chat's messages, oldest first.
func (s *Store) Messages(chatID string) []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messagesLocked(func(m *model.Message) bool { return m.ChatID == chatID })
}

func (s *Store) ActiveMessages() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.activeChatID
	if id == "" {
		return nil
	}
	return s.messagesLocked(func(m *model.Message) bool { return m.ChatID == id })
}

func (s *Store) Message(id string) (model.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.messageLocked(id)
	if m == nil {
		return model.Message{}, false
	}
	return m.Clone(), true
}

func (s *Store) StarredMessages() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messagesLocked(func(m *model.Message) bool { return m.Starred })
}

// SearchResults returns the active chat's messages matching the in-chat
// search query. It is empty while search is closed or the query is blank.
func (s *Store) SearchResults() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := strings.ToLower(strings.TrimSpace(s.searchQuery))
	if !s.inChatSearch || q == "" || s.activeChatID == "" {
		return nil
	}
	id := s.activeChatID
	return s.messagesLocked(func(m *model.Message) bool {
		return m.ChatID == id && strings.Contains(strings.ToLower(m.Text), q)
	})
}

func (s *Store) messagesLocked(keep func(*model.Message) bool) []model.Message {
	var out []model.Message
	for _, m := range s.messages {
		if keep(m) {
			out = append(out, m.Clone())
		}
	}
	return out
}

func (s *Store) ReplyingTo() (model.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.replyingTo == nil {
		return model.Message{}, false
	}
	return s.replyingTo.Clone(), true
}

// TypingUsers returns the chats where the other side is typing, sorted.
func (s *Store) TypingUsers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.typing))
	for id := range s.typing {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func (s *Store) IsTyping(chatID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.typing[chatID]
	return ok
}

func (s *Store) IsOnline(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online[userID]
}

func (s *Store) UnreadCount(chatID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread[chatID]
}

func (s *Store) TotalUnread() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalUnreadLocked()
}

func (s *Store) totalUnreadLocked() int {
	n := 0
	for _, c := range s.unread {
		n += c
	}
	return n
}

// Notifications returns the feed, newest first.
func (s *Store) Notifications() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.notifications)
}

// NotificationCount is the number of unread notifications.
func (s *Store) NotificationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unreadNotificationsLocked()
}

// Calls returns the call history, newest first.
func (s *Store) Calls() []model.Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

func (s *Store) CallState() (CallView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.call == nil {
		return CallView{}, false
	}
	return CallView{
		Target:    s.call.Target(),
		Phase:     s.call.Phase(),
		Elapsed:   s.call.Elapsed(),
		Duration:  call.FormatDuration(s.call.Elapsed()),
		Minimized: s.callMinimized,
	}, true
}

func (s *Store) Stories() []model.Story {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.stories)
}

// StoryGroups returns stories grouped by author, authors with unseen
// stories first.
func (s *Store) StoryGroups() []story.Group {
	s.mu.Lock()
	groups := story.GroupByAuthor(s.stories)
	s.mu.Unlock()
	slices.SortStableFunc(groups, func(a, b story.Group) int {
		return cmp.Compare(boolRank(a.AllViewed), boolRank(b.AllViewed))
	})
	return groups
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *Store) StoryViewer() (StoryView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.viewer == nil {
		return StoryView{}, false
	}
	stories := s.authorStoriesLocked(s.viewer.UserID)
	if s.viewer.Index >= len(stories) {
		return StoryView{}, false
	}
	return StoryView{
		UserID:   s.viewer.UserID,
		Index:    s.viewer.Index,
		Count:    len(stories),
		Progress: s.viewer.Progress,
		Story:    stories[s.viewer.Index],
	}, true
}

func (s *Store) Groups() []model.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Group, len(s.groups))
	for i, g := range s.groups {
		g.Members = slices.Clone(g.Members)
		g.Admins = slices.Clone(g.Admins)
		out[i] = g
	}
	return out
}

func (s *Store) IsBlocked(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blocked[userID]
	return ok
}

func (s *Store) BlockedUsers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.blocked))
	for id := range s.blocked {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func (s *Store) UI() UIState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uiLocked()
}

func (s *Store) uiLocked() UIState {
	return UIState{
		LoggedIn:               s.loggedIn,
		ActiveChatID:           s.activeChatID,
		Section:                s.section,
		Overlay:                s.overlay,
		Subpage:                s.subpage,
		InChatSearch:           s.inChatSearch,
		SearchQuery:            s.searchQuery,
		NotificationCenterOpen: s.notificationCenter,
		CallMinimized:          s.callMinimized,
	}
}

func (s *Store) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Settings{
		Privacy:       s.privacy,
		Chat:          s.chatSettings,
		Notifications: s.notifSettings,
		Permission:    s.permission,
		FCMToken:      s.fcmToken,
		DeviceToken:   s.deviceToken,
	}
}

// Permission returns the current notification permission.
func (s *Store) Permission() push.Permission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permission
}

func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Chats:         len(s.chats),
		Messages:      len(s.messages),
		Unread:        s.totalUnreadLocked(),
		Notifications: s.unreadNotificationsLocked(),
		Calls:         len(s.calls),
		Stories:       len(s.stories),
		Timers:        s.sched.Len(),
	}
}
