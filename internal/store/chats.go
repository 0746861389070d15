package store

import (
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/matheus3301/guftagu/internal/bus"
	"github.com/matheus3301/guftagu/internal/model"
	"go.uber.org/zap"
)

// SetActiveChat selects a chat. Switching to a different chat resets its
// unread count, drops the pending reply, ends in-chat search and starts the
// simulated typing cycle. Any selection closes overlays and the
// notification center.
func (s *Store) SetActiveChat(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		s.clearActiveLocked()
		return
	}
	if s.chatLocked(id) == nil {
		s.ignore("select", zap.String("chat_id", id))
		return
	}
	s.selectLocked(id)
}

func (s *Store) selectLocked(id string) {
	chat := s.chatLocked(id)
	changed := s.activeChatID != id
	s.activeChatID = id
	s.closeOverlayLocked()
	s.notificationCenter = false
	if changed {
		delete(s.unread, id)
		s.replyingTo = nil
		s.inChatSearch = false
		s.searchQuery = ""
		s.startTypingCycleLocked(id)
	}
	s.emit(bus.ChatSelected, bus.ChatEvent{Chat: s.snapshotLocked(chat)})
}

// ClearActiveChat returns to the chat list.
func (s *Store) ClearActiveChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearActiveLocked()
}

func (s *Store) clearActiveLocked() {
	s.activeChatID = ""
	s.replyingTo = nil
	s.inChatSearch = false
	s.searchQuery = ""
	s.closeOverlayLocked()
	s.notificationCenter = false
	s.emit(bus.ChatSelected, bus.ChatEvent{})
}

// MarkAsRead zeroes the unread count of a chat.
func (s *Store) MarkAsRead(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat := s.chatLocked(id)
	if chat == nil || s.unread[id] == 0 {
		return
	}
	delete(s.unread, id)
	s.emit(bus.ChatUpdated, bus.ChatEvent{Chat: s.snapshotLocked(chat)})
}

func (s *Store) TogglePinChat(id string) {
	s.toggle(id, "pin", func(c *model.Chat) { c.Pinned = !c.Pinned })
}

func (s *Store) ToggleMuteChat(id string) {
	s.toggle(id, "mute", func(c *model.Chat) { c.Muted = !c.Muted })
}

func (s *Store) ToggleArchiveChat(id string) {
	s.toggle(id, "archive", func(c *model.Chat) { c.Archived = !c.Archived })
}

func (s *Store) ToggleDisappearingMessages(id string) {
	s.toggle(id, "disappearing", func(c *model.Chat) { c.Disappearing = !c.Disappearing })
}

func (s *Store) toggle(id, action string, flip func(*model.Chat)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat := s.chatLocked(id)
	if chat == nil {
		s.ignore(action, zap.String("chat_id", id))
		return
	}
	flip(chat)
	s.emit(bus.ChatUpdated, bus.ChatEvent{Chat: s.snapshotLocked(chat)})
}

// CreateChat opens a direct chat with a contact and selects it. An existing
// direct chat is selected instead of creating a second one.
func (s *Store) CreateChat(contactID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c := s.chatLocked(contactID); c != nil && !c.IsGroup {
		s.selectLocked(c.ID)
		return c.ID, true
	}
	chat := s.openChatForLocked(contactID)
	if chat == nil {
		s.ignore("create chat", zap.String("contact_id", contactID))
		return "", false
	}
	s.logger.Info("chat created", zap.String("chat_id", chat.ID))
	s.selectLocked(chat.ID)
	return chat.ID, true
}

// CreateGroup creates a group with the given contacts and the local user as
// its admin, then selects it. Unknown contacts are skipped; a group needs a
// name and at least one known member.
func (s *Store) CreateGroup(name string, memberIDs []string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		s.ignore("create group", zap.String("reason", "empty name"))
		return "", false
	}
	var members []model.User
	var ids []string
	for _, id := range memberIDs {
		u, ok := s.contactLocked(id)
		if !ok || slices.Contains(ids, id) {
			continue
		}
		members = append(members, u)
		ids = append(ids, id)
	}
	if len(members) == 0 {
		s.ignore("create group", zap.String("reason", "no known members"))
		return "", false
	}

	now := s.now()
	id := "g_" + uuid.NewString()
	chat := &model.Chat{
		ID:           id,
		Name:         name,
		IsGroup:      true,
		Members:      members,
		Admins:       []string{model.Me},
		LastActivity: now,
		JoinedAt:     now,
	}
	s.chats = append([]*model.Chat{chat}, s.chats...)
	s.groups = append(s.groups, model.Group{
		ID:        id,
		Name:      name,
		CreatedAt: now,
		Members:   ids,
		Admins:    []string{model.Me},
	})
	s.logger.Info("group created", zap.String("chat_id", id), zap.Int("members", len(ids)))
	s.emit(bus.ChatCreated, bus.ChatEvent{Chat: s.snapshotLocked(chat)})
	s.selectLocked(id)
	return id, true
}

// AddGroupMember adds a user to a group chat. Existing members are ignored.
func (s *Store) AddGroupMember(chatID string, u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat := s.chatLocked(chatID)
	if chat == nil || !chat.IsGroup || u.ID == "" || chat.HasMember(u.ID) {
		s.ignore("add member", zap.String("chat_id", chatID), zap.String("user_id", u.ID))
		return
	}
	chat.Members = append(chat.Members, u)
	if i := s.groupIndexLocked(chatID); i >= 0 {
		s.groups[i].Members = append(s.groups[i].Members, u.ID)
	}
	s.emit(bus.ChatUpdated, bus.ChatEvent{Chat: s.snapshotLocked(chat)})
}

// RemoveGroupMember removes a user from a group's members and admins.
func (s *Store) RemoveGroupMember(chatID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat := s.chatLocked(chatID)
	if chat == nil || !chat.IsGroup || !chat.HasMember(userID) {
		s.ignore("remove member", zap.String("chat_id", chatID), zap.String("user_id", userID))
		return
	}
	chat.Members = slices.DeleteFunc(chat.Members, func(u model.User) bool { return u.ID == userID })
	chat.Admins = slices.DeleteFunc(chat.Admins, func(id string) bool { return id == userID })
	if i := s.groupIndexLocked(chatID); i >= 0 {
		g := &s.groups[i]
		g.Members = slices.DeleteFunc(g.Members, func(id string) bool { return id == userID })
		g.Admins = slices.DeleteFunc(g.Admins, func(id string) bool { return id == userID })
	}
	s.emit(bus.ChatUpdated, bus.ChatEvent{Chat: s.snapshotLocked(chat)})
}

// ExitGroup leaves a group. The conversation is removed locally.
func (s *Store) ExitGroup(chatID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat := s.chatLocked(chatID)
	if chat == nil || !chat.IsGroup {
		s.ignore("exit group", zap.String("chat_id", chatID))
		return
	}
	s.logger.Info("left group", zap.String("chat_id", chatID))
	s.deleteChatLocked(chatID)
}

// DeleteChat removes a chat with all of its messages and pending timers.
func (s *Store) DeleteChat(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chatLocked(id) == nil {
		s.ignore("delete chat", zap.String("chat_id", id))
		return
	}
	s.deleteChatLocked(id)
}

func (s *Store) deleteChatLocked(id string) {
	s.dropMessagesLocked(id)
	s.chats = slices.DeleteFunc(s.chats, func(c *model.Chat) bool { return c.ID == id })
	if i := s.groupIndexLocked(id); i >= 0 {
		s.groups = slices.Delete(s.groups, i, i+1)
	}
	delete(s.unread, id)
	if _, ok := s.typing[id]; ok {
		delete(s.typing, id)
		s.emit(bus.TypingChanged, bus.TypingChange{ChatID: id})
	}
	s.sched.Cancel(keyTyping + id)
	if s.activeChatID == id {
		s.activeChatID = ""
		s.inChatSearch = false
		s.searchQuery = ""
	}
	s.logger.Info("chat deleted", zap.String("chat_id", id))
	s.emit(bus.ChatDeleted, bus.ChatRef{ChatID: id})
}

// ClearChat removes every message of a chat but keeps the chat itself.
func (s *Store) ClearChat(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat := s.chatLocked(id)
	if chat == nil {
		s.ignore("clear chat", zap.String("chat_id", id))
		return
	}
	s.dropMessagesLocked(id)
	chat.LastMessage = ""
	s.emit(bus.ChatCleared, bus.ChatRef{ChatID: id})
	s.emit(bus.ChatUpdated, bus.ChatEvent{Chat: s.snapshotLocked(chat)})
}

// dropMessagesLocked deletes a chat's messages, their timers and a pending
// reply into the chat.
func (s *Store) dropMessagesLocked(chatID string) {
	s.messages = slices.DeleteFunc(s.messages, func(m *model.Message) bool {
		if m.ChatID != chatID {
			return false
		}
		s.sched.Cancel(keyMessage + m.ID)
		return true
	})
	if s.replyingTo != nil && s.replyingTo.ChatID == chatID {
		s.replyingTo = nil
	}
}

// BlockUser hides a user's inbound traffic.
func (s *Store) BlockUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if userID == "" || userID == model.Me {
		return
	}
	if _, ok := s.blocked[userID]; ok {
		return
	}
	s.blocked[userID] = struct{}{}
	s.logger.Info("user blocked", zap.String("user_id", userID))
	s.emit(bus.SettingsUpdated, "blocked")
}

func (s *Store) UnblockUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blocked[userID]; !ok {
		return
	}
	delete(s.blocked, userID)
	s.logger.Info("user unblocked", zap.String("user_id", userID))
	s.emit(bus.SettingsUpdated, "blocked")
}

// SetInChatSearch opens or closes search inside the active chat. Closing
// also clears the query.
func (s *Store) SetInChatSearch(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if open && s.activeChatID == "" {
		return
	}
	s.inChatSearch = open
	if !open {
		s.searchQuery = ""
	}
	s.emitUILocked()
}

func (s *Store) SetChatSearchQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchQuery = q
	s.emitUILocked()
}
