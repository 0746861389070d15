package store

import (
	"slices"

	"github.com/matheus3301/guftagu/internal/bus"
	"github.com/matheus3301/guftagu/internal/model"
)

// startTypingCycleLocked shows the other side typing shortly after a chat
// is opened and hides it again after a while.
func (s *Store) startTypingCycleLocked(chatID string) {
	s.sched.After(keyTyping+chatID, s.timings.TypingStart, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.chatLocked(chatID) == nil {
			return
		}
		s.setTypingLocked(chatID, true)
		s.expireTypingLocked(chatID)
	})
}

func (s *Store) expireTypingLocked(chatID string) {
	s.sched.After(keyTyping+chatID, s.timings.TypingDuration, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.setTypingLocked(chatID, false)
	})
}

func (s *Store) setTypingLocked(chatID string, on bool) {
	_, was := s.typing[chatID]
	if was == on {
		return
	}
	if on {
		s.typing[chatID] = struct{}{}
	} else {
		delete(s.typing, chatID)
	}
	s.emit(bus.TypingChanged, bus.TypingChange{ChatID: chatID, Typing: on})
}

// SetTyping applies a typing signal from the transport. A start signal
// expires on its own if no stop follows.
func (s *Store) SetTyping(chatID string, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chatLocked(chatID) == nil {
		return
	}
	s.sched.Cancel(keyTyping + chatID)
	s.setTypingLocked(chatID, on)
	if on {
		s.expireTypingLocked(chatID)
	}
}

// SetPresence updates a user's online state across contacts and chats.
func (s *Store) SetPresence(userID string, online bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if userID == "" || s.online[userID] == online {
		return
	}
	if online {
		s.online[userID] = true
	} else {
		delete(s.online, userID)
	}
	for i := range s.contacts {
		if s.contacts[i].ID == userID {
			s.contacts[i].Online = online
		}
	}
	for _, c := range s.chats {
		if !c.IsGroup && c.ID == userID {
			c.Online = online
		}
		if i := slices.IndexFunc(c.Members, func(u model.User) bool { return u.ID == userID }); i >= 0 {
			c.Members[i].Online = online
		}
	}
	s.emit(bus.PresenceChanged, bus.PresenceChange{UserID: userID, Online: online})
}
