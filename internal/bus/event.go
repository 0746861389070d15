package bus

import (
	"time"

	"github.com/matheus3301/guftagu/internal/model"
)

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// Event kinds. The part before the dot is the subscription namespace.
const (
	ChatSelected = "chat.selected"
	ChatCreated  = "chat.created"
	ChatUpdated  = "chat.updated"
	ChatCleared  = "chat.cleared"
	ChatDeleted  = "chat.deleted"

	MessageAdded   = "message.added"
	MessageStatus  = "message.status"
	MessageDeleted = "message.deleted"
	MessageStarred = "message.starred"

	TypingChanged   = "typing.changed"
	PresenceChanged = "presence.changed"

	CallPhase  = "call.phase"
	CallTick   = "call.tick"
	CallLogged = "call.logged"

	StoryViewed = "story.viewed"
	StoryViewer = "story.viewer"

	NotificationAdded   = "notification.added"
	NotificationRead    = "notification.read"
	NotificationCleared = "notification.cleared"

	SettingsUpdated = "settings.updated"
	UIChanged       = "ui.changed"
)

// MessageEvent carries a snapshot of an added or changed message.
type MessageEvent struct {
	Message model.Message
}

// StatusChange is the payload of MessageStatus.
type StatusChange struct {
	MessageID string
	ChatID    string
	From      model.MessageStatus
	To        model.MessageStatus
}

// ChatEvent carries a snapshot of a chat.
type ChatEvent struct {
	Chat model.Chat
}

// ChatRef identifies a chat (and optionally a message) that was removed or reset.
type ChatRef struct {
	ChatID    string
	MessageID string
}

// TypingChange is the payload of TypingChanged.
type TypingChange struct {
	ChatID string
	Typing bool
}

// PresenceChange is the payload of PresenceChanged.
type PresenceChange struct {
	UserID string
	Online bool
}

// CallPhaseChange is the payload of CallPhase and CallTick.
type CallPhaseChange struct {
	From    string
	To      string
	Target  model.CallTarget
	Elapsed int
}

// CallEvent is the payload of CallLogged.
type CallEvent struct {
	Call model.Call
}

// StoryEvent is the payload of StoryViewed and StoryViewer.
type StoryEvent struct {
	StoryID  string
	UserID   string
	Index    int
	Progress int
	Open     bool
}

// NotificationEvent is the payload of the notification kinds. Unread is the
// derived unread count after the change.
type NotificationEvent struct {
	Notification model.Notification
	Unread       int
}
