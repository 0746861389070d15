package model

import (
	"slices"
	"time"
)

// Me is the sender id used for messages authored by the local user.
const Me = "me"

// MessageType is the content kind of a message.
type MessageType string

const (
	TypeText     MessageType = "text"
	TypeImage    MessageType = "image"
	TypeVideo    MessageType = "video"
	TypeFile     MessageType = "file"
	TypeVoice    MessageType = "voice"
	TypeLocation MessageType = "location"
	TypeContact  MessageType = "contact"
)

// Valid reports whether t is a known message type.
func (t MessageType) Valid() bool {
	switch t {
	case TypeText, TypeImage, TypeVideo, TypeFile, TypeVoice, TypeLocation, TypeContact:
		return true
	}
	return false
}

// MessageStatus is the delivery state of an outgoing message.
type MessageStatus string

const (
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
)

// Rank orders statuses; unknown values rank below sent.
func (s MessageStatus) Rank() int {
	switch s {
	case StatusSent:
		return 1
	case StatusDelivered:
		return 2
	case StatusRead:
		return 3
	}
	return 0
}

// Advances reports whether moving from s to next is a forward transition.
func (s MessageStatus) Advances(next MessageStatus) bool {
	return next.Rank() > s.Rank()
}

// User is a contact or the local account.
type User struct {
	ID     string
	Name   string
	Avatar string
	Status string
	Online bool
	Phone  string
	About  string
}

// Location is a shared map pin.
type Location struct {
	Lat     float64
	Lng     float64
	Address string
}

// ContactCard is a shared contact.
type ContactCard struct {
	Name  string
	Phone string
}

// Payload carries the type-specific fields of a non-text message.
type Payload struct {
	ContentURL string
	FileName   string
	Duration   int
	Location   *Location
	Contact    *ContactCard
}

// Message is a single chat message. ReplyTo is a value snapshot taken when
// the reply was sent and never follows later changes to the original.
type Message struct {
	ID         string
	ChatID     string
	SenderID   string
	SenderName string
	Text       string
	SentAt     time.Time
	Type       MessageType
	Status     MessageStatus
	ReplyTo    *Message
	Payload    Payload
	Starred    bool
}

// FromMe reports whether the local user sent the message.
func (m Message) FromMe() bool { return m.SenderID == Me }

// Preview returns the chat-list preview text for the message.
func (m Message) Preview() string {
	if m.Type == TypeText || m.Type == "" {
		return m.Text
	}
	return "[" + string(m.Type) + "]"
}

// Clone returns a deep copy of the message.
func (m Message) Clone() Message {
	if m.ReplyTo != nil {
		r := m.ReplyTo.Clone()
		m.ReplyTo = &r
	}
	if m.Payload.Location != nil {
		l := *m.Payload.Location
		m.Payload.Location = &l
	}
	if m.Payload.Contact != nil {
		c := *m.Payload.Contact
		m.Payload.Contact = &c
	}
	return m
}

// Chat is a direct or group conversation. UnreadCount is filled from the
// store's unread map when a chat is read through a selector.
type Chat struct {
	ID           string
	Name         string
	Avatar       string
	LastMessage  string
	LastActivity time.Time
	Online       bool
	UnreadCount  int
	IsGroup      bool
	Archived     bool
	Pinned       bool
	Muted        bool
	Disappearing bool
	Members      []User
	Admins       []string
	About        string
	JoinedAt     time.Time
}

// Clone returns a copy of the chat with its own member and admin slices.
func (c Chat) Clone() Chat {
	c.Members = slices.Clone(c.Members)
	c.Admins = slices.Clone(c.Admins)
	return c
}

// HasMember reports whether userID is in the chat's member list.
func (c Chat) HasMember(userID string) bool {
	return slices.ContainsFunc(c.Members, func(u User) bool { return u.ID == userID })
}

// Group is the id-based membership record kept alongside a group chat.
type Group struct {
	ID          string
	Name        string
	Avatar      string
	Description string
	CreatedAt   time.Time
	Members     []string
	Admins      []string
}

// Story is one ephemeral status post.
type Story struct {
	ID         string
	UserID     string
	UserName   string
	UserAvatar string
	MediaURL   string
	PostedAt   time.Time
	Viewed     bool
	Caption    string
}

// CallType is the media kind of a call.
type CallType string

const (
	CallVoice CallType = "voice"
	CallVideo CallType = "video"
)

// CallStatus is the direction or outcome of a call history entry.
type CallStatus string

const (
	CallMissed   CallStatus = "missed"
	CallIncoming CallStatus = "incoming"
	CallOutgoing CallStatus = "outgoing"
)

// Call is an immutable call history record.
type Call struct {
	ID         string
	UserID     string
	UserName   string
	UserAvatar string
	Type       CallType
	Status     CallStatus
	At         time.Time
	Duration   string
	DateLabel  string
}

// CallTarget identifies who an outgoing call is placed to.
type CallTarget struct {
	UserID string
	Name   string
	Avatar string
	Type   CallType
}

// NotificationType classifies an in-app notification.
type NotificationType string

const (
	NotifyMessage NotificationType = "message"
	NotifySystem  NotificationType = "system"
	NotifyUpdate  NotificationType = "update"
)

// Notification is an entry of the in-app notification feed.
type Notification struct {
	ID       string
	Type     NotificationType
	Title    string
	Body     string
	SenderID string
	ChatID   string
	At       time.Time
	Read     bool
	Avatar   string
}

// Section is the top-level navigation area.
type Section string

const (
	SectionChats    Section = "chats"
	SectionStatus   Section = "status"
	SectionCalls    Section = "calls"
	SectionSettings Section = "settings"
)

// Overlay is the modal panel currently shown. At most one is open.
type Overlay string

const (
	OverlayNone       Overlay = "none"
	OverlayCamera     Overlay = "camera"
	OverlayAttachment Overlay = "attachment"
	OverlayGallery    Overlay = "gallery"
	OverlayEmoji      Overlay = "emoji"
	OverlayCall       Overlay = "call"
)

// SettingsSubpage is the open page inside the settings section.
type SettingsSubpage string

const (
	SubpageNone          SettingsSubpage = "none"
	SubpageProfile       SettingsSubpage = "profile"
	SubpageAccount       SettingsSubpage = "account"
	SubpagePrivacy       SettingsSubpage = "privacy"
	SubpageChats         SettingsSubpage = "chats"
	SubpageNotifications SettingsSubpage = "notifications"
	SubpageStorage       SettingsSubpage = "storage"
)
