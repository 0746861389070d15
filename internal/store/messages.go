package store

import (
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/matheus3301/guftagu/internal/bus"
	"github.com/matheus3301/guftagu/internal/content"
	"github.com/matheus3301/guftagu/internal/model"
	"go.uber.org/zap"
)

// SendMessage appends an outgoing message to the active chat and starts its
// delivery timers. The pending reply, if any, is attached as a snapshot and
// cleared. Without an active chat, or with empty text, nothing happens.
func (s *Store) SendMessage(text string, typ model.MessageType, payload model.Payload) (model.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat := s.chatLocked(s.activeChatID)
	if chat == nil {
		s.ignore("send", zap.String("reason", "no active chat"))
		return model.Message{}, false
	}
	typ, ok := s.checkSendLocked(text, typ)
	if !ok {
		return model.Message{}, false
	}
	return s.sendLocked(chat, text, typ, payload), true
}

// SendMessageTo selects chatID and sends to it in one step, so concurrent
// callers cannot move the selection in between. A non-empty replyTo must
// name a message of that chat and replaces any pending reply. A rejected
// send changes nothing, including the selection and the pending reply.
func (s *Store) SendMessageTo(chatID, text string, typ model.MessageType, payload model.Payload, replyTo string) (model.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat := s.chatLocked(chatID)
	if chat == nil {
		s.ignore("send", zap.String("chat_id", chatID))
		return model.Message{}, false
	}
	typ, ok := s.checkSendLocked(text, typ)
	if !ok {
		return model.Message{}, false
	}
	var reply *model.Message
	if replyTo != "" {
		target := s.messageLocked(replyTo)
		if target == nil || target.ChatID != chatID {
			s.ignore("send", zap.String("reason", "reply target not in chat"), zap.String("message_id", replyTo))
			return model.Message{}, false
		}
		snap := target.Clone()
		reply = &snap
	}

	if s.activeChatID != chatID {
		s.selectLocked(chatID)
	}
	if reply != nil {
		s.replyingTo = reply
	}
	return s.sendLocked(chat, text, typ, payload), true
}

// checkSendLocked defaults the message type and rejects unknown types and
// blank text.
func (s *Store) checkSendLocked(text string, typ model.MessageType) (model.MessageType, bool) {
	if typ == "" {
		typ = model.TypeText
	}
	if !typ.Valid() {
		s.logger.Warn("rejected message with unknown type", zap.String("type", string(typ)))
		return typ, false
	}
	if typ == model.TypeText && strings.TrimSpace(text) == "" {
		s.ignore("send", zap.String("reason", "empty text"))
		return typ, false
	}
	return typ, true
}

func (s *Store) sendLocked(chat *model.Chat, text string, typ model.MessageType, payload model.Payload) model.Message {
	// The payload is copied so the caller keeps no pointer into the store.
	stored := model.Message{
		ID:         uuid.NewString(),
		ChatID:     chat.ID,
		SenderID:   model.Me,
		SenderName: s.me.Name,
		Text:       text,
		SentAt:     s.now(),
		Type:       typ,
		Status:     model.StatusSent,
		Payload:    payload,
	}.Clone()
	msg := &stored
	if s.replyingTo != nil {
		snap := s.replyingTo.Clone()
		msg.ReplyTo = &snap
		s.replyingTo = nil
	}
	s.messages = append(s.messages, msg)
	chat.LastMessage = msg.Preview()
	chat.LastActivity = msg.SentAt

	s.logger.Debug("message sent",
		zap.String("chat_id", chat.ID),
		zap.String("message_id", msg.ID),
		zap.String("type", string(typ)),
	)
	out := msg.Clone()
	s.emit(bus.MessageAdded, bus.MessageEvent{Message: out})
	s.emit(bus.ChatUpdated, bus.ChatEvent{Chat: s.snapshotLocked(chat)})
	s.scheduleDeliveryLocked(msg.ID)
	return out
}

// SendFile sends an attachment to the active chat. The message type is
// detected from the leading bytes of the file (see content.HeaderSize),
// falling back to its extension.
func (s *Store) SendFile(fileName, url string, head []byte) (model.Message, bool) {
	if fileName == "" {
		s.ignore("send file", zap.String("reason", "no file name"))
		return model.Message{}, false
	}
	typ := content.DetectType(head, fileName)
	return s.SendMessage("", typ, model.Payload{ContentURL: url, FileName: fileName})
}

// scheduleDeliveryLocked arms the sent→delivered timer. The read timer is
// armed when the delivered one fires.
func (s *Store) scheduleDeliveryLocked(id string) {
	s.sched.After(keyMessage+id, s.timings.Delivered, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.messageLocked(id) == nil {
			return
		}
		s.advanceLocked(id, model.StatusDelivered)
		s.sched.After(keyMessage+id, s.timings.Read, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.advanceLocked(id, model.StatusRead)
		})
	})
}

// advanceLocked moves an outgoing message forward. Backward or repeated
// transitions and unknown ids are ignored.
func (s *Store) advanceLocked(id string, to model.MessageStatus) bool {
	msg := s.messageLocked(id)
	if msg == nil || !msg.FromMe() || !msg.Status.Advances(to) {
		return false
	}
	from := msg.Status
	msg.Status = to
	s.emit(bus.MessageStatus, bus.StatusChange{MessageID: id, ChatID: msg.ChatID, From: from, To: to})
	return true
}

// ApplyReceipt applies a delivery or read receipt from the transport.
func (s *Store) ApplyReceipt(messageID string, status model.MessageStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.advanceLocked(messageID, status) {
		s.ignore("receipt", zap.String("message_id", messageID), zap.String("status", string(status)))
		return false
	}
	if status == model.StatusRead {
		s.sched.Cancel(keyMessage + messageID)
	}
	return true
}

// DeleteMessage removes a message and cancels its pending timers. If it was
// the newest message of its chat the chat preview falls back to the one
// before it.
func (s *Store) DeleteMessage(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.messages, func(m *model.Message) bool { return m.ID == id })
	if i < 0 {
		s.ignore("delete message", zap.String("message_id", id))
		return
	}
	msg := s.messages[i]
	wasLast := s.lastMessageLocked(msg.ChatID) == msg
	s.messages = slices.Delete(s.messages, i, i+1)
	s.sched.Cancel(keyMessage + id)
	s.emit(bus.MessageDeleted, bus.ChatRef{ChatID: msg.ChatID, MessageID: id})

	chat := s.chatLocked(msg.ChatID)
	if chat == nil || !wasLast {
		return
	}
	if prev := s.lastMessageLocked(chat.ID); prev != nil {
		chat.LastMessage = prev.Preview()
		chat.LastActivity = prev.SentAt
	} else {
		chat.LastMessage = ""
	}
	s.emit(bus.ChatUpdated, bus.ChatEvent{Chat: s.snapshotLocked(chat)})
}

// ToggleStarMessage flips the starred flag of a message.
func (s *Store) ToggleStarMessage(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.messageLocked(id)
	if msg == nil {
		s.ignore("star", zap.String("message_id", id))
		return
	}
	msg.Starred = !msg.Starred
	s.emit(bus.MessageStarred, bus.MessageEvent{Message: msg.Clone()})
}

// SetReplyingTo marks a message of the active chat as the target of the
// next send. Messages of other chats are ignored.
func (s *Store) SetReplyingTo(messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.messageLocked(messageID)
	if msg == nil || msg.ChatID != s.activeChatID {
		s.ignore("reply", zap.String("message_id", messageID))
		return
	}
	snap := msg.Clone()
	s.replyingTo = &snap
	s.emitUILocked()
}

func (s *Store) ClearReplyingTo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.replyingTo == nil {
		return
	}
	s.replyingTo = nil
	s.emitUILocked()
}

// ReceiveMessage ingests a message from another participant. Messages for
// an unknown chat open a direct chat when the sender is a contact and are
// dropped otherwise, as are messages from blocked users and duplicates.
// Outside the active chat the unread count grows and a notification is
// raised unless the chat is muted or notifications are off.
func (s *Store) ReceiveMessage(in model.Message) (model.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if in.SenderID == "" {
		in.SenderID = in.ChatID
	}
	if _, blocked := s.blocked[in.SenderID]; blocked {
		s.ignore("inbound", zap.String("reason", "sender blocked"), zap.String("sender_id", in.SenderID))
		return model.Message{}, false
	}
	if in.ID != "" && s.messageLocked(in.ID) != nil {
		s.ignore("inbound", zap.String("reason", "duplicate"), zap.String("message_id", in.ID))
		return model.Message{}, false
	}
	chat := s.chatLocked(in.ChatID)
	if chat == nil {
		chat = s.openChatForLocked(in.ChatID)
		if chat == nil {
			s.ignore("inbound", zap.String("reason", "unknown chat"), zap.String("chat_id", in.ChatID))
			return model.Message{}, false
		}
	}

	msg := in.Clone()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Type == "" {
		msg.Type = model.TypeText
	}
	if msg.Status == "" {
		msg.Status = model.StatusDelivered
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = s.now()
	}
	if msg.SenderName == "" {
		if u, ok := s.contactLocked(msg.SenderID); ok {
			msg.SenderName = u.Name
		}
	}
	s.messages = append(s.messages, &msg)

	chat.LastMessage = msg.Preview()
	if chat.IsGroup && msg.SenderName != "" {
		chat.LastMessage = firstName(msg.SenderName) + ": " + msg.Preview()
	}
	chat.LastActivity = msg.SentAt

	if _, ok := s.typing[chat.ID]; ok {
		s.sched.Cancel(keyTyping + chat.ID)
		s.setTypingLocked(chat.ID, false)
	}

	s.logger.Debug("message received",
		zap.String("chat_id", chat.ID),
		zap.String("message_id", msg.ID),
		zap.String("sender_id", msg.SenderID),
	)
	s.emit(bus.MessageAdded, bus.MessageEvent{Message: msg.Clone()})

	if chat.ID != s.activeChatID {
		s.unread[chat.ID]++
		if s.shouldNotifyLocked(chat) {
			s.addNotificationLocked(s.messageNotificationLocked(chat, &msg))
		}
	}
	s.emit(bus.ChatUpdated, bus.ChatEvent{Chat: s.snapshotLocked(chat)})
	return msg.Clone(), true
}

// openChatForLocked creates a direct chat for a known contact without
// selecting it.
func (s *Store) openChatForLocked(userID string) *model.Chat {
	u, ok := s.contactLocked(userID)
	if !ok {
		return nil
	}
	now := s.now()
	chat := &model.Chat{
		ID:           u.ID,
		Name:         u.Name,
		Avatar:       u.Avatar,
		About:        u.About,
		Online:       s.online[u.ID],
		LastActivity: now,
		JoinedAt:     now,
	}
	s.chats = append([]*model.Chat{chat}, s.chats...)
	s.emit(bus.ChatCreated, bus.ChatEvent{Chat: s.snapshotLocked(chat)})
	return chat
}

func (s *Store) shouldNotifyLocked(chat *model.Chat) bool {
	if chat.Muted {
		return false
	}
	if chat.IsGroup {
		return s.notifSettings.Groups
	}
	return s.notifSettings.Messages
}

func (s *Store) messageNotificationLocked(chat *model.Chat, msg *model.Message) model.Notification {
	title := chat.Name
	if chat.IsGroup && msg.SenderName != "" {
		title = msg.SenderName + " @ " + chat.Name
	}
	body := "New message"
	if s.notifSettings.Previews {
		body = msg.Preview()
	}
	return model.Notification{
		Type:     model.NotifyMessage,
		Title:    title,
		Body:     body,
		SenderID: msg.SenderID,
		ChatID:   chat.ID,
		Avatar:   chat.Avatar,
	}
}

func firstName(name string) string {
	if i := strings.IndexByte(name, ' '); i > 0 {
		return name[:i]
	}
	return name
}
