package api

import (
	"fmt"

	"github.com/matheus3301/guftagu/internal/bus"
	"github.com/matheus3301/guftagu/internal/index"
	"github.com/matheus3301/guftagu/internal/model"
	"google.golang.org/protobuf/types/known/structpb"
)

// Request and response bodies are google.protobuf.Struct values. These
// helpers read request fields and build responses from domain types.

func field(in *structpb.Struct, key string) *structpb.Value {
	return in.GetFields()[key]
}

func str(in *structpb.Struct, key string) string {
	return field(in, key).GetStringValue()
}

func boolean(in *structpb.Struct, key string) bool {
	return field(in, key).GetBoolValue()
}

func number(in *structpb.Struct, key string) int {
	return int(field(in, key).GetNumberValue())
}

func toStruct(m map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return s, nil
}

func chatMap(c model.Chat) map[string]any {
	members := make([]any, 0, len(c.Members))
	for _, u := range c.Members {
		members = append(members, u.ID)
	}
	return map[string]any{
		"id":            c.ID,
		"name":          c.Name,
		"last_message":  c.LastMessage,
		"last_activity": c.LastActivity.UnixMilli(),
		"online":        c.Online,
		"unread":        c.UnreadCount,
		"group":         c.IsGroup,
		"pinned":        c.Pinned,
		"archived":      c.Archived,
		"muted":         c.Muted,
		"members":       members,
	}
}

func chatList(chats []model.Chat) []any {
	out := make([]any, 0, len(chats))
	for _, c := range chats {
		out = append(out, chatMap(c))
	}
	return out
}

func messageMap(m model.Message) map[string]any {
	out := map[string]any{
		"id":          m.ID,
		"chat_id":     m.ChatID,
		"sender_id":   m.SenderID,
		"sender_name": m.SenderName,
		"text":        m.Text,
		"type":        string(m.Type),
		"status":      string(m.Status),
		"sent_at":     m.SentAt.UnixMilli(),
		"starred":     m.Starred,
		"from_me":     m.FromMe(),
	}
	if m.ReplyTo != nil {
		out["reply_to"] = map[string]any{
			"id":          m.ReplyTo.ID,
			"sender_name": m.ReplyTo.SenderName,
			"text":        m.ReplyTo.Preview(),
		}
	}
	if m.Payload.FileName != "" {
		out["file_name"] = m.Payload.FileName
	}
	if m.Payload.ContentURL != "" {
		out["content_url"] = m.Payload.ContentURL
	}
	return out
}

func messageList(msgs []model.Message) []any {
	out := make([]any, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageMap(m))
	}
	return out
}

func hitList(hits []index.Hit) []any {
	out := make([]any, 0, len(hits))
	for _, h := range hits {
		out = append(out, map[string]any{
			"message_id":  h.MessageID,
			"chat_id":     h.ChatID,
			"chat_name":   h.ChatName,
			"sender_name": h.SenderName,
			"text":        h.Text,
			"snippet":     h.Snippet,
			"sent_at":     h.SentAt.UnixMilli(),
		})
	}
	return out
}

func notificationMap(n model.Notification) map[string]any {
	return map[string]any{
		"id":      n.ID,
		"type":    string(n.Type),
		"title":   n.Title,
		"body":    n.Body,
		"chat_id": n.ChatID,
		"at":      n.At.UnixMilli(),
		"read":    n.Read,
	}
}

func callMap(c model.Call) map[string]any {
	return map[string]any{
		"id":        c.ID,
		"user_id":   c.UserID,
		"user_name": c.UserName,
		"type":      string(c.Type),
		"status":    string(c.Status),
		"duration":  c.Duration,
		"date":      c.DateLabel,
		"at":        c.At.UnixMilli(),
	}
}

// eventPayload flattens a bus payload for the event stream.
func eventPayload(evt bus.Event) map[string]any {
	switch p := evt.Payload.(type) {
	case bus.MessageEvent:
		return messageMap(p.Message)
	case bus.StatusChange:
		return map[string]any{"message_id": p.MessageID, "chat_id": p.ChatID, "from": string(p.From), "to": string(p.To)}
	case bus.ChatEvent:
		if p.Chat.ID == "" {
			return map[string]any{}
		}
		return chatMap(p.Chat)
	case bus.ChatRef:
		return map[string]any{"chat_id": p.ChatID, "message_id": p.MessageID}
	case bus.TypingChange:
		return map[string]any{"chat_id": p.ChatID, "typing": p.Typing}
	case bus.PresenceChange:
		return map[string]any{"user_id": p.UserID, "online": p.Online}
	case bus.CallPhaseChange:
		return map[string]any{"from": p.From, "to": p.To, "name": p.Target.Name, "elapsed": p.Elapsed}
	case bus.CallEvent:
		return callMap(p.Call)
	case bus.StoryEvent:
		return map[string]any{"story_id": p.StoryID, "user_id": p.UserID, "index": p.Index, "progress": p.Progress, "open": p.Open}
	case bus.NotificationEvent:
		out := map[string]any{"unread": p.Unread}
		if p.Notification.ID != "" {
			out["notification"] = notificationMap(p.Notification)
		}
		return out
	case string:
		return map[string]any{"section": p}
	}
	return map[string]any{}
}
