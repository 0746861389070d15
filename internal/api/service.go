package api

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/matheus3301/guftagu/internal/bus"
	"github.com/matheus3301/guftagu/internal/call"
	"github.com/matheus3301/guftagu/internal/index"
	"github.com/matheus3301/guftagu/internal/ingress"
	"github.com/matheus3301/guftagu/internal/model"
	"github.com/matheus3301/guftagu/internal/store"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const defaultSearchLimit = 50

// Service implements ConversationService on top of the store.
type Service struct {
	store   *store.Store
	gateway *ingress.Gateway
	index   *index.Engine
	bus     *bus.Bus
	logger  *zap.Logger

	sessionName string
	startedAt   time.Time
}

// NewService creates a new conversation service.
func NewService(st *store.Store, gw *ingress.Gateway, idx *index.Engine, b *bus.Bus, sessionName string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:       st,
		gateway:     gw,
		index:       idx,
		bus:         b,
		logger:      logger,
		sessionName: sessionName,
		startedAt:   time.Now(),
	}
}

func (s *Service) GetStatus(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	stats := s.store.Stats()
	out := map[string]any{
		"session":       s.sessionName,
		"uptime_ms":     time.Since(s.startedAt).Milliseconds(),
		"logged_in":     s.store.UI().LoggedIn,
		"active_chat":   s.store.ActiveChatID(),
		"chats":         stats.Chats,
		"messages":      stats.Messages,
		"unread":        stats.Unread,
		"notifications": stats.Notifications,
		"calls":         stats.Calls,
		"stories":       stats.Stories,
		"timers":        stats.Timers,
	}
	if cv, ok := s.store.CallState(); ok {
		out["call_phase"] = string(cv.Phase)
		out["call_with"] = cv.Target.Name
		out["call_elapsed"] = cv.Elapsed
	}
	return toStruct(out)
}

func (s *Service) ListChats(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if boolean(req, "archived") {
		return toStruct(map[string]any{"chats": chatList(s.store.ArchivedChats())})
	}
	list := s.store.FilterChats(str(req, "query"))
	return toStruct(map[string]any{
		"pinned": chatList(list.Pinned),
		"chats":  chatList(list.Others),
	})
}

func (s *Service) ListMessages(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	chatID := str(req, "chat_id")
	if chatID == "" {
		chatID = s.store.ActiveChatID()
	}
	if _, ok := s.store.Chat(chatID); !ok {
		return nil, grpcstatus.Errorf(codes.NotFound, "chat %q not found", chatID)
	}
	return toStruct(map[string]any{
		"chat_id":  chatID,
		"messages": messageList(s.store.Messages(chatID)),
	})
}

func (s *Service) SelectChat(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	chatID := str(req, "chat_id")
	if chatID == "" {
		s.store.ClearActiveChat()
		return toStruct(map[string]any{})
	}
	if _, ok := s.store.Chat(chatID); !ok {
		return nil, grpcstatus.Errorf(codes.NotFound, "chat %q not found", chatID)
	}
	s.store.SetActiveChat(chatID)
	c, _ := s.store.Chat(chatID)
	return toStruct(map[string]any{"chat": chatMap(c)})
}

func (s *Service) SendMessage(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	chatID := str(req, "chat_id")
	if chatID == "" {
		chatID = s.store.ActiveChatID()
		if chatID == "" {
			return nil, grpcstatus.Error(codes.FailedPrecondition, "no active chat")
		}
	} else if _, ok := s.store.Chat(chatID); !ok {
		return nil, grpcstatus.Errorf(codes.NotFound, "chat %q not found", chatID)
	}

	typ := model.MessageType(str(req, "type"))
	if typ == "" {
		typ = model.TypeText
	}
	if !typ.Valid() {
		return nil, grpcstatus.Errorf(codes.InvalidArgument, "unknown message type %q", typ)
	}
	payload := model.Payload{
		FileName:   str(req, "file_name"),
		ContentURL: str(req, "content_url"),
		Duration:   number(req, "duration"),
	}

	msg, ok := s.store.SendMessageTo(chatID, str(req, "text"), typ, payload, str(req, "reply_to"))
	if !ok {
		return nil, grpcstatus.Error(codes.InvalidArgument, "message not sent")
	}
	return toStruct(map[string]any{"message": messageMap(msg)})
}

func (s *Service) SearchMessages(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	query := strings.TrimSpace(str(req, "query"))
	if query == "" {
		return nil, grpcstatus.Error(codes.InvalidArgument, "empty query")
	}
	limit := number(req, "limit")
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	hits, err := s.index.Search(query, str(req, "chat_id"), limit)
	if err != nil {
		return nil, grpcstatus.Errorf(codes.Internal, "search messages: %v", err)
	}
	return toStruct(map[string]any{
		"hits":     hitList(hits),
		"has_more": len(hits) == limit,
	})
}

func (s *Service) Inbound(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	msg, err := s.gateway.Message(model.Message{
		ID:         str(req, "id"),
		ChatID:     str(req, "chat_id"),
		SenderID:   str(req, "sender_id"),
		SenderName: str(req, "sender_name"),
		Text:       str(req, "text"),
		Type:       model.MessageType(str(req, "type")),
		Payload: model.Payload{
			FileName:   str(req, "file_name"),
			ContentURL: str(req, "content_url"),
		},
	})
	if err != nil {
		return nil, ingressError(err)
	}
	return toStruct(map[string]any{"message": messageMap(msg)})
}

func (s *Service) Typing(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	chatID := str(req, "chat_id")
	if chatID == "" {
		return nil, grpcstatus.Error(codes.InvalidArgument, "missing chat id")
	}
	applied := s.gateway.Typing(chatID, boolean(req, "typing"))
	return toStruct(map[string]any{"applied": applied})
}

func (s *Service) Receipt(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	applied, err := s.gateway.Receipt(str(req, "message_id"), model.MessageStatus(str(req, "status")))
	if err != nil {
		return nil, ingressError(err)
	}
	return toStruct(map[string]any{"applied": applied})
}

func (s *Service) ListNotifications(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	notes := s.store.Notifications()
	list := make([]any, 0, len(notes))
	for _, n := range notes {
		list = append(list, notificationMap(n))
	}
	return toStruct(map[string]any{
		"notifications": list,
		"unread":        s.store.NotificationCount(),
	})
}

func (s *Service) MarkAllRead(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	s.store.MarkAllNotificationsAsRead()
	return toStruct(map[string]any{"unread": s.store.NotificationCount()})
}

func (s *Service) StartCall(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	typ := model.CallType(str(req, "type"))
	if typ == "" {
		typ = model.CallVoice
	}
	if typ != model.CallVoice && typ != model.CallVideo {
		return nil, grpcstatus.Errorf(codes.InvalidArgument, "unknown call type %q", typ)
	}
	target := model.CallTarget{UserID: str(req, "user_id"), Name: str(req, "name"), Type: typ}
	if target.UserID == "" && target.Name == "" {
		return nil, grpcstatus.Error(codes.InvalidArgument, "missing call target")
	}
	if err := s.store.StartCall(target); err != nil {
		if errors.Is(err, call.ErrCallInProgress) {
			return nil, grpcstatus.Error(codes.FailedPrecondition, err.Error())
		}
		return nil, grpcstatus.Errorf(codes.Internal, "start call: %v", err)
	}
	cv, _ := s.store.CallState()
	return toStruct(map[string]any{"phase": string(cv.Phase), "name": cv.Target.Name})
}

func (s *Service) EndCall(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	c, ok := s.store.EndCall()
	if !ok {
		return nil, grpcstatus.Error(codes.FailedPrecondition, "no active call")
	}
	return toStruct(map[string]any{"call": callMap(c)})
}

// WatchEvents streams bus events in the request's namespace (all events
// when empty) until the client goes away.
func (s *Service) WatchEvents(req *structpb.Struct, stream grpc.ServerStream) error {
	ch, unsub := s.bus.Subscribe(str(req, "namespace"), 256)
	defer unsub()

	for {
		select {
		case evt := <-ch:
			env, err := toStruct(map[string]any{
				"event_id":            uuid.New().String(),
				"session":             s.sessionName,
				"occurred_at_unix_ms": evt.Timestamp.UnixMilli(),
				"kind":                evt.Kind,
				"payload_version":     1,
				"payload":             eventPayload(evt),
			})
			if err != nil {
				s.logger.Warn("failed to encode event", zap.String("kind", evt.Kind), zap.Error(err))
				continue
			}
			if err := stream.SendMsg(env); err != nil {
				return err
			}
		case <-stream.Context().Done():
			return nil
		}
	}
}

func ingressError(err error) error {
	switch {
	case errors.Is(err, ingress.ErrInvalid):
		return grpcstatus.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ingress.ErrDuplicate):
		return grpcstatus.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, ingress.ErrRejected):
		return grpcstatus.Error(codes.FailedPrecondition, err.Error())
	}
	return grpcstatus.Errorf(codes.Internal, "ingress: %v", err)
}
