package ingress

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/c-pro/geche"
	"github.com/matheus3301/guftagu/internal/config"
	"github.com/matheus3301/guftagu/internal/content"
	"github.com/matheus3301/guftagu/internal/model"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	// ErrInvalid is returned for input that can never be applied.
	ErrInvalid = errors.New("invalid inbound event")
	// ErrDuplicate is returned for a message id seen within the dedupe window.
	ErrDuplicate = errors.New("duplicate message")
	// ErrRejected is returned when the store dropped the message, for
	// example because the sender is blocked or the chat is unknown.
	ErrRejected = errors.New("message rejected")
)

// Sink is the store's ingress surface.
type Sink interface {
	ReceiveMessage(in model.Message) (model.Message, bool)
	SetTyping(chatID string, on bool)
	ApplyReceipt(messageID string, status model.MessageStatus) bool
	SetPresence(userID string, online bool)
	AddCall(c model.Call) model.Call
}

// Gateway filters events coming from the transport before they reach the
// store: remote text is reduced to plain text, redelivered message ids are
// dropped and typing signals are throttled per chat.
type Gateway struct {
	sink   Sink
	logger *zap.Logger

	seen     geche.Geche[string, struct{}]
	limiters geche.Geche[string, *rate.Limiter]
	limMu    sync.Mutex
	every    time.Duration
}

// New creates a gateway. The caches stop cleaning up when ctx is done.
func New(ctx context.Context, sink Sink, cfg config.Ingress, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.DedupeTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	every := cfg.TypingInterval
	if every <= 0 {
		every = time.Second
	}
	return &Gateway{
		sink:     sink,
		logger:   logger,
		seen:     geche.NewMapTTLCache[string, struct{}](ctx, ttl, cleanupInterval(ttl)),
		limiters: geche.NewMapTTLCache[string, *rate.Limiter](ctx, ttl, cleanupInterval(ttl)),
		every:    every,
	}
}

func cleanupInterval(ttl time.Duration) time.Duration {
	return max(ttl/2, time.Second)
}

// Message delivers a remote message to the store.
func (g *Gateway) Message(in model.Message) (model.Message, error) {
	if in.ChatID == "" {
		return model.Message{}, fmt.Errorf("%w: missing chat id", ErrInvalid)
	}
	if in.Type == "" {
		in.Type = model.TypeText
	}
	if !in.Type.Valid() {
		return model.Message{}, fmt.Errorf("%w: unknown message type %q", ErrInvalid, in.Type)
	}
	if in.FromMe() {
		return model.Message{}, fmt.Errorf("%w: inbound message claims local sender", ErrInvalid)
	}
	in.Text = content.PlainText(in.Text)
	in.SenderName = content.PlainText(in.SenderName)
	if in.Type == model.TypeText && in.Text == "" {
		return model.Message{}, fmt.Errorf("%w: empty text", ErrInvalid)
	}

	if in.ID != "" {
		if _, err := g.seen.Get(in.ID); err == nil {
			g.logger.Debug("dropped redelivered message", zap.String("message_id", in.ID))
			return model.Message{}, ErrDuplicate
		}
	}
	msg, ok := g.sink.ReceiveMessage(in)
	if !ok {
		return model.Message{}, ErrRejected
	}
	g.seen.Set(msg.ID, struct{}{})
	return msg, nil
}

// Typing applies a remote typing signal. Start signals arriving faster than
// the configured interval for the same chat are dropped; stop signals always
// pass. Reports whether the signal was applied.
func (g *Gateway) Typing(chatID string, on bool) bool {
	if chatID == "" {
		return false
	}
	if on && !g.limiter(chatID).Allow() {
		return false
	}
	g.sink.SetTyping(chatID, on)
	return true
}

func (g *Gateway) limiter(chatID string) *rate.Limiter {
	g.limMu.Lock()
	defer g.limMu.Unlock()
	if l, err := g.limiters.Get(chatID); err == nil {
		return l
	}
	l := rate.NewLimiter(rate.Every(g.every), 1)
	g.limiters.Set(chatID, l)
	return l
}

// Receipt applies a delivery or read receipt. A stale receipt is not an
// error; it reports false.
func (g *Gateway) Receipt(messageID string, status model.MessageStatus) (bool, error) {
	if messageID == "" {
		return false, fmt.Errorf("%w: missing message id", ErrInvalid)
	}
	if status != model.StatusDelivered && status != model.StatusRead {
		return false, fmt.Errorf("%w: receipt status %q", ErrInvalid, status)
	}
	return g.sink.ApplyReceipt(messageID, status), nil
}

func (g *Gateway) Presence(userID string, online bool) {
	if userID == "" {
		return
	}
	g.sink.SetPresence(userID, online)
}

// IncomingCall records a call the local user did or did not pick up.
func (g *Gateway) IncomingCall(userID string, typ model.CallType, missed bool) (model.Call, error) {
	if userID == "" {
		return model.Call{}, fmt.Errorf("%w: missing caller", ErrInvalid)
	}
	if typ != model.CallVoice && typ != model.CallVideo {
		return model.Call{}, fmt.Errorf("%w: call type %q", ErrInvalid, typ)
	}
	status := model.CallIncoming
	if missed {
		status = model.CallMissed
	}
	return g.sink.AddCall(model.Call{UserID: userID, Type: typ, Status: status}), nil
}
