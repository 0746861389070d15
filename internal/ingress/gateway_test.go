package ingress

import (
	"context"
	"testing"
	"time"

	"github.com/matheus3301/guftagu/internal/config"
	"github.com/matheus3301/guftagu/internal/model"
	"github.com/matheus3301/guftagu/internal/store"
	"github.com/stretchr/testify/require"
)

func newGateway(t *testing.T, cfg config.Ingress) (*Gateway, *store.Store) {
	t.Helper()
	st := store.New(store.WithSeed(store.DemoSeed(time.Now())))
	t.Cleanup(st.Close)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return New(ctx, st, cfg, nil), st
}

func TestMessageSanitizesText(t *testing.T) {
	g, st := newGateway(t, config.Ingress{})

	msg, err := g.Message(model.Message{
		ChatID:     "2",
		SenderName: "<b>Sarah</b>",
		Text:       `see <a href="javascript:alert(1)">this</a> &amp; that`,
	})
	require.NoError(t, err)
	require.Equal(t, "see this & that", msg.Text)
	require.Equal(t, "Sarah", msg.SenderName)

	chat, ok := st.Chat("2")
	require.True(t, ok)
	require.Equal(t, "see this & that", chat.LastMessage)
}

func TestMessageDedupe(t *testing.T) {
	g, st := newGateway(t, config.Ingress{DedupeTTL: time.Minute})

	_, err := g.Message(model.Message{ID: "wire-1", ChatID: "2", Text: "hello"})
	require.NoError(t, err)
	_, err = g.Message(model.Message{ID: "wire-1", ChatID: "2", Text: "hello"})
	require.ErrorIs(t, err, ErrDuplicate)

	require.Len(t, st.Messages("2"), 1)
	require.Equal(t, 1, st.UnreadCount("2"))
}

func TestMessageValidation(t *testing.T) {
	g, _ := newGateway(t, config.Ingress{})

	tests := []struct {
		name string
		in   model.Message
	}{
		{"missing chat", model.Message{Text: "hi"}},
		{"unknown type", model.Message{ChatID: "2", Type: "sticker"}},
		{"markup only", model.Message{ChatID: "2", Text: "<script>x</script>"}},
		{"spoofed sender", model.Message{ChatID: "2", SenderID: model.Me, Text: "hi"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Message(tt.in)
			require.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestMessageRejectedByStore(t *testing.T) {
	g, st := newGateway(t, config.Ingress{})
	st.BlockUser("2")

	_, err := g.Message(model.Message{ChatID: "2", Text: "let me in"})
	require.ErrorIs(t, err, ErrRejected)

	_, err = g.Message(model.Message{ChatID: "nobody", Text: "hi"})
	require.ErrorIs(t, err, ErrRejected)
}

func TestTypingThrottled(t *testing.T) {
	g, st := newGateway(t, config.Ingress{TypingInterval: time.Hour})

	require.True(t, g.Typing("2", true))
	require.False(t, g.Typing("2", true), "second start within interval")
	require.True(t, g.Typing("1", true), "other chats have their own budget")
	require.True(t, st.IsTyping("2"))

	require.True(t, g.Typing("2", false))
	require.False(t, st.IsTyping("2"))
	require.False(t, g.Typing("", true))
}

func TestReceipt(t *testing.T) {
	g, st := newGateway(t, config.Ingress{})
	st.SetActiveChat("1")
	sent, ok := st.SendMessage("hi", model.TypeText, model.Payload{})
	require.True(t, ok)

	applied, err := g.Receipt(sent.ID, model.StatusRead)
	require.NoError(t, err)
	require.True(t, applied)

	applied, err = g.Receipt(sent.ID, model.StatusDelivered)
	require.NoError(t, err)
	require.False(t, applied, "stale receipt")

	_, err = g.Receipt(sent.ID, model.StatusSent)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestPresenceAndCalls(t *testing.T) {
	g, st := newGateway(t, config.Ingress{})

	g.Presence("3", true)
	require.True(t, st.IsOnline("3"))

	c, err := g.IncomingCall("2", model.CallVideo, true)
	require.NoError(t, err)
	require.Equal(t, model.CallMissed, c.Status)
	require.Equal(t, "Sarah Wilson", c.UserName)

	_, err = g.IncomingCall("2", "fax", false)
	require.ErrorIs(t, err, ErrInvalid)
}
