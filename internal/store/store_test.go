package store

import (
	"sync"
	"testing"
	"time"

	"github.com/matheus3301/guftagu/internal/bus"
	"github.com/matheus3301/guftagu/internal/config"
	"github.com/matheus3301/guftagu/internal/model"
)

func fastTimings() config.Timings {
	return config.Timings{
		Delivered:      20 * time.Millisecond,
		Read:           40 * time.Millisecond,
		TypingStart:    10 * time.Millisecond,
		TypingDuration: 40 * time.Millisecond,
		CallRinging:    10 * time.Millisecond,
		CallConnect:    10 * time.Millisecond,
		CallTick:       10 * time.Millisecond,
		StoryTick:      5 * time.Millisecond,
		StoryStep:      50,
	}
}

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s := New(append([]Option{WithTimings(fastTimings())}, opts...)...)
	t.Cleanup(s.Close)
	return s
}

// emptySeed has two contacts with empty direct chats.
func emptySeed() Seed {
	aman := model.User{ID: "1", Name: "Aman Gupta"}
	sarah := model.User{ID: "2", Name: "Sarah Wilson"}
	return Seed{
		LoggedIn: true,
		Contacts: []model.User{aman, sarah},
		Chats: []model.Chat{
			{ID: "1", Name: aman.Name},
			{ID: "2", Name: sarah.Name},
		},
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestSendReadCycle(t *testing.T) {
	s := newTestStore(t, WithSeed(emptySeed()))
	s.SetActiveChat("1")

	msg, ok := s.SendMessage("hi", model.TypeText, model.Payload{})
	if !ok {
		t.Fatal("SendMessage returned false")
	}

	msgs := s.Messages("1")
	if len(msgs) != 1 {
		t.Fatalf("len(messages) = %d, want 1", len(msgs))
	}
	if msgs[0].Status != model.StatusSent || msgs[0].Text != "hi" {
		t.Errorf("message = %+v, want sent \"hi\"", msgs[0])
	}
	chat, _ := s.Chat("1")
	if chat.LastMessage != "hi" {
		t.Errorf("LastMessage = %q, want hi", chat.LastMessage)
	}

	status := func() model.MessageStatus {
		m, _ := s.Message(msg.ID)
		return m.Status
	}
	waitFor(t, "delivered", func() bool { return status() == model.StatusDelivered })
	waitFor(t, "read", func() bool { return status() == model.StatusRead })
}

func TestStatusNeverRegresses(t *testing.T) {
	b := bus.New()
	events, unsub := b.Subscribe("message.status", 16)
	defer unsub()

	s := newTestStore(t, WithBus(b), WithSeed(emptySeed()))
	s.SetActiveChat("1")
	msg, _ := s.SendMessage("hi", "", model.Payload{})

	// A read receipt racing ahead of the delivered timer.
	if !s.ApplyReceipt(msg.ID, model.StatusRead) {
		t.Fatal("read receipt rejected")
	}
	if s.ApplyReceipt(msg.ID, model.StatusDelivered) {
		t.Error("backward receipt accepted")
	}
	time.Sleep(100 * time.Millisecond)

	var seen []model.MessageStatus
drain:
	for {
		select {
		case evt := <-events:
			seen = append(seen, evt.Payload.(bus.StatusChange).To)
		default:
			break drain
		}
	}
	if len(seen) != 1 || seen[0] != model.StatusRead {
		t.Errorf("transitions = %v, want [read]", seen)
	}
	if m, _ := s.Message(msg.ID); m.Status != model.StatusRead {
		t.Errorf("status = %s, want read", m.Status)
	}
}

func TestSendWithoutActiveChat(t *testing.T) {
	s := newTestStore(t, WithSeed(emptySeed()))
	if _, ok := s.SendMessage("hi", model.TypeText, model.Payload{}); ok {
		t.Error("send without active chat succeeded")
	}
	if n := s.Stats().Messages; n != 0 {
		t.Errorf("messages = %d, want 0", n)
	}
}

func TestSendRejectsBlankText(t *testing.T) {
	s := newTestStore(t, WithSeed(emptySeed()))
	s.SetActiveChat("1")
	if _, ok := s.SendMessage("   ", model.TypeText, model.Payload{}); ok {
		t.Error("blank text accepted")
	}
	if _, ok := s.SendMessage("", model.TypeImage, model.Payload{ContentURL: "a.png"}); !ok {
		t.Error("image without caption rejected")
	}
	chat, _ := s.Chat("1")
	if chat.LastMessage != "[image]" {
		t.Errorf("LastMessage = %q, want [image]", chat.LastMessage)
	}
}

func TestReplySnapshotSurvivesDelete(t *testing.T) {
	s := newTestStore(t, WithSeed(emptySeed()))
	s.SetActiveChat("1")

	a, _ := s.SendMessage("original", model.TypeText, model.Payload{})
	s.SetReplyingTo(a.ID)
	b, _ := s.SendMessage("answer", model.TypeText, model.Payload{})

	if _, ok := s.ReplyingTo(); ok {
		t.Error("reply target not cleared after send")
	}
	s.DeleteMessage(a.ID)

	got, ok := s.Message(b.ID)
	if !ok {
		t.Fatal("reply message missing")
	}
	if got.ReplyTo == nil || got.ReplyTo.Text != "original" {
		t.Errorf("ReplyTo = %+v, want snapshot of \"original\"", got.ReplyTo)
	}
}

func TestDeleteNewestMessageRecomputesPreview(t *testing.T) {
	s := newTestStore(t, WithSeed(emptySeed()))
	s.SetActiveChat("1")
	s.SendMessage("first", model.TypeText, model.Payload{})
	last, _ := s.SendMessage("second", model.TypeText, model.Payload{})

	s.DeleteMessage(last.ID)
	chat, _ := s.Chat("1")
	if chat.LastMessage != "first" {
		t.Errorf("LastMessage = %q, want first", chat.LastMessage)
	}
	if s.sched.Pending(keyMessage + last.ID) {
		t.Error("timer of deleted message still pending")
	}

	s.DeleteMessage("missing")
}

func TestToggleStar(t *testing.T) {
	s := newTestStore(t, WithSeed(emptySeed()))
	s.SetActiveChat("1")
	m, _ := s.SendMessage("keep", model.TypeText, model.Payload{})

	s.ToggleStarMessage(m.ID)
	if got := s.StarredMessages(); len(got) != 1 || got[0].ID != m.ID {
		t.Errorf("starred = %v, want [%s]", got, m.ID)
	}
	s.ToggleStarMessage(m.ID)
	if got := s.StarredMessages(); len(got) != 0 {
		t.Errorf("starred after unstar = %d, want 0", len(got))
	}
}

func TestInChatSearch(t *testing.T) {
	s := newTestStore(t, WithSeed(emptySeed()))
	s.SetActiveChat("1")
	s.SendMessage("Lunch at noon?", model.TypeText, model.Payload{})
	s.SendMessage("sure", model.TypeText, model.Payload{})

	s.SetChatSearchQuery("lunch")
	if got := s.SearchResults(); len(got) != 0 {
		t.Errorf("results while search closed = %d, want 0", len(got))
	}
	s.SetInChatSearch(true)
	s.SetChatSearchQuery("LUNCH")
	if got := s.SearchResults(); len(got) != 1 {
		t.Errorf("results = %d, want 1", len(got))
	}

	s.SetActiveChat("2")
	if ui := s.UI(); ui.InChatSearch || ui.SearchQuery != "" {
		t.Errorf("search state after switching chat = %+v", ui)
	}
}

func TestCloseStopsTimers(t *testing.T) {
	s := New(WithTimings(fastTimings()), WithSeed(emptySeed()))
	s.SetActiveChat("1")
	m, _ := s.SendMessage("hi", model.TypeText, model.Payload{})
	s.Close()

	time.Sleep(80 * time.Millisecond)
	if got, _ := s.Message(m.ID); got.Status != model.StatusSent {
		t.Errorf("status after Close = %s, want sent", got.Status)
	}
}

func TestSendFileDetectsType(t *testing.T) {
	s := newTestStore(t, WithSeed(emptySeed()))
	s.SetActiveChat("1")

	png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}
	msg, ok := s.SendFile("photo.bin", "file:///tmp/photo.bin", png)
	if !ok {
		t.Fatal("SendFile rejected a valid attachment")
	}
	if msg.Type != model.TypeImage {
		t.Errorf("type = %q, want image", msg.Type)
	}
	if msg.Payload.FileName != "photo.bin" {
		t.Errorf("file name = %q", msg.Payload.FileName)
	}
	if c, _ := s.Chat("1"); c.LastMessage != "[image]" {
		t.Errorf("preview = %q, want [image]", c.LastMessage)
	}

	msg, _ = s.SendFile("notes.txt", "", []byte("hello"))
	if msg.Type != model.TypeFile {
		t.Errorf("type = %q, want file", msg.Type)
	}

	if _, ok := s.SendFile("", "", nil); ok {
		t.Error("SendFile accepted an attachment without a name")
	}
}

func TestSendCopiesPayload(t *testing.T) {
	s := newTestStore(t, WithSeed(emptySeed()))
	s.SetActiveChat("1")

	loc := &model.Location{Lat: 28.61, Lng: 77.21, Address: "India Gate"}
	card := &model.ContactCard{Name: "Priya"}
	msg, ok := s.SendMessage("", model.TypeLocation, model.Payload{Location: loc, Contact: card})
	if !ok {
		t.Fatal("location message rejected")
	}
	loc.Address = "changed"
	card.Name = "changed"

	got, _ := s.Message(msg.ID)
	if got.Payload.Location.Address != "India Gate" || got.Payload.Contact.Name != "Priya" {
		t.Errorf("stored payload follows the caller: %+v %+v", got.Payload.Location, got.Payload.Contact)
	}
}

func TestReplyTargetMustBeInActiveChat(t *testing.T) {
	s := newTestStore(t, WithSeed(emptySeed()))
	s.SetActiveChat("1")
	a, _ := s.SendMessage("in chat one", model.TypeText, model.Payload{})

	s.SetActiveChat("2")
	s.SetReplyingTo(a.ID)
	if _, ok := s.ReplyingTo(); ok {
		t.Fatal("reply target from another chat accepted")
	}
	b, _ := s.SendMessage("in chat two", model.TypeText, model.Payload{})
	if b.ReplyTo != nil {
		t.Errorf("ReplyTo = %+v, want none", b.ReplyTo)
	}

	s.ClearActiveChat()
	s.SetReplyingTo(a.ID)
	if _, ok := s.ReplyingTo(); ok {
		t.Error("reply target accepted with no chat open")
	}
}

func TestSendMessageTo(t *testing.T) {
	s := newTestStore(t, WithSeed(emptySeed()))

	first, ok := s.SendMessageTo("2", "hello", model.TypeText, model.Payload{}, "")
	if !ok || first.ChatID != "2" || s.ActiveChatID() != "2" {
		t.Fatalf("send = %+v %v, active = %q", first, ok, s.ActiveChatID())
	}

	s.SetActiveChat("1")
	if _, ok := s.SendMessageTo("2", "   ", model.TypeText, model.Payload{}, first.ID); ok {
		t.Fatal("blank send accepted")
	}
	if s.ActiveChatID() != "1" {
		t.Errorf("rejected send moved the selection to %q", s.ActiveChatID())
	}
	if _, ok := s.ReplyingTo(); ok {
		t.Error("rejected send left a pending reply")
	}
	if _, ok := s.SendMessageTo("1", "hi", model.TypeText, model.Payload{}, first.ID); ok {
		t.Error("reply target from another chat accepted")
	}
	if _, ok := s.SendMessageTo("missing", "hi", model.TypeText, model.Payload{}, ""); ok {
		t.Error("send to unknown chat accepted")
	}

	reply, ok := s.SendMessageTo("2", "answer", model.TypeText, model.Payload{}, first.ID)
	if !ok || reply.ReplyTo == nil || reply.ReplyTo.ID != first.ID {
		t.Errorf("reply = %+v, want a quote of %s", reply, first.ID)
	}
}

func TestSendMessageToWithConcurrentSelection(t *testing.T) {
	s := newTestStore(t, WithSeed(emptySeed()))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			s.SendMessageTo("2", "to sarah", model.TypeText, model.Payload{}, "")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			s.SetActiveChat("1")
		}
	}()
	wg.Wait()

	if n := len(s.Messages("1")); n != 0 {
		t.Errorf("%d messages landed in chat 1", n)
	}
	if n := len(s.Messages("2")); n != 200 {
		t.Errorf("chat 2 has %d messages, want 200", n)
	}
}
