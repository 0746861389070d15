package tui

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/guftagu/internal/bus"
	"github.com/matheus3301/guftagu/internal/model"
	"github.com/matheus3301/guftagu/internal/store"
)

// newTestApp builds the UI without a terminal. Handlers and refresh run
// synchronously, so navigation can be driven directly.
func newTestApp(t *testing.T) *App {
	t.Helper()
	b := bus.New()
	st := store.New(store.WithBus(b), store.WithSeed(store.DemoSeed(time.Now())))
	t.Cleanup(st.Close)
	return NewApp(st, b, nil, "test", nil)
}

func press(a *App, r rune) {
	a.handleKey(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
}

func pressKey(a *App, k tcell.Key) {
	a.handleKey(tcell.NewEventKey(k, 0, tcell.ModNone))
}

func TestStartsOnChatList(t *testing.T) {
	a := newTestApp(t)
	if got := a.pages.Current(); got != pageChats {
		t.Fatalf("page = %q, want chats", got)
	}
	if got := a.chats.SelectedChat(); got != "1" {
		t.Errorf("cursor on %q, want the pinned chat", got)
	}
}

func TestOpenAndLeaveChat(t *testing.T) {
	a := newTestApp(t)
	st := a.vm.Store

	pressKey(a, tcell.KeyEnter)
	if a.pages.Current() != pageThread || st.ActiveChatID() != "1" {
		t.Fatalf("page = %q, active = %q", a.pages.Current(), st.ActiveChatID())
	}
	if st.UnreadCount("1") != 0 {
		t.Error("opening a chat did not reset unread")
	}

	press(a, 'd')
	if a.pages.Current() != pageInfo {
		t.Fatalf("page = %q, want details", a.pages.Current())
	}
	press(a, 'm')
	if c, _ := st.Chat("1"); !c.Muted {
		t.Error("m on details did not mute the chat")
	}

	pressKey(a, tcell.KeyEscape)
	pressKey(a, tcell.KeyEscape)
	if a.pages.Current() != pageChats {
		t.Fatalf("page = %q after two Esc, want chats", a.pages.Current())
	}
	if st.ActiveChatID() != "" {
		t.Errorf("active chat %q still set after leaving the thread", st.ActiveChatID())
	}
}

func TestJumpKeys(t *testing.T) {
	a := newTestApp(t)
	press(a, '2')
	if got := a.vm.Store.ActiveChatID(); got != a.chats.ChatByIndex(2) || got == "" {
		t.Errorf("2 opened %q", got)
	}
}

func TestCommands(t *testing.T) {
	a := newTestApp(t)
	st := a.vm.Store

	a.execute(ParseCommand("chat sarah"))
	if a.pages.Current() != pageThread || st.ActiveChatID() != "2" {
		t.Fatalf("page = %q, active = %q", a.pages.Current(), st.ActiveChatID())
	}

	a.execute(ParseCommand("pin"))
	if c, _ := st.Chat("2"); !c.Pinned {
		t.Error(":pin did not pin the open chat")
	}

	a.execute(ParseCommand("call"))
	if a.pages.Current() != pageCalls {
		t.Errorf("page = %q after :call, want calls", a.pages.Current())
	}
	if _, ok := st.CallState(); !ok {
		t.Fatal("no active call")
	}
	a.execute(ParseCommand("hangup"))
	if _, ok := st.CallState(); ok {
		t.Error("call still active after :hangup")
	}

	a.execute(ParseCommand("status"))
	if a.pages.Stack()[0] != pageStatus || st.UI().Section != model.SectionStatus {
		t.Errorf("stack = %v, section = %q", a.pages.Stack(), st.UI().Section)
	}

	a.execute(ParseCommand("bogus"))
	if msg := a.vm.Flash.GetMessage(); msg == nil || msg.Text != "unknown command :bogus" {
		t.Errorf("flash = %+v", msg)
	}
}

func TestDeleteOpenChatReturnsToList(t *testing.T) {
	a := newTestApp(t)
	a.openChat("2")
	a.execute(ParseCommand("delete"))
	if a.pages.Current() != pageChats {
		t.Errorf("page = %q after deleting the open chat, want chats", a.pages.Current())
	}
	if _, ok := a.vm.Store.Chat("2"); ok {
		t.Error("chat 2 still exists")
	}
}

func TestNotificationCenter(t *testing.T) {
	a := newTestApp(t)
	st := a.vm.Store

	press(a, 'N')
	if a.pages.Current() != pageNotifications || !st.UI().NotificationCenterOpen {
		t.Fatalf("page = %q, center open = %v", a.pages.Current(), st.UI().NotificationCenterOpen)
	}
	pressKey(a, tcell.KeyEscape)
	if st.UI().NotificationCenterOpen {
		t.Error("notification center still open after Esc")
	}
}

func TestSectionCycle(t *testing.T) {
	a := newTestApp(t)
	want := []string{pageStatus, pageCalls, pageChats}
	for _, w := range want {
		pressKey(a, tcell.KeyTab)
		if got := a.pages.Root(); got != w {
			t.Fatalf("root = %q, want %q", got, w)
		}
	}
}

func TestFilterPrompt(t *testing.T) {
	a := newTestApp(t)
	press(a, '/')
	if !a.promptOpen {
		t.Fatal("prompt not shown")
	}
	a.prompt.SetText("alpha")
	a.prompt.Submit("alpha")
	if a.promptOpen {
		t.Error("prompt still open after submit")
	}
	if got := a.vm.Filter(); got != "alpha" {
		t.Errorf("filter = %q, want alpha", got)
	}
	if got := a.chats.ChatByIndex(1); got != "g1" {
		t.Errorf("first chat = %q, want g1", got)
	}
}
