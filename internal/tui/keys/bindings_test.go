package keys

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestViewShadowsGlobal(t *testing.T) {
	r := NewRegistry()
	var got string
	r.AddGlobal("quit", &Action{Key: tcell.KeyRune, Rune: 'q', Handler: func() { got = "global" }})
	r.AddView("thread", "quote", &Action{Key: tcell.KeyRune, Rune: 'q', Handler: func() { got = "view" }})

	if !r.HandleEvent("thread", runeKey('q')) || got != "view" {
		t.Errorf("thread view: handled by %q, want view", got)
	}
	if !r.HandleEvent("chats", runeKey('q')) || got != "global" {
		t.Errorf("chats view: handled by %q, want global", got)
	}
	if r.HandleEvent("chats", runeKey('z')) {
		t.Error("unbound key reported as handled")
	}
}

func TestSpecialKeys(t *testing.T) {
	r := NewRegistry()
	hit := false
	r.AddView("chats", "open", &Action{Key: tcell.KeyEnter, Handler: func() { hit = true }})

	if !r.HandleEvent("chats", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone)) || !hit {
		t.Error("Enter binding did not fire")
	}
}

func TestHintsOrder(t *testing.T) {
	r := NewRegistry()
	noop := func() {}
	r.AddGlobal("help", &Action{Key: tcell.KeyRune, Rune: '?', Description: "Help", Visible: true, Handler: noop})
	r.AddView("chats", "open", &Action{Key: tcell.KeyEnter, Label: "Enter", Description: "Open", Visible: true, Handler: noop})
	r.AddView("chats", "pin", &Action{Key: tcell.KeyRune, Rune: 'p', Description: "Pin", Visible: true, Handler: noop})
	r.AddView("chats", "jump", &Action{Key: tcell.KeyRune, Rune: '1', Visible: false, Handler: noop})
	// Re-registering keeps the original position.
	r.AddView("chats", "open", &Action{Key: tcell.KeyEnter, Label: "Enter", Description: "Open chat", Visible: true, Handler: noop})

	hints := r.Hints("chats")
	want := []string{"Enter:Open chat", "p:Pin", "?:Help"}
	if len(hints) != len(want) {
		t.Fatalf("hints = %v, want %v", hints, want)
	}
	for i, h := range hints {
		if got := h.Key + ":" + h.Description; got != want[i] {
			t.Errorf("hints[%d] = %q, want %q", i, got, want[i])
		}
	}
}
