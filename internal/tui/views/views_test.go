package views

import (
	"strings"
	"testing"
	"time"

	"github.com/matheus3301/guftagu/internal/call"
	"github.com/matheus3301/guftagu/internal/index"
	"github.com/matheus3301/guftagu/internal/model"
	"github.com/matheus3301/guftagu/internal/store"
	"github.com/matheus3301/guftagu/internal/story"
	"github.com/matheus3301/guftagu/internal/tui/ui"
	"github.com/matheus3301/guftagu/internal/tui/viewmodel"
	"github.com/matheus3301/guftagu/internal/verify"
)

var fixedNow = time.Date(2026, 3, 14, 15, 0, 0, 0, time.Local)

func TestConversationListKeepsSelection(t *testing.T) {
	cl := NewConversationList(ui.DefaultTheme())
	cl.now = func() time.Time { return fixedNow }
	rows := []viewmodel.ChatRow{
		{Chat: model.Chat{ID: "1", Name: "Aman", LastMessage: "hi", LastActivity: fixedNow.Add(-time.Minute), UnreadCount: 2}, Pinned: true},
		{Chat: model.Chat{ID: "2", Name: "Sarah", LastMessage: "see you"}, Typing: true},
	}
	cl.Update(rows, "", false)

	if got := cl.GetCell(1, 4).Text; got != "2" {
		t.Errorf("unread badge = %q, want 2", got)
	}
	if got := cl.GetCell(2, 2).Text; !strings.Contains(got, "typing") {
		t.Errorf("typing chat preview = %q", got)
	}
	if got := cl.ChatByIndex(2); got != "2" {
		t.Errorf("ChatByIndex(2) = %q", got)
	}

	cl.Select(2, 0)
	// Sarah moves to the top; the cursor follows her.
	cl.Update([]viewmodel.ChatRow{rows[1], rows[0]}, "", false)
	if got := cl.SelectedChat(); got != "2" {
		t.Errorf("selected = %q after reorder, want 2", got)
	}
	if got := cl.ChatByIndex(3); got != "" {
		t.Errorf("ChatByIndex out of range = %q", got)
	}
}

func TestThreadRender(t *testing.T) {
	mt := NewMessageThread(ui.DefaultTheme())
	mt.now = func() time.Time { return fixedNow }

	orig := model.Message{ID: "m1", SenderID: "1", SenderName: "Aman", Text: "lunch?", SentAt: fixedNow.Add(-time.Hour)}
	out := mt.Render(ThreadState{
		Chat: model.Chat{ID: "1", Name: "Aman"},
		Messages: []model.Message{
			orig,
			{ID: "m2", SenderID: model.Me, Text: "sure [ok]", SentAt: fixedNow, Status: model.StatusRead, ReplyTo: &orig, Starred: true},
			{ID: "m3", SenderID: "1", SenderName: "Aman", Type: model.TypeVoice, Payload: model.Payload{Duration: 75}, SentAt: fixedNow},
		},
		Typing: true,
	})

	for _, want := range []string{"Today", "You", "✓✓", "★", "│ Aman: lunch?", "sure [ok[]", "[voice[] 1:15", "Aman is typing"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
}

func TestHighlight(t *testing.T) {
	got := highlight("Meet at the Station", "station", "black", "green")
	if want := "Meet at the [black:green]Station[-:-]"; got != want {
		t.Errorf("highlight = %q, want %q", got, want)
	}
	if got := highlight("no match", "xyz", "black", "green"); got != "no match" {
		t.Errorf("highlight without match = %q", got)
	}
}

func TestInfoShowsSecurityCode(t *testing.T) {
	ci := NewConversationInfo(ui.DefaultTheme())
	me := model.User{ID: model.Me, Name: "me"}
	out := ci.Render(InfoState{Chat: model.Chat{ID: "2", Name: "Sarah"}, Me: me})

	first := strings.Split(verify.Format(verify.Code(model.Me, "2")), "\n")[0]
	if !strings.Contains(out, first) {
		t.Errorf("details missing security code row %q", first)
	}
	if !strings.Contains(out, "█") && !strings.Contains(out, "▀") {
		t.Error("details missing QR code")
	}

	group := ci.Render(InfoState{Chat: model.Chat{ID: "g1", Name: "Team", IsGroup: true,
		Members: []model.User{{ID: "1", Name: "Aman"}}, Admins: []string{"1"}}, Me: me})
	if strings.Contains(group, "Security code") {
		t.Error("group details show a security code")
	}
	if !strings.Contains(group, "Members (2)") || !strings.Contains(group, "admin") {
		t.Errorf("group members not listed:\n%s", group)
	}
}

func TestSearchSelection(t *testing.T) {
	sv := NewSearchView(ui.DefaultTheme())
	sv.Update("hi", []index.Hit{
		{MessageID: "m1", ChatID: "1", ChatName: "Aman", SenderID: model.Me, Snippet: "hi there"},
		{MessageID: "m9", ChatID: "2", ChatName: "Sarah", SenderName: "Sarah", Snippet: "hi"},
	})
	if chat, msg := sv.SelectedResult(); chat != "1" || msg != "m1" {
		t.Errorf("selected = %s/%s, want 1/m1", chat, msg)
	}
	if got := sv.Results().GetCell(1, 1).Text; got != " You" {
		t.Errorf("own hit sender = %q", got)
	}
}

func TestCallsRender(t *testing.T) {
	cv := NewCallsView(ui.DefaultTheme())
	out := cv.RenderActive(store.CallView{
		Target:   model.CallTarget{Name: "Aman", Type: model.CallVideo},
		Phase:    call.Connected,
		Duration: "00:05",
	})
	if !strings.Contains(out, "Video call") || !strings.Contains(out, "00:05") {
		t.Errorf("active call = %q", out)
	}
	if out := cv.RenderActive(store.CallView{Phase: call.Ringing}); !strings.Contains(out, "Ringing") {
		t.Errorf("ringing call = %q", out)
	}

	cv.Update(store.CallView{}, false, []model.Call{{ID: "c1", UserID: "2", UserName: "Sarah", Status: model.CallMissed, Type: model.CallVoice}})
	c, ok := cv.SelectedCall()
	if !ok || c.UserID != "2" {
		t.Errorf("selected call = %+v, %v", c, ok)
	}
}

func TestStoryProgressBar(t *testing.T) {
	sv := NewStoriesView(ui.DefaultTheme())
	sv.now = func() time.Time { return fixedNow }
	out := sv.RenderViewer(store.StoryView{Progress: 50, Story: model.Story{Caption: "hike", PostedAt: fixedNow}})
	if n := strings.Count(out, "━"); n != progressWidth {
		t.Errorf("bar cells = %d, want %d", n, progressWidth)
	}
	if !strings.Contains(out, "hike") {
		t.Error("caption missing")
	}

	sv.Update([]story.Group{{UserID: "1", UserName: "Aman", Stories: []model.Story{{ID: "s1"}}}}, store.StoryView{}, false)
	if got := sv.SelectedAuthor(); got != "1" {
		t.Errorf("selected author = %q", got)
	}
}

func TestSanitize(t *testing.T) {
	if got := sanitizeForTerminal("a\x1b[31mb\u200d👍🏻"); got != "a[31mb👍" {
		t.Errorf("sanitize = %q", got)
	}
	if got := oneLine("two\nlines"); got != "two lines" {
		t.Errorf("oneLine = %q", got)
	}
}
