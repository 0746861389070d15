package store

import (
	"slices"
	"testing"
	"time"

	"github.com/matheus3301/guftagu/internal/model"
)

func TestSelectResetsUnread(t *testing.T) {
	s := newTestStore(t, WithSeed(DemoSeed(time.Now())))

	for _, id := range []string{"1", "g1", "2"} {
		s.SetActiveChat(id)
		if n := s.UnreadCount(id); n != 0 {
			t.Errorf("unread(%s) after select = %d, want 0", id, n)
		}
	}
	if n := s.TotalUnread(); n != 0 {
		t.Errorf("total unread = %d, want 0", n)
	}
}

func TestSelectClosesPanels(t *testing.T) {
	s := newTestStore(t, WithSeed(emptySeed()))
	s.SetOverlay(model.OverlayEmoji)
	s.ToggleNotificationCenter()

	s.SetActiveChat("1")
	ui := s.UI()
	if ui.Overlay != model.OverlayNone || ui.NotificationCenterOpen {
		t.Errorf("ui after select = %+v, want panels closed", ui)
	}

	s.SetActiveChat("missing")
	if got := s.ActiveChatID(); got != "1" {
		t.Errorf("active = %q after selecting unknown chat, want 1", got)
	}
}

func TestDeleteChatCascades(t *testing.T) {
	s := newTestStore(t, WithSeed(emptySeed()))
	s.SetActiveChat("1")
	m, _ := s.SendMessage("one", model.TypeText, model.Payload{})
	s.SendMessage("two", model.TypeText, model.Payload{})
	s.SetReplyingTo(m.ID)

	s.DeleteChat("1")

	if got := s.Messages("1"); len(got) != 0 {
		t.Errorf("messages left = %d, want 0", len(got))
	}
	if got := s.ActiveChatID(); got != "" {
		t.Errorf("active = %q, want empty", got)
	}
	if _, ok := s.ReplyingTo(); ok {
		t.Error("reply target survived chat delete")
	}
	if _, ok := s.Chat("1"); ok {
		t.Error("chat still present")
	}
	if s.sched.Pending(keyMessage + m.ID) {
		t.Error("message timer still pending")
	}
	if s.sched.Pending(keyTyping + "1") {
		t.Error("typing timer still pending")
	}
}

func TestDeleteInactiveChatKeepsSelection(t *testing.T) {
	s := newTestStore(t, WithSeed(emptySeed()))
	s.SetActiveChat("1")
	s.DeleteChat("2")
	if got := s.ActiveChatID(); got != "1" {
		t.Errorf("active = %q, want 1", got)
	}
}

func TestClearChat(t *testing.T) {
	s := newTestStore(t, WithSeed(emptySeed()))
	s.SetActiveChat("1")
	s.SendMessage("hello", model.TypeText, model.Payload{})

	s.ClearChat("1")
	chat, ok := s.Chat("1")
	if !ok {
		t.Fatal("chat removed by clear")
	}
	if chat.LastMessage != "" {
		t.Errorf("LastMessage = %q, want empty", chat.LastMessage)
	}
	if got := s.Messages("1"); len(got) != 0 {
		t.Errorf("messages = %d, want 0", len(got))
	}
}

func TestPinArchiveIndependent(t *testing.T) {
	s := newTestStore(t, WithSeed(emptySeed()))

	s.TogglePinChat("2")
	s.ToggleArchiveChat("2")
	c, _ := s.Chat("2")
	if !c.Pinned || !c.Archived {
		t.Errorf("pinned=%v archived=%v, want both true", c.Pinned, c.Archived)
	}

	s.TogglePinChat("2")
	c, _ = s.Chat("2")
	if c.Pinned || !c.Archived {
		t.Errorf("pinned=%v archived=%v, want false/true", c.Pinned, c.Archived)
	}
}

func TestChatListGrouping(t *testing.T) {
	now := time.Now()
	s := newTestStore(t, WithSeed(DemoSeed(now)))

	list := s.ChatList()
	if len(list.Pinned) != 1 || list.Pinned[0].ID != "1" {
		t.Errorf("pinned = %v, want [1]", ids(list.Pinned))
	}
	if got := ids(list.Others); !slices.Equal(got, []string{"2", "g1"}) {
		t.Errorf("others = %v, want [2 g1]", got)
	}
	if got := ids(s.ArchivedChats()); !slices.Equal(got, []string{"3"}) {
		t.Errorf("archived = %v, want [3]", got)
	}
	if list.Pinned[0].UnreadCount != 2 {
		t.Errorf("unread(1) = %d, want 2", list.Pinned[0].UnreadCount)
	}

	if got := ids(s.FilterChats("project").Others); !slices.Equal(got, []string{"g1"}) {
		t.Errorf("filter = %v, want [g1]", got)
	}
}

func ids(chats []model.Chat) []string {
	out := make([]string, 0, len(chats))
	for _, c := range chats {
		out = append(out, c.ID)
	}
	return out
}

func TestTypingCycleBounded(t *testing.T) {
	s := newTestStore(t, WithSeed(emptySeed()))
	before := s.TypingUsers()

	start := time.Now()
	s.SetActiveChat("2")
	waitFor(t, "typing start", func() bool { return s.IsTyping("2") })
	waitFor(t, "typing end", func() bool { return !s.IsTyping("2") })

	if got := s.TypingUsers(); !slices.Equal(got, before) {
		t.Errorf("typing users = %v, want %v", got, before)
	}
	cycle := fastTimings().TypingStart + fastTimings().TypingDuration
	if elapsed := time.Since(start); elapsed > cycle+500*time.Millisecond {
		t.Errorf("cycle took %v, want about %v", elapsed, cycle)
	}
}

func TestReselectDoesNotRestartTyping(t *testing.T) {
	s := newTestStore(t, WithSeed(emptySeed()))
	s.SetActiveChat("1")
	waitFor(t, "typing start", func() bool { return s.IsTyping("1") })
	waitFor(t, "typing end", func() bool { return !s.IsTyping("1") })

	s.SetActiveChat("1")
	if s.sched.Pending(keyTyping + "1") {
		t.Error("reselecting the same chat restarted typing")
	}
}

func TestCreateChat(t *testing.T) {
	s := newTestStore(t, WithSeed(DemoSeed(time.Now())))

	id, ok := s.CreateChat("4")
	if !ok || id != "4" {
		t.Fatalf("CreateChat = %q, %v", id, ok)
	}
	if got := s.ActiveChatID(); got != "4" {
		t.Errorf("active = %q, want 4", got)
	}
	n := len(s.Chats())
	if _, ok := s.CreateChat("4"); !ok {
		t.Error("second CreateChat failed")
	}
	if len(s.Chats()) != n {
		t.Error("CreateChat duplicated an existing chat")
	}
	if _, ok := s.CreateChat("nobody"); ok {
		t.Error("CreateChat with unknown contact succeeded")
	}
}

func TestGroupMembership(t *testing.T) {
	s := newTestStore(t, WithSeed(DemoSeed(time.Now())))

	if _, ok := s.CreateGroup("  ", []string{"1"}); ok {
		t.Error("group without name created")
	}
	if _, ok := s.CreateGroup("Empty", []string{"nobody"}); ok {
		t.Error("group without known members created")
	}

	id, ok := s.CreateGroup("Weekend", []string{"1", "2", "1", "nobody"})
	if !ok {
		t.Fatal("CreateGroup failed")
	}
	chat, _ := s.Chat(id)
	if !chat.IsGroup || len(chat.Members) != 2 {
		t.Errorf("group = %+v, want 2 members", chat)
	}
	if !slices.Contains(chat.Admins, model.Me) {
		t.Errorf("admins = %v, want me", chat.Admins)
	}

	s.AddGroupMember(id, model.User{ID: "4", Name: "Priya Sharma"})
	s.AddGroupMember(id, model.User{ID: "4", Name: "Priya Sharma"})
	s.RemoveGroupMember(id, "1")
	chat, _ = s.Chat(id)
	if chat.HasMember("1") || !chat.HasMember("4") || len(chat.Members) != 2 {
		t.Errorf("members = %v", chat.Members)
	}

	s.ExitGroup(id)
	if _, ok := s.Chat(id); ok {
		t.Error("group chat still present after exit")
	}
	for _, g := range s.Groups() {
		if g.ID == id {
			t.Error("group record still present after exit")
		}
	}

	s.ExitGroup("1")
	if _, ok := s.Chat("1"); !ok {
		t.Error("ExitGroup removed a direct chat")
	}
}

func TestPresence(t *testing.T) {
	s := newTestStore(t, WithSeed(DemoSeed(time.Now())))

	s.SetPresence("2", true)
	c, _ := s.Chat("2")
	if !c.Online || !s.IsOnline("2") {
		t.Error("direct chat not online")
	}
	g, _ := s.Chat("g1")
	for _, m := range g.Members {
		if m.ID == "2" && !m.Online {
			t.Error("group member not online")
		}
	}

	s.SetPresence("2", false)
	if s.IsOnline("2") {
		t.Error("user still online")
	}
}

func TestNavigation(t *testing.T) {
	s := newTestStore(t)
	s.SetActiveSection(model.SectionSettings)
	s.SetSettingsSubpage(model.SubpagePrivacy)
	if ui := s.UI(); ui.Section != model.SectionSettings || ui.Subpage != model.SubpagePrivacy {
		t.Errorf("ui = %+v", ui)
	}
	s.SetActiveSection(model.SectionCalls)
	if ui := s.UI(); ui.Subpage != model.SubpageNone {
		t.Errorf("subpage = %s after leaving settings", ui.Subpage)
	}
	s.SetOverlay(model.OverlayCall)
	if ui := s.UI(); ui.Overlay == model.OverlayCall {
		t.Error("call overlay opened without a call")
	}
}

func TestSwitchDropsReplyAndSearch(t *testing.T) {
	s := newTestStore(t, WithSeed(emptySeed()))
	s.SetActiveChat("1")
	m, _ := s.SendMessage("quote me", model.TypeText, model.Payload{})
	s.SetReplyingTo(m.ID)
	s.SetInChatSearch(true)
	s.SetChatSearchQuery("quote")

	// Reselecting the same chat keeps both.
	s.SetActiveChat("1")
	if _, ok := s.ReplyingTo(); !ok {
		t.Error("reselect dropped the pending reply")
	}
	if ui := s.UI(); !ui.InChatSearch || ui.SearchQuery != "quote" {
		t.Errorf("reselect reset search: %+v", ui)
	}

	s.SetActiveChat("2")
	if _, ok := s.ReplyingTo(); ok {
		t.Error("pending reply survived the switch")
	}
	if ui := s.UI(); ui.InChatSearch || ui.SearchQuery != "" {
		t.Errorf("search survived the switch: %+v", ui)
	}
	if got := s.SearchResults(); len(got) != 0 {
		t.Errorf("search results = %d, want 0", len(got))
	}
}

func TestSelectMinimizesLiveCall(t *testing.T) {
	s := newTestStore(t, WithSeed(emptySeed()))
	if err := s.StartCall(model.CallTarget{UserID: "1"}); err != nil {
		t.Fatal(err)
	}

	s.SetActiveChat("2")
	ui := s.UI()
	if ui.Overlay == model.OverlayCall || !ui.CallMinimized {
		t.Errorf("ui = %+v, want the call in the minimized bar", ui)
	}
	if _, active := s.CallState(); !active {
		t.Fatal("selection ended the call")
	}

	s.SetCallMinimized(false)
	s.SetOverlay(model.OverlayEmoji)
	if ui := s.UI(); !ui.CallMinimized {
		t.Errorf("ui = %+v, want minimized after another overlay opened", ui)
	}

	s.EndCall()
	s.SetActiveChat("1")
	if s.UI().CallMinimized {
		t.Error("minimized bar shown without a call")
	}
}

func TestMuteAndDisappearingIndependent(t *testing.T) {
	s := newTestStore(t, WithSeed(emptySeed()))
	s.ToggleMuteChat("1")
	s.ToggleDisappearingMessages("1")
	s.ToggleMuteChat("1")

	c, _ := s.Chat("1")
	if c.Muted || !c.Disappearing || c.Pinned || c.Archived {
		t.Errorf("chat = %+v, want only disappearing set", c)
	}
	s.ToggleMuteChat("missing")
}

func TestUpdateChatSettingsMerges(t *testing.T) {
	s := newTestStore(t)
	before := s.Settings().Chat

	s.UpdateChatSettings(model.ChatSettingsPatch{FontSize: model.Ptr(model.FontLarge)})
	after := s.Settings().Chat
	if after.FontSize != model.FontLarge {
		t.Errorf("font size = %q, want large", after.FontSize)
	}
	after.FontSize = before.FontSize
	if after != before {
		t.Errorf("untouched settings changed: %+v, was %+v", after, before)
	}
}

func TestMarkAsRead(t *testing.T) {
	s := newTestStore(t, WithSeed(emptySeed()))
	s.SetActiveChat("1")
	if _, ok := s.ReceiveMessage(model.Message{ChatID: "2", SenderID: "2", Text: "ping"}); !ok {
		t.Fatal("inbound message rejected")
	}
	if n := s.UnreadCount("2"); n != 1 {
		t.Fatalf("unread = %d, want 1", n)
	}

	s.MarkAsRead("2")
	if n := s.UnreadCount("2"); n != 0 {
		t.Errorf("unread after MarkAsRead = %d, want 0", n)
	}
	if s.ActiveChatID() != "1" {
		t.Error("MarkAsRead changed the selection")
	}
	s.MarkAsRead("missing")
}

func TestLoginAndTokens(t *testing.T) {
	s := newTestStore(t, WithSeed(emptySeed()))
	if !s.UI().LoggedIn {
		t.Fatal("seeded store not logged in")
	}
	s.SetLoggedIn(false)
	if s.UI().LoggedIn {
		t.Error("still logged in")
	}

	s.SetFCMToken("fcm-123")
	s.SetDeviceToken("dev-456")
	if got := s.Settings(); got.FCMToken != "fcm-123" || got.DeviceToken != "dev-456" {
		t.Errorf("tokens = %q, %q", got.FCMToken, got.DeviceToken)
	}
}
