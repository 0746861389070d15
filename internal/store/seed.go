package store

import (
	"time"

	"github.com/matheus3301/guftagu/internal/model"
)

// Seed is an initial dataset for a store.
type Seed struct {
	LoggedIn    bool
	CurrentUser model.User
	Contacts    []model.User
	Chats       []model.Chat
	Groups      []model.Group
	Messages    []model.Message
	Stories     []model.Story
	Calls       []model.Call
	Online      []string
}

func (s *Store) applySeed(seed Seed) {
	s.loggedIn = seed.LoggedIn
	if seed.CurrentUser.ID != "" {
		s.me = seed.CurrentUser
	}
	s.contacts = append(s.contacts, seed.Contacts...)
	for _, c := range seed.Chats {
		c := c.Clone()
		if c.UnreadCount > 0 {
			s.unread[c.ID] = c.UnreadCount
		}
		c.UnreadCount = 0
		s.chats = append(s.chats, &c)
	}
	s.groups = append(s.groups, seed.Groups...)
	for _, m := range seed.Messages {
		m := m.Clone()
		s.messages = append(s.messages, &m)
	}
	s.stories = append(s.stories, seed.Stories...)
	s.calls = append(s.calls, seed.Calls...)
	for _, id := range seed.Online {
		s.online[id] = true
	}
}

// DemoSeed returns the sample account the client ships with.
func DemoSeed(now time.Time) Seed {
	ago := func(d time.Duration) time.Time { return now.Add(-d) }

	aman := model.User{ID: "1", Name: "Aman Gupta", Avatar: "https://i.pravatar.cc/150?u=1", About: "Available", Online: true}
	sarah := model.User{ID: "2", Name: "Sarah Wilson", Avatar: "https://i.pravatar.cc/150?u=2", About: "At the gym"}
	john := model.User{ID: "3", Name: "John Doe", Avatar: "https://i.pravatar.cc/150?u=3", About: "Busy"}
	priya := model.User{ID: "4", Name: "Priya Sharma", Avatar: "https://i.pravatar.cc/150?u=4", About: "Hey there! I am using Guftagu."}
	rahul := model.User{ID: "5", Name: "Rahul Verma", Avatar: "https://i.pravatar.cc/150?u=5", About: "Urgent calls only"}

	return Seed{
		LoggedIn: true,
		CurrentUser: model.User{
			ID:     model.Me,
			Name:   "mdparwej",
			Avatar: "https://i.pravatar.cc/150?u=me",
			About:  "Hey there! I am using Guftagu.",
			Phone:  "+91 98765 43210",
			Online: true,
		},
		Contacts: []model.User{aman, sarah, john, priya, rahul},
		Chats: []model.Chat{
			{
				ID: aman.ID, Name: aman.Name, Avatar: aman.Avatar, About: aman.About,
				LastMessage: "Hey, how are you doing?", LastActivity: ago(5 * time.Minute),
				Online: true, UnreadCount: 2, Pinned: true, JoinedAt: ago(90 * 24 * time.Hour),
			},
			{
				ID: sarah.ID, Name: sarah.Name, Avatar: sarah.Avatar, About: sarah.About,
				LastMessage: "See you tomorrow!", LastActivity: ago(time.Hour),
				JoinedAt: ago(60 * 24 * time.Hour),
			},
			{
				ID: "g1", Name: "Project Alpha", Avatar: "https://i.pravatar.cc/150?u=g1",
				LastMessage: "Sarah: The design is ready", LastActivity: ago(2 * time.Hour),
				UnreadCount: 5, IsGroup: true, Members: []model.User{aman, sarah}, Admins: []string{aman.ID},
				About: "Launch planning", JoinedAt: ago(30 * 24 * time.Hour),
			},
			{
				ID: john.ID, Name: john.Name, Avatar: john.Avatar, About: john.About,
				LastMessage: "Thanks for the help", LastActivity: ago(48 * time.Hour),
				Archived: true, JoinedAt: ago(120 * 24 * time.Hour),
			},
		},
		Groups: []model.Group{{
			ID: "g1", Name: "Project Alpha", Avatar: "https://i.pravatar.cc/150?u=g1",
			Description: "Launch planning", CreatedAt: ago(30 * 24 * time.Hour),
			Members: []string{aman.ID, sarah.ID}, Admins: []string{aman.ID},
		}},
		Messages: []model.Message{
			{
				ID: "m1", ChatID: aman.ID, SenderID: aman.ID, SenderName: aman.Name,
				Text: "Hi there!", SentAt: ago(10 * time.Minute), Type: model.TypeText, Status: model.StatusRead,
			},
			{
				ID: "m2", ChatID: aman.ID, SenderID: model.Me, SenderName: "mdparwej",
				Text: "Hey, how are you doing?", SentAt: ago(5 * time.Minute), Type: model.TypeText, Status: model.StatusRead,
			},
		},
		Stories: []model.Story{
			{ID: "s1", UserID: aman.ID, UserName: aman.Name, UserAvatar: aman.Avatar, MediaURL: "https://picsum.photos/seed/s1/400/700", PostedAt: ago(2 * time.Hour), Caption: "Sunday hike"},
			{ID: "s2", UserID: sarah.ID, UserName: sarah.Name, UserAvatar: sarah.Avatar, MediaURL: "https://picsum.photos/seed/s2/400/700", PostedAt: ago(5 * time.Hour), Viewed: true},
		},
		Calls: []model.Call{
			{ID: "c1", UserID: aman.ID, UserName: aman.Name, UserAvatar: aman.Avatar, Type: model.CallVoice, Status: model.CallIncoming, At: ago(3 * time.Hour), Duration: "05:12", DateLabel: model.DayLabel(ago(3*time.Hour), now)},
			{ID: "c2", UserID: sarah.ID, UserName: sarah.Name, UserAvatar: sarah.Avatar, Type: model.CallVideo, Status: model.CallMissed, At: ago(26 * time.Hour), DateLabel: model.DayLabel(ago(26*time.Hour), now)},
		},
		Online: []string{aman.ID},
	}
}
