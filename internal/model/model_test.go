package model

import (
	"testing"
	"time"
)

func TestStatusAdvances(t *testing.T) {
	tests := []struct {
		from, to MessageStatus
		want     bool
	}{
		{StatusSent, StatusDelivered, true},
		{StatusSent, StatusRead, true},
		{StatusDelivered, StatusRead, true},
		{StatusRead, StatusDelivered, false},
		{StatusDelivered, StatusSent, false},
		{StatusRead, StatusRead, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.Advances(tt.to); got != tt.want {
				t.Errorf("Advances = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPreview(t *testing.T) {
	if got := (Message{Type: TypeText, Text: "hi"}).Preview(); got != "hi" {
		t.Errorf("text preview = %q, want hi", got)
	}
	if got := (Message{Type: TypeImage, Text: "caption"}).Preview(); got != "[image]" {
		t.Errorf("image preview = %q, want [image]", got)
	}
}

func TestCloneDetachesReply(t *testing.T) {
	orig := Message{ID: "b", ReplyTo: &Message{ID: "a", Text: "original"}}
	c := orig.Clone()
	c.ReplyTo.Text = "changed"
	if orig.ReplyTo.Text != "original" {
		t.Errorf("clone shares reply snapshot: %q", orig.ReplyTo.Text)
	}
}

func TestPrivacyMergeKeepsUnsetFields(t *testing.T) {
	s := DefaultPrivacy()
	got := s.Merge(PrivacyPatch{LastSeen: Ptr(VisibleNobody)})
	if got.LastSeen != VisibleNobody {
		t.Errorf("LastSeen = %s, want nobody", got.LastSeen)
	}
	if got.ProfilePhoto != VisibleEveryone || !got.ReadReceipts {
		t.Errorf("unset fields changed: %+v", got)
	}
}

func TestProfileMergeNeverChangesID(t *testing.T) {
	u := User{ID: Me, Name: "old"}
	got := u.Merge(ProfilePatch{Name: Ptr("new")})
	if got.ID != Me || got.Name != "new" {
		t.Errorf("got %+v", got)
	}
}

func TestRelative(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.Local)
	if got := Relative(now.Add(-time.Hour), now); got != "2:00 PM" {
		t.Errorf("today = %q, want 2:00 PM", got)
	}
	if got := Relative(now.AddDate(0, 0, -1), now); got != "Yesterday" {
		t.Errorf("yesterday = %q", got)
	}
	if got := DayLabel(now, now); got != "Today" {
		t.Errorf("DayLabel = %q, want Today", got)
	}
	if got := Ago(now.Add(-2*time.Hour), now); got != "2h ago" {
		t.Errorf("Ago = %q, want 2h ago", got)
	}
}
