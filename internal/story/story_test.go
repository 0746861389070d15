package story

import (
	"testing"

	"github.com/matheus3301/guftagu/internal/model"
)

func stories() []model.Story {
	return []model.Story{
		{ID: "s1", UserID: "1", UserName: "Aman"},
		{ID: "s2", UserID: "2", UserName: "Sarah", Viewed: true},
		{ID: "s3", UserID: "1", UserName: "Aman"},
	}
}

func TestGroupByAuthorKeepsOrder(t *testing.T) {
	groups := GroupByAuthor(stories())
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].UserID != "1" || groups[1].UserID != "2" {
		t.Errorf("group order = %s, %s", groups[0].UserID, groups[1].UserID)
	}
	if len(groups[0].Stories) != 2 || groups[0].Stories[0].ID != "s1" || groups[0].Stories[1].ID != "s3" {
		t.Errorf("stories of author 1 = %+v", groups[0].Stories)
	}
	if groups[0].AllViewed {
		t.Error("author 1 has unviewed stories")
	}
	if !groups[1].AllViewed {
		t.Error("author 2 has only viewed stories")
	}
}

func TestAllViewedNeedsEveryStory(t *testing.T) {
	ss := []model.Story{{ID: "a"}, {ID: "b"}}
	ss[0].Viewed = true
	if AllViewed(ss) {
		t.Error("AllViewed true with one story unviewed")
	}
	ss[1].Viewed = true
	if !AllViewed(ss) {
		t.Error("AllViewed false with all stories viewed")
	}
}

func TestViewerTickAdvancesThenCloses(t *testing.T) {
	v := Viewer{UserID: "1"}
	for i := 0; i < 49; i++ {
		if m := v.Tick(2, 2); m != Stay {
			t.Fatalf("tick %d moved: %v", i, m)
		}
	}
	if m := v.Tick(2, 2); m != Advanced {
		t.Fatalf("move at 100 = %v, want Advanced", m)
	}
	if v.Index != 1 || v.Progress != 0 {
		t.Errorf("viewer = %+v, want index 1 progress 0", v)
	}
	v.Progress = 98
	if m := v.Tick(2, 2); m != Closed {
		t.Errorf("move after last story = %v, want Closed", m)
	}
}

func TestViewerPrev(t *testing.T) {
	v := Viewer{Index: 1, Progress: 40}
	if m := v.Prev(); m != Advanced || v.Index != 0 || v.Progress != 0 {
		t.Errorf("Prev from 1: move %v viewer %+v", m, v)
	}
	if m := v.Prev(); m != Closed {
		t.Errorf("Prev from first = %v, want Closed", m)
	}
}
