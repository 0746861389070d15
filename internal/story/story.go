package story

import "github.com/matheus3301/guftagu/internal/model"

// Group is the set of stories posted by one author.
type Group struct {
	UserID     string
	UserName   string
	UserAvatar string
	Stories    []model.Story
	AllViewed  bool
}

// GroupByAuthor partitions stories by author. Groups appear in the order
// their author first appears, and stories keep their input order inside a group.
func GroupByAuthor(stories []model.Story) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, s := range stories {
		i, ok := index[s.UserID]
		if !ok {
			i = len(groups)
			index[s.UserID] = i
			groups = append(groups, Group{
				UserID:     s.UserID,
				UserName:   s.UserName,
				UserAvatar: s.UserAvatar,
			})
		}
		groups[i].Stories = append(groups[i].Stories, s)
	}
	for i := range groups {
		groups[i].AllViewed = AllViewed(groups[i].Stories)
	}
	return groups
}

// AllViewed reports whether every story is viewed. An empty set counts as viewed.
func AllViewed(stories []model.Story) bool {
	for _, s := range stories {
		if !s.Viewed {
			return false
		}
	}
	return true
}

// Move is the outcome of a viewer step.
type Move int

const (
	Stay Move = iota
	Advanced
	Closed
)

// Viewer is the position of the full-screen story viewer inside one
// author's stories.
type Viewer struct {
	UserID   string
	Index    int
	Progress int
}

// Tick adds step percent of progress and moves on once 100 is reached.
func (v *Viewer) Tick(step, count int) Move {
	v.Progress += step
	if v.Progress < 100 {
		return Stay
	}
	return v.Next(count)
}

// Next moves to the following story, or closes after the last one.
func (v *Viewer) Next(count int) Move {
	if v.Index+1 < count {
		v.Index++
		v.Progress = 0
		return Advanced
	}
	v.Progress = 100
	return Closed
}

// Prev moves to the previous story, or closes on the first one.
func (v *Viewer) Prev() Move {
	if v.Index > 0 {
		v.Index--
		v.Progress = 0
		return Advanced
	}
	return Closed
}
