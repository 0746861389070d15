package store

import (
	"github.com/matheus3301/guftagu/internal/bus"
	"github.com/matheus3301/guftagu/internal/model"
	"github.com/matheus3301/guftagu/internal/story"
	"go.uber.org/zap"
)

// MarkStoryViewed flags a story as seen. Already viewed or unknown stories
// are left alone.
func (s *Store) MarkStoryViewed(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markViewedLocked(id)
}

func (s *Store) markViewedLocked(id string) {
	for i := range s.stories {
		st := &s.stories[i]
		if st.ID != id {
			continue
		}
		if !st.Viewed {
			st.Viewed = true
			s.emit(bus.StoryViewed, bus.StoryEvent{StoryID: id, UserID: st.UserID})
		}
		return
	}
}

func (s *Store) authorStoriesLocked(userID string) []model.Story {
	var out []model.Story
	for _, st := range s.stories {
		if st.UserID == userID {
			out = append(out, st)
		}
	}
	return out
}

// OpenStories opens the viewer at an author's first story and starts the
// progress ticker. Reaching the end of the last story closes the viewer.
func (s *Store) OpenStories(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stories := s.authorStoriesLocked(userID)
	if len(stories) == 0 {
		s.ignore("open stories", zap.String("user_id", userID))
		return
	}
	s.viewer = &story.Viewer{UserID: userID}
	s.markViewedLocked(stories[0].ID)
	s.emitViewerLocked(stories)
	s.sched.Every(keyStory+"progress", s.timings.StoryTick, s.tickStory)
}

func (s *Store) tickStory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.viewer == nil {
		return
	}
	stories := s.authorStoriesLocked(s.viewer.UserID)
	s.applyMoveLocked(s.viewer.Tick(s.timings.StoryStep, len(stories)), stories)
}

// NextStory skips to the following story.
func (s *Store) NextStory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.viewer == nil {
		return
	}
	stories := s.authorStoriesLocked(s.viewer.UserID)
	s.applyMoveLocked(s.viewer.Next(len(stories)), stories)
}

// PrevStory goes back one story; on the first story it closes the viewer.
func (s *Store) PrevStory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.viewer == nil {
		return
	}
	stories := s.authorStoriesLocked(s.viewer.UserID)
	s.applyMoveLocked(s.viewer.Prev(), stories)
}

func (s *Store) CloseStories() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeViewerLocked()
}

func (s *Store) applyMoveLocked(mv story.Move, stories []model.Story) {
	if len(stories) == 0 || mv == story.Closed {
		s.closeViewerLocked()
		return
	}
	if s.viewer.Index >= len(stories) {
		s.viewer.Index = len(stories) - 1
	}
	if mv == story.Advanced {
		s.markViewedLocked(stories[s.viewer.Index].ID)
	}
	s.emitViewerLocked(stories)
}

func (s *Store) closeViewerLocked() {
	if s.viewer == nil {
		return
	}
	s.sched.Cancel(keyStory + "progress")
	userID := s.viewer.UserID
	s.viewer = nil
	s.emit(bus.StoryViewer, bus.StoryEvent{UserID: userID})
}

func (s *Store) emitViewerLocked(stories []model.Story) {
	v := s.viewer
	s.emit(bus.StoryViewer, bus.StoryEvent{
		StoryID:  stories[v.Index].ID,
		UserID:   v.UserID,
		Index:    v.Index,
		Progress: v.Progress,
		Open:     true,
	})
}
