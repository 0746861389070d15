package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/matheus3301/guftagu/internal/bus"
	"github.com/matheus3301/guftagu/internal/call"
	"github.com/matheus3301/guftagu/internal/config"
	"github.com/matheus3301/guftagu/internal/model"
	"github.com/matheus3301/guftagu/internal/push"
	"github.com/matheus3301/guftagu/internal/sched"
	"github.com/matheus3301/guftagu/internal/story"
	"go.uber.org/zap"
)

// Store is the single owner of all conversation state. Every mutation goes
// through one of its action methods, which run under one mutex; selectors
// return copies so callers never hold references into the store.
//
// Actions never fail loudly: an unknown id or a missing active chat turns
// the action into a no-op. Timer callbacks re-enter through the same
// actions and tolerate entities that vanished in the meantime.
type Store struct {
	mu sync.Mutex

	logger     *zap.Logger
	bus        *bus.Bus
	sched      *sched.Scheduler
	ownSched   bool
	notifier   push.Notifier
	timings    config.Timings
	now        func() time.Time
	ctx        context.Context
	cancel     context.CancelFunc
	deliveries sync.WaitGroup

	loggedIn      bool
	me            model.User
	contacts      []model.User
	chats         []*model.Chat
	messages      []*model.Message
	groups        []model.Group
	stories       []model.Story
	calls         []model.Call
	notifications []model.Notification

	activeChatID       string
	section            model.Section
	overlay            model.Overlay
	subpage            model.SettingsSubpage
	notificationCenter bool
	inChatSearch       bool
	searchQuery        string
	replyingTo         *model.Message

	online  map[string]bool
	typing  map[string]struct{}
	unread  map[string]int
	blocked map[string]struct{}

	call          *call.Session
	callMinimized bool
	viewer        *story.Viewer

	privacy       model.PrivacySettings
	chatSettings  model.ChatSettings
	notifSettings model.NotificationSettings
	permission    push.Permission
	fcmToken      string
	deviceToken   string
}

// Option configures a Store.
type Option func(*Store)

func WithLogger(l *zap.Logger) Option { return func(s *Store) { s.logger = l } }

func WithBus(b *bus.Bus) Option { return func(s *Store) { s.bus = b } }

// WithScheduler shares a scheduler with the caller, who then owns stopping it.
func WithScheduler(sc *sched.Scheduler) Option { return func(s *Store) { s.sched = sc } }

func WithTimings(t config.Timings) Option { return func(s *Store) { s.timings = t } }

// WithNotifier sets the OS-level notifier used once permission is granted.
func WithNotifier(n push.Notifier) Option { return func(s *Store) { s.notifier = n } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// WithSeed loads an initial dataset.
func WithSeed(seed Seed) Option { return func(s *Store) { s.applySeed(seed) } }

// New creates a store. Without options it is empty, logged out, and uses
// the default timings.
func New(opts ...Option) *Store {
	s := &Store{
		timings:       config.DefaultTimings(),
		now:           time.Now,
		me:            model.User{ID: model.Me, Name: "You", Online: true},
		section:       model.SectionChats,
		overlay:       model.OverlayNone,
		subpage:       model.SubpageNone,
		online:        make(map[string]bool),
		typing:        make(map[string]struct{}),
		unread:        make(map[string]int),
		blocked:       make(map[string]struct{}),
		privacy:       model.DefaultPrivacy(),
		chatSettings:  model.DefaultChatSettings(),
		notifSettings: model.DefaultNotificationSettings(),
		permission:    push.PermissionDefault,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.sched == nil {
		s.sched = sched.New(s.logger)
		s.ownSched = true
	}
	s.normalizeTimings()
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

// Close cancels pending timers and in-flight push deliveries.
func (s *Store) Close() {
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()
	if s.ownSched {
		s.sched.Stop()
	} else {
		for _, prefix := range []string{keyMessage, keyTyping, keyCall, keyStory, keyNotification} {
			s.sched.CancelPrefix(prefix)
		}
	}
	s.deliveries.Wait()
}

// Timer key prefixes. Each pending timer is keyed by the entity it mutates.
const (
	keyMessage      = "msg:"
	keyTyping       = "typing:"
	keyCall         = "call:"
	keyStory        = "story:"
	keyNotification = "notification:"
)

func (s *Store) normalizeTimings() {
	d := config.DefaultTimings()
	if s.timings.CallTick <= 0 {
		s.timings.CallTick = d.CallTick
	}
	if s.timings.StoryTick <= 0 {
		s.timings.StoryTick = d.StoryTick
	}
	if s.timings.StoryStep <= 0 {
		s.timings.StoryStep = d.StoryStep
	}
}

func (s *Store) emit(kind string, payload any) {
	s.bus.Emit(kind, payload)
}

func (s *Store) chatLocked(id string) *model.Chat {
	if id == "" {
		return nil
	}
	for _, c := range s.chats {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (s *Store) messageLocked(id string) *model.Message {
	for _, m := range s.messages {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (s *Store) contactLocked(id string) (model.User, bool) {
	for _, u := range s.contacts {
		if u.ID == id {
			return u, true
		}
	}
	return model.User{}, false
}

func (s *Store) groupIndexLocked(id string) int {
	return slices.IndexFunc(s.groups, func(g model.Group) bool { return g.ID == id })
}

// snapshotLocked copies a chat and fills in its derived unread count.
func (s *Store) snapshotLocked(c *model.Chat) model.Chat {
	out := c.Clone()
	out.UnreadCount = s.unread[c.ID]
	return out
}

// lastMessageLocked returns the newest remaining message of a chat.
func (s *Store) lastMessageLocked(chatID string) *model.Message {
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].ChatID == chatID {
			return s.messages[i]
		}
	}
	return nil
}

func (s *Store) ignore(action string, fields ...zap.Field) {
	s.logger.Debug("ignored "+action, fields...)
}
