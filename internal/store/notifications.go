package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/matheus3301/guftagu/internal/bus"
	"github.com/matheus3301/guftagu/internal/model"
	"github.com/matheus3301/guftagu/internal/push"
	"go.uber.org/zap"
)

const deliverTimeout = 10 * time.Second

// AddInAppNotification prepends a notification to the feed. Missing ids and
// timestamps are filled in. With notification permission granted it is
// also handed to the OS notifier in the background.
func (s *Store) AddInAppNotification(n model.Notification) model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addNotificationLocked(n)
}

func (s *Store) addNotificationLocked(n model.Notification) model.Notification {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.At.IsZero() {
		n.At = s.now()
	}
	if n.Type == "" {
		n.Type = model.NotifySystem
	}
	n.Read = false
	s.notifications = append([]model.Notification{n}, s.notifications...)
	s.emit(bus.NotificationAdded, bus.NotificationEvent{Notification: n, Unread: s.unreadNotificationsLocked()})

	if d := s.timings.NotificationDismiss; d > 0 {
		id := n.ID
		s.sched.After(keyNotification+id, d, func() { s.MarkNotificationAsRead(id) })
	}
	if s.permission == push.PermissionGranted && s.notifier != nil {
		s.deliverAsync(n)
	}
	return n
}

func (s *Store) deliverAsync(n model.Notification) {
	if s.ctx.Err() != nil {
		return
	}
	notifier, logger := s.notifier, s.logger
	s.deliveries.Add(1)
	go func() {
		defer s.deliveries.Done()
		ctx, cancel := context.WithTimeout(s.ctx, deliverTimeout)
		defer cancel()
		if err := notifier.Deliver(ctx, n); err != nil {
			logger.Warn("push delivery failed", zap.String("notification_id", n.ID), zap.Error(err))
		}
	}()
}

// MarkNotificationAsRead marks one notification read.
func (s *Store) MarkNotificationAsRead(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		n := &s.notifications[i]
		if n.ID != id {
			continue
		}
		s.sched.Cancel(keyNotification + id)
		if !n.Read {
			n.Read = true
			s.emit(bus.NotificationRead, bus.NotificationEvent{Notification: *n, Unread: s.unreadNotificationsLocked()})
		}
		return
	}
}

func (s *Store) MarkAllNotificationsAsRead() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sched.CancelPrefix(keyNotification)
	changed := false
	for i := range s.notifications {
		if !s.notifications[i].Read {
			s.notifications[i].Read = true
			changed = true
		}
	}
	if changed {
		s.emit(bus.NotificationRead, bus.NotificationEvent{})
	}
}

func (s *Store) ClearNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sched.CancelPrefix(keyNotification)
	if len(s.notifications) == 0 {
		return
	}
	s.notifications = nil
	s.emit(bus.NotificationCleared, bus.NotificationEvent{})
}

// ToggleNotificationCenter opens or closes the notification panel.
func (s *Store) ToggleNotificationCenter() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notificationCenter = !s.notificationCenter
	s.emitUILocked()
}

func (s *Store) unreadNotificationsLocked() int {
	n := 0
	for _, x := range s.notifications {
		if !x.Read {
			n++
		}
	}
	return n
}
