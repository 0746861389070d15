package store

import (
	"context"
	"fmt"

	"github.com/matheus3301/guftagu/internal/bus"
	"github.com/matheus3301/guftagu/internal/model"
	"github.com/matheus3301/guftagu/internal/push"
	"go.uber.org/zap"
)

func (s *Store) UpdatePrivacySettings(p model.PrivacyPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.privacy = s.privacy.Merge(p)
	s.emit(bus.SettingsUpdated, "privacy")
}

func (s *Store) UpdateChatSettings(p model.ChatSettingsPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatSettings = s.chatSettings.Merge(p)
	s.emit(bus.SettingsUpdated, "chats")
}

func (s *Store) UpdateNotificationSettings(p model.NotificationPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifSettings = s.notifSettings.Merge(p)
	s.emit(bus.SettingsUpdated, "notifications")
}

// UpdateProfile patches the local user. The user id never changes.
func (s *Store) UpdateProfile(p model.ProfilePatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.me = s.me.Merge(p)
	s.emit(bus.SettingsUpdated, "profile")
}

func (s *Store) SetLoggedIn(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loggedIn = v
	s.emitUILocked()
}

// SetNotificationPermission records the OS permission state. Only granted
// lets notifications through to the notifier.
func (s *Store) SetNotificationPermission(p push.Permission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.permission == p {
		return
	}
	s.logger.Info("notification permission changed", zap.String("from", string(s.permission)), zap.String("to", string(p)))
	s.permission = p
	s.emit(bus.SettingsUpdated, "permission")
}

func (s *Store) SetFCMToken(tok string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fcmToken = tok
	s.emit(bus.SettingsUpdated, "tokens")
}

func (s *Store) SetDeviceToken(tok string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deviceToken = tok
	s.emit(bus.SettingsUpdated, "tokens")
}

// RequestPermission asks the platform for notification permission and, when
// granted, registers the device token. The registrar is called without
// holding the store lock.
func (s *Store) RequestPermission(ctx context.Context, r push.Registrar) (push.Permission, error) {
	p, err := r.RequestPermission(ctx)
	if err != nil {
		return push.PermissionDefault, fmt.Errorf("request permission: %w", err)
	}
	s.SetNotificationPermission(p)
	if p != push.PermissionGranted {
		return p, nil
	}
	tok, err := r.RegisterToken(ctx)
	if err != nil {
		return p, fmt.Errorf("register token: %w", err)
	}
	s.SetDeviceToken(tok)
	return p, nil
}

// SetActiveSection switches the navigation area and closes any overlay.
func (s *Store) SetActiveSection(sec model.Section) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.section = sec
	if s.overlay != model.OverlayCall {
		s.overlay = model.OverlayNone
	}
	if sec != model.SectionSettings {
		s.subpage = model.SubpageNone
	}
	s.emitUILocked()
}

func (s *Store) SetOverlay(o model.Overlay) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o == model.OverlayCall && s.call == nil {
		return
	}
	if o != model.OverlayCall {
		s.closeOverlayLocked()
	}
	s.overlay = o
	s.emitUILocked()
}

// closeOverlayLocked hides the open overlay. A live call whose overlay is
// hidden keeps running in the minimized bar.
func (s *Store) closeOverlayLocked() {
	if s.overlay == model.OverlayCall && s.call != nil {
		s.callMinimized = true
	}
	s.overlay = model.OverlayNone
}

func (s *Store) SetSettingsSubpage(p model.SettingsSubpage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subpage = p
	s.emitUILocked()
}

func (s *Store) emitUILocked() {
	s.emit(bus.UIChanged, s.uiLocked())
}
