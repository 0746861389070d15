package store

import (
	"github.com/google/uuid"
	"github.com/matheus3301/guftagu/internal/bus"
	"github.com/matheus3301/guftagu/internal/call"
	"github.com/matheus3301/guftagu/internal/model"
	"go.uber.org/zap"
)

// StartCall places an outgoing call. The session walks through ringing and
// connected on timers; once connected it counts seconds until EndCall.
// A second call while one is active is rejected.
func (s *Store) StartCall(target model.CallTarget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.call != nil && s.call.Active() {
		s.logger.Warn("call already in progress",
			zap.String("active", s.call.Target().Name),
			zap.String("requested", target.Name),
		)
		return call.ErrCallInProgress
	}
	if u, ok := s.contactLocked(target.UserID); ok {
		if target.Name == "" {
			target.Name = u.Name
		}
		if target.Avatar == "" {
			target.Avatar = u.Avatar
		}
	} else if c := s.chatLocked(target.UserID); c != nil && target.Name == "" {
		target.Name = c.Name
		target.Avatar = c.Avatar
	}

	sess := call.Start(target, s.now())
	s.call = sess
	s.callMinimized = false
	s.overlay = model.OverlayCall
	s.logger.Info("call started", zap.String("user_id", target.UserID), zap.String("type", string(sess.Target().Type)))
	s.emitPhaseLocked(call.Idle, sess)

	s.sched.After(keyCall+"ringing", s.timings.CallRinging, func() {
		s.advanceCall(sess, call.Ringing)
	})
	return nil
}

func (s *Store) advanceCall(sess *call.Session, to call.Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.call != sess {
		return
	}
	from := sess.Phase()
	if err := sess.Transition(to, s.now()); err != nil {
		s.logger.Debug("call transition skipped", zap.Error(err))
		return
	}
	s.emitPhaseLocked(from, sess)

	switch to {
	case call.Ringing:
		s.sched.After(keyCall+"connect", s.timings.CallConnect, func() {
			s.advanceCall(sess, call.Connected)
		})
	case call.Connected:
		s.sched.Every(keyCall+"tick", s.timings.CallTick, func() {
			s.tickCall(sess)
		})
	}
}

func (s *Store) tickCall(sess *call.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.call != sess || !sess.Tick() {
		return
	}
	s.emit(bus.CallTick, bus.CallPhaseChange{
		From:    string(sess.Phase()),
		To:      string(sess.Phase()),
		Target:  sess.Target(),
		Elapsed: sess.Elapsed(),
	})
}

// EndCall hangs up the active call, stops its timers and logs it in the
// call history.
func (s *Store) EndCall() (model.Call, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.call
	if sess == nil {
		s.ignore("end call")
		return model.Call{}, false
	}
	s.sched.CancelPrefix(keyCall)
	from := sess.Phase()
	rec, err := sess.End(s.now())
	if err != nil {
		s.logger.Warn("end call", zap.Error(err))
		return model.Call{}, false
	}
	s.call = nil
	s.callMinimized = false
	if s.overlay == model.OverlayCall {
		s.overlay = model.OverlayNone
	}
	s.calls = append([]model.Call{rec}, s.calls...)
	s.logger.Info("call ended", zap.String("user_id", rec.UserID), zap.String("duration", rec.Duration))
	s.emitPhaseLocked(from, sess)
	s.emit(bus.CallLogged, bus.CallEvent{Call: rec})
	return rec, true
}

// SetCallMinimized toggles the floating call bar.
func (s *Store) SetCallMinimized(min bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.call == nil {
		return
	}
	s.callMinimized = min
	if min && s.overlay == model.OverlayCall {
		s.overlay = model.OverlayNone
	} else if !min {
		s.overlay = model.OverlayCall
	}
	s.emitUILocked()
}

// AddCall records a call that happened elsewhere, such as a missed call
// reported by the transport. Missed calls raise a notification.
func (s *Store) AddCall(c model.Call) model.Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.At.IsZero() {
		c.At = now
	}
	if c.Type == "" {
		c.Type = model.CallVoice
	}
	if c.DateLabel == "" {
		c.DateLabel = model.DayLabel(c.At, now)
	}
	if u, ok := s.contactLocked(c.UserID); ok {
		if c.UserName == "" {
			c.UserName = u.Name
		}
		if c.UserAvatar == "" {
			c.UserAvatar = u.Avatar
		}
	}
	s.calls = append([]model.Call{c}, s.calls...)
	s.emit(bus.CallLogged, bus.CallEvent{Call: c})

	if c.Status == model.CallMissed && s.notifSettings.Calls {
		s.addNotificationLocked(model.Notification{
			Type:     model.NotifySystem,
			Title:    c.UserName,
			Body:     "Missed " + string(c.Type) + " call",
			SenderID: c.UserID,
			Avatar:   c.UserAvatar,
		})
	}
	return c
}

func (s *Store) emitPhaseLocked(from call.Phase, sess *call.Session) {
	s.emit(bus.CallPhase, bus.CallPhaseChange{
		From:    string(from),
		To:      string(sess.Phase()),
		Target:  sess.Target(),
		Elapsed: sess.Elapsed(),
	})
}
