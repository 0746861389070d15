package call

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/matheus3301/guftagu/internal/model"
)

// Phase is the state of an outgoing call.
type Phase string

const (
	Idle      Phase = "IDLE"
	Calling   Phase = "CALLING"
	Ringing   Phase = "RINGING"
	Connected Phase = "CONNECTED"
	Ended     Phase = "ENDED"
)

// validTransitions defines allowed phase transitions.
var validTransitions = map[Phase][]Phase{
	Idle:      {Calling},
	Calling:   {Ringing, Ended},
	Ringing:   {Connected, Ended},
	Connected: {Ended},
	Ended:     {},
}

// ErrCallInProgress is returned when a call is started while another is active.
var ErrCallInProgress = errors.New("a call is already in progress")

// TransitionError reports a rejected phase change.
type TransitionError struct {
	From Phase
	To   Phase
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid call transition from %s to %s", e.From, e.To)
}

// Session tracks one outgoing call from dialing to hang-up.
// It is not safe for concurrent use; the conversation store serializes access.
type Session struct {
	target      model.CallTarget
	phase       Phase
	startedAt   time.Time
	connectedAt time.Time
	elapsed     int
	reached     bool
}

// Start opens a session in the Calling phase.
func Start(target model.CallTarget, now time.Time) *Session {
	if target.Type == "" {
		target.Type = model.CallVoice
	}
	return &Session{target: target, phase: Calling, startedAt: now}
}

// Target returns who is being called.
func (s *Session) Target() model.CallTarget { return s.target }

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.phase }

// Elapsed returns the connected seconds counted by Tick.
func (s *Session) Elapsed() int { return s.elapsed }

// Active reports whether the call has not ended yet.
func (s *Session) Active() bool {
	return s.phase != Ended && s.phase != Idle
}

// Transition moves to the given phase. Returns *TransitionError if not allowed.
func (s *Session) Transition(to Phase, now time.Time) error {
	if !slices.Contains(validTransitions[s.phase], to) {
		return &TransitionError{From: s.phase, To: to}
	}
	s.phase = to
	if to == Connected {
		s.reached = true
		s.connectedAt = now
	}
	return nil
}

// Tick advances the elapsed counter by one second while connected.
func (s *Session) Tick() bool {
	if s.phase != Connected {
		return false
	}
	s.elapsed++
	return true
}

// End hangs up and returns the history record for the call. The duration is
// only set if the call was ever connected.
func (s *Session) End(now time.Time) (model.Call, error) {
	if err := s.Transition(Ended, now); err != nil {
		return model.Call{}, err
	}
	rec := model.Call{
		ID:         uuid.NewString(),
		UserID:     s.target.UserID,
		UserName:   s.target.Name,
		UserAvatar: s.target.Avatar,
		Type:       s.target.Type,
		Status:     model.CallOutgoing,
		At:         now,
		DateLabel:  "Today",
	}
	if s.reached {
		rec.Duration = FormatDuration(s.elapsed)
	}
	return rec, nil
}

// FormatDuration renders seconds as mm:ss.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
