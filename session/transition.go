package session

import (
	"time"
)

// Navigate moves to screen to immediately, cancelling any pending transition.
// The landing screen requires a signed-in user.
func (s *Session) Navigate(to Screen) error {
	if _, err := ParseScreen(string(to)); err != nil {
		return err
	}
	s.mu.Lock()
	if to == ScreenLanding && s.user == nil {
		s.mu.Unlock()
		return ErrSignInRequired
	}
	s.cancelPendingLocked()
	s.screen = to
	s.lastActive = time.Now()
	ev := Event{Type: "screen", Screen: to, Filter: s.filter}
	s.mu.Unlock()
	s.emit(ev)
	return nil
}

// ScheduleScreen moves to screen to after delay. Scheduling again, navigating,
// signing out or ending the session cancels it.
func (s *Session) ScheduleScreen(delay time.Duration, to Screen) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.cancelPendingLocked()
	gen := s.gen
	s.pending = time.AfterFunc(delay, func() { s.fire(gen, to) })
}

// Pending reports whether a scheduled transition has not fired yet.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// fire runs a scheduled transition unless it has been superseded since.
func (s *Session) fire(gen uint64, to Screen) {
	s.mu.Lock()
	if s.ended || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	if to == ScreenLanding && s.user == nil {
		s.mu.Unlock()
		return
	}
	s.screen = to
	ev := Event{Type: "screen", Screen: to, Filter: s.filter}
	s.mu.Unlock()
	s.emit(ev)
}

// cancelPendingLocked stops the pending timer and invalidates its callback in
// case it is already running. Caller must hold s.mu.
func (s *Session) cancelPendingLocked() {
	s.gen++
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}

// end marks the session finished and releases its timer.
func (s *Session) end() {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.ended = true
	s.cancelPendingLocked()
	s.mu.Unlock()
	close(s.done)
}
