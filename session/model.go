package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"status-viewer/catalog"
)

// Screen is the view a client is currently showing.
type Screen string

const (
	ScreenSignup  Screen = "signup"
	ScreenSignin  Screen = "signin"
	ScreenLanding Screen = "landing"
)

var (
	ErrUnknownScreen  = errors.New("unknown screen")
	ErrSignInRequired = errors.New("sign in required")
)

// ParseScreen validates a screen name.
func ParseScreen(s string) (Screen, error) {
	switch Screen(s) {
	case ScreenSignup, ScreenSignin, ScreenLanding:
		return Screen(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScreen, s)
}

// User is the signed-in identity of a session.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Event is pushed to the connected client whenever the session changes.
type Event struct {
	Type   string              `json:"type"` // "screen" or "filter"
	Screen Screen              `json:"screen,omitempty"`
	Filter catalog.FilterState `json:"filter"`
}

// Info is a point-in-time copy of a session for listing.
type Info struct {
	ID         string              `json:"id"`
	CreatedAt  time.Time           `json:"created_at"`
	LastActive time.Time           `json:"last_active"`
	Connected  bool                `json:"connected"`
	Screen     Screen              `json:"screen"`
	User       *User               `json:"user,omitempty"`
	Filter     catalog.FilterState `json:"filter"`
}

// Session holds the state of one client: the visible screen, the signed-in
// user and the live filter.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	lastActive time.Time
	screen     Screen
	user       *User
	filter     catalog.FilterState
	gen        uint64 // bumped whenever a pending transition is superseded
	pending    *time.Timer
	ended      bool

	outMu     sync.Mutex
	outChan   chan Event
	kickChan  chan struct{}
	connected bool
	done      chan struct{}
}

func newSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		CreatedAt:  now,
		lastActive: now,
		screen:     ScreenSignup,
		filter:     catalog.DefaultFilter(),
		done:       make(chan struct{}),
	}
}

// Info returns a snapshot of the session.
func (s *Session) Info() Info {
	s.mu.Lock()
	info := Info{
		ID:         s.ID,
		CreatedAt:  s.CreatedAt,
		LastActive: s.lastActive,
		Screen:     s.screen,
		Filter:     s.filter,
	}
	if s.user != nil {
		u := *s.user
		info.User = &u
	}
	s.mu.Unlock()

	s.outMu.Lock()
	info.Connected = s.connected
	s.outMu.Unlock()
	return info
}

func (s *Session) Screen() Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen
}

// User returns the signed-in user, if any.
func (s *Session) User() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// Filter returns a copy of the live filter.
func (s *Session) Filter() catalog.FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// SetFilter replaces the live filter.
func (s *Session) SetFilter(f catalog.FilterState) {
	s.updateFilter(func(cur *catalog.FilterState) { *cur = f })
}

// SetSearch changes only the search text.
func (s *Session) SetSearch(search string) catalog.FilterState {
	return s.updateFilter(func(cur *catalog.FilterState) { cur.Search = search })
}

// SetCategory changes only the category.
func (s *Session) SetCategory(c catalog.Category) catalog.FilterState {
	return s.updateFilter(func(cur *catalog.FilterState) { cur.Category = c })
}

func (s *Session) updateFilter(fn func(*catalog.FilterState)) catalog.FilterState {
	s.mu.Lock()
	fn(&s.filter)
	s.lastActive = time.Now()
	f := s.filter
	s.mu.Unlock()
	s.emit(Event{Type: "filter", Filter: f})
	return f
}

// SignIn records u as the session's user. The screen is left alone; callers
// schedule the move to the landing screen.
func (s *Session) SignIn(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &u
	s.lastActive = time.Now()
}

// SignOut forgets the user, drops any pending transition and returns to the
// signin screen. The live filter is kept.
func (s *Session) SignOut() {
	s.mu.Lock()
	s.cancelPendingLocked()
	s.user = nil
	s.screen = ScreenSignin
	s.lastActive = time.Now()
	ev := Event{Type: "screen", Screen: s.screen, Filter: s.filter}
	s.mu.Unlock()
	s.emit(ev)
}

// SetClient registers a channel to receive session events. If a previous
// client is connected it is kicked: its kick channel is closed so the
// WebSocket handler can detect the displacement and close that connection.
// Returns a kick channel that will be closed if this client is itself later
// displaced.
func (s *Session) SetClient(ch chan Event) <-chan struct{} {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	if s.kickChan != nil {
		close(s.kickChan)
	}
	kick := make(chan struct{})
	s.kickChan = kick
	s.outChan = ch
	s.connected = true
	return kick
}

// ClearClient is called when a connection ends. It only updates session state
// if ch is still the current owner (guards against a displaced connection
// clearing a newer one). It always closes ch so the pump goroutine exits.
func (s *Session) ClearClient(ch chan Event) {
	s.outMu.Lock()
	if s.outChan == ch {
		s.outChan = nil
		s.connected = false
		s.kickChan = nil
	}
	s.outMu.Unlock()
	close(ch)
}

// Connected reports whether a client is attached.
func (s *Session) Connected() bool {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	return s.connected
}

// Done returns a channel that is closed when the session ends.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// emit delivers ev to the connected client without blocking.
func (s *Session) emit(ev Event) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	if s.outChan == nil {
		return
	}
	select {
	case s.outChan <- ev:
	default:
	}
}
