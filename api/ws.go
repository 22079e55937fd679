package api

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"status-viewer/catalog"
	"status-viewer/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsMessage is used in both directions.
//
// Client to server: "search" and "category" (Data), "filter" (Filter),
// "navigate" (Screen).
// Server to client: "state" on connect, "screen", "results", "error", "closed".
type wsMessage struct {
	Type   string               `json:"type"`
	Data   string               `json:"data,omitempty"`
	Screen session.Screen       `json:"screen,omitempty"`
	Filter *catalog.FilterState `json:"filter,omitempty"`
	User   *session.User        `json:"user,omitempty"`
	View   *catalog.View        `json:"view,omitempty"`
}

func (h *handler) handleWS(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("WS upgrade error", zap.Error(err))
		return
	}
	defer conn.Close()

	// Serialise all WebSocket writes; gorilla/websocket forbids concurrent writes.
	var writeMu sync.Mutex
	writeMsg := func(msg wsMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(msg)
	}

	outChan := make(chan session.Event, 64)
	kick := s.SetClient(outChan) // kicks any prior client
	defer s.ClearClient(outChan) // closes outChan + clears session state if still owner

	if err := writeMsg(h.stateMessage(s)); err != nil {
		h.log.Debug("WS state write error", zap.Error(err))
		return
	}

	// Goroutine: pump session events to the client.
	// Exits when ClearClient closes outChan.
	go func() {
		for ev := range outChan {
			if err := writeMsg(h.eventMessage(s, ev)); err != nil {
				return
			}
		}
	}()

	// Goroutine: watch for session end or displacement and close the connection
	// so ReadJSON below unblocks immediately.
	connDone := make(chan struct{})
	go func() {
		select {
		case <-s.Done():
			writeMsg(wsMessage{Type: "closed"}) //nolint:errcheck
			conn.Close()
		case <-kick:
			// Displaced by a newer connection; close without a "closed" message.
			conn.Close()
		case <-connDone:
		}
	}()
	defer close(connDone)

	// Main loop: read client messages.
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			// Client disconnected, or conn was closed by the watcher above.
			// Either way the session keeps running.
			return
		}
		if reply, ok := h.handleClientMessage(s, msg); ok {
			if err := writeMsg(reply); err != nil {
				return
			}
		}
	}
}

// handleClientMessage applies one client message to the session. Changes are
// echoed back through the session's event stream; the returned message, if
// any, is an immediate error reply.
func (h *handler) handleClientMessage(s *session.Session, msg wsMessage) (wsMessage, bool) {
	switch msg.Type {
	case "navigate":
		if err := s.Navigate(msg.Screen); err != nil {
			return wsMessage{Type: "error", Data: err.Error()}, true
		}
		return wsMessage{}, false
	case "search", "category", "filter":
	default:
		return wsMessage{Type: "error", Data: "unknown message type " + msg.Type}, true
	}

	if _, ok := s.User(); !ok {
		return wsMessage{Type: "error", Data: session.ErrSignInRequired.Error()}, true
	}
	switch msg.Type {
	case "search":
		s.SetSearch(msg.Data)
	case "category":
		c, err := catalog.ParseCategory(msg.Data)
		if err != nil {
			return wsMessage{Type: "error", Data: err.Error()}, true
		}
		s.SetCategory(c)
	case "filter":
		if msg.Filter == nil {
			return wsMessage{Type: "error", Data: "filter missing"}, true
		}
		c, err := catalog.ParseCategory(string(msg.Filter.Category))
		if err != nil {
			return wsMessage{Type: "error", Data: err.Error()}, true
		}
		s.SetFilter(catalog.FilterState{Search: msg.Filter.Search, Category: c})
	}
	return wsMessage{}, false
}

// stateMessage describes the whole session; results are only included for a
// signed-in user.
func (h *handler) stateMessage(s *session.Session) wsMessage {
	info := s.Info()
	msg := wsMessage{Type: "state", Screen: info.Screen, Filter: &info.Filter, User: info.User}
	if info.User != nil {
		v := h.render(info.Filter)
		msg.View = &v
	}
	return msg
}

func (h *handler) eventMessage(s *session.Session, ev session.Event) wsMessage {
	f := ev.Filter
	_, signedIn := s.User()
	switch ev.Type {
	case "screen":
		msg := wsMessage{Type: "screen", Screen: ev.Screen, Filter: &f}
		if ev.Screen == session.ScreenLanding && signedIn {
			v := h.render(f)
			msg.View = &v
		}
		return msg
	default:
		msg := wsMessage{Type: "results", Filter: &f}
		if signedIn {
			v := h.render(f)
			msg.View = &v
		}
		return msg
	}
}
