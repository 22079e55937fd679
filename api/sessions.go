package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"status-viewer/session"
)

func (h *handler) listSessions(w http.ResponseWriter, r *http.Request) {
	list := h.sessions.List()
	infos := make([]session.Info, len(list))
	for i, s := range list {
		infos[i] = s.Info()
	}
	writeJSON(w, http.StatusOK, infos)
}

func (h *handler) createSession(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create()
	h.metrics.sessionsActive.Set(float64(h.sessions.Count()))
	writeJSON(w, http.StatusCreated, s.Info())
}

func (h *handler) getSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r).Info())
}

func (h *handler) endSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.End(chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to end session", http.StatusInternalServerError)
		return
	}
	h.metrics.sessionsActive.Set(float64(h.sessions.Count()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) navigate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Screen string `json:"screen"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	screen, err := session.ParseScreen(req.Screen)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s := sessionFrom(r)
	if err := s.Navigate(screen); err != nil {
		if errors.Is(err, session.ErrSignInRequired) {
			http.Error(w, "sign in required", http.StatusUnauthorized)
			return
		}
		http.Error(w, "failed to navigate", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, s.Info())
}
