package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"status-viewer/account"
	"status-viewer/session"
)

func (h *handler) signUp(w http.ResponseWriter, r *http.Request) {
	var req account.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if _, err := h.accounts.SignUp(r.Context(), req); err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, account.ErrEmailExists):
			status = http.StatusConflict
		case errors.Is(err, account.ErrPasswordMismatch), errors.Is(err, account.ErrPasswordTooShort):
		default:
			h.log.Error("signup failed", zap.Error(err))
			status = http.StatusInternalServerError
		}
		writeError(w, status, account.UserMessage(err))
		return
	}

	s := sessionFrom(r)
	s.ScheduleScreen(h.signupRedirect, session.ScreenSignin)
	writeJSON(w, http.StatusCreated, message{
		Status:  "success",
		Message: account.MsgSignedUp,
		Screen:  string(s.Screen()),
	})
}

func (h *handler) signIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	acct, err := h.accounts.SignIn(req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, account.UserMessage(err))
		return
	}

	s := sessionFrom(r)
	user := session.User{Username: acct.Username, Email: acct.Email}
	s.SignIn(user)
	s.ScheduleScreen(h.signinRedirect, session.ScreenLanding)
	h.log.Info("signed in", zap.String("session", s.ID), zap.String("email", acct.Email))
	writeJSON(w, http.StatusOK, message{
		Status:  "success",
		Message: account.MsgSignedIn,
		Screen:  string(s.Screen()),
		User:    user,
	})
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	s.SignOut()
	writeJSON(w, http.StatusOK, message{Status: "success", Screen: string(s.Screen())})
}
