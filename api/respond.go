package api

import (
	"encoding/json"
	"net/http"

	"status-viewer/catalog"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// message is the body of signup, signin and logout responses. Status is
// "success" or "error" and doubles as the CSS class of the message.
type message struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Screen  string `json:"screen,omitempty"`
	User    any    `json:"user,omitempty"`
}

func writeError(w http.ResponseWriter, status int, text string) {
	writeJSON(w, status, message{Status: "error", Message: text})
}

// render evaluates the filter against the catalog and records it. Categories
// that did not come through ParseCategory, such as ones read back from
// storage, are counted as "invalid".
func (h *handler) render(f catalog.FilterState) catalog.View {
	label := "invalid"
	if c, err := catalog.ParseCategory(string(f.Category)); err == nil {
		label = string(c)
	}
	h.metrics.filterEvaluations.WithLabelValues(label).Inc()
	return catalog.Render(f)
}
