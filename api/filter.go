package api

import (
	"encoding/json"
	"net/http"

	"status-viewer/catalog"
)

func (h *handler) getFilter(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.render(sessionFrom(r).Filter()))
}

// putFilter changes the search text, the category, or both. Omitted fields
// keep their current value.
func (h *handler) putFilter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Search   *string `json:"search"`
		Category *string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || (req.Search == nil && req.Category == nil) {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s := sessionFrom(r)
	f := s.Filter()
	if req.Search != nil {
		f.Search = *req.Search
	}
	if req.Category != nil {
		c, err := catalog.ParseCategory(*req.Category)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.Category = c
	}
	s.SetFilter(f)
	writeJSON(w, http.StatusOK, h.render(f))
}
