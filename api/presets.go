package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"status-viewer/catalog"
	"status-viewer/preset"
)

type presetEntry struct {
	Index  int                 `json:"index"`
	Name   string              `json:"name"`
	Filter catalog.FilterState `json:"filter"`
}

type presetList struct {
	Revision uint64        `json:"revision"`
	Presets  []presetEntry `json:"presets"`
}

func toPresetList(snap preset.Snapshot) presetList {
	out := presetList{Revision: snap.Revision, Presets: make([]presetEntry, len(snap.Presets))}
	for i, p := range snap.Presets {
		out.Presets[i] = presetEntry{Index: i, Name: p.Name, Filter: p.Filter}
	}
	return out
}

func (h *handler) listPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toPresetList(h.presets.List()))
}

// savePreset stores the session's live filter, or the filter in the body when
// one is given, under the requested name.
func (h *handler) savePreset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string               `json:"name"`
		Filter *catalog.FilterState `json:"filter"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	f := sessionFrom(r).Filter()
	if req.Filter != nil {
		c, err := catalog.ParseCategory(string(req.Filter.Category))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f = catalog.FilterState{Search: req.Filter.Search, Category: c}
	}

	idx, err := h.presets.Save(r.Context(), req.Name, f)
	if err != nil {
		h.countPreset("save", err)
		if errors.Is(err, preset.ErrEmptyName) {
			writeError(w, http.StatusBadRequest, "filter name required")
			return
		}
		h.log.Error("saving filter failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save filter")
		return
	}
	h.countPreset("save", nil)

	snap := h.presets.List()
	writeJSON(w, http.StatusCreated, struct {
		presetEntry
		Revision uint64 `json:"revision"`
	}{presetEntry{Index: idx, Name: req.Name, Filter: f}, snap.Revision})
}

func (h *handler) applyPreset(w http.ResponseWriter, r *http.Request) {
	idx, opts, ok := presetRef(w, r)
	if !ok {
		return
	}
	f, err := h.presets.Apply(idx, opts...)
	h.countPreset("apply", err)
	if err != nil {
		h.presetError(w, err)
		return
	}
	sessionFrom(r).SetFilter(f)
	writeJSON(w, http.StatusOK, h.render(f))
}

// deletePreset only deletes with ?confirm=true; the client is expected to
// have asked the user first.
func (h *handler) deletePreset(w http.ResponseWriter, r *http.Request) {
	idx, opts, ok := presetRef(w, r)
	if !ok {
		return
	}
	decision := preset.Cancelled
	if confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm")); confirmed {
		decision = preset.Confirmed
	}
	err := h.presets.Delete(r.Context(), idx, decision, opts...)
	h.countPreset("delete", err)
	if err != nil {
		h.presetError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPresetList(h.presets.List()))
}

// presetRef parses {index} and the optional ?rev= the list was displayed at.
func presetRef(w http.ResponseWriter, r *http.Request) (int, []preset.RefOption, bool) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid preset index", http.StatusBadRequest)
		return 0, nil, false
	}
	var opts []preset.RefOption
	if raw := r.URL.Query().Get("rev"); raw != "" {
		rev, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			http.Error(w, "invalid revision", http.StatusBadRequest)
			return 0, nil, false
		}
		opts = append(opts, preset.AtRevision(rev))
	}
	return idx, opts, true
}

func (h *handler) presetError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, preset.ErrNotFound):
		http.Error(w, "preset not found", http.StatusNotFound)
	case errors.Is(err, preset.ErrStale):
		http.Error(w, "saved filters changed, reload the list", http.StatusConflict)
	case errors.Is(err, preset.ErrNotConfirmed):
		http.Error(w, "delete must be confirmed", http.StatusPreconditionRequired)
	default:
		h.log.Error("saved filter operation failed", zap.Error(err))
		http.Error(w, "saved filter operation failed", http.StatusInternalServerError)
	}
}

func (h *handler) countPreset(op string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, preset.ErrNotFound), errors.Is(err, preset.ErrStale):
		result = "stale"
	case errors.Is(err, preset.ErrNotConfirmed):
		result = "cancelled"
	case errors.Is(err, preset.ErrEmptyName):
		result = "invalid"
	default:
		result = "error"
	}
	h.metrics.presetOperations.WithLabelValues(op, result).Inc()
}
