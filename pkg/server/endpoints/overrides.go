package endpoints

import (
	"net/http"

	"github.com/doodlesbykumbi/dbperm/pkg/permission"
)

// OverrideResponse is returned by PUT /roles/{role}/overrides/{node}
type OverrideResponse struct {
	Role    string                `json:"role"`
	Node    permission.Node       `json:"node"`
	Level   permission.Level      `json:"level"`
	Removed []permission.Override `json:"removed"`
}

func (h *handler) handleSetOverride(w http.ResponseWriter, r *http.Request) {
	var req LevelRequest
	if err := decodeJSON(r, &req); err != nil || req.Level == nil {
		respondWithError(w, http.StatusBadRequest, "level is required")
		return
	}
	role, nodeID := pathVar(r, "role"), pathVar(r, "node")
	n, err := h.svc.Node(nodeID)
	if err != nil {
		h.fail(w, err)
		return
	}
	removed, err := h.svc.SetOverride(r.Context(), role, nodeID, *req.Level)
	if err != nil {
		h.fail(w, err)
		return
	}
	if removed == nil {
		removed = []permission.Override{}
	}
	respondWithJSON(w, http.StatusOK, OverrideResponse{Role: role, Node: n, Level: *req.Level, Removed: removed})
}

func (h *handler) handleClearOverride(w http.ResponseWriter, r *http.Request) {
	cleared, err := h.svc.ClearOverride(r.Context(), pathVar(r, "role"), pathVar(r, "node"))
	if err != nil {
		h.fail(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"cleared": cleared})
}
