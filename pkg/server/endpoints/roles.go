package endpoints

import (
	"net/http"

	"github.com/doodlesbykumbi/dbperm/pkg/permission"
)

// CreateRoleRequest is the body of POST /roles
type CreateRoleRequest struct {
	Name    string           `json:"name"`
	Default *permission.Level `json:"default"`
}

// LevelRequest is the body of PUT .../default and PUT .../overrides/{node}
type LevelRequest struct {
	Level *permission.Level `json:"level"`
}

func (h *handler) handleListRoles(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.svc.Roles())
}

func (h *handler) handleCreateRole(w http.ResponseWriter, r *http.Request) {
	var req CreateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Default == nil {
		respondWithError(w, http.StatusBadRequest, "default is required")
		return
	}
	if err := h.svc.CreateRole(r.Context(), req.Name, *req.Default); err != nil {
		h.fail(w, err)
		return
	}
	role, err := h.svc.Role(req.Name)
	if err != nil {
		h.fail(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, role)
}

func (h *handler) handleShowRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.svc.Role(pathVar(r, "role"))
	if err != nil {
		h.fail(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, role)
}

func (h *handler) handleDeleteRole(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteRole(r.Context(), pathVar(r, "role")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleSetDefault(w http.ResponseWriter, r *http.Request) {
	var req LevelRequest
	if err := decodeJSON(r, &req); err != nil || req.Level == nil {
		respondWithError(w, http.StatusBadRequest, "level is required")
		return
	}
	name := pathVar(r, "role")
	if err := h.svc.SetDefault(r.Context(), name, *req.Level); err != nil {
		h.fail(w, err)
		return
	}
	role, err := h.svc.Role(name)
	if err != nil {
		h.fail(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, role)
}
