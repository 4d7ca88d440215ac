package endpoints

import (
	"bytes"
	"net/http"

	"github.com/doodlesbykumbi/dbperm/pkg/permission"
	"github.com/doodlesbykumbi/dbperm/pkg/report"
)

// ResolveResponse is returned by GET /roles/{role}/resolve/{node}
type ResolveResponse struct {
	Role string          `json:"role"`
	Node permission.Node `json:"node"`
	permission.Resolution
}

// CheckResponse is returned by GET /roles/{role}/check/{node}
type CheckResponse struct {
	Role      string           `json:"role"`
	Node      permission.Node  `json:"node"`
	Privilege permission.Level `json:"privilege"`
	Effective permission.Level `json:"effective"`
	Allowed   bool             `json:"allowed"`
}

// handleMatrix serves JSON by default; ?format=text|markdown|html renders a
// report.
func (h *handler) handleMatrix(w http.ResponseWriter, r *http.Request) {
	name := pathVar(r, "role")
	entries, err := h.svc.Matrix(r.Context(), name)
	if err != nil {
		h.fail(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" || format == "json" {
		respondWithJSON(w, http.StatusOK, entries)
		return
	}
	f, err := report.ParseFormat(format)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	role, err := h.svc.Role(name)
	if err != nil {
		h.fail(w, err)
		return
	}
	var buf bytes.Buffer
	if err := (report.Report{Role: role, Entries: entries}).Render(&buf, f); err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	role, nodeID := pathVar(r, "role"), pathVar(r, "node")
	n, err := h.svc.Node(nodeID)
	if err != nil {
		h.fail(w, err)
		return
	}
	res, err := h.svc.Explain(r.Context(), role, nodeID)
	if err != nil {
		h.fail(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ResolveResponse{Role: role, Node: n, Resolution: res})
}

// handleCheck answers 200 when the role holds the privilege and 403 when it
// does not. The body is the same either way.
func (h *handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	role, nodeID := pathVar(r, "role"), pathVar(r, "node")
	privilege, err := permission.ParseLevel(r.URL.Query().Get("privilege"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "privilege must be one of none, read, write, delete")
		return
	}
	n, err := h.svc.Node(nodeID)
	if err != nil {
		h.fail(w, err)
		return
	}
	d, err := h.svc.Check(r.Context(), role, nodeID, privilege)
	if err != nil {
		h.fail(w, err)
		return
	}
	code := http.StatusOK
	if !d.Allowed {
		code = http.StatusForbidden
	}
	respondWithJSON(w, code, CheckResponse{
		Role:      role,
		Node:      n,
		Privilege: privilege,
		Effective: d.Resolution.Level,
		Allowed:   d.Allowed,
	})
}
