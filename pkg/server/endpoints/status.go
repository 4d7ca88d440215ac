package endpoints

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/doodlesbykumbi/dbperm/pkg/server"
)

// StatusResponse is returned by GET /
type StatusResponse struct {
	Service     string `json:"service"`
	Version     string `json:"version"`
	Inheritance string `json:"inheritance"`
	Roles       int    `json:"roles"`
	Databases   int    `json:"databases"`
	Tables      int    `json:"tables"`
	Fields      int    `json:"fields"`
}

func (h *handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	dbs, tables, fields := h.svc.Catalog().Counts()
	respondWithJSON(w, http.StatusOK, StatusResponse{
		Service:     "dbperm",
		Version:     server.Version,
		Inheritance: h.svc.Inheritance().String(),
		Roles:       len(h.svc.Roles()),
		Databases:   dbs,
		Tables:      tables,
		Fields:      fields,
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health.CheckConnectivity(r.Context()); err != nil {
			h.logger.Warn("health check failed", zap.Error(err))
			respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.svc.Catalog())
}
