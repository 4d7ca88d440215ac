package endpoints

import (
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/dbperm/pkg/authz"
	"github.com/doodlesbykumbi/dbperm/pkg/server"
	"github.com/doodlesbykumbi/dbperm/pkg/store"
)

type handler struct {
	svc    *authz.Service
	health store.HealthStore
	logger *zap.Logger
}

// RegisterAll registers every dbperm endpoint on the server's router.
func RegisterAll(s *server.Server) {
	h := &handler{svc: s.Authz, health: s.HealthStore, logger: s.Logger}

	// Unauthenticated
	s.Router.HandleFunc("/", h.handleStatus).Methods("GET")
	s.Router.HandleFunc("/health", h.handleHealth).Methods("GET")

	api := s.Protected()
	api.HandleFunc("/catalog", h.handleCatalog).Methods("GET")

	api.HandleFunc("/roles", h.handleListRoles).Methods("GET")
	api.HandleFunc("/roles", h.handleCreateRole).Methods("POST")
	api.HandleFunc("/roles/{role}", h.handleShowRole).Methods("GET")
	api.HandleFunc("/roles/{role}", h.handleDeleteRole).Methods("DELETE")
	api.HandleFunc("/roles/{role}/default", h.handleSetDefault).Methods("PUT")

	api.HandleFunc("/roles/{role}/matrix", h.handleMatrix).Methods("GET")
	api.HandleFunc("/roles/{role}/resolve/{node}", h.handleResolve).Methods("GET")
	api.HandleFunc("/roles/{role}/check/{node}", h.handleCheck).Methods("GET")

	api.HandleFunc("/roles/{role}/overrides/{node}", h.handleSetOverride).Methods("PUT")
	api.HandleFunc("/roles/{role}/overrides/{node}", h.handleClearOverride).Methods("DELETE")
}
