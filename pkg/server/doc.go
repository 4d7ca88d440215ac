// Package server provides the HTTP server for the dbperm API.
//
// It uses gorilla/mux for routing, gorilla/handlers for the access log and
// the middleware subpackage for bearer-token authentication and request
// ids.
//
// # Server Setup
//
//	srv := server.NewServer(svc, healthStore, "0.0.0.0", "8080", server.WithAuthSecret(secret))
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Endpoints
//
// The endpoints subpackage registers:
//
//   - / and /health - status and store connectivity (no auth)
//   - /catalog - the database/table/field tree
//   - /roles/{role} - role records, defaults and overrides
//   - /roles/{role}/matrix - effective levels for every catalog node
//   - /roles/{role}/resolve/{node} and /roles/{role}/check/{node}
package server
