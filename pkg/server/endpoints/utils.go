package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/dbperm/pkg/authz"
	"github.com/doodlesbykumbi/dbperm/pkg/permission"
	"github.com/doodlesbykumbi/dbperm/pkg/policy"
)

const maxBodyBytes = 1 << 20

func respondWithError(w http.ResponseWriter, code int, payload interface{}) {
	respondWithJSON(w, code, map[string]interface{}{"error": payload})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, authz.ErrRoleNotFound), errors.Is(err, authz.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, permission.ErrRoleExists):
		return http.StatusConflict
	case errors.Is(err, permission.ErrInvalidLevel),
		errors.Is(err, permission.ErrEmptyRoleName),
		errors.Is(err, permission.ErrEmptyNodeID),
		errors.Is(err, permission.ErrMissingAncestor),
		errors.Is(err, permission.ErrAncestorMismatch),
		errors.Is(err, permission.ErrInvalidKind),
		errors.Is(err, policy.ErrDuplicateRole),
		errors.Is(err, policy.ErrUnknownNode):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) fail(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
		respondWithError(w, code, "internal error")
		return
	}
	respondWithError(w, code, err.Error())
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// pathVar returns an unescaped mux variable.
func pathVar(r *http.Request, name string) string {
	v := mux.Vars(r)[name]
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}
