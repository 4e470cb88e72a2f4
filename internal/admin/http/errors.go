package http

import (
	"errors"
	"net/http"

	"github.com/userdesk/userdesk/internal/admin/domain"
	"github.com/userdesk/userdesk/pkg/httpx"
	"github.com/userdesk/userdesk/pkg/slogx"
)

// ErrorResponse is the uniform error body for every non-2xx response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// writeError renders a core error onto the wire:
//
//	domain.ErrAuth        -> 401
//	domain.ErrPermission  -> 403
//	domain.ErrNotFound    -> 404
//	domain.ErrConflict    -> 400
//	domain.ValidationError -> 422
//
// Anything else is a 500 with a generic body; the cause only goes to the log.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError

	switch {
	case errors.Is(err, domain.ErrAuth):
		httpx.WriteBearerError(w, domain.ErrAuth.Error())
	case errors.Is(err, domain.ErrPermission):
		httpx.WriteJSON(w, http.StatusForbidden, ErrorResponse{Detail: domain.ErrPermission.Error()})
	case errors.Is(err, domain.ErrNotFound):
		httpx.WriteJSON(w, http.StatusNotFound, ErrorResponse{Detail: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
	case errors.As(err, &ve):
		httpx.WriteJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Detail: ve.Error()})
	default:
		slogx.FromContext(r.Context()).Error("unhandled error", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: "internal server error"})
	}
}

func writeBadRequest(w http.ResponseWriter, detail string) {
	httpx.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Detail: detail})
}
