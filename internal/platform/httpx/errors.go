package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrValidation    = errors.New("validation failed")
	ErrStateConflict = errors.New("state conflict")
	ErrBusy          = errors.New("operation already in flight")
)

// UpstreamError is implemented by errors coming back from the remote
// garment API so handlers can relay them without importing the client.
type UpstreamError interface {
	error
	// RelayStatus is the HTTP status orderdesk answers with (502/504).
	RelayStatus() int
	// Verbatim is the user-facing detail, passed through unchanged.
	Verbatim() string
}

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	var ue UpstreamError
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrStateConflict):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrBusy):
		Problem(w, http.StatusConflict, "Busy", err.Error())
	case errors.As(err, &ue):
		Problem(w, ue.RelayStatus(), "Upstream Error", ue.Verbatim())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
