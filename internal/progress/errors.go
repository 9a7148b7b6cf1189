package progress

import (
	"github.com/zumar-garment/zumar-orderdesk/internal/platform/httpx"
)

// ValidationError is a local, user-correctable input problem. Raised
// before any network call.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Is lets handlers map these onto the shared validation sentinel.
func (e *ValidationError) Is(target error) bool { return target == httpx.ErrValidation }

// StateError rejects a mutation attempted outside the required order
// state, fail-fast with no server round-trip.
type StateError struct {
	Msg string
}

func (e *StateError) Error() string { return e.Msg }

func (e *StateError) Is(target error) bool { return target == httpx.ErrStateConflict }

// errBusy rejects overlapping mutations; the caller serializes via UI
// disablement and re-triggers.
type busyError struct{}

func (busyError) Error() string { return "masih ada operasi yang sedang berjalan" }

func (busyError) Is(target error) bool { return target == httpx.ErrBusy }

func validationf(msg string) error { return &ValidationError{Msg: msg} }
