package tracking

import (
	"github.com/zumar-garment/zumar-orderdesk/internal/platform/httpx"
)

// ValidationError is a locally detected input problem.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == httpx.ErrValidation }

// NotFoundError means no order carries the requested number.
type NotFoundError struct {
	Number string
}

func (e *NotFoundError) Error() string { return "order " + e.Number + " tidak ditemukan" }

func (e *NotFoundError) Is(target error) bool { return target == httpx.ErrNotFound }
