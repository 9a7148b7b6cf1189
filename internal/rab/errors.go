package rab

import (
	"github.com/zumar-garment/zumar-orderdesk/internal/platform/httpx"
)

// ValidationError is a locally detected input problem.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == httpx.ErrValidation }
