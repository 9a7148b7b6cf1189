package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// TransportError covers network failures and non-success responses on
// reads. The affected cache subtree stays empty or stale; nothing here
// is retried automatically.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("upstream: %s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("upstream: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RelayStatus reports 504 for timeouts and 502 otherwise.
func (e *TransportError) RelayStatus() int {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

// Verbatim keeps transport detail generic; there is no upstream message
// worth relaying.
func (e *TransportError) Verbatim() string {
	return "layanan pusat tidak dapat dihubungi"
}

// WriteRejected is an explicit error payload answered to a mutation.
// The upstream message is surfaced to the user verbatim and no local
// state is committed.
type WriteRejected struct {
	Op      string
	Status  int
	Message string
}

func (e *WriteRejected) Error() string {
	return fmt.Sprintf("upstream: %s rejected: %s", e.Op, e.Message)
}

// RelayStatus always answers bad gateway; the caller did nothing wrong
// locally, the authoritative system refused the write.
func (e *WriteRejected) RelayStatus() int { return http.StatusBadGateway }

// Verbatim passes the upstream message through unchanged.
func (e *WriteRejected) Verbatim() string { return e.Message }
