package service

import (
	"errors"
	"fmt"
	"strings"

	"polopay_backend/internals/features/billing/gateway"
)

// ValidationError carries every violated rule; nothing was sent or stored.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

func invalid(msgs ...string) *ValidationError {
	return &ValidationError{Errors: msgs}
}

// GatewayError: the remote call failed or answered in an unexpected shape.
// No local state was written.
type GatewayError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *GatewayError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("payment gateway %s failed (%d): %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("payment gateway %s failed: %s", e.Op, e.Message)
}

func (e *GatewayError) Unwrap() error { return e.Err }

func wrapGateway(op string, err error) *GatewayError {
	ge := &GatewayError{Op: op, Message: err.Error(), Err: err}
	var ce *gateway.Error
	if errors.As(err, &ce) {
		ge.StatusCode = ce.StatusCode
		ge.Message = ce.Message
	}
	return ge
}

// PersistenceWarning: the gateway accepted the plan but the local copy could
// not be written. It rides on a successful result and is never returned as
// the operation's error.
type PersistenceWarning struct {
	PlanID string
	Err    error
}

func (w *PersistenceWarning) Error() string {
	return fmt.Sprintf("plan %s created at gateway but not stored locally: %v", w.PlanID, w.Err)
}

func (w *PersistenceWarning) Unwrap() error { return w.Err }

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ErrNoPaymentsFromGateway is returned by sync when the gateway lists nothing.
var ErrNoPaymentsFromGateway = errors.New("gateway returned no payments for plan")
