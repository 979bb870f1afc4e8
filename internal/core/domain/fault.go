package domain

import (
	"context"
	"errors"
	"net"
)

// FaultKind classifies a failed business operation for presentation purposes.
type FaultKind int

const (
	// FaultGeneric is the default bucket for unclassified failures.
	FaultGeneric FaultKind = iota
	// FaultNetwork covers connectivity and timeout failures.
	FaultNetwork
	// FaultAuth covers authentication and authorization failures.
	FaultAuth
	// FaultValidation covers rejected user input.
	FaultValidation
)

func (k FaultKind) String() string {
	switch k {
	case FaultNetwork:
		return "network"
	case FaultAuth:
		return "auth"
	case FaultValidation:
		return "validation"
	default:
		return "generic"
	}
}

// Fault wraps an error with an explicit presentation classification. Services
// return plain errors; use NewFault only where the default classification in
// Classify would get it wrong.
type Fault struct {
	Kind    FaultKind
	Message string
	Err     error
}

func NewFault(kind FaultKind, message string, err error) *Fault {
	return &Fault{Kind: kind, Message: message, Err: err}
}

func (f *Fault) Error() string {
	if f.Message != "" {
		return f.Message
	}
	if f.Err != nil {
		return f.Err.Error()
	}
	return f.Kind.String() + " fault"
}

func (f *Fault) Unwrap() error { return f.Err }

// Classify maps an error to its FaultKind. Explicit Faults win; known sentinel
// errors classify as auth/validation; net errors and context deadlines as
// network; everything else is generic.
func Classify(err error) FaultKind {
	if err == nil {
		return FaultGeneric
	}

	var fault *Fault
	if errors.As(err, &fault) {
		return fault.Kind
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrNotAuthenticated),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrTokenExpired):
		return FaultAuth
	case errors.Is(err, ErrUserExists):
		return FaultValidation
	case errors.Is(err, context.DeadlineExceeded):
		return FaultNetwork
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return FaultNetwork
	}

	return FaultGeneric
}
