package state

import (
	"github.com/persome/account-system/internal/core/domain"
)

// Messages shown by the default error policy. Kept as variables so an
// embedding app can localize them at startup.
var (
	MsgNetworkError = "Network error. Check your connection and try again."
	MsgAuthError    = "Your session has expired. Please sign in again."
	MsgGenericError = "Something went wrong. Please try again."
)

// ResultOptions tunes HandleResult's failure path.
type ResultOptions struct {
	// OnError receives the user-facing message instead of the default policy
	// when Custom is set.
	OnError func(message string)
	// Custom opts out of the default snackbar/navigation policy.
	Custom bool
}

// HandleResult classifies the outcome of a business operation and routes it.
// Success invokes onSuccess with the value. Failures follow the default
// policy — an error snackbar, plus a forced navigation to sign-in for auth
// faults — unless opts opts into custom handling.
func HandleResult[S, T any](c *Container[S], value T, err error, onSuccess func(T), opts ...ResultOptions) {
	if err == nil {
		onSuccess(value)
		return
	}

	kind := domain.Classify(err)
	c.log.Warn().Err(err).Str("kind", kind.String()).Msg("operation result failed")

	var opt ResultOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.Custom && opt.OnError != nil {
		opt.OnError(messageFor(kind, err))
		return
	}

	switch kind {
	case domain.FaultNetwork:
		c.EmitEvent(Snackbar{Message: MsgNetworkError, IsError: true})
	case domain.FaultAuth:
		c.EmitEvent(Snackbar{Message: MsgAuthError, IsError: true})
		c.EmitEvent(NavigateToSignIn{})
	default:
		c.EmitEvent(Snackbar{Message: messageFor(kind, err), IsError: true})
	}
}

func messageFor(kind domain.FaultKind, err error) string {
	switch kind {
	case domain.FaultNetwork:
		return MsgNetworkError
	case domain.FaultAuth:
		return MsgAuthError
	case domain.FaultValidation:
		return err.Error()
	default:
		return MsgGenericError
	}
}
