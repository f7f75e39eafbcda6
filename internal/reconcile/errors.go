package reconcile

import (
	"errors"
	"fmt"

	"voting-monitor/internal/contract"
	"voting-monitor/internal/models"
)

// ErrActionsDisabled is returned by every action when no network is bound or no wallet is
// connected. Like a ValidationError it never reaches the network.
var ErrActionsDisabled = errors.New("actions disabled: no supported network or connected wallet")

// ErrNotMounted is returned by Refresh and every action before Mount.
var ErrNotMounted = errors.New("controller not mounted")

// ValidationError is bad local input or a gated action. It never reaches the network.
type ValidationError struct {
	Action models.Action
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Action, e.Reason)
}

// WriteFailure is a transaction the network rejected on submission or that was mined reverted.
type WriteFailure struct {
	Action models.Action
	Err    error
}

func (e *WriteFailure) Error() string {
	return fmt.Sprintf("%s: %v", e.Action, e.Err)
}

func (e *WriteFailure) Unwrap() error { return e.Err }

// ConfirmationFailure is a submitted transaction whose confirmation could not be obtained.
type ConfirmationFailure struct {
	Action models.Action
	Err    error
}

func (e *ConfirmationFailure) Error() string {
	return fmt.Sprintf("%s: confirmation: %v", e.Action, e.Err)
}

func (e *ConfirmationFailure) Unwrap() error { return e.Err }

// FailureMessage is the single line shown to the user for a failed action: a decoded revert
// reason when the error carries one, the raw failure text otherwise.
func FailureMessage(err error) string {
	if err == nil {
		return ""
	}
	if reason, ok := contract.RevertReason(err); ok {
		return reason
	}
	var (
		wf *WriteFailure
		cf *ConfirmationFailure
	)
	switch {
	case errors.As(err, &wf):
		return wf.Err.Error()
	case errors.As(err, &cf):
		return cf.Err.Error()
	}
	return err.Error()
}

func isRevert(err error) bool {
	return errors.Is(err, contract.ErrReverted)
}
