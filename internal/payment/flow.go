// Package payment models the confirm-payment overlay and the processor that
// settles a charge.
package payment

import (
	"errors"

	"github.com/shopspring/decimal"
)

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseProcessing Phase = "processing"
	PhaseSucceeded  Phase = "succeeded"
)

var ErrInvalidPhase = errors.New("invalid payment phase")

// Flow is the state of one payment overlay.
type Flow struct {
	Phase  Phase           `json:"phase"`
	Amount decimal.Decimal `json:"amount"`
}

func NewFlow(amount decimal.Decimal) Flow {
	return Flow{Phase: PhaseIdle, Amount: amount}
}

// Confirm moves Idle to Processing.
func (f *Flow) Confirm() error {
	if f.Phase != PhaseIdle {
		return ErrInvalidPhase
	}
	f.Phase = PhaseProcessing
	return nil
}

// Succeed moves Processing to Succeeded.
func (f *Flow) Succeed() error {
	if f.Phase != PhaseProcessing {
		return ErrInvalidPhase
	}
	f.Phase = PhaseSucceeded
	return nil
}

// CanCancel reports whether the overlay may still be dismissed.
func (f Flow) CanCancel() bool {
	return f.Phase == PhaseIdle
}
