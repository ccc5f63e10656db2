package payment

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Charge struct {
	SessionID string
	Amount    decimal.Decimal
}

// Callbacks are invoked by a Processor as the charge progresses. Succeeded
// fires once the charge is accepted, Completed once the customer may be
// returned to the queue screen.
type Callbacks struct {
	Succeeded func()
	Completed func()
}

type Processor interface {
	Charge(ctx context.Context, charge Charge, cb Callbacks) error
}

// SimulatedProcessor accepts every charge after fixed delays. It stands in for
// a real payment integration.
type SimulatedProcessor struct {
	ProcessingDelay time.Duration
	CompletionDelay time.Duration

	afterFunc func(time.Duration, func())
}

func NewSimulatedProcessor(processing, completion time.Duration) *SimulatedProcessor {
	return &SimulatedProcessor{
		ProcessingDelay: processing,
		CompletionDelay: completion,
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

func (p *SimulatedProcessor) Charge(_ context.Context, charge Charge, cb Callbacks) error {
	if charge.Amount.IsNegative() {
		return errors.New("charge amount must not be negative")
	}
	if cb.Succeeded == nil || cb.Completed == nil {
		return errors.New("both payment callbacks are required")
	}

	// The request context ends with the HTTP request; timers outlive it.
	p.afterFunc(p.ProcessingDelay, func() {
		cb.Succeeded()
		p.afterFunc(p.CompletionDelay, cb.Completed)
	})
	return nil
}
