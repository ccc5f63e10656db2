package controller

import (
	"context"
	"fmt"
	"time"

	"barber-queue/internal/models"
	"barber-queue/internal/payment"

	"github.com/shopspring/decimal"
)

// State is everything the controller remembers about one browser session.
type State struct {
	SessionID      string               `json:"session_id"`
	Screen         models.Screen        `json:"screen"`
	Identity       *models.Identity     `json:"identity,omitempty"`
	Profile        *models.Profile      `json:"profile,omitempty"`
	Service        *models.Service      `json:"service,omitempty"`
	PaymentStatus  models.PaymentStatus `json:"payment_status"`
	PaymentOverlay bool                 `json:"payment_overlay"`
	Payment        payment.Flow         `json:"payment"`
	ChargeID       string               `json:"charge_id,omitempty"`
	Queue          *models.QueueView    `json:"queue,omitempty"`
	Notice         *models.Notice       `json:"notice,omitempty"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

func NewState(sessionID string) State {
	return State{
		SessionID:     sessionID,
		Screen:        models.ScreenAuth,
		PaymentStatus: models.PaymentPending,
		Payment:       payment.NewFlow(decimal.Zero),
	}
}

// CanPay reports whether the pay intent is offered on the queue screen.
func (s State) CanPay() bool {
	return s.Screen == models.ScreenInQueue && s.PaymentStatus == models.PaymentPending
}

// RenderKey identifies what a rendered page shows. Two states with the same
// key render the same screen; notices are not part of it.
func (s State) RenderKey() string {
	return fmt.Sprintf("%s|%s|%t|%s", s.Screen, s.PaymentStatus, s.PaymentOverlay, s.Payment.Phase)
}

func (s *State) resetQueueEntry() {
	s.Service = nil
	s.Queue = nil
	s.PaymentStatus = models.PaymentPending
	s.PaymentOverlay = false
	s.Payment = payment.NewFlow(decimal.Zero)
	s.ChargeID = ""
}

type Store interface {
	// Load reports false when the session has no saved state.
	Load(ctx context.Context, sessionID string) (State, bool, error)
	Save(ctx context.Context, st State) error
	Delete(ctx context.Context, sessionID string) error
}

// Publisher receives every state change after it is saved.
type Publisher interface {
	Publish(sessionID string, st State)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, State) {}
