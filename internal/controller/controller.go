// Package controller owns the per-session screen state machine: which screen
// is active and the profile, service and payment data gathered on the way.
package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"barber-queue/internal/catalog"
	"barber-queue/internal/logger"
	"barber-queue/internal/models"
	"barber-queue/internal/monitoring"
	"barber-queue/internal/payment"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const callbackTimeout = 5 * time.Second

type Controller struct {
	store     Store
	catalog   *catalog.Catalog
	estimator QueueEstimator
	processor payment.Processor
	publisher Publisher
	isOpen    func(time.Time) bool
	locks     *keyedMutex
	now       func() time.Time
	newID     func() string
}

type Option func(*Controller)

func WithPublisher(p Publisher) Option {
	return func(c *Controller) { c.publisher = p }
}

// WithOpeningHours refuses new queue entries when open reports false.
func WithOpeningHours(open func(time.Time) bool) Option {
	return func(c *Controller) { c.isOpen = open }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func New(store Store, cat *catalog.Catalog, est QueueEstimator, proc payment.Processor, opts ...Option) *Controller {
	c := &Controller{
		store:     store,
		catalog:   cat,
		estimator: est,
		processor: proc,
		publisher: nopPublisher{},
		isOpen:    func(time.Time) bool { return true },
		locks:     newKeyedMutex(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Catalog() *catalog.Catalog {
	return c.catalog
}

// State returns the session's state, or a fresh auth state when none exists.
func (c *Controller) State(ctx context.Context, sessionID string) (State, error) {
	st, ok, err := c.store.Load(ctx, sessionID)
	if err != nil {
		return State{}, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return NewState(sessionID), nil
	}
	return st, nil
}

// TakeNotice returns the state and clears its pending notice, so a notice is
// shown exactly once.
func (c *Controller) TakeNotice(ctx context.Context, sessionID string) (State, error) {
	unlock := c.locks.Lock(sessionID)
	defer unlock()

	st, err := c.State(ctx, sessionID)
	if err != nil || st.Notice == nil {
		return st, err
	}

	cleared := st
	cleared.Notice = nil
	if err := c.store.Save(ctx, cleared); err != nil {
		return State{}, fmt.Errorf("save session: %w", err)
	}
	return st, nil
}

// Notify attaches a notice to the session without changing screens.
func (c *Controller) Notify(ctx context.Context, sessionID string, notice models.Notice) error {
	unlock := c.locks.Lock(sessionID)
	defer unlock()

	st, err := c.State(ctx, sessionID)
	if err != nil {
		return err
	}
	st.Notice = &notice
	st.UpdatedAt = c.now()
	if err := c.store.Save(ctx, st); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	c.publisher.Publish(sessionID, st)
	return nil
}

func (c *Controller) Authenticate(ctx context.Context, sessionID string, id *models.Identity, profile *models.Profile, notice *models.Notice) (State, error) {
	return c.apply(ctx, sessionID, EventAuthenticate, func(st *State) error {
		if !id.Valid() || profile == nil {
			return ErrNotAuthenticated
		}
		identity, p := *id, *profile
		st.Identity = &identity
		st.Profile = &p
		st.resetQueueEntry()
		st.Notice = notice
		return nil
	})
}

func (c *Controller) SelectService(ctx context.Context, sessionID, serviceID string) (State, error) {
	return c.apply(ctx, sessionID, EventSelectService, func(st *State) error {
		if !c.isOpen(c.now()) {
			return ErrShopClosed
		}
		svc, ok := c.catalog.Lookup(serviceID)
		if !ok {
			return ErrUnknownService
		}

		st.resetQueueEntry()
		view, err := c.estimator.Estimate(ctx, *st, svc)
		if err != nil {
			return fmt.Errorf("estimate queue: %w", err)
		}
		st.Service = &svc
		st.Queue = &view
		return nil
	})
}

func (c *Controller) Cancel(ctx context.Context, sessionID string) (State, error) {
	return c.apply(ctx, sessionID, EventCancel, func(st *State) error {
		if st.PaymentOverlay && !st.Payment.CanCancel() {
			return ErrPaymentBusy
		}
		st.resetQueueEntry()
		return nil
	})
}

func (c *Controller) OpenPayment(ctx context.Context, sessionID string) (State, error) {
	return c.apply(ctx, sessionID, EventOpenPayment, func(st *State) error {
		if st.PaymentStatus == models.PaymentPaid {
			return ErrAlreadyPaid
		}
		if st.Service == nil {
			return ErrInvalidTransition
		}
		if st.PaymentOverlay {
			return nil
		}
		st.PaymentOverlay = true
		st.Payment = payment.NewFlow(st.Service.Price)
		return nil
	})
}

func (c *Controller) ClosePayment(ctx context.Context, sessionID string) (State, error) {
	return c.apply(ctx, sessionID, EventClosePayment, func(st *State) error {
		if !st.PaymentOverlay {
			return ErrInvalidTransition
		}
		if !st.Payment.CanCancel() {
			return ErrPaymentBusy
		}
		st.PaymentOverlay = false
		return nil
	})
}

// ConfirmPayment starts a charge for the selected service. The processor's
// callbacks finish the flow asynchronously.
func (c *Controller) ConfirmPayment(ctx context.Context, sessionID string) (State, error) {
	chargeID := c.newID()
	st, err := c.apply(ctx, sessionID, EventConfirmPayment, func(st *State) error {
		if !st.PaymentOverlay {
			return ErrInvalidTransition
		}
		if err := st.Payment.Confirm(); err != nil {
			return ErrPaymentBusy
		}
		st.ChargeID = chargeID
		return nil
	})
	if err != nil {
		return st, err
	}

	// Charge runs outside the session lock; a processor may call back
	// synchronously.
	err = c.processor.Charge(ctx, payment.Charge{SessionID: sessionID, Amount: st.Payment.Amount}, payment.Callbacks{
		Succeeded: func() { c.paymentCallback(sessionID, chargeID, EventPaymentSucceeded) },
		Completed: func() { c.paymentCallback(sessionID, chargeID, EventPaymentCompleted) },
	})
	if err != nil {
		monitoring.TrackPayment("rejected")
		logger.Error("payment processor rejected charge", zap.String("session_id", sessionID), zap.Error(err))
		c.abortCharge(sessionID, chargeID)
		return st, fmt.Errorf("start charge: %w", err)
	}

	return st, nil
}

func (c *Controller) paymentCallback(sessionID, chargeID string, ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), callbackTimeout)
	defer cancel()

	_, err := c.apply(ctx, sessionID, ev, func(st *State) error {
		if st.ChargeID != chargeID || !st.PaymentOverlay {
			return errStaleCharge
		}
		switch ev {
		case EventPaymentSucceeded:
			if err := st.Payment.Succeed(); err != nil {
				return errStaleCharge
			}
		case EventPaymentCompleted:
			if st.Payment.Phase != payment.PhaseSucceeded {
				return errStaleCharge
			}
			st.PaymentStatus = models.PaymentPaid
			if st.Queue != nil {
				view := *st.Queue
				view.PaymentStatus = models.PaymentPaid
				st.Queue = &view
			}
			st.PaymentOverlay = false
			st.ChargeID = ""
		}
		return nil
	})

	switch {
	case err == nil:
		if ev == EventPaymentCompleted {
			monitoring.TrackPayment("paid")
		}
	case errors.Is(err, errStaleCharge), errors.Is(err, ErrInvalidTransition):
		logger.Debug("ignoring stale payment callback", zap.String("session_id", sessionID), zap.String("event", string(ev)))
	default:
		logger.Error("payment callback failed", zap.String("session_id", sessionID), zap.String("event", string(ev)), zap.Error(err))
	}
}

func (c *Controller) abortCharge(sessionID, chargeID string) {
	ctx, cancel := context.WithTimeout(context.Background(), callbackTimeout)
	defer cancel()

	_, err := c.apply(ctx, sessionID, EventClosePayment, func(st *State) error {
		if st.ChargeID != chargeID {
			return errStaleCharge
		}
		st.Payment.Phase = payment.PhaseIdle
		st.ChargeID = ""
		st.Notice = &models.Notice{Title: "Error", Message: "Payment could not be started. Please try again.", Variant: models.NoticeDestructive}
		return nil
	})
	if err != nil && !errors.Is(err, errStaleCharge) {
		logger.Error("abort charge failed", zap.String("session_id", sessionID), zap.Error(err))
	}
}

// SignOut tears the session down and returns to the auth screen.
func (c *Controller) SignOut(ctx context.Context, sessionID string) (State, error) {
	unlock := c.locks.Lock(sessionID)
	defer unlock()

	if err := c.store.Delete(ctx, sessionID); err != nil {
		monitoring.TrackTransition(string(EventSignOut), "error")
		return State{}, fmt.Errorf("delete session: %w", err)
	}

	st := NewState(sessionID)
	st.UpdatedAt = c.now()
	monitoring.TrackTransition(string(EventSignOut), "ok")
	c.publisher.Publish(sessionID, st)
	return st, nil
}

// apply runs one event to completion under the session lock: load, check the
// transition table, mutate, save, publish. On error nothing is saved.
func (c *Controller) apply(ctx context.Context, sessionID string, ev Event, mutate func(*State) error) (State, error) {
	unlock := c.locks.Lock(sessionID)
	defer unlock()

	st, err := c.State(ctx, sessionID)
	if err != nil {
		monitoring.TrackTransition(string(ev), "error")
		return State{}, err
	}

	if !ValidTransition(ev, st.Screen) {
		monitoring.TrackTransition(string(ev), "rejected")
		return st, ErrInvalidTransition
	}

	next := st
	if err := mutate(&next); err != nil {
		monitoring.TrackTransition(string(ev), "rejected")
		return st, err
	}
	next.Screen = Next(ev, st.Screen)
	next.UpdatedAt = c.now()

	if err := c.store.Save(ctx, next); err != nil {
		monitoring.TrackTransition(string(ev), "error")
		return st, fmt.Errorf("save session: %w", err)
	}

	monitoring.TrackTransition(string(ev), "ok")
	logger.Debug("session transition",
		zap.String("session_id", sessionID),
		zap.String("event", string(ev)),
		zap.String("from", string(st.Screen)),
		zap.String("to", string(next.Screen)),
	)
	c.publisher.Publish(sessionID, next)
	return next, nil
}
