package controller

import "errors"

var (
	ErrInvalidTransition = errors.New("action not available on this screen")
	ErrNotAuthenticated  = errors.New("identity and profile are both required")
	ErrUnknownService    = errors.New("service not found")
	ErrAlreadyPaid       = errors.New("payment already completed")
	ErrPaymentBusy       = errors.New("payment in progress")
	ErrShopClosed        = errors.New("shop is closed")

	errStaleCharge = errors.New("charge no longer current")
)
