package controller

import "barber-queue/internal/models"

type Event string

const (
	EventAuthenticate     Event = "authenticate"
	EventSelectService    Event = "select_service"
	EventCancel           Event = "cancel"
	EventOpenPayment      Event = "open_payment"
	EventConfirmPayment   Event = "confirm_payment"
	EventPaymentSucceeded Event = "payment_succeeded"
	EventPaymentCompleted Event = "payment_completed"
	EventClosePayment     Event = "close_payment"
	EventSignOut          Event = "sign_out"
)

var transitionMap = map[Event][]models.Screen{
	EventAuthenticate:     {models.ScreenAuth},
	EventSelectService:    {models.ScreenServiceSelection},
	EventCancel:           {models.ScreenInQueue},
	EventOpenPayment:      {models.ScreenInQueue},
	EventConfirmPayment:   {models.ScreenInQueue},
	EventPaymentSucceeded: {models.ScreenInQueue},
	EventPaymentCompleted: {models.ScreenInQueue},
	EventClosePayment:     {models.ScreenInQueue},
	EventSignOut:          {models.ScreenAuth, models.ScreenServiceSelection, models.ScreenInQueue},
}

// targetScreen lists events that move to another screen; the rest stay put.
var targetScreen = map[Event]models.Screen{
	EventAuthenticate:  models.ScreenServiceSelection,
	EventSelectService: models.ScreenInQueue,
	EventCancel:        models.ScreenServiceSelection,
	EventSignOut:       models.ScreenAuth,
}

func ValidTransition(ev Event, from models.Screen) bool {
	allowed, ok := transitionMap[ev]
	if !ok {
		return false
	}
	for _, screen := range allowed {
		if screen == from {
			return true
		}
	}
	return false
}

// Next returns the screen after ev is applied on from.
func Next(ev Event, from models.Screen) models.Screen {
	if to, ok := targetScreen[ev]; ok {
		return to
	}
	return from
}
