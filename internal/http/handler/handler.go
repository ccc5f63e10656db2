package handler

import (
	"context"
	"errors"

	"barber-queue/internal/controller"
	"barber-queue/internal/gate"
	"barber-queue/internal/http/middleware"
	"barber-queue/internal/logger"
	"barber-queue/internal/models"
	"barber-queue/internal/payment"
	"barber-queue/internal/realtime"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Authenticator is the credential gate as seen by the HTTP layer.
type Authenticator interface {
	SignUp(ctx context.Context, in gate.SignUpInput) (models.Profile, models.Identity, error)
	SignIn(ctx context.Context, in gate.SignInInput) (models.Profile, models.Identity, error)
	EnterWithPhone(ctx context.Context, sessionID string, in gate.PhoneInput) (models.Profile, models.Identity, error)
}

// PhoneLookup returns the number a session last entered on the phone gate.
type PhoneLookup interface {
	Phone(ctx context.Context, sessionID string) (string, bool, error)
}

// HealthCheck pings one backing service.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	gate         Authenticator
	ctrl         *controller.Controller
	hub          *realtime.Hub
	phones       PhoneLookup
	checks       map[string]HealthCheck
	cookieSecure bool
}

type Deps struct {
	Gate         Authenticator
	Controller   *controller.Controller
	Hub          *realtime.Hub
	Phones       PhoneLookup
	Checks       map[string]HealthCheck
	CookieSecure bool
}

func New(d Deps) *Handler {
	return &Handler{
		gate:         d.Gate,
		ctrl:         d.Controller,
		hub:          d.Hub,
		phones:       d.Phones,
		checks:       d.Checks,
		cookieSecure: d.CookieSecure,
	}
}

// StateResponse is the JSON view of a session. Identity tokens stay server
// side.
type StateResponse struct {
	Screen         models.Screen        `json:"screen"`
	Profile        *models.Profile      `json:"profile,omitempty"`
	Service        *models.Service      `json:"service,omitempty"`
	PaymentStatus  models.PaymentStatus `json:"payment_status"`
	PaymentOverlay bool                 `json:"payment_overlay"`
	PaymentPhase   payment.Phase        `json:"payment_phase"`
	AmountDue      decimal.Decimal      `json:"amount_due"`
	CanPay         bool                 `json:"can_pay"`
	Queue          *models.QueueView    `json:"queue,omitempty"`
	Notice         *models.Notice       `json:"notice,omitempty"`
}

func newStateResponse(st controller.State) StateResponse {
	return StateResponse{
		Screen:         st.Screen,
		Profile:        st.Profile,
		Service:        st.Service,
		PaymentStatus:  st.PaymentStatus,
		PaymentOverlay: st.PaymentOverlay,
		PaymentPhase:   st.Payment.Phase,
		AmountDue:      st.Payment.Amount,
		CanPay:         st.CanPay(),
		Queue:          st.Queue,
		Notice:         st.Notice,
	}
}

// respond sends JSON clients the new state and redirects browsers to the
// page, which renders it.
func (h *Handler) respond(c *fiber.Ctx, st controller.State) error {
	if middleware.WantsJSON(c) {
		return c.JSON(newStateResponse(st))
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

// fail turns an operation error into a notice. Browsers see it on the next
// render; JSON clients get it in the error body.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status, notice, fields := classify(err)
	sid := middleware.SessionID(c)

	if status == fiber.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("session_id", sid),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	} else {
		logger.Debug("request rejected",
			zap.String("session_id", sid),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	if middleware.WantsJSON(c) {
		body := fiber.Map{
			"error": notice.Message,
			"title": notice.Title,
		}
		if len(fields) > 0 {
			body["fields"] = fields
		}
		return c.Status(status).JSON(body)
	}

	if nerr := h.ctrl.Notify(c.UserContext(), sid, notice); nerr != nil {
		logger.Error("attach notice", zap.String("session_id", sid), zap.Error(nerr))
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func classify(err error) (int, models.Notice, []string) {
	var verr *gate.ValidationError
	if errors.As(err, &verr) {
		return fiber.StatusUnprocessableEntity, destructive(verr.Title, verr.Message), verr.Fields
	}

	var aerr *gate.AuthError
	if errors.As(err, &aerr) {
		return fiber.StatusUnauthorized, destructive(aerr.Title, aerr.Message), nil
	}

	switch {
	case errors.Is(err, controller.ErrUnknownService):
		return fiber.StatusNotFound, destructive("Error", "That service is not available."), nil
	case errors.Is(err, controller.ErrNotAuthenticated):
		return fiber.StatusUnauthorized, destructive("Error", "Please sign in to continue."), nil
	case errors.Is(err, controller.ErrShopClosed):
		return fiber.StatusConflict, destructive("The shop is closed", "Please come back during opening hours."), nil
	case errors.Is(err, controller.ErrAlreadyPaid):
		return fiber.StatusConflict, destructive("Error", "This spot is already paid."), nil
	case errors.Is(err, controller.ErrPaymentBusy):
		return fiber.StatusConflict, destructive("Error", "Payment is being processed. Please wait."), nil
	case errors.Is(err, controller.ErrInvalidTransition):
		return fiber.StatusConflict, destructive("Error", "That action is not available right now."), nil
	}

	return fiber.StatusInternalServerError, destructive("Error", "Something went wrong. Please try again."), nil
}

func destructive(title, message string) models.Notice {
	return models.Notice{Title: title, Message: message, Variant: models.NoticeDestructive}
}
