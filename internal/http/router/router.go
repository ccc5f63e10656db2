// Package router builds the fiber app and its routes.
package router

import (
	"errors"

	"barber-queue/internal/config"
	"barber-queue/internal/http/handler"
	"barber-queue/internal/http/middleware"
	"barber-queue/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Options struct {
	Tokens       *config.TokenIssuer
	CookieSecure bool
	MetricsUser  string
	MetricsPass  string
}

func New(h *handler.Handler, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		StrictRouting: true,
		ErrorHandler:  errorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST",
	}))

	app.Get("/health", h.Health)
	if opts.MetricsUser != "" {
		app.Get("/metrics", middleware.BasicAuth(opts.MetricsUser, opts.MetricsPass), adaptor.HTTPHandler(promhttp.Handler()))
	}

	session := middleware.Session(opts.CookieSecure)

	app.Get("/", session, h.Index)
	app.Get("/api/state", session, h.State)
	app.Get("/api/services", h.Services)

	// Auth
	auth := app.Group("/auth", session)
	auth.Post("/signup", h.SignUp)
	auth.Post("/signin", h.SignIn)
	auth.Post("/phone", h.EnterWithPhone)
	auth.Post("/logout", h.Logout)

	// Queue and payment need an identity token
	queue := app.Group("/queue", session, middleware.JWTAuth(opts.Tokens), h.MatchIdentity)
	queue.Post("/join/:serviceId", h.JoinQueue)
	queue.Post("/cancel", h.CancelSpot)

	pay := app.Group("/payment", session, middleware.JWTAuth(opts.Tokens), h.MatchIdentity)
	pay.Post("/open", h.OpenPayment)
	pay.Post("/confirm", h.ConfirmPayment)
	pay.Post("/close", h.ClosePayment)

	app.Get("/ws/session", session, handler.UpgradeOnly, websocket.New(h.SessionWS))

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Something went wrong. Please try again."

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	if code >= fiber.StatusInternalServerError {
		logger.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
	}

	if middleware.WantsJSON(c) {
		return c.Status(code).JSON(fiber.Map{
			"error": message,
		})
	}
	c.Type("txt", "utf-8")
	return c.Status(code).SendString(message)
}
