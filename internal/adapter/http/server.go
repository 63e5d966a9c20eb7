package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nextstep-cv/pkg/logger"
	"nextstep-cv/pkg/metrics"
)

// Upload cap for /import.
const bodyLimit = 10 * 1024 * 1024

// NewApp wires middleware and routes around h.
func NewApp(h *Handler, id *Identity, m *metrics.Metrics, log logger.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "nextstep-cv",
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(log),
	})

	app.Use(recover.New())
	app.Use(RequestLogger(log))

	app.Get("/healthz", h.Healthz)
	if m != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
	}

	app.Use(id.Middleware)
	app.Use(AcceptColorSchemeHint)

	app.Get("/", h.Landing)
	app.Post("/import", h.Import)
	app.Post("/theme", h.ToggleTheme)

	app.Get("/auth", h.AuthPage)
	app.Post("/auth/login", h.Login)
	app.Post("/auth/signup", h.Signup)
	app.Post("/logout", h.Logout)

	create := app.Group("/create", h.RequireSession)
	create.Get("", h.CreatePage)
	create.Post("", h.CreateAction)

	return app
}

func errorHandler(log logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		} else {
			log.Error("unhandled error", err)
		}
		msg := "Something went wrong. Please try again."
		if code < fiber.StatusInternalServerError && fe != nil {
			msg = fe.Message
		}
		return c.Status(code).SendString(msg)
	}
}
