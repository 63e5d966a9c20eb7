package http

import (
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"nextstep-cv/internal/theme"
	"nextstep-cv/pkg/logger"
)

const flashCookie = "nscv_flash"

func RequestLogger(log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		}
		if id, ok := c.Locals(localsClientID).(string); ok {
			fields = append(fields, zap.String("client_id", id))
		}
		if status >= fiber.StatusInternalServerError {
			log.Error("request failed", err, fields...)
		} else {
			log.Debug("request", fields...)
		}
		return err
	}
}

// AcceptColorSchemeHint asks browsers to send the color-scheme client hint
// on later requests.
func AcceptColorSchemeHint(c *fiber.Ctx) error {
	c.Set("Accept-CH", theme.PreferenceHeader)
	c.Append("Vary", theme.PreferenceHeader)
	return c.Next()
}

// RequireSession sends visitors without a stored username to the login
// screen.
func (h *Handler) RequireSession(c *fiber.Ctx) error {
	if _, ok := h.sessions.For(clientStore(c)).Username(c.UserContext()); !ok {
		return c.Redirect("/auth", fiber.StatusSeeOther)
	}
	return c.Next()
}

// setFlash leaves a one-shot message for the next rendered page.
func setFlash(c *fiber.Ctx, msg string) {
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(msg),
		Path:     "/",
		MaxAge:   60,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func popFlash(c *fiber.Ctx) string {
	raw := c.Cookies(flashCookie)
	if raw == "" {
		return ""
	}
	c.ClearCookie(flashCookie)
	msg, err := url.QueryUnescape(raw)
	if err != nil {
		return ""
	}
	return msg
}
