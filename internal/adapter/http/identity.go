package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"nextstep-cv/internal/store"
	"nextstep-cv/pkg/logger"
)

const (
	ClientCookie   = "nscv_client"
	clientLifespan = 365 * 24 * time.Hour
	tokenIssuer    = "nextstep-cv"

	localsClientID = "client_id"
	localsStore    = "store"
)

// Identity gives every browser a stable, signed client ID. The ID only
// scopes the key-value store; it proves nothing about the user.
type Identity struct {
	secret []byte
	secure bool
	base   store.Store
	log    logger.Logger
}

func NewIdentity(secret string, secure bool, base store.Store, log logger.Logger) *Identity {
	return &Identity{secret: []byte(secret), secure: secure, base: base, log: log}
}

func (i *Identity) Issue(id uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   id.String(),
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(clientLifespan)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("cannot sign client token: %w", err)
	}
	return signed, nil
}

func (i *Identity) Parse(token string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid client token: %w", err)
	}
	return uuid.Parse(claims.Subject)
}

// Middleware resolves the client ID from the cookie, minting a new one
// when it is missing or does not verify, and installs the scoped store.
func (i *Identity) Middleware(c *fiber.Ctx) error {
	id, err := i.Parse(c.Cookies(ClientCookie))
	if err != nil {
		id = uuid.New()
		token, err := i.Issue(id)
		if err != nil {
			return err
		}
		c.Cookie(&fiber.Cookie{
			Name:     ClientCookie,
			Value:    token,
			Path:     "/",
			Expires:  time.Now().Add(clientLifespan),
			HTTPOnly: true,
			Secure:   i.secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	c.Locals(localsClientID, id.String())
	c.Locals(localsStore, store.Scope(i.base, id.String()))
	return c.Next()
}

func clientStore(c *fiber.Ctx) store.Store {
	s, _ := c.Locals(localsStore).(store.Store)
	return s
}
