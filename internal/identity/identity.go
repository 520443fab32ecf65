// Package identity resolves the acting wallet or account id. Identities are
// opaque strings issued by the sphere auth service in the JWT sub claim.
package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoToken    = errors.New("invalid token in context")
	ErrNoIdentity = errors.New("missing sub claim")
)

// LocalsKey is the fiber locals key holding the identity once the
// identity middleware has run.
const LocalsKey = "identity"

type ctxKey struct{}

// FromToken extracts the identity from the JWT placed in locals by the JWT
// middleware.
func FromToken(c *fiber.Ctx) (string, error) {
	claims, err := Claims(c)
	if err != nil {
		return "", err
	}
	sub, _ := claims["sub"].(string)
	sub = strings.TrimSpace(sub)
	if sub == "" {
		return "", ErrNoIdentity
	}
	return sub, nil
}

// Current returns the identity stored in locals by the identity middleware.
func Current(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalsKey).(string)
	return id
}

func Claims(c *fiber.Ctx) (jwt.MapClaims, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return nil, ErrNoToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

func WithIdentity(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// Provider reads the identity stored by WithIdentity.
type Provider struct{}

func (Provider) CurrentIdentity(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}
