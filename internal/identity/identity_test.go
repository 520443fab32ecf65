package identity

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider(t *testing.T) {
	var p Provider
	_, ok := p.CurrentIdentity(context.Background())
	assert.False(t, ok)

	id, ok := p.CurrentIdentity(WithIdentity(context.Background(), "0xabc"))
	assert.True(t, ok)
	assert.Equal(t, "0xabc", id)

	_, ok = p.CurrentIdentity(WithIdentity(context.Background(), ""))
	assert.False(t, ok)
}

func TestFromToken(t *testing.T) {
	tests := []struct {
		name  string
		token *jwt.Token
		want  string
		err   error
	}{
		{"wallet sub", jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "0xabc"}), "0xabc", nil},
		{"blank sub", jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": " "}), "", ErrNoIdentity},
		{"no sub", jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{}), "", ErrNoIdentity},
		{"no token", nil, "", ErrNoToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				if tt.token != nil {
					c.Locals("user", tt.token)
				}
				id, err := FromToken(c)
				if tt.err != nil {
					assert.ErrorIs(t, err, tt.err)
				} else {
					assert.NoError(t, err)
				}
				assert.Equal(t, tt.want, id)
				return c.SendStatus(fiber.StatusNoContent)
			})
			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
		})
	}
}
