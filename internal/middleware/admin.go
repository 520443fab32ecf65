package middleware

import (
	"slices"

	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/config"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/identity"
	"github.com/gofiber/fiber/v2"
)

// AdminRequired admits a request when any of these hold:
// 1. X-Admin-Token matches ADMIN_TOKEN
// 2. the token subject is listed in ADMIN_IDS
// 3. the token carries role=admin
func AdminRequired(cfg *config.Config) fiber.Handler {
	adminIDs := cfg.AdminIDList()

	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" && c.Get("X-Admin-Token") == cfg.AdminToken {
			return c.Next()
		}

		claims, err := identity.Claims(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		sub, _ := claims["sub"].(string)
		role, _ := claims["role"].(string)
		if (sub != "" && slices.Contains(adminIDs, sub)) || role == "admin" {
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}
