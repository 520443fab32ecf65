package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/config"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/identity"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	healthHandler *handlers.HealthHandler,
	moderationHandler *handlers.ModerationHandler,
	contentHandler *handlers.ContentHandler,
) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	protected := []fiber.Handler{middleware.JWTProtected(cfg), middleware.Identity()}

	contents := api.Group("/contents", protected...)
	contents.Post("/", contentHandler.Create)
	contents.Get("/", contentHandler.List)
	contents.Get("/:id", contentHandler.Get)

	reports := api.Group("/reports", protected...)
	reports.Post("/", moderationHandler.SubmitReport)
	reports.Get("/", moderationHandler.ListReports)
	reports.Get("/:id", moderationHandler.GetReport)
	// Voting has its own limit per identity on top of the IP limit
	reports.Post("/:id/votes", limiter.New(limiter.Config{
		Max:               30,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			if id := identity.Current(c); id != "" {
				return id
			}
			return c.IP()
		},
	}), moderationHandler.SubmitVote)
	reports.Get("/:id/voting-status", moderationHandler.VotingStatus)

	moderation := api.Group("/moderation", protected...)
	moderation.Post("/check", moderationHandler.CheckContent)
	moderation.Get("/stats", moderationHandler.Stats)
	moderation.Get("/thresholds", moderationHandler.Thresholds)

	// Admin moderation panel (protected + admin required)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(cfg))
	admin.Put("/moderation/reports/:id/notes", moderationHandler.AnnotateReport)
	admin.Post("/moderation/expire", moderationHandler.Expire)
}
