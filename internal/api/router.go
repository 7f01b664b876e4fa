package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	config "github.com/postpilot/postpilot-api/configs"
	"github.com/postpilot/postpilot-api/internal/api/handlers"
	"github.com/postpilot/postpilot-api/internal/api/middleware"
)

type Handlers struct {
	Calendar     *handlers.CalendarHandler
	Instagram    *handlers.InstagramHandler
	Schedule     *handlers.ScheduleHandler
	Content      *handlers.ContentHandler
	ProductImage *handlers.ProductImageHandler
	Billing      *handlers.BillingHandler
}

func NewApp(cfg config.Config, h Handlers) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(logger.New())
	app.Use(middleware.Preflight())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Client-Info, Apikey",
		MaxAge:       3600,
	}))

	fn := app.Group("/functions/v1")

	billing := h.Billing
	fn.Post("/stripe-webhook", billing.StripeWebhook)

	authMiddleware := middleware.NewAuthMiddleware(cfg)
	api := fn.Group("", authMiddleware.AuthMiddleware())

	cal := h.Calendar
	api.Post("/generate-calendar", cal.GenerateCalendar)
	api.Post("/regenerate-day", cal.RegenerateDay)
	api.Get("/calendars", cal.ListCalendars)
	api.Post("/calendars", cal.CreateCalendar)
	api.Get("/calendars/:id", cal.GetCalendar)
	api.Delete("/calendars/:id", cal.DeleteCalendar)

	ig := h.Instagram
	api.Post("/post-to-instagram", ig.PostToInstagram)
	api.Post("/connect-instagram", ig.ConnectInstagram)
	api.Post("/disconnect-instagram", ig.DisconnectInstagram)
	api.Post("/fetch-instagram-analytics", ig.FetchAnalytics)
	api.Post("/analyze-hashtag-performance", ig.AnalyzeHashtagPerformance)

	schedule := h.Schedule
	api.Post("/schedule-post", schedule.SchedulePost)
	api.Get("/scheduled-posts", schedule.ListScheduledPosts)
	api.Delete("/scheduled-posts/:id", schedule.CancelScheduledPost)

	content := h.Content
	api.Post("/analyze-menu-image", content.AnalyzeMenuImage)
	api.Post("/analyze-website", content.AnalyzeWebsite)
	api.Post("/generate-story-content", content.GenerateStoryContent)
	api.Post("/generate-brand-hashtag", content.GenerateBrandHashtag)

	images := h.ProductImage
	api.Get("/product-images", images.ListProductImages)
	api.Post("/product-images", images.UploadProductImage)
	api.Post("/product-images/reorder", images.Reorder)
	api.Post("/product-images/:id/feature", images.SetFeatured)
	api.Delete("/product-images/:id", images.DeleteProductImage)

	api.Post("/create-checkout", billing.CreateCheckout)

	return app
}
