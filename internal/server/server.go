package server

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/mansoorceksport/fitcoach/internal/config"
	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/mansoorceksport/fitcoach/internal/handler"
	"github.com/mansoorceksport/fitcoach/internal/middleware"
	"github.com/mansoorceksport/fitcoach/internal/repository"
	"github.com/mansoorceksport/fitcoach/internal/service"
	"github.com/mansoorceksport/fitcoach/internal/store"
	"github.com/mansoorceksport/fitcoach/internal/telemetry"
	"github.com/redis/go-redis/v9"
)

// AppDependencies holds the dependencies required to start the application
type AppDependencies struct {
	Config   *config.Config
	Registry *store.Registry

	// Optional: without Redis there is no idempotency replay and no quote cache
	RedisClient *redis.Client

	// Built from Config when nil
	TextModel      domain.TextModel
	ImageGenerator domain.ImageGenerator

	// Optional: without file storage POST /v1/plan/export is unavailable
	FileRepository domain.FileRepository
}

// NewApp creates and configures the Fiber application with the given dependencies
func NewApp(deps AppDependencies) *fiber.App {
	if deps.TextModel == nil {
		deps.TextModel = service.NewTextModel(deps.Config.Text)
	}
	if deps.ImageGenerator == nil {
		deps.ImageGenerator = service.NewHuggingFaceImageGenerator(deps.Config.Image.APIKey, deps.Config.Image.Endpoint)
	}

	var cache domain.CacheRepository
	if deps.RedisClient != nil {
		cache = repository.NewRedisCacheRepository(deps.RedisClient)
	}

	// Initialize services
	sessionService := service.NewSessionService(deps.Config.JWT)
	planService := service.NewPlanService(service.NewLLMPlanGenerator(deps.TextModel))
	quoteService := service.NewQuoteService(deps.TextModel, cache)
	summaryService := service.NewSummaryService(quoteService)
	exportService := service.NewExportService(deps.FileRepository)

	// Initialize handlers
	sessionHandler := handler.NewSessionHandler(sessionService)
	imageHandler := handler.NewImageHandler(deps.ImageGenerator)
	stateHandler := handler.NewStateHandler()
	planHandler := handler.NewPlanHandler(planService, summaryService, exportService)
	savedPlanHandler := handler.NewSavedPlanHandler()
	preferenceHandler := handler.NewPreferenceHandler(quoteService)

	app := fiber.New(fiber.Config{
		AppName:      "AI Fitness Coach API",
		BodyLimit:    int(deps.Config.Server.BodyLimitMB * 1024 * 1024),
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Correlation-ID",
		AllowMethods:  "GET, POST, PUT, DELETE, OPTIONS",
		ExposeHeaders: "X-Trace-ID, X-Idempotent-Replay, Content-Disposition",
	}))
	app.Use(telemetry.FiberMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "fitcoach",
		})
	})

	// Image proxy (public, mirrors upstream status codes)
	app.Post("/api/generate-image", imageHandler.GenerateImage)

	v1 := app.Group("/v1")

	// Every session-scoped group authenticates first so replay keys are per session.
	// Replays are answered before the session state is loaded.
	scoped := func(prefix string) fiber.Router {
		group := v1.Group(prefix)
		group.Use(middleware.VerifySessionToken(deps.Config.JWT.Secret))
		group.Use(middleware.IdempotencyMiddleware(deps.RedisClient, deps.Config.Server.IdempotencyTTL))
		group.Use(middleware.SessionStore(deps.Registry))
		return group
	}

	sessions := v1.Group("/sessions")
	sessions.Post("/", sessionHandler.CreateSession)
	sessions.Post("/renew", middleware.VerifySessionToken(deps.Config.JWT.Secret), sessionHandler.RenewSession)

	state := scoped("/state")
	state.Get("/", stateHandler.GetState)
	state.Put("/", stateHandler.PutState)

	plan := scoped("/plan")
	plan.Get("/", planHandler.GetPlan)
	plan.Delete("/", planHandler.ClearPlan)
	plan.Post("/generate", planHandler.GeneratePlan)
	plan.Post("/regenerate", planHandler.RegeneratePlan)
	plan.Get("/summary", planHandler.GetSummary)
	plan.Get("/narration", planHandler.GetNarration)
	plan.Get("/export", planHandler.DownloadPDF)
	plan.Post("/export", planHandler.ArchivePDF)

	saved := scoped("/saved-plans")
	saved.Get("/", savedPlanHandler.ListSavedPlans)
	saved.Post("/", savedPlanHandler.SavePlan)
	saved.Delete("/:index", savedPlanHandler.DeleteSavedPlan)
	saved.Post("/:index/load", savedPlanHandler.LoadSavedPlan)

	theme := scoped("/theme")
	theme.Post("/toggle", preferenceHandler.ToggleTheme)
	theme.Put("/", preferenceHandler.SetTheme)

	v1.Get("/quote", preferenceHandler.GetQuote)

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	log.Printf("Error: %v", err)
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}
