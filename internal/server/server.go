package server

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/mansoorceksport/platepal/internal/config"
	"github.com/mansoorceksport/platepal/internal/domain"
	"github.com/mansoorceksport/platepal/internal/handler"
	"github.com/mansoorceksport/platepal/internal/middleware"
	"github.com/mansoorceksport/platepal/internal/repository"
	"github.com/mansoorceksport/platepal/internal/service"
	"github.com/mansoorceksport/platepal/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// AppDependencies holds the dependencies required to start the application.
// FileRepo, Analyzer and PaymentProvider are optional; when nil the real
// S3, OpenRouter and iPaymu implementations are built from Config.
type AppDependencies struct {
	Config          *config.Config
	MongoDB         *mongo.Database
	RedisClient     *redis.Client
	AuthClient      service.FirebaseAuthClient
	FileRepo        domain.FileRepository
	Analyzer        domain.MealAnalyzer
	PaymentProvider service.PaymentProvider
}

// App is the HTTP application plus the background listener that keeps the
// progress cache consistent across replicas.
type App struct {
	*fiber.App
	Listener *service.ChangeListener
}

// NewApp creates and configures the Fiber application with the given dependencies
func NewApp(deps AppDependencies) *App {
	cfg := deps.Config
	loc := cfg.Tracking.Location()

	// Repositories
	userRepo := repository.NewMongoUserRepository(deps.MongoDB)
	profileRepo := repository.NewMongoProfileRepository(deps.MongoDB)
	mealRepo := repository.NewMongoMealRepository(deps.MongoDB)
	refreshRepo := repository.NewMongoRefreshTokenRepository(deps.MongoDB)
	invoiceRepo := repository.NewMongoInvoiceRepository(deps.MongoDB)
	subscriptionRepo := repository.NewMongoSubscriptionRepository(deps.MongoDB)
	cacheRepo := repository.NewRedisCacheRepository(deps.RedisClient)
	planRepo := repository.NewCachedPlanRepository(repository.NewMongoPlanRepository(deps.MongoDB), cacheRepo)
	eventBus := repository.NewRedisEventBus(deps.RedisClient, cfg.Tracking.DataChangedChannel)

	files := deps.FileRepo
	if files == nil {
		s3Repo, err := repository.NewSeaweedS3Repository(context.Background(), cfg.S3)
		if err != nil {
			log.Printf("Warning: Failed to initialize S3 repository, photos will not be stored: %v", err)
		} else {
			files = s3Repo
		}
	}

	analyzer := deps.Analyzer
	if analyzer == nil {
		analyzer = service.NewOpenRouterAnalyzer(cfg.OpenRouter.APIKey, cfg.OpenRouter.Model, cfg.OpenRouter.BaseURL)
	}

	provider := deps.PaymentProvider
	if provider == nil {
		provider = service.NewPaymentProvider(cfg.IPaymu)
	}

	// Services
	progressService := service.NewProgressService(profileRepo, mealRepo, cacheRepo, loc, cfg.Tracking.ProgressCacheTTL)
	authService := service.NewAuthService(userRepo, deps.AuthClient)
	tokenService := service.NewTokenService(cfg.JWT, refreshRepo, userRepo)
	profileService := service.NewProfileService(profileRepo, progressService, eventBus)
	mealService := service.NewMealService(mealRepo, analyzer, files, progressService, eventBus, telemetry.NewMealMetrics())
	billingService := service.NewBillingService(planRepo, invoiceRepo, subscriptionRepo, userRepo, provider, cfg.IPaymu.APIKey)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, tokenService, profileService, cfg.JWT.RefreshTokenExpiry, cfg.OTEL.Environment == "production")
	profileHandler := handler.NewProfileHandler(profileService)
	mealHandler := handler.NewMealHandler(mealService, cfg.Server.MaxUploadSizeMB)
	progressHandler := handler.NewProgressHandler(progressService)
	paymentHandler := handler.NewPaymentHandler(billingService)
	webhookHandler := handler.NewWebhookHandler(billingService)

	analysisLimiter := middleware.NewRateLimiter(deps.RedisClient, middleware.RateLimitConfig{
		KeyPrefix:    "quota:analyze",
		FreeLimit:    cfg.Tracking.FreeDailyAnalyses,
		PremiumLimit: cfg.Tracking.PremiumDailyAnalyses,
		Location:     loc,
	}, func(ctx context.Context, userID string) (bool, error) {
		user, err := userRepo.GetByID(ctx, userID)
		if err != nil {
			return false, err
		}
		return user.IsPremium(time.Now()), nil
	})

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "PlatePal API",
		BodyLimit:    int(cfg.Server.MaxUploadSizeMB * 1024 * 1024),
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	if cfg.OTEL.Enabled {
		app.Use(telemetry.FiberMiddleware())
	}
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Correlation-ID",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "platepal",
		})
	})

	v1 := app.Group("/v1")

	// Public
	auth := v1.Group("/auth")
	auth.Post("/login", authHandler.LoginOrRegister)
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/logout", authHandler.Logout)

	v1.Post("/targets/preview", profileHandler.PreviewTargets)
	v1.Get("/plans", paymentHandler.ListPlans)
	v1.Post("/billing/webhook/ipaymu", webhookHandler.IPaymuWebhook)

	// Authenticated user API
	me := v1.Group("/me")
	me.Use(middleware.VerifyToken(cfg.JWT.Secret))
	me.Use(middleware.IdempotencyMiddleware(deps.RedisClient, cfg.Tracking.IdempotencyTTL))

	me.Get("/profile", profileHandler.GetProfile)
	me.Put("/profile", profileHandler.SaveProfile)
	me.Get("/profile/energy", profileHandler.Energy)

	meals := me.Group("/meals")
	meals.Post("/analyze", analysisLimiter.Middleware(), mealHandler.AnalyzeMeal)
	meals.Post("/", mealHandler.CreateMeal)
	meals.Get("/", mealHandler.ListMeals)
	meals.Get("/:id", mealHandler.GetMeal)
	meals.Delete("/:id", mealHandler.DeleteMeal)

	progress := me.Group("/progress")
	progress.Get("/day", progressHandler.Day)
	progress.Get("/week", progressHandler.Week)
	progress.Get("/month", progressHandler.Month)

	billing := me.Group("/billing")
	billing.Post("/checkout", paymentHandler.Checkout)
	billing.Get("/invoices/:id", paymentHandler.GetInvoiceStatus)
	me.Get("/subscription", paymentHandler.Subscription)

	return &App{
		App:      app,
		Listener: service.NewChangeListener(eventBus, progressService),
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	log.Printf("[Server] Error: %v", err)
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}
