package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/handlers"
	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	if !cfg.EnvFileLoaded {
		log.Info("No .env file found. Using default values.")
	}
	log.Info("✅ Config loaded successfully", zap.String("env", cfg.Server.Env))

	// Analysis history is optional
	var analysisRepo repositories.AnalysisRepository
	if cfg.Database.Enabled {
		db, err := config.InitDatabase(cfg, log)
		if err != nil {
			log.Fatal("❌ Failed to initialize database", zap.Error(err))
		}
		analysisRepo = repositories.NewAnalysisRepository(db)
		log.Info("✅ Repositories initialized successfully")
	} else {
		log.Info("analysis history disabled, set DB_ENABLED=true to store runs")
	}

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.MaxFileSize)
	extractor := services.NewTextExtractor(log)
	scorer := cfg.NewScorer()
	screeningService := services.NewScreeningService(extractor, scorer, log)
	log.Info("✅ Services initialized successfully",
		zap.Int("skills", len(scorer.SkillVocabulary())),
		zap.Bool("phrase_skill_matching", cfg.Scoring.PhraseSkillMatching),
		zap.Bool("raw_text_bullets", cfg.Scoring.RawTextBullets),
	)

	// Initialize Handlers
	analyzeHandler := handlers.NewAnalyzeHandler(
		screeningService,
		storageService,
		analysisRepo,
		cfg.Storage.MaxDocuments,
		log,
	)
	resultHandler := handlers.NewResultHandler(analysisRepo)
	log.Info("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Resume Screener API",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		BodyLimit:    bodyLimit(cfg),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")
	handlers.Register(api, analyzeHandler, resultHandler)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume Screener API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/analyze",
				"GET /api/v1/analyses",
				"GET /api/v1/analyses/:id",
				"GET /api/v1/health",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Error("❌ Server forced to shutdown", zap.Error(err))
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("🚀 Server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		log.Fatal("❌ Failed to start server", zap.Error(err))
	}
}

// bodyLimit leaves room for a full batch plus the multipart overhead.
func bodyLimit(cfg *config.Config) int {
	docs := cfg.Storage.MaxDocuments
	if docs < 1 {
		docs = 1
	}
	return int(cfg.Storage.MaxFileSize)*docs + 1<<20
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
