package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"resumeai/internal/batch"
	"resumeai/internal/config"
	"resumeai/internal/handlers"
	"resumeai/internal/repositories"
	"resumeai/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	candidateRepo := repositories.NewCandidateRepository(db)
	chatRepo := repositories.NewChatRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize services
	limits := batch.Limits{
		MaxItems:      cfg.Storage.MaxBatchFiles,
		MaxFileSize:   cfg.Storage.MaxFileSize,
		AcceptedTypes: cfg.Storage.AcceptedTypes,
	}
	storageService := services.NewStorageService(cfg.Storage.UploadPath, limits)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	pdfParser := services.NewPDFParserService()
	chunker := services.NewTextChunker()
	promptBuilder := services.NewPromptBuilder()
	log.Println("✅ Services initialized successfully")

	// Initialize Gemini AI
	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}
	log.Println("✅ Gemini AI initialized successfully")

	// Initialize Qdrant
	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := qdrantService.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
	}
	log.Println("✅ Qdrant initialized successfully")

	// Initialize ingest pipeline
	pool := services.NewWorkerPool(cfg.Worker.Concurrency)
	ingestService := services.NewIngestService(
		candidateRepo,
		geminiService,
		qdrantService,
		pdfParser,
		chunker,
		promptBuilder,
		pool,
		cfg.Worker.RetryMaxAttempts,
	)
	log.Println("✅ Ingest service initialized")

	// Initialize search
	searchService := services.NewSearchService(
		candidateRepo,
		geminiService,
		qdrantService,
		promptBuilder,
		cfg.Worker.RetryMaxAttempts,
	)
	log.Println("✅ Search service initialized")

	// Initialize Handlers
	uploadHandler := handlers.NewUploadHandler(
		storageService,
		ingestService,
		cfg.Storage.MaxBatchFiles,
	)
	candidateHandler := handlers.NewCandidateHandler(candidateRepo)
	searchHandler := handlers.NewSearchHandler(searchService)
	chatHandler := handlers.NewChatHandler(chatRepo)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Resume AI API",
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		BodyLimit:    int(cfg.Storage.MaxFileSize) * cfg.Storage.MaxBatchFiles,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// API endpoints
	api.Post("/upload", uploadHandler.HandleUpload)
	api.Post("/search", searchHandler.HandleSearch)
	api.Get("/candidates", candidateHandler.HandleList)
	api.Get("/candidates/:id", candidateHandler.HandleGet)
	api.Get("/chats", chatHandler.HandleList)
	api.Post("/chats", chatHandler.HandleCreate)
	api.Get("/chats/:id", chatHandler.HandleGet)
	api.Post("/chats/:id/messages", chatHandler.HandleAddMessages)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume AI API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/upload",
				"POST /api/v1/search",
				"GET /api/v1/candidates",
				"GET /api/v1/candidates/:id",
				"GET /api/v1/chats",
				"POST /api/v1/chats",
				"GET /api/v1/chats/:id",
				"POST /api/v1/chats/:id/messages",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
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
