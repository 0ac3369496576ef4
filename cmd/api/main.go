package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/faturai/faturai-backend/internal/shared/bootstrap"
	"github.com/faturai/faturai-backend/internal/core/jobs"
	"github.com/faturai/faturai-backend/internal/handlers"
	"github.com/faturai/faturai-backend/internal/pipeline"
	"github.com/faturai/faturai-backend/internal/recommend"
	"github.com/faturai/faturai-backend/internal/repositories"
	"github.com/faturai/faturai-backend/internal/shared/config"
	"github.com/faturai/faturai-backend/internal/shared/database"
	"github.com/faturai/faturai-backend/internal/shared/logger"
)

func main() {
	logger.InitLogger()

	cfg := config.LoadConfig()
	log.Printf("🚀 Starting faturai-api on port %s", cfg.Port)

	db := database.NewDB(cfg.DatabaseURL)
	defer db.Close()

	// Repositories
	invoiceRepo := repositories.NewInvoiceRepo(db.GORM)
	transactionRepo := repositories.NewTransactionRepo(db.GORM)
	cardRepo := repositories.NewCardRepo(db.GORM)
	categoryRepo := repositories.NewCategoryRepo(db.GORM)
	pointRepo := repositories.NewPointRepo(db.GORM)
	rewardProgramRepo := repositories.NewRewardProgramRepo(db.GORM)

	categoryCodes, err := categoryRepo.Codes()
	if err != nil {
		log.Fatalf("❌ Failed to load category catalog: %v", err)
	}

	// Storage and models
	store, err := bootstrap.NewStorageProvider(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to init storage provider: %v", err)
	}
	stack, err := bootstrap.NewExtractionStack(cfg, store, categoryCodes)
	if err != nil {
		log.Fatalf("❌ Failed to init extraction stack: %v", err)
	}
	chat, err := bootstrap.ChatProvider(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to init chat provider: %v", err)
	}

	// Queue and pipeline
	queue := jobs.NewQueue(db.GORM)
	processor := pipeline.NewProcessor(invoiceRepo, categoryRepo, store,
		stack.Extractor, stack.Classifier, queue, cfg.QueueName)

	// Recommendation engine
	recommender := recommend.NewService(cardRepo, transactionRepo, rewardProgramRepo, chat)

	// Handlers
	invoiceHandler := handlers.NewInvoiceHandler(invoiceRepo, transactionRepo, cardRepo, store, processor)
	transactionHandler := handlers.NewTransactionHandler(transactionRepo, invoiceRepo, categoryRepo)
	categoryHandler := handlers.NewCategoryHandler(categoryRepo, stack.Classifier)
	recommendationHandler := handlers.NewRecommendationHandler(recommender)
	pointHandler := handlers.NewPointHandler(pointRepo, rewardProgramRepo)
	jobHandler := handlers.NewJobHandler(queue)

	app := fiber.New(fiber.Config{
		AppName:   "FaturAI API",
		BodyLimit: 12 * 1024 * 1024,
	})

	app.Use(cors.New())

	if cfg.StorageProvider == "local" {
		app.Static("/uploads", cfg.UploadDir)
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "faturai-api",
		})
	})

	// Invoice routes
	app.Post("/invoices/upload", invoiceHandler.Upload)
	app.Get("/invoices", invoiceHandler.List)
	app.Get("/invoices/:id", invoiceHandler.GetByID)
	app.Post("/invoices/:id/reprocess", invoiceHandler.Reprocess)
	app.Patch("/invoices/:id/status", invoiceHandler.UpdateStatus)

	// Transaction routes
	app.Post("/invoices/:id/transactions", transactionHandler.Create)
	app.Get("/transactions/:id", transactionHandler.GetByID)
	app.Patch("/transactions/:id/category", transactionHandler.Recategorize)

	// Category routes
	app.Get("/categories", categoryHandler.List)
	app.Post("/categories/suggest", categoryHandler.Suggest)

	// Recommendation routes
	app.Get("/recommendations/cards", recommendationHandler.Cards)
	app.Post("/recommendations/optimize", recommendationHandler.Optimize)

	// Point routes
	app.Get("/points/summary", pointHandler.Summary)
	app.Get("/reward-programs", pointHandler.Programs)

	// Job monitoring routes
	app.Get("/jobs/stats", jobHandler.Stats)
	app.Get("/jobs/:id", jobHandler.GetByID)

	log.Printf("✅ faturai-api running at :%s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
