package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/faturai/faturai-backend/internal/core/jobs"
	"github.com/faturai/faturai-backend/internal/pipeline"
	"github.com/faturai/faturai-backend/internal/repositories"
	"github.com/faturai/faturai-backend/internal/shared/bootstrap"
	"github.com/faturai/faturai-backend/internal/shared/config"
	"github.com/faturai/faturai-backend/internal/shared/database"
	"github.com/faturai/faturai-backend/internal/shared/logger"
)

func main() {
	logger.InitLogger()

	cfg := config.LoadConfig()
	log.Printf("🚀 Starting faturai-worker (env: %s)", cfg.Env)

	db := database.NewDB(cfg.DatabaseURL)
	defer db.Close()

	// Repositories
	invoiceRepo := repositories.NewInvoiceRepo(db.GORM)
	categoryRepo := repositories.NewCategoryRepo(db.GORM)
	pointRepo := repositories.NewPointRepo(db.GORM)

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

	// Queue and pipeline
	queue := jobs.NewQueue(db.GORM)
	processor := pipeline.NewProcessor(invoiceRepo, categoryRepo, store,
		stack.Extractor, stack.Classifier, queue, cfg.QueueName)

	workerConfig := jobs.DefaultWorkerConfig()
	workerConfig.Queue = cfg.QueueName
	workerConfig.Concurrency = cfg.WorkerConcurrency
	workerConfig.Timeout = 5 * time.Minute

	worker := jobs.NewWorker(queue, workerConfig)
	worker.RegisterHandler(pipeline.NewInvoiceJobHandler(processor))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := worker.Start(ctx); err != nil {
		log.Fatalf("❌ Failed to start worker: %v", err)
	}

	// Scheduled maintenance: expire due points nightly, prune old jobs weekly.
	scheduler := cron.New()
	scheduler.AddFunc("0 3 * * *", func() {
		expired, err := pointRepo.ExpireDue(time.Now())
		if err != nil {
			log.Printf("❌ Point expiration sweep failed: %v", err)
			return
		}
		if expired > 0 {
			log.Printf("🧹 Expired %d point entries", expired)
		}
	})
	scheduler.AddFunc("0 4 * * 0", func() {
		deleted, err := queue.DeleteOldJobs(context.Background(), 30*24*time.Hour)
		if err != nil {
			log.Printf("❌ Job cleanup failed: %v", err)
			return
		}
		if deleted > 0 {
			log.Printf("🧹 Deleted %d old jobs", deleted)
		}
	})
	scheduler.Start()
	defer scheduler.Stop()

	log.Printf("✅ faturai-worker is running. Press Ctrl+C to stop.")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Printf("🛑 Shutting down worker...")
	cancel()
	worker.Stop()
}
