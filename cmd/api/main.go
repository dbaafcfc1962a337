package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/fitness-sales/internal/config"
	"github.com/xavierca1/fitness-sales/internal/infra/database"
	"github.com/xavierca1/fitness-sales/internal/infra/document"
	"github.com/xavierca1/fitness-sales/internal/infra/http/handlers"
	"github.com/xavierca1/fitness-sales/internal/infra/http/middleware"
	"github.com/xavierca1/fitness-sales/internal/infra/integration/clck"
	"github.com/xavierca1/fitness-sales/internal/infra/mail"
	"github.com/xavierca1/fitness-sales/internal/infra/queue"
	"github.com/xavierca1/fitness-sales/internal/infra/worker"
	"github.com/xavierca1/fitness-sales/internal/usecase"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ database: %v", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("❌ schema: %v", err)
	}

	rabbitMQ, err := queue.NewRabbitMQ(cfg.Rabbit)
	if err != nil {
		log.Fatalf("❌ rabbitmq: %v", err)
	}
	defer rabbitMQ.Close()

	// Repositories
	saleRepo := database.NewSaleRepository(db)
	clientRepo := database.NewClientRepository(db)
	programRepo := database.NewWorkoutProgramRepository(db)
	staffRepo := database.NewStaffRepository(db)

	// Adapters
	producer := queue.NewProducer(rabbitMQ.Ch)
	mailSender := mail.NewEmailSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Pass, cfg.SMTP.From)
	docs := document.NewGenerator(cfg.ProducedDir)
	links := usecase.NewLinkBuilder(cfg.Forms, clck.NewClient(), cfg.ShortenLinks)

	// Use cases
	intake := usecase.NewSaleIntake(cfg, saleRepo, clientRepo, programRepo, staffRepo, mailSender, docs, producer, links)
	deliverer := usecase.NewSaleDeliverer(cfg, saleRepo, mailSender)
	reconciler := usecase.NewSaleReconciler(intake)
	staffOps := usecase.NewStaffOps(cfg, saleRepo, programRepo, staffRepo, mailSender)

	// Background workers
	deliveryWorker := queue.NewWorker(rabbitMQ.Ch, deliverer)
	go func() {
		if err := deliveryWorker.Start(ctx); err != nil && ctx.Err() == nil {
			log.Fatalf("❌ delivery worker: %v", err)
		}
	}()

	sweep := worker.NewReconciliationWorker(reconciler, cfg.SweepInterval)
	go sweep.Start(ctx)

	// Handlers
	webhookHandler := handlers.NewWebhookHandler(intake, staffOps)
	exportHandler := handlers.NewExportHandler(saleRepo)
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn)

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
	}))

	r.Post("/webhook/tilda", webhookHandler.HandleTilda)
	r.Post("/webhook/yandex", webhookHandler.HandleYandex)
	r.Get("/export/sales", exportHandler.Handle)
	r.Get("/healthz", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: cfg.ListenAddr, Handler: r}
	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()

	log.Printf("🔥 Sales pipeline listening on %s", cfg.ListenAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("❌ server: %v", err)
	}
}
