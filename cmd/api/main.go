package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/poscore/transaction-api/internal/application/payment"
	"github.com/poscore/transaction-api/internal/application/service"
	"github.com/poscore/transaction-api/internal/application/tax"
	"github.com/poscore/transaction-api/internal/config"
	"github.com/poscore/transaction-api/internal/infrastructure/cache"
	"github.com/poscore/transaction-api/internal/infrastructure/database"
	"github.com/poscore/transaction-api/internal/infrastructure/messaging"
	infraRepo "github.com/poscore/transaction-api/internal/infrastructure/repository"
	"github.com/poscore/transaction-api/internal/presentation/http/handler"
	"github.com/poscore/transaction-api/internal/presentation/http/routes"
	"github.com/poscore/transaction-api/pkg/receipt"
	"github.com/poscore/transaction-api/pkg/utils"
)

func main() {
	cfg := config.Load()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Durable store
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Cart cache tier with its circuit breaker. When the breaker is open,
	// carts go straight to Postgres.
	redisClient := cache.NewRedisClient(&cfg.Redis)
	breaker := cache.NewCircuitBreaker(cfg.Cache.BreakerFailures, cfg.Cache.BreakerCooldown, 2)

	// Event broker
	publisher := messaging.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Printf("Failed to close publisher: %v", err)
		}
	}()

	// Repositories
	cartRepo := infraRepo.NewCartRepository(redisClient, db, breaker, cfg.Cache.CartTTL)
	txRepo := infraRepo.NewTransactionRepository(db)
	statusRepo := infraRepo.NewTransactionStatusRepository(db)
	counterRepo := infraRepo.NewCounterRepository(db)
	itemRepo := infraRepo.NewItemRepository(db)
	terminalRepo := infraRepo.NewTerminalRepository(db)
	deliveryRepo := infraRepo.NewDeliveryRepository(db)
	idempotencyRepo := infraRepo.NewIdempotencyRepository(db)

	// Strategy registries and receipt rendering
	taxes := tax.NewRegistry()
	payments := payment.NewRegistry()
	receipts := receipt.NewBuilder(cfg.App.Name)

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	// Services
	deliveryService := service.NewDeliveryService(deliveryRepo, publisher, cfg.Delivery)
	deliveryService.Start(ctx)

	cartService := service.NewCartService(cartRepo, txRepo, counterRepo, itemRepo, taxes, payments, deliveryService, receipts)
	transactionService := service.NewTransactionService(txRepo, statusRepo, counterRepo, deliveryService, receipts)
	terminalService := service.NewTerminalService(terminalRepo, counterRepo)
	itemService := service.NewItemService(itemRepo)

	// Handlers
	handlers := &routes.Handlers{
		Cart:        handler.NewCartHandler(cartService),
		Transaction: handler.NewTransactionHandler(transactionService),
		Delivery:    handler.NewDeliveryHandler(deliveryService),
		Terminal:    handler.NewTerminalHandler(terminalService),
		Item:        handler.NewItemHandler(itemService),
	}

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		TerminalRepo:    terminalRepo,
		IdempotencyRepo: idempotencyRepo,
		CacheBreaker:    breaker,
	})

	log.Printf("Starting %s on port %s", cfg.App.Name, cfg.App.Port)
	if err := router.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
