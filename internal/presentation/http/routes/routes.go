package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/poscore/transaction-api/internal/config"
	domainRepo "github.com/poscore/transaction-api/internal/domain/repository"
	"github.com/poscore/transaction-api/internal/infrastructure/cache"
	"github.com/poscore/transaction-api/internal/presentation/http/handler"
	"github.com/poscore/transaction-api/internal/presentation/http/middleware"
	"github.com/poscore/transaction-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Cart        *handler.CartHandler
	Transaction *handler.TransactionHandler
	Delivery    *handler.DeliveryHandler
	Terminal    *handler.TerminalHandler
	Item        *handler.ItemHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	TerminalRepo    domainRepo.TerminalRepository
	IdempotencyRepo domainRepo.IdempotencyRepository
	CacheBreaker    *cache.CircuitBreaker
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint; the breaker state tells operators whether the
	// cart store is currently running on the durable fallback
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":        "ok",
			"service":       deps.Cfg.App.Name,
			"cache_breaker": deps.CacheBreaker.GetState().String(),
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Terminal registration is the only unauthenticated operation; it is
		// how a terminal obtains its API key in the first place.
		v1.POST("/terminals", h.Terminal.Register)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager, deps.TerminalRepo))

		rateLimiter := middleware.NewTerminalRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		protected.Use(rateLimiter.Middleware())
		protected.Use(middleware.Idempotency(middleware.IdempotencyConfig{Repo: deps.IdempotencyRepo}))

		registerCartRoutes(protected, h)
		registerTransactionRoutes(protected, h)
		registerDeliveryRoutes(protected, h)
		registerTerminalRoutes(protected, h)
		registerItemRoutes(protected, h)
	}

	return router
}

func registerCartRoutes(g *gin.RouterGroup, h *Handlers) {
	carts := g.Group("/carts")
	{
		carts.POST("", h.Cart.Create)
		carts.GET("/:id", h.Cart.Get)
		carts.POST("/:id/items", h.Cart.AddItem)
		carts.PATCH("/:id/items/:lineNo", h.Cart.UpdateItem)
		carts.DELETE("/:id/items/:lineNo", h.Cart.RemoveItem)
		carts.POST("/:id/discounts", h.Cart.AddDiscount)
		carts.POST("/:id/subtotal", h.Cart.Subtotal)
		carts.POST("/:id/resume", h.Cart.Resume)
		carts.POST("/:id/payments", h.Cart.AddPayment)
		carts.DELETE("/:id/payments/:seqNo", h.Cart.CancelPayment)
		carts.POST("/:id/bill", h.Cart.Bill)
		carts.POST("/:id/cancel", h.Cart.Cancel)
	}
}

func registerTransactionRoutes(g *gin.RouterGroup, h *Handlers) {
	transactions := g.Group("/transactions")
	{
		transactions.GET("", h.Transaction.List)
		transactions.GET("/:number", h.Transaction.Get)
		transactions.POST("/:number/void", h.Transaction.Void)
		transactions.POST("/:number/return", h.Transaction.Return)
	}
}

func registerDeliveryRoutes(g *gin.RouterGroup, h *Handlers) {
	deliveries := g.Group("/deliveries")
	{
		deliveries.GET("/:eventId", h.Delivery.Get)
		deliveries.PATCH("/:eventId", h.Delivery.Update)
	}
}

func registerTerminalRoutes(g *gin.RouterGroup, h *Handlers) {
	terminals := g.Group("/terminals")
	{
		terminals.GET("", h.Terminal.List)
		terminals.GET("/:id", h.Terminal.Get)
		terminals.GET("/:id/counters", h.Terminal.Counters)
		terminals.POST("/:id/business-close", h.Terminal.CloseBusiness)
		terminals.DELETE("/:id", h.Terminal.Delete)
	}
}

func registerItemRoutes(g *gin.RouterGroup, h *Handlers) {
	items := g.Group("/items")
	{
		items.POST("", h.Item.Create)
		items.GET("", h.Item.List)
		items.GET("/:code", h.Item.Get)
		items.PATCH("/:code", h.Item.Update)
		items.DELETE("/:code", h.Item.Delete)
	}
}
