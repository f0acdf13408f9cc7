package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/aaravmahajanofficial/grocery-order-platform/docs"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/access"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/api/handlers"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/api/middleware"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/cache"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/config"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/health"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/metrics"
	repository "github.com/aaravmahajanofficial/grocery-order-platform/internal/repositories"
	service "github.com/aaravmahajanofficial/grocery-order-platform/internal/services"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/tracing"
	"github.com/shopspring/decimal"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

//	@title						Grocery Order Platform API
//	@version					1.0
//	@description				Cart and order lifecycle for B2B grocery ordering.
//	@host						localhost:8080
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the JWT.
func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	ctx := context.Background()

	shutdownTracing, err := tracing.Init(ctx, cfg.Otel, cfg.Env)
	if err != nil {
		slog.Error("❌ Error initializing tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Database setup
	repos, err := repository.New(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if err := repos.Close(); err != nil {
			slog.Error("⚠️ Error closing database connection", slog.String("error", err.Error()))
		} else {
			slog.Info("✅ Database connection closed")
		}
	}()

	if err := repository.RunMigrations(repos.DB); err != nil {
		slog.Error("❌ Error applying migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Redis setup
	redisClient, err := repository.NewRedisClient(ctx, cfg.RedisConnect)
	if err != nil {
		slog.Error("❌ Error accessing the redis instance", slog.String("error", err.Error()))
		os.Exit(1)
	}

	orderCache := cache.NewRedisCache(redisClient, &cfg.Cache)
	defer orderCache.Close()

	productRepo := repository.NewProductRepo(repos.DB)
	cartRepo := repository.NewCartRepo(repos.DB)
	orderRepo := repository.NewOrderRepo(repos.DB)
	rateLimiter := repository.NewRateLimitRepo(redisClient, cfg.RateConfig)

	pricing := service.NewPricingEngine(decimal.NewFromFloat(cfg.Orders.DeliveryCharges))
	cartService := service.NewCartService(cartRepo, productRepo, pricing, cfg.Orders.MaxLineQuantity)
	orderService := service.NewOrderService(orderRepo, productRepo, rateLimiter, orderCache, cfg.Cache.DefaultTTL, pricing, cfg.Orders)

	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService)
	authMiddleware := middleware.NewAuthMiddleware([]byte(cfg.Security.JWTKey))

	healthHandler, err := health.NewHealthHandler(cfg, &health.Endpoints{DB: repos.DB})
	if err != nil {
		slog.Error("❌ Error creating health checks", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("storage initialized", slog.String("env", cfg.Env), slog.String("version", "1.0.0"))

	// Setup router
	routerMux := http.NewServeMux()

	route := func(pattern string, h http.HandlerFunc, scopes ...access.Scope) {
		routerMux.Handle(pattern, metrics.Instrument(pattern, authMiddleware.Protect(h, scopes...)))
	}

	route("GET /api/v1/cart", cartHandler.GetCart(), access.ScopeCartManage)
	route("DELETE /api/v1/cart", cartHandler.ClearCart(), access.ScopeCartManage)
	route("GET /api/v1/cart/count", cartHandler.GetCount(), access.ScopeCartManage)
	route("POST /api/v1/cart/items", cartHandler.AddItem(), access.ScopeCartManage)
	route("PUT /api/v1/cart/items/{productId}", cartHandler.UpdateQuantity(), access.ScopeCartManage)
	route("DELETE /api/v1/cart/items/{productId}", cartHandler.RemoveItem(), access.ScopeCartManage)

	route("POST /api/v1/orders", orderHandler.CreateOrder(), access.ScopeOrderPlace)
	route("GET /api/v1/orders", orderHandler.ListOrders(), access.ScopeOrderReadOwn)
	route("GET /api/v1/orders/{id}", orderHandler.GetOrder(), access.ScopeOrderReadOwn, access.ScopeOrderFulfil, access.ScopeOrderReadAny)
	route("PUT /api/v1/orders/{id}/status", orderHandler.UpdateOrderStatus(), access.ScopeOrderCancelOwn)
	route("PUT /api/v1/orders/{id}/cancel", orderHandler.CancelOrder(), access.ScopeOrderCancelOwn)

	route("GET /api/v1/orders/admin", orderHandler.ListAdminOrders(), access.ScopeOrderFulfil, access.ScopeOrderReadAny)
	route("PUT /api/v1/orders/admin/{id}/status", orderHandler.UpdateAdminOrderStatus(), access.ScopeOrderFulfil)
	route("PUT /api/v1/orders/admin/{id}/payment-status", orderHandler.UpdatePaymentStatus(), access.ScopeOrderFulfil)

	routerMux.Handle("GET /health", healthHandler.Handler())
	routerMux.Handle("GET /metrics", metrics.Handler())
	routerMux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = middleware.Logging(handler)
	handler = otelhttp.NewHandler(handler, "grocery-order-platform")

	// Setup http server
	server := http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("❌ Failed to start server", slog.String("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("⚠️ Error flushing traces", slog.String("error", err.Error()))
	}
}
