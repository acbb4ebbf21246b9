package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/app"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/config"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/coupon"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/handlers"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/metrics"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/middleware"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/quantity"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/repository"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/internal/service"
	"github.com/Lixing-Zhang/kart-challenge/order-configurator/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const version = "1.0.0"

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	log.Info().
		Str("host", cfg.Server.Host).
		Str("port", cfg.Server.Port).
		Str("log_level", cfg.Log.Level).
		Msg("starting order configurator server")

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTP(cfg.Metrics.Namespace, nil, registry)
	domainMetrics := metrics.NewDomain(cfg.Metrics.Namespace, registry)

	// Catalog
	productRepo, err := loadCatalog(cfg.Catalog)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load catalog")
	}
	productService := service.NewProductService(productRepo, log.With().Str("component", "catalog").Logger())
	products, err := productService.ListProducts(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to list catalog")
	}

	// Promo codes are optional
	var couponValidator *coupon.Validator
	if cfg.Coupon.Enabled() {
		couponValidator, err = loadCoupons(cfg.Coupon, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load coupon data")
		}
	} else {
		log.Warn().Msg("no coupon lists configured, promo codes are not checked")
	}

	orderService := service.NewOrderService(
		repository.NewInMemoryOrderRepository(),
		orderCoupons(couponValidator),
		domainMetrics,
		log.With().Str("component", "orders").Logger(),
	)

	menuRange := quantity.Range{Min: cfg.Quantity.Min, Max: cfg.Quantity.Max, Default: cfg.Quantity.Default}
	cartRange := quantity.Range{Min: cfg.Quantity.Min, Max: cfg.Quantity.CartMax, Default: cfg.Quantity.Min}
	shop, err := app.New(products, app.Config{
		MenuRange:   menuRange,
		CartRange:   cartRange,
		DeliveryFee: cfg.Cart.DeliveryFee,
		Orders:      orderService,
		Metrics:     domainMetrics,
		Logger:      log.With().Str("component", "app").Logger(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build menu")
	}
	log.Info().Int("products", len(products)).Msg("menu ready")

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(log, version)
	productHandler := handlers.NewProductHandler(shop, log)
	cartHandler := handlers.NewCartHandler(shop, log)
	orderHandler := handlers.NewOrderHandler(shop, log)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Metrics(httpMetrics))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "api_key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler.ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		// Menu
		r.Get("/product", productHandler.ListProducts)
		r.Route("/product/{productId}", func(r chi.Router) {
			r.Get("/", productHandler.GetProduct)
			r.Post("/toggle", productHandler.ToggleProduct)
			r.Put("/options", productHandler.UpdateOptions)
			r.Put("/quantity", productHandler.SetQuantity)
			r.Post("/quantity/increment", productHandler.IncrementQuantity)
			r.Post("/quantity/decrement", productHandler.DecrementQuantity)
			r.Post("/cart", productHandler.AddToCart)
		})

		// Cart
		r.Get("/cart", cartHandler.GetCart)
		r.Post("/cart/toggle", cartHandler.ToggleCart)
		r.Route("/cart/items/{itemId}", func(r chi.Router) {
			r.Delete("/", cartHandler.RemoveItem)
			r.Put("/quantity", cartHandler.SetItemQuantity)
			r.Post("/quantity/increment", cartHandler.IncrementItem)
			r.Post("/quantity/decrement", cartHandler.DecrementItem)
		})

		// Order submission requires an API key
		r.With(middleware.APIKeyAuth(cfg.Auth)).Post("/order", orderHandler.CreateOrder)

		if couponValidator != nil {
			couponHandler := handlers.NewCouponHandler(couponValidator, log)
			r.Get("/coupon/stats", couponHandler.GetStats)
			r.Get("/coupon/{couponCode}", couponHandler.ValidateCoupon)
		}
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("address", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped gracefully")
}

func loadCatalog(cfg config.CatalogConfig) (*repository.InMemoryProductRepository, error) {
	if cfg.File == "" {
		return repository.NewInMemoryProductRepository()
	}
	return repository.LoadCatalogFile(cfg.File)
}

func loadCoupons(cfg config.CouponConfig, log zerolog.Logger) (*coupon.Validator, error) {
	log.Info().Int("files", len(cfg.Files)).Int("urls", len(cfg.URLs)).Msg("loading coupon data...")

	v := coupon.NewValidator(coupon.WithExpectedCodes(cfg.ExpectedCodes))
	ctx := context.Background()

	if err := v.Load(ctx, cfg.Files, cfg.URLs); err != nil {
		return nil, err
	}

	stats := v.GetStats()
	log.Info().
		Interface("total_files", stats["total_files"]).
		Interface("total_coupons", stats["total_coupons"]).
		Msg("coupon data loaded successfully")
	return v, nil
}

// orderCoupons keeps a nil *coupon.Validator from becoming a non-nil
// interface value.
func orderCoupons(v *coupon.Validator) service.CouponValidator {
	if v == nil {
		return nil
	}
	return v
}
