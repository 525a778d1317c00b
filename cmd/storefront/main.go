package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cucharaita/storefront/internal/cache"
	"github.com/cucharaita/storefront/internal/cart"
	"github.com/cucharaita/storefront/internal/catalog"
	"github.com/cucharaita/storefront/internal/checkout"
	"github.com/cucharaita/storefront/internal/config"
	"github.com/cucharaita/storefront/internal/coupon"
	"github.com/cucharaita/storefront/internal/events"
	h "github.com/cucharaita/storefront/internal/http"
	"github.com/cucharaita/storefront/internal/opinions"
	"github.com/cucharaita/storefront/internal/productlink"
	"github.com/cucharaita/storefront/internal/store/cartdb"
	"github.com/cucharaita/storefront/internal/store/sqlstore"
	"github.com/cucharaita/storefront/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

func main() {
	envFile := flag.String("config", ".env", "optional env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logger.L().Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New(os.Stdout, cfg.ServiceName, cfg.Env, cfg.LogLevel)
	logger.SetDefault(log)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	ctx := context.Background()

	// Relational store: catalog, coupons, calendar, opinions
	dsn := cfg.PostgresDSN()
	if cfg.DBDriver == "sqlite" {
		dsn = cfg.SQLitePath
	}
	store, err := sqlstore.Open(ctx, cfg.DBDriver, dsn)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("failed to open database")
	}
	defer store.Close()
	if err := store.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	log.Info().Str("driver", cfg.DBDriver).Msg("database ready")

	// Cart documents
	mongoDB, err := cartdb.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err := mongoDB.Client().Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}()
	cartRepo := cartdb.NewMongoRepository(mongoDB)
	if err := cartdb.CreateIndexes(ctx, cartRepo); err != nil {
		log.Fatal().Err(err).Msg("failed to create cart indexes")
	}
	log.Info().Str("uri", cfg.MongoURI).Msg("connected to MongoDB")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	redisCache := cache.NewRedisCache(redisClient, cfg.CacheTTL)

	publisher := events.NewPublisher(events.NewWriter(cfg.OrdersTopic, cfg.Brokers()...), nil)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("kafka writer close failed")
		}
	}()

	links, err := productlink.New(cfg.LinkAlphabet, cfg.LinkMinLength)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid product link settings")
	}

	catalogService := catalog.NewService(store, redisCache, nil)
	coupons := coupon.NewEvaluator(store)
	cartService := cart.NewService(cartRepo, redisCache, catalogService, coupons)
	checkoutService := checkout.NewService(cartService, store, coupons, publisher, checkout.Config{
		Phone:          cfg.WhatsAppPhone,
		DepositPercent: cfg.DepositPercent,
		LeadDays:       cfg.LeadDays,
		Location:       cfg.Location(),
	})
	opinionService := opinions.NewService(store)

	router := h.NewRouter(h.Handlers{
		Catalog:        h.NewCatalogHandler(catalogService, links, cfg.RequestTimeout),
		Cart:           h.NewCartHandler(cartService, links, cfg.RequestTimeout),
		Checkout:       h.NewCheckoutHandler(checkoutService, cfg.RequestTimeout),
		Opinions:       h.NewOpinionsHandler(opinionService, cfg.RequestTimeout),
		RequestTimeout: cfg.RequestTimeout,
		SecureCookies:  cfg.SecureCookies,
		MaxBodyBytes:   cfg.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, cfg.ServiceName),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("storefront starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited")
}
