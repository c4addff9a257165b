package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ventahub/ventahub-backend/api/routes"
	channelsvc "github.com/ventahub/ventahub-backend/internal/channels"
	"github.com/ventahub/ventahub-backend/internal/channels/adapters"
	inventorysvc "github.com/ventahub/ventahub-backend/internal/inventory"
	"github.com/ventahub/ventahub-backend/internal/memberships"
	ordersvc "github.com/ventahub/ventahub-backend/internal/orders"
	"github.com/ventahub/ventahub-backend/internal/products"
	syncsvc "github.com/ventahub/ventahub-backend/internal/sync"
	"github.com/ventahub/ventahub-backend/pkg/config"
	"github.com/ventahub/ventahub-backend/pkg/db"
	"github.com/ventahub/ventahub-backend/pkg/logger"
	"github.com/ventahub/ventahub-backend/pkg/metrics"
	"github.com/ventahub/ventahub-backend/pkg/migrate"
	"github.com/ventahub/ventahub-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	syncMetrics := metrics.NewSyncMetrics(registry)

	membershipsRepo := memberships.NewRepository(dbClient.DB())
	productsRepo := products.NewRepository(dbClient.DB())
	inventoryRepo := inventorysvc.NewRepository(dbClient.DB())
	ordersRepo := ordersvc.NewRepository(dbClient.DB())
	channelsRepo := channelsvc.NewRepository(dbClient.DB())
	syncLogs := syncsvc.NewLogRepository(dbClient.DB())

	adapterRegistry := adapters.NewRegistry(
		adapters.NewShopifyAdapter(cfg.Sync.ShopifyAPIVersion, adapters.WithShopifyBaseURL(cfg.Sync.ShopifyBaseURL)),
		adapters.NewSiigoAdapter(adapters.WithSiigoBaseURL(cfg.Sync.SiigoBaseURL)),
	)

	ordersService, err := ordersvc.NewService(ordersvc.ServiceParams{
		Repo:        ordersRepo,
		Tx:          dbClient,
		Memberships: membershipsRepo,
		Products:    productsRepo,
		Stock:       ordersvc.NewInventoryStore(),
		Audit:       syncLogs,
		Metrics:     syncMetrics,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	inventoryService, err := inventorysvc.NewService(inventoryRepo, productsRepo, membershipsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	channelsService, err := channelsvc.NewService(channelsRepo, membershipsRepo, adapterRegistry, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create channels service", err)
		os.Exit(1)
	}

	syncService, err := syncsvc.NewService(syncsvc.ServiceParams{
		Channels:        channelsRepo,
		Memberships:     membershipsRepo,
		Registry:        adapterRegistry,
		Importer:        syncsvc.NewImporter(dbClient.DB()),
		Logs:            syncLogs,
		Locker:          redisClient,
		Products:        productsRepo,
		ProductResolver: productsRepo,
		Stock:           inventoryRepo,
		Metrics:         syncMetrics,
		Logger:          logg,
		Config: syncsvc.Config{
			MaxConcurrency: cfg.Sync.MaxConcurrency,
			ChannelTimeout: cfg.Sync.ChannelTimeout,
			LockTTL:        cfg.Sync.LockTTL,
		},
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create sync service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, registry, routes.Services{
			Orders:    ordersService,
			Inventory: inventoryService,
			Channels:  channelsService,
			Sync:      syncService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
