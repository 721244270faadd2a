package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"blueprint"
	"blueprint/internal/api/handler/endpoints"
	"blueprint/internal/api/handler/middleware"
	"blueprint/internal/api/models"
	"blueprint/internal/api/service"
	"blueprint/internal/api/websocket"
	"blueprint/internal/canvas"
	"blueprint/internal/catalog"
	"blueprint/internal/realtime"
	"blueprint/pkg"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func main() {
	blueprint.InitConfig(".env")
	cfg := blueprint.GetConfig()
	gin.SetMode(gin.ReleaseMode)

	if cfg.Mode == "dev" {
		if err := blueprint.DB.AutoMigrate(&models.Flowchart{}); err != nil {
			blueprint.Logger.Fatal().Err(err).Msg("Failed to migrate database")
		}
		blueprint.Logger.Info().Msg("Database migrated successfully")
		gin.SetMode(gin.DebugMode)
	}

	types, err := catalog.Load(cfg.CatalogPath)
	pkg.AssertNoError(err, "Failed to load node catalog")
	registry := catalog.NewRegistry(types)
	if missing := catalog.MissingAdapters(registry); len(missing) > 0 {
		blueprint.Logger.Warn().Strs("adapters", missing).Msg("Catalog lacks adapter node types the type engine suggests")
	}

	settings, err := canvas.LoadSettings(cfg.EditorConfig)
	pkg.AssertNoError(err, "Failed to load editor settings")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	router, err := graceful.Default(graceful.WithAddr(cfg.ApiPort))
	if err != nil {
		panic(err)
	}
	defer router.Close()

	router.Use(middleware.RequestLogger(blueprint.Logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	var bus *realtime.Bus
	if cfg.NatsConfig.URL != "" {
		bus, err = realtime.NewBus(cfg.NatsConfig.URL, cfg.NatsConfig.TenantID, blueprint.Logger)
		pkg.AssertNoError(err, "Failed to connect to NATS")
		defer bus.Close()
	}

	flowchartService := service.NewFlowchartService(registry)
	hub := websocket.NewHub(registry, settings, blueprint.Logger)
	processor := websocket.NewMessageProcessor(flowchartService, bus, blueprint.Logger)

	initAPI(router, registry, flowchartService, hub, processor)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		blueprint.Logger.Info().Msg("WebSocket hub started")
		return hub.Run(ctx)
	})
	if cfg.CatalogPath != "" {
		g.Go(func() error {
			return catalog.Watch(ctx, cfg.CatalogPath, registry, blueprint.Logger)
		})
	}
	if bus != nil {
		if err := bus.Subscribe(func(ev realtime.ChangeEvent) {
			hub.ApplyRemote(ev.FlowchartID, ev.Changes)
		}); err != nil {
			blueprint.Logger.Fatal().Err(err).Msg("Failed to subscribe to flowchart changes")
		}
	}
	g.Go(func() error {
		blueprint.Logger.Debug().Msgf("Starting blueprint API on port %s", cfg.ApiPort)
		if err := router.RunWithContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		blueprint.Logger.Fatal().Err(err).Msg("API stopped")
	}
}

func initAPI(router *graceful.Graceful, registry *catalog.Registry, flowcharts *service.FlowchartService, hub *websocket.Hub, processor *websocket.MessageProcessor) {
	endpoints.TypeHandler(router)
	endpoints.NodeTypeHandler(router, registry)
	endpoints.FlowchartHandler(router, flowcharts, hub)
	endpoints.WebSocketHandler(router, hub, processor, flowcharts)
}
