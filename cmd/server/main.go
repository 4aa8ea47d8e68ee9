// Package main provides the world server binary: the authoritative game
// simulation behind a websocket endpoint.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/lorencia/mmoserver/internal/config"
	"github.com/lorencia/mmoserver/internal/game/rng"
	"github.com/lorencia/mmoserver/internal/game/zone"
	"github.com/lorencia/mmoserver/internal/observability"
	"github.com/lorencia/mmoserver/internal/server"
	"github.com/lorencia/mmoserver/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting world server",
		zap.String("http_addr", cfg.Server.Addr()),
		zap.Int("tick_rate", cfg.Game.TickRate),
	)

	// Connect to PostgreSQL for accounts, characters, and monster templates.
	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(dbStart)),
	)
	charRepo := postgres.NewCharacterRepository(pool.DB())
	templateRepo := postgres.NewTemplateRepository(pool.DB())

	templates, err := templateRepo.All(ctx)
	if err != nil {
		logger.Fatal("loading monster templates", zap.Error(err))
	}
	logger.Info("loaded monster templates", zap.Int("count", len(templates)))

	// Build the world from the zone spawn tables.
	src := rng.NewSource()
	zoneConfigs, err := zone.LoadConfigs(cfg.Game.MapsDir)
	if err != nil {
		logger.Fatal("loading zone configs", zap.Error(err))
	}
	zones := make(map[string]*zone.Zone, len(zoneConfigs))
	for _, zc := range zoneConfigs {
		z, err := zone.New(zc, templates, src)
		if err != nil {
			logger.Fatal("building zone", observability.ZoneField(zc.Name), zap.Error(err))
		}
		zones[z.Name] = z
		logger.Info("zone loaded",
			observability.ZoneField(z.Name),
			zap.Int("size", z.Size),
		)
	}

	orch, err := server.NewOrchestrator(server.Options{
		Logger:            logger,
		Store:             charRepo,
		Zones:             zones,
		DefaultMap:        cfg.Game.DefaultMap,
		TickInterval:      cfg.Game.TickInterval(),
		MaxPlayersPerZone: cfg.Game.MaxPlayersPerZone,
		Source:            src,
	})
	if err != nil {
		logger.Fatal("creating orchestrator", zap.Error(err))
	}

	httpSrv := server.NewHTTPServer(cfg.Server.Addr(), orch, pool, logger)

	// Registration order matters: shutdown runs in reverse, and the pool must
	// outlive the orchestrator so the final disconnect persistence writes land.
	lifecycle := server.NewLifecycle(logger)
	healthDone := make(chan struct{})
	lifecycle.Add("postgres", &server.FuncService{
		StartFn: func() error {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-healthDone:
					return nil
				case <-ticker.C:
					if err := pool.Health(ctx, 5*time.Second); err != nil {
						logger.Warn("database health check failed", zap.Error(err))
					}
				}
			}
		},
		StopFn: func() {
			close(healthDone)
			pool.Close()
		},
	})
	lifecycle.Add("orchestrator", &server.FuncService{
		StartFn: orch.Run,
		StopFn:  orch.Stop,
	})
	lifecycle.Add("http", httpSrv)

	logger.Info("world server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.Int("zones", len(zones)),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
