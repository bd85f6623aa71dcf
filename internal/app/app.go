package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/fitpilot/fitpilot-backend/internal/data/cache"
	"github.com/fitpilot/fitpilot-backend/internal/data/db"
	httpserver "github.com/fitpilot/fitpilot-backend/internal/http"
	"github.com/fitpilot/fitpilot-backend/internal/observability"
	"github.com/fitpilot/fitpilot-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Services Services
	Server   *httpserver.Server

	dbService    *db.Service
	planCache    cache.Cache
	otelShutdown func(context.Context) error
}

func New(ctx context.Context, log *logger.Logger) (*App, error) {
	log.Info("Loading configuration...")
	cfg, err := LoadConfig(log)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	dbService, err := db.NewService(log, db.ConfigFromEnv())
	if err != nil {
		_ = otelShutdown(ctx)
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := db.AutoMigrateAll(dbService.DB()); err != nil {
		_ = dbService.Close()
		_ = otelShutdown(ctx)
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	theDB := dbService.DB()

	planCache, err := newPlanCache(log)
	if err != nil {
		_ = dbService.Close()
		_ = otelShutdown(ctx)
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(theDB, log, cfg, reposet, planCache)
	if err != nil {
		_ = planCache.Close()
		_ = dbService.Close()
		_ = otelShutdown(ctx)
		return nil, err
	}
	handlerset := wireHandlers(log, theDB, planCache, serviceset)
	mw := wireMiddleware(log, serviceset)

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Server:       wireServer(log, cfg, handlerset, mw),
		dbService:    dbService,
		planCache:    planCache,
		otelShutdown: otelShutdown,
	}, nil
}

// newPlanCache uses Redis when REDIS_ADDR is set and an in-process cache otherwise.
func newPlanCache(log *logger.Logger) (cache.Cache, error) {
	redisCfg := cache.RedisConfigFromEnv()
	if redisCfg.Addr == "" {
		log.Warn("REDIS_ADDR not set, plans are cached in process memory")
		return cache.NewMemoryCache(), nil
	}
	c, err := cache.NewRedisCache(log, redisCfg)
	if err != nil {
		return nil, fmt.Errorf("init plan cache: %w", err)
	}
	return c, nil
}

// Run serves HTTP and, when enabled, the nightly batch until ctx is cancelled
// or one of them fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + a.Cfg.Port
		a.Log.Info("HTTP server listening", "addr", addr)
		return a.Server.Run(gctx, addr)
	})
	if a.Cfg.DailyPlanEnabled {
		g.Go(func() error {
			return a.Services.DailyPlan.Start(gctx)
		})
	} else {
		a.Log.Info("daily plan batch disabled")
	}
	return g.Wait()
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.planCache != nil {
		if err := a.planCache.Close(); err != nil {
			a.Log.Warn("close plan cache", "error", err)
		}
	}
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			a.Log.Warn("close database", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown", "error", err)
		}
	}
	a.Log.Sync()
}
