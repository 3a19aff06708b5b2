package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"applestore/internal/background"
	"applestore/internal/cache"
	"applestore/internal/config"
	"applestore/internal/http/handlers"
	applog "applestore/internal/log"
	"applestore/internal/metrics"
	"applestore/internal/notify"
	"applestore/internal/rates"
	"applestore/internal/repos"
	"applestore/internal/services"
)

func serveCmd(c *cli.Context) error {
	cfg, done, err := setup()
	if err != nil {
		return err
	}
	defer done()

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	views := viewCache(ctx, cfg)

	// Missing secrets or an unreachable database leave db nil: the store
	// then runs offline on the sample catalog.
	var db *sqlx.DB
	if cfg.PersistenceEnabled() {
		db, err = openDB(cfg)
		if err != nil {
			applog.Error(nil, "db.open.fail", err, map[string]any{"driver": cfg.DB.Driver})
		} else {
			defer db.Close()
			if cfg.DB.AutoMigrate {
				if err := repos.Migrate(db); err != nil {
					applog.Error(nil, "db.migrate.fail", err, nil)
				}
			}
		}
	} else {
		applog.Warn(nil, "db.disabled", nil, map[string]any{"reason": "DB_URL or DB_ACCESS_KEY missing"})
	}

	gw := repos.NewGateway(db, views, m)
	provider := rates.NewBluelytics(cfg.Rates.URL, cfg.Rates.Timeout, m)
	store := services.NewCatalogStore(gw, services.WithRates(provider), services.WithMetrics(m), services.WithViews(views))
	defer store.Close()
	store.Refresh(ctx)

	sinks := []notify.Sink{notify.LogSink{}}
	if len(cfg.Kafka.Brokers) > 0 {
		ks := notify.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer ks.Close()
		sinks = append(sinks, ks)
	}
	dispatcher := notify.NewDispatcher(cfg.Notify.QueueSize, m, sinks...)
	defer dispatcher.Close()

	monitor := services.NewLowStockMonitor(store, gw, dispatcher, m)
	tasks := background.NewBackgroundTasks(monitor, store, cfg.LowStock.Settle, cfg.LowStock.Interval, cfg.Rates.RefreshInterval)
	tasks.StartAll(ctx)

	app := newApp(cfg, store, monitor, views, reg)

	errCh := make(chan error, 1)
	go func() { errCh <- app.Listen(":" + cfg.Port) }()
	applog.Info(nil, "server.start", map[string]any{"port": cfg.Port, "offline": store.Offline()})

	select {
	case err = <-errCh:
	case <-ctx.Done():
		applog.Info(nil, "server.shutdown", nil)
		err = app.ShutdownWithTimeout(10 * time.Second)
	}
	stop()
	tasks.Wait()
	return err
}

func viewCache(ctx context.Context, cfg config.Config) cache.Views {
	if cfg.Views.RedisURL == "" {
		return cache.NewMemory(cfg.Views.TTL)
	}
	r, err := cache.ConnectRedis(ctx, cfg.Views.RedisURL, cfg.Views.TTL)
	if err != nil {
		applog.Warn(nil, "views.redis.fail", err, nil)
		return cache.NewMemory(cfg.Views.TTL)
	}
	return r
}

func newApp(cfg config.Config, store *services.CatalogStore, monitor *services.LowStockMonitor, views cache.Views, reg *prometheus.Registry) *fiber.App {
	engine := handlers.NewViews("./web/templates")
	engine.Reload(cfg.Env == "development")

	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    1 << 20,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/healthz" || c.Path() == "/metrics"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.SendStatus(fiber.StatusTooManyRequests)
		},
	}))

	handlers.Register(app, handlers.NewDeps(store, monitor, views), cfg.Admin.Token)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true, "offline": store.Offline()})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Página no encontrada"})
	})
	return app
}
