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

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/joao-fontenele/coffeeshop/internal/cart"
	"github.com/joao-fontenele/coffeeshop/internal/catalog"
	"github.com/joao-fontenele/coffeeshop/internal/config"
	"github.com/joao-fontenele/coffeeshop/internal/messaging"
	"github.com/joao-fontenele/coffeeshop/internal/orders"
	"github.com/joao-fontenele/coffeeshop/internal/session"
	"github.com/joao-fontenele/coffeeshop/internal/telemetry"
	"github.com/joao-fontenele/coffeeshop/internal/users"
	"github.com/joao-fontenele/coffeeshop/internal/web"
)

const serviceName = "coffeeshop"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(logger); err != nil {
		logger.Error("shop exited", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Require("POSTGRES_URL"); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.OTLPEndpoint, serviceName, cfg.ServiceVersion)
	if err != nil {
		return err
	}
	defer shutdownWithTimeout(logger, "tracer", shutdownTracer)

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(serviceName, cfg.ServiceVersion)
	if err != nil {
		return err
	}
	defer shutdownWithTimeout(logger, "meter", shutdownMeter)

	metrics, err := telemetry.NewShopMetrics(otel.Meter(serviceName))
	if err != nil {
		return err
	}

	db, err := telemetry.OpenDB(ctx, cfg.PostgresURL)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	catalogSvc := catalog.NewService(catalog.NewItemRepository(db), logger)
	if err := catalogSvc.Seed(ctx, catalog.DefaultItems()); err != nil {
		return err
	}

	var publisher orders.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer := messaging.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() { _ = producer.Close() }()
		publisher = producer
		logger.Info("publishing order events", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	userSvc := users.NewService(users.NewUserRepository(db), logger)
	cartSvc := cart.NewService(cart.NewCartRepository(db), catalogSvc, metrics, logger)
	orderSvc := orders.NewService(orders.NewOrderRepository(db), publisher, metrics, logger)
	sessions := session.NewManager(session.NewSessionRepository(db), cfg.Session.TTL, cfg.Session.SecureCookies, logger)

	pages, err := web.NewHandler(web.Deps{
		Catalog:      catalogSvc,
		Users:        userSvc,
		Carts:        cartSvc,
		Orders:       orderSvc,
		Sessions:     sessions,
		DB:           db,
		CatalogLimit: cfg.CatalogLimit,
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	api := orders.NewHandler(orderSvc, logger)

	mux := http.NewServeMux()
	pages.Register(mux)
	pages.MountAPI(mux, "GET /api/orders/active", api.HandleListActive)
	pages.MountAPI(mux, "POST /api/orders/{id}/complete", api.HandleComplete)
	mux.Handle("GET /metrics", metricsHandler)

	if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))
	} else {
		logger.Warn("static directory not found, assets disabled", "dir", cfg.StaticDir)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler: otelhttp.NewHandler(web.Middleware(logger)(mux), serviceName,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting shop", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			if err := sessions.Sweep(gctx); err != nil {
				logger.Error("session sweep failed", "error", err)
			}
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func shutdownWithTimeout(logger *slog.Logger, name string, shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logger.Error("telemetry shutdown failed", "provider", name, "error", err)
	}
}
