package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Simplici0/printquote/internal/catalog"
	"github.com/Simplici0/printquote/internal/config"
	"github.com/Simplici0/printquote/internal/db"
	"github.com/Simplici0/printquote/internal/logger"
	"github.com/Simplici0/printquote/internal/metrics"
	"github.com/Simplici0/printquote/internal/migrations"
	"github.com/Simplici0/printquote/internal/pricing"
	"github.com/Simplici0/printquote/internal/quotes"
	"github.com/Simplici0/printquote/internal/rates"
	"github.com/Simplici0/printquote/internal/seed"
)

const serviceName = "printquote"

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "server stopped", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logg *logger.Logger) error {
	database, err := db.OpenContext(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if cfg.AutoMigrate || cfg.IsDev() {
		applied, err := migrations.Up(ctx, database)
		if err != nil {
			return err
		}
		logg.Info(logg.WithField(ctx, "applied", applied), "migrations.up")
	}

	rt := rates.Default()
	if cfg.RatesPath != "" {
		if rt, err = rates.Load(cfg.RatesPath); err != nil {
			return err
		}
	}
	engine, err := pricing.New(rt)
	if err != nil {
		return err
	}

	if cfg.Seed {
		stats, err := seed.Run(ctx, database, seed.Config{
			Devices:  catalog.DefaultDevices(),
			Managers: catalog.DefaultManagers(),
		})
		if err != nil {
			return err
		}
		logg.Info(logg.WithFields(ctx, map[string]any{
			"inserts": stats.Inserts,
			"skipped": stats.Skipped,
		}), "seed.complete")
	}

	store, closeStore, err := openStore(ctx, cfg, database, logg)
	if err != nil {
		return err
	}
	defer closeStore()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	repo := catalog.NewRepository(database, rt.DeviceMarkups)
	srv := &server{
		log:      logg,
		db:       database,
		catalog:  repo,
		quotes:   quotes.NewService(engine, store, repo, metrics.NewQuoteMetrics(registry), logg),
		gatherer: registry,
		now:      func() time.Time { return time.Now().UTC() },
	}

	addr := ":" + cfg.Port
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"env":         cfg.AppEnv,
			"addr":        addr,
			"quote_store": cfg.QuoteStore,
			"rates":       rt.Version,
		}), "starting api server")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg config.Config, database *sql.DB, logg *logger.Logger) (quotes.Store, func(), error) {
	if cfg.QuoteStore != config.StoreRedis {
		return quotes.NewSQLStore(database), func() {}, nil
	}
	client, err := quotes.NewRedisClient(ctx, cfg.RedisURL, logg)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}
	return quotes.NewRedisStore(client), closeFn, nil
}
