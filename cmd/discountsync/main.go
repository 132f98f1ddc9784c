package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/text/language"

	"github.com/angelmondragon/discountsync/api/controllers"
	"github.com/angelmondragon/discountsync/api/routes"
	"github.com/angelmondragon/discountsync/internal/cron"
	"github.com/angelmondragon/discountsync/internal/generation"
	"github.com/angelmondragon/discountsync/internal/reconcile"
	"github.com/angelmondragon/discountsync/internal/remote"
	"github.com/angelmondragon/discountsync/internal/selection"
	"github.com/angelmondragon/discountsync/pkg/config"
	"github.com/angelmondragon/discountsync/pkg/i18n"
	"github.com/angelmondragon/discountsync/pkg/instance"
	"github.com/angelmondragon/discountsync/pkg/logger"
	"github.com/angelmondragon/discountsync/pkg/metrics"
	"github.com/angelmondragon/discountsync/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "discountsync"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "discountsync",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		persister   selection.Persister
		redisPinger controllers.Pinger
	)
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, cfg.Selection.Namespace, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		persister = selection.NewRedisPersister(redisClient, cfg.Selection.Context, cfg.Selection.TTL)
		redisPinger = redisClient
	} else {
		logg.Info(ctx, "redis not configured, selections kept in memory")
	}

	client, err := remote.NewFromConfig(cfg.Remote)
	if err != nil {
		logg.Error(ctx, "failed to create remote client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	tag, err := language.Parse(cfg.App.Language)
	if err != nil {
		logg.WarnErr(ctx, "unknown language, using english", err)
		tag = language.English
	}
	tr := i18n.NewCatalogTranslator(tag)
	if err := tr.Register(language.English, i18n.Defaults()); err != nil {
		logg.Error(ctx, "failed to register messages", err)
		os.Exit(1)
	}

	store, err := reconcile.NewStore(reconcile.StoreParams{
		Items:       client.Items(),
		Discounts:   client.Discounts(),
		Assignments: client.Assignments(),
		Confirmer:   reconcile.AlwaysConfirm,
		Translator:  tr,
		Logger:      logg,
		Metrics:     metrics.NewReconcileMetrics(registry),
		Generations: generation.NewController(),
	})
	if err != nil {
		logg.Error(ctx, "failed to create store", err)
		os.Exit(1)
	}

	sel := selection.New(cfg.Selection.Context, persister, logg)

	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		if err := store.Watch(ctx, sel); err != nil {
			logg.Error(ctx, "store watch stopped", err)
		}
	}()

	if cfg.Refresh.Interval > 0 {
		scheduler, err := cron.NewService(cron.ServiceParams{
			Logger:   logg,
			Jobs:     []cron.Job{cron.NewRefreshJob(store)},
			Interval: cfg.Refresh.Interval,
		})
		if err != nil {
			logg.Error(ctx, "failed to create refresh scheduler", err)
			os.Exit(1)
		}
		go func() {
			_ = scheduler.Run(ctx)
		}()
	}

	restored, err := sel.Restore(ctx)
	if err != nil {
		logg.WarnErr(ctx, "failed to restore selection", err)
	}
	if restored {
		scope, _ := sel.Current()
		logg.Info(logg.WithScopeID(ctx, scope), "selection restored")
	}

	addr := ":" + cfg.App.Port
	srvCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Deps{
			Store:       store,
			Selection:   sel,
			Translator:  tr,
			RedisPinger: redisPinger,
			Gatherer:    registry,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(srvCtx, "starting discountsync server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			logg.Error(srvCtx, "server stopped unexpectedly", err)
		}
		stop()
	}

	logg.Info(srvCtx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(srvCtx, "server shutdown failed", err)
	}
	<-watchDone
	store.Wait()
}
