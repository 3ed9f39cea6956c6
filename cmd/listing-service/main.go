// cmd/listing-service/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"listing-service/internal/api"
	"listing-service/internal/catalog"
	"listing-service/internal/common/camunda"
	"listing-service/internal/common/config"
	"listing-service/internal/common/logger"
	"listing-service/internal/common/observability"
	"listing-service/internal/dashboard"
	"listing-service/internal/inquiry"
	"listing-service/internal/listing"
	"listing-service/internal/pagination"

	ni "listing-service/internal/workers/listings/notify-inquiry"
	ql "listing-service/internal/workers/listings/query-listings"
)

const shutdownTimeout = 10 * time.Second

func main() {
	zapLog := logger.New("info", "json")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog = logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})
	log.Info("Starting listing service", map[string]interface{}{"environment": cfg.App.Environment})

	gin.SetMode(cfg.Server.Mode)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		log.Warn("OpenTelemetry metrics exporter unavailable", map[string]interface{}{"error": err.Error()})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	infra, err := connectInfra(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("infrastructure setup failed", zap.Error(err))
	}
	defer infra.Close()

	// --- Browse pipeline ---
	normalizer := listing.NewNormalizer(listing.AliasesFromMap(cfg.Listings.FieldAliases), cfg.Listings.FallbackPhotos)
	window := pagination.WindowOptions{
		SiblingCount:  cfg.Listings.SiblingCount,
		BoundaryCount: cfg.Listings.BoundaryCount,
	}
	cat := catalog.NewService(newLoader(cfg, infra.repo, log), normalizer, infra.index, catalog.Config{
		Window:      window,
		SnapshotTTL: config.GetDuration(cfg.Listings.Source.SnapshotTTL),
	}, log)

	// --- Inquiries and dashboard ---
	// With the engine available, an inquiry starts the notification process
	// and the notify-inquiry worker sends the email.
	var serviceNotifier inquiry.Notifier = infra.notifier
	if infra.zeebe != nil && config.GetWorkerConfig(cfg, ni.TaskType).Enabled {
		serviceNotifier = ni.NewStarter(infra.zeebe, ni.DefaultProcessID)
	}
	inquiries := inquiry.NewService(infra.inquiries, infra.repo, serviceNotifier, log)
	dash := dashboard.NewService(infra.repo, inquiries, infra.publisher, normalizer, window, log)

	// --- Workers ---
	var workers []*camunda.CamundaWorker
	if infra.zeebe != nil {
		if wc := config.GetWorkerConfig(cfg, ql.TaskType); wc.Enabled {
			handler := ql.NewHandler(ql.LoadConfig(cfg), cat, dash, log)
			workers = append(workers, camunda.NewWorker(infra.zeebe.GetClient(), ql.TaskType,
				wc.MaxJobsActive, config.GetDuration(wc.Timeout), handler, log))
		}
		if wc := config.GetWorkerConfig(cfg, ni.TaskType); wc.Enabled {
			handler := ni.NewHandler(ni.LoadConfig(cfg), infra.inquiries, infra.repo, infra.notifier, log)
			workers = append(workers, camunda.NewWorker(infra.zeebe.GetClient(), ni.TaskType,
				wc.MaxJobsActive, config.GetDuration(wc.Timeout), handler, log))
		}
		log.Info("Workers registered", map[string]interface{}{"count": len(workers)})
	}

	// --- Warm-up ---
	if snap, err := cat.Refresh(ctx); err != nil {
		log.Warn("Initial listing load failed", map[string]interface{}{"error": err.Error()})
	} else {
		log.Info("Initial listing load", map[string]interface{}{"count": len(snap.Raw), "fallback": snap.Fallback})
	}
	if infra.syncer != nil {
		if n, err := infra.syncer.Reindex(ctx); err != nil {
			log.Warn("Search reindex failed", map[string]interface{}{"error": err.Error()})
		} else {
			log.Info("Search index rebuilt", map[string]interface{}{"documents": n})
		}
	}
	if infra.consumer != nil {
		go func() {
			if err := infra.consumer.Run(ctx); err != nil {
				log.Error("Event consumer stopped", map[string]interface{}{"error": err.Error()})
			}
		}()
	}

	// --- HTTP ---
	router := api.NewRouter(api.Deps{
		Catalog:       cat,
		Listings:      infra.repo,
		Dashboard:     dash,
		Inquiries:     inquiries,
		Favorites:     infra.favorites,
		Observability: obs,
		Checks:        infra.checks,
		PageSize:      cfg.Listings.PageSize,
	}, log)
	server := api.NewServer(api.ServerConfig{
		Address:      cfg.Server.Address,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}, router, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Error("HTTP server failed", map[string]interface{}{"error": err.Error()})
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown", map[string]interface{}{"error": err.Error()})
	}
	for _, w := range workers {
		w.Stop()
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		log.Warn("Observability shutdown", map[string]interface{}{"error": err.Error()})
	}
	log.Info("Listing service stopped", nil)
}
