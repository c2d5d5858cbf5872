package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"productcatalog/internal/catalog"
	"productcatalog/internal/events"
	"productcatalog/internal/images"
	"productcatalog/internal/logging"
	"productcatalog/internal/server"
	"productcatalog/pkg/utils"
)

func main() {
	configFile := flag.String("config", "", "config file (default ./.productcatalog.yaml or ~/.productcatalog.yaml)")
	flag.Parse()

	cfg, err := utils.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	gin.SetMode(gin.ReleaseMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	imgStore := images.NewStore(cfg.ImagesDir, logger)
	if created, err := imgStore.EnsureDir(); err != nil {
		logger.Fatal("image directory unusable", zap.String("dir", cfg.ImagesDir), zap.Error(err))
	} else if created {
		logger.Info("created image directory", zap.String("dir", cfg.ImagesDir))
	}

	hub := events.NewHub(logger)

	var lister *images.CachedLister
	if cfg.WatchImages {
		lister = images.NewCachedLister(cfg.ImagesDir, logger)
		lister.OnChange(func() {
			hub.BroadcastJSON(events.New(events.TypeImagesChanged, 0))
		})
		if err := lister.Start(ctx); err != nil {
			logger.Warn("image watcher disabled", zap.Error(err))
		} else {
			imgStore.Lister = lister
		}
	}

	store := catalog.NewStore(cfg.CatalogPath)
	if n, err := store.Reload(); err != nil {
		// keep serving an empty catalog; POST /api/catalog/reload retries
		logger.Error("load catalog failed", zap.String("path", cfg.CatalogPath), zap.Error(err))
	} else {
		logger.Info("catalog loaded", zap.String("path", cfg.CatalogPath), zap.Int("products", n))
	}

	router := server.NewRouter(server.Deps{
		Catalog:     store,
		Images:      imgStore,
		Hub:         hub,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
	})

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("HTTP API server listening",
			zap.String("addr", httpSrv.Addr),
			zap.String("images_dir", cfg.ImagesDir),
			zap.String("catalog", cfg.CatalogPath),
		)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown error", zap.Error(err))
	}
	hub.Close()
	if lister != nil {
		lister.Stop()
	}

	wg.Wait()
	logger.Info("server stopped")
}
