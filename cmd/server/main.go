package main

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/cache"
	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/config"
	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/fetcher"
	apphttp "github.com/w0lfzk1n/yt-dlp-WebGui/internal/http"
	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/progress"
	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/provider/ytdlp"
	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/repository/sqlite"
	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if file, err := openLogFile(cfg.Log.Dir); err != nil {
		logger.Warnf("log file disabled: %v", err)
	} else {
		logger.SetOutput(io.MultiWriter(os.Stdout, file))
		defer file.Close()
	}

	folders, err := config.LoadFolders(cfg)
	if err != nil {
		logger.Warnf("folders file: %v, using default paths", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	historyRepo := sqlite.NewHistoryRepository(db)
	if err := historyRepo.Init(ctx); err != nil {
		logger.Fatalf("init history repository: %v", err)
	}
	historyService := service.NewHistoryService(historyRepo)

	bus := progress.NewBus(logger)
	store := cache.NewStore(cfg.Download.CacheDir, logger, bus)
	prov := ytdlp.New(cfg.Provider.Binary, logger)

	manager := fetcher.NewManager(fetcher.Config{
		StagingRoot: cfg.Download.StagingDir,
		CacheDir:    cfg.Download.CacheDir,
		CookiesFile: cfg.Provider.CookiesFile,
		Retries:     cfg.Provider.Retries,
		PermUser:    cfg.Permissions.User,
		PermGroup:   cfg.Permissions.Group,
		Folders:     folders,
		Logger:      logger,
	}, prov, bus, store, historyService)

	if err := manager.Start(ctx); err != nil {
		logger.Fatalf("start manager: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(manager, bus, historyService, folders)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("🚀 listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	manager.Shutdown()

	logger.Info("bye")
}

// openLogFile creates a per-run log file named after the start time plus a
// short hash, so concurrent or rapid restarts never collide.
func openLogFile(dir string) (*os.File, error) {
	if dir == "" {
		return nil, fmt.Errorf("no log directory configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	now := time.Now()
	sum := md5.Sum([]byte(now.String()))
	name := fmt.Sprintf("%s--%s.log", now.Format("15-04--02-01-2006"), hex.EncodeToString(sum[:])[:6])

	file, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return file, nil
}
