package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"linkvid/internal/browser"
	"linkvid/internal/config"
	"linkvid/internal/download"
	"linkvid/internal/handlers"
	"linkvid/internal/mediastore"
	"linkvid/internal/pagemeta"
	"linkvid/internal/scrape"
	"linkvid/internal/service"
	"linkvid/internal/storage"
	"linkvid/internal/version"
	"linkvid/internal/worker"
)

func main() {
	// Load .env if present, skip otherwise
	_ = godotenv.Load()

	cfg := config.Load()
	logger := log.Default()

	db, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	jobs := storage.NewJobRepository(db)
	metadata := storage.NewMetadataRepository(db)
	hashtags := storage.NewHashtagRepository(db)

	newSession := func() browser.Session {
		return browser.NewRodSession(browser.Options{
			BrowserPath: cfg.BrowserPath,
			Headless:    cfg.Headless,
			Proxy:       cfg.Proxy,
			Logger:      logger,
		})
	}

	store := mediastore.NewStore(cfg.MediaDir)

	orch := service.NewOrchestrator(
		jobs, metadata, hashtags,
		pagemeta.NewExtractor(&http.Client{Timeout: cfg.FetchTimeout}),
		scrape.NewProber(logger),
		scrape.NewResolver(cfg.WaitTimeout, cfg.RenderDelay, logger),
		download.NewFetcher(nil, logger),
		store,
		newSession,
		cfg.WaitTimeout,
		logger,
	)

	w := worker.NewWorker(jobs, orch.Process, cfg.WorkerInterval, logger)
	w.Start(context.Background())
	defer w.Stop()

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	h := handlers.NewVideoHandler(orch, jobs, metadata, hashtags, store)
	e.POST("/linkedin-video/", h.Submit)
	e.GET("/linkedin-video/", h.Get)
	e.DELETE("/linkedin-video/", h.Delete)
	e.GET("/task-status/", h.Status)
	e.POST("/video-download-url/", h.Resolve)
	e.GET("/health", h.Health)

	log.Printf("Starting linkvid v%s on port %s", version.Version, cfg.Port)
	if err := e.Start(fmt.Sprintf(":%s", cfg.Port)); err != nil {
		log.Fatal(err)
	}
}
