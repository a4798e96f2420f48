package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	appchat "github.com/omariomari2/wvs-102/internal/application/chat"
	appscans "github.com/omariomari2/wvs-102/internal/application/scans"
	appsessions "github.com/omariomari2/wvs-102/internal/application/sessions"
	"github.com/omariomari2/wvs-102/internal/config"
	domai "github.com/omariomari2/wvs-102/internal/domain/ai"
	domsessions "github.com/omariomari2/wvs-102/internal/domain/sessions"
	aiopenai "github.com/omariomari2/wvs-102/internal/infra/ai/openai"
	"github.com/omariomari2/wvs-102/internal/infra/crawler"
	mysqlp "github.com/omariomari2/wvs-102/internal/infra/db/mysql"
	postgresp "github.com/omariomari2/wvs-102/internal/infra/db/postgres"
	"github.com/omariomari2/wvs-102/internal/infra/httpserver"
	minioStore "github.com/omariomari2/wvs-102/internal/infra/storage"
	memoryStore "github.com/omariomari2/wvs-102/internal/infra/store/memory"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	repo, err := buildRepository(ctx, cfg)
	if err != nil {
		log.Fatalf("session store init error: %v", err)
	}

	var completer domai.Completer
	if cfg.OpenAI.APIKey != "" {
		completer = aiopenai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	} else {
		log.Warn("no OpenAI key configured, chat will use fallback replies")
	}

	coordinator := appchat.NewCoordinator(completer, log)
	sessionsSvc := appsessions.NewService(repo, coordinator, appsessions.SystemClock{})
	scansSvc := &appscans.Service{
		Crawler: crawler.New(log),
		Clock:   appscans.SystemClock{},
		Log:     log,
	}

	scanOpts := crawler.Options{
		MaxPages:     cfg.Scan.MaxPages,
		MaxDepth:     cfg.Scan.MaxDepth,
		FetchTimeout: time.Duration(cfg.Scan.FetchTimeoutSeconds) * time.Second,
	}

	mux := chi.NewRouter()
	mux.Mount("/", httpserver.NewRouter(sessionsSvc, scansSvc, scanOpts, log))

	// idle-session housekeeping
	ttl := time.Duration(cfg.Session.IdleTTLHours) * time.Hour
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			n, err := sessionsSvc.PurgeIdle(context.Background(), ttl)
			if err != nil {
				log.WithField("error", err).Warn("session purge failed")
				continue
			}
			if n > 0 {
				log.WithField("purged", n).Info("idle sessions removed")
			}
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Infof("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Errorf("shutdown error: %v", err)
	}
}

func buildRepository(ctx context.Context, cfg *config.Config) (domsessions.Repository, error) {
	switch cfg.Store.Backend {
	case "memory":
		return memoryStore.New(), nil
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, err
		}
		return mysqlp.NewSessionRepository(db), nil
	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, err
		}
		return postgresp.NewSessionRepository(db), nil
	case "minio":
		return minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}
}
