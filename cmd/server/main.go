package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bukustok/backend/internal/blob"
	"bukustok/backend/internal/cache"
	"bukustok/backend/internal/config"
	"bukustok/backend/internal/httpapi"
	"bukustok/backend/internal/search"
	"bukustok/backend/internal/service"
	"bukustok/backend/internal/store"
	"bukustok/backend/internal/store/memory"
	pgstore "bukustok/backend/internal/store/postgres"
	"bukustok/backend/internal/syncq"
)

func main() {
	cfg := config.Load()
	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatalf("invalid security configuration: %v", err)
	}
	startCtx, startCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer startCancel()

	var docs store.DocumentStore
	closers := make([]func() error, 0, 3)

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(startCtx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres unavailable (%v) and DATABASE_URL is set; refusing to start with in-memory fallback", err)
		}
		docs = pg
		closers = append(closers, pg.Close)
		log.Println("document store: postgres")
	} else {
		docs = memory.NewSeeded()
		log.Println("document store: in-memory")
	}

	searchCache := cache.SearchCache(cache.NoopSearchCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisSearchCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(startCtx); err != nil {
			log.Printf("redis unavailable (%v), using noop cache", err)
		} else {
			searchCache = redisCache
			closers = append(closers, redisCache.Close)
			log.Println("search cache: redis")
		}
	} else {
		log.Println("search cache: noop")
	}

	var blobs blob.Store
	if cfg.S3Bucket != "" {
		s3Store, err := blob.NewS3(startCtx, blob.S3Config{
			Endpoint:     cfg.S3Endpoint,
			Region:       cfg.S3Region,
			Bucket:       cfg.S3Bucket,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			UsePathStyle: cfg.S3UsePathStyle,
			SignExpiry:   time.Duration(cfg.S3SignExpiryMinutes) * time.Minute,
		})
		if err != nil {
			log.Fatalf("object storage unavailable (%v) and S3_BUCKET is set; refusing to start without bill storage", err)
		}
		if err := s3Store.EnsureBucket(startCtx); err != nil {
			log.Fatalf("object storage bucket check failed: %v", err)
		}
		blobs = s3Store
		log.Println("bill storage: s3")
	} else {
		blobs = blob.NewMemory()
		log.Println("bill storage: in-memory")
	}

	outbox, err := syncq.OpenOutbox(cfg.OutboxPath)
	if err != nil {
		log.Fatalf("outbox unavailable: %v", err)
	}
	closers = append(closers, outbox.Close)

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()

	syncClient := syncq.NewClient(docs, blobs, outbox, time.Duration(cfg.ReplayIntervalSeconds)*time.Second)
	go syncClient.Run(runCtx)

	engine := search.NewEngine(searchCache, time.Duration(cfg.SearchCacheTTLSeconds)*time.Second)
	uploader := blob.NewUploader(blobs)
	svc := service.New(docs, syncClient, engine, uploader, cfg.ShopID)
	go svc.Run(runCtx)

	auth := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, cfg.OwnerUsername, cfg.OwnerPassword)
	api := httpapi.New(svc, auth, syncClient, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("stock register backend listening on %s", cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	runCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close error: %v", err)
		}
	}

	log.Println("server stopped")
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if len(cfg.OwnerPassword) < 8 {
		return fmt.Errorf("OWNER_PASSWORD must be set and at least 8 characters")
	}
	return nil
}
