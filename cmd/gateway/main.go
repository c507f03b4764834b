package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"nexusai/internal/config"
	"nexusai/internal/httpapi"
	"nexusai/internal/logging"
	"nexusai/internal/manager"
	"nexusai/internal/queue"
	"nexusai/internal/ratelimit"
	"nexusai/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	deps, cleanup, err := buildDependencies(cfg)
	if err != nil {
		log.Fatalf("Failed to wire gateway: %v", err)
	}
	defer cleanup()

	mux := httpapi.NewRouter(deps)

	addr := ":" + cfg.HTTPPort
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("NexusAI gateway listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// buildDependencies wires storage, history and throttling from config.
// Everything beyond the session manager is optional: without a
// database or Redis the gateway runs standalone with a credential file
// and in-memory history.
func buildDependencies(cfg *config.Config) (*httpapi.Dependencies, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var cipher *storage.Encryption
	if cfg.Credentials.EncryptionKey != "" {
		var err error
		cipher, err = storage.NewEncryptionFromBase64(cfg.Credentials.EncryptionKey)
		if err != nil {
			return nil, cleanup, err
		}
	}

	var db *storage.DB
	if cfg.Database.Enabled() {
		var err error
		db, err = storage.NewDB(storage.DBConfig{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			Database:        cfg.Database.Database,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			SSLMode:         cfg.Database.SSLMode,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		})
		if err != nil {
			return nil, cleanup, err
		}
		cleanups = append(cleanups, func() { db.Close() })
	}

	store, err := credentialStore(cfg, db, cipher)
	if err != nil {
		return nil, cleanup, err
	}

	opts := []manager.Option{}

	if cfg.History.Enabled && db != nil {
		worker, err := historyWorker(cfg, db)
		if err != nil {
			return nil, cleanup, err
		}
		cleanups = append(cleanups, func() { worker.Stop() })
		opts = append(opts, manager.WithRecorder(worker))
	}

	m := manager.New(opts...)

	// preload any persisted credentials so a restart keeps its session
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.LoadCredentials(ctx, store); err != nil {
		log.Printf("No credentials preloaded: %v", err)
	}

	deps := &httpapi.Dependencies{
		Manager:   m,
		Store:     store,
		RateLimit: limiter(cfg),
	}

	if cfg.AccessLog.Enabled() {
		accessLog, err := logging.NewAccessLogger(
			cfg.AccessLog.FileTemplate,
			cfg.AccessLog.MaxSize,
			cfg.AccessLog.MaxFiles,
			cfg.AccessLog.BufferSize,
			cfg.AccessLog.FlushInterval,
		)
		if err != nil {
			return nil, cleanup, err
		}
		cleanups = append(cleanups, accessLog.Shutdown)
		deps.AccessLog = accessLog
	}

	return deps, cleanup, nil
}

func credentialStore(cfg *config.Config, db *storage.DB, cipher *storage.Encryption) (manager.CredentialStore, error) {
	if db != nil && cipher != nil {
		repo := storage.NewCredentialRepository(db, cipher)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	}

	fileStore := storage.NewFileStore(cfg.Credentials.FilePath)
	if cipher != nil {
		fileStore = fileStore.WithCipher(cipher)
	}
	return fileStore, nil
}

func historyWorker(cfg *config.Config, db *storage.DB) (*storage.RecordQueueWorker, error) {
	queueCfg := queue.DefaultConfig("generation_history")
	queueCfg.BatchSize = cfg.History.BatchSize
	queueCfg.BatchTimeout = cfg.History.BatchTimeout
	queueCfg.MaxRetries = cfg.History.MaxRetries
	queueCfg.RetryBackoff = cfg.History.RetryBackoff
	queueCfg.UseRedis = cfg.Redis.Enabled()
	queueCfg.RedisAddr = cfg.Redis.Address
	queueCfg.RedisPassword = cfg.Redis.Password
	queueCfg.RedisDB = cfg.Redis.DB

	var (
		q   queue.Queue
		dlq queue.DeadLetterQueue
		err error
	)
	if queueCfg.UseRedis {
		q, err = queue.NewRedisQueue(queueCfg)
		if err != nil {
			return nil, err
		}
		dlq, err = queue.NewRedisDeadLetterQueue(queueCfg)
		if err != nil {
			return nil, err
		}
	} else {
		q = queue.NewMemoryQueue(queueCfg)
		dlq = queue.NewMemoryDeadLetterQueue()
	}

	repo := storage.NewRecordRepository(db)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	worker := storage.NewRecordQueueWorker(q, dlq, repo, queueCfg)
	worker.Start(context.Background())
	return worker, nil
}

func limiter(cfg *config.Config) ratelimit.Limiter {
	if cfg.RateLimit.RequestsPerWindow <= 0 || !cfg.Redis.Enabled() {
		return ratelimit.NewNoopLimiter()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return ratelimit.NewRateLimiter(client, cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.Window)
}
