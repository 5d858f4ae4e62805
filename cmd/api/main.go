package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"banking-api/config"
	httpHandler "banking-api/internal/adapter/http/handler"
	memStorage "banking-api/internal/adapter/storage/memory"
	pgStorage "banking-api/internal/adapter/storage/postgres"
	redisStorage "banking-api/internal/adapter/storage/redis"
	"banking-api/internal/core/domain"
	"banking-api/internal/core/ports"
	"banking-api/internal/service"
	"banking-api/pkg/logger"

	"github.com/shopspring/decimal"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Str("storage", cfg.Storage.Driver).
		Int("port", cfg.Server.Port).
		Msg("Starting Banking API")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT secret is required (set BANK_JWT_SECRET)")
	}

	ctx := context.Background()

	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Initialize storage driver
	var (
		accountRepo    ports.AccountRepository
		ledgerRepo     ports.LedgerRepository
		userRepo       ports.UserRepository
		transactor     ports.DBTransactor
		healthCheckers []ports.HealthChecker
	)

	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()

		if err := pgStorage.RunMigrations(pool); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
		log.Info().Msg("PostgreSQL connected, migrations applied")

		accountRepo = pgStorage.NewAccountRepo(pool)
		ledgerRepo = pgStorage.NewLedgerRepo(pool)
		userRepo = pgStorage.NewUserRepo(pool)
		transactor = pgStorage.NewTransactor(pool)
		healthCheckers = append(healthCheckers, pgStorage.NewHealthCheck(pool))

	default:
		store := memStorage.NewStore()
		accountRepo = memStorage.NewAccountRepo(store)
		ledgerRepo = memStorage.NewLedgerRepo(store)
		userRepo = memStorage.NewUserRepo(store)
		transactor = memStorage.NewTransactor(store)

		if cfg.Storage.SeedDemo {
			if err := seedDemoData(ctx, userRepo, accountRepo, hashSvc); err != nil {
				log.Fatal().Err(err).Msg("Failed to seed demo data")
			}
			log.Info().Msg("Demo accounts seeded")
		}
	}

	// Optional Redis (rate limiting + health)
	var rateLimitStore *redisStorage.RateLimitStore
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		log.Info().Msg("Redis connected")

		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
	}

	// Initialize business services
	authSvc := service.NewAuthService(userRepo, accountRepo, transactor, hashSvc, tokenSvc, log)
	bankSvc := service.NewBankService(accountRepo, ledgerRepo, transactor, log)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		BankSvc:        bankSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: healthCheckers,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// seedDemoData loads the two historical demo accounts so the API is usable
// out of the box with the memory driver.
func seedDemoData(ctx context.Context, users ports.UserRepository, accounts ports.AccountRepository, hashSvc ports.HashService) error {
	seeds := []struct {
		username string
		password string
		owner    string
		balance  decimal.Decimal
	}{
		{"usuario1", "senha123", "Usuário Um", decimal.NewFromFloat(1000.50)},
		{"usuario2", "senha456", "Usuário Dois", decimal.NewFromFloat(5000.00)},
	}

	now := time.Now().UTC()
	for _, s := range seeds {
		hash, err := hashSvc.Hash(s.password)
		if err != nil {
			return fmt.Errorf("hashing seed password: %w", err)
		}
		user := &domain.User{Username: s.username, PasswordHash: hash, CreatedAt: now}
		if err := users.Create(ctx, user); err != nil {
			return fmt.Errorf("creating seed user %s: %w", s.username, err)
		}
		account := &domain.Account{
			UserID:    user.ID,
			Owner:     s.owner,
			Balance:   s.balance,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := accounts.Create(ctx, account); err != nil {
			return fmt.Errorf("creating seed account for %s: %w", s.username, err)
		}
	}
	return nil
}
