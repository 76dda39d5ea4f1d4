package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"currencyexchange/internal/app/accounts"
	"currencyexchange/internal/config"
	accounts_http "currencyexchange/internal/handler/http/accounts"
	kafka_handler "currencyexchange/internal/handler/kafka"
	"currencyexchange/internal/infrastructure/database"
	kafka_infra "currencyexchange/internal/infrastructure/kafka"
	"currencyexchange/internal/observability"
	"currencyexchange/internal/outbox"
	"currencyexchange/internal/rates"
	"currencyexchange/internal/repository"
	"currencyexchange/internal/repository/account_query_repo"
	"currencyexchange/internal/repository/accounts_repo"
	"currencyexchange/internal/repository/currency_repo"
	"currencyexchange/internal/repository/inbox_repo"
	"currencyexchange/internal/repository/memory"
	"currencyexchange/internal/repository/outbox_repo"
)

type storage struct {
	txManager    repository.TxManager
	accountRepo  accounts_repo.AccountRepository
	queryRepo    account_query_repo.AccountQueryRepository
	currencyRepo currency_repo.CurrencyRepository
	inboxRepo    inbox_repo.InboxRepository
	outboxRepo   outbox_repo.OutboxRepository
	close        func()
}

func openStorage(cfg *config.Config, logger *zap.Logger) (*storage, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		logger.Info("Using in-memory storage", zap.Strings("supported_currencies", cfg.SupportedCurrencies))
		store := memory.NewStore(cfg.SupportedCurrencies...)
		return &storage{
			txManager:    store,
			accountRepo:  store.Accounts(),
			queryRepo:    store.AccountQueries(),
			currencyRepo: store.Currencies(),
			inboxRepo:    store.Inbox(),
			outboxRepo:   store.Outbox(),
			close:        func() {},
		}, nil
	}

	logger.Info("Waiting for database to be available...")
	dbConfig := database.DBConfig{
		Host:     cfg.DBConfig.DBHost,
		Port:     cfg.DBConfig.DBPort,
		User:     cfg.DBConfig.DBUser,
		Password: cfg.DBConfig.DBPassword,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.DBSSLMode,
	}

	var db *sql.DB
	var err error
	for i := 0; i < cfg.DBConnectRetries; i++ {
		db, err = database.NewPostgresDB(dbConfig)
		if err == nil {
			logger.Info("Successfully connected to PostgreSQL database!")
			break
		}
		logger.Warn("Failed to connect to database, retrying",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", cfg.DBConnectRetries),
			zap.Duration("retry_in", cfg.DBConnectRetryDelay),
			zap.Error(err))
		time.Sleep(cfg.DBConnectRetryDelay)
	}
	if db == nil {
		return nil, fmt.Errorf("could not connect to database after %d attempts: %w", cfg.DBConnectRetries, err)
	}

	logger.Info("Running database migrations...")
	if err := database.RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("Database migrations completed successfully (or no new migrations).")

	return &storage{
		txManager:    database.NewSQLTxManager(db, logger.With(zap.String("component", "TxManager"))),
		accountRepo:  accounts_repo.NewAccountRepository(),
		queryRepo:    account_query_repo.NewAccountQueryRepository(),
		currencyRepo: currency_repo.NewCurrencyRepository(),
		inboxRepo:    inbox_repo.NewInboxRepository(),
		outboxRepo:   outbox_repo.NewOutboxRepository(),
		close: func() {
			if err := db.Close(); err != nil {
				logger.Error("Error closing database connection", zap.Error(err))
			} else {
				logger.Info("Database connection closed.")
			}
		},
	}, nil
}

// buildRateProvider layers tracing, logging and the optional shared redis
// cache over the NBP client, with an in-process cache in front.
func buildRateProvider(cfg *config.Config, logger *zap.Logger) (rates.Provider, func()) {
	var provider rates.Provider = rates.NewNBPClient(
		cfg.NBPURLTemplate,
		cfg.RateFetchTimeout,
		logger.With(zap.String("component", "NBPClient")),
	)
	provider = rates.NewTracingProvider(otel.Tracer("currencyexchange/rates"), provider)
	provider = rates.NewLoggingProvider(logger.With(zap.String("component", "RateProvider")), provider)

	closeRedis := func() {}
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal("Invalid REDIS_URL", zap.Error(err))
		}
		client := redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			logger.Warn("Redis is not reachable yet, rate lookups bypass it until it is", zap.Error(err))
		}
		cancel()
		logger.Info("Shared exchange rate cache enabled", zap.String("addr", opts.Addr), zap.Duration("ttl", cfg.RedisRateCacheTTL))

		provider = rates.NewRedisCachingProvider(client, cfg.RedisRateCacheTTL, provider, logger.With(zap.String("component", "RedisRateCache")))
		closeRedis = func() {
			if err := client.Close(); err != nil {
				logger.Error("Error closing redis client", zap.Error(err))
			}
		}
	}

	return rates.NewCachingProvider(cfg.RateCacheTTL, provider), closeRedis
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.EncoderConfig.TimeKey = "timestamp"

	appLogger, err := zapConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create zap logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()
	appLogger.Info("Currency Exchange Service starting...", zap.String("storage_driver", cfg.StorageDriver))

	store, err := openStorage(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer store.close()

	shutdownTracing, err := observability.InitTracing(context.Background(), observability.TracingConfig{
		Enabled:      cfg.TracingEnabled,
		ServiceName:  cfg.TracingServiceName,
		OTLPEndpoint: cfg.OTLPEndpoint,
		OTLPInsecure: cfg.OTLPInsecure,
		SampleRatio:  cfg.TracingSampleRatio,
	}, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	rateProvider, closeRates := buildRateProvider(cfg, appLogger)
	defer closeRates()

	accountService := accounts.NewAccountService(
		store.txManager,
		store.accountRepo,
		store.queryRepo,
		store.currencyRepo,
		store.inboxRepo,
		store.outboxRepo,
		rateProvider,
		accounts.Options{
			RateTimeout: cfg.RateFetchTimeout,
			MaxAttempts: cfg.ExchangeMaxAttempts,
			EventsTopic: cfg.KafkaAccountEventsTopic,
		},
		appLogger.With(zap.String("component", "AccountService")),
	)
	appLogger.Info("Account Service initialized.")

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	accounts_http.RegisterRoutes(router, accountService, appLogger.With(zap.String("component", "HTTPHandler")))

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctxMain, cancelMain := context.WithCancel(context.Background())
	defer cancelMain()
	var workers sync.WaitGroup

	var consumer *kafka_infra.Consumer
	if cfg.KafkaEnabled {
		kafkaBrokers := cfg.GetKafkaBrokers()
		topicsCtx, cancelTopics := context.WithTimeout(ctxMain, 10*time.Second)
		err := kafka_infra.EnsureTopics(topicsCtx, kafkaBrokers, []string{
			cfg.KafkaAccountEventsTopic,
			cfg.KafkaExchangeRequestsTopic,
		}, appLogger)
		cancelTopics()
		if err != nil {
			appLogger.Fatal("Failed to ensure Kafka topics", zap.Error(err))
		}

		kafkaProducer := kafka_infra.NewProducer(kafkaBrokers, appLogger.With(zap.String("component", "KafkaProducer")))
		defer kafkaProducer.Close()

		outboxProcessor := outbox.NewProcessor(
			store.txManager,
			store.outboxRepo,
			kafkaProducer,
			cfg.OutboxPollInterval,
			cfg.OutboxPollTimeout,
			cfg.OutboxBatchSize,
			appLogger.With(zap.String("component", "OutboxProcessor")),
		)
		workers.Add(1)
		go func() {
			defer workers.Done()
			outboxProcessor.Start(ctxMain)
		}()

		consumer = kafka_infra.NewConsumer(
			kafkaBrokers,
			cfg.KafkaExchangeRequestsTopic,
			cfg.KafkaConsumerGroup,
			kafka_handler.ExchangeRequestedMessageHandler(accountService, appLogger.With(zap.String("component", "ExchangeRequestedHandler"))),
			appLogger.With(zap.String("component", "ExchangeRequestsConsumer")),
		)
		workers.Add(1)
		go func() {
			defer workers.Done()
			appLogger.Info("Starting Exchange Requests Kafka Consumer...")
			if err := consumer.Consume(ctxMain); err != nil {
				appLogger.Error("Exchange Requests Kafka Consumer failed", zap.Error(err))
			}
			appLogger.Info("Exchange Requests Kafka Consumer stopped.")
		}()
	} else {
		appLogger.Info("Kafka disabled, outbox events stay pending and exchange commands are not consumed.")
	}

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	appLogger.Info("Shutting down application...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server graceful shutdown failed", zap.Error(err))
	} else {
		appLogger.Info("HTTP server gracefully shut down.")
	}

	cancelMain()
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			appLogger.Error("Error closing Exchange Requests Kafka Consumer", zap.Error(err))
		}
	}

	done := make(chan struct{})
	go func() {
		workers.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		appLogger.Warn("Background workers did not stop before the shutdown deadline.")
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		appLogger.Error("Error flushing traces", zap.Error(err))
	}

	appLogger.Info("Application gracefully shut down.")
}
