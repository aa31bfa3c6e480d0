// main.go
package main

import (
	"context"
	"log"
	"time"

	"marketplace/cmd"
	"marketplace/internal/data/cache"
	"marketplace/internal/data/repository"
	"marketplace/internal/data/repository/memory"
	"marketplace/internal/data/repository/mongostore"
	"marketplace/internal/event"
	"marketplace/internal/usecase"
	"marketplace/internal/wire"
	"marketplace/pkg/database"
	"marketplace/pkg/metrics"
	"marketplace/pkg/storage"
	"marketplace/pkg/utils"

	"go.uber.org/zap"
)

const startupTimeout = 15 * time.Second

func main() {
	// Load config
	config, err := utils.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.String("db_driver", config.Database.Driver),
		zap.Bool("debug", config.App.Debug),
	)

	metrics.Init()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to the configured store
	repos, closeStore := initRepository(ctx, config, logger)
	defer closeStore()

	// Optional side channels
	deps := usecase.Dependencies{
		Images: initImageStore(ctx, config, logger),
		Cache:  cache.NewNoopProductCache(),
		Events: event.NewNoopPublisher(),
	}

	if config.Redis.Enabled {
		initCtx, initCancel := context.WithTimeout(ctx, startupTimeout)
		rdb, err := database.InitRedis(initCtx, config.Redis)
		initCancel()
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer rdb.Close()
		deps.Cache = cache.NewRedisProductCache(rdb, time.Duration(config.Redis.ListingTTL)*time.Second, logger)
		logger.Info("Redis listing cache enabled")
	}

	if config.RabbitMQ.Enabled {
		publisher, err := event.NewRabbitPublisher(config.RabbitMQ.URL, config.RabbitMQ.Queue, logger)
		if err != nil {
			logger.Fatal("Failed to connect to rabbitmq", zap.Error(err))
		}
		defer publisher.Close()
		deps.Events = publisher
		logger.Info("RabbitMQ event publisher enabled", zap.String("queue", config.RabbitMQ.Queue))
	}

	go cmd.RunTokenCleanup(ctx, repos.RefreshToken, time.Hour, logger)

	// Wire all dependencies
	app := wire.Wiring(repos, deps, config, logger)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	if err := cmd.APIServer(app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server exited with error", zap.Error(err))
	}
}

func initRepository(ctx context.Context, config *utils.Config, logger *zap.Logger) (*repository.Repository, func()) {
	initCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	switch config.Database.Driver {
	case utils.DriverMongo:
		client, db, err := database.InitMongo(initCtx, config.Database)
		if err != nil {
			logger.Fatal("Failed to connect to mongodb", zap.Error(err))
		}
		repos, err := mongostore.NewRepository(initCtx, db, logger)
		if err != nil {
			logger.Fatal("Failed to prepare mongodb collections", zap.Error(err))
		}
		logger.Info("MongoDB connected successfully", zap.String("database", config.Database.MongoDatabase))
		return repos, func() {
			closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer closeCancel()
			_ = client.Disconnect(closeCtx)
		}

	case utils.DriverMemory:
		logger.Warn("Using in-memory store, data is lost on restart")
		return memory.NewRepository(), func() {}

	default:
		if err := database.Migrate(initCtx, config.Database); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		db, err := database.InitDB(initCtx, config.Database)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		logger.Info("Database connected successfully")
		return repository.NewRepository(db, logger), db.Close
	}
}

func initImageStore(ctx context.Context, config *utils.Config, logger *zap.Logger) storage.ImageStore {
	if config.Upload.Driver == utils.UploadS3 {
		store, err := storage.NewS3Store(ctx, config.S3)
		if err != nil {
			logger.Fatal("Failed to configure S3 image store", zap.Error(err))
		}
		logger.Info("S3 image store enabled", zap.String("bucket", config.S3.Bucket))
		return store
	}

	store, err := storage.NewLocalStore(config.Upload.Dir)
	if err != nil {
		logger.Fatal("Failed to prepare upload directory", zap.Error(err))
	}
	return store
}
