package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mansoorceksport/fitcoach/internal/config"
	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/mansoorceksport/fitcoach/internal/repository"
	"github.com/mansoorceksport/fitcoach/internal/server"
	"github.com/mansoorceksport/fitcoach/internal/service"
	"github.com/mansoorceksport/fitcoach/internal/store"
	"github.com/mansoorceksport/fitcoach/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Println("Starting AI Fitness Coach API...")

	ctx := context.Background()

	otelProvider, err := telemetry.Initialize(ctx, cfg.Telemetry)
	if err != nil {
		log.Printf("Warning: Failed to initialize OpenTelemetry: %v", err)
	}
	if otelProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			otelProvider.Shutdown(shutdownCtx)
		}()
	}

	// Connect to MongoDB with OpenTelemetry instrumentation
	ctxMongo, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoOpts := options.Client().ApplyURI(cfg.MongoDB.URI)
	if cfg.Telemetry.Enabled {
		mongoOpts.SetMonitor(otelmongo.NewMonitor())
	}

	mongoClient, err := mongo.Connect(ctxMongo, mongoOpts)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	if err := mongoClient.Ping(ctxMongo, nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}
	log.Println("✓ MongoDB connected")

	mongoDB := mongoClient.Database(cfg.MongoDB.Database)

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	log.Println("✓ Redis connected")

	// Durable state in Mongo, read-through cache in Redis
	var stateRepo domain.StateRepository = repository.NewCachedStateRepository(
		repository.NewMongoStateRepository(mongoDB),
		repository.NewRedisCacheRepository(redisClient),
	)
	registry := store.NewRegistry(stateRepo, store.WithIdleTimeout(cfg.Server.SessionIdle))

	evictCtx, stopEviction := context.WithCancel(ctx)
	defer stopEviction()
	go registry.RunEviction(evictCtx, time.Minute)

	var fileRepo domain.FileRepository
	if cfg.S3.Enabled() {
		archive, err := repository.NewPlanArchive(ctx, cfg.S3)
		if err != nil {
			log.Printf("Warning: Failed to initialize plan archive: %v", err)
		} else {
			fileRepo = archive
			log.Println("✓ S3 archive configured")
		}
	}

	if cfg.Text.APIKey == "" {
		log.Printf("Warning: TEXT_API_KEY not set, plan generation will fail until configured")
	}
	if cfg.Image.APIKey == "" {
		log.Printf("Warning: HUGGINGFACE_API_KEY not set, image generation will return a configuration error")
	}

	app := server.NewApp(server.AppDependencies{
		Config:         cfg,
		Registry:       registry,
		RedisClient:    redisClient,
		TextModel:      service.NewTextModel(cfg.Text),
		ImageGenerator: service.NewHuggingFaceImageGenerator(cfg.Image.APIKey, cfg.Image.Endpoint),
		FileRepository: fileRepo,
	})

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down gracefully...")
		app.Shutdown()
	}()

	log.Printf("🚀 Server starting on port %s", cfg.Server.Port)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	// Flush every open session before the connections close
	stopEviction()
	flushCtx, cancelFlush := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelFlush()
	if err := registry.Close(flushCtx); err != nil {
		log.Printf("Error flushing session state: %v", err)
	}
	log.Println("✓ Session state flushed")
}
