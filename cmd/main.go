package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mansoorceksport/platepal/internal/config"
	"github.com/mansoorceksport/platepal/internal/middleware"
	"github.com/mansoorceksport/platepal/internal/server"
	"github.com/mansoorceksport/platepal/internal/telemetry"
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

	log.Println("Starting PlatePal API...")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	otelProvider, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.OTEL.ServiceName,
		ServiceVersion: cfg.OTEL.ServiceVersion,
		Environment:    cfg.OTEL.Environment,
		OTLPEndpoint:   cfg.OTEL.Endpoint,
		OTLPHeaders:    telemetry.GrafanaHeaders(cfg.OTEL.InstanceID, cfg.OTEL.Token),
		Enabled:        cfg.OTEL.Enabled,
	})
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

	firebaseApp, err := middleware.InitFirebase(
		cfg.Firebase.ProjectID,
		cfg.Firebase.PrivateKey,
		cfg.Firebase.ClientEmail,
	)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to get Firebase Auth client: %v", err)
	}
	log.Println("✓ Firebase initialized")

	ctxMongo, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoOpts := options.Client().ApplyURI(cfg.MongoDB.URI)
	if cfg.OTEL.Enabled {
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

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	log.Println("✓ Redis connected")

	app := server.NewApp(server.AppDependencies{
		Config:      cfg,
		MongoDB:     mongoClient.Database(cfg.MongoDB.Database),
		RedisClient: redisClient,
		AuthClient:  authClient,
	})

	go func() {
		if err := app.Listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("[Events] Listener stopped: %v", err)
		}
	}()

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down gracefully...")
		stop()
		app.Shutdown()
	}()

	log.Printf("🚀 Server starting on port %s (timezone %s)", cfg.Server.Port, cfg.Tracking.Location())
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
