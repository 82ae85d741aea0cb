package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mansoorceksport/platepal/internal/repository"
	"github.com/mansoorceksport/platepal/internal/service"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Recomputes stored macro targets after a formula change. Profiles on a
// custom goal are left alone.
func main() {
	mongoURI := flag.String("mongo", "", "MongoDB URI (defaults to MONGODB_URI)")
	dbName := flag.String("db", "platepal", "Database name")
	redisAddr := flag.String("redis", "", "Redis address used to announce changes (optional, defaults to REDIS_ADDR)")
	channel := flag.String("channel", "platepal:data-changed", "Data-changed channel")
	apply := flag.Bool("apply", false, "Write changes; without it the run is a dry run")
	flag.Parse()

	if *mongoURI == "" {
		*mongoURI = os.Getenv("MONGODB_URI")
		if *mongoURI == "" {
			log.Fatal("MongoDB URI is required. Use -mongo flag or MONGODB_URI env var")
		}
	}
	if *redisAddr == "" {
		*redisAddr = os.Getenv("REDIS_ADDR")
	}

	ctx := context.Background()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(*mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	profiles := repository.NewMongoProfileRepository(client.Database(*dbName))

	// Running API replicas drop their cached progress when they hear about the change
	var profileService *service.ProfileService
	if *redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: *redisAddr, Password: os.Getenv("REDIS_PASSWORD")})
		defer rdb.Close()
		profileService = service.NewProfileService(profiles, nil, repository.NewRedisEventBus(rdb, *channel))
	} else {
		profileService = service.NewProfileService(profiles, nil, nil)
	}

	fmt.Println("=== Macro Target Recalculation ===")
	fmt.Printf("Database: %s\n", *dbName)
	fmt.Printf("Dry Run: %v\n\n", !*apply)

	changed, err := profileService.RecalculateTargets(ctx, !*apply)
	if err != nil {
		log.Fatalf("Recalculation stopped after %d profiles: %v", changed, err)
	}

	fmt.Printf("\nProfiles with new targets: %d\n", changed)
	if !*apply {
		fmt.Println("Dry run only. Re-run with -apply to write.")
	}
}
