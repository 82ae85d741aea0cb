package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/mansoorceksport/platepal/internal/nutrition"
	"github.com/mansoorceksport/platepal/internal/repository"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Stamps an explicit day key on meals saved before the date field existed,
// so later timezone changes can't move them between days.
func main() {
	mongoURI := flag.String("mongo", "", "MongoDB URI (defaults to MONGODB_URI)")
	dbName := flag.String("db", "platepal", "Database name")
	tz := flag.String("tz", "", "Timezone the days are computed in (defaults to APP_TIMEZONE, then UTC)")
	apply := flag.Bool("apply", false, "Write changes; without it the run is a dry run")
	flag.Parse()

	if *mongoURI == "" {
		*mongoURI = os.Getenv("MONGODB_URI")
		if *mongoURI == "" {
			log.Fatal("MongoDB URI is required. Use -mongo flag or MONGODB_URI env var")
		}
	}
	if *tz == "" {
		*tz = os.Getenv("APP_TIMEZONE")
	}
	loc := time.UTC
	if *tz != "" {
		l, err := time.LoadLocation(*tz)
		if err != nil {
			log.Fatalf("Unknown timezone %q: %v", *tz, err)
		}
		loc = l
	}

	ctx := context.Background()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(*mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	repo := repository.NewMongoMealRepository(client.Database(*dbName))

	fmt.Println("=== Meal Date Backfill ===")
	fmt.Printf("Database: %s\n", *dbName)
	fmt.Printf("Timezone: %s\n", loc)
	fmt.Printf("Dry Run: %v\n\n", !*apply)

	meals, err := repo.ListMissingDate(ctx)
	if err != nil {
		log.Fatalf("Failed to query meals: %v", err)
	}

	var updated, skipped, failed int
	for _, m := range meals {
		if m.CreatedAt.IsZero() {
			skipped++
			continue
		}
		m.CreatedAt = m.CreatedAt.In(loc)
		day := nutrition.DayKey(m)
		fmt.Printf("  Meal %s (%s): %s -> %s\n", m.ID, m.FoodName, m.CreatedAt.Format(time.RFC3339), day)

		if !*apply {
			updated++
			continue
		}
		if err := repo.SetDate(ctx, m.ID, day); err != nil {
			log.Printf("  ERROR updating meal %s: %v", m.ID, err)
			failed++
			continue
		}
		updated++
	}

	fmt.Printf("\nMatched: %d, Updated: %d, Skipped (no timestamp): %d, Failed: %d\n", len(meals), updated, skipped, failed)
	if !*apply {
		fmt.Println("Dry run only. Re-run with -apply to write.")
	}
}
