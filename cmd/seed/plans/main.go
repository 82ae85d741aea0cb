package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mansoorceksport/platepal/internal/config"
	"github.com/mansoorceksport/platepal/internal/domain"
	"github.com/mansoorceksport/platepal/internal/repository"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		log.Fatalf("Failed to connect to Mongo: %v", err)
	}
	defer client.Disconnect(ctx)

	repo := repository.NewMongoPlanRepository(client.Database(cfg.MongoDB.Database))

	// Prices are in IDR
	plans := []domain.Plan{
		{Code: "premium_1m", Name: "Premium Monthly", Description: "Unlimited photo analysis for 1 month", Price: 49000, DurationMonths: 1, IsActive: true},
		{Code: "premium_3m", Name: "Premium Quarterly", Description: "Unlimited photo analysis for 3 months", Price: 129000, DurationMonths: 3, IsActive: true},
		{Code: "premium_12m", Name: "Premium Yearly", Description: "Unlimited photo analysis for 12 months", Price: 449000, DurationMonths: 12, IsActive: true},
	}

	for _, p := range plans {
		plan := p
		created, err := repo.UpsertByCode(ctx, &plan)
		if err != nil {
			log.Printf("Error upserting %s: %v\n", plan.Code, err)
			continue
		}
		if created {
			fmt.Printf("Created: %s (%s)\n", plan.Name, plan.ID)
		} else {
			fmt.Printf("Updated: %s (%s)\n", plan.Name, plan.ID)
		}
	}
	fmt.Println("Seeding Plans Complete.")
}
