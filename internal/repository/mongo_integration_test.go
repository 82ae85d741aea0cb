package repository

import (
	"context"
	"testing"
	"time"

	"github.com/mansoorceksport/platepal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func setupMongo(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	return client.Database("platepal_test")
}

func TestMongoRepositories(t *testing.T) {
	db := setupMongo(t)
	ctx := context.Background()

	t.Run("meals are listed oldest first and backfilled", func(t *testing.T) {
		repo := NewMongoMealRepository(db)
		base := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

		late := &domain.Meal{UserID: "u1", FoodName: "Dinner", Calories: 700, CreatedAt: base.Add(10 * time.Hour), Date: "2025-06-02"}
		early := &domain.Meal{UserID: "u1", FoodName: "Breakfast", Calories: 300, CreatedAt: base}
		other := &domain.Meal{UserID: "u2", FoodName: "Lunch", Calories: 500, CreatedAt: base}
		for _, m := range []*domain.Meal{late, early, other} {
			require.NoError(t, repo.Create(ctx, m))
			require.NotEmpty(t, m.ID)
		}

		meals, err := repo.ListByUserID(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, meals, 2)
		assert.Equal(t, "Breakfast", meals[0].FoodName)
		assert.Equal(t, "Dinner", meals[1].FoodName)

		missing, err := repo.ListMissingDate(ctx)
		require.NoError(t, err)
		assert.Len(t, missing, 2)

		require.NoError(t, repo.SetDate(ctx, early.ID, "2025-06-02"))
		got, err := repo.GetByID(ctx, early.ID)
		require.NoError(t, err)
		assert.Equal(t, "2025-06-02", got.Date)

		require.NoError(t, repo.Delete(ctx, other.ID))
		_, err = repo.GetByID(ctx, other.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, other.ID), domain.ErrNotFound)
	})

	t.Run("profile upsert keeps identity", func(t *testing.T) {
		repo := NewMongoProfileRepository(db)

		_, err := repo.GetByUserID(ctx, "u1")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		p := &domain.UserProfile{
			UserID: "u1", Goal: domain.GoalLose, Age: 30, Gender: domain.GenderMale,
			Weight: 80, Height: 180, ActivityLevel: domain.ActivityModerate,
			MacroTargets: domain.MacroTargets{Calories: 2075, Protein: 140, Carbs: 156, Fat: 69},
		}
		require.NoError(t, repo.Upsert(ctx, p))
		firstID := p.ID
		require.NotEmpty(t, firstID)

		p.Goal = domain.GoalMaintain
		require.NoError(t, repo.Upsert(ctx, p))
		assert.Equal(t, firstID, p.ID)

		require.NoError(t, repo.UpdateTargets(ctx, "u1", domain.MacroTargets{Calories: 2594, Protein: 160, Carbs: 289, Fat: 72}))
		stored, err := repo.GetByUserID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, domain.GoalMaintain, stored.Goal)
		assert.Equal(t, 2594, stored.MacroTargets.Calories)

		listed, err := repo.ListByGoals(ctx, []domain.Goal{domain.GoalMaintain})
		require.NoError(t, err)
		assert.Len(t, listed, 1)

		assert.ErrorIs(t, repo.UpdateTargets(ctx, "ghost", domain.MacroTargets{}), domain.ErrNotFound)
	})

	t.Run("plans upsert by code", func(t *testing.T) {
		repo := NewMongoPlanRepository(db)
		plan := &domain.Plan{Code: "premium_monthly", Name: "Premium", Price: 49000, DurationMonths: 1, IsActive: true}

		created, err := repo.UpsertByCode(ctx, plan)
		require.NoError(t, err)
		assert.True(t, created)

		created, err = repo.UpsertByCode(ctx, &domain.Plan{Code: plan.Code, Name: plan.Name, Price: 39000, DurationMonths: 1, IsActive: true})
		require.NoError(t, err)
		assert.False(t, created)

		plans, err := repo.GetActivePlans(ctx)
		require.NoError(t, err)
		require.Len(t, plans, 1)
		assert.Equal(t, int64(39000), plans[0].Price)

		byID, err := repo.GetByID(ctx, plan.ID)
		require.NoError(t, err)
		assert.Equal(t, "premium_monthly", byID.Code)
	})

	t.Run("users carry subscription end date", func(t *testing.T) {
		repo := NewMongoUserRepository(db)
		u := &domain.User{Email: "rina@example.com", Name: "Rina", FirebaseUID: "fb-1"}
		require.NoError(t, repo.Create(ctx, u))

		end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, repo.UpdateSubscriptionEndDate(ctx, u.ID, end))

		got, err := repo.GetByFirebaseUID(ctx, "fb-1")
		require.NoError(t, err)
		require.NotNil(t, got.SubscriptionEndDate)
		assert.True(t, end.Equal(*got.SubscriptionEndDate))

		_, err = repo.GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("refresh tokens", func(t *testing.T) {
		repo := NewMongoRefreshTokenRepository(db)
		tok := &domain.RefreshToken{UserID: "u1", TokenHash: "h1", ExpiresAt: time.Now().Add(time.Hour)}
		require.NoError(t, repo.Create(ctx, tok))

		found, err := repo.FindByHash(ctx, "h1")
		require.NoError(t, err)
		assert.Equal(t, "u1", found.UserID)

		require.NoError(t, repo.RevokeByHash(ctx, "h1"))
		_, err = repo.FindByHash(ctx, "h1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("pending invoice reuse", func(t *testing.T) {
		repo := NewMongoInvoiceRepository(db)
		inv := &domain.Invoice{
			UserID: "u1", PlanID: "p1", Amount: 49000, Status: domain.InvoiceStatusPending,
			PaymentSessionID: "sid-1", ExpiryDate: time.Now().Add(24 * time.Hour),
		}
		require.NoError(t, repo.Create(ctx, inv))

		pending, err := repo.GetPendingByUserAndPlan(ctx, "u1", "p1")
		require.NoError(t, err)
		assert.Equal(t, inv.ID, pending.ID)

		require.NoError(t, repo.UpdateStatus(ctx, inv.ID, domain.InvoiceStatusPaid))
		_, err = repo.GetPendingByUserAndPlan(ctx, "u1", "p1")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		bySession, err := repo.GetByPaymentSessionID(ctx, "sid-1")
		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusPaid, bySession.Status)
	})
}
