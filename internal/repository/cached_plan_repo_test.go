package repository

import (
	"context"
	"testing"

	"github.com/mansoorceksport/platepal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPlans struct {
	plans       map[string]*domain.Plan
	activeCalls int
	byIDCalls   int
}

func (c *countingPlans) GetByID(ctx context.Context, id string) (*domain.Plan, error) {
	c.byIDCalls++
	p, ok := c.plans[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (c *countingPlans) GetActivePlans(ctx context.Context) ([]*domain.Plan, error) {
	c.activeCalls++
	var out []*domain.Plan
	for _, p := range c.plans {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *countingPlans) UpsertByCode(ctx context.Context, plan *domain.Plan) (bool, error) {
	for _, p := range c.plans {
		if p.Code == plan.Code {
			*p = *plan
			return false, nil
		}
	}
	plan.ID = plan.Code
	c.plans[plan.ID] = plan
	return true, nil
}

func TestCachedPlanRepository_CachesReads(t *testing.T) {
	_, client := newTestRedis(t)
	inner := &countingPlans{plans: map[string]*domain.Plan{
		"p1": {ID: "p1", Code: "premium_1m", Price: 49000, DurationMonths: 1, IsActive: true},
	}}
	repo := NewCachedPlanRepository(inner, NewRedisCacheRepository(client))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		plans, err := repo.GetActivePlans(ctx)
		require.NoError(t, err)
		require.Len(t, plans, 1)
		assert.Equal(t, int64(49000), plans[0].Price)

		plan, err := repo.GetByID(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, "premium_1m", plan.Code)
	}
	assert.Equal(t, 1, inner.activeCalls)
	assert.Equal(t, 1, inner.byIDCalls)
}

func TestCachedPlanRepository_MissIsNotCached(t *testing.T) {
	_, client := newTestRedis(t)
	inner := &countingPlans{plans: map[string]*domain.Plan{}}
	repo := NewCachedPlanRepository(inner, NewRedisCacheRepository(client))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 2, inner.byIDCalls)
}

func TestCachedPlanRepository_UpsertInvalidates(t *testing.T) {
	mr, client := newTestRedis(t)
	inner := &countingPlans{plans: map[string]*domain.Plan{}}
	repo := NewCachedPlanRepository(inner, NewRedisCacheRepository(client))
	ctx := context.Background()

	plans, err := repo.GetActivePlans(ctx)
	require.NoError(t, err)
	assert.Empty(t, plans)
	assert.True(t, mr.Exists(activePlansKey))

	created, err := repo.UpsertByCode(ctx, &domain.Plan{Code: "premium_3m", Price: 129000, DurationMonths: 3, IsActive: true})
	require.NoError(t, err)
	assert.True(t, created)
	assert.False(t, mr.Exists(activePlansKey))

	plans, err = repo.GetActivePlans(ctx)
	require.NoError(t, err)
	assert.Len(t, plans, 1)
	assert.Equal(t, 2, inner.activeCalls)
}
