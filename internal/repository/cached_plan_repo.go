package repository

import (
	"context"
	"time"

	"github.com/mansoorceksport/platepal/internal/domain"
)

const (
	planByIDKeyPrefix = "plan:id:"
	activePlansKey    = "plan:active"
	planCachePattern  = "plan:*"
	planCacheTTL      = 10 * time.Minute
)

// CachedPlanRepository wraps a plan store with Redis caching. The plan
// catalogue changes only when it is seeded, so reads almost always hit.
type CachedPlanRepository struct {
	plans domain.PlanRepository
	cache domain.CacheRepository
}

func NewCachedPlanRepository(plans domain.PlanRepository, cache domain.CacheRepository) *CachedPlanRepository {
	return &CachedPlanRepository{
		plans: plans,
		cache: cache,
	}
}

// GetByID retrieves a plan with caching
func (r *CachedPlanRepository) GetByID(ctx context.Context, id string) (*domain.Plan, error) {
	key := planByIDKeyPrefix + id

	var plan domain.Plan
	if err := r.cache.Get(ctx, key, &plan); err == nil {
		return &plan, nil
	}

	result, err := r.plans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Store in cache (ignore cache errors)
	_ = r.cache.Set(ctx, key, result, planCacheTTL)
	return result, nil
}

// GetActivePlans returns the purchasable catalogue with caching
func (r *CachedPlanRepository) GetActivePlans(ctx context.Context) ([]*domain.Plan, error) {
	var plans []*domain.Plan
	if err := r.cache.Get(ctx, activePlansKey, &plans); err == nil {
		return plans, nil
	}

	result, err := r.plans.GetActivePlans(ctx)
	if err != nil {
		return nil, err
	}

	_ = r.cache.Set(ctx, activePlansKey, result, planCacheTTL)
	return result, nil
}

// UpsertByCode writes through and drops every cached plan
func (r *CachedPlanRepository) UpsertByCode(ctx context.Context, plan *domain.Plan) (bool, error) {
	created, err := r.plans.UpsertByCode(ctx, plan)
	if err != nil {
		return false, err
	}
	_ = r.cache.DeleteByPattern(ctx, planCachePattern)
	return created, nil
}
