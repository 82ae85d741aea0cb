package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mansoorceksport/platepal/internal/domain"
	"github.com/mansoorceksport/platepal/internal/nutrition"
	"golang.org/x/sync/errgroup"
)

const progressKeyPrefix = "progress:"

// progressCachePattern matches every cached period of a user
func progressCachePattern(userID string) string {
	return progressKeyPrefix + userID + ":*"
}

func progressCacheKey(userID, period, anchor string) string {
	return fmt.Sprintf("%s%s:%s:%s", progressKeyPrefix, userID, period, anchor)
}

// ProgressService rolls a user's meals up into day, week and month views.
// Every call recomputes from a fresh snapshot of the profile and meals;
// the Redis cache only short-circuits repeated reads between changes.
type ProgressService struct {
	profiles domain.ProfileRepository
	meals    domain.MealRepository
	cache    domain.CacheRepository
	loc      *time.Location
	cacheTTL time.Duration
}

func NewProgressService(
	profiles domain.ProfileRepository,
	meals domain.MealRepository,
	cache domain.CacheRepository,
	loc *time.Location,
	cacheTTL time.Duration,
) *ProgressService {
	if loc == nil {
		loc = time.UTC
	}
	return &ProgressService{
		profiles: profiles,
		meals:    meals,
		cache:    cache,
		loc:      loc,
		cacheTTL: cacheTTL,
	}
}

// Location is the timezone calendar days are computed in
func (s *ProgressService) Location() *time.Location {
	return s.loc
}

type snapshot struct {
	targets domain.MacroTargets
	meals   []domain.Meal
}

// load fetches the profile and the meal list concurrently
func (s *ProgressService) load(ctx context.Context, userID string) (*snapshot, error) {
	var (
		profile *domain.UserProfile
		meals   []domain.Meal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.profiles.GetByUserID(gctx, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrProfileRequired
			}
			return fmt.Errorf("failed to load profile: %w", err)
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		m, err := s.meals.ListByUserID(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load meals: %w", err)
		}
		meals = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Meals without an explicit date fall on their local calendar day
	for i := range meals {
		meals[i].CreatedAt = meals[i].CreatedAt.In(s.loc)
	}
	return &snapshot{targets: profile.MacroTargets, meals: meals}, nil
}

// Day aggregates the calendar day containing day
func (s *ProgressService) Day(ctx context.Context, userID string, day time.Time) (*domain.DayProgress, error) {
	day = nutrition.StartOfDay(day.In(s.loc))
	key := progressCacheKey(userID, "day", nutrition.FormatDay(day))

	var cached domain.DayProgress
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	snap, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &domain.DayProgress{
		Day:     nutrition.ProcessDayData(snap.meals, day, snap.targets),
		Targets: snap.targets,
	}
	s.cacheSet(ctx, key, result)
	return result, nil
}

// Week aggregates the Monday-aligned week containing anchor
func (s *ProgressService) Week(ctx context.Context, userID string, anchor time.Time) (*domain.WeekProgress, error) {
	monday := nutrition.StartOfWeek(anchor.In(s.loc))
	key := progressCacheKey(userID, "week", nutrition.FormatDay(monday))

	var cached domain.WeekProgress
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	snap, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	week := nutrition.ProcessWeekData(snap.meals, monday, snap.targets)
	stats := nutrition.CalculateWeeklyStats(week, snap.targets)
	result := &domain.WeekProgress{
		Week:         week,
		Stats:        stats,
		Grade:        nutrition.Grade(stats.ProteinHitRate, stats.CarbsHitRate, stats.FatHitRate),
		Targets:      snap.targets,
		PreviousWeek: nutrition.FormatDay(nutrition.PreviousWeek(monday)),
		NextWeek:     nutrition.FormatDay(nutrition.NextWeek(monday)),
	}
	s.cacheSet(ctx, key, result)
	return result, nil
}

// Month aggregates a calendar month
func (s *ProgressService) Month(ctx context.Context, userID string, year int, month time.Month) (*domain.MonthProgress, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: month %d", domain.ErrInvalidInput, month)
	}
	key := progressCacheKey(userID, "month", fmt.Sprintf("%04d-%02d", year, int(month)))

	var cached domain.MonthProgress
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	snap, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	data := nutrition.ProcessMonthData(snap.meals, year, month, s.loc, snap.targets)
	stats := nutrition.CalculateMonthlyStats(data, snap.targets)
	prevYear, prevMonth := nutrition.PreviousMonth(year, month)
	nextYear, nextMonth := nutrition.NextMonth(year, month)

	result := &domain.MonthProgress{
		Month:         data,
		Stats:         stats,
		Grade:         nutrition.Grade(stats.ProteinHitRate, stats.CarbsHitRate, stats.FatHitRate),
		Targets:       snap.targets,
		PreviousMonth: domain.MonthRef{Year: prevYear, Month: prevMonth},
		NextMonth:     domain.MonthRef{Year: nextYear, Month: nextMonth},
	}
	s.cacheSet(ctx, key, result)
	return result, nil
}

// Invalidate drops every cached period of a user
func (s *ProgressService) Invalidate(ctx context.Context, userID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.DeleteByPattern(ctx, progressCachePattern(userID))
}

func (s *ProgressService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil || s.cacheTTL <= 0 {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		log.Printf("[Progress] Cache read failed for %s: %v", key, err)
	}
	return false
}

func (s *ProgressService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		log.Printf("[Progress] Cache write failed for %s: %v", key, err)
	}
}
