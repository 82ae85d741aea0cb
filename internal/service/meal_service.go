package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mansoorceksport/platepal/internal/domain"
	"github.com/mansoorceksport/platepal/internal/nutrition"
	"github.com/mansoorceksport/platepal/internal/telemetry"
	"github.com/oklog/ulid/v2"
)

// Data-changed reasons
const (
	ReasonMealCreated    = "meal_created"
	ReasonMealDeleted    = "meal_deleted"
	ReasonProfileUpdated = "profile_updated"
)

// AnalyzedPhoto is the model's estimate plus where the photo was stored
type AnalyzedPhoto struct {
	Analysis *domain.MealAnalysis `json:"analysis"`
	ImageURL string               `json:"image_url"`
}

// CreateMealInput is what a client submits when saving a meal.
// Date is optional; when empty the meal lands on today's local day.
type CreateMealInput struct {
	ImageURL string        `json:"image_url"`
	FoodName string        `json:"food_name"`
	Calories float64       `json:"calories"`
	Macros   domain.Macros `json:"macros"`
	AIAdvice string        `json:"ai_advice"`
	Date     string        `json:"date"`
}

// MealService owns the meal log: photo analysis, saving and removal
type MealService struct {
	meals    domain.MealRepository
	analyzer domain.MealAnalyzer
	files    domain.FileRepository
	progress *ProgressService
	notifier domain.ChangeNotifier
	metrics  *telemetry.MealMetrics
	loc      *time.Location
	now      func() time.Time
}

// NewMealService wires the meal log. files and notifier may be nil.
func NewMealService(
	meals domain.MealRepository,
	analyzer domain.MealAnalyzer,
	files domain.FileRepository,
	progress *ProgressService,
	notifier domain.ChangeNotifier,
	metrics *telemetry.MealMetrics,
) *MealService {
	loc := time.UTC
	if progress != nil {
		loc = progress.Location()
	}
	return &MealService{
		meals:    meals,
		analyzer: analyzer,
		files:    files,
		progress: progress,
		notifier: notifier,
		metrics:  metrics,
		loc:      loc,
		now:      time.Now,
	}
}

// AnalyzePhoto stores the photo and asks the vision model for an estimate.
// Nothing is saved to the log; the client confirms with CreateMeal.
func (s *MealService) AnalyzePhoto(ctx context.Context, userID string, image []byte) (*AnalyzedPhoto, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrInvalidInput)
	}
	contentType, err := detectImageType(image)
	if err != nil {
		return nil, err
	}

	var imageURL string
	if s.files != nil {
		key := fmt.Sprintf("meals/%s/%s.%s", userID, ulid.Make().String(), strings.TrimPrefix(contentType, "image/"))
		url, err := s.files.Upload(ctx, image, key, contentType)
		if err != nil {
			s.metrics.AnalysisFailed(ctx, "upload")
			return nil, fmt.Errorf("failed to upload image: %w", err)
		}
		imageURL = url
	}

	analysis, err := s.analyzer.AnalyzeMeal(ctx, image)
	if err != nil {
		s.metrics.AnalysisFailed(ctx, "model")
		return nil, fmt.Errorf("failed to analyze meal: %w", err)
	}
	s.metrics.Analyzed(ctx, analysis.Calories)

	log.Printf("[Meals] Analyzed photo for user %s: %s (%.0f kcal)", userID, analysis.FoodName, analysis.Calories)
	return &AnalyzedPhoto{Analysis: analysis, ImageURL: imageURL}, nil
}

// CreateMeal validates and saves a meal, then announces the change
func (s *MealService) CreateMeal(ctx context.Context, userID string, in CreateMealInput) (*domain.Meal, error) {
	name := strings.TrimSpace(in.FoodName)
	if name == "" {
		return nil, fmt.Errorf("%w: food_name is required", domain.ErrInvalidInput)
	}

	now := s.now().In(s.loc)
	date := strings.TrimSpace(in.Date)
	if date == "" {
		date = nutrition.FormatDay(now)
	} else if _, err := nutrition.ParseDay(date, s.loc); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrInvalidInput)
	}

	meal := nutrition.SanitizeMeal(domain.Meal{
		UserID:    userID,
		ImageURL:  strings.TrimSpace(in.ImageURL),
		FoodName:  name,
		Calories:  in.Calories,
		Macros:    in.Macros,
		AIAdvice:  strings.TrimSpace(in.AIAdvice),
		Date:      date,
		CreatedAt: now.UTC(),
	})

	if err := s.meals.Create(ctx, &meal); err != nil {
		return nil, fmt.Errorf("failed to save meal: %w", err)
	}

	source := "manual"
	if meal.ImageURL != "" {
		source = "analysis"
	}
	s.metrics.Saved(ctx, source)

	s.dataChanged(ctx, userID, ReasonMealCreated)
	return &meal, nil
}

// ListMeals returns the user's meals oldest first. A non-empty date keeps
// only meals falling on that day.
func (s *MealService) ListMeals(ctx context.Context, userID, date string) ([]domain.Meal, error) {
	if date != "" {
		if _, err := nutrition.ParseDay(date, s.loc); err != nil {
			return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrInvalidInput)
		}
	}

	meals, err := s.meals.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	meals = nutrition.SanitizeMeals(meals)
	if date == "" {
		return meals, nil
	}

	filtered := make([]domain.Meal, 0, len(meals))
	for _, m := range meals {
		m.CreatedAt = m.CreatedAt.In(s.loc)
		if nutrition.DayKey(m) == date {
			filtered = append(filtered, m)
		}
	}
	return filtered, nil
}

// GetMeal returns a meal owned by userID
func (s *MealService) GetMeal(ctx context.Context, userID, mealID string) (*domain.Meal, error) {
	meal, err := s.meals.GetByID(ctx, mealID)
	if err != nil {
		return nil, err
	}
	if meal.UserID != userID {
		return nil, domain.ErrForbidden
	}
	sanitized := nutrition.SanitizeMeal(*meal)
	return &sanitized, nil
}

func (s *MealService) DeleteMeal(ctx context.Context, userID, mealID string) error {
	if _, err := s.GetMeal(ctx, userID, mealID); err != nil {
		return err
	}
	if err := s.meals.Delete(ctx, mealID); err != nil {
		return err
	}
	s.dataChanged(ctx, userID, ReasonMealDeleted)
	return nil
}

// dataChanged drops local caches and tells other replicas. Failures are
// logged only; readers still recompute once the cache TTL runs out.
func (s *MealService) dataChanged(ctx context.Context, userID, reason string) {
	notifyDataChanged(ctx, s.progress, s.notifier, userID, reason, s.now())
}

func notifyDataChanged(ctx context.Context, progress *ProgressService, notifier domain.ChangeNotifier, userID, reason string, at time.Time) {
	if progress != nil {
		if err := progress.Invalidate(ctx, userID); err != nil {
			log.Printf("[Progress] Failed to invalidate cache for user %s: %v", userID, err)
		}
	}
	if notifier == nil {
		return
	}
	event := domain.DataChangedEvent{UserID: userID, Reason: reason, OccurredAt: at.UTC()}
	if err := notifier.PublishDataChanged(ctx, event); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("[Events] Failed to publish %s for user %s: %v", reason, userID, err)
	}
}
