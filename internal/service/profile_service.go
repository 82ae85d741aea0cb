package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/mansoorceksport/platepal/internal/domain"
	"github.com/mansoorceksport/platepal/internal/nutrition"
)

// ProfileInput is the onboarding / settings form
type ProfileInput struct {
	Goal          domain.Goal          `json:"goal"`
	Age           int                  `json:"age"`
	Gender        domain.Gender        `json:"gender"`
	Weight        float64              `json:"weight"`
	Height        float64              `json:"height"`
	ActivityLevel domain.ActivityLevel `json:"activity_level"`
	MacroTargets  *domain.MacroTargets `json:"macro_targets,omitempty"`
}

// Validate checks enums and biometric ranges
func (in ProfileInput) Validate() error {
	switch {
	case !in.Goal.Valid():
		return fmt.Errorf("%w: unknown goal %q", domain.ErrInvalidInput, in.Goal)
	case !in.Gender.Valid():
		return fmt.Errorf("%w: unknown gender %q", domain.ErrInvalidInput, in.Gender)
	case !in.ActivityLevel.Valid():
		return fmt.Errorf("%w: unknown activity level %q", domain.ErrInvalidInput, in.ActivityLevel)
	case in.Age <= 0 || in.Age > 120:
		return fmt.Errorf("%w: age must be between 1 and 120", domain.ErrInvalidInput)
	case !positive(in.Weight) || in.Weight > 500:
		return fmt.Errorf("%w: weight must be between 0 and 500 kg", domain.ErrInvalidInput)
	case !positive(in.Height) || in.Height > 300:
		return fmt.Errorf("%w: height must be between 0 and 300 cm", domain.ErrInvalidInput)
	}
	if t := in.MacroTargets; t != nil && (t.Calories < 0 || t.Protein < 0 || t.Carbs < 0 || t.Fat < 0) {
		return fmt.Errorf("%w: macro targets cannot be negative", domain.ErrInvalidInput)
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// EnergyBreakdown explains how the targets were derived
type EnergyBreakdown struct {
	BMR                float64             `json:"bmr"`
	TDEE               float64             `json:"tdee"`
	ActivityMultiplier float64             `json:"activity_multiplier"`
	Targets            domain.MacroTargets `json:"targets"`
}

// ProfileService manages biometric profiles and their macro targets
type ProfileService struct {
	profiles domain.ProfileRepository
	progress *ProgressService
	notifier domain.ChangeNotifier
	now      func() time.Time
}

func NewProfileService(profiles domain.ProfileRepository, progress *ProgressService, notifier domain.ChangeNotifier) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		progress: progress,
		notifier: notifier,
		now:      time.Now,
	}
}

// GetProfile returns ErrProfileRequired for users who have not onboarded
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrProfileRequired
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// SaveProfile creates or updates the profile and derives its targets.
// Non-custom goals always get calculator targets. A custom goal keeps the
// supplied targets, else the previously stored custom targets, else starts
// from maintenance values.
func (s *ProfileService) SaveProfile(ctx context.Context, userID string, in ProfileInput) (*domain.UserProfile, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	custom := in.MacroTargets
	if in.Goal == domain.GoalCustom && custom == nil {
		existing, err := s.profiles.GetByUserID(ctx, userID)
		switch {
		case err == nil && existing.Goal == domain.GoalCustom:
			custom = &existing.MacroTargets
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return nil, fmt.Errorf("failed to get profile: %w", err)
		}
	}

	profile := &domain.UserProfile{
		UserID:        userID,
		Goal:          in.Goal,
		Age:           in.Age,
		Gender:        in.Gender,
		Weight:        in.Weight,
		Height:        in.Height,
		ActivityLevel: in.ActivityLevel,
		MacroTargets:  targetsFor(in, custom),
	}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	log.Printf("[Profile] Saved profile for user %s (goal=%s, %d kcal)", userID, profile.Goal, profile.MacroTargets.Calories)
	notifyDataChanged(ctx, s.progress, s.notifier, userID, ReasonProfileUpdated, s.now())
	return profile, nil
}

// PreviewTargets runs the calculator without saving anything
func (s *ProfileService) PreviewTargets(in ProfileInput) (domain.MacroTargets, error) {
	if err := in.Validate(); err != nil {
		return domain.MacroTargets{}, err
	}
	return targetsFor(in, in.MacroTargets), nil
}

// Energy reports BMR and TDEE for the stored profile
func (s *ProfileService) Energy(ctx context.Context, userID string) (*EnergyBreakdown, error) {
	p, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &EnergyBreakdown{
		BMR:                nutrition.BMR(p.Weight, p.Height, p.Age, p.Gender),
		TDEE:               nutrition.TDEE(p.Weight, p.Height, p.Age, p.Gender, p.ActivityLevel),
		ActivityMultiplier: nutrition.ActivityMultiplier(p.ActivityLevel),
		Targets:            p.MacroTargets,
	}, nil
}

// RecalculateTargets recomputes stored targets for every calculator-driven
// profile. Custom targets are never touched. Returns how many changed.
func (s *ProfileService) RecalculateTargets(ctx context.Context, dryRun bool) (int, error) {
	profiles, err := s.profiles.ListByGoals(ctx, []domain.Goal{domain.GoalLose, domain.GoalMaintain, domain.GoalBuildMuscle})
	if err != nil {
		return 0, fmt.Errorf("failed to list profiles: %w", err)
	}

	changed := 0
	for _, p := range profiles {
		targets := nutrition.CalculateMacroTargets(p.Goal, p.Weight, p.Height, p.Age, p.Gender, p.ActivityLevel, nil)
		if targets == p.MacroTargets {
			continue
		}
		changed++
		log.Printf("[Profile] User %s: %+v -> %+v", p.UserID, p.MacroTargets, targets)
		if dryRun {
			continue
		}
		if err := s.profiles.UpdateTargets(ctx, p.UserID, targets); err != nil {
			return changed, fmt.Errorf("failed to update targets for user %s: %w", p.UserID, err)
		}
		notifyDataChanged(ctx, s.progress, s.notifier, p.UserID, ReasonProfileUpdated, s.now())
	}
	return changed, nil
}

func targetsFor(in ProfileInput, custom *domain.MacroTargets) domain.MacroTargets {
	if in.Goal != domain.GoalCustom {
		custom = nil
	}
	return nutrition.CalculateMacroTargets(in.Goal, in.Weight, in.Height, in.Age, in.Gender, in.ActivityLevel, custom)
}
