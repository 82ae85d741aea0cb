package service

import (
	"context"
	"testing"
	"time"

	"github.com/mansoorceksport/platepal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func maintainInput() ProfileInput {
	return ProfileInput{
		Goal:          domain.GoalMaintain,
		Age:           25,
		Gender:        domain.GenderFemale,
		Weight:        60,
		Height:        165,
		ActivityLevel: domain.ActivitySedentary,
	}
}

func TestProfileInputValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ProfileInput)
		valid  bool
	}{
		{"valid", func(*ProfileInput) {}, true},
		{"unknown goal", func(in *ProfileInput) { in.Goal = "bulk" }, false},
		{"unknown gender", func(in *ProfileInput) { in.Gender = "x" }, false},
		{"unknown activity", func(in *ProfileInput) { in.ActivityLevel = "couch" }, false},
		{"zero age", func(in *ProfileInput) { in.Age = 0 }, false},
		{"zero weight", func(in *ProfileInput) { in.Weight = 0 }, false},
		{"huge height", func(in *ProfileInput) { in.Height = 400 }, false},
		{"negative targets", func(in *ProfileInput) { in.MacroTargets = &domain.MacroTargets{Protein: -1} }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := maintainInput()
			tt.mutate(&in)
			err := in.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
			}
		})
	}
}

func TestSaveProfile(t *testing.T) {
	ctx := context.Background()
	profiles := newMemProfiles()
	notifier := &recordingNotifier{}
	svc := NewProfileService(profiles, nil, notifier)

	_, err := svc.GetProfile(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrProfileRequired)

	profile, err := svc.SaveProfile(ctx, "u1", maintainInput())
	require.NoError(t, err)
	assert.Equal(t, domain.MacroTargets{Calories: 1614, Protein: 108, Carbs: 174, Fat: 54}, profile.MacroTargets)
	assert.Equal(t, []string{ReasonProfileUpdated}, notifier.reasons())

	// supplied targets are ignored for calculator goals
	in := maintainInput()
	in.MacroTargets = &domain.MacroTargets{Calories: 1, Protein: 1, Carbs: 1, Fat: 1}
	profile, err = svc.SaveProfile(ctx, "u1", in)
	require.NoError(t, err)
	assert.Equal(t, 1614, profile.MacroTargets.Calories)
}

func TestSaveProfile_CustomTargets(t *testing.T) {
	ctx := context.Background()
	svc := NewProfileService(newMemProfiles(), nil, nil)
	custom := domain.MacroTargets{Calories: 1800, Protein: 150, Carbs: 120, Fat: 80}

	// custom without targets starts from maintenance
	in := maintainInput()
	in.Goal = domain.GoalCustom
	profile, err := svc.SaveProfile(ctx, "u1", in)
	require.NoError(t, err)
	assert.Equal(t, 1614, profile.MacroTargets.Calories)

	in.MacroTargets = &custom
	profile, err = svc.SaveProfile(ctx, "u1", in)
	require.NoError(t, err)
	assert.Equal(t, custom, profile.MacroTargets)

	// later edits without targets keep the stored custom values
	in.MacroTargets = nil
	in.Weight = 62
	profile, err = svc.SaveProfile(ctx, "u1", in)
	require.NoError(t, err)
	assert.Equal(t, custom, profile.MacroTargets)
}

func TestPreviewTargets(t *testing.T) {
	svc := NewProfileService(newMemProfiles(), nil, nil)

	targets, err := svc.PreviewTargets(ProfileInput{
		Goal:          domain.GoalLose,
		Age:           25,
		Gender:        domain.GenderMale,
		Weight:        70,
		Height:        175,
		ActivityLevel: domain.ActivityModerate,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MacroTargets{Calories: 2075, Protein: 140, Carbs: 156, Fat: 69}, targets)

	_, err = svc.PreviewTargets(ProfileInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEnergy(t *testing.T) {
	ctx := context.Background()
	svc := NewProfileService(newMemProfiles(), nil, nil)
	_, err := svc.SaveProfile(ctx, "u1", maintainInput())
	require.NoError(t, err)

	energy, err := svc.Energy(ctx, "u1")
	require.NoError(t, err)
	assert.InDelta(t, 1345.25, energy.BMR, 0.001)
	assert.InDelta(t, 1614.3, energy.TDEE, 0.001)
	assert.Equal(t, 1.2, energy.ActivityMultiplier)
}

func TestRecalculateTargets(t *testing.T) {
	ctx := context.Background()
	profiles := newMemProfiles()
	notifier := &recordingNotifier{}
	svc := NewProfileService(profiles, nil, notifier)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }

	stale := domain.MacroTargets{Calories: 1000, Protein: 50, Carbs: 100, Fat: 30}
	profiles.profiles["u1"] = &domain.UserProfile{
		UserID: "u1", Goal: domain.GoalMaintain, Age: 25, Gender: domain.GenderFemale,
		Weight: 60, Height: 165, ActivityLevel: domain.ActivitySedentary, MacroTargets: stale,
	}
	profiles.profiles["u2"] = &domain.UserProfile{
		UserID: "u2", Goal: domain.GoalCustom, Age: 25, Gender: domain.GenderFemale,
		Weight: 60, Height: 165, ActivityLevel: domain.ActivitySedentary, MacroTargets: stale,
	}

	changed, err := svc.RecalculateTargets(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	assert.Equal(t, stale, profiles.profiles["u1"].MacroTargets, "dry run writes nothing")

	changed, err = svc.RecalculateTargets(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	assert.Equal(t, 1614, profiles.profiles["u1"].MacroTargets.Calories)
	assert.Equal(t, stale, profiles.profiles["u2"].MacroTargets)
	assert.Len(t, notifier.reasons(), 1)

	changed, err = svc.RecalculateTargets(ctx, false)
	require.NoError(t, err)
	assert.Zero(t, changed)
}
