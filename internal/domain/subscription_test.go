package domain

import (
	"testing"
	"time"
)

func TestCalculateNewEndDate(t *testing.T) {
	now := time.Date(2025, 1, 31, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name           string
		currentEnd     *time.Time
		durationMonths int
		want           time.Time
	}{
		{
			name:           "first purchase starts from now",
			currentEnd:     nil,
			durationMonths: 1,
			want:           now.AddDate(0, 1, 0),
		},
		{
			name:           "lapsed subscription restarts from now",
			currentEnd:     timePtr(now.AddDate(0, -2, 0)),
			durationMonths: 3,
			want:           now.AddDate(0, 3, 0),
		},
		{
			name:           "running subscription stacks on its end date",
			currentEnd:     timePtr(time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)),
			durationMonths: 12,
			want:           time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:           "end date in another zone is normalised",
			currentEnd:     timePtr(time.Date(2025, 2, 10, 7, 0, 0, 0, time.FixedZone("WIB", 7*3600))),
			durationMonths: 1,
			want:           time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateNewEndDate(tt.currentEnd, tt.durationMonths, now)
			if !got.Equal(tt.want) {
				t.Errorf("CalculateNewEndDate() = %v, want %v", got, tt.want)
			}
			if got.Location() != time.UTC {
				t.Errorf("CalculateNewEndDate() location = %v, want UTC", got.Location())
			}
		})
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
