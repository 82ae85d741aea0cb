package domain

import "time"

// DayTotals are summed nutrition values for one day
type DayTotals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// MacroHit records which targets a day met
type MacroHit struct {
	Protein bool `json:"protein"`
	Carbs   bool `json:"carbs"`
	Fat     bool `json:"fat"`
	All     bool `json:"all"`
}

// Count returns how many of the three macros were hit
func (h MacroHit) Count() int {
	n := 0
	for _, hit := range []bool{h.Protein, h.Carbs, h.Fat} {
		if hit {
			n++
		}
	}
	return n
}

// DayData is the aggregated view of one calendar day. Date is "YYYY-MM-DD".
type DayData struct {
	Date      string   `json:"date"`
	Calories  float64  `json:"calories"`
	Protein   float64  `json:"protein"`
	Carbs     float64  `json:"carbs"`
	Fat       float64  `json:"fat"`
	Meals     []Meal   `json:"meals"`
	MacrosHit MacroHit `json:"macros_hit"`
}

// HasData reports whether at least one meal was logged on the day
func (d DayData) HasData() bool {
	return len(d.Meals) > 0
}

// WeekData always holds seven days starting on Monday
type WeekData struct {
	StartDate  time.Time  `json:"start_date"`
	EndDate    time.Time  `json:"end_date"`
	WeekNumber int        `json:"week_number"`
	Year       int        `json:"year"`
	Days       [7]DayData `json:"days"`
}

// MonthData is a calendar grid. Nil entries are leading blank cells.
type MonthData struct {
	Month time.Month `json:"month"`
	Year  int        `json:"year"`
	Days  []*DayData `json:"days"`
}

// WeeklyStats summarises the tracked days of a week
type WeeklyStats struct {
	AvgCalories    float64  `json:"avg_calories"`
	ProteinHitRate float64  `json:"protein_hit_rate"`
	CarbsHitRate   float64  `json:"carbs_hit_rate"`
	FatHitRate     float64  `json:"fat_hit_rate"`
	ProteinHitDays int      `json:"protein_hit_days"`
	CarbsHitDays   int      `json:"carbs_hit_days"`
	FatHitDays     int      `json:"fat_hit_days"`
	TotalDays      int      `json:"total_days"`
	BestDay        *DayData `json:"best_day"`
	WorstDay       *DayData `json:"worst_day"`
}

// MonthlyStats summarises the tracked days of a month
type MonthlyStats struct {
	DaysTracked    int     `json:"days_tracked"`
	DaysInMonth    int     `json:"days_in_month"`
	AvgCalories    float64 `json:"avg_calories"`
	ProteinHitRate float64 `json:"protein_hit_rate"`
	CarbsHitRate   float64 `json:"carbs_hit_rate"`
	FatHitRate     float64 `json:"fat_hit_rate"`
	ProteinHitDays int     `json:"protein_hit_days"`
	CarbsHitDays   int     `json:"carbs_hit_days"`
	FatHitDays     int     `json:"fat_hit_days"`
	BestStreak     int     `json:"best_streak"`
	CurrentStreak  int     `json:"current_streak"`
}

// DayProgress is the response for a single day
type DayProgress struct {
	Day     DayData      `json:"day"`
	Targets MacroTargets `json:"targets"`
}

// WeekProgress is the response for a week view
type WeekProgress struct {
	Week         WeekData     `json:"week"`
	Stats        WeeklyStats  `json:"stats"`
	Grade        string       `json:"grade"`
	Targets      MacroTargets `json:"targets"`
	PreviousWeek string       `json:"previous_week"`
	NextWeek     string       `json:"next_week"`
}

// MonthRef identifies a calendar month for navigation
type MonthRef struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// MonthProgress is the response for a month view
type MonthProgress struct {
	Month         MonthData    `json:"month"`
	Stats         MonthlyStats `json:"stats"`
	Grade         string       `json:"grade"`
	Targets       MacroTargets `json:"targets"`
	PreviousMonth MonthRef     `json:"previous_month"`
	NextMonth     MonthRef     `json:"next_month"`
}
