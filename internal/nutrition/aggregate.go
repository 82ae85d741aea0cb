package nutrition

import (
	"time"

	"github.com/mansoorceksport/platepal/internal/domain"
)

// DefaultTolerance is the accepted deviation from a target (5%)
const DefaultTolerance = 0.05

// GroupMealsByDay buckets meals by DayKey. Order within a bucket follows
// the input order.
func GroupMealsByDay(meals []domain.Meal) map[string][]domain.Meal {
	groups := make(map[string][]domain.Meal)
	for _, m := range meals {
		key := DayKey(m)
		groups[key] = append(groups[key], m)
	}
	return groups
}

// CalculateDayTotals sums calories and macros. Malformed values count as zero.
func CalculateDayTotals(meals []domain.Meal) domain.DayTotals {
	var totals domain.DayTotals
	for _, m := range meals {
		totals.Calories += clean(m.Calories)
		totals.Protein += clean(m.Macros.Protein)
		totals.Carbs += clean(m.Macros.Carbs)
		totals.Fat += clean(m.Macros.Fat)
	}
	return totals
}

// CheckMacrosHit evaluates totals against targets. Protein only has a lower
// bound; carbs and fat must land inside the inclusive band on both sides.
func CheckMacrosHit(totals domain.DayTotals, targets domain.MacroTargets, tolerance float64) domain.MacroHit {
	hit := domain.MacroHit{
		Protein: totals.Protein >= float64(targets.Protein)*(1-tolerance),
		Carbs:   withinBand(totals.Carbs, float64(targets.Carbs), tolerance),
		Fat:     withinBand(totals.Fat, float64(targets.Fat), tolerance),
	}
	hit.All = hit.Protein && hit.Carbs && hit.Fat
	return hit
}

func withinBand(value, target, tolerance float64) bool {
	return value >= target*(1-tolerance) && value <= target*(1+tolerance)
}

// ProcessWeekData builds the Monday-aligned week containing start
func ProcessWeekData(meals []domain.Meal, start time.Time, targets domain.MacroTargets) domain.WeekData {
	groups := GroupMealsByDay(SanitizeMeals(meals))
	monday := StartOfWeek(start)
	year, week := WeekNumber(monday)

	data := domain.WeekData{
		StartDate:  monday,
		EndDate:    EndOfDay(monday.AddDate(0, 0, 6)),
		WeekNumber: week,
		Year:       year,
	}
	for i := range data.Days {
		key := FormatDay(monday.AddDate(0, 0, i))
		data.Days[i] = buildDay(key, groups[key], targets)
	}
	return data
}

// ProcessMonthData builds the calendar grid for a month. Blank cells stay
// nil, while days without meals get an empty DayData.
func ProcessMonthData(meals []domain.Meal, year int, month time.Month, loc *time.Location, targets domain.MacroTargets) domain.MonthData {
	groups := GroupMealsByDay(SanitizeMeals(meals))
	cells := DaysInMonth(year, month, loc)

	data := domain.MonthData{
		Month: month,
		Year:  year,
		Days:  make([]*domain.DayData, len(cells)),
	}
	for i, cell := range cells {
		if cell == nil {
			continue
		}
		key := FormatDay(*cell)
		day := buildDay(key, groups[key], targets)
		data.Days[i] = &day
	}
	return data
}

// ProcessDayData aggregates a single day
func ProcessDayData(meals []domain.Meal, day time.Time, targets domain.MacroTargets) domain.DayData {
	key := FormatDay(day)
	groups := GroupMealsByDay(SanitizeMeals(meals))
	return buildDay(key, groups[key], targets)
}

func buildDay(key string, meals []domain.Meal, targets domain.MacroTargets) domain.DayData {
	if meals == nil {
		meals = []domain.Meal{}
	}
	totals := CalculateDayTotals(meals)
	return domain.DayData{
		Date:      key,
		Calories:  totals.Calories,
		Protein:   totals.Protein,
		Carbs:     totals.Carbs,
		Fat:       totals.Fat,
		Meals:     meals,
		MacrosHit: CheckMacrosHit(totals, targets, DefaultTolerance),
	}
}
