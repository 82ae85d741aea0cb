package nutrition

import (
	"sort"

	"github.com/mansoorceksport/platepal/internal/domain"
)

// CalculateWeeklyStats summarises the days of a week that have meals.
// Hits are re-evaluated against targets so a stale week still reflects the
// current profile. An untracked week yields zero values and no best/worst day.
func CalculateWeeklyStats(week domain.WeekData, targets domain.MacroTargets) domain.WeeklyStats {
	var stats domain.WeeklyStats

	tracked := trackedDays(week.Days[:], targets)
	if len(tracked) == 0 {
		return stats
	}

	var calories float64
	bestScore, worstScore := -1, 4
	for i := range tracked {
		day := tracked[i]
		calories += day.Calories
		countHits(day.MacrosHit, &stats.ProteinHitDays, &stats.CarbsHitDays, &stats.FatHitDays)

		// ties keep the earlier day
		score := day.MacrosHit.Count()
		if score > bestScore {
			bestScore = score
			stats.BestDay = &tracked[i]
		}
		if score < worstScore {
			worstScore = score
			stats.WorstDay = &tracked[i]
		}
	}

	n := len(tracked)
	stats.TotalDays = n
	stats.AvgCalories = calories / float64(n)
	stats.ProteinHitRate = rate(stats.ProteinHitDays, n)
	stats.CarbsHitRate = rate(stats.CarbsHitDays, n)
	stats.FatHitRate = rate(stats.FatHitDays, n)
	return stats
}

// CalculateMonthlyStats summarises a month grid. Streaks run over tracked
// days in date order: a day hitting all macros extends the streak and any
// other tracked day resets it. Untracked days do not break a streak.
func CalculateMonthlyStats(month domain.MonthData, targets domain.MacroTargets) domain.MonthlyStats {
	var stats domain.MonthlyStats

	days := make([]domain.DayData, 0, len(month.Days))
	for _, d := range month.Days {
		if d == nil {
			continue
		}
		stats.DaysInMonth++
		days = append(days, *d)
	}

	tracked := trackedDays(days, targets)
	if len(tracked) == 0 {
		return stats
	}

	sort.SliceStable(tracked, func(i, j int) bool {
		return tracked[i].Date < tracked[j].Date
	})

	var calories float64
	streak := 0
	for _, day := range tracked {
		calories += day.Calories
		countHits(day.MacrosHit, &stats.ProteinHitDays, &stats.CarbsHitDays, &stats.FatHitDays)

		if day.MacrosHit.All {
			streak++
		} else {
			streak = 0
		}
		if streak > stats.BestStreak {
			stats.BestStreak = streak
		}
	}

	n := len(tracked)
	stats.DaysTracked = n
	stats.CurrentStreak = streak
	stats.AvgCalories = calories / float64(n)
	stats.ProteinHitRate = rate(stats.ProteinHitDays, n)
	stats.CarbsHitRate = rate(stats.CarbsHitDays, n)
	stats.FatHitRate = rate(stats.FatHitDays, n)
	return stats
}

// Grade maps the mean of the three hit rates (0-100) to a letter
func Grade(proteinRate, carbsRate, fatRate float64) string {
	avg := (proteinRate + carbsRate + fatRate) / 3
	switch {
	case avg >= 90:
		return "A+"
	case avg >= 85:
		return "A"
	case avg >= 80:
		return "B+"
	case avg >= 75:
		return "B"
	case avg >= 70:
		return "C+"
	case avg >= 65:
		return "C"
	case avg >= 60:
		return "D"
	case avg >= 50:
		return "D-"
	default:
		return "F"
	}
}

// trackedDays copies the days with meals and refreshes their hit flags
func trackedDays(days []domain.DayData, targets domain.MacroTargets) []domain.DayData {
	var tracked []domain.DayData
	for _, d := range days {
		if !d.HasData() {
			continue
		}
		d.MacrosHit = CheckMacrosHit(domain.DayTotals{
			Calories: d.Calories,
			Protein:  d.Protein,
			Carbs:    d.Carbs,
			Fat:      d.Fat,
		}, targets, DefaultTolerance)
		tracked = append(tracked, d)
	}
	return tracked
}

func countHits(hit domain.MacroHit, protein, carbs, fat *int) {
	if hit.Protein {
		*protein++
	}
	if hit.Carbs {
		*carbs++
	}
	if hit.Fat {
		*fat++
	}
}

func rate(hits, days int) float64 {
	return float64(hits) / float64(days) * 100
}
