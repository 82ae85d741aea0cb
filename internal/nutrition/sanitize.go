package nutrition

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mansoorceksport/platepal/internal/domain"
)

// Number coerces a loosely typed numeric value. Strings are parsed, and
// anything unparseable, non-finite or negative becomes 0.
func Number(v interface{}) float64 {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		f = parseFloat(n.String())
	case string:
		f = parseFloat(n)
	case fmt.Stringer:
		f = parseFloat(n.String())
	default:
		return 0
	}
	return clean(f)
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

func clean(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

// SanitizeMeal returns a copy of m with nutrition values made safe to sum
// and an unusable explicit date dropped.
func SanitizeMeal(m domain.Meal) domain.Meal {
	m.Calories = clean(m.Calories)
	m.Macros.Protein = clean(m.Macros.Protein)
	m.Macros.Carbs = clean(m.Macros.Carbs)
	m.Macros.Fat = clean(m.Macros.Fat)

	m.Date = strings.TrimSpace(m.Date)
	if m.Date != "" {
		if _, err := ParseDay(m.Date, nil); err != nil {
			m.Date = ""
		}
	}
	return m
}

// SanitizeMeals applies SanitizeMeal to every record
func SanitizeMeals(meals []domain.Meal) []domain.Meal {
	out := make([]domain.Meal, len(meals))
	for i, m := range meals {
		out[i] = SanitizeMeal(m)
	}
	return out
}

// DayKey is the single grouping rule for meals: an explicit date wins when
// it is a valid day key, otherwise the calendar day of CreatedAt in its own
// location is used.
func DayKey(m domain.Meal) string {
	if date := strings.TrimSpace(m.Date); date != "" {
		if day, err := ParseDay(date, nil); err == nil {
			return FormatDay(day)
		}
	}
	return FormatDay(m.CreatedAt)
}
