package telemetry

import (
	"context"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "platepal-api"

// MealMetrics counts meal pipeline outcomes. Instruments come from the
// global meter provider, which is a no-op until Initialize runs.
type MealMetrics struct {
	analyzed         metric.Int64Counter
	analysisFailures metric.Int64Counter
	saved            metric.Int64Counter
	calories         metric.Float64Histogram
}

func NewMealMetrics() *MealMetrics {
	meter := otel.Meter(meterName)
	m := &MealMetrics{}

	var err error
	if m.analyzed, err = meter.Int64Counter("platepal.meals.analyzed",
		metric.WithDescription("Meal photos analysed by the vision model")); err != nil {
		log.Printf("[Telemetry] counter platepal.meals.analyzed: %v", err)
	}
	if m.analysisFailures, err = meter.Int64Counter("platepal.meals.analysis_failures",
		metric.WithDescription("Meal photo analyses that failed")); err != nil {
		log.Printf("[Telemetry] counter platepal.meals.analysis_failures: %v", err)
	}
	if m.saved, err = meter.Int64Counter("platepal.meals.saved",
		metric.WithDescription("Meals persisted to the log")); err != nil {
		log.Printf("[Telemetry] counter platepal.meals.saved: %v", err)
	}
	if m.calories, err = meter.Float64Histogram("platepal.meals.calories",
		metric.WithDescription("Estimated calories per analysed meal"),
		metric.WithUnit("kcal")); err != nil {
		log.Printf("[Telemetry] histogram platepal.meals.calories: %v", err)
	}
	return m
}

func (m *MealMetrics) Analyzed(ctx context.Context, calories float64) {
	if m == nil {
		return
	}
	if m.analyzed != nil {
		m.analyzed.Add(ctx, 1)
	}
	if m.calories != nil {
		m.calories.Record(ctx, calories)
	}
}

func (m *MealMetrics) AnalysisFailed(ctx context.Context, reason string) {
	if m == nil || m.analysisFailures == nil {
		return
	}
	m.analysisFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// Saved records a stored meal; source is "analysis" or "manual"
func (m *MealMetrics) Saved(ctx context.Context, source string) {
	if m == nil || m.saved == nil {
		return
	}
	m.saved.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}
