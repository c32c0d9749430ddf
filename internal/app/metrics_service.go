// Package app holds the application services and business logic.
package app

import (
	"context"
	"errors"
	"fmt"

	"bodymetrics/internal/domain"
)

var (
	// ErrNoMeasurements indicates that the history is empty.
	ErrNoMeasurements = errors.New("no measurements recorded")
	// ErrPlanUnavailable indicates that no plan can be built for a measurement.
	ErrPlanUnavailable = errors.New("no diet plan for this measurement")
)

// Result is everything derived from one calculation.
type Result struct {
	Measurement domain.Measurement `json:"measurement"`
	DisplayBMI  float64            `json:"displayBmi"`
	DisplayBMR  float64            `json:"displayBmr"`
	IdealWeight domain.WeightRange `json:"idealWeight"`
	Advice      string             `json:"advice"`
	Plan        *domain.DietPlan   `json:"plan,omitempty"`
	PlanNote    string             `json:"planNote,omitempty"` // why Plan is nil
}

// MetricsService runs a calculation end to end: metrics, diet plan and
// recording the measurement in the history.
type MetricsService struct {
	history  *HistoryStore
	activity domain.ActivityLevel
}

// NewMetricsService creates a MetricsService that records into history and
// plans with the given default activity level.
func NewMetricsService(history *HistoryStore, activity domain.ActivityLevel) *MetricsService {
	if _, ok := activity.Factor(); !ok {
		activity = domain.DefaultActivityLevel
	}
	return &MetricsService{history: history, activity: activity}
}

// Calculate computes the metrics for in and appends the measurement to the
// history. Validation errors return no result. When only the write fails the
// computed result is returned together with the *domain.PersistenceError so
// the caller can show it while reporting that it was not saved. A plan that
// cannot be built (a BMR of zero or less) does not stop the measurement from
// being recorded; Plan is then nil and PlanNote explains why.
func (s *MetricsService) Calculate(ctx context.Context, in domain.MetricsInput) (*Result, error) {
	m, err := domain.ComputeMetrics(in)
	if err != nil {
		return nil, err
	}
	ideal, err := domain.IdealWeightRange(m.HeightM)
	if err != nil {
		return nil, err
	}

	res := &Result{
		DisplayBMI:  domain.DisplayBMI(m.BMI),
		DisplayBMR:  domain.DisplayBMR(m.BMR),
		IdealWeight: ideal.Display(),
		Advice:      m.Classification.Advice(),
	}
	if plan, err := domain.GeneratePlan(m, s.activity); err != nil {
		res.PlanNote = fmt.Sprintf("%v: %v", ErrPlanUnavailable, err)
	} else {
		res.Plan = &plan
	}
	saved, err := s.history.Append(ctx, m)
	if err != nil {
		res.Measurement = m
		return res, err
	}
	res.Measurement = saved
	return res, nil
}

// LatestPlan generates a diet plan for the most recent measurement. An empty
// level uses the service default.
func (s *MetricsService) LatestPlan(level domain.ActivityLevel) (*domain.DietPlan, error) {
	m, ok := s.history.Latest()
	if !ok {
		return nil, ErrNoMeasurements
	}
	if level == "" {
		level = s.activity
	}
	if _, ok := level.Factor(); !ok {
		return nil, &domain.ValidationError{Field: "activity", Reason: fmt.Sprintf("unknown level %q", level)}
	}
	plan, err := domain.GeneratePlan(m, level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlanUnavailable, err)
	}
	return &plan, nil
}

// ActivityLevel returns the default activity level used for plans.
func (s *MetricsService) ActivityLevel() domain.ActivityLevel {
	return s.activity
}
