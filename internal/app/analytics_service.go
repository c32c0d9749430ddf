package app

import (
	"encoding/json"
	"math"
	"slices"
	"time"

	"bodymetrics/internal/domain"
)

// Stats summarises the BMI values of a log. Average, Min and Max are nil when
// Count is zero.
type Stats struct {
	Count   int      `json:"count"`
	Average *float64 `json:"average"`
	Min     *float64 `json:"min"`
	Max     *float64 `json:"max"`
}

// Zone is a BMI interval [Lower, Upper) mapped to a category, used to shade
// a trend chart. Upper is +Inf for the last zone.
type Zone struct {
	Lower          float64               `json:"lower"`
	Upper          float64               `json:"upper"`
	Classification domain.Classification `json:"classification"`
}

// MarshalJSON encodes an unbounded Upper as null.
func (z Zone) MarshalJSON() ([]byte, error) {
	var upper *float64
	if !math.IsInf(z.Upper, 1) {
		upper = &z.Upper
	}
	return json.Marshal(struct {
		Lower          float64               `json:"lower"`
		Upper          *float64              `json:"upper"`
		Classification domain.Classification `json:"classification"`
	}{z.Lower, upper, z.Classification})
}

// SeriesPoint is a single trend point.
type SeriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	BMI       float64   `json:"bmi"`
}

// Summarize computes count, average, min and max BMI over log.
func Summarize(log []domain.Measurement) Stats {
	if len(log) == 0 {
		return Stats{}
	}
	sum := 0.0
	lo, hi := log[0].BMI, log[0].BMI
	for _, m := range log {
		sum += m.BMI
		lo = math.Min(lo, m.BMI)
		hi = math.Max(hi, m.BMI)
	}
	avg := sum / float64(len(log))
	return Stats{Count: len(log), Average: &avg, Min: &lo, Max: &hi}
}

// ClassificationZones returns the fixed BMI bands in ascending order.
func ClassificationZones() []Zone {
	return []Zone{
		{Lower: 0, Upper: domain.NormalMinBMI, Classification: domain.Underweight},
		{Lower: domain.NormalMinBMI, Upper: domain.OverweightMinBMI, Classification: domain.Normal},
		{Lower: domain.OverweightMinBMI, Upper: domain.ObeseMinBMI, Classification: domain.Overweight},
		{Lower: domain.ObeseMinBMI, Upper: math.Inf(1), Classification: domain.Obese},
	}
}

// Series projects log onto (timestamp, bmi) points ordered by timestamp.
// Records with equal timestamps keep their insertion order.
func Series(log []domain.Measurement) []SeriesPoint {
	points := make([]SeriesPoint, 0, len(log))
	for _, m := range log {
		points = append(points, SeriesPoint{Timestamp: m.Timestamp, BMI: m.BMI})
	}
	slices.SortStableFunc(points, func(a, b SeriesPoint) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return points
}

// AnalyticsService serves statistics and chart data from the history store.
type AnalyticsService struct {
	history *HistoryStore
}

// NewAnalyticsService creates an AnalyticsService reading from history.
func NewAnalyticsService(history *HistoryStore) *AnalyticsService {
	return &AnalyticsService{history: history}
}

// Stats summarises the current history.
func (s *AnalyticsService) Stats() Stats {
	return Summarize(s.history.All())
}

// Zones returns the classification bands for chart shading.
func (s *AnalyticsService) Zones() []Zone {
	return ClassificationZones()
}

// Trend returns the BMI series of the current history.
func (s *AnalyticsService) Trend() []SeriesPoint {
	return Series(s.history.All())
}
