package domain

import "strings"

const (
	kgPerLb = 0.45359237
	mPerIn  = 0.0254
)

// UnitSystem names the units raw input is expressed in.
type UnitSystem string

// Supported unit systems. Metric is kg and cm, imperial is lb and in.
const (
	Metric   UnitSystem = "metric"
	Imperial UnitSystem = "imperial"
)

// ParseUnitSystem maps user text to a UnitSystem; empty means metric.
func ParseUnitSystem(s string) (UnitSystem, error) {
	switch normalize(s) {
	case "", "metric", "kg":
		return Metric, nil
	case "imperial", "lb", "lbs":
		return Imperial, nil
	}
	return "", &ValidationError{Field: "unit", Reason: "must be metric or imperial"}
}

// WeightToKg converts a weight in the given system to kilograms.
func WeightToKg(v float64, u UnitSystem) float64 {
	if u == Imperial {
		return v * kgPerLb
	}
	return v
}

// HeightToM converts a height in the given system (cm or in) to metres.
func HeightToM(v float64, u UnitSystem) float64 {
	if u == Imperial {
		return v * mPerIn
	}
	return v / 100
}

// KgToLb converts kilograms to pounds for display.
func KgToLb(kg float64) float64 {
	return kg / kgPerLb
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
