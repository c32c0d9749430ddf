package domain

import "github.com/shopspring/decimal"

// BMI category thresholds. Each bound belongs to the category above it.
const (
	NormalMinBMI     = 18.5
	OverweightMinBMI = 25.0
	ObeseMinBMI      = 30.0

	// IdealMaxBMI is the upper BMI used for the ideal weight range.
	IdealMaxBMI = 24.9
)

// classifyPlaces is the precision BMI is rounded to before the threshold
// lookup, so that w / h² computed from a boundary weight lands on the boundary.
const classifyPlaces = 6

// MetricsInput is a validated set of raw measurement values in metric units.
type MetricsInput struct {
	WeightKg float64
	HeightM  float64
	Age      int
	Sex      Sex
}

// ComputeMetrics derives BMI, BMR and the classification from in. It does not
// assign a timestamp.
func ComputeMetrics(in MetricsInput) (Measurement, error) {
	if err := validateInput(in.WeightKg, in.HeightM, in.Age, in.Sex); err != nil {
		return Measurement{}, err
	}
	bmi := BMI(in.WeightKg, in.HeightM)
	return Measurement{
		WeightKg:       in.WeightKg,
		HeightM:        in.HeightM,
		Age:            in.Age,
		Sex:            in.Sex,
		BMI:            bmi,
		BMR:            BMR(in.WeightKg, in.HeightM, in.Age, in.Sex),
		Classification: Classify(bmi),
	}, nil
}

// BMI returns weightKg / heightM² at full precision.
func BMI(weightKg, heightM float64) float64 {
	return weightKg / (heightM * heightM)
}

// BMR returns the Mifflin-St Jeor basal metabolic rate in kcal/day.
func BMR(weightKg, heightM float64, age int, sex Sex) float64 {
	bmr := 10*weightKg + 6.25*(heightM*100) - 5*float64(age)
	if sex == SexMale {
		return bmr + 5
	}
	return bmr - 161
}

// Classify maps any BMI value to exactly one category.
func Classify(bmi float64) Classification {
	v := round(bmi, classifyPlaces)
	switch {
	case v < NormalMinBMI:
		return Underweight
	case v < OverweightMinBMI:
		return Normal
	case v < ObeseMinBMI:
		return Overweight
	default:
		return Obese
	}
}

// WeightRange is a closed interval of weights in kilograms.
type WeightRange struct {
	MinKg float64 `json:"minKg"`
	MaxKg float64 `json:"maxKg"`
}

// IdealWeightRange returns the weights that put heightM inside the Normal band.
func IdealWeightRange(heightM float64) (WeightRange, error) {
	if !finite(heightM) || heightM <= 0 {
		return WeightRange{}, &ValidationError{Field: "height", Reason: "must be greater than 0"}
	}
	h2 := heightM * heightM
	return WeightRange{MinKg: NormalMinBMI * h2, MaxKg: IdealMaxBMI * h2}, nil
}

// DisplayBMI rounds a BMI to two decimals for presentation. Stored values keep
// full precision.
func DisplayBMI(bmi float64) float64 {
	return round(bmi, 2)
}

// DisplayBMR rounds a BMR to whole kilocalories.
func DisplayBMR(bmr float64) float64 {
	return round(bmr, 0)
}

// Display returns the range rounded to one decimal.
func (r WeightRange) Display() WeightRange {
	return WeightRange{MinKg: round(r.MinKg, 1), MaxKg: round(r.MaxKg, 1)}
}

func round(v float64, places int32) float64 {
	if !finite(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func validateInput(weightKg, heightM float64, age int, sex Sex) error {
	if !finite(weightKg) || weightKg <= 0 {
		return &ValidationError{Field: "weight", Reason: "must be greater than 0"}
	}
	if !finite(heightM) || heightM <= 0 {
		return &ValidationError{Field: "height", Reason: "must be greater than 0"}
	}
	if age <= 0 {
		return &ValidationError{Field: "age", Reason: "must be greater than 0"}
	}
	if !sex.Valid() {
		return &ValidationError{Field: "sex", Reason: "must be male or female"}
	}
	return nil
}
