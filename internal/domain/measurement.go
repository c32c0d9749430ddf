package domain

import (
	"fmt"
	"math"
	"time"
)

// Sex selects the constant term of the Mifflin-St Jeor equation.
type Sex string

// Supported sexes.
const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// ParseSex accepts "male"/"female" in any case, plus "m"/"f".
func ParseSex(s string) (Sex, error) {
	switch normalize(s) {
	case "male", "m":
		return SexMale, nil
	case "female", "f":
		return SexFemale, nil
	}
	return "", &ValidationError{Field: "sex", Reason: fmt.Sprintf("unknown value %q", s)}
}

// Valid reports whether s is one of the supported sexes.
func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale
}

// UnmarshalText rejects unknown sexes so corrupt history is detected on load.
func (s *Sex) UnmarshalText(b []byte) error {
	v := Sex(b)
	if !v.Valid() {
		return fmt.Errorf("invalid sex %q", string(b))
	}
	*s = v
	return nil
}

// Classification is the BMI category of a measurement.
type Classification string

// BMI categories, in ascending BMI order.
const (
	Underweight Classification = "Underweight"
	Normal      Classification = "Normal"
	Overweight  Classification = "Overweight"
	Obese       Classification = "Obese"
)

// Classifications lists every category in ascending BMI order.
var Classifications = []Classification{Underweight, Normal, Overweight, Obese}

// Valid reports whether c is a known category.
func (c Classification) Valid() bool {
	switch c {
	case Underweight, Normal, Overweight, Obese:
		return true
	}
	return false
}

// UnmarshalText rejects unknown categories.
func (c *Classification) UnmarshalText(b []byte) error {
	v := Classification(b)
	if !v.Valid() {
		return fmt.Errorf("invalid classification %q", string(b))
	}
	*c = v
	return nil
}

// Advice returns a one-line recommendation for the category.
func (c Classification) Advice() string {
	switch c {
	case Underweight:
		return "Focus on a nutrient-rich diet to gain weight safely."
	case Normal:
		return "Maintain your current healthy habits."
	case Overweight:
		return "Consider consulting a doctor or dietitian to manage weight."
	case Obese:
		return "Seeking professional health guidance is highly recommended."
	}
	return ""
}

// Measurement is one persisted body measurement with its derived metrics.
// Timestamp and ID stay zero until the history store records it.
type Measurement struct {
	ID             string         `json:"id"`
	Timestamp      time.Time      `json:"timestamp"`
	WeightKg       float64        `json:"weightKg"`
	HeightM        float64        `json:"heightM"`
	Age            int            `json:"age"`
	Sex            Sex            `json:"sex"`
	BMI            float64        `json:"bmi"`
	BMR            float64        `json:"bmr"`
	Classification Classification `json:"classification"`
}

// Validate checks the raw inputs and that the derived fields agree with them.
// It is applied to every record read back from storage.
func (m Measurement) Validate() error {
	if err := validateInput(m.WeightKg, m.HeightM, m.Age, m.Sex); err != nil {
		return err
	}
	if !finite(m.BMI) || m.BMI <= 0 {
		return &ValidationError{Field: "bmi", Reason: "must be a positive number"}
	}
	if !finite(m.BMR) {
		return &ValidationError{Field: "bmr", Reason: "must be a number"}
	}
	if want := Classify(m.BMI); m.Classification != want {
		return &ValidationError{
			Field:  "classification",
			Reason: fmt.Sprintf("%q does not match bmi %.2f (%s)", m.Classification, m.BMI, want),
		}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
