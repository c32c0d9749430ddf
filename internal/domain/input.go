package domain

import (
	"strconv"
	"strings"
)

// RawInput is the unparsed form data supplied by an input collector.
type RawInput struct {
	Weight string
	Height string
	Age    string
	Sex    string
	Unit   string
}

// ParseInput parses each field into its type, converts to metric and
// validates the result. The first failing field is reported.
func ParseInput(raw RawInput) (MetricsInput, error) {
	unit, err := ParseUnitSystem(raw.Unit)
	if err != nil {
		return MetricsInput{}, err
	}
	weight, err := parseFloat("weight", raw.Weight)
	if err != nil {
		return MetricsInput{}, err
	}
	height, err := parseFloat("height", raw.Height)
	if err != nil {
		return MetricsInput{}, err
	}
	age, err := strconv.Atoi(strings.TrimSpace(raw.Age))
	if err != nil {
		return MetricsInput{}, &ValidationError{Field: "age", Reason: "must be a whole number"}
	}
	sex, err := ParseSex(raw.Sex)
	if err != nil {
		return MetricsInput{}, err
	}

	in := MetricsInput{
		WeightKg: WeightToKg(weight, unit),
		HeightM:  HeightToM(height, unit),
		Age:      age,
		Sex:      sex,
	}
	if err := validateInput(in.WeightKg, in.HeightM, in.Age, in.Sex); err != nil {
		return MetricsInput{}, err
	}
	return in, nil
}

func parseFloat(field, s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &ValidationError{Field: field, Reason: "is required"}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(v) {
		return 0, &ValidationError{Field: field, Reason: "must be a number"}
	}
	return v, nil
}
