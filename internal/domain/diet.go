package domain

import (
	"fmt"
	"math"
)

// ActivityLevel selects the multiplier applied to BMR for maintenance calories.
type ActivityLevel string

// Activity levels.
const (
	Sedentary  ActivityLevel = "sedentary"
	Light      ActivityLevel = "light"
	Moderate   ActivityLevel = "moderate"
	Active     ActivityLevel = "active"
	VeryActive ActivityLevel = "very_active"
)

// DefaultActivityLevel is used when none is configured.
const DefaultActivityLevel = Sedentary

// activityFactors is also the set of valid activity levels.
var activityFactors = map[ActivityLevel]float64{
	Sedentary:  1.2,
	Light:      1.375,
	Moderate:   1.55,
	Active:     1.725,
	VeryActive: 1.9,
}

// ParseActivityLevel maps user text to an ActivityLevel; empty means the default.
func ParseActivityLevel(s string) (ActivityLevel, error) {
	v := ActivityLevel(normalize(s))
	if v == "" {
		return DefaultActivityLevel, nil
	}
	if _, ok := activityFactors[v]; !ok {
		return "", &ValidationError{Field: "activity", Reason: fmt.Sprintf("unknown level %q", s)}
	}
	return v, nil
}

// Factor returns the BMR multiplier for the level.
func (l ActivityLevel) Factor() (float64, bool) {
	f, ok := activityFactors[l]
	return f, ok
}

// CalorieDirection is whether a plan targets a deficit, a surplus or maintenance.
type CalorieDirection string

// Calorie directions.
const (
	Deficit  CalorieDirection = "deficit"
	Maintain CalorieDirection = "maintain"
	Surplus  CalorieDirection = "surplus"
)

const (
	deficitShare = 0.20
	surplusShare = 0.15

	// minDailyKcal is the lowest target a plan will suggest.
	minDailyKcal = 1200

	kcalPerGramProtein = 4
	kcalPerGramCarb    = 4
	kcalPerGramFat     = 9
)

// MacroSplit is the share of daily calories per macronutrient, in percent,
// with the gram amounts at the plan's calorie target.
type MacroSplit struct {
	ProteinPct int     `json:"proteinPct"`
	CarbsPct   int     `json:"carbsPct"`
	FatPct     int     `json:"fatPct"`
	ProteinG   float64 `json:"proteinG"`
	CarbsG     float64 `json:"carbsG"`
	FatG       float64 `json:"fatG"`
}

// DietPlan is derived on demand from the latest measurement and never stored.
type DietPlan struct {
	Classification  Classification   `json:"classification"`
	ActivityLevel   ActivityLevel    `json:"activityLevel"`
	MaintenanceKcal float64          `json:"maintenanceKcal"`
	TargetKcal      float64          `json:"targetKcal"`
	Direction       CalorieDirection `json:"direction"`
	Macros          MacroSplit       `json:"macros"`
	Title           string           `json:"title"`
	Focus           string           `json:"focus"`
	Suggestions     []string         `json:"suggestions"`
}

// GeneratePlan derives a calorie target, macro split and meal strategy from m.
func GeneratePlan(m Measurement, level ActivityLevel) (DietPlan, error) {
	if err := m.Validate(); err != nil {
		return DietPlan{}, err
	}
	factor, ok := level.Factor()
	if !ok {
		return DietPlan{}, &ValidationError{Field: "activity", Reason: fmt.Sprintf("unknown level %q", level)}
	}
	if m.BMR <= 0 {
		return DietPlan{}, &ValidationError{Field: "bmr", Reason: "must be greater than 0"}
	}

	maintenance := m.BMR * factor
	dir := directionFor(m.Classification)
	target := maintenance
	switch dir {
	case Deficit:
		target = maintenance * (1 - deficitShare)
	case Surplus:
		target = maintenance * (1 + surplusShare)
	}
	target = math.Max(math.Round(target), minDailyKcal)

	title, focus, suggestions := mealStrategy(m.Classification, dir)
	return DietPlan{
		Classification:  m.Classification,
		ActivityLevel:   level,
		MaintenanceKcal: math.Round(maintenance),
		TargetKcal:      target,
		Direction:       dir,
		Macros:          macroSplit(m.Age, dir, target),
		Title:           title,
		Focus:           fmt.Sprintf(focus, target),
		Suggestions:     suggestions,
	}, nil
}

func directionFor(c Classification) CalorieDirection {
	switch c {
	case Overweight, Obese:
		return Deficit
	case Underweight:
		return Surplus
	}
	return Maintain
}

// macroSplit starts from an age-banded base and shifts toward protein in a
// deficit and toward carbohydrate in a surplus.
func macroSplit(age int, dir CalorieDirection, kcal float64) MacroSplit {
	var p, c, f int
	switch {
	case age >= 50:
		p, c, f = 30, 40, 30
	case age >= 30:
		p, c, f = 25, 45, 30
	default:
		p, c, f = 20, 50, 30
	}
	switch dir {
	case Deficit:
		p, c = p+5, c-5
	case Surplus:
		c, f = c+5, f-5
	}
	return MacroSplit{
		ProteinPct: p,
		CarbsPct:   c,
		FatPct:     f,
		ProteinG:   math.Round(kcal * float64(p) / 100 / kcalPerGramProtein),
		CarbsG:     math.Round(kcal * float64(c) / 100 / kcalPerGramCarb),
		FatG:       math.Round(kcal * float64(f) / 100 / kcalPerGramFat),
	}
}

// mealStrategy returns the title, a focus format string taking the target
// kcal, and meal suggestions.
func mealStrategy(c Classification, dir CalorieDirection) (string, string, []string) {
	switch dir {
	case Deficit:
		return fmt.Sprintf("Weight Management Plan (%s)", c),
			"Aim for about %.0f kcal per day, a steady deficit that supports safe weight loss.",
			[]string{
				"Eat 4-5 smaller meals spread through the day to manage hunger.",
				"Build every meal around lean protein (chicken breast, fish, tofu) to preserve muscle.",
				"Choose complex carbohydrates (oats, brown rice, whole wheat) over simple sugars.",
				"Fill half the plate with non-starchy vegetables.",
				"Drink plenty of water and limit sugary drinks.",
			}
	case Surplus:
		return fmt.Sprintf("Healthy Weight Gain Plan (%s)", c),
			"Increase intake to about %.0f kcal per day with nutrient-dense foods.",
			[]string{
				"Eat 5-6 meals a day and favour calorie-dense foods.",
				"Add healthy fats (nuts, seeds, avocado, olive oil) and starches (potatoes, sweet potatoes).",
				"Pair protein with complex carbohydrates after workouts to support muscle gain.",
				"Use full-fat dairy or fortified alternatives for extra calories.",
			}
	}
	return fmt.Sprintf("Maintenance & Wellness Plan (%s)", c),
		"Keep balanced eating habits at around %.0f kcal per day.",
		[]string{
			"Eat three balanced meals with protein, fats and carbohydrates in each.",
			"Eat a wide range of colourful fruits and vegetables.",
			"Limit processed snacks and alcohol.",
			"Keep portion sizes consistent with your activity level.",
		}
}
