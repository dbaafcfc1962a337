package usecase

import (
	"fmt"
	"math"

	"github.com/xavierca1/fitness-sales/internal/entity"
)

// CPFC is the daily calorie and macronutrient budget.
type CPFC struct {
	Calories int
	Proteins int
	Fats     int
	Carbs    int
}

// Meal lists portion sizes for the fixed meal components.
type Meal struct {
	PorridgeGrams  int
	ProteinGrams   int
	NutsGrams      int
	ChocolateGrams int
	Eggs           int
}

type Diet struct {
	Breakfast Meal
	Snack1    Meal
	Lunch     Meal
	Snack2    Meal
	Dinner    Meal
}

// NutritionProfile carries the client answers echoed on the document.
type NutritionProfile struct {
	Age     int
	Height  int
	Weight  int
	Purpose string
}

// Per-100g calories of the meal components: porridge, protein source, nuts,
// milk chocolate. The egg figure is per piece via the 0.0045 factor below.
const (
	calPorridge  = 330.0
	calProtein   = 162.0
	calNuts      = 600.0
	calChocolate = 460.0
)

// CalculateCPFC computes the budget with the Mifflin-St Jeor basal rate,
// scaled by the daily-activity factor and the training-goal factor.
// Requires a fully validated agenda.
func CalculateCPFC(a *entity.Agenda) (CPFC, error) {
	if a == nil || a.Gender == nil || a.Age == nil || a.Height == nil || a.Weight == nil ||
		a.DailyActivity == nil || a.Purpose == nil {
		return CPFC{}, fmt.Errorf("nutrition: agenda is missing required answers")
	}

	weight := float64(*a.Weight)
	height := float64(*a.Height)
	age := float64(*a.Age)
	activity := a.DailyActivity.Factor()
	goal := a.Purpose.Factor()

	var proteins, fats, basal float64
	switch *a.Gender {
	case entity.GenderMale:
		proteins = weight * 2.0
		fats = weight * 1.0
		basal = (10.0*weight + 6.25*height - 5.0*age + 5.0) * activity
	case entity.GenderFemale:
		proteins = weight * 1.7
		fats = weight * 1.2
		basal = (10.0*weight + 6.25*height - 5.0*age - 161.0) * activity
	default:
		return CPFC{}, fmt.Errorf("nutrition: unsupported gender code %d", *a.Gender)
	}

	calories := basal * goal
	carbs := (calories - proteins*4.0 - fats*9.0) / 4.0

	return CPFC{
		Calories: round(calories),
		Proteins: round(proteins),
		Fats:     round(fats),
		Carbs:    round(carbs),
	}, nil
}

// CalculateDiet splits the budget into the five fixed meals. The split ratios
// differ by gender: women shift more of the carbohydrate load to breakfast
// and skip the dinner porridge.
func CalculateDiet(c CPFC, gender entity.Gender) Diet {
	isMale := gender == entity.GenderMale

	carbCal := float64(c.Calories) - float64(c.Fats)*9.0 - float64(c.Proteins)*4.0
	proteinCal := float64(c.Calories) - float64(c.Carbs)*4.0 - float64(c.Fats)*9.0
	snackCal := float64(c.Calories) - float64(c.Proteins)*4.0 - float64(c.Carbs)*4.0

	breakfastShare := 0.6
	lunchShare := 0.4
	if isMale {
		breakfastShare = 0.4
		lunchShare = 0.3
	}

	eggs := round(proteinCal * 100.0 / calProtein * 0.0045)
	lunchProtein := round(proteinCal * 100.0 / calProtein * 0.35)

	diet := Diet{
		Breakfast: Meal{
			PorridgeGrams: round(carbCal * breakfastShare * 100.0 / calPorridge),
			Eggs:          eggs,
		},
		Snack1: Meal{
			NutsGrams:      round(snackCal * 0.6 * 100.0 / calNuts),
			ChocolateGrams: round(snackCal * 0.4 * 100.0 / calChocolate),
		},
		Lunch: Meal{
			PorridgeGrams: round(carbCal * lunchShare * 100.0 / calPorridge),
			ProteinGrams:  lunchProtein,
		},
		Snack2: Meal{Eggs: eggs},
		Dinner: Meal{ProteinGrams: lunchProtein},
	}
	if isMale {
		diet.Dinner.PorridgeGrams = round(carbCal * lunchShare * 100.0 / calPorridge)
	}
	return diet
}

func round(v float64) int {
	return int(math.Round(v))
}
