package analyzer

import (
	"github.com/sagarpatil/nutriscope/internal/nutrients"
	"github.com/sagarpatil/nutriscope/pkg/models"
)

// FallbackRecords builds the deterministic placeholder for a food-analysis
// request: one record per requested food, a single unknown ingredient carrying
// the whole portion, and no nutrient data. Schema-valid by construction.
func FallbackRecords(foods []models.FoodItem) []models.NutrientAnalysis {
	records := make([]models.NutrientAnalysis, 0, len(foods))
	for _, f := range foods {
		records = append(records, models.NutrientAnalysis{
			FoodName: f.FoodName,
			MealType: f.MealType,
			Serving:  models.Serving{Description: "standard serving", Grams: 0},
			Ingredients: []models.Ingredient{
				{Name: "unknown ingredient", PortionPercent: 100},
			},
			Nutrients: map[string]models.NutrientEntry{},
		})
	}
	return records
}

// FallbackIntake builds the placeholder daily recommendation: every
// allow-listed nutrient at amount zero.
func FallbackIntake(catalog *nutrients.Catalog) models.IntakeRecommendation {
	return models.IntakeRecommendation{Nutrients: zeroIntakeMap(catalog)}
}

var weekDays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// FallbackWeeklyIntake builds the placeholder weekly plan: seven days of the
// zero daily recommendation.
func FallbackWeeklyIntake(catalog *nutrients.Catalog) models.WeeklyIntakeRecommendation {
	days := make([]models.DailyIntakePlan, 0, len(weekDays))
	for _, day := range weekDays {
		days = append(days, models.DailyIntakePlan{
			Day:       day,
			Nutrients: zeroIntakeMap(catalog),
		})
	}
	return models.WeeklyIntakeRecommendation{Days: days}
}

// FallbackNeutralization builds the placeholder advice returned when no
// specific recommendations could be produced.
func FallbackNeutralization() models.NeutralizationResult {
	return models.NeutralizationResult{
		Recommendations: []models.NeutralizationAdvice{
			{
				Title:       "Balance your next meal",
				Description: "Pair this food with vegetables, lean protein, and water to offset excess sodium, sugar, or fat.",
			},
			{
				Title:       "Stay active",
				Description: "Light activity such as a 20 minute walk after eating helps moderate the impact of a heavy meal.",
			},
		},
	}
}

func zeroIntakeMap(catalog *nutrients.Catalog) map[string]models.IntakeAmount {
	out := make(map[string]models.IntakeAmount, catalog.Len())
	for _, key := range catalog.Keys() {
		entry, _ := catalog.Lookup(key)
		out[key] = models.IntakeAmount{
			FullName: entry.FullName,
			Amount:   0,
			Unit:     entry.Unit,
		}
	}
	return out
}
