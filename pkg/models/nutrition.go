// Package models contains shared data models used across the NutriScope codebase.
package models

// Impact classes for a nutrient, as they appear on the wire.
const (
	ImpactPositive = "positive"
	ImpactNeutral  = "neutral"
	ImpactNegative = "negative"
)

// Meal types accepted by the API.
var MealTypes = []string{"breakfast", "lunch", "dinner", "snack"}

// ValidMealType reports whether m is one of the accepted meal types.
func ValidMealType(m string) bool {
	for _, t := range MealTypes {
		if m == t {
			return true
		}
	}
	return false
}

// FoodItem identifies one food in an analysis request.
type FoodItem struct {
	FoodName string `json:"food_name"`
	MealType string `json:"meal_type"`
}

// Serving describes a single-person serving of a food.
type Serving struct {
	Description string  `json:"description"`
	Grams       float64 `json:"grams"`
}

// Ingredient is one component of a food with its share of the serving.
// Across a record the portion percentages sum to 100 (within tolerance).
type Ingredient struct {
	Name           string  `json:"name"`
	PortionPercent float64 `json:"portion_percent"`
}

// Contribution is one ingredient's share of a nutrient total.
type Contribution struct {
	IngredientName string  `json:"ingredient_name"`
	Amount         float64 `json:"amount"`
	PercentOfTotal float64 `json:"percent_of_total"`
}

// NutrientEntry is the per-nutrient breakdown inside an analysis record.
// When TotalAmount is zero the contributions list must be empty; otherwise
// contribution amounts sum to TotalAmount and percentages sum to 100.
type NutrientEntry struct {
	FullName      string         `json:"full_name"`
	Class         string         `json:"class"`
	Impact        string         `json:"impact"`
	TotalAmount   float64        `json:"total_amount"`
	Unit          string         `json:"unit"`
	Contributions []Contribution `json:"contributions"`
}

// NutrientAnalysis is one validated analysis record, built entirely from a
// single model completion and never mutated afterwards.
type NutrientAnalysis struct {
	FoodName    string                   `json:"food_name"`
	MealType    string                   `json:"meal_type"`
	Serving     Serving                  `json:"serving"`
	Ingredients []Ingredient             `json:"ingredients"`
	Nutrients   map[string]NutrientEntry `json:"nutrients"`
}

// IntakeAmount is one nutrient's recommended daily amount.
type IntakeAmount struct {
	FullName string  `json:"full_name"`
	Amount   float64 `json:"amount"`
	Unit     string  `json:"unit"`
}

// IntakeRecommendation is the result of a recommended_intake job.
type IntakeRecommendation struct {
	Nutrients map[string]IntakeAmount `json:"nutrients"`
}

// DailyIntakePlan is one day inside a weekly recommendation.
type DailyIntakePlan struct {
	Day       string                  `json:"day"`
	Nutrients map[string]IntakeAmount `json:"nutrients"`
}

// WeeklyIntakeRecommendation is the result of a weekly_recommended_intake job.
type WeeklyIntakeRecommendation struct {
	Days []DailyIntakePlan `json:"days"`
}

// NeutralizationAdvice is one suggestion for offsetting negative nutrients.
type NeutralizationAdvice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// NeutralizationResult is the result of a neutralization_recommendations job.
type NeutralizationResult struct {
	Recommendations []NeutralizationAdvice `json:"recommendations"`
}
