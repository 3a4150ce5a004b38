package analyzer

import (
	"fmt"
	"strings"

	"github.com/sagarpatil/nutriscope/pkg/models"
)

const systemPrompt = "You are a nutrition expert. Always return valid JSON with the exact structure requested, and nothing else."

func foodAnalysisPrompt(foods []models.FoodItem, nutrientKeys []string) string {
	var sb strings.Builder
	sb.WriteString("Analyze the nutritional content of the following foods. ")
	sb.WriteString("Return ONLY a JSON array with exactly one object per food, in the same order.\n\nFoods:\n")
	for _, f := range foods {
		fmt.Fprintf(&sb, "- %s (%s)\n", f.FoodName, f.MealType)
	}
	sb.WriteString(`
Each object must have this structure:
{
  "food_name": "echoed from the request",
  "meal_type": "echoed from the request",
  "serving": {"description": "1 bowl", "grams": 240},
  "ingredients": [{"name": "rice", "portion_percent": 60}],
  "nutrients": {
    "protein": {
      "full_name": "Protein", "class": "macronutrient", "impact": "positive",
      "total_amount": 12, "unit": "g",
      "contributions": [{"ingredient_name": "rice", "amount": 12, "percent_of_total": 100}]
    }
  }
}

Rules:
- portion_percent values must sum to exactly 100 per food.
- Per nutrient, contribution amounts must sum to total_amount and percent_of_total values must sum to 100.
- A nutrient with total_amount 0 must have an empty contributions list.
- impact is one of: positive, neutral, negative.
- Use only these nutrient keys: ` + strings.Join(nutrientKeys, ", ") + `.
- Quantities describe a single-person serving.

Return ONLY the JSON array, no additional text or formatting.
`)
	return sb.String()
}

func intakePrompt(p models.IntakePayload, nutrientKeys []string) string {
	return fmt.Sprintf(`Provide the recommended daily nutrient intake for a person with:
- Age group: %s
- Weight: %.0f kg
- Height: %.0f cm

Return ONLY a JSON object with this structure:
{"nutrients": {"protein": {"full_name": "Protein", "amount": 55, "unit": "g"}}}

Use only these nutrient keys: %s.
Return ONLY valid JSON, no additional text or formatting.
`, p.AgeGroup, p.WeightKg, p.HeightCm, strings.Join(nutrientKeys, ", "))
}

func weeklyIntakePrompt(p models.IntakePayload, nutrientKeys []string) string {
	return fmt.Sprintf(`Provide a 7-day recommended nutrient intake plan for a person with:
- Age group: %s
- Weight: %.0f kg
- Height: %.0f cm

Return ONLY a JSON object with this structure:
{"days": [{"day": "monday", "nutrients": {"protein": {"full_name": "Protein", "amount": 55, "unit": "g"}}}]}

Rules:
- The days array must contain exactly 7 entries, monday through sunday.
- Use only these nutrient keys: %s.

Return ONLY valid JSON, no additional text or formatting.
`, p.AgeGroup, p.WeightKg, p.HeightCm, strings.Join(nutrientKeys, ", "))
}

func neutralizationPrompt(foods []models.FoodItem) string {
	var sb strings.Builder
	sb.WriteString("Given the following foods, suggest practical ways to offset or neutralize their negative nutritional impacts (excess sodium, sugar, saturated fat, and similar).\n\nFoods:\n")
	for _, f := range foods {
		fmt.Fprintf(&sb, "- %s (%s)\n", f.FoodName, f.MealType)
	}
	sb.WriteString(`
Return ONLY a JSON object with this structure:
{"recommendations": [{"title": "short title", "description": "one or two sentences of practical advice"}]}

Provide between 2 and 5 recommendations.
Return ONLY valid JSON, no additional text or formatting.
`)
	return sb.String()
}
