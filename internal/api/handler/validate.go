package handler

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/sagarpatil/nutriscope/pkg/models"
)

const (
	minFoodNameLen     = 2
	maxFoodNameLen     = 100
	maxSpecialChars    = 5
	maxFoodsPerRequest = 10
)

// dangerousChars are rejected outright: they have no place in a food name and
// flow into prompts and JSON payloads downstream.
const dangerousChars = `<>{}[]\`

// validateFoods normalizes and checks a request's food list in place.
// Food names are trimmed before length checks.
func validateFoods(foods []models.FoodItem) error {
	if len(foods) == 0 {
		return fmt.Errorf("foods must not be empty")
	}
	if len(foods) > maxFoodsPerRequest {
		return fmt.Errorf("at most %d foods per request, got %d", maxFoodsPerRequest, len(foods))
	}
	for i := range foods {
		foods[i].FoodName = strings.TrimSpace(foods[i].FoodName)
		if err := validateFoodName(foods[i].FoodName); err != nil {
			return fmt.Errorf("food %d: %w", i, err)
		}
		if !models.ValidMealType(foods[i].MealType) {
			return fmt.Errorf("food %d: meal_type must be one of %s",
				i, strings.Join(models.MealTypes, ", "))
		}
	}
	return nil
}

func validateFoodName(name string) error {
	if len(name) < minFoodNameLen {
		return fmt.Errorf("food_name must be at least %d characters", minFoodNameLen)
	}
	if len(name) > maxFoodNameLen {
		return fmt.Errorf("food_name must be at most %d characters", maxFoodNameLen)
	}
	if strings.ContainsAny(name, dangerousChars) {
		return fmt.Errorf("food_name contains invalid characters")
	}
	special := 0
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			continue
		}
		special++
	}
	if special > maxSpecialChars {
		return fmt.Errorf("food_name contains too many special characters")
	}
	return nil
}

// validateIntake checks the person profile of an intake request.
func validateIntake(p models.IntakePayload) error {
	if strings.TrimSpace(p.AgeGroup) == "" {
		return fmt.Errorf("age_group is required")
	}
	if p.WeightKg <= 0 || p.WeightKg > 500 {
		return fmt.Errorf("weight_kg must be between 1 and 500")
	}
	if p.HeightCm <= 0 || p.HeightCm > 300 {
		return fmt.Errorf("height_cm must be between 1 and 300")
	}
	return nil
}
