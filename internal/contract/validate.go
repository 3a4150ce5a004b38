package contract

import (
	"fmt"
	"math"

	"github.com/sagarpatil/nutriscope/internal/nutrients"
	"github.com/sagarpatil/nutriscope/pkg/models"
)

// Tolerance is the absolute slack allowed on the numeric sum invariants.
const Tolerance = 0.1

// Validator checks a parsed completion against a Shape. It fails fast on the
// first violation; partial acceptance is the repairer's job, not the
// validator's.
type Validator struct {
	catalog *nutrients.Catalog
}

// NewValidator returns a Validator backed by the nutrient allow-list.
func NewValidator(catalog *nutrients.Catalog) *Validator {
	return &Validator{catalog: catalog}
}

// Validate checks value's top-level type, array length, required keys, and
// the shape's per-element hook.
func (v *Validator) Validate(value any, shape Shape) error {
	switch shape.Kind {
	case KindObject:
		obj, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("expected JSON object, got %T", value)
		}
		return v.validateElement(obj, shape)

	case KindArray:
		arr, ok := value.([]any)
		if !ok {
			return fmt.Errorf("expected JSON array, got %T", value)
		}
		if shape.ExpectedCount > 0 && len(arr) != shape.ExpectedCount {
			return fmt.Errorf("expected %d elements, got %d", shape.ExpectedCount, len(arr))
		}
		for i, el := range arr {
			obj, ok := el.(map[string]any)
			if !ok {
				return fmt.Errorf("element %d: expected object, got %T", i, el)
			}
			if err := v.validateElement(obj, shape); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		return nil
	}
	return fmt.Errorf("unknown shape kind %d", shape.Kind)
}

func (v *Validator) validateElement(obj map[string]any, shape Shape) error {
	for _, key := range shape.RequiredKeys {
		if _, ok := obj[key]; !ok {
			return fmt.Errorf("missing required key %q", key)
		}
	}
	if shape.ValidateElement != nil {
		return shape.ValidateElement(obj)
	}
	return nil
}

// NutrientRecord checks the numeric invariants of one nutrient analysis
// record: ingredient portions sum to 100, every nutrient key is on the
// allow-list, impacts are valid, and per-nutrient contributions sum to the
// stated total (or are empty when the total is zero).
func (v *Validator) NutrientRecord(obj map[string]any) error {
	if err := v.checkIngredients(obj); err != nil {
		return err
	}
	return v.checkNutrients(obj)
}

func (v *Validator) checkIngredients(obj map[string]any) error {
	raw, ok := obj["ingredients"].([]any)
	if !ok {
		return fmt.Errorf("ingredients must be an array")
	}
	if len(raw) == 0 {
		return fmt.Errorf("ingredients must not be empty")
	}

	var sum float64
	for i, el := range raw {
		ing, ok := el.(map[string]any)
		if !ok {
			return fmt.Errorf("ingredient %d: expected object, got %T", i, el)
		}
		if _, ok := ing["name"].(string); !ok {
			return fmt.Errorf("ingredient %d: missing name", i)
		}
		pct, ok := asNumber(ing["portion_percent"])
		if !ok {
			return fmt.Errorf("ingredient %d: portion_percent must be a number", i)
		}
		sum += pct
	}
	if math.Abs(sum-100) > Tolerance {
		return fmt.Errorf("ingredient portions sum to %.2f, want 100", sum)
	}
	return nil
}

func (v *Validator) checkNutrients(obj map[string]any) error {
	raw, ok := obj["nutrients"].(map[string]any)
	if !ok {
		return fmt.Errorf("nutrients must be an object")
	}

	for key, el := range raw {
		if !v.catalog.Allowed(key) {
			return fmt.Errorf("nutrient %q is not on the allow-list", key)
		}
		entry, ok := el.(map[string]any)
		if !ok {
			return fmt.Errorf("nutrient %q: expected object, got %T", key, el)
		}
		if err := v.checkNutrientEntry(key, entry); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) checkNutrientEntry(key string, entry map[string]any) error {
	impact, _ := entry["impact"].(string)
	switch impact {
	case models.ImpactPositive, models.ImpactNeutral, models.ImpactNegative:
	default:
		return fmt.Errorf("nutrient %q: invalid impact %q", key, impact)
	}

	total, ok := asNumber(entry["total_amount"])
	if !ok {
		return fmt.Errorf("nutrient %q: total_amount must be a number", key)
	}
	if total < 0 {
		return fmt.Errorf("nutrient %q: total_amount must not be negative", key)
	}

	contribs, ok := entry["contributions"].([]any)
	if !ok {
		if entry["contributions"] == nil && total == 0 {
			return nil
		}
		return fmt.Errorf("nutrient %q: contributions must be an array", key)
	}

	if total == 0 {
		if len(contribs) != 0 {
			return fmt.Errorf("nutrient %q: total_amount is 0 but %d contributions present", key, len(contribs))
		}
		return nil
	}
	if len(contribs) == 0 {
		return fmt.Errorf("nutrient %q: total_amount is %.2f but contributions are empty", key, total)
	}

	var amountSum, pctSum float64
	for i, el := range contribs {
		c, ok := el.(map[string]any)
		if !ok {
			return fmt.Errorf("nutrient %q: contribution %d is not an object", key, i)
		}
		if _, ok := c["ingredient_name"].(string); !ok {
			return fmt.Errorf("nutrient %q: contribution %d missing ingredient_name", key, i)
		}
		amount, ok := asNumber(c["amount"])
		if !ok {
			return fmt.Errorf("nutrient %q: contribution %d amount must be a number", key, i)
		}
		pct, ok := asNumber(c["percent_of_total"])
		if !ok {
			return fmt.Errorf("nutrient %q: contribution %d percent_of_total must be a number", key, i)
		}
		amountSum += amount
		pctSum += pct
	}

	if math.Abs(amountSum-total) > Tolerance {
		return fmt.Errorf("nutrient %q: contributions sum to %.2f, want %.2f", key, amountSum, total)
	}
	if math.Abs(pctSum-100) > Tolerance {
		return fmt.Errorf("nutrient %q: contribution percentages sum to %.2f, want 100", key, pctSum)
	}
	return nil
}

// IntakeNutrients checks the result of a recommended-intake completion:
// every nutrient key is allow-listed and carries a non-negative amount.
func (v *Validator) IntakeNutrients(obj map[string]any) error {
	return v.checkIntakeMap(obj["nutrients"])
}

// WeeklyPlan checks a weekly-intake completion: exactly seven days, each with
// a day label and a valid intake map.
func (v *Validator) WeeklyPlan(obj map[string]any) error {
	days, ok := obj["days"].([]any)
	if !ok {
		return fmt.Errorf("days must be an array")
	}
	if len(days) != 7 {
		return fmt.Errorf("expected 7 days, got %d", len(days))
	}
	for i, el := range days {
		day, ok := el.(map[string]any)
		if !ok {
			return fmt.Errorf("day %d: expected object, got %T", i, el)
		}
		if name, _ := day["day"].(string); name == "" {
			return fmt.Errorf("day %d: missing day label", i)
		}
		if err := v.checkIntakeMap(day["nutrients"]); err != nil {
			return fmt.Errorf("day %d: %w", i, err)
		}
	}
	return nil
}

// Recommendations checks a neutralization completion: a non-empty list of
// titled advice entries.
func (v *Validator) Recommendations(obj map[string]any) error {
	recs, ok := obj["recommendations"].([]any)
	if !ok {
		return fmt.Errorf("recommendations must be an array")
	}
	if len(recs) == 0 {
		return fmt.Errorf("recommendations must not be empty")
	}
	for i, el := range recs {
		rec, ok := el.(map[string]any)
		if !ok {
			return fmt.Errorf("recommendation %d: expected object, got %T", i, el)
		}
		if title, _ := rec["title"].(string); title == "" {
			return fmt.Errorf("recommendation %d: missing title", i)
		}
		if desc, _ := rec["description"].(string); desc == "" {
			return fmt.Errorf("recommendation %d: missing description", i)
		}
	}
	return nil
}

func (v *Validator) checkIntakeMap(raw any) error {
	nutrients, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("nutrients must be an object")
	}
	for key, el := range nutrients {
		if !v.catalog.Allowed(key) {
			return fmt.Errorf("nutrient %q is not on the allow-list", key)
		}
		entry, ok := el.(map[string]any)
		if !ok {
			return fmt.Errorf("nutrient %q: expected object, got %T", key, el)
		}
		amount, ok := asNumber(entry["amount"])
		if !ok {
			return fmt.Errorf("nutrient %q: amount must be a number", key)
		}
		if amount < 0 {
			return fmt.Errorf("nutrient %q: amount must not be negative", key)
		}
	}
	return nil
}

// asNumber accepts the one numeric type encoding/json produces when decoding
// into any: float64 covers integer literals too.
func asNumber(v any) (float64, bool) {
	n, ok := v.(float64)
	return n, ok
}
