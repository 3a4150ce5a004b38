package cache_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sagarpatil/nutriscope/internal/cache"
	"github.com/sagarpatil/nutriscope/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestJobKeys(t *testing.T) {
	id := uuid.MustParse("11111111-2222-3333-4444-555555555555")

	assert.Equal(t, "job:11111111-2222-3333-4444-555555555555", cache.JobSnapshotKey(id))
	assert.Equal(t, "job:11111111-2222-3333-4444-555555555555:result", cache.JobResultKey(id))
}

func TestRateLimitKey(t *testing.T) {
	assert.Equal(t, "ratelimit:203.0.113.7", cache.RateLimitKey("203.0.113.7"))
}

func TestAnalysisResultKey_OrderInsensitive(t *testing.T) {
	a := []models.FoodItem{
		{FoodName: "oatmeal", MealType: "breakfast"},
		{FoodName: "banana", MealType: "snack"},
	}
	b := []models.FoodItem{
		{FoodName: "banana", MealType: "snack"},
		{FoodName: "oatmeal", MealType: "breakfast"},
	}

	assert.Equal(t, cache.AnalysisResultKey(a), cache.AnalysisResultKey(b))
}

func TestAnalysisResultKey_CaseInsensitiveNames(t *testing.T) {
	a := []models.FoodItem{{FoodName: "Oatmeal", MealType: "breakfast"}}
	b := []models.FoodItem{{FoodName: "oatmeal", MealType: "breakfast"}}

	assert.Equal(t, cache.AnalysisResultKey(a), cache.AnalysisResultKey(b))
}

func TestAnalysisResultKey_DistinguishesMealType(t *testing.T) {
	a := []models.FoodItem{{FoodName: "oatmeal", MealType: "breakfast"}}
	b := []models.FoodItem{{FoodName: "oatmeal", MealType: "dinner"}}

	assert.NotEqual(t, cache.AnalysisResultKey(a), cache.AnalysisResultKey(b))
}
