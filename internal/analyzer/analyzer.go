// Package analyzer runs nutrition analyses against a text-completion
// provider. Each operation builds a prompt, bounds the model call with the
// configured timeout, and pushes the completion through the contract engine,
// so callers always receive either a validated value or the operation's
// deterministic fallback. Provider errors (timeouts included) are the only
// failure mode surfaced to callers.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sagarpatil/nutriscope/internal/contract"
	"github.com/sagarpatil/nutriscope/internal/nutrients"
	"github.com/sagarpatil/nutriscope/pkg/models"
)

const (
	defaultMaxTokens   = 4096
	defaultTemperature = 0.2
)

// Analyzer executes the four analysis operations.
type Analyzer struct {
	provider  models.TextCompleter
	engine    *contract.Engine
	validator *contract.Validator
	catalog   *nutrients.Catalog
	timeout   time.Duration
	logger    *slog.Logger
}

// New builds an Analyzer. timeout bounds each individual model call.
func New(provider models.TextCompleter, engine *contract.Engine, validator *contract.Validator, catalog *nutrients.Catalog, timeout time.Duration, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		provider:  provider,
		engine:    engine,
		validator: validator,
		catalog:   catalog,
		timeout:   timeout,
		logger:    logger,
	}
}

// AnalyzeFoods produces one validated nutrient record per requested food.
// The returned bool reports whether the deterministic fallback was used.
func (a *Analyzer) AnalyzeFoods(ctx context.Context, foods []models.FoodItem) ([]models.NutrientAnalysis, bool, error) {
	raw, err := a.complete(ctx, foodAnalysisPrompt(foods, a.catalog.Keys()))
	if err != nil {
		return nil, false, fmt.Errorf("food analysis completion: %w", err)
	}

	res := a.engine.Interpret(raw, contract.Shape{
		Kind:            contract.KindArray,
		RequiredKeys:    []string{"food_name", "meal_type", "serving", "ingredients", "nutrients"},
		ExpectedCount:   len(foods),
		ValidateElement: a.validator.NutrientRecord,
		Fallback:        FallbackRecords(foods),
	})
	a.observe("food_analysis", res)

	var records []models.NutrientAnalysis
	if err := res.Decode(&records); err != nil {
		a.logger.Warn("validated payload did not decode, using fallback", "kind", "food_analysis", "error", err)
		return FallbackRecords(foods), true, nil
	}
	return records, res.UsedFallback, nil
}

// RecommendedIntake produces a daily intake recommendation for the given
// person profile.
func (a *Analyzer) RecommendedIntake(ctx context.Context, p models.IntakePayload) (models.IntakeRecommendation, bool, error) {
	raw, err := a.complete(ctx, intakePrompt(p, a.catalog.Keys()))
	if err != nil {
		return models.IntakeRecommendation{}, false, fmt.Errorf("recommended intake completion: %w", err)
	}

	res := a.engine.Interpret(raw, contract.Shape{
		Kind:            contract.KindObject,
		RequiredKeys:    []string{"nutrients"},
		ValidateElement: a.validator.IntakeNutrients,
		Fallback:        FallbackIntake(a.catalog),
	})
	a.observe("recommended_intake", res)

	var rec models.IntakeRecommendation
	if err := res.Decode(&rec); err != nil {
		a.logger.Warn("validated payload did not decode, using fallback", "kind", "recommended_intake", "error", err)
		return FallbackIntake(a.catalog), true, nil
	}
	return rec, res.UsedFallback, nil
}

// WeeklyIntake produces a seven-day intake plan for the given person profile.
func (a *Analyzer) WeeklyIntake(ctx context.Context, p models.IntakePayload) (models.WeeklyIntakeRecommendation, bool, error) {
	raw, err := a.complete(ctx, weeklyIntakePrompt(p, a.catalog.Keys()))
	if err != nil {
		return models.WeeklyIntakeRecommendation{}, false, fmt.Errorf("weekly intake completion: %w", err)
	}

	res := a.engine.Interpret(raw, contract.Shape{
		Kind:            contract.KindObject,
		RequiredKeys:    []string{"days"},
		ValidateElement: a.validator.WeeklyPlan,
		Fallback:        FallbackWeeklyIntake(a.catalog),
	})
	a.observe("weekly_recommended_intake", res)

	var rec models.WeeklyIntakeRecommendation
	if err := res.Decode(&rec); err != nil {
		a.logger.Warn("validated payload did not decode, using fallback", "kind", "weekly_recommended_intake", "error", err)
		return FallbackWeeklyIntake(a.catalog), true, nil
	}
	return rec, res.UsedFallback, nil
}

// Neutralization produces advice for offsetting the negative impacts of the
// given foods.
func (a *Analyzer) Neutralization(ctx context.Context, foods []models.FoodItem) (models.NeutralizationResult, bool, error) {
	raw, err := a.complete(ctx, neutralizationPrompt(foods))
	if err != nil {
		return models.NeutralizationResult{}, false, fmt.Errorf("neutralization completion: %w", err)
	}

	res := a.engine.Interpret(raw, contract.Shape{
		Kind:            contract.KindObject,
		RequiredKeys:    []string{"recommendations"},
		ValidateElement: a.validator.Recommendations,
		Fallback:        FallbackNeutralization(),
	})
	a.observe("neutralization_recommendations", res)

	var rec models.NeutralizationResult
	if err := res.Decode(&rec); err != nil {
		a.logger.Warn("validated payload did not decode, using fallback", "kind", "neutralization_recommendations", "error", err)
		return FallbackNeutralization(), true, nil
	}
	return rec, res.UsedFallback, nil
}

func (a *Analyzer) complete(ctx context.Context, prompt string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	raw, err := a.provider.Complete(cctx, models.CompletionRequest{
		System:      systemPrompt,
		Prompt:      prompt,
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: provider %s exceeded %s", models.ErrCompletionTimeout, a.provider.Name(), a.timeout)
		}
		return "", err
	}
	return raw, nil
}

func (a *Analyzer) observe(kind string, res contract.Result) {
	if res.UsedFallback {
		a.logger.Info("analysis fell back to placeholder", "kind", kind, "reason", res.Reason)
		return
	}
	a.logger.Debug("analysis interpreted", "kind", kind, "path", res.Path)
}
