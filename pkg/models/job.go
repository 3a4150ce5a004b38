package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	JobStatusQueued     = "queued"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// JobKind identifies which analysis operation a job performs. The set is
// closed: the dispatcher switches over it exhaustively and treats anything
// else as a producer/consumer version mismatch.
type JobKind string

const (
	JobKindFoodAnalysis      JobKind = "food_analysis"
	JobKindRecommendedIntake JobKind = "recommended_intake"
	JobKindWeeklyIntake      JobKind = "weekly_recommended_intake"
	JobKindNeutralization    JobKind = "neutralization_recommendations"
)

// ValidJobKind reports whether k names a known analysis operation.
func ValidJobKind(k JobKind) bool {
	switch k {
	case JobKindFoodAnalysis, JobKindRecommendedIntake, JobKindWeeklyIntake, JobKindNeutralization:
		return true
	}
	return false
}

// Job is one asynchronous unit of analysis work. The API returns a job_id on
// POST /api/v1/jobs; the client polls GET /api/v1/jobs/{job_id} until status
// is completed or failed. Status only moves forward: queued -> processing ->
// completed|failed. Exactly one of Result/ErrorMessage is set, and only once
// the job reaches a terminal state.
type Job struct {
	ID           uuid.UUID       `db:"job_id"        json:"job_id"`
	Kind         JobKind         `db:"kind"          json:"job_kind"`
	Status       string          `db:"status"        json:"status"`
	Payload      json.RawMessage `db:"payload"       json:"payload,omitempty"`
	Result       json.RawMessage `db:"result"        json:"result,omitempty"`
	ErrorMessage *string         `db:"error_message" json:"error,omitempty"`
	CreatedAt    time.Time       `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"    json:"updated_at"`
}

// Terminal reports whether the job has reached completed or failed.
func (j *Job) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// FoodAnalysisPayload is the payload for JobKindFoodAnalysis.
type FoodAnalysisPayload struct {
	Foods []FoodItem `json:"foods"`
}

// IntakePayload is the payload for JobKindRecommendedIntake and
// JobKindWeeklyIntake.
type IntakePayload struct {
	AgeGroup string  `json:"age_group"`
	WeightKg float64 `json:"weight_kg"`
	HeightCm float64 `json:"height_cm"`
}

// NeutralizationPayload is the payload for JobKindNeutralization.
type NeutralizationPayload struct {
	Foods []FoodItem `json:"foods"`
}
