package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sagarpatil/nutriscope/pkg/models"
)

// JobSnapshotKey keys the short-lived document snapshot of an in-flight job,
// used to absorb hot polling.
func JobSnapshotKey(jobID uuid.UUID) string {
	return fmt.Sprintf("job:%s", jobID)
}

// JobResultKey keys the full document of a terminal job. Terminal jobs never
// change, which makes them safe to cache whole.
func JobResultKey(jobID uuid.UUID) string {
	return fmt.Sprintf("job:%s:result", jobID)
}

func RateLimitKey(clientIP string) string {
	return fmt.Sprintf("ratelimit:%s", clientIP)
}

// AnalysisResultKey keys a synchronous analysis result by its food set.
// Order-insensitive: the same foods in a different order hit the same entry.
func AnalysisResultKey(foods []models.FoodItem) string {
	parts := make([]string, 0, len(foods))
	for _, f := range foods {
		parts = append(parts, strings.ToLower(f.FoodName)+"|"+f.MealType)
	}
	sort.Strings(parts)
	sum := sha256.Sum256([]byte(strings.Join(parts, ";")))
	return fmt.Sprintf("analysis:%s", hex.EncodeToString(sum[:]))
}
