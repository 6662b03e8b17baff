package tone

import "github.com/spacesedan/tonecheck/internal/models"

const (
	POSITIVE_THRESHOLD = 0.25
	NEGATIVE_THRESHOLD = -0.25
)

// Classify maps a sentiment score to a tone. Both thresholds are strict, so
// scores of exactly +-0.25, zero and NaN are Neutral.
func Classify(score float64) models.Category {
	if score > POSITIVE_THRESHOLD {
		return models.CategoryPositive
	} else if score < NEGATIVE_THRESHOLD {
		return models.CategoryNegative
	}
	return models.CategoryNeutral
}
