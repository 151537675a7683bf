package srs

import (
	"math"

	"github.com/flashcards/backend/internal/models"
)

// MasteryThresholdDays is the review interval from which a card counts as mastered
const MasteryThresholdDays = 21

// Classify returns the mastery bucket of a card in the given state with the given interval
func Classify(state models.LearningState, interval int) models.MasteryLevel {
	switch state {
	case models.LearningStateLearningMCQ, models.LearningStateLearningTyping, models.LearningStateRelearning:
		return models.MasteryLevelStillLearning
	case models.LearningStateReviewing:
		if interval >= MasteryThresholdDays {
			return models.MasteryLevelMastered
		}
		return models.MasteryLevelAlmostDone
	default:
		return models.MasteryLevelNew
	}
}

// Summarize partitions the aggregated rows into mastery buckets
//
// Every counted card lands in exactly one bucket, so the four counts always add up to Total.
func Summarize(rows []models.StateIntervalCount) models.MasteryLevelStatistics {
	var stats models.MasteryLevelStatistics
	for _, row := range rows {
		if row.Count <= 0 {
			continue
		}
		switch Classify(row.LearningState, row.Interval) {
		case models.MasteryLevelStillLearning:
			stats.StillLearning += row.Count
		case models.MasteryLevelAlmostDone:
			stats.AlmostDone += row.Count
		case models.MasteryLevelMastered:
			stats.Mastered += row.Count
		default:
			stats.NewCards += row.Count
		}
		stats.Total += row.Count
	}

	stats.NewCardsPercentage = percentage(stats.NewCards, stats.Total)
	stats.StillLearningPercentage = percentage(stats.StillLearning, stats.Total)
	stats.AlmostDonePercentage = percentage(stats.AlmostDone, stats.Total)
	stats.MasteredPercentage = percentage(stats.Mastered, stats.Total)
	return stats
}

// percentage returns part/total in percent rounded to one decimal, 0 for an empty total
func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)*1000/float64(total)) / 10
}
