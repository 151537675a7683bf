package models

// MasteryLevel is the statistics bucket a card falls into
type MasteryLevel string

const (
	MasteryLevelNew           MasteryLevel = "new"
	MasteryLevelStillLearning MasteryLevel = "stillLearning"
	MasteryLevelAlmostDone    MasteryLevel = "almostDone"
	MasteryLevelMastered      MasteryLevel = "mastered"
)

// StateIntervalCount is one aggregated row of the user's cards grouped by state and interval
//
// Cards without a progress record are reported with LearningStateNew and zero interval.
type StateIntervalCount struct {
	LearningState LearningState
	Interval      int
	Count         int
}

// MasteryLevelStatistics represents the mastery level breakdown of a user's cards
type MasteryLevelStatistics struct {
	NewCards      int `json:"newCards"`
	StillLearning int `json:"stillLearning"`
	AlmostDone    int `json:"almostDone"`
	Mastered      int `json:"mastered"`
	Total         int `json:"total"`

	// Percentage of each level (0-100)
	NewCardsPercentage      float64 `json:"newCardsPercentage"`
	StillLearningPercentage float64 `json:"stillLearningPercentage"`
	AlmostDonePercentage    float64 `json:"almostDonePercentage"`
	MasteredPercentage      float64 `json:"masteredPercentage"`
}
