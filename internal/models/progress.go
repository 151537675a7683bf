package models

import "time"

// CardProgress is the spaced-repetition state of one card for one user
//
// Records are plain values: the scheduler receives a copy and returns a new one.
// Version is incremented on every stored write and is used for optimistic concurrency,
// a zero Version means the record has not been stored yet.
type CardProgress struct {
	ID            int           `json:"id"`
	UserID        int           `json:"userId"`
	CardID        int           `json:"cardId"`
	LearningState LearningState `json:"learningState"`
	Interval      int           `json:"interval"` // days, 0 while in a learning sub-phase
	EaseFactor    float64       `json:"easeFactor"`
	Repetitions   int           `json:"repetitions"`
	NextReview    *time.Time    `json:"nextReview"` // nil while NEW
	Version       int           `json:"-"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// NewCardProgress returns an unsaved NEW record for the pair
func NewCardProgress(userID, cardID int, initialEase float64) CardProgress {
	return CardProgress{
		UserID:        userID,
		CardID:        cardID,
		LearningState: LearningStateNew,
		EaseFactor:    initialEase,
	}
}

// ReviewRequest represents a grading submitted from review mode
type ReviewRequest struct {
	Grade       string `json:"grade"`                 // AGAIN, HARD, GOOD or EASY
	TimeTakenMs *int   `json:"timeTakenMs,omitempty"` // accepted for analytics, does not affect scheduling
}

// ReviewResponse is the progress shape returned to the review UI and statistics consumers
type ReviewResponse struct {
	ID            int        `json:"id"`
	CardID        int        `json:"cardId"`
	EaseFactor    float64    `json:"easeFactor"`
	Interval      int        `json:"interval"`
	Repetitions   int        `json:"repetitions"`
	NextReview    *time.Time `json:"nextReview"`
	LastReview    *time.Time `json:"lastReview"`
	LearningState string     `json:"learningState"`
}

// ToReviewResponse converts a stored record into the response shape
//
// The last review time is the time of the last stored grading, which is UpdatedAt.
func (p CardProgress) ToReviewResponse() ReviewResponse {
	var lastReview *time.Time
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		lastReview = &t
	}
	return ReviewResponse{
		ID:            p.ID,
		CardID:        p.CardID,
		EaseFactor:    p.EaseFactor,
		Interval:      p.Interval,
		Repetitions:   p.Repetitions,
		NextReview:    p.NextReview,
		LastReview:    lastReview,
		LearningState: p.LearningState.String(),
	}
}

// DueCountResponse represents the number of cards due for review
type DueCountResponse struct {
	Count int `json:"count"`
}
