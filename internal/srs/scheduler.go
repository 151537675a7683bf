package srs

import (
	"fmt"
	"math"
	"time"

	"github.com/flashcards/backend/internal/models"
)

// Scheduler computes the successor of a progress record after a grading
type Scheduler struct {
	cfg Config
}

// NewScheduler creates a scheduler for the given table
//
// If the table is invalid, an error wrapping ErrInvalidConfig is returned together with "nil" value.
func NewScheduler(cfg Config) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scheduler{cfg: cfg}, nil
}

// Config returns a copy of the table used by the scheduler
func (s *Scheduler) Config() Config {
	return s.cfg
}

// NewProgress returns an unsaved NEW record for the pair with the configured initial ease
func (s *Scheduler) NewProgress(userID, cardID int) models.CardProgress {
	return models.NewCardProgress(userID, cardID, s.cfg.InitialEase)
}

// Schedule applies grade to p at time now and returns the next record
//
// p is not modified. Every valid (state, grade) pair has a rule; an unknown grade, an unknown state
// or a malformed record is rejected with an error wrapping models.ErrInvalidInput.
func (s *Scheduler) Schedule(p models.CardProgress, grade models.Grade, now time.Time) (models.CardProgress, error) {
	if !grade.IsValid() {
		return p, fmt.Errorf("%w: unknown grade %d", models.ErrInvalidInput, int(grade))
	}
	if err := validateRecord(p); err != nil {
		return p, err
	}

	next := p
	switch p.LearningState {
	case models.LearningStateNew:
		s.scheduleNew(&next, grade, now)
	case models.LearningStateLearningMCQ:
		s.scheduleMCQ(&next, grade, now)
	case models.LearningStateLearningTyping:
		s.scheduleTyping(&next, grade, now)
	case models.LearningStateReviewing:
		s.scheduleReview(&next, grade, now)
	case models.LearningStateRelearning:
		s.scheduleRelearning(&next, grade, now)
	default:
		return p, fmt.Errorf("%w: unknown learning state %d", models.ErrInvalidInput, int(p.LearningState))
	}

	if next.CreatedAt.IsZero() {
		next.CreatedAt = now
	}
	next.UpdatedAt = now
	return next, nil
}

// scheduleNew moves a card into the first learning phase whatever the grade
func (s *Scheduler) scheduleNew(p *models.CardProgress, grade models.Grade, now time.Time) {
	p.LearningState = models.LearningStateLearningMCQ
	p.Interval = 0
	p.Repetitions = 0
	if grade == models.GradeAgain {
		setDue(p, now.Add(s.cfg.AgainStep))
		return
	}
	setDue(p, now.Add(s.cfg.MCQStep))
}

func (s *Scheduler) scheduleMCQ(p *models.CardProgress, grade models.Grade, now time.Time) {
	switch grade {
	case models.GradeAgain:
		s.repeatStep(p, s.cfg.AgainStep, now)
	case models.GradeHard:
		s.repeatStep(p, s.cfg.MCQStep, now)
	case models.GradeGood:
		p.LearningState = models.LearningStateLearningTyping
		p.Interval = 0
		setDue(p, now.Add(s.cfg.TypingStep))
	case models.GradeEasy:
		// fast track, the typing phase is skipped
		s.graduate(p, s.cfg.GraduatingInterval, now)
	}
}

func (s *Scheduler) scheduleTyping(p *models.CardProgress, grade models.Grade, now time.Time) {
	switch grade {
	case models.GradeAgain:
		s.repeatStep(p, s.cfg.AgainStep, now)
	case models.GradeHard:
		s.repeatStep(p, s.cfg.TypingStep, now)
	case models.GradeGood:
		s.graduate(p, s.cfg.GraduatingInterval, now)
	case models.GradeEasy:
		s.graduate(p, s.cfg.EasyInterval, now)
	}
}

// scheduleReview is the SM-2 derived update of the review phase
func (s *Scheduler) scheduleReview(p *models.CardProgress, grade models.Grade, now time.Time) {
	interval := max(p.Interval, 1)
	ease := p.EaseFactor

	switch grade {
	case models.GradeAgain:
		p.LearningState = models.LearningStateRelearning
		p.Repetitions = 0
		p.EaseFactor = s.floorEase(ease - s.cfg.AgainEasePenalty)
		lapse := roundHalfUp(float64(interval) * s.cfg.LapseMultiplier)
		p.Interval = s.capInterval(max(lapse, s.cfg.MinLapseInterval))
		setDue(p, now.Add(s.cfg.RelearningStep))
		return
	case models.GradeHard:
		p.Interval = s.grow(interval, s.cfg.HardMultiplier)
		p.EaseFactor = s.floorEase(ease - s.cfg.HardEasePenalty)
	case models.GradeGood:
		p.Interval = s.grow(interval, ease)
	case models.GradeEasy:
		p.Interval = s.grow(interval, ease*s.cfg.EasyBonus)
		p.EaseFactor = s.floorEase(ease + s.cfg.EasyEaseBonus)
	}

	p.Repetitions++
	setDue(p, now.AddDate(0, 0, p.Interval))
}

// scheduleRelearning behaves like a compressed learning phase after a lapse
//
// The interval kept at lapse time is the base of the new review interval and grows by the ease
// factor carried through the lapse, like a GOOD or EASY grading in the review phase.
func (s *Scheduler) scheduleRelearning(p *models.CardProgress, grade models.Grade, now time.Time) {
	interval := max(p.Interval, s.cfg.MinLapseInterval)

	switch grade {
	case models.GradeAgain:
		p.Interval = interval
		setDue(p, now.Add(s.cfg.AgainStep))
	case models.GradeHard:
		p.Interval = interval
		setDue(p, now.Add(s.cfg.RelearningStep))
	case models.GradeGood:
		s.graduate(p, s.grow(interval, p.EaseFactor), now)
	case models.GradeEasy:
		s.graduate(p, s.grow(interval, p.EaseFactor*s.cfg.EasyBonus), now)
	}
}

// repeatStep keeps a card in its learning phase and schedules it after step
func (s *Scheduler) repeatStep(p *models.CardProgress, step time.Duration, now time.Time) {
	p.Interval = 0
	setDue(p, now.Add(step))
}

// graduate moves a card into the review phase with the given interval
func (s *Scheduler) graduate(p *models.CardProgress, interval int, now time.Time) {
	p.LearningState = models.LearningStateReviewing
	p.Interval = s.capInterval(interval)
	p.Repetitions = 1
	setDue(p, now.AddDate(0, 0, p.Interval))
}

// grow multiplies interval by factor and guarantees at least one day of growth
func (s *Scheduler) grow(interval int, factor float64) int {
	return s.capInterval(max(interval+1, roundHalfUp(float64(interval)*factor)))
}

func (s *Scheduler) capInterval(interval int) int {
	return min(interval, s.cfg.MaxInterval)
}

// floorEase rounds ease to two decimals and applies the lower bound
func (s *Scheduler) floorEase(ease float64) float64 {
	ease = math.Round(ease*100) / 100
	return math.Max(ease, s.cfg.MinEase)
}

func setDue(p *models.CardProgress, due time.Time) {
	p.NextReview = &due
}

// roundHalfUp rounds x to the nearest integer, halves going up
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// validateRecord rejects records no sequence of gradings could have produced
func validateRecord(p models.CardProgress) error {
	if !p.LearningState.IsValid() {
		return fmt.Errorf("%w: unknown learning state %d", models.ErrInvalidInput, int(p.LearningState))
	}
	if math.IsNaN(p.EaseFactor) || math.IsInf(p.EaseFactor, 0) {
		return fmt.Errorf("%w: malformed ease factor %v", models.ErrInvalidInput, p.EaseFactor)
	}
	// Stored records between EaseFloor and a raised MinEase stay gradable and are lifted on their next ease change.
	if p.EaseFactor < EaseFloor {
		return fmt.Errorf("%w: ease factor %v is below the floor %v", models.ErrInvalidInput, p.EaseFactor, EaseFloor)
	}
	if p.Interval < 0 {
		return fmt.Errorf("%w: negative interval %d", models.ErrInvalidInput, p.Interval)
	}
	if p.Repetitions < 0 {
		return fmt.Errorf("%w: negative repetitions %d", models.ErrInvalidInput, p.Repetitions)
	}
	return nil
}
