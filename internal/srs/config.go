// Package srs implements the spaced-repetition scheduling decision for a single card
//
// The scheduler is a pure function over models.CardProgress values: it holds no state between
// calls, performs no I/O and never logs. All tunable numbers live in Config.
package srs

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidConfig is returned by Config.Validate when a value is out of range
var ErrInvalidConfig = errors.New("srs: invalid configuration")

// EaseFloor is the lowest ease factor any record may carry. Config.MinEase may raise it, never lower it.
const EaseFloor = 1.3

// Config is the step and multiplier table used by the scheduler
type Config struct {
	// Sub-day learning steps
	AgainStep      time.Duration // shortened step after AGAIN in any learning phase
	MCQStep        time.Duration // step while in LEARNING_MCQ
	TypingStep     time.Duration // step while in LEARNING_TYPING
	RelearningStep time.Duration // step while in RELEARNING

	// Intervals in days
	GraduatingInterval int // first interval after graduating with GOOD
	EasyInterval       int // first interval after graduating with EASY from typing
	MinLapseInterval   int // lower bound of the interval kept after a lapse
	MaxInterval        int

	// Ease factor
	InitialEase      float64
	MinEase          float64
	AgainEasePenalty float64
	HardEasePenalty  float64
	EasyEaseBonus    float64

	// Interval multipliers
	HardMultiplier  float64
	EasyBonus       float64
	LapseMultiplier float64 // share of the pre-lapse interval kept on AGAIN in REVIEWING
}

// DefaultConfig returns the classic SM-2 derived defaults
func DefaultConfig() Config {
	return Config{
		AgainStep:      1 * time.Minute,
		MCQStep:        10 * time.Minute,
		TypingStep:     1 * time.Hour,
		RelearningStep: 10 * time.Minute,

		GraduatingInterval: 1,
		EasyInterval:       4,
		MinLapseInterval:   1,
		MaxInterval:        36500,

		InitialEase:      2.5,
		MinEase:          EaseFloor,
		AgainEasePenalty: 0.20,
		HardEasePenalty:  0.15,
		EasyEaseBonus:    0.15,

		HardMultiplier:  1.2,
		EasyBonus:       1.3,
		LapseMultiplier: 0.0,
	}
}

// Validate checks that every value of the table is usable by the scheduler
func (c Config) Validate() error {
	steps := []struct {
		name  string
		value time.Duration
	}{
		{"AgainStep", c.AgainStep},
		{"MCQStep", c.MCQStep},
		{"TypingStep", c.TypingStep},
		{"RelearningStep", c.RelearningStep},
	}
	for _, step := range steps {
		if step.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidConfig, step.name, step.value)
		}
		if step.value >= 24*time.Hour {
			return fmt.Errorf("%w: %s must be shorter than a day, got %s", ErrInvalidConfig, step.name, step.value)
		}
	}

	if c.GraduatingInterval < 1 {
		return fmt.Errorf("%w: GraduatingInterval must be at least 1, got %d", ErrInvalidConfig, c.GraduatingInterval)
	}
	if c.EasyInterval < c.GraduatingInterval {
		return fmt.Errorf("%w: EasyInterval (%d) must not be shorter than GraduatingInterval (%d)", ErrInvalidConfig, c.EasyInterval, c.GraduatingInterval)
	}
	if c.MinLapseInterval < 1 {
		return fmt.Errorf("%w: MinLapseInterval must be at least 1, got %d", ErrInvalidConfig, c.MinLapseInterval)
	}
	if c.MaxInterval < c.EasyInterval || c.MaxInterval < c.MinLapseInterval {
		return fmt.Errorf("%w: MaxInterval (%d) is shorter than the initial intervals", ErrInvalidConfig, c.MaxInterval)
	}

	floats := []struct {
		name  string
		value float64
	}{
		{"InitialEase", c.InitialEase},
		{"MinEase", c.MinEase},
		{"AgainEasePenalty", c.AgainEasePenalty},
		{"HardEasePenalty", c.HardEasePenalty},
		{"EasyEaseBonus", c.EasyEaseBonus},
		{"HardMultiplier", c.HardMultiplier},
		{"EasyBonus", c.EasyBonus},
		{"LapseMultiplier", c.LapseMultiplier},
	}
	for _, f := range floats {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number, got %v", ErrInvalidConfig, f.name, f.value)
		}
	}

	if c.MinEase < EaseFloor {
		return fmt.Errorf("%w: MinEase must be at least %v, got %v", ErrInvalidConfig, EaseFloor, c.MinEase)
	}
	if c.InitialEase < c.MinEase {
		return fmt.Errorf("%w: InitialEase (%v) is below MinEase (%v)", ErrInvalidConfig, c.InitialEase, c.MinEase)
	}
	if c.HardMultiplier < 1 {
		return fmt.Errorf("%w: HardMultiplier must be at least 1, got %v", ErrInvalidConfig, c.HardMultiplier)
	}
	if c.EasyBonus <= 1 {
		return fmt.Errorf("%w: EasyBonus must be greater than 1, got %v", ErrInvalidConfig, c.EasyBonus)
	}
	if c.LapseMultiplier > 1 {
		return fmt.Errorf("%w: LapseMultiplier must be at most 1, got %v", ErrInvalidConfig, c.LapseMultiplier)
	}

	return nil
}
