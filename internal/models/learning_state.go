package models

import (
	"encoding/json"
	"fmt"
)

// LearningState represents the learning stage of a card for a single user
//
// The zero value is not a valid state, so a record that was never initialised is rejected
// instead of being treated as NEW.
type LearningState int

const (
	LearningStateNew            LearningState = iota + 1 // Card has never been graded
	LearningStateLearningMCQ                             // Learning with multiple-choice questions
	LearningStateLearningTyping                          // Learning with typing exercises
	LearningStateReviewing                               // Graduated, long-term review cycle
	LearningStateRelearning                              // Forgotten during review, relearning
)

var (
	learningStateNames = [...]string{
		LearningStateNew:            "NEW",
		LearningStateLearningMCQ:    "LEARNING_MCQ",
		LearningStateLearningTyping: "LEARNING_TYPING",
		LearningStateReviewing:      "REVIEWING",
		LearningStateRelearning:     "RELEARNING",
	}
	learningStateByName = map[string]LearningState{
		"NEW":             LearningStateNew,
		"LEARNING_MCQ":    LearningStateLearningMCQ,
		"LEARNING_TYPING": LearningStateLearningTyping,
		"REVIEWING":       LearningStateReviewing,
		"RELEARNING":      LearningStateRelearning,
	}
)

// IsValid reports whether s is one of the known learning states
func (s LearningState) IsValid() bool {
	return s >= LearningStateNew && s <= LearningStateRelearning
}

// String returns the stored name of the state ("NEW", "REVIEWING", ...).
// For invalid values it returns "LearningState(n)".
func (s LearningState) String() string {
	if s.IsValid() {
		return learningStateNames[s]
	}
	return fmt.Sprintf("LearningState(%d)", int(s))
}

// ParseLearningState converts a stored state name into a LearningState
//
// Unknown names are reported as invalid input.
func ParseLearningState(name string) (LearningState, error) {
	s, ok := learningStateByName[name]
	if !ok {
		return 0, fmt.Errorf("%w: unknown learning state %q", ErrInvalidInput, name)
	}
	return s, nil
}

// MarshalText implements encoding.TextMarshaler
func (s LearningState) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: unknown learning state %d", ErrInvalidInput, int(s))
	}
	return []byte(learningStateNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *LearningState) UnmarshalText(text []byte) error {
	v, err := ParseLearningState(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MarshalJSON implements json.Marshaler. LearningState serializes as a JSON string.
func (s LearningState) MarshalJSON() ([]byte, error) {
	text, err := s.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler
func (s *LearningState) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("%w: learning state must be a string", ErrInvalidInput)
	}
	return s.UnmarshalText([]byte(name))
}
