package models

import (
	"encoding/json"
	"fmt"
)

// Grade is the ordinal difficulty feedback given by the user after answering a card
type Grade int

const (
	GradeAgain Grade = iota + 1 // Complete blackout, incorrect response
	GradeHard                   // Correct, with significant difficulty
	GradeGood                   // Correct, with some hesitation
	GradeEasy                   // Perfect response
)

var (
	gradeNames  = [...]string{GradeAgain: "AGAIN", GradeHard: "HARD", GradeGood: "GOOD", GradeEasy: "EASY"}
	gradeByName = map[string]Grade{
		"AGAIN": GradeAgain,
		"HARD":  GradeHard,
		"GOOD":  GradeGood,
		"EASY":  GradeEasy,
	}
)

// IsValid reports whether g is one of AGAIN, HARD, GOOD or EASY
func (g Grade) IsValid() bool {
	return g >= GradeAgain && g <= GradeEasy
}

// String returns the name of the grade. For invalid values it returns "Grade(n)".
func (g Grade) String() string {
	if g.IsValid() {
		return gradeNames[g]
	}
	return fmt.Sprintf("Grade(%d)", int(g))
}

// ParseGrade converts a grade name into a Grade
func ParseGrade(name string) (Grade, error) {
	g, ok := gradeByName[name]
	if !ok {
		return 0, fmt.Errorf("%w: grade must be one of AGAIN, HARD, GOOD, EASY, got %q", ErrInvalidInput, name)
	}
	return g, nil
}

// MarshalText implements encoding.TextMarshaler
func (g Grade) MarshalText() ([]byte, error) {
	if !g.IsValid() {
		return nil, fmt.Errorf("%w: unknown grade %d", ErrInvalidInput, int(g))
	}
	return []byte(gradeNames[g]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (g *Grade) UnmarshalText(text []byte) error {
	v, err := ParseGrade(string(text))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

// MarshalJSON implements json.Marshaler. Grade serializes as a JSON string.
func (g Grade) MarshalJSON() ([]byte, error) {
	text, err := g.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler
func (g *Grade) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("%w: grade must be a string", ErrInvalidInput)
	}
	return g.UnmarshalText([]byte(name))
}
