package models

import (
	"errors"
	"fmt"
)

// Error kinds shared by the scheduler, the progress store and the HTTP layer.
// Use errors.Is to check: errors.Is(err, models.ErrConflict)
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("concurrent update conflict")
)

// ProgressError describes a failure for a single (user, card) pair
type ProgressError struct {
	Op     string // operation that failed, e.g. "review" or "upsert"
	UserID int
	CardID int
	Err    error
}

func (e *ProgressError) Error() string {
	return fmt.Sprintf("%s user=%d card=%d: %v", e.Op, e.UserID, e.CardID, e.Err)
}

func (e *ProgressError) Unwrap() error {
	return e.Err
}

// NewProgressError wraps err with the operation and the offending identifiers
func NewProgressError(op string, userID, cardID int, err error) *ProgressError {
	return &ProgressError{Op: op, UserID: userID, CardID: cardID, Err: err}
}
