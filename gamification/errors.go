package gamification

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAction is wrapped by every InvalidActionError.
	ErrInvalidAction = errors.New("invalid action")
	// ErrInvalidMultiplier is returned for NaN, negative or oversized multipliers.
	ErrInvalidMultiplier = errors.New("invalid multiplier")
	// ErrStateNotFound is returned by stores when no record exists for a user.
	ErrStateNotFound = errors.New("gamification state not found")
)

// InvalidActionError reports an action identifier outside the point table.
type InvalidActionError struct {
	Action string
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("invalid action %q", e.Action)
}

func (e *InvalidActionError) Unwrap() error {
	return ErrInvalidAction
}

// PersistenceWarning reports that an award was applied in memory but could
// not be saved. The award stands; callers may retry with Session.Flush.
type PersistenceWarning struct {
	UserID string
	Err    error
}

func (w *PersistenceWarning) Error() string {
	return fmt.Sprintf("gamification state for %q not persisted: %v", w.UserID, w.Err)
}

func (w *PersistenceWarning) Unwrap() error {
	return w.Err
}

// IsPersistenceWarning reports whether err carries a PersistenceWarning.
func IsPersistenceWarning(err error) bool {
	var w *PersistenceWarning
	return errors.As(err, &w)
}
