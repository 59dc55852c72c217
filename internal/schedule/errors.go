package schedule

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDuration = errors.New("duration must be between 1 and 60 minutes")
	ErrWindowElapsed   = errors.New("scheduled window has already elapsed")
	ErrBreakBlock      = errors.New("break blocks cannot start a session")
	ErrBlockNotFound   = errors.New("time block not found")
)

// CapacityError reports a create that would overflow an hour slot.
// The block is never partially created.
type CapacityError struct {
	Requested int // minutes asked for
	Available int // minutes remaining in the slot
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("duration (%dm) exceeds remaining capacity (%dm)", e.Requested, e.Available)
}
