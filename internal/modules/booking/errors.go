package booking

import (
	"errors"
	"fmt"
)

var (
	ErrSlotTaken               = errors.New("time slot already taken")
	ErrInvalidData             = errors.New("invalid booking data")
	ErrPastBooking             = errors.New("booking start is in the past")
	ErrUnknownService          = errors.New("unknown service")
	ErrNotFound                = errors.New("booking not found")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

// UnknownFieldError rejects a patch field outside the allow-list, naming
// the offending field.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("field %q is not patchable", e.Field)
}
