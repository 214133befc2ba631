package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers missing tickets, appointments, contracts and
	// pricing modality rows.
	ErrNotFound = errors.New("record not found")

	// ErrForbidden means the caller does not own the appointment.
	ErrForbidden = errors.New("appointment belongs to another technician")

	// ErrInvalidState means the appointment was already finalized.
	ErrInvalidState = errors.New("appointment is already finalized")
)

// ConflictError is returned by StartTimer when the technician already has a
// running appointment. It carries the conflicting ticket so the caller can
// redirect the user there.
type ConflictError struct {
	AppointmentID uint
	TicketID      uint
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("a timer is already running on ticket %d (appointment %d)", e.TicketID, e.AppointmentID)
}

// ValidationError is a caller-correctable input problem: non-positive
// duration, missing contract for contract coverage, missing modality or
// coverage at finalization.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
