package dispatch

import "errors"

var (
	// ErrInvalidInput is returned when rigs, wells or availability data are
	// inconsistent. The whole run is aborted.
	ErrInvalidInput = errors.New("invalid dispatch input")

	// ErrInvalidRecord is returned when a well record cannot be scored
	ErrInvalidRecord = errors.New("invalid well record")
)

// OutcomeValidationError describes an invariant violated by a finished run
type OutcomeValidationError struct {
	RigID       string
	Round       Round
	Check       string
	Description string
}

func (e OutcomeValidationError) Error() string {
	return e.Check + ": " + e.RigID + " " + e.Round.String() + ": " + e.Description
}
