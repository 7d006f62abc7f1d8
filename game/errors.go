// bingo/game/errors.go
package game

import (
	"errors"
	"fmt"
)

// ValidationReason is a machine-readable code for a rejected proof. These are
// user-correctable and surfaced verbatim to the submitter.
type ValidationReason string

const (
	TooShort     ValidationReason = "too_short"
	MissingField ValidationReason = "missing_field"
	MissingFile  ValidationReason = "missing_file"
	InvalidType  ValidationReason = "invalid_type"
	TooLarge     ValidationReason = "too_large"
)

// ValidationError reports why a proof was rejected before it ever reached the
// ledger.
type ValidationError struct {
	Reason  ValidationReason
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid proof (%s): %s", e.Reason, e.Message)
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// Ledger and generation guard errors. These indicate a caller bug or a race
// with another actor rather than bad user input.
var (
	ErrDuplicateActive   = errors.New("an active submission already exists for this task and user")
	ErrNotFound          = errors.New("no submission found for this task and user")
	ErrInvalidTransition = errors.New("submission is not pending and cannot transition")
	ErrInsufficientPool  = errors.New("task pool is too small to fill a board")
	ErrIndexOutOfRange   = errors.New("cell index outside the board")
)
