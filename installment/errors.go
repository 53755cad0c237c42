package installment

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidScheduleInput is returned before any installment is built.
	ErrInvalidScheduleInput = errors.New("invalid schedule input")
	ErrInvalidAmount        = errors.New("payment amount must be positive")
	ErrInstallmentSettled   = errors.New("installment already settled")
	ErrInvalidTransition    = errors.New("invalid installment status transition")
	ErrBalanceInvariant     = errors.New("paid amount exceeds file total")
)

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidScheduleInput, fmt.Sprintf(format, args...))
}
