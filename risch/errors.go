package risch

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNotAlgebraicallyIntegrable reports that no elementary
	// antiderivative was found by the transcendental Risch procedure.
	ErrNotAlgebraicallyIntegrable = errors.New("not algebraically integrable")
	// ErrDepthExceeded reports that the recursion guard stopped the
	// integrator.
	ErrDepthExceeded = errors.New("recursion depth exceeded")
)

// ArithmeticError is an unexpected failure of exact arithmetic inside the
// integrator. At the API boundary it counts as not integrable.
type ArithmeticError struct {
	Op  string
	Err error
}

func (e *ArithmeticError) Error() string {
	return fmt.Sprintf("arithmetic failure in %s: %v", e.Op, e.Err)
}

func (e *ArithmeticError) Unwrap() error { return e.Err }

func (e *ArithmeticError) Is(target error) bool {
	return target == ErrNotAlgebraicallyIntegrable
}

func arithmetic(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *ArithmeticError
	if errors.As(err, &ae) || errors.Is(err, ErrNotAlgebraicallyIntegrable) || isContextErr(err) {
		return err
	}
	return &ArithmeticError{Op: op, Err: err}
}

func notIntegrable(format string, args ...any) error {
	return errors.Wrapf(ErrNotAlgebraicallyIntegrable, format, args...)
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Outcome classifies the result of an integration.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeNotIntegrable
	OutcomeArithmeticFailure
	OutcomeCanceled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeNotIntegrable:
		return "not-integrable"
	case OutcomeArithmeticFailure:
		return "arithmetic-failure"
	case OutcomeCanceled:
		return "canceled"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Classify maps an error returned by the integrator to an Outcome.
func Classify(err error) Outcome {
	var ae *ArithmeticError
	switch {
	case err == nil:
		return OutcomeOK
	case isContextErr(err):
		return OutcomeCanceled
	case errors.As(err, &ae):
		return OutcomeArithmeticFailure
	}
	return OutcomeNotIntegrable
}
