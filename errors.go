package xtpb

import (
	"fmt"
)

// ConfigError reports an invalid option value. Estimation is never
// attempted when one is returned.
type ConfigError struct {
	Option string
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("xtpb: invalid option %s=%s: %s", e.Option, e.Value, e.Reason)
}

// InsufficientDataError reports a unit that is too short for the requested
// lag order, or a half-sample that would be empty. The pooled moment
// condition requires every unit, so this aborts the whole estimation.
type InsufficientDataError struct {
	Unit string
	Obs  int
	Min  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("xtpb: unit %s has %d observations, need at least %d", e.Unit, e.Obs, e.Min)
}

// SingularMatrixError reports a normal-equations matrix that could not be
// inverted within numerical tolerance. Unit names the offending unit when
// the failure is unit-level; Replication is the 1-based bootstrap
// replication index, or 0 outside the bootstrap loop.
type SingularMatrixError struct {
	Unit        string
	Replication int
	Stage       string
	err         error
}

func (e *SingularMatrixError) Error() string {
	msg := fmt.Sprintf("xtpb: singular %s matrix", e.Stage)
	if e.Unit != "" {
		msg += fmt.Sprintf(" for unit %s", e.Unit)
	}
	if e.Replication > 0 {
		msg += fmt.Sprintf(" in bootstrap replication %d", e.Replication)
	}
	if e.err != nil {
		msg += ": " + e.err.Error()
	}
	return msg
}

func (e *SingularMatrixError) Unwrap() error { return e.err }

// Is matches any two SingularMatrixError values so callers can test with
// errors.Is(err, ErrSingular) without knowing unit or stage.
func (e *SingularMatrixError) Is(target error) bool {
	_, ok := target.(*SingularMatrixError)
	return ok
}

// ErrSingular is a sentinel for errors.Is checks against any
// SingularMatrixError.
var ErrSingular = &SingularMatrixError{}
