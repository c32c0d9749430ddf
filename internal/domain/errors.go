package domain

import "fmt"

// ValidationError reports a bad numeric or enumerated input. Calculations
// fail fast with it and never return partial results.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// CorruptDataWarning signals that persisted history could not be read and was
// reset to an empty log. It is recoverable; the caller decides how to notify.
type CorruptDataWarning struct {
	Source string
	Err    error
}

func (e *CorruptDataWarning) Error() string {
	return fmt.Sprintf("history %s is corrupt, starting empty: %v", e.Source, e.Err)
}

func (e *CorruptDataWarning) Unwrap() error { return e.Err }

// PersistenceError reports that a mutation could not be written. The
// in-memory history is left as it was before the mutation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: history not saved: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
