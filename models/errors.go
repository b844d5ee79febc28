package models

import "errors"

var (
	// ErrInvalidInput is returned for malformed or out-of-constraint input such as
	// a non-numeric count, a non-positive amount or an empty name.
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidation is returned for input that parses but is incomplete, like an
	// empty selection.
	ErrValidation = errors.New("validation error")

	// ErrOutOfRange is returned for an expense number outside the ledger.
	ErrOutOfRange = errors.New("index out of range")

	// ErrPreconditionFailed is returned when an operation needs a group that
	// does not exist, or expenses that were never recorded.
	ErrPreconditionFailed = errors.New("precondition failed")
)
