package domain

import "errors"

// Common domain errors, mapped to HTTP status codes by the handlers:
// InvalidArgument → 400, Unauthenticated → 401, Forbidden → 403,
// NotFound → 404, Conflict → 409, anything else → 500.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("resource not found")
	ErrConflict        = errors.New("conflict")
	ErrInternal        = errors.New("internal server error")
)

// User errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrReservedUsername   = errors.New("username is reserved")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrMasterImmutable    = errors.New("master account cannot be modified")
	ErrUserHasLedger      = errors.New("user owns ledger entries")
)

// Ledger errors
var (
	ErrDuplicateTransaction = errors.New("transaction id already exists")
	ErrMasterCannotRecord   = errors.New("master users cannot create transactions")
	ErrInvalidWeights       = errors.New("final weight must exceed initial weight")
)

// Settings errors
var (
	ErrRateNotSet  = errors.New("sand rate setting not found")
	ErrInvalidRate = errors.New("rate must be a positive number")
)
