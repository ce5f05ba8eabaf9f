package core

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when there is no data to process
	ErrEmptyInput = errors.New("empty input")
	// ErrInsufficientData is returned when data is present but cannot satisfy the vocabulary or cluster constraints
	ErrInsufficientData = errors.New("insufficient data")
	// ErrInvalidClusterCount is returned when k is incompatible with the number of rows
	ErrInvalidClusterCount = errors.New("invalid cluster count")
	// ErrMismatchedLength is returned when records and labels differ in length
	ErrMismatchedLength = errors.New("mismatched length")
	// ErrInvalidTimestamp is returned when a record timestamp cannot be parsed
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	// ErrInvalidDate is returned when a run lower bound is malformed or in the future
	ErrInvalidDate = errors.New("invalid date")
	// ErrSourceFailed wraps any error raised by the email source
	ErrSourceFailed = errors.New("email source failed")
	// ErrNotFound is returned when a stored entity does not exist
	ErrNotFound = errors.New("not found")
	// ErrUserExists is returned when signing up with an email that is already registered
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidSignUp is returned when sign-up fields fail validation
	ErrInvalidSignUp = errors.New("invalid sign-up")
	// ErrInvalidCredentials is returned when an email and password do not match
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnknownEmail is returned when logging in with an email that is not registered
	ErrUnknownEmail = fmt.Errorf("%w: email does not exist", ErrInvalidCredentials)
	// ErrIncorrectPassword is returned when the password does not match the account
	ErrIncorrectPassword = fmt.Errorf("%w: incorrect password", ErrInvalidCredentials)
)

// ErrorKind maps an error to a short stable kind so callers can surface it distinctly
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, ErrInvalidClusterCount):
		return "invalid_cluster_count"
	case errors.Is(err, ErrMismatchedLength):
		return "mismatched_length"
	case errors.Is(err, ErrInvalidTimestamp):
		return "invalid_timestamp"
	case errors.Is(err, ErrInvalidDate):
		return "invalid_date"
	case errors.Is(err, ErrSourceFailed):
		return "source"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUserExists):
		return "user_exists"
	case errors.Is(err, ErrInvalidSignUp):
		return "invalid_sign_up"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	default:
		return "internal"
	}
}
