package service

import "errors"

// DeniedError is an authentication or authorization failure that is reported
// to the client as a normal response carrying Reason.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string {
	return e.Reason
}

var (
	ErrUserNotFound        = &DeniedError{Reason: "User not found"}
	ErrInvalidPassword     = &DeniedError{Reason: "Invalid Password"}
	ErrInvalidAccessToken  = &DeniedError{Reason: "Invalid Token"}
	ErrMissingRefreshToken = &DeniedError{Reason: "No refresh token"}
	ErrInvalidRefreshToken = &DeniedError{Reason: "Invalid refresh Token"}
)

var (
	// ErrInvalidSignup is returned when a signup lacks a name, email or password.
	ErrInvalidSignup = errors.New("name, email and password are required")

	// ErrEmptyDocument is returned before the model is called when the
	// document has no text.
	ErrEmptyDocument = errors.New("document contains no readable text")
	// ErrModelUnavailable wraps failures of the model call itself.
	ErrModelUnavailable = errors.New("question model call failed")
	// ErrMalformedOutput is returned when the model reply is not a valid question set.
	ErrMalformedOutput = errors.New("malformed model output")
)
