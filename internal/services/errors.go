package services

import "errors"

// Failure taxonomy of the core pipeline. Handlers match these with errors.Is
// and map them to user-facing views; none of them is fatal to the process.
var (
	// ErrValidation marks malformed signup input; the user can re-submit.
	ErrValidation = errors.New("invalid input")
	// ErrDuplicateEmail marks a signup reusing a registered email.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials covers both unknown email and wrong password.
	// The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrPrediction aborts an analysis before weather or advice are attempted.
	ErrPrediction = errors.New("disease prediction failed")
	// ErrWeather aborts an analysis only when weather is configured as
	// required; the default policy degrades instead.
	ErrWeather = errors.New("weather lookup failed")
	// ErrAdvice aborts an analysis; advice is the primary deliverable.
	ErrAdvice = errors.New("advice generation failed")
)
