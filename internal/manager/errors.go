package manager

import "errors"

// tooBusyError signals queue timeout/overflow for 429 mapping.
type tooBusyError struct{ reason string }

func (e tooBusyError) Error() string { return "too busy: " + e.reason }

// IsTooBusy reports whether err indicates backpressure (return 429).
func IsTooBusy(err error) bool {
	var e tooBusyError
	return errors.As(err, &e)
}

// BusyReason returns the backpressure reason carried by err, or "".
func BusyReason(err error) string {
	var e tooBusyError
	if errors.As(err, &e) {
		return e.reason
	}
	return ""
}

type modelNotFoundError struct{ id string }

func (e modelNotFoundError) Error() string { return "model not found: " + e.id }

// ErrModelNotFound returns an error when a requested model id is not present in the registry.
func ErrModelNotFound(id string) error { return modelNotFoundError{id: id} }

// IsModelNotFound reports whether the error indicates a missing model id.
func IsModelNotFound(err error) bool {
	var e modelNotFoundError
	return errors.As(err, &e)
}

// badRequestError marks a request the caller must fix (400).
type badRequestError struct{ msg string }

func (e badRequestError) Error() string { return e.msg }

func ErrBadRequest(msg string) error { return badRequestError{msg: msg} }

// IsBadRequest reports whether err is a client-side validation failure.
func IsBadRequest(err error) bool {
	var e badRequestError
	return errors.As(err, &e)
}
