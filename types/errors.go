package types

import "errors"

type ErrorKind string

const (
	ErrorKindResolutionFailure    ErrorKind = "ResolutionFailure"
	ErrorKindDirectoryUnavailable ErrorKind = "DirectoryUnavailable"
	ErrorKindInvalidName          ErrorKind = "InvalidName"
	ErrorKindDisallowedPattern    ErrorKind = "DisallowedPattern"
)

// PreflightError classifies the failures this engine can surface: resolution
// failures and invalid names are reported per resource, directory
// unavailability is downgraded to a warning by callers, and disallowed
// patterns are rejected outright.
type PreflightError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (preflightError *PreflightError) Error() string {
	if preflightError == nil {
		return "<nil>"
	}
	if preflightError.Message != "" && preflightError.Cause != nil {
		return preflightError.Message + ": " + preflightError.Cause.Error()
	}
	if preflightError.Message != "" {
		return preflightError.Message
	}
	if preflightError.Cause != nil {
		return preflightError.Cause.Error()
	}
	return string(preflightError.Kind)
}

func (preflightError *PreflightError) Unwrap() error {
	if preflightError == nil {
		return nil
	}
	return preflightError.Cause
}

func NewPreflightError(kind ErrorKind, message string, cause error) *PreflightError {
	return &PreflightError{
		Kind:    kind,
		Message: message,
		Cause:   cause,
	}
}

func IsErrorKind(err error, kind ErrorKind) bool {
	if err == nil {
		return false
	}
	var preflightError *PreflightError
	if !errors.As(err, &preflightError) {
		return false
	}
	return preflightError.Kind == kind
}
