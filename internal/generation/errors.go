package generation

import "fmt"

// BackendUnavailableError reports that a backend could not produce a usable draft:
// missing credentials, a transport failure, cancellation or malformed output.
type BackendUnavailableError struct {
	Backend string
	Message string
	Cause   error
}

func (e *BackendUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s backend unavailable: %s: %v", e.Backend, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s backend unavailable: %s", e.Backend, e.Message)
}

func (e *BackendUnavailableError) Unwrap() error {
	return e.Cause
}
