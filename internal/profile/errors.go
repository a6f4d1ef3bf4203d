package profile

import "fmt"

// EmptyInputError is returned when there is nothing to merge.
type EmptyInputError struct {
	Message string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("empty input: %s", e.Message)
}
