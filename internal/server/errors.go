package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/resume-mailer/internal/db"
	"github.com/jonathan/resume-mailer/internal/fetch"
	"github.com/jonathan/resume-mailer/internal/ingestion"
	"github.com/jonathan/resume-mailer/internal/profile"
	"github.com/jonathan/resume-mailer/internal/schemas"
)

// ErrStorageDisabled is returned by routes that need a database when none is configured.
var ErrStorageDisabled = errors.New("storage is not configured")

// RequestError indicates a malformed or inconsistent request field.
type RequestError struct {
	Field   string
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// HTTPStatus maps an error from the pipeline or storage to a response status.
func HTTPStatus(err error) int {
	var (
		reqErr      *RequestError
		validErrs   validator.ValidationErrors
		schemaErr   *schemas.ValidationError
		emptyErr    *profile.EmptyInputError
		extractErr  *ingestion.TextExtractionError
		fetchErr    *fetch.Error
		tooLargeErr *http.MaxBytesError
	)
	switch {
	case errors.As(err, &reqErr), errors.As(err, &validErrs),
		errors.As(err, &schemaErr), errors.As(err, &emptyErr):
		return http.StatusBadRequest
	case errors.As(err, &tooLargeErr):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &extractErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrStorageDisabled):
		return http.StatusServiceUnavailable
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
