package internal

import (
	"errors"

	"github.com/NYCU-SDC/summer/pkg/problem"
)

var (
	// Auth Errors
	ErrUnauthorizedError   = errors.New("unauthorized error")
	ErrInternalServerError = errors.New("internal server error")
	ErrForbiddenError      = errors.New("forbidden error")
	ErrNotFound            = errors.New("not found")

	// JWT Authentication Errors
	ErrMissingAuthHeader       = errors.New("missing access token")
	ErrInvalidAuthHeaderFormat = errors.New("invalid access token")
	ErrInvalidJWTToken         = errors.New("invalid JWT token")
	ErrInvalidAuthUser         = errors.New("invalid authenticated user")

	// User Errors
	ErrNoUserInContext = errors.New("no user found in request context")

	// Form Errors
	ErrFormNotFound     = errors.New("form not found")
	ErrFormNotPublished = errors.New("form is not published")

	// Field Errors
	ErrFieldNotFound       = errors.New("field not found")
	ErrPrevFieldNotInForm  = errors.New("previous field does not belong to the form")
	ErrFieldsNotInSameForm = errors.New("fields belong to different forms")
	ErrFieldListCorrupted  = errors.New("field list is corrupted")
	ErrFieldOrderConflict  = errors.New("field order was modified concurrently")

	// Response Errors
	ErrResponseNotFound         = errors.New("response not found")
	ErrResponseAlreadySubmitted = errors.New("response already submitted")
	ErrInvalidAnswerValue       = errors.New("invalid answer value")

	// Export Errors
	ErrExportFailed = errors.New("failed to export responses")
)

func NewProblemWriter() *problem.HttpWriter {
	return problem.NewWithMapping(ErrorHandler)
}

func ErrorHandler(err error) problem.Problem {
	switch {
	case errors.Is(err, ErrUnauthorizedError):
		return problem.NewUnauthorizedProblem("unauthorized error")
	case errors.Is(err, ErrInternalServerError):
		return problem.NewInternalServerProblem("internal server error")
	case errors.Is(err, ErrForbiddenError):
		return problem.NewForbiddenProblem("forbidden error")
	case errors.Is(err, ErrNotFound):
		return problem.NewNotFoundProblem("not found")

	case errors.Is(err, ErrMissingAuthHeader):
		return problem.NewUnauthorizedProblem("missing access token")
	case errors.Is(err, ErrInvalidAuthHeaderFormat):
		return problem.NewUnauthorizedProblem("invalid access token")
	case errors.Is(err, ErrInvalidJWTToken):
		return problem.NewUnauthorizedProblem("invalid JWT token")
	case errors.Is(err, ErrInvalidAuthUser):
		return problem.NewUnauthorizedProblem("invalid authenticated user")
	case errors.Is(err, ErrNoUserInContext):
		return problem.NewUnauthorizedProblem("no user found in request context")

	case errors.Is(err, ErrFormNotFound):
		return problem.NewNotFoundProblem("form not found")
	case errors.Is(err, ErrFormNotPublished):
		return problem.NewForbiddenProblem("form is not published")

	case errors.Is(err, ErrFieldNotFound):
		return problem.NewNotFoundProblem("field not found")
	case errors.Is(err, ErrPrevFieldNotInForm):
		return problem.NewValidateProblem("previous field does not belong to the form")
	case errors.Is(err, ErrFieldsNotInSameForm):
		return problem.NewValidateProblem("fields belong to different forms")
	case errors.Is(err, ErrFieldListCorrupted):
		return problem.NewInternalServerProblem("field list is corrupted")
	case errors.Is(err, ErrFieldOrderConflict):
		return problem.NewValidateProblem("field order was modified concurrently, reload and retry")

	case errors.Is(err, ErrResponseNotFound):
		return problem.NewNotFoundProblem("response not found")
	case errors.Is(err, ErrResponseAlreadySubmitted):
		return problem.NewValidateProblem("response already submitted")
	case errors.Is(err, ErrInvalidAnswerValue):
		return problem.NewValidateProblem("invalid answer value")

	case errors.Is(err, ErrExportFailed):
		return problem.NewInternalServerProblem("failed to export responses")
	}
	return problem.Problem{}
}
