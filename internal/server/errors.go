package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/outreach-agent/internal/airtable"
	"github.com/jonathan/outreach-agent/internal/approval"
	"github.com/jonathan/outreach-agent/internal/content"
	"github.com/jonathan/outreach-agent/internal/discovery"
	"github.com/jonathan/outreach-agent/internal/knowledge"
	"github.com/jonathan/outreach-agent/internal/outreach"
	"github.com/jonathan/outreach-agent/internal/resume"
)

// UnsupportedOperationError is returned for an action name outside the registry.
type UnsupportedOperationError struct {
	Action    string
	Supported []Action
}

func (e *UnsupportedOperationError) Error() string {
	names := make([]string, len(e.Supported))
	for i, a := range e.Supported {
		names[i] = string(a)
	}
	if e.Action == "" {
		return "missing 'action' field in request body"
	}
	return fmt.Sprintf("unsupported action %q (supported: %s)", e.Action, strings.Join(names, ", "))
}

// ValidationError indicates request validation failure
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// UnavailableError is returned when an action needs a collaborator that was
// not configured.
type UnavailableError struct {
	Component string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s is not configured", e.Component)
}

// validationError converts a validator error into a *ValidationError for
// the first failing field.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		msg := fe.Tag()
		if fe.Tag() == "required" {
			msg = "is required"
		} else if fe.Param() != "" {
			msg = fmt.Sprintf("must satisfy %s=%s", fe.Tag(), fe.Param())
		}
		return &ValidationError{Field: fe.Field(), Message: msg}
	}
	return &ValidationError{Field: "(request)", Message: err.Error()}
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		unsupported *UnsupportedOperationError
		invalid     *ValidationError
		unavailable *UnavailableError
		noContact   *outreach.ContactNotFoundError
		badPipeline *outreach.InvalidPipelineError
		generation  *outreach.GenerationError
		noDraft     *approval.NoDraftError
		transition  *approval.TransitionError
		apollo      *discovery.APIError
		store       *airtable.APIError
		pages       *knowledge.APIError
		noDatabase  *knowledge.NotConfiguredError
		contentStep *content.StepError
	)
	switch {
	case errors.As(err, &unsupported), errors.As(err, &invalid), errors.As(err, &badPipeline):
		return http.StatusBadRequest
	case errors.As(err, &noContact), errors.As(err, &noDraft), errors.Is(err, resume.ErrNotFound), airtable.IsNotFound(err), knowledge.IsNotFound(err):
		return http.StatusNotFound
	case errors.As(err, &transition):
		return http.StatusConflict
	case errors.As(err, &unavailable), errors.As(err, &noDatabase):
		return http.StatusServiceUnavailable
	case errors.As(err, &generation), errors.As(err, &apollo), errors.As(err, &store), errors.As(err, &pages):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &contentStep) && contentStep.Step == "generate":
		return http.StatusBadGateway
	case errors.As(err, &contentStep) && contentStep.Step == "fetch":
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
