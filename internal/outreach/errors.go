package outreach

import (
	"errors"
	"fmt"

	"github.com/jonathan/outreach-agent/internal/types"
)

// errEmptyMessage is the cause recorded when the model returns no text.
var errEmptyMessage = errors.New("model returned an empty message")

// ContactNotFoundError is returned when the contact lookup fails.
// Message carries the store's error text unchanged.
type ContactNotFoundError struct {
	ContactID string
	Message   string
	Cause     error
}

func (e *ContactNotFoundError) Error() string {
	return e.Message
}

func (e *ContactNotFoundError) Unwrap() error {
	return e.Cause
}

// GenerationError is returned when the text-generation call fails. It is never retried.
type GenerationError struct {
	Pipeline types.Pipeline
	Cause    error
}

func (e *GenerationError) Error() string {
	if e.Cause == nil {
		return "generation failed"
	}
	return fmt.Sprintf("generation failed: %v", e.Cause)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// InvalidPipelineError is returned for a pipeline name other than hunter or farmer.
type InvalidPipelineError struct {
	Pipeline string
}

func (e *InvalidPipelineError) Error() string {
	return fmt.Sprintf("unknown pipeline %q (want %q or %q)", e.Pipeline, types.PipelineHunter, types.PipelineFarmer)
}
