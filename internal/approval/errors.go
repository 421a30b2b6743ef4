package approval

import (
	"fmt"

	"github.com/jonathan/outreach-agent/internal/types"
)

// NoDraftError is returned when a contact has no draft awaiting approval.
type NoDraftError struct {
	ContactID string
}

func (e *NoDraftError) Error() string {
	return fmt.Sprintf("no pending draft for contact %s", e.ContactID)
}

// TransitionError is returned for a status change the lifecycle forbids.
type TransitionError struct {
	ContactID string
	From      types.OutreachStatus
	To        types.OutreachStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("contact %s cannot move from %s to %s", e.ContactID, e.From, e.To)
}
