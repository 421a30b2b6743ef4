// Package drafts holds the single live draft per contact between generation
// and approval.
package drafts

import (
	"context"
	"errors"
	"time"

	"github.com/jonathan/outreach-agent/internal/types"
)

// DefaultTTL is how long an unapproved draft is kept.
const DefaultTTL = 72 * time.Hour

// ErrNotFound is returned when a contact has no live draft.
var ErrNotFound = errors.New("draft not found")

// Session is a draft plus the contact details needed to revise and hand it off.
type Session struct {
	Draft       types.Draft          `json:"draft"`
	Status      types.OutreachStatus `json:"status"`
	ContactName string               `json:"contact_name"`
	ProfileURL  string               `json:"linkedin_url"`
	Company     string               `json:"company,omitempty"`
	Role        string               `json:"role,omitempty"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// Store keeps at most one Session per contact ID.
type Store interface {
	Get(ctx context.Context, contactID string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, contactID string) error
}

func validate(s *Session) error {
	if s == nil {
		return errors.New("draft session is nil")
	}
	if s.Draft.ContactID == "" {
		return errors.New("draft contact ID cannot be empty")
	}
	return nil
}
