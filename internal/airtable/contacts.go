package airtable

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jonathan/outreach-agent/internal/types"
)

// SaveError records a contact that could not be created.
type SaveError struct {
	Contact string `json:"contact"`
	Error   string `json:"error"`
}

// SaveResult is the outcome of SaveContacts.
type SaveResult struct {
	CreatedIDs []string    `json:"created_ids"`
	Errors     []SaveError `json:"errors"`
}

// OK reports whether every contact was created.
func (r *SaveResult) OK() bool {
	return len(r.Errors) == 0
}

// GetContactsReadyForOutreach returns contacts in any of statuses (default
// Ready), sorted by priority with unranked contacts last.
func (c *Client) GetContactsReadyForOutreach(ctx context.Context, statuses ...types.OutreachStatus) ([]types.Contact, error) {
	if len(statuses) == 0 {
		statuses = []types.OutreachStatus{types.StatusReady}
	}
	conds := make([]string, 0, len(statuses))
	for _, s := range statuses {
		conds = append(conds, fmt.Sprintf("{%s} = %s", fieldOutreachStatus, quote(string(s))))
	}
	formula := "OR(" + strings.Join(conds, ", ") + ")"

	recs, err := c.list(ctx, "get contacts ready for outreach", c.contacts, query{formula: formula})
	if err != nil {
		return nil, err
	}
	contacts := make([]types.Contact, 0, len(recs))
	for _, rec := range recs {
		contacts = append(contacts, contactFromRecord(rec))
	}
	sort.SliceStable(contacts, func(i, j int) bool { return contacts[i].Priority < contacts[j].Priority })
	return contacts, nil
}

// SaveContacts creates each contact as Ready and linked to jobID. Failures
// are collected per contact; the returned error is only for an invalid call.
func (c *Client) SaveContacts(ctx context.Context, jobID string, contacts []types.Contact) (*SaveResult, error) {
	if jobID == "" {
		return nil, fmt.Errorf("job ID is required")
	}
	res := &SaveResult{CreatedIDs: []string{}, Errors: []SaveError{}}
	for _, contact := range contacts {
		id, err := c.create(ctx, "save contact", c.contacts, contactFields(contact, jobID))
		if err != nil {
			c.logger.WarnContext(ctx, "failed to save contact", slog.String("job_id", jobID), slog.String("contact", contact.Name), slog.Any("error", err))
			res.Errors = append(res.Errors, SaveError{Contact: contact.Name, Error: err.Error()})
			continue
		}
		res.CreatedIDs = append(res.CreatedIDs, id)
	}
	return res, nil
}

// UpdateContactStatus sets the outreach status plus any extra fields.
func (c *Client) UpdateContactStatus(ctx context.Context, contactID string, status types.OutreachStatus, fields map[string]any) error {
	if !status.Valid() {
		return fmt.Errorf("invalid outreach status %q", status)
	}
	patch := map[string]any{fieldOutreachStatus: string(status)}
	for k, v := range fields {
		patch[k] = v
	}
	return c.patch(ctx, "update contact status", c.contacts, contactID, patch)
}

// ContactStatus returns the stored outreach status. Rows without one read
// as Ready.
func (c *Client) ContactStatus(ctx context.Context, contactID string) (types.OutreachStatus, error) {
	rec, err := c.get(ctx, "get contact status", c.contacts, contactID)
	if err != nil {
		return "", err
	}
	return contactFromRecord(rec).Status, nil
}

// SaveMessageDraft stores a draft on the contact and marks it Drafted.
func (c *Client) SaveMessageDraft(ctx context.Context, contactID, message string) error {
	return c.UpdateContactStatus(ctx, contactID, types.StatusDrafted, map[string]any{fieldMessageDraft: message})
}

// MarkContactApproved stores the final message and marks the contact Approved.
func (c *Client) MarkContactApproved(ctx context.Context, contactID, message string) error {
	return c.UpdateContactStatus(ctx, contactID, types.StatusApproved, map[string]any{fieldMessageFinal: message})
}

// GetContactWithJob returns a contact and its first linked job. Job is nil
// when the contact has no link or the job cannot be read.
func (c *Client) GetContactWithJob(ctx context.Context, contactID string) (*types.ContactWithJob, error) {
	rec, err := c.get(ctx, "contact not found", c.contacts, contactID)
	if err != nil {
		return nil, err
	}
	out := &types.ContactWithJob{Contact: contactFromRecord(rec)}

	if out.Contact.JobID == "" {
		return out, nil
	}
	job, err := c.GetJobDetails(ctx, out.Contact.JobID)
	if err != nil {
		c.logger.WarnContext(ctx, "linked job unavailable",
			slog.String("contact_id", contactID),
			slog.String("job_id", out.Contact.JobID),
			slog.Any("error", err))
		return out, nil
	}
	out.Job = job
	out.Contact.Company = job.Company
	return out, nil
}
