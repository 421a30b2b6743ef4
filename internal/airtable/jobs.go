package airtable

import (
	"context"
	"fmt"

	"github.com/jonathan/outreach-agent/internal/types"
)

// GetJobsNeedingContacts returns jobs in status (default "In progress") that
// have a job link and no discovered contacts yet.
func (c *Client) GetJobsNeedingContacts(ctx context.Context, status string) ([]types.JobApplication, error) {
	if status == "" {
		status = statusInProgress
	}
	formula := fmt.Sprintf(`AND({%s} = %s, {%s} != "", OR({%s} = FALSE(), {%s} = ""))`,
		fieldStatus, quote(status), fieldJobLink, fieldContactsFound, fieldContactsFound)

	recs, err := c.list(ctx, "get jobs needing contacts", c.jobs, query{formula: formula})
	if err != nil {
		return nil, err
	}
	jobs := make([]types.JobApplication, 0, len(recs))
	for _, rec := range recs {
		jobs = append(jobs, jobFromRecord(rec))
	}
	return jobs, nil
}

// GetJobDetails returns one job application.
func (c *Client) GetJobDetails(ctx context.Context, jobID string) (*types.JobApplication, error) {
	rec, err := c.get(ctx, "get job details", c.jobs, jobID)
	if err != nil {
		return nil, err
	}
	job := jobFromRecord(rec)
	return &job, nil
}

// UpdateJob patches fields on a job application.
func (c *Client) UpdateJob(ctx context.Context, jobID string, fields map[string]any) error {
	return c.patch(ctx, "update job", c.jobs, jobID, fields)
}

// MarkContactsFound flags a job as having discovered contacts.
func (c *Client) MarkContactsFound(ctx context.Context, jobID string) error {
	return c.UpdateJob(ctx, jobID, map[string]any{fieldContactsFound: true})
}

// GetActiveJobs returns every in-progress job, for matching against the network export.
func (c *Client) GetActiveJobs(ctx context.Context) ([]types.JobApplication, error) {
	q := query{
		formula: fmt.Sprintf("{%s} = %s", fieldStatus, quote(statusInProgress)),
		fields:  []string{fieldCompany, fieldJobPosition, fieldStatus},
	}
	recs, err := c.list(ctx, "get active jobs", c.jobs, q)
	if err != nil {
		return nil, err
	}
	jobs := make([]types.JobApplication, 0, len(recs))
	for _, rec := range recs {
		jobs = append(jobs, jobFromRecord(rec))
	}
	return jobs, nil
}
