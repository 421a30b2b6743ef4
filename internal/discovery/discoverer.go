package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonathan/outreach-agent/internal/airtable"
	"github.com/jonathan/outreach-agent/internal/fetch"
	"github.com/jonathan/outreach-agent/internal/types"
)

// JobStore is the slice of the job/contact store discovery writes to.
type JobStore interface {
	GetJobDetails(ctx context.Context, jobID string) (*types.JobApplication, error)
	GetJobsNeedingContacts(ctx context.Context, status string) ([]types.JobApplication, error)
	SaveContacts(ctx context.Context, jobID string, contacts []types.Contact) (*airtable.SaveResult, error)
	MarkContactsFound(ctx context.Context, jobID string) error
}

// ContactFinder finds contacts for a company and role.
type ContactFinder interface {
	FindContacts(ctx context.Context, company, jobTitle, location string, limit int) (*Result, error)
}

// JobDiscovery is the outcome of discovering contacts for one job.
type JobDiscovery struct {
	JobID           string               `json:"job_id"`
	Company         string               `json:"company"`
	Role            string               `json:"job_title"`
	LocationScraped string               `json:"location_scraped,omitempty"`
	Search          *Result              `json:"search"`
	Saved           *airtable.SaveResult `json:"saved,omitempty"`
	MarkedFound     bool                 `json:"contacts_found"`
}

// Discoverer runs discovery end to end for stored jobs.
type Discoverer struct {
	jobs    JobStore
	finder  ContactFinder
	scraper fetch.Scraper
	logger  *slog.Logger
}

// NewDiscoverer creates a Discoverer. A nil scraper skips location scraping.
func NewDiscoverer(jobs JobStore, finder ContactFinder, scraper fetch.Scraper, logger *slog.Logger) *Discoverer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discoverer{jobs: jobs, finder: finder, scraper: scraper, logger: logger}
}

// DiscoverForJob finds contacts for a job, saves them linked to it and marks
// the job as having contacts when every save succeeded.
func (d *Discoverer) DiscoverForJob(ctx context.Context, jobID string, limit int) (*JobDiscovery, error) {
	if jobID == "" {
		return nil, errors.New("job_id is required")
	}
	job, err := d.jobs.GetJobDetails(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load job %s: %w", jobID, err)
	}
	if job.Company == "" {
		return nil, fmt.Errorf("job %s has no company", jobID)
	}

	out := &JobDiscovery{JobID: jobID, Company: job.Company, Role: job.Role}
	location := job.Location
	if d.scraper != nil && job.JobLink != "" {
		posting, err := d.scraper.Scrape(ctx, job.JobLink)
		if err != nil {
			d.logger.WarnContext(ctx, "job page scrape failed", slog.String("job_id", jobID), slog.Any("error", err))
		} else if posting.Location != "" {
			location = posting.Location
			out.LocationScraped = posting.Location
		}
	}

	res, err := d.finder.FindContacts(ctx, job.Company, job.Role, location, limit)
	if err != nil {
		return nil, err
	}
	out.Search = res
	if len(res.Contacts) == 0 {
		d.logger.InfoContext(ctx, "no contacts found", slog.String("job_id", jobID), slog.String("company", job.Company))
		return out, nil
	}

	saved, err := d.jobs.SaveContacts(ctx, jobID, res.Contacts)
	if err != nil {
		return nil, err
	}
	out.Saved = saved
	if !saved.OK() {
		return out, nil
	}

	if err := d.jobs.MarkContactsFound(ctx, jobID); err != nil {
		return nil, fmt.Errorf("failed to mark contacts found: %w", err)
	}
	out.MarkedFound = true
	d.logger.InfoContext(ctx, "contacts discovered",
		slog.String("job_id", jobID),
		slog.String("company", job.Company),
		slog.Int("saved", len(saved.CreatedIDs)))
	return out, nil
}

// DiscoverPending runs DiscoverForJob for every job in status still lacking
// contacts. One job failing does not stop the rest.
func (d *Discoverer) DiscoverPending(ctx context.Context, status string, limit int) ([]*JobDiscovery, error) {
	jobs, err := d.jobs.GetJobsNeedingContacts(ctx, status)
	if err != nil {
		return nil, err
	}

	results := make([]*JobDiscovery, 0, len(jobs))
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		r, err := d.DiscoverForJob(ctx, job.ID, limit)
		if err != nil {
			d.logger.WarnContext(ctx, "discovery failed", slog.String("job_id", job.ID), slog.Any("error", err))
			continue
		}
		results = append(results, r)
	}
	return results, nil
}
