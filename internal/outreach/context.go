package outreach

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonathan/outreach-agent/internal/resume"
	"github.com/jonathan/outreach-agent/internal/types"
)

// ContactStore looks up a contact together with its linked job.
type ContactStore interface {
	GetContactWithJob(ctx context.Context, contactID string) (*types.ContactWithJob, error)
}

// ResumeResolver is the resume lookup used while resolving context.
type ResumeResolver interface {
	GetColdEmail(ctx context.Context, applicationID int, contactType types.ContactType) (*types.ColdEmailResult, error)
	GenericResumeText(ctx context.Context, jobRole string) (string, error)
}

// ContextResolver assembles an OutreachContext from a contact ID.
type ContextResolver struct {
	contacts ContactStore
	resumes  ResumeResolver
	skill    string
	logger   *slog.Logger
}

// NewContextResolver creates a ContextResolver. An empty skill uses resume.DefaultSkill.
func NewContextResolver(contacts ContactStore, resumes ResumeResolver, skill string, logger *slog.Logger) *ContextResolver {
	if skill == "" {
		skill = resume.DefaultSkill
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ContextResolver{contacts: contacts, resumes: resumes, skill: skill, logger: logger}
}

// Resolve builds the context for contactID. Only a failed contact lookup is
// returned as an error (*ContactNotFoundError); every later failure is
// recorded in Notes and leaves the affected fields empty.
func (r *ContextResolver) Resolve(ctx context.Context, contactID string) (*types.OutreachContext, error) {
	cwj, err := r.contacts.GetContactWithJob(ctx, contactID)
	if err != nil {
		return nil, &ContactNotFoundError{ContactID: contactID, Message: err.Error(), Cause: err}
	}

	contact := cwj.Contact
	contactType := contact.Type
	if contactType == "" {
		contactType = types.ContactTypeTeamMember
	}
	degree := contact.ConnectionDegree
	if degree == "" {
		degree = types.DegreeSecond
	}
	source := contact.Source
	if source == "" {
		source = types.ContactSourceApollo
	}
	status := contact.Status
	if status == "" {
		status = types.StatusReady
	}

	oc := &types.OutreachContext{
		ContactID:        contactID,
		ContactName:      contact.Name,
		ContactTitle:     contact.Title,
		ContactType:      contactType,
		ProfileURL:       contact.ProfileURL,
		ConnectionDegree: degree,
		ContactSource:    source,
		ConnectedOn:      contact.ConnectedOn,
		Status:           status,
		FallbackUsed:     true,
		Pipeline:         Route(degree, source),
	}

	job := cwj.Job
	if job == nil {
		oc.Notes = append(oc.Notes, "No linked job found for contact")
		return oc, nil
	}
	oc.JobID = job.ID
	oc.Company = job.Company
	oc.Role = job.Role
	oc.JobDescription = job.Description
	oc.ResumeLinkID = job.ResumeLinkID

	tailoredText, haveTailored := r.resolveColdEmail(ctx, oc, job)

	if job.Description != "" {
		resumeText := tailoredText
		if !haveTailored {
			text, err := r.resumes.GenericResumeText(ctx, job.Role)
			if err != nil {
				r.logger.WarnContext(ctx, "generic resume lookup failed", slog.String("contact_id", contactID), slog.Any("error", err))
				oc.Notes = append(oc.Notes, fmt.Sprintf("Generic resume unavailable: %v", err))
			}
			resumeText = text
		}
		match := resume.CheckSkillMatch(job.Description, r.skill, resumeText)
		oc.SkillCheck = &match
		oc.HasEpicGap = match.HasGap
	}

	return oc, nil
}

// resolveColdEmail fills the cold-email fields of oc. It returns the tailored
// resume text and whether a generated resume record was found.
func (r *ContextResolver) resolveColdEmail(ctx context.Context, oc *types.OutreachContext, job *types.JobApplication) (string, bool) {
	if job.ResumeLinkID == "" {
		oc.Notes = append(oc.Notes, "Job has no linked resume")
		return "", false
	}

	applicationID, err := job.ApplicationID()
	if err != nil {
		invalid := &resume.InvalidInputError{Value: job.ResumeLinkID, Cause: err}
		r.logger.InfoContext(ctx, "skipping cold email lookup", slog.String("job_id", job.ID), slog.Any("error", invalid))
		oc.Notes = append(oc.Notes, invalid.Error())
		return "", false
	}

	res, err := r.resumes.GetColdEmail(ctx, applicationID, oc.ContactType)
	if err != nil {
		if errors.Is(err, resume.ErrNotFound) {
			oc.Notes = append(oc.Notes, fmt.Sprintf("No generated resume found for application_id %d", applicationID))
		} else {
			r.logger.WarnContext(ctx, "cold email lookup failed", slog.Int("application_id", applicationID), slog.Any("error", err))
			oc.Notes = append(oc.Notes, fmt.Sprintf("Resume store unavailable: %v", err))
		}
		return "", false
	}

	oc.ColdEmail = res.ColdEmail
	oc.ResumeContext = res.ResumeContext
	oc.FallbackUsed = res.FallbackUsed
	oc.SourceField = res.SourceField
	return res.ResumeContext, true
}
