package resume

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jonathan/outreach-agent/internal/types"
)

// Source is the resume store consulted by Resolver.
type Source interface {
	LatestGenerated(ctx context.Context, applicationID int) (*types.GeneratedResumeRecord, error)
	ActiveResume(ctx context.Context, jobRole string) (*types.BaseResume, error)
}

// Resolver resolves tailored resumes and role-specific cold emails.
type Resolver struct {
	source Source
	logger *slog.Logger
}

// NewResolver creates a Resolver. A nil logger uses slog.Default().
func NewResolver(source Source, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{source: source, logger: logger}
}

// GetTailoredResume returns the newest generated resume for the application,
// or ErrNotFound.
func (r *Resolver) GetTailoredResume(ctx context.Context, applicationID int) (*types.GeneratedResumeRecord, error) {
	return r.source.LatestGenerated(ctx, applicationID)
}

// GetColdEmail resolves the cold email for contactType on the application.
// Errors from the store, including ErrNotFound, are returned unchanged.
func (r *Resolver) GetColdEmail(ctx context.Context, applicationID int, contactType types.ContactType) (*types.ColdEmailResult, error) {
	rec, err := r.GetTailoredResume(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	res := SelectColdEmail(rec, contactType)
	r.logger.DebugContext(ctx, "resolved cold email",
		slog.Int("application_id", applicationID),
		slog.String("contact_type", string(contactType)),
		slog.String("source_field", string(res.SourceField)),
		slog.Bool("fallback_used", res.FallbackUsed))
	return &res, nil
}

// SelectColdEmail applies the cold-email fallback order to a record:
// the role's cold email, then final_content, then tailored_content.
// Team members have no cold email and always fall back.
//
// final_content is preferred over tailored_content even if it is older.
func SelectColdEmail(rec *types.GeneratedResumeRecord, contactType types.ContactType) types.ColdEmailResult {
	res := types.ColdEmailResult{ApplicationID: rec.ApplicationID, ContactType: contactType}

	var candidate string
	var field types.ResumeField
	switch contactType {
	case types.ContactTypeHiringManager:
		candidate, field = rec.ColdEmailManager, types.FieldColdEmailManager
	case types.ContactTypeRecruiter:
		candidate, field = rec.ColdEmailRecruiter, types.FieldColdEmailRecruiter
	}

	if candidate != "" {
		res.ColdEmail = candidate
		res.ResumeContext = rec.ResumeText()
		res.SourceField = field
		return res
	}

	res.FallbackUsed = true
	switch {
	case rec.FinalContent != "":
		res.ResumeContext = rec.FinalContent
		res.SourceField = types.FieldFinalContent
	case rec.TailoredContent != "":
		res.ResumeContext = rec.TailoredContent
		res.SourceField = types.FieldTailoredContent
	}
	return res
}

// CheckSkill checks skill against the job description using the tailored
// resume for applicationID when given, else the generic resume for jobRole.
// A missing resume is checked as empty text.
func (r *Resolver) CheckSkill(ctx context.Context, jobDescription, skill string, applicationID *int, jobRole string) (types.SkillMatch, error) {
	text, err := r.resumeText(ctx, applicationID, jobRole)
	if err != nil {
		return types.SkillMatch{}, err
	}
	return CheckSkillMatch(jobDescription, skill, text), nil
}

// GenericResumeText returns the full text of the generic resume for jobRole,
// or "" when none exists.
func (r *Resolver) GenericResumeText(ctx context.Context, jobRole string) (string, error) {
	base, err := r.source.ActiveResume(ctx, jobRole)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return base.FullText, nil
}

func (r *Resolver) resumeText(ctx context.Context, applicationID *int, jobRole string) (string, error) {
	if applicationID != nil {
		rec, err := r.GetTailoredResume(ctx, *applicationID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return "", nil
			}
			return "", err
		}
		return rec.ResumeText(), nil
	}
	return r.GenericResumeText(ctx, jobRole)
}
