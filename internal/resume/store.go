// Package resume reads generated resumes and cold emails and checks resumes
// for skill gaps.
package resume

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/outreach-agent/internal/db"
	"github.com/jonathan/outreach-agent/internal/types"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var generatedColumns = []string{
	"id", "application_id", "tailored_content", "final_content",
	"cold_email_recruiter", "cold_email_manager",
	"cover_letter_content", "similarity_score", "generated_at",
}

var baseColumns = []string{"id", "full_text", "version", "skills", "created_at"}

// Resume versions kept in the resumes table.
const (
	VersionHealthcare    = "healthcare"
	VersionFintech       = "fintech"
	VersionMLDataScience = "ml_data_science"
	VersionGeneral       = "general"
)

var versionKeywords = []struct {
	version  string
	keywords []string
}{
	{VersionHealthcare, []string{"healthcare", "health", "medical", "epic", "fhir", "claims"}},
	{VersionFintech, []string{"fintech", "finance", "payment", "banking"}},
	{VersionMLDataScience, []string{"ml", "machine learning", "ai", "data science"}},
}

// VersionForRole picks the resume version whose keywords appear in the role title.
func VersionForRole(jobRole string) string {
	role := strings.ToLower(jobRole)
	for _, vk := range versionKeywords {
		for _, kw := range vk.keywords {
			if strings.Contains(role, kw) {
				return vk.version
			}
		}
	}
	return VersionGeneral
}

// Store reads the generated_resumes and resumes tables.
type Store struct {
	q db.Querier
}

// NewStore creates a Store over q.
func NewStore(q db.Querier) *Store {
	return &Store{q: q}
}

// LatestGenerated returns the newest generated resume for applicationID.
func (s *Store) LatestGenerated(ctx context.Context, applicationID int) (*types.GeneratedResumeRecord, error) {
	query, args, err := psql.Select(generatedColumns...).
		From("generated_resumes").
		Where(squirrel.Eq{"application_id": applicationID}).
		OrderBy("generated_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, &StoreError{Op: "build query", Cause: err}
	}

	var (
		rec                                 types.GeneratedResumeRecord
		tailored, final, recruiter, manager *string
		coverLetter                         *string
		generatedAt                         *time.Time
	)
	err = s.q.QueryRow(ctx, query, args...).Scan(
		&rec.ID, &rec.ApplicationID, &tailored, &final,
		&recruiter, &manager, &coverLetter, &rec.SimilarityScore, &generatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, &StoreError{Op: "get generated resume", Cause: err}
	}

	rec.TailoredContent = deref(tailored)
	rec.FinalContent = deref(final)
	rec.ColdEmailRecruiter = deref(recruiter)
	rec.ColdEmailManager = deref(manager)
	rec.CoverLetterContent = deref(coverLetter)
	rec.GeneratedAt = generatedAt
	return &rec, nil
}

// ActiveResume returns the newest generic resume. When jobRole is non-empty the
// version is chosen by keyword, falling back to the newest resume of any version.
func (s *Store) ActiveResume(ctx context.Context, jobRole string) (*types.BaseResume, error) {
	if jobRole != "" {
		res, err := s.latestBase(ctx, VersionForRole(jobRole))
		if err == nil || !errors.Is(err, ErrNotFound) {
			return res, err
		}
	}
	return s.latestBase(ctx, "")
}

func (s *Store) latestBase(ctx context.Context, version string) (*types.BaseResume, error) {
	builder := psql.Select(baseColumns...).From("resumes").OrderBy("created_at DESC").Limit(1)
	if version != "" {
		builder = builder.Where(squirrel.Eq{"version": version})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, &StoreError{Op: "build query", Cause: err}
	}

	var (
		res      types.BaseResume
		fullText *string
		ver      *string
	)
	err = s.q.QueryRow(ctx, query, args...).Scan(&res.ID, &fullText, &ver, &res.Skills, &res.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, &StoreError{Op: "get resume", Cause: err}
	}
	res.FullText = deref(fullText)
	res.Version = deref(ver)
	if res.Skills == nil {
		res.Skills = []string{}
	}
	return &res, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
