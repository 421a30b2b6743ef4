//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strconv"
	"strings"
	"time"
)

// JobApplication is a job the candidate has applied to, as held by the job store.
type JobApplication struct {
	ID             string `json:"job_id"`
	Company        string `json:"company"`
	Role           string `json:"role"`
	JobLink        string `json:"linkedin_url,omitempty"`
	Status         string `json:"status"`
	Description    string `json:"job_description"`
	SkillAudit     string `json:"skill_audit,omitempty"`
	DriveLink      string `json:"drive_link,omitempty"`
	ContactsFound  bool   `json:"contacts_found"`
	ContactsJSON   string `json:"contacts_json,omitempty"`
	ResumeLinkID   string `json:"resume_postgres_id,omitempty"` // Legacy records may hold non-numeric values
	Location       string `json:"location,omitempty"`
}

// ApplicationID parses the resume link into the generated-resume application ID.
func (j *JobApplication) ApplicationID() (int, error) {
	return strconv.Atoi(strings.TrimSpace(j.ResumeLinkID))
}

// IsInProgress reports whether the job is eligible for outreach.
func (j *JobApplication) IsInProgress() bool {
	return strings.EqualFold(strings.TrimSpace(j.Status), "in progress")
}

// Contact is a person at a target company, linked to exactly one job application.
type Contact struct {
	ID               string           `json:"contact_id,omitempty"`
	Name             string           `json:"name" validate:"required"`
	Title            string           `json:"title"`
	ProfileURL       string           `json:"linkedin_url"`
	Email            string           `json:"email,omitempty" validate:"omitempty,email"`
	Type             ContactType      `json:"contact_type" validate:"omitempty,oneof=hiring_manager recruiter team_member"`
	Source           ContactSource    `json:"contact_source" validate:"omitempty,oneof=apollo csv_import"`
	ConnectionDegree ConnectionDegree `json:"connection_degree" validate:"omitempty,oneof=1st 2nd 3rd"`
	Priority         int              `json:"priority"`
	Status           OutreachStatus   `json:"outreach_status,omitempty"`
	JobID            string           `json:"job_id,omitempty"`
	ConnectedOn      string           `json:"connected_on,omitempty"`
	MessageDraft     string           `json:"message_draft,omitempty"`
	Company          string           `json:"company,omitempty"`
}

// FirstName returns the first whitespace-delimited token of the name, or "there".
func (c *Contact) FirstName() string {
	return FirstName(c.Name)
}

// FirstName returns the first whitespace-delimited token of name, or "there" when empty.
func FirstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "there"
	}
	return fields[0]
}

// ContactWithJob is a contact together with its linked job application.
// Job is nil when the contact has no linked job or the job could not be read.
type ContactWithJob struct {
	Contact Contact         `json:"contact"`
	Job     *JobApplication `json:"job"`
}

// ResumeField names a column of a generated resume record.
type ResumeField string

const (
	FieldColdEmailManager   ResumeField = "cold_email_manager"
	FieldColdEmailRecruiter ResumeField = "cold_email_recruiter"
	FieldFinalContent       ResumeField = "final_content"
	FieldTailoredContent    ResumeField = "tailored_content"
)

// GeneratedResumeRecord is the newest output of the external resume generator
// for one application.
type GeneratedResumeRecord struct {
	ID                 int64      `json:"resume_id"`
	ApplicationID      int        `json:"application_id"`
	TailoredContent    string     `json:"tailored_content"`
	FinalContent       string     `json:"final_content"`
	ColdEmailRecruiter string     `json:"cold_email_recruiter"`
	ColdEmailManager   string     `json:"cold_email_manager"`
	CoverLetterContent string     `json:"cover_letter_content"`
	SimilarityScore    *float64   `json:"similarity_score"`
	GeneratedAt        *time.Time `json:"generated_at,omitempty"`
}

// ResumeText returns the best available resume body: final content, then tailored content.
func (r *GeneratedResumeRecord) ResumeText() string {
	if r.FinalContent != "" {
		return r.FinalContent
	}
	return r.TailoredContent
}

// BaseResume is a generic (not job-tailored) resume version.
type BaseResume struct {
	ID        int64     `json:"resume_id"`
	FullText  string    `json:"full_text"`
	Version   string    `json:"version"`
	Skills    []string  `json:"skills"`
	CreatedAt time.Time `json:"created_at"`
}
