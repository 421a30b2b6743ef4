//nolint:revive // types is a standard Go package name pattern
package types

// SkillMatch is the result of checking one skill keyword against a job
// description and a resume body.
type SkillMatch struct {
	Skill            string `json:"skill"`
	RequirementFound bool   `json:"requirement_found"`
	SkillFound       bool   `json:"skill_found"`
	HasGap           bool   `json:"has_gap"`
	Recommendation   string `json:"recommendation,omitempty"`
}

// ColdEmailResult is the outcome of resolving a cold email for an application.
// SourceField is empty when neither the cold email nor any resume text was available.
type ColdEmailResult struct {
	ColdEmail     string      `json:"cold_email,omitempty"`
	ResumeContext string      `json:"resume_context,omitempty"`
	FallbackUsed  bool        `json:"fallback_used"`
	SourceField   ResumeField `json:"source_field,omitempty"`
	ApplicationID int         `json:"application_id"`
	ContactType   ContactType `json:"contact_type"`
}

// OutreachContext is everything needed to draft a message for one contact.
// It is built per request and never persisted.
type OutreachContext struct {
	ContactID        string           `json:"contact_id"`
	ContactName      string           `json:"contact_name"`
	ContactTitle     string           `json:"contact_title"`
	ContactType      ContactType      `json:"contact_type"`
	ProfileURL       string           `json:"linkedin_url"`
	ConnectionDegree ConnectionDegree `json:"connection_degree"`
	ContactSource    ContactSource    `json:"contact_source"`
	ConnectedOn      string           `json:"connected_on,omitempty"`
	Status           OutreachStatus   `json:"outreach_status"`

	JobID          string `json:"job_id,omitempty"`
	Company        string `json:"company"`
	Role           string `json:"role"`
	JobDescription string `json:"job_description,omitempty"`
	ResumeLinkID   string `json:"resume_postgres_id,omitempty"`

	ColdEmail     string      `json:"cold_email,omitempty"`
	ResumeContext string      `json:"resume_context,omitempty"`
	FallbackUsed  bool        `json:"fallback_used"`
	SourceField   ResumeField `json:"source_field,omitempty"`

	HasEpicGap bool        `json:"has_epic_gap"`
	SkillCheck *SkillMatch `json:"skill_check,omitempty"`

	Pipeline Pipeline `json:"pipeline"`
	Notes    []string `json:"notes,omitempty"`
}

// Draft is a generated outreach message.
// MaxAllowed is nil for the farmer pipeline.
type Draft struct {
	ID         string   `json:"draft_id,omitempty"`
	ContactID  string   `json:"contact_id,omitempty"`
	Message    string   `json:"message"`
	Pipeline   Pipeline `json:"pipeline"`
	CharCount  int      `json:"char_count"`
	MaxAllowed *int     `json:"max_allowed"`
	HasEpicGap bool     `json:"has_epic_gap,omitempty"`
	Truncated  bool     `json:"truncated,omitempty"`
	Revision   int      `json:"revision"`
}

// WithinLimit reports whether the message respects its length cap.
func (d *Draft) WithinLimit() bool {
	if d.MaxAllowed == nil {
		return true
	}
	return d.CharCount <= *d.MaxAllowed
}

// Handoff is what a human needs to send an approved message manually.
type Handoff struct {
	ContactID   string `json:"contact_id"`
	ContactName string `json:"contact_name"`
	ProfileURL  string `json:"linkedin_url"`
	Message     string `json:"message"`
	Instruction string `json:"instruction"`
}
