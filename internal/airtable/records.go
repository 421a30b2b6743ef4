package airtable

import (
	"strconv"
	"strings"

	at "github.com/mehanizm/airtable"

	"github.com/jonathan/outreach-agent/internal/types"
)

// Field names in the Applications table.
const (
	fieldCompany        = "Company"
	fieldJobPosition    = "Job Position"
	fieldJobLink        = "Job Link"
	fieldStatus         = "Status"
	fieldFullDesc       = "Full Description"
	fieldSkillAudit     = "Skill Audit"
	fieldDriveLink      = "Drive_link"
	fieldContactsFound  = "Contacts_Found"
	fieldContactsJSON   = "Contacts_Json"
	fieldResumeLinkID   = "Resume_Postgres_ID"
	fieldJobLocation    = "Location"
	statusInProgress    = "In progress"
	defaultContactOrder = 99
)

// Field names in the Contacts table.
const (
	fieldName             = "Name"
	fieldTitle            = "Title"
	fieldProfileURL       = "LinkedIn_URL"
	fieldEmail            = "Email"
	fieldContactType      = "Contact_Type"
	fieldContactSource    = "Contact_Source"
	fieldConnectionDegree = "Connection_Degree"
	fieldPriority         = "Priority"
	fieldOutreachStatus   = "Outreach_Status"
	fieldJobApplication   = "Job_Application"
	fieldConnectedOn      = "Connected_On"
	fieldMessageDraft     = "Message_Draft"
	fieldMessageFinal     = "Message_Final"
)

func jobFromRecord(rec *at.Record) types.JobApplication {
	f := rec.Fields
	return types.JobApplication{
		ID:            rec.ID,
		Company:       str(f, fieldCompany),
		Role:          str(f, fieldJobPosition),
		JobLink:       str(f, fieldJobLink),
		Status:        str(f, fieldStatus),
		Description:   str(f, fieldFullDesc),
		SkillAudit:    str(f, fieldSkillAudit),
		DriveLink:     str(f, fieldDriveLink),
		ContactsFound: boolean(f, fieldContactsFound),
		ContactsJSON:  str(f, fieldContactsJSON),
		ResumeLinkID:  scalarString(f[fieldResumeLinkID]),
		Location:      str(f, fieldJobLocation),
	}
}

// contactFromRecord maps a contact row, applying the defaults for rows
// written before source, degree and status were tracked. Contact type stays empty
// when absent; callers decide its default.
func contactFromRecord(rec *at.Record) types.Contact {
	f := rec.Fields
	c := types.Contact{
		ID:               rec.ID,
		Name:             str(f, fieldName),
		Title:            str(f, fieldTitle),
		ProfileURL:       str(f, fieldProfileURL),
		Email:            str(f, fieldEmail),
		Type:             types.ContactType(str(f, fieldContactType)),
		Source:           types.ContactSource(str(f, fieldContactSource)),
		ConnectionDegree: types.ConnectionDegree(str(f, fieldConnectionDegree)),
		Priority:         integer(f, fieldPriority, defaultContactOrder),
		Status:           types.OutreachStatus(str(f, fieldOutreachStatus)),
		ConnectedOn:      str(f, fieldConnectedOn),
		MessageDraft:     str(f, fieldMessageDraft),
	}
	if links := linkedIDs(f, fieldJobApplication); len(links) > 0 {
		c.JobID = links[0]
	}
	if c.Source == "" {
		c.Source = types.ContactSourceApollo
	}
	if c.ConnectionDegree == "" {
		c.ConnectionDegree = types.DegreeSecond
	}
	if c.Status == "" {
		c.Status = types.StatusReady
	}
	return c
}

// contactFields renders a new contact row linked to jobID with status Ready.
func contactFields(c types.Contact, jobID string) map[string]any {
	contactType := c.Type
	if contactType == "" {
		contactType = types.ContactTypeTeamMember
	}
	source := c.Source
	if source == "" {
		source = types.ContactSourceApollo
	}
	degree := c.ConnectionDegree
	if degree == "" {
		degree = types.DegreeSecond
	}
	priority := c.Priority
	if priority == 0 {
		priority = defaultContactOrder
	}

	fields := map[string]any{
		fieldName:             c.Name,
		fieldTitle:            c.Title,
		fieldProfileURL:       c.ProfileURL,
		fieldContactType:      string(contactType),
		fieldContactSource:    string(source),
		fieldConnectionDegree: string(degree),
		fieldPriority:         priority,
		fieldOutreachStatus:   string(types.StatusReady),
		fieldJobApplication:   []string{jobID},
	}
	if c.Email != "" {
		fields[fieldEmail] = c.Email
	}
	if c.ConnectedOn != "" {
		fields[fieldConnectedOn] = c.ConnectedOn
	}
	return fields
}

func str(f map[string]any, key string) string {
	switch v := f[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return scalarString(v)
	}
}

func boolean(f map[string]any, key string) bool {
	switch v := f[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	default:
		return false
	}
}

func integer(f map[string]any, key string, def int) int {
	switch v := f[key].(type) {
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func linkedIDs(f map[string]any, key string) []string {
	raw, ok := f[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// scalarString renders a number or string cell as a string. Whole numbers
// have no decimal point, so 538 and "538" both become "538".
func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
