package network

import (
	"strings"

	"github.com/jonathan/outreach-agent/internal/types"
)

const statusInProgress = "in progress"

var companySuffixes = []string{" inc", " inc.", " llc", " corp", " corporation", " systems", " health", " healthcare"}

// Insider is a first-degree connection at a company with an open application.
type Insider struct {
	ContactName       string                 `json:"contact_name"`
	ContactEmail      string                 `json:"contact_email,omitempty"`
	ContactRole       string                 `json:"contact_role"`
	Company           string                 `json:"company"`
	CompanyNormalized string                 `json:"company_normalized"`
	ConnectedOn       string                 `json:"connected_on"`
	TargetRole        string                 `json:"target_role"`
	JobStatus         string                 `json:"job_status"`
	JobID             string                 `json:"job_id"`
	ConnectionDegree  types.ConnectionDegree `json:"connection_degree"`
	ContactSource     types.ContactSource    `json:"contact_source"`
	MatchConfidence   string                 `json:"match_confidence"`
}

// Contact converts the insider to a contact row for the job.
func (i Insider) Contact() types.Contact {
	return types.Contact{
		Name:             i.ContactName,
		Title:            i.ContactRole,
		Email:            i.ContactEmail,
		Type:             types.ContactTypeTeamMember,
		Source:           i.ContactSource,
		ConnectionDegree: i.ConnectionDegree,
		ConnectedOn:      i.ConnectedOn,
		JobID:            i.JobID,
		Company:          i.Company,
	}
}

// Overlap is the result of AnalyzeOverlap.
type Overlap struct {
	TotalConnections int       `json:"total_connections"`
	JobsAnalyzed     int       `json:"jobs_analyzed"`
	InsidersFound    int       `json:"insiders_found"`
	Insiders         []Insider `json:"insiders"`
}

// AnalyzeOverlap finds connections at the company of every in-progress job.
// With fuzzy set, a connection matches when its company contains the target
// or one of its variations; otherwise the names must be equal. Insiders are
// unique by (name, target company).
func AnalyzeOverlap(conns []Connection, jobs []types.JobApplication, fuzzy bool) *Overlap {
	out := &Overlap{TotalConnections: len(conns), Insiders: []Insider{}}
	seen := make(map[[2]string]bool)

	confidence := "high"
	if fuzzy {
		confidence = "fuzzy"
	}

	for _, job := range jobs {
		if !strings.EqualFold(strings.TrimSpace(job.Status), statusInProgress) {
			continue
		}
		out.JobsAnalyzed++

		target := normalizeCompany(job.Company)
		if target == "" {
			continue
		}
		variations := CompanyVariations(target)

		for _, c := range conns {
			company := normalizeCompany(c.Company)
			if !matches(company, target, variations, fuzzy) {
				continue
			}

			key := [2]string{strings.ToLower(c.Name()), target}
			if seen[key] {
				continue
			}
			seen[key] = true

			role := c.Position
			if role == "" {
				role = "Unknown"
			}
			out.Insiders = append(out.Insiders, Insider{
				ContactName:       c.Name(),
				ContactEmail:      c.Email,
				ContactRole:       role,
				Company:           c.Company,
				CompanyNormalized: target,
				ConnectedOn:       ParseDate(c.ConnectedOn),
				TargetRole:        job.Role,
				JobStatus:         job.Status,
				JobID:             job.ID,
				ConnectionDegree:  types.DegreeFirst,
				ContactSource:     types.ContactSourceCSVImport,
				MatchConfidence:   confidence,
			})
		}
	}
	out.InsidersFound = len(out.Insiders)
	return out
}

// FindByCompany returns connections whose company contains the target or one
// of its variations.
func FindByCompany(conns []Connection, company string) []Connection {
	target := normalizeCompany(company)
	if target == "" {
		return []Connection{}
	}
	variations := CompanyVariations(target)

	out := []Connection{}
	for _, c := range conns {
		if matches(normalizeCompany(c.Company), target, variations, true) {
			c.ConnectedOn = ParseDate(c.ConnectedOn)
			out = append(out, c)
		}
	}
	return out
}

// CompanyVariations lists alternate spellings of a lower-case company name:
// the name itself, the name with known suffixes removed, the name without
// spaces, and a first word longer than three letters.
//
//	"epic systems" -> "epic systems", "epic", "epicsystems"
func CompanyVariations(company string) []string {
	vars := []string{company}
	add := func(v string) {
		if v == "" {
			return
		}
		for _, existing := range vars {
			if existing == v {
				return
			}
		}
		vars = append(vars, v)
	}

	clean := company
	for _, suffix := range companySuffixes {
		if strings.HasSuffix(clean, suffix) {
			clean = strings.TrimSpace(strings.TrimSuffix(clean, suffix))
			add(clean)
		}
	}
	if noSpaces := strings.ReplaceAll(company, " ", ""); noSpaces != company {
		add(noSpaces)
	}
	if fields := strings.Fields(company); len(fields) > 1 && len(fields[0]) > 3 {
		add(fields[0])
	}
	return vars
}

func normalizeCompany(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func matches(company, target string, variations []string, fuzzy bool) bool {
	if company == "" {
		return false
	}
	if !fuzzy {
		return company == target
	}
	for _, v := range variations {
		if strings.Contains(company, v) {
			return true
		}
	}
	return false
}
