package discovery

import (
	"strings"
)

// RoleTitles are the titles searched for each contact category.
type RoleTitles struct {
	Managers   []string `json:"managers"`
	Peers      []string `json:"peers"`
	Recruiters []string `json:"recruiters"`
}

type roleFamily struct {
	name     string
	keywords []string
	titles   RoleTitles
}

// Families are checked in order; the first whose keyword appears wins.
// Keywords of three letters or fewer must match a whole word.
var roleFamilies = []roleFamily{
	{
		name:     "engineering",
		keywords: []string{"engineer", "developer", "swe", "software", "backend", "frontend", "fullstack", "devops", "sre"},
		titles: RoleTitles{
			Managers:   []string{"Engineering Manager", "Director of Engineering", "VP Engineering", "Tech Lead", "Head of Engineering", "CTO", "Senior Engineering Manager"},
			Peers:      []string{"Senior Engineer", "Staff Engineer", "Principal Engineer", "Senior Developer", "Lead Engineer", "Senior Software Engineer"},
			Recruiters: []string{"Technical Recruiter", "Engineering Recruiter", "Talent Acquisition", "Tech Recruiter"},
		},
	},
	{
		name:     "product",
		keywords: []string{"product manager", "product owner", "pm", "product"},
		titles: RoleTitles{
			Managers:   []string{"Director of Product", "VP Product", "Group Product Manager", "Head of Product", "CPO", "Senior Director Product"},
			Peers:      []string{"Senior Product Manager", "Staff PM", "Principal PM", "Lead Product Manager", "Product Lead"},
			Recruiters: []string{"Product Recruiter", "Technical Recruiter", "Talent Acquisition"},
		},
	},
	{
		name:     "data",
		keywords: []string{"data", "analyst", "analytics", "ml", "machine learning", "ai", "bi", "business intelligence"},
		titles: RoleTitles{
			Managers:   []string{"Data Science Manager", "Director of Analytics", "Head of Data", "VP Data", "Chief Data Officer", "Analytics Manager", "Director of Data Engineering"},
			Peers:      []string{"Senior Data Scientist", "Staff Analyst", "Lead Data Engineer", "ML Engineer", "Principal Data Scientist", "Senior Data Analyst", "Senior BI Developer"},
			Recruiters: []string{"Data Recruiter", "Technical Recruiter", "Analytics Recruiter"},
		},
	},
	{
		name:     "design",
		keywords: []string{"design", "ux", "ui"},
		titles: RoleTitles{
			Managers:   []string{"Design Director", "Head of Design", "VP Design", "Design Manager", "Creative Director"},
			Peers:      []string{"Senior Designer", "Staff Designer", "Principal Designer", "Lead Designer", "Senior UX Designer"},
			Recruiters: []string{"Design Recruiter", "Creative Recruiter", "UX Recruiter"},
		},
	},
	{
		name:     "healthcare",
		keywords: []string{"healthcare", "health", "clinical", "medical", "epic", "ehr", "emr"},
		titles: RoleTitles{
			Managers:   []string{"Director of Health IT", "VP Clinical Informatics", "Health IT Manager", "Director of Analytics", "CMIO"},
			Peers:      []string{"Senior Health Data Analyst", "Clinical Data Analyst", "Health Informaticist", "Senior BI Developer"},
			Recruiters: []string{"Healthcare Recruiter", "Health IT Recruiter", "Technical Recruiter"},
		},
	},
}

var defaultTitles = RoleTitles{
	Managers:   []string{"Hiring Manager", "Director", "VP", "Head of", "Manager", "Team Lead"},
	Peers:      []string{"Senior", "Lead", "Staff", "Principal"},
	Recruiters: []string{"Recruiter", "Talent Acquisition", "HR", "People Operations"},
}

// TitlesForRole maps a job title to the titles worth contacting.
func TitlesForRole(jobTitle string) RoleTitles {
	title := strings.ToLower(jobTitle)
	words := strings.FieldsFunc(title, func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	})

	for _, fam := range roleFamilies {
		for _, kw := range fam.keywords {
			if matchesKeyword(title, words, kw) {
				return fam.titles
			}
		}
	}
	return defaultTitles
}

func matchesKeyword(title string, words []string, kw string) bool {
	if len(kw) > 3 {
		return strings.Contains(title, kw)
	}
	for _, w := range words {
		if w == kw {
			return true
		}
	}
	return false
}
