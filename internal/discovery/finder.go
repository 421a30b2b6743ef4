package discovery

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/outreach-agent/internal/fetch"
	"github.com/jonathan/outreach-agent/internal/types"
)

const (
	// DefaultLimit caps the contacts returned per job.
	DefaultLimit = 5
	// perCategory is how many people are requested per contact category.
	perCategory = 3
)

// PeopleSearcher runs a people search.
type PeopleSearcher interface {
	SearchPeople(ctx context.Context, req SearchRequest) ([]Person, error)
}

// Result is the outcome of FindContacts.
type Result struct {
	Company      string          `json:"company"`
	JobTitle     string          `json:"job_title"`
	Contacts     []types.Contact `json:"contacts"`
	TotalFound   int             `json:"total_found"`
	LocationUsed string          `json:"location_used,omitempty"`
	Titles       RoleTitles      `json:"titles"`
	Failed       []string        `json:"failed_categories,omitempty"`
}

// Finder searches the three contact categories for a role.
type Finder struct {
	search PeopleSearcher
	logger *slog.Logger
}

// NewFinder creates a Finder.
func NewFinder(search PeopleSearcher, logger *slog.Logger) *Finder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Finder{search: search, logger: logger}
}

type category struct {
	contactType types.ContactType
	priority    int
	titles      []string
}

// FindContacts searches hiring managers, recruiters and team members at
// company. A failed category is logged and skipped. Results are deduped by
// profile URL (or by name when there is none), ordered by priority and cut
// to limit.
func (f *Finder) FindContacts(ctx context.Context, company, jobTitle, location string, limit int) (*Result, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	titles := TitlesForRole(jobTitle)
	categories := []category{
		{types.ContactTypeHiringManager, 1, titles.Managers},
		{types.ContactTypeRecruiter, 2, titles.Recruiters},
		{types.ContactTypeTeamMember, 3, titles.Peers},
	}

	res := &Result{Company: company, JobTitle: jobTitle, Titles: titles}
	var locations []string
	if normalized := fetch.NormalizeLocation(location); fetch.ShouldIncludeLocation(normalized) {
		res.LocationUsed = normalized
		locations = []string{normalized}
	}

	found := make([][]Person, len(categories))
	failed := make([]bool, len(categories))
	g, gctx := errgroup.WithContext(ctx)
	for i, cat := range categories {
		g.Go(func() error {
			people, err := f.search.SearchPeople(gctx, SearchRequest{
				OrganizationNames: []string{company},
				PersonTitles:      cat.titles,
				PersonLocations:   locations,
				Page:              1,
				PerPage:           perCategory,
			})
			if err != nil {
				f.logger.WarnContext(gctx, "people search failed",
					slog.String("company", company),
					slog.String("contact_type", string(cat.contactType)),
					slog.Any("error", err))
				failed[i] = true
				return nil
			}
			found[i] = people
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []types.Contact
	for i, cat := range categories {
		if failed[i] {
			res.Failed = append(res.Failed, string(cat.contactType))
		}
		for _, p := range found[i] {
			all = append(all, types.Contact{
				Name:             p.Name,
				Title:            p.Title,
				ProfileURL:       p.LinkedInURL,
				Email:            p.Email,
				Type:             cat.contactType,
				Source:           types.ContactSourceApollo,
				ConnectionDegree: types.DegreeSecond,
				Priority:         cat.priority,
				Company:          company,
			})
		}
	}

	unique := dedupe(all)
	sort.SliceStable(unique, func(i, j int) bool { return unique[i].Priority < unique[j].Priority })
	res.TotalFound = len(unique)
	if len(unique) > limit {
		unique = unique[:limit]
	}
	res.Contacts = unique
	return res, nil
}

// dedupe keeps the first contact per profile URL; contacts without a URL are
// keyed by lower-case name, and nameless ones without a URL are dropped.
func dedupe(contacts []types.Contact) []types.Contact {
	seen := make(map[string]bool, len(contacts))
	out := make([]types.Contact, 0, len(contacts))
	for _, c := range contacts {
		key := c.ProfileURL
		if key == "" {
			key = strings.ToLower(strings.TrimSpace(c.Name))
		}
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
