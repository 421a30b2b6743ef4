package network

import (
	"sort"
)

const topCompanies = 10

// CompanyCount is a company and how many connections work there.
type CompanyCount struct {
	Company string `json:"company"`
	Count   int    `json:"count"`
}

// NetworkStats summarizes an export.
type NetworkStats struct {
	TotalConnections     int            `json:"total_connections"`
	TopCompanies         []CompanyCount `json:"top_companies"`
	ConnectionsWithEmail int            `json:"connections_with_email"`
	OldestConnection     string         `json:"oldest_connection"`
	NewestConnection     string         `json:"newest_connection"`
}

// Stats counts connections, the ten most common companies and the date range.
func Stats(conns []Connection) *NetworkStats {
	s := &NetworkStats{
		TotalConnections: len(conns),
		OldestConnection: UnknownDate,
		NewestConnection: UnknownDate,
		TopCompanies:     []CompanyCount{},
	}

	counts := make(map[string]int)
	for _, c := range conns {
		if c.Company != "" {
			counts[c.Company]++
		}
		if c.Email != "" {
			s.ConnectionsWithEmail++
		}

		d := ParseDate(c.ConnectedOn)
		if !isISODate(d) {
			continue
		}
		if s.OldestConnection == UnknownDate || d < s.OldestConnection {
			s.OldestConnection = d
		}
		if s.NewestConnection == UnknownDate || d > s.NewestConnection {
			s.NewestConnection = d
		}
	}

	for company, n := range counts {
		s.TopCompanies = append(s.TopCompanies, CompanyCount{Company: company, Count: n})
	}
	sort.Slice(s.TopCompanies, func(i, j int) bool {
		a, b := s.TopCompanies[i], s.TopCompanies[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Company < b.Company
	})
	if len(s.TopCompanies) > topCompanies {
		s.TopCompanies = s.TopCompanies[:topCompanies]
	}
	return s
}

func isISODate(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, r := range s {
		if i == 4 || i == 7 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
