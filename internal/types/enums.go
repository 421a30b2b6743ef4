// Package types provides type definitions for structured data used throughout the outreach agent.
//
//nolint:revive // types is a standard Go package name pattern
package types

// ContactType is the role a contact plays relative to the open position.
type ContactType string

const (
	ContactTypeHiringManager ContactType = "hiring_manager"
	ContactTypeRecruiter     ContactType = "recruiter"
	ContactTypeTeamMember    ContactType = "team_member"
)

// DisplayLabel returns the human-readable label used in prompts.
func (c ContactType) DisplayLabel() string {
	switch c {
	case ContactTypeHiringManager:
		return "Hiring Manager"
	case ContactTypeRecruiter:
		return "Recruiter"
	case ContactTypeTeamMember:
		return "Team Member / Peer"
	default:
		return "Professional"
	}
}

// ContactSource records how a contact was discovered.
type ContactSource string

const (
	// ContactSourceApollo is a people-search result (a stranger).
	ContactSourceApollo ContactSource = "apollo"
	// ContactSourceCSVImport is an existing connection from a network export.
	ContactSourceCSVImport ContactSource = "csv_import"
)

// ConnectionDegree is the networking-site distance to a contact.
type ConnectionDegree string

const (
	DegreeFirst  ConnectionDegree = "1st"
	DegreeSecond ConnectionDegree = "2nd"
	DegreeThird  ConnectionDegree = "3rd"
)

// Pipeline selects the message style for a contact.
type Pipeline string

const (
	// PipelineHunter is the length-constrained connection note for strangers.
	PipelineHunter Pipeline = "hunter"
	// PipelineFarmer is the unconstrained direct message for existing connections.
	PipelineFarmer Pipeline = "farmer"
)

// Valid reports whether p is a known pipeline.
func (p Pipeline) Valid() bool {
	return p == PipelineHunter || p == PipelineFarmer
}

// OutreachStatus is the lifecycle state of a contact's outreach.
type OutreachStatus string

const (
	StatusReady    OutreachStatus = "Ready"
	StatusDrafted  OutreachStatus = "Drafted"
	StatusApproved OutreachStatus = "Approved"
	StatusSkipped  OutreachStatus = "Skipped"
	StatusSent     OutreachStatus = "Sent"
)

// statusRank orders the monotonic part of the lifecycle. Skipped is terminal
// and sits outside the ordering.
var statusRank = map[OutreachStatus]int{
	StatusReady:    0,
	StatusDrafted:  1,
	StatusApproved: 2,
	StatusSent:     3,
}

// Valid reports whether s is a known status.
func (s OutreachStatus) Valid() bool {
	if s == StatusSkipped {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next respects the lifecycle
// Ready → Drafted → Approved → Sent, with Skipped reachable from Ready or
// Drafted. Drafted → Drafted is allowed so a draft can be refined in place.
func (s OutreachStatus) CanTransitionTo(next OutreachStatus) bool {
	if s == StatusSkipped || !next.Valid() {
		return false
	}
	if next == StatusSkipped {
		return s == StatusReady || s == StatusDrafted
	}
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to := statusRank[next]
	if s == StatusDrafted && next == StatusDrafted {
		return true
	}
	return to == from+1
}
