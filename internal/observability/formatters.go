// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/outreach-agent/internal/brain"
	"github.com/jonathan/outreach-agent/internal/discovery"
	"github.com/jonathan/outreach-agent/internal/network"
	"github.com/jonathan/outreach-agent/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens s to n runes, marking the cut with "...".
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

// PrintOutreachContext outputs the resolved contact, job and routing decision.
func (p *Printer) PrintOutreachContext(oc *types.OutreachContext) {
	if oc == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Contact:  %s", oc.ContactName))
	if oc.ContactTitle != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", oc.ContactTitle))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Company:  %s\n", oc.Company))
	sb.WriteString(fmt.Sprintf("Role:     %s\n", oc.Role))
	sb.WriteString(fmt.Sprintf("Degree:   %s  Source: %s\n", orDash(string(oc.ConnectionDegree)), orDash(string(oc.ContactSource))))
	sb.WriteString(fmt.Sprintf("Pipeline: %s\n", oc.Pipeline))
	sb.WriteString("\n")

	switch {
	case oc.SourceField == "":
		sb.WriteString("Value prop: none available\n")
	case oc.FallbackUsed:
		sb.WriteString(fmt.Sprintf("Value prop: %s (fallback)\n", oc.SourceField))
	default:
		sb.WriteString(fmt.Sprintf("Value prop: %s\n", oc.SourceField))
	}

	if oc.SkillCheck != nil {
		mark := "✓"
		if oc.SkillCheck.HasGap {
			mark = "⚠ gap"
		}
		sb.WriteString(fmt.Sprintf("Skill %s: %s\n", oc.SkillCheck.Skill, mark))
	}

	for _, note := range oc.Notes {
		sb.WriteString(fmt.Sprintf("  • %s\n", note))
	}

	p.printBox("OUTREACH CONTEXT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDraft outputs a generated message with its length check.
func (p *Printer) PrintDraft(draft *types.Draft) {
	if draft == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Pipeline: %s  Revision: %d\n", draft.Pipeline, draft.Revision))
	if draft.MaxAllowed != nil {
		status := "✓"
		if !draft.WithinLimit() {
			status = "⚠ over limit"
		}
		sb.WriteString(fmt.Sprintf("Length:   %d/%d %s\n", draft.CharCount, *draft.MaxAllowed, status))
	} else {
		sb.WriteString(fmt.Sprintf("Length:   %d\n", draft.CharCount))
	}
	if draft.Truncated {
		sb.WriteString("Truncated to fit\n")
	}
	sb.WriteString("\n")
	sb.WriteString(wrap(draft.Message, boxWidth-4))

	p.printBox("MESSAGE DRAFT", sb.String())
}

// PrintDiscovery outputs the contacts found for a job.
func (p *Printer) PrintDiscovery(d *discovery.JobDiscovery) {
	if d == nil || d.Search == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Company:  %s\n", d.Company))
	sb.WriteString(fmt.Sprintf("Role:     %s\n", d.Role))
	if d.Search.LocationUsed != "" {
		sb.WriteString(fmt.Sprintf("Location: %s\n", d.Search.LocationUsed))
	}
	sb.WriteString(fmt.Sprintf("\nFound %d contacts:\n", d.Search.TotalFound))

	contacts := d.Search.Contacts
	count := min(len(contacts), maxItemsToShow)
	for i := 0; i < count; i++ {
		c := contacts[i]
		sb.WriteString(fmt.Sprintf("  • %s, %s [%s]\n", c.Name, c.Title, c.Type))
	}
	if len(contacts) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(contacts)-maxItemsToShow))
	}
	for _, category := range d.Search.Failed {
		sb.WriteString(fmt.Sprintf("⚠ %s search failed\n", category))
	}

	p.printBox("CONTACT DISCOVERY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintOverlap outputs insiders at active jobs found in a network export.
func (p *Printer) PrintOverlap(o *network.Overlap) {
	if o == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Connections: %d  Jobs: %d\n", o.TotalConnections, o.JobsAnalyzed))
	sb.WriteString(fmt.Sprintf("Insiders found: %d\n", o.InsidersFound))

	if len(o.Insiders) > 0 {
		sb.WriteString("\n")
		count := min(len(o.Insiders), maxItemsToShow)
		for i := 0; i < count; i++ {
			in := o.Insiders[i]
			sb.WriteString(fmt.Sprintf("  • %s @ %s\n", in.ContactName, in.Company))
			sb.WriteString(fmt.Sprintf("    for %s (%s)\n", in.TargetRole, in.MatchConfidence))
		}
		if len(o.Insiders) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(o.Insiders)-maxItemsToShow))
		}
	}

	p.printBox("NETWORK OVERLAP", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintNetworkStats outputs summary statistics for a network export.
func (p *Printer) PrintNetworkStats(s *network.NetworkStats) {
	if s == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total:      %d (%d with email)\n", s.TotalConnections, s.ConnectionsWithEmail))
	sb.WriteString(fmt.Sprintf("Date range: %s to %s\n", s.OldestConnection, s.NewestConnection))

	if len(s.TopCompanies) > 0 {
		sb.WriteString("\nTop companies:\n")
		count := min(len(s.TopCompanies), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  %3d  %s\n", s.TopCompanies[i].Count, s.TopCompanies[i].Company))
		}
	}

	p.printBox("NETWORK STATS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintClassification outputs how a thought was filed.
func (p *Printer) PrintClassification(c *brain.Classification) {
	if c == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title:    %s\n", c.Title))
	sb.WriteString(fmt.Sprintf("Category: %s  Priority: %s\n", c.Category, c.Priority))
	if len(c.Tags) > 0 {
		sb.WriteString(fmt.Sprintf("Tags:     %s\n", strings.Join(c.Tags, ", ")))
	}
	if c.Fallback {
		sb.WriteString("⚠ model output unusable, filed to Inbox\n")
	}

	p.printBox("THOUGHT CLASSIFICATION", strings.TrimSuffix(sb.String(), "\n"))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// wrap breaks text on spaces into lines of at most width runes.
func wrap(text string, width int) string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		line := ""
		for _, word := range strings.Fields(para) {
			switch {
			case line == "":
				line = word
			case utf8.RuneCountInString(line)+1+utf8.RuneCountInString(word) <= width:
				line += " " + word
			default:
				lines = append(lines, line)
				line = word
			}
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
