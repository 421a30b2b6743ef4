package resume

import (
	"fmt"
	"strings"

	"github.com/jonathan/outreach-agent/internal/types"
)

// DefaultSkill is the skill keyword checked when none is configured.
const DefaultSkill = "epic"

// CheckSkillMatch reports whether the job description asks for skill and the
// resume mentions it. Matching is case-insensitive substring containment.
func CheckSkillMatch(jobDescription, skill, resumeText string) types.SkillMatch {
	needle := strings.ToLower(skill)
	requirementFound := strings.Contains(strings.ToLower(jobDescription), needle)
	skillFound := strings.Contains(strings.ToLower(resumeText), needle)

	match := types.SkillMatch{
		Skill:            skill,
		RequirementFound: requirementFound,
		SkillFound:       skillFound,
		HasGap:           requirementFound && !skillFound,
	}
	if match.HasGap {
		match.Recommendation = GapRecommendation(skill)
	}
	return match
}

// GapRecommendation is the fixed advice attached to a detected gap.
func GapRecommendation(skill string) string {
	return fmt.Sprintf("JD requires '%s' but resume doesn't mention it. Address this gap in outreach.", skill)
}
