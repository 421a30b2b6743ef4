package resume

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckSkillMatch(t *testing.T) {
	tests := []struct {
		name            string
		jd              string
		skill           string
		resume          string
		wantRequirement bool
		wantSkill       bool
		wantGap         bool
	}{
		{
			name:            "required and missing",
			jd:              "Epic EHR experience required",
			skill:           "epic",
			resume:          "Built FHIR integrations in Go",
			wantRequirement: true,
			wantGap:         true,
		},
		{
			name:            "required and present",
			jd:              "Epic EHR experience required",
			skill:           "epic",
			resume:          "Epic certified analyst",
			wantRequirement: true,
			wantSkill:       true,
		},
		{
			name:      "not required",
			jd:        "Backend engineer, Go and Postgres",
			skill:     "epic",
			resume:    "Epic certified analyst",
			wantSkill: true,
		},
		{
			name:   "neither",
			jd:     "Frontend role",
			skill:  "epic",
			resume: "React",
		},
		{
			name:            "substring counts",
			jd:              "experience with EPICCARE",
			skill:           "Epic",
			resume:          "",
			wantRequirement: true,
			wantGap:         true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckSkillMatch(tt.jd, tt.skill, tt.resume)
			assert.Equal(t, tt.skill, got.Skill)
			assert.Equal(t, tt.wantRequirement, got.RequirementFound)
			assert.Equal(t, tt.wantSkill, got.SkillFound)
			assert.Equal(t, tt.wantGap, got.HasGap)
			if tt.wantGap {
				assert.Equal(t, GapRecommendation(tt.skill), got.Recommendation)
			} else {
				assert.Empty(t, got.Recommendation)
			}
		})
	}
}

func TestGapRecommendation(t *testing.T) {
	assert.Equal(t,
		"JD requires 'epic' but resume doesn't mention it. Address this gap in outreach.",
		GapRecommendation("epic"))
}
