package resume

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/outreach-agent/internal/types"
)

// fakeSource is an in-memory Source.
type fakeSource struct {
	generated map[int]*types.GeneratedResumeRecord
	base      *types.BaseResume
	err       error
	calls     int
}

func (f *fakeSource) LatestGenerated(_ context.Context, applicationID int) (*types.GeneratedResumeRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	rec, ok := f.generated[applicationID]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (f *fakeSource) ActiveResume(_ context.Context, _ string) (*types.BaseResume, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.base == nil {
		return nil, ErrNotFound
	}
	return f.base, nil
}

func TestSelectColdEmail(t *testing.T) {
	full := &types.GeneratedResumeRecord{
		ApplicationID:      538,
		ColdEmailManager:   "manager email",
		ColdEmailRecruiter: "recruiter email",
		FinalContent:       "final resume",
		TailoredContent:    "tailored resume",
	}

	tests := []struct {
		name         string
		rec          *types.GeneratedResumeRecord
		contactType  types.ContactType
		wantEmail    string
		wantContext  string
		wantFallback bool
		wantField    types.ResumeField
	}{
		{
			name: "hiring manager gets manager email", rec: full, contactType: types.ContactTypeHiringManager,
			wantEmail: "manager email", wantContext: "final resume", wantField: types.FieldColdEmailManager,
		},
		{
			name: "recruiter gets recruiter email", rec: full, contactType: types.ContactTypeRecruiter,
			wantEmail: "recruiter email", wantContext: "final resume", wantField: types.FieldColdEmailRecruiter,
		},
		{
			name: "team member never gets a cold email", rec: full, contactType: types.ContactTypeTeamMember,
			wantContext: "final resume", wantFallback: true, wantField: types.FieldFinalContent,
		},
		{
			name: "unknown type falls back", rec: full, contactType: types.ContactType("founder"),
			wantContext: "final resume", wantFallback: true, wantField: types.FieldFinalContent,
		},
		{
			name:        "empty manager email falls back to final",
			rec:         &types.GeneratedResumeRecord{FinalContent: "final", TailoredContent: "tailored"},
			contactType: types.ContactTypeHiringManager,
			wantContext: "final", wantFallback: true, wantField: types.FieldFinalContent,
		},
		{
			name:        "tailored only when final is empty",
			rec:         &types.GeneratedResumeRecord{TailoredContent: "tailored"},
			contactType: types.ContactTypeRecruiter,
			wantContext: "tailored", wantFallback: true, wantField: types.FieldTailoredContent,
		},
		{
			name:         "nothing available",
			rec:          &types.GeneratedResumeRecord{},
			contactType:  types.ContactTypeTeamMember,
			wantFallback: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectColdEmail(tt.rec, tt.contactType)
			assert.Equal(t, tt.wantEmail, got.ColdEmail)
			assert.Equal(t, tt.wantContext, got.ResumeContext)
			assert.Equal(t, tt.wantFallback, got.FallbackUsed)
			assert.Equal(t, tt.wantField, got.SourceField)
		})
	}
}

func TestSelectColdEmail_NeverTailoredWhileFinalPresent(t *testing.T) {
	contactTypes := []types.ContactType{types.ContactTypeHiringManager, types.ContactTypeRecruiter, types.ContactTypeTeamMember, ""}
	emails := []string{"", "some email"}

	for _, ct := range contactTypes {
		for _, email := range emails {
			rec := &types.GeneratedResumeRecord{
				ColdEmailManager:   email,
				ColdEmailRecruiter: email,
				FinalContent:       "final",
				TailoredContent:    "tailored",
			}
			got := SelectColdEmail(rec, ct)
			assert.NotEqual(t, types.FieldTailoredContent, got.SourceField, "contact type %q email %q", ct, email)
			if ct == types.ContactTypeTeamMember {
				assert.Empty(t, got.ColdEmail)
				assert.True(t, got.FallbackUsed)
			}
		}
	}
}

func TestResolver_GetColdEmail(t *testing.T) {
	src := &fakeSource{generated: map[int]*types.GeneratedResumeRecord{
		538: {ApplicationID: 538, ColdEmailManager: "Hi, I build clinical data pipelines.", FinalContent: "final"},
	}}
	r := NewResolver(src, nil)

	res, err := r.GetColdEmail(context.Background(), 538, types.ContactTypeHiringManager)
	require.NoError(t, err)
	assert.Equal(t, "Hi, I build clinical data pipelines.", res.ColdEmail)
	assert.False(t, res.FallbackUsed)
	assert.Equal(t, types.FieldColdEmailManager, res.SourceField)
	assert.Equal(t, 538, res.ApplicationID)

	_, err = r.GetColdEmail(context.Background(), 999, types.ContactTypeHiringManager)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolver_CheckSkill(t *testing.T) {
	jd := "Must have Epic EHR experience"
	appID := 538

	t.Run("uses tailored resume when application id given", func(t *testing.T) {
		src := &fakeSource{
			generated: map[int]*types.GeneratedResumeRecord{538: {TailoredContent: "Epic certified"}},
			base:      &types.BaseResume{FullText: "no match"},
		}
		got, err := NewResolver(src, nil).CheckSkill(context.Background(), jd, "epic", &appID, "")
		require.NoError(t, err)
		assert.False(t, got.HasGap)
	})

	t.Run("uses generic resume otherwise", func(t *testing.T) {
		src := &fakeSource{base: &types.BaseResume{FullText: "Python, Go"}}
		got, err := NewResolver(src, nil).CheckSkill(context.Background(), jd, "epic", nil, "Engineer")
		require.NoError(t, err)
		assert.True(t, got.HasGap)
		assert.Equal(t, 0, src.calls)
	})

	t.Run("missing resume checks empty text", func(t *testing.T) {
		got, err := NewResolver(&fakeSource{}, nil).CheckSkill(context.Background(), jd, "epic", &appID, "")
		require.NoError(t, err)
		assert.True(t, got.HasGap)
	})

	t.Run("store failure is returned", func(t *testing.T) {
		src := &fakeSource{err: errors.New("db down")}
		_, err := NewResolver(src, nil).CheckSkill(context.Background(), jd, "epic", nil, "")
		assert.EqualError(t, err, "db down")
	})
}
