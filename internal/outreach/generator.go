// Package outreach resolves outreach context for a contact and drafts,
// routes, and refines networking messages.
package outreach

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jonathan/outreach-agent/internal/llm"
	"github.com/jonathan/outreach-agent/internal/prompts"
	"github.com/jonathan/outreach-agent/internal/resume"
	"github.com/jonathan/outreach-agent/internal/types"
)

const (
	// DefaultHunterMaxLength leaves a small buffer under the platform's 300-character note limit.
	DefaultHunterMaxLength = 295
	// PlatformMaxLength is the hard limit for connection notes.
	PlatformMaxLength = 300
	// MinMaxLength is the smallest note limit that still fits one character
	// and an ellipsis. Smaller limits are raised to it.
	MinMaxLength = 4

	coldEmailExcerpt     = 800
	resumeContextExcerpt = 500
	highlightsExcerpt    = 500

	unknownConnectedOn = "Unknown"
	unknownTitle       = "Unknown role"
)

// Generation settings per call type.
var (
	hunterParams = generationParams{temperature: 0.6, maxTokens: 150}
	farmerParams = generationParams{temperature: 0.7, maxTokens: 400}
	refineParams = generationParams{temperature: 0.7, maxTokens: 200}
)

type generationParams struct {
	temperature float32
	maxTokens   int32
}

// GeneratorOptions configures a Generator.
type GeneratorOptions struct {
	// HunterMaxLength is the default note limit. Zero means DefaultHunterMaxLength.
	HunterMaxLength int
	// TargetSkill is the skill keyword checked for gaps. Empty means resume.DefaultSkill.
	TargetSkill string
	Logger      *slog.Logger
}

// Generator drafts and refines messages with a text-generation client.
type Generator struct {
	client    llm.Client
	maxLength int
	skill     string
	logger    *slog.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(client llm.Client, opts GeneratorOptions) *Generator {
	g := &Generator{
		client:    client,
		maxLength: opts.HunterMaxLength,
		skill:     opts.TargetSkill,
		logger:    opts.Logger,
	}
	if g.maxLength <= 0 {
		g.maxLength = DefaultHunterMaxLength
	}
	g.maxLength = max(g.maxLength, MinMaxLength)
	if g.skill == "" {
		g.skill = resume.DefaultSkill
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// HunterMaxLength returns the configured default note limit.
func (g *Generator) HunterMaxLength() int {
	return g.maxLength
}

// ValueInput holds the candidate texts for the Value phase, in priority order.
type ValueInput struct {
	ColdEmail        string `json:"cold_email_template,omitempty"`
	ResumeContext    string `json:"resume_context,omitempty"`
	ResumeHighlights string `json:"resume_highlights,omitempty"`
}

// HunterInput is the input for a connection note to a stranger.
type HunterInput struct {
	ContactName    string            `json:"contact_name"`
	ContactTitle   string            `json:"contact_title"`
	ContactType    types.ContactType `json:"contact_type"`
	Company        string            `json:"company"`
	Role           string            `json:"job_title"`
	JobDescription string            `json:"job_description,omitempty"`
	Value          ValueInput        `json:"value"`
	// MaxLength overrides the configured limit when positive.
	MaxLength int `json:"max_length,omitempty"`
	// SkillCheck, when set, is used instead of checking the value texts.
	SkillCheck *types.SkillMatch `json:"-"`
}

// FarmerInput is the input for a direct message to an existing connection.
type FarmerInput struct {
	ContactName  string            `json:"contact_name"`
	ContactTitle string            `json:"contact_title,omitempty"`
	ContactType  types.ContactType `json:"contact_type"`
	Company      string            `json:"company"`
	Role         string            `json:"target_role"`
	ConnectedOn  string            `json:"connected_date,omitempty"`
	Value        ValueInput        `json:"value"`
}

// MessageInput is the input for GenerateMessage, which picks the pipeline.
type MessageInput struct {
	ContactName      string                 `json:"contact_name"`
	ContactTitle     string                 `json:"contact_title,omitempty"`
	ContactType      types.ContactType      `json:"contact_type,omitempty"`
	ConnectionDegree types.ConnectionDegree `json:"connection_degree,omitempty"`
	ContactSource    types.ContactSource    `json:"contact_source,omitempty"`
	Company          string                 `json:"company"`
	Role             string                 `json:"job_title"`
	JobDescription   string                 `json:"job_description,omitempty"`
	ConnectedOn      string                 `json:"connected_date,omitempty"`
	Value            ValueInput             `json:"value"`
	SkillCheck       *types.SkillMatch      `json:"-"`
}

// MessageInputFromContext maps a resolved context onto generation input.
func MessageInputFromContext(oc *types.OutreachContext) MessageInput {
	return MessageInput{
		ContactName:      oc.ContactName,
		ContactTitle:     oc.ContactTitle,
		ContactType:      oc.ContactType,
		ConnectionDegree: oc.ConnectionDegree,
		ContactSource:    oc.ContactSource,
		Company:          oc.Company,
		Role:             oc.Role,
		JobDescription:   oc.JobDescription,
		ConnectedOn:      oc.ConnectedOn,
		Value: ValueInput{
			ColdEmail:     oc.ColdEmail,
			ResumeContext: oc.ResumeContext,
		},
		SkillCheck: oc.SkillCheck,
	}
}

// RefineRequest asks for an edit of an existing draft.
type RefineRequest struct {
	Message     string         `json:"current_message" validate:"required"`
	Instruction string         `json:"edit_instruction" validate:"required"`
	MaxLength   *int           `json:"max_length,omitempty"`
	Pipeline    types.Pipeline `json:"pipeline,omitempty"`
}

// GenerateMessage routes the contact to a pipeline and drafts the message.
func (g *Generator) GenerateMessage(ctx context.Context, in MessageInput) (*types.Draft, error) {
	degree := in.ConnectionDegree
	if degree == "" {
		degree = types.DegreeSecond
	}
	source := in.ContactSource
	if source == "" {
		source = types.ContactSourceApollo
	}
	contactType := in.ContactType
	if contactType == "" {
		contactType = types.ContactTypeTeamMember
	}

	if Route(degree, source) == types.PipelineFarmer {
		return g.GenerateWarmDM(ctx, FarmerInput{
			ContactName:  in.ContactName,
			ContactTitle: in.ContactTitle,
			ContactType:  contactType,
			Company:      in.Company,
			Role:         in.Role,
			ConnectedOn:  in.ConnectedOn,
			Value:        in.Value,
		})
	}
	return g.GenerateColdConnectNote(ctx, HunterInput{
		ContactName:    in.ContactName,
		ContactTitle:   in.ContactTitle,
		ContactType:    contactType,
		Company:        in.Company,
		Role:           in.Role,
		JobDescription: in.JobDescription,
		Value:          in.Value,
		SkillCheck:     in.SkillCheck,
	})
}

// GenerateColdConnectNote drafts a length-capped connection note.
func (g *Generator) GenerateColdConnectNote(ctx context.Context, in HunterInput) (*types.Draft, error) {
	maxLength := in.MaxLength
	if maxLength <= 0 {
		maxLength = g.maxLength
	}
	maxLength = max(maxLength, MinMaxLength)

	match := in.SkillCheck
	if match == nil {
		checkText := in.Value.ResumeContext
		if checkText == "" {
			checkText = in.Value.ResumeHighlights
		}
		m := resume.CheckSkillMatch(in.JobDescription, g.skill, checkText)
		match = &m
	}

	valueSection, err := buildValueSection(in.Value)
	if err != nil {
		return nil, err
	}

	system, err := prompts.Render(prompts.OutreachFile, "hunter-system", map[string]string{
		"MaxLength":    strconv.Itoa(maxLength),
		"ContactTitle": in.ContactTitle,
	})
	if err != nil {
		return nil, err
	}
	switch {
	case match.HasGap:
		system += prompts.Format(prompts.MustGet(prompts.OutreachFile, "hunter-skill-gap"), map[string]string{"Skill": displaySkill(match.Skill)})
	case match.RequirementFound && match.SkillFound:
		system += prompts.Format(prompts.MustGet(prompts.OutreachFile, "hunter-skill-match"), map[string]string{"Skill": displaySkill(match.Skill)})
	}

	user, err := prompts.Render(prompts.OutreachFile, "hunter-user", map[string]string{
		"FirstName":        types.FirstName(in.ContactName),
		"ContactTitle":     in.ContactTitle,
		"ContactTypeLabel": in.ContactType.DisplayLabel(),
		"Company":          in.Company,
		"Role":             in.Role,
		"ValueSection":     valueSection,
		"MaxLength":        strconv.Itoa(maxLength),
	})
	if err != nil {
		return nil, err
	}

	message, err := g.generate(ctx, types.PipelineHunter, system, user, hunterParams)
	if err != nil {
		return nil, err
	}

	message, truncated := TruncateAtSentence(message, maxLength)
	if truncated {
		g.logger.InfoContext(ctx, "truncated connection note", slog.Int("max_length", maxLength))
	}

	return &types.Draft{
		Message:    message,
		Pipeline:   types.PipelineHunter,
		CharCount:  CharCount(message),
		MaxAllowed: &maxLength,
		HasEpicGap: match.HasGap,
		Truncated:  truncated,
	}, nil
}

// GenerateWarmDM drafts an uncapped direct message.
func (g *Generator) GenerateWarmDM(ctx context.Context, in FarmerInput) (*types.Draft, error) {
	firstName := types.FirstName(in.ContactName)
	connectedOn := in.ConnectedOn
	if connectedOn == "" {
		connectedOn = unknownConnectedOn
	}
	titleSuffix := ""
	contactTitle := unknownTitle
	if in.ContactTitle != "" {
		titleSuffix = fmt.Sprintf(" (%s)", in.ContactTitle)
		contactTitle = in.ContactTitle
	}

	valueSection, err := buildValueSection(in.Value)
	if err != nil {
		return nil, err
	}

	system, err := prompts.Render(prompts.OutreachFile, "farmer-system", map[string]string{
		"FirstName":   firstName,
		"Company":     in.Company,
		"TitleSuffix": titleSuffix,
		"ConnectedOn": connectedOn,
		"Role":        in.Role,
	})
	if err != nil {
		return nil, err
	}
	user, err := prompts.Render(prompts.OutreachFile, "farmer-user", map[string]string{
		"FirstName":        firstName,
		"ContactTitle":     contactTitle,
		"ContactTypeLabel": in.ContactType.DisplayLabel(),
		"Company":          in.Company,
		"Role":             in.Role,
		"ConnectedOn":      connectedOn,
		"ValueSection":     valueSection,
	})
	if err != nil {
		return nil, err
	}

	message, err := g.generate(ctx, types.PipelineFarmer, system, user, farmerParams)
	if err != nil {
		return nil, err
	}

	return &types.Draft{
		Message:   message,
		Pipeline:  types.PipelineFarmer,
		CharCount: CharCount(message),
	}, nil
}

// Refine applies an edit instruction to a draft. Hunter drafts default to the
// configured limit; farmer drafts are unbounded unless a limit is given.
// Over-long results are hard-truncated.
func (g *Generator) Refine(ctx context.Context, req RefineRequest) (*types.Draft, error) {
	pipeline := req.Pipeline
	if pipeline == "" {
		pipeline = types.PipelineHunter
	}
	if !pipeline.Valid() {
		return nil, &InvalidPipelineError{Pipeline: string(pipeline)}
	}

	var maxLength *int
	switch {
	case req.MaxLength != nil && *req.MaxLength > 0:
		limit := max(*req.MaxLength, MinMaxLength)
		maxLength = &limit
	case pipeline == types.PipelineHunter:
		limit := g.maxLength
		maxLength = &limit
	}

	constraint := "No character limit."
	if maxLength != nil {
		constraint = fmt.Sprintf("MAXIMUM %d characters.", *maxLength)
	}

	system, err := prompts.Render(prompts.OutreachFile, "refine-system", map[string]string{"Constraint": constraint})
	if err != nil {
		return nil, err
	}
	user, err := prompts.Render(prompts.OutreachFile, "refine-user", map[string]string{
		"Message":     req.Message,
		"Instruction": req.Instruction,
	})
	if err != nil {
		return nil, err
	}

	message, err := g.generate(ctx, pipeline, system, user, refineParams)
	if err != nil {
		return nil, err
	}

	truncated := false
	if maxLength != nil {
		message, truncated = HardTruncate(message, *maxLength)
	}

	return &types.Draft{
		Message:    message,
		Pipeline:   pipeline,
		CharCount:  CharCount(message),
		MaxAllowed: maxLength,
		Truncated:  truncated,
	}, nil
}

// generate runs one model call. Any failure, including an empty reply, is a *GenerationError.
func (g *Generator) generate(ctx context.Context, pipeline types.Pipeline, system, user string, params generationParams) (string, error) {
	text, err := g.client.Generate(ctx, llm.Request{
		System:          system,
		User:            user,
		Tier:            llm.TierDraft,
		Temperature:     llm.Temp(params.temperature),
		MaxOutputTokens: params.maxTokens,
	})
	if err != nil {
		g.logger.ErrorContext(ctx, "message generation failed",
			slog.String("pipeline", string(pipeline)),
			slog.Any("error", err))
		return "", &GenerationError{Pipeline: pipeline, Cause: err}
	}

	message := llm.StripQuotes(text)
	if message == "" {
		return "", &GenerationError{Pipeline: pipeline, Cause: errEmptyMessage}
	}
	return message, nil
}

// buildValueSection picks the Value phase source: cold email, then resume
// context, then highlights, then the fixed no-background sentence.
func buildValueSection(v ValueInput) (string, error) {
	switch {
	case v.ColdEmail != "":
		return prompts.Render(prompts.OutreachFile, "value-cold-email", map[string]string{"Text": excerpt(v.ColdEmail, coldEmailExcerpt)})
	case v.ResumeContext != "":
		return prompts.Render(prompts.OutreachFile, "value-resume-context", map[string]string{"Text": excerpt(v.ResumeContext, resumeContextExcerpt)})
	case v.ResumeHighlights != "":
		return prompts.Render(prompts.OutreachFile, "value-highlights", map[string]string{"Text": excerpt(v.ResumeHighlights, highlightsExcerpt)})
	default:
		return prompts.Render(prompts.OutreachFile, "value-none", nil)
	}
}

// excerpt returns the first n characters of s.
func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// displaySkill capitalizes a lower-case skill keyword for prompts.
func displaySkill(skill string) string {
	if skill == "" {
		return skill
	}
	runes := []rune(skill)
	if runes[0] >= 'a' && runes[0] <= 'z' {
		runes[0] -= 'a' - 'A'
	}
	return string(runes)
}
