// Package content turns a knowledge page into a publishing package: a
// LinkedIn post and a 60-second video script, saved back as a drafting page.
package content

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/jomei/notionapi"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/outreach-agent/internal/knowledge"
	"github.com/jonathan/outreach-agent/internal/llm"
	"github.com/jonathan/outreach-agent/internal/prompts"
)

// Source excerpt sizes sent to the model.
const (
	postSourceExcerpt   = 3000
	scriptSourceExcerpt = 2000
)

// Content pipeline database columns.
const (
	titleProperty    = "Title"
	postProperty     = "Linkedin Draft"
	scriptProperty   = "Video Script"
	sourceRelation   = "Source Material"
	draftingStatus   = "Drafting"
	maxPropertyRunes = 2000
)

// PageStore reads source pages and writes the package page.
type PageStore interface {
	GetPage(ctx context.Context, pageID string) (*knowledge.Page, error)
	CreatePage(ctx context.Context, db knowledge.Database, in knowledge.PageInput) (*knowledge.PageRef, error)
}

// Package is the generated content for one source page.
type Package struct {
	SourceID        string `json:"source_id"`
	SourceTitle     string `json:"source_title"`
	PostDraft       string `json:"linkedin_draft"`
	VideoScript     string `json:"video_script"`
	PageID          string `json:"content_page_id,omitempty"`
	PageURL         string `json:"content_page_url,omitempty"`
	PostCharCount   int    `json:"linkedin_char_count"`
	ScriptWordCount int    `json:"video_word_count"`
}

// StepError reports which pipeline step failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("content package %s step failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Engine runs the fetch, generate and save steps.
type Engine struct {
	llm    llm.Client
	pages  PageStore
	logger *slog.Logger
}

// NewEngine creates an Engine. A nil logger means slog.Default().
func NewEngine(client llm.Client, pages PageStore, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{llm: client, pages: pages, logger: logger}
}

// GeneratePackage builds the package for the page sourceID. When only the
// save fails, the generated package is returned along with a "save"
// *StepError so the drafts are not lost.
func (e *Engine) GeneratePackage(ctx context.Context, sourceID string) (*Package, error) {
	source, err := e.pages.GetPage(ctx, sourceID)
	if err != nil {
		return nil, &StepError{Step: "fetch", Err: err}
	}
	if strings.TrimSpace(source.Content) == "" {
		return nil, &StepError{Step: "fetch", Err: fmt.Errorf("source page %q has no content to transform", source.Title)}
	}

	pkg := &Package{SourceID: sourceID, SourceTitle: source.Title}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		post, err := e.write(gctx, "post", source, postSourceExcerpt, 800)
		pkg.PostDraft = post
		return err
	})
	g.Go(func() error {
		script, err := e.write(gctx, "script", source, scriptSourceExcerpt, 500)
		pkg.VideoScript = script
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, &StepError{Step: "generate", Err: err}
	}
	pkg.PostCharCount = utf8.RuneCountInString(pkg.PostDraft)
	pkg.ScriptWordCount = len(strings.Fields(pkg.VideoScript))

	ref, err := e.pages.CreatePage(ctx, knowledge.DatabaseContent, knowledge.PageInput{
		Title:         "Content: " + source.Title,
		TitleProperty: titleProperty,
		Text: map[string]string{
			postProperty:   clip(pkg.PostDraft, maxPropertyRunes),
			scriptProperty: clip(pkg.VideoScript, maxPropertyRunes),
		},
		Status:    draftingStatus,
		Relations: map[string][]string{sourceRelation: {sourceID}},
		Blocks: []notionapi.Block{
			knowledge.Heading("LinkedIn Draft"),
			knowledge.Paragraph(pkg.PostDraft),
			knowledge.Heading("Video Script (60s)"),
			knowledge.Paragraph(pkg.VideoScript),
		},
	})
	if err != nil {
		e.logger.WarnContext(ctx, "content package generated but not saved",
			slog.String("source_id", sourceID), slog.Any("error", err))
		return pkg, &StepError{Step: "save", Err: err}
	}
	pkg.PageID = ref.ID
	pkg.PageURL = ref.URL

	e.logger.InfoContext(ctx, "content package saved",
		slog.String("source_id", sourceID),
		slog.String("page_id", ref.ID),
		slog.Int("post_chars", pkg.PostCharCount),
		slog.Int("script_words", pkg.ScriptWordCount))
	return pkg, nil
}

// write renders the kind ("post" or "script") prompts and runs them.
func (e *Engine) write(ctx context.Context, kind string, source *knowledge.Page, excerpt int, maxTokens int32) (string, error) {
	system, err := prompts.Get(prompts.ContentFile, kind+"-system")
	if err != nil {
		return "", fmt.Errorf("failed to load %s prompt: %w", kind, err)
	}
	user, err := prompts.Render(prompts.ContentFile, kind+"-user", map[string]string{
		"Topic":  source.Title,
		"Source": clip(source.Content, excerpt),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", kind, err)
	}

	out, err := e.llm.Generate(ctx, llm.Request{
		System:          system,
		User:            user,
		Tier:            llm.TierDraft,
		Temperature:     llm.Temp(0.7),
		MaxOutputTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%s generation failed: %w", kind, err)
	}
	return strings.TrimSpace(out), nil
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
