// Package brain classifies free-text notes for the knowledge base.
package brain

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jonathan/outreach-agent/internal/llm"
	"github.com/jonathan/outreach-agent/internal/prompts"
	"github.com/jonathan/outreach-agent/internal/schemas"
)

// Category is the knowledge-base section a note is filed into.
type Category string

const (
	CategoryKnowledge Category = "Knowledge"
	CategoryTask      Category = "Task"
	CategoryProject   Category = "Project"
	CategoryPeople    Category = "People"
	CategoryInbox     Category = "Inbox"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryKnowledge, CategoryTask, CategoryProject, CategoryPeople, CategoryInbox:
		return true
	}
	return false
}

// UnprocessedTitle is the title given to notes the model could not classify.
const UnprocessedTitle = "Unprocessed Note"

// maxEcho bounds the original content returned with a classification.
const maxEcho = 500

// Entities are the names pulled out of a note.
type Entities struct {
	People       []string `json:"people"`
	Companies    []string `json:"companies"`
	Technologies []string `json:"technologies"`
	Dates        []string `json:"dates"`
}

// Classification is the filed form of one note.
type Classification struct {
	Category          Category `json:"category"`
	Tags              []string `json:"tags"`
	Priority          string   `json:"priority"`
	Title             string   `json:"title"`
	ExtractedEntities Entities `json:"extracted_entities"`
	OriginalContent   string   `json:"original_content"`
	// Fallback is set when the model output was unusable and the note was
	// safe-routed to the inbox.
	Fallback bool `json:"fallback,omitempty"`
}

var thoughtSchema = llm.ExtractionSchema{
	Name: "ThoughtClassification",
	Fields: []llm.SchemaField{
		{Name: "category", Description: "Knowledge | Task | Project | People | Inbox", Required: true},
		{Name: "tags", Type: `["string"]`, Description: "1-3 lowercase tags"},
		{Name: "priority", Description: "high | medium | low"},
		{Name: "title", Description: "5 words max", Required: true},
		{Name: "extracted_entities", Type: `{"people": [], "companies": [], "technologies": [], "dates": []}`},
	},
}

// Classifier files notes using a language model.
type Classifier struct {
	llm    llm.Client
	logger *slog.Logger
}

// NewClassifier creates a Classifier. A nil logger means slog.Default().
func NewClassifier(client llm.Client, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{llm: client, logger: logger}
}

// Classify asks the model for a classification of content. Output that is
// not valid JSON or does not match the thought schema safe-routes to the
// inbox; only a failed generation call is returned as an error.
func (c *Classifier) Classify(ctx context.Context, content string) (*Classification, error) {
	system, err := prompts.Get("brain.json", "classify-description")
	if err != nil {
		return nil, fmt.Errorf("failed to load classification prompt: %w", err)
	}

	raw, err := c.llm.Generate(ctx, llm.Request{
		System:          system,
		User:            llm.BuildExtractionPrompt(thoughtSchema, content),
		Tier:            llm.TierClassify,
		Temperature:     llm.Temp(0.3),
		MaxOutputTokens: 200,
		JSON:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("classification failed: %w", err)
	}

	echo := truncateRunes(content, maxEcho)
	raw = llm.CleanJSONBlock(raw)

	if err := schemas.Validate(schemas.Thought, []byte(raw)); err != nil {
		c.logger.WarnContext(ctx, "unusable classification, routing to inbox", slog.Any("error", err))
		return unprocessed(echo), nil
	}

	var out Classification
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		c.logger.WarnContext(ctx, "unusable classification, routing to inbox", slog.Any("error", err))
		return unprocessed(echo), nil
	}
	if !out.Category.Valid() {
		c.logger.DebugContext(ctx, "unknown category, routing to inbox", slog.String("category", string(out.Category)))
		out.Category = CategoryInbox
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if out.Priority == "" {
		out.Priority = "medium"
	}
	out.ExtractedEntities.fill()
	out.OriginalContent = echo
	return &out, nil
}

func unprocessed(echo string) *Classification {
	c := &Classification{
		Category:        CategoryInbox,
		Tags:            []string{},
		Priority:        "low",
		Title:           UnprocessedTitle,
		OriginalContent: echo,
		Fallback:        true,
	}
	c.ExtractedEntities.fill()
	return c
}

func (e *Entities) fill() {
	for _, s := range []*[]string{&e.People, &e.Companies, &e.Technologies, &e.Dates} {
		if *s == nil {
			*s = []string{}
		}
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
