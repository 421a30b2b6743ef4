package brain

import (
	"context"

	"github.com/jonathan/outreach-agent/internal/knowledge"
)

// NoteClassifier classifies free text. *Classifier satisfies it.
type NoteClassifier interface {
	Classify(ctx context.Context, content string) (*Classification, error)
}

// Filer stores a classified note.
type Filer interface {
	FileNote(ctx context.Context, note knowledge.Note) (*knowledge.PageRef, error)
}

// DumpResult is a classified note and where it was filed.
type DumpResult struct {
	Classification *Classification    `json:"classification"`
	Page           *knowledge.PageRef `json:"page,omitempty"`
	// FilingError is set when the note was classified but could not be
	// stored.
	FilingError string `json:"filing_error,omitempty"`
}

// Dump classifies content and files it into the database of its category.
// A filing failure does not lose the classification: it is reported in the
// result. Only a failed classification call is returned as an error.
func Dump(ctx context.Context, c NoteClassifier, filer Filer, content string) (*DumpResult, error) {
	class, err := c.Classify(ctx, content)
	if err != nil {
		return nil, err
	}

	res := &DumpResult{Classification: class}
	page, err := filer.FileNote(ctx, NoteFor(class, content))
	if err != nil {
		res.FilingError = err.Error()
		return res, nil
	}
	res.Page = page
	return res, nil
}

// NoteFor builds the note to file for a classification. The full content is
// filed, not the truncated echo.
func NoteFor(class *Classification, content string) knowledge.Note {
	return knowledge.Note{
		Content:  content,
		Category: string(class.Category),
		Title:    class.Title,
		Tags:     class.Tags,
		Priority: class.Priority,
	}
}
